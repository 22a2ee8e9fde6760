package workspace_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/remote"
	"quiknote-be/internal/remote/memory"
	repomemory "quiknote-be/internal/repository/memory"
	"quiknote-be/internal/store"
	"quiknote-be/internal/workspace"
)

func seededServer(t *testing.T) *memory.Server {
	t.Helper()
	ctx := context.Background()
	srv := memory.NewServer()
	client := srv.NewClient()
	_, err := client.Account().Register(ctx, "a@x.com", "pw", "Ann")
	require.NoError(t, err)
	auth, _, err := client.Account().Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	_, err = client.Notes().Create(ctx, auth.UserId, remote.NoteFields{Title: remote.String("existing")})
	require.NoError(t, err)
	return srv
}

func TestLogin_LoadsCollections(t *testing.T) {
	srv := seededServer(t)
	reg := workspace.NewRegistry(srv.Factory(), repomemory.NewSessionTokenRepository(), logger.NewNopLogger())

	ws, err := reg.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	assert.NotEmpty(t, ws.Id)
	assert.NotEmpty(t, ws.UserID())
	require.Len(t, ws.Store.Notes(), 1)
	assert.Equal(t, "existing", ws.Store.Notes()[0].Title)
	assert.Equal(t, 1, reg.Count())
}

func TestLogin_BadCredentialsRegistersNothing(t *testing.T) {
	srv := seededServer(t)
	reg := workspace.NewRegistry(srv.Factory(), repomemory.NewSessionTokenRepository(), logger.NewNopLogger())

	_, err := reg.Login(context.Background(), "a@x.com", "wrong")

	assert.ErrorIs(t, err, remote.ErrInvalidCredentials)
	assert.Equal(t, 0, reg.Count())
}

func TestGet_RebuildsFromPersistedTokens(t *testing.T) {
	srv := seededServer(t)
	tokens := repomemory.NewSessionTokenRepository()
	ctx := context.Background()

	first := workspace.NewRegistry(srv.Factory(), tokens, logger.NewNopLogger())
	ws, err := first.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	// A restarted process has an empty registry but the same token store.
	second := workspace.NewRegistry(srv.Factory(), tokens, logger.NewNopLogger())
	rebuilt, err := second.Get(ctx, ws.Id)
	require.NoError(t, err)

	assert.Equal(t, ws.UserID(), rebuilt.UserID())
	assert.Len(t, rebuilt.Store.Notes(), 1)

	again, err := second.Get(ctx, ws.Id)
	require.NoError(t, err)
	assert.Same(t, rebuilt, again)
}

func TestGet_BackendOutageKeepsPersistedTokens(t *testing.T) {
	srv := seededServer(t)
	tokens := repomemory.NewSessionTokenRepository()
	ctx := context.Background()

	ws, err := workspace.NewRegistry(srv.Factory(), tokens, logger.NewNopLogger()).Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	reg := workspace.NewRegistry(srv.Factory(), tokens, logger.NewNopLogger())
	srv.FailOn("account.resume", "", errors.New("connection reset"))

	_, err = reg.Get(ctx, ws.Id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, workspace.ErrSessionExpired)
	saved, err := tokens.Get(ctx, ws.Id)
	require.NoError(t, err)
	assert.NotNil(t, saved)

	srv.Heal()
	rebuilt, err := reg.Get(ctx, ws.Id)
	require.NoError(t, err)
	assert.Equal(t, ws.UserID(), rebuilt.UserID())
}

func TestGet_RejectedTokensExpireSession(t *testing.T) {
	srv := seededServer(t)
	tokens := repomemory.NewSessionTokenRepository()
	ctx := context.Background()

	ws, err := workspace.NewRegistry(srv.Factory(), tokens, logger.NewNopLogger()).Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	reg := workspace.NewRegistry(srv.Factory(), tokens, logger.NewNopLogger())
	srv.FailOn("account.resume", "", remote.ErrUnauthorized)

	_, err = reg.Get(ctx, ws.Id)
	assert.ErrorIs(t, err, workspace.ErrSessionExpired)
	saved, err := tokens.Get(ctx, ws.Id)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestGet_UnknownSession(t *testing.T) {
	srv := seededServer(t)
	reg := workspace.NewRegistry(srv.Factory(), repomemory.NewSessionTokenRepository(), logger.NewNopLogger())

	_, err := reg.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, workspace.ErrSessionExpired)
}

func TestLogout_ClearsStoreAndForgetsWorkspace(t *testing.T) {
	srv := seededServer(t)
	tokens := repomemory.NewSessionTokenRepository()
	reg := workspace.NewRegistry(srv.Factory(), tokens, logger.NewNopLogger())
	ctx := context.Background()

	ws, err := reg.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NotEmpty(t, ws.Store.Notes())

	require.NoError(t, reg.Logout(ctx, ws.Id))

	assert.Empty(t, ws.Store.Notes())
	assert.Empty(t, ws.UserID())
	_, err = reg.Get(ctx, ws.Id)
	assert.ErrorIs(t, err, workspace.ErrSessionExpired)
	saved, err := tokens.Get(ctx, ws.Id)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestRegistry_PassesStoreOptions(t *testing.T) {
	srv := seededServer(t)
	sink := &countingSink{}
	reg := workspace.NewRegistry(srv.Factory(), repomemory.NewSessionTokenRepository(), logger.NewNopLogger(),
		workspace.WithEventSink(sink),
		workspace.WithStoreOptions(store.WithSyncPolicy(store.SyncRefetch)),
	)
	ctx := context.Background()

	ws, err := reg.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	_, err = ws.Store.CreateNotebook(ctx, "Work")
	require.NoError(t, err)

	assert.Equal(t, 2, sink.count) // collections.synced, notebook.created
	seen := 0
	reg.Each(func(*workspace.Workspace) { seen++ })
	assert.Equal(t, 1, seen)
}

type countingSink struct{ count int }

func (c *countingSink) Publish(ctx context.Context, change store.Change) error {
	c.count++
	return nil
}
