package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/dto"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/pkg/serverutils"
	"quiknote-be/internal/remote"
	"quiknote-be/internal/remote/memory"
	repomemory "quiknote-be/internal/repository/memory"
	"quiknote-be/internal/service"
	"quiknote-be/internal/store"
	"quiknote-be/internal/workspace"
)

type fixture struct {
	srv      *memory.Server
	registry *workspace.Registry
	boards   *repomemory.BoardRepository

	auth      service.IAuthService
	notes     service.INoteService
	notebooks service.INotebookService
	trash     service.ITrashService
	board     service.IBoardService
	sync      service.ISyncService

	sid string
}

type halfSource struct{}

func (halfSource) Float64() float64 { return 0.5 }

func setup(t *testing.T) *fixture {
	t.Helper()
	srv := memory.NewServer()
	_, err := srv.NewClient().Account().Register(context.Background(), "a@x.com", "password1", "Ann")
	require.NoError(t, err)

	log := logger.NewNopLogger()
	registry := workspace.NewRegistry(srv.Factory(), repomemory.NewSessionTokenRepository(), log)
	boards := repomemory.NewBoardRepository()
	boardSvc := service.NewBoardService(registry, boards, halfSource{}, log)

	f := &fixture{
		srv:       srv,
		registry:  registry,
		boards:    boards,
		auth:      service.NewAuthService(registry, serverutils.NewTokenIssuer("secret", time.Hour), log),
		notes:     service.NewNoteService(registry, boardSvc),
		notebooks: service.NewNotebookService(registry),
		trash:     service.NewTrashService(registry, boardSvc),
		board:     boardSvc,
		sync:      service.NewSyncService(registry),
	}

	res, err := f.auth.Login(context.Background(), &dto.LoginRequest{Email: "a@x.com", Password: "password1"})
	require.NoError(t, err)
	claims, err := serverutils.NewTokenIssuer("secret", time.Hour).Parse(res.Token)
	require.NoError(t, err)
	f.sid = claims.SessionId
	return f
}

func (f *fixture) note(t *testing.T, title string, notebookId *string) *dto.NoteResponse {
	t.Helper()
	n, err := f.notes.Create(context.Background(), f.sid, &dto.CreateNoteRequest{Title: title, NotebookId: notebookId})
	require.NoError(t, err)
	return n
}

func ptr[T any](v T) *T { return &v }

func TestAuth_LoginStatusLogout(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	status, err := f.auth.Status(ctx, f.sid)
	require.NoError(t, err)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "Ann", status.Profile.Name)

	require.NoError(t, f.auth.Logout(ctx, f.sid))

	status, err = f.auth.Status(ctx, f.sid)
	require.NoError(t, err)
	assert.False(t, status.Authenticated)

	// Logging out twice is not an error.
	assert.NoError(t, f.auth.Logout(ctx, f.sid))
}

func TestAuth_Register(t *testing.T) {
	f := setup(t)

	res, err := f.auth.Register(context.Background(), &dto.RegisterRequest{Name: "Bob", Email: "b@x.com", Password: "password2"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "b@x.com", res.Profile.Email)
	assert.True(t, res.ExpiresAt.After(time.Now()))
}

func TestNotes_CreateUpdateAndViews(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	nb, err := f.notebooks.Create(ctx, f.sid, &dto.CreateNotebookRequest{Name: "Work"})
	require.NoError(t, err)

	filed := f.note(t, "filed", &nb.Id)
	loose := f.note(t, "loose", nil)
	require.NotNil(t, filed.NotebookId)
	assert.Equal(t, nb.Id, *filed.NotebookId)
	assert.Nil(t, loose.NotebookId)

	// Absent notebook_id keeps the relation; null detaches.
	updated, err := f.notes.Update(ctx, f.sid, &dto.UpdateNoteRequest{Id: filed.Id, Title: ptr("renamed")})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	require.NotNil(t, updated.NotebookId)

	detached, err := f.notes.Update(ctx, f.sid, &dto.UpdateNoteRequest{Id: filed.Id, NotebookId: dto.NotebookField{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, detached.NotebookId)

	_, err = f.notes.Favorite(ctx, f.sid, &dto.FavoriteNoteRequest{Id: loose.Id, Value: ptr(true)})
	require.NoError(t, err)
	_, err = f.notes.Trash(ctx, f.sid, filed.Id)
	require.NoError(t, err)

	tests := []struct {
		view string
		want []string
	}{
		{view: "", want: []string{"loose", "renamed"}},
		{view: "active", want: []string{"loose"}},
		{view: "favorites", want: []string{"loose"}},
		{view: "trashed", want: []string{"renamed"}},
	}
	for _, tt := range tests {
		t.Run("view="+tt.view, func(t *testing.T) {
			list, err := f.notes.List(ctx, f.sid, &dto.ListNotesQuery{View: tt.view})
			require.NoError(t, err)
			titles := make([]string, 0, len(list))
			for _, n := range list {
				titles = append(titles, n.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}

	_, err = f.notes.Show(ctx, f.sid, "missing")
	assert.ErrorIs(t, err, store.ErrNoteNotFound)
}

func TestNotes_UnknownSession(t *testing.T) {
	f := setup(t)

	_, err := f.notes.List(context.Background(), "nope", &dto.ListNotesQuery{})
	assert.ErrorIs(t, err, workspace.ErrSessionExpired)
}

func TestNotebooks_TrashAndRestoreCascade(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	nb, err := f.notebooks.Create(ctx, f.sid, &dto.CreateNotebookRequest{Name: "Work"})
	require.NoError(t, err)
	f.note(t, "one", &nb.Id)
	f.note(t, "two", &nb.Id)

	all, err := f.notebooks.GetAll(ctx, f.sid)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].NoteCount)

	trashed, err := f.notebooks.Trash(ctx, f.sid, nb.Id)
	require.NoError(t, err)
	assert.True(t, trashed.IsTrashed)

	shown, err := f.notebooks.Show(ctx, f.sid, nb.Id)
	require.NoError(t, err)
	assert.Len(t, shown.Notes, 2)

	bin, err := f.trash.List(ctx, f.sid)
	require.NoError(t, err)
	assert.Len(t, bin.Notes, 2)
	assert.Len(t, bin.Notebooks, 1)

	restored, err := f.notebooks.Restore(ctx, f.sid, nb.Id)
	require.NoError(t, err)
	assert.False(t, restored.IsTrashed)
	assert.Equal(t, 2, restored.NoteCount)
}

func TestTrash_EmptyPrunesBoard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	keep := f.note(t, "keep", nil)
	gone := f.note(t, "gone", nil)
	cards, err := f.board.Layout(ctx, f.sid)
	require.NoError(t, err)
	require.Len(t, cards, 2)

	_, err = f.notes.Trash(ctx, f.sid, gone.Id)
	require.NoError(t, err)

	res, err := f.trash.Empty(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, 1, res.DeletedNotes)
	assert.False(t, res.NothingToDelete)

	// Only the surviving note keeps a placement.
	remaining, err := f.boards.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.Id, remaining[0].NoteId)

	res, err = f.trash.Empty(ctx, f.sid)
	require.NoError(t, err)
	assert.True(t, res.NothingToDelete)
}

func TestNotes_DeletePrunesBoard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	keep := f.note(t, "keep", nil)
	gone := f.note(t, "gone", nil)
	_, err := f.board.Layout(ctx, f.sid)
	require.NoError(t, err)

	require.NoError(t, f.notes.Delete(ctx, f.sid, gone.Id))

	remaining, err := f.boards.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.Id, remaining[0].NoteId)
}

func TestSync(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.note(t, "local", nil)

	// Another client adds a note behind the workspace's back.
	other := f.srv.NewClient()
	auth, _, err := other.Account().Login(ctx, "a@x.com", "password1")
	require.NoError(t, err)
	_, err = other.Notes().Create(ctx, auth.UserId, remote.NoteFields{Title: remote.String("remote")})
	require.NoError(t, err)

	res, err := f.sync.Sync(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Notes)
	assert.False(t, res.Loading)

	assert.Equal(t, 1, f.sync.ResyncAll(ctx))
}
