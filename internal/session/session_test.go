package session_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/remote"
	"quiknote-be/internal/remote/memory"
	"quiknote-be/internal/session"
)

var errBoom = errors.New("backend unavailable")

func newSession(t *testing.T) (*session.Session, *memory.Server, *memory.Client) {
	t.Helper()
	srv := memory.NewServer()
	client := srv.NewClient()
	_, err := client.Account().Register(context.Background(), "a@x.com", "pw", "Ann")
	require.NoError(t, err)

	clock := func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return session.New(client.Account(), client.Files(), logger.NewNopLogger(), session.WithClock(clock)), srv, client
}

func TestLogin_SetsProfileAndTokens(t *testing.T) {
	s, _, _ := newSession(t)

	profile, err := s.Login(context.Background(), "a@x.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "Ann", profile.Name)
	assert.Equal(t, profile.Id, s.UserID())
	require.NotNil(t, s.Tokens())
	assert.Equal(t, profile.Id, s.Tokens().UserId)
	assert.NotEmpty(t, s.Tokens().AccessToken)
}

func TestLogin_WrongPassword(t *testing.T) {
	s, _, _ := newSession(t)

	_, err := s.Login(context.Background(), "a@x.com", "nope")

	var opErr *session.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.ErrorIs(t, err, remote.ErrInvalidCredentials)
	assert.Empty(t, s.UserID())
	assert.Nil(t, s.Tokens())
}

func TestLogout_NotifiesListenersWithNil(t *testing.T) {
	s, _, _ := newSession(t)
	ctx := context.Background()

	var seen []*entity.Profile
	s.OnChange(func(p *entity.Profile) { seen = append(seen, p) })

	_, err := s.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.Nil(t, seen[1])
	assert.Empty(t, s.UserID())
	assert.Nil(t, s.Profile())
}

func TestLogout_RemoteFailureStillDropsLocalState(t *testing.T) {
	s, srv, _ := newSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	srv.FailOn("account.logout", "", errBoom)

	err = s.Logout(ctx)

	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, s.UserID())
}

func TestRegister_EndsExistingSessionFirst(t *testing.T) {
	s, srv, _ := newSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	profile, err := s.Register(ctx, "b@x.com", "pw2", "Bob")
	require.NoError(t, err)

	assert.Equal(t, 1, srv.Calls("account.logout"))
	assert.Equal(t, "Bob", profile.Name)
	assert.Equal(t, profile.Id, s.UserID())
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _, _ := newSession(t)

	_, err := s.Register(context.Background(), "a@x.com", "pw", "Again")

	assert.ErrorIs(t, err, remote.ErrConflict)
	assert.Empty(t, s.UserID())
}

func TestCheckStatus(t *testing.T) {
	s, srv, client := newSession(t)
	ctx := context.Background()

	assert.Nil(t, s.CheckStatus(ctx))

	_, _, err := client.Account().Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	profile := s.CheckStatus(ctx)
	require.NotNil(t, profile)
	assert.Equal(t, profile.Id, s.UserID())

	srv.FailOn("account.session", "", errBoom)
	assert.Nil(t, s.CheckStatus(ctx))
	assert.Empty(t, s.UserID())
}

func TestResume_AttachesTokensToFreshClient(t *testing.T) {
	s, srv, _ := newSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	tokens := s.Tokens()

	fresh := srv.NewClient()
	resumed := session.New(fresh.Account(), fresh.Files(), logger.NewNopLogger())
	profile, err := resumed.Resume(ctx, *tokens)
	require.NoError(t, err)
	assert.Equal(t, s.UserID(), profile.Id)

	_, err = resumed.Resume(ctx, entity.AuthSession{UserId: tokens.UserId, AccessToken: "stale"})
	assert.ErrorIs(t, err, remote.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	name := "Ann B."
	email := "ann@x.com"
	username := "annb"
	same := "Ann"

	tests := []struct {
		name    string
		changes session.ProfileChanges
		wantErr error
		check   func(t *testing.T, p *entity.Profile)
	}{
		{
			name:    "nothing changed",
			changes: session.ProfileChanges{Name: &same},
			wantErr: session.ErrNoChanges,
		},
		{
			name:    "email without password",
			changes: session.ProfileChanges{Email: &email},
			wantErr: session.ErrPasswordRequired,
		},
		{
			name:    "email with wrong password",
			changes: session.ProfileChanges{Email: &email, CurrentPassword: "bad"},
			wantErr: remote.ErrInvalidCredentials,
		},
		{
			name:    "name, email and username",
			changes: session.ProfileChanges{Name: &name, Email: &email, Username: &username, CurrentPassword: "pw"},
			check: func(t *testing.T, p *entity.Profile) {
				assert.Equal(t, name, p.Name)
				assert.Equal(t, email, p.Email)
				assert.Equal(t, username, p.Username())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newSession(t)
			ctx := context.Background()
			_, err := s.Login(ctx, "a@x.com", "pw")
			require.NoError(t, err)

			profile, err := s.UpdateProfile(ctx, tt.changes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "Ann", s.Profile().Name)
				return
			}
			require.NoError(t, err)
			tt.check(t, profile)
			tt.check(t, s.Profile())
		})
	}
}

func TestUpdateProfile_KeepsAvatarPreference(t *testing.T) {
	s, _, _ := newSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	_, err = s.UploadAvatar(ctx, session.Upload{Name: "me.png", ContentType: "image/png", Size: 3, Data: strings.NewReader("png")})
	require.NoError(t, err)
	imageId := s.Profile().ProfileImageId()

	phone := "555-0100"
	profile, err := s.UpdateProfile(ctx, session.ProfileChanges{Phone: &phone})
	require.NoError(t, err)

	assert.Equal(t, phone, profile.Phone())
	assert.Equal(t, imageId, profile.ProfileImageId())
}

func TestUploadAvatar_Validation(t *testing.T) {
	s, srv, _ := newSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	_, err = s.UploadAvatar(ctx, session.Upload{Name: "doc.pdf", ContentType: "application/pdf", Size: 10, Data: strings.NewReader("pdf")})
	assert.ErrorIs(t, err, session.ErrNotAnImage)

	big := bytes.Repeat([]byte{1}, session.MaxAvatarSize+1)
	_, err = s.UploadAvatar(ctx, session.Upload{Name: "big.png", ContentType: "image/png", Size: int64(len(big)), Data: bytes.NewReader(big)})
	assert.ErrorIs(t, err, session.ErrImageTooLarge)

	assert.Equal(t, 0, srv.Calls("files.upload"))
}

func TestUploadAvatar_ReplacesPreviousImage(t *testing.T) {
	s, srv, _ := newSession(t)
	ctx := context.Background()
	_, err := s.Login(ctx, "a@x.com", "pw")
	require.NoError(t, err)
	assert.Empty(t, s.AvatarURL())

	first, err := s.UploadAvatar(ctx, session.Upload{Name: "a.png", ContentType: "image/png", Size: 1, Data: strings.NewReader("a")})
	require.NoError(t, err)
	second, err := s.UploadAvatar(ctx, session.Upload{Name: "b.png", ContentType: "image/png", Size: 1, Data: strings.NewReader("b")})
	require.NoError(t, err)

	assert.NotEqual(t, first.ProfileImageId(), second.ProfileImageId())
	assert.Equal(t, 1, srv.FileCount())
	assert.Equal(t, 1, srv.Calls("files.delete"))

	url := s.AvatarURL()
	assert.True(t, strings.HasPrefix(url, "memory://files/"+second.ProfileImageId()+"/view?t="), url)
}

func TestProfileOperations_RequireLogin(t *testing.T) {
	s, _, _ := newSession(t)
	name := "x"

	_, err := s.UpdateProfile(context.Background(), session.ProfileChanges{Name: &name})
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
	_, err = s.UploadAvatar(context.Background(), session.Upload{ContentType: "image/png"})
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}
