package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/supabase-community/gotrue-go/types"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote"
)

// Metadata keys on the GoTrue user.
const (
	metaName  = "name"
	metaPrefs = "prefs"
)

type accountService struct{ c *Client }

func (a *accountService) Login(ctx context.Context, email, password string) (*entity.AuthSession, *entity.Profile, error) {
	api, _, err := a.c.conn(ctx)
	if err != nil {
		return nil, nil, err
	}

	session, err := api.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", remote.ErrInvalidCredentials, err)
	}
	api.UpdateAuthSession(session)

	auth := authFromSession(session)
	a.c.setAuth(auth)
	return &auth, profileFromUser(session.User), nil
}

func (a *accountService) Logout(ctx context.Context) error {
	api, _, err := a.c.authed(ctx)
	if err != nil {
		return err
	}
	logoutErr := api.Auth.Logout()
	if err := a.c.reset(); err != nil {
		return err
	}
	return logoutErr
}

func (a *accountService) Register(ctx context.Context, email, password, name string) (*entity.Profile, error) {
	api, _, err := a.c.conn(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := api.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
		Data:     map[string]interface{}{metaName: name, metaPrefs: map[string]interface{}{}},
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already registered") {
			return nil, fmt.Errorf("%w: %v", remote.ErrConflict, err)
		}
		return nil, err
	}
	return profileFromUser(resp.User), nil
}

func (a *accountService) CurrentSession(ctx context.Context) (*entity.AuthSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.c.mu.RLock()
	defer a.c.mu.RUnlock()
	if a.c.auth == nil || time.Now().After(a.c.auth.ExpiresAt) {
		return nil, nil
	}
	auth := *a.c.auth
	return &auth, nil
}

func (a *accountService) CurrentProfile(ctx context.Context) (*entity.Profile, error) {
	api, _, err := a.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	user, err := api.Auth.GetUser()
	if err != nil {
		return nil, err
	}
	return profileFromUser(user.User), nil
}

func (a *accountService) Resume(ctx context.Context, auth entity.AuthSession) error {
	api, _, err := a.c.conn(ctx)
	if err != nil {
		return err
	}
	user, err := api.Auth.WithToken(auth.AccessToken).GetUser()
	if err == nil {
		if user.ID.String() != auth.UserId {
			return remote.ErrUnauthorized
		}
		api.UpdateAuthSession(types.Session{
			AccessToken:  auth.AccessToken,
			RefreshToken: auth.RefreshToken,
			ExpiresAt:    auth.ExpiresAt.Unix(),
			User:         user.User,
		})
		a.c.setAuth(auth)
		return nil
	}
	if !authRejected(err) || auth.RefreshToken == "" {
		return classifyAuthError(err)
	}

	// The access token is no longer accepted; trade the refresh token for a
	// new pair.
	session, err := api.RefreshToken(auth.RefreshToken)
	if err != nil {
		return classifyAuthError(err)
	}
	refreshed := authFromSession(session)
	if refreshed.UserId != auth.UserId {
		return remote.ErrUnauthorized
	}
	a.c.setAuth(refreshed)
	return nil
}

func (a *accountService) UpdateName(ctx context.Context, name string) (*entity.Profile, error) {
	return a.updateUser(ctx, types.UpdateUserRequest{Data: map[string]interface{}{metaName: name}})
}

// UpdateEmail re-authenticates with the current password first; GoTrue does
// not ask for it on its own.
func (a *accountService) UpdateEmail(ctx context.Context, email, currentPassword string) (*entity.Profile, error) {
	api, _, err := a.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	user, err := api.Auth.GetUser()
	if err != nil {
		return nil, err
	}
	if _, err := api.Auth.SignInWithEmailPassword(user.Email, currentPassword); err != nil {
		return nil, fmt.Errorf("%w: %v", remote.ErrInvalidCredentials, err)
	}
	return a.updateUser(ctx, types.UpdateUserRequest{Email: email})
}

func (a *accountService) UpdatePreferences(ctx context.Context, prefs map[string]interface{}) (*entity.Profile, error) {
	return a.updateUser(ctx, types.UpdateUserRequest{Data: map[string]interface{}{metaPrefs: prefs}})
}

func (a *accountService) updateUser(ctx context.Context, req types.UpdateUserRequest) (*entity.Profile, error) {
	api, _, err := a.c.authed(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := api.Auth.UpdateUser(req)
	if err != nil {
		return nil, err
	}
	return profileFromUser(resp.User), nil
}

// authRejected reports whether GoTrue answered with an auth failure status.
// gotrue-go only exposes the status through the error text.
func authRejected(err error) bool {
	var code int
	if _, scanErr := fmt.Sscanf(err.Error(), "response status code %d", &code); scanErr != nil {
		return false
	}
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

func classifyAuthError(err error) error {
	if authRejected(err) {
		return fmt.Errorf("%w: %v", remote.ErrUnauthorized, err)
	}
	return err
}

func authFromSession(s types.Session) entity.AuthSession {
	expires := time.Unix(s.ExpiresAt, 0).UTC()
	if s.ExpiresAt == 0 {
		expires = time.Now().UTC().Add(time.Duration(s.ExpiresIn) * time.Second)
	}
	return entity.AuthSession{
		UserId:       s.User.ID.String(),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    expires,
	}
}

func profileFromUser(u types.User) *entity.Profile {
	p := &entity.Profile{
		Id:    u.ID.String(),
		Email: u.Email,
		Prefs: map[string]interface{}{},
	}
	if name, ok := u.UserMetadata[metaName].(string); ok {
		p.Name = name
	}
	if prefs, ok := u.UserMetadata[metaPrefs].(map[string]interface{}); ok {
		for k, v := range prefs {
			p.Prefs[k] = v
		}
	}
	return p
}
