package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Client is one signed-in (or signed-out) caller of a Server.
type Client struct {
	server *Server

	mu    sync.RWMutex
	token string
}

func (c *Client) Notes() remote.NoteCollection         { return &noteCollection{c} }
func (c *Client) Notebooks() remote.NotebookCollection { return &notebookCollection{c} }
func (c *Client) Account() remote.AccountService       { return &accountService{c} }
func (c *Client) Files() remote.FileStorage            { return &fileStorage{c} }

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// userId resolves the signed-in user. Caller holds server.mu.
func (c *Client) userId() (string, error) {
	auth, ok := c.server.tokens[c.currentToken()]
	if !ok {
		return "", remote.ErrUnauthorized
	}
	if c.server.now().After(auth.ExpiresAt) {
		return "", remote.ErrUnauthorized
	}
	return auth.UserId, nil
}

// ==================== ACCOUNT ====================

type accountService struct{ c *Client }

func profileOf(a *account) *entity.Profile {
	prefs := make(map[string]interface{}, len(a.prefs))
	for k, v := range a.prefs {
		prefs[k] = v
	}
	return &entity.Profile{Id: a.id, Name: a.name, Email: a.email, Prefs: prefs}
}

func (s *accountService) Login(ctx context.Context, email, password string) (*entity.AuthSession, *entity.Profile, error) {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.login", email); err != nil {
		return nil, nil, err
	}

	id, ok := srv.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, nil, ErrInvalidCredentials
	}
	acc := srv.accounts[id]
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	auth := entity.AuthSession{
		UserId:       acc.id,
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		ExpiresAt:    srv.now().Add(srv.tokenTTL),
	}
	srv.tokens[auth.AccessToken] = auth
	s.c.setToken(auth.AccessToken)
	return &auth, profileOf(acc), nil
}

func (s *accountService) Logout(ctx context.Context) error {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.logout", ""); err != nil {
		return err
	}
	token := s.c.currentToken()
	if _, ok := srv.tokens[token]; !ok {
		return remote.ErrUnauthorized
	}
	delete(srv.tokens, token)
	s.c.setToken("")
	return nil
}

func (s *accountService) Register(ctx context.Context, email, password, name string) (*entity.Profile, error) {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.register", email); err != nil {
		return nil, err
	}

	key := strings.ToLower(email)
	if _, exists := srv.byEmail[key]; exists {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	acc := &account{
		id:           uuid.NewString(),
		email:        email,
		name:         name,
		passwordHash: hash,
		prefs:        map[string]interface{}{},
	}
	srv.accounts[acc.id] = acc
	srv.byEmail[key] = acc.id
	return profileOf(acc), nil
}

func (s *accountService) CurrentSession(ctx context.Context) (*entity.AuthSession, error) {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.session", ""); err != nil {
		return nil, err
	}
	auth, ok := srv.tokens[s.c.currentToken()]
	if !ok || srv.now().After(auth.ExpiresAt) {
		return nil, nil
	}
	return &auth, nil
}

func (s *accountService) CurrentProfile(ctx context.Context) (*entity.Profile, error) {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.get", ""); err != nil {
		return nil, err
	}
	uid, err := s.c.userId()
	if err != nil {
		return nil, err
	}
	return profileOf(srv.accounts[uid]), nil
}

func (s *accountService) Resume(ctx context.Context, auth entity.AuthSession) error {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.resume", auth.UserId); err != nil {
		return err
	}
	stored, ok := srv.tokens[auth.AccessToken]
	if !ok || stored.UserId != auth.UserId || srv.now().After(stored.ExpiresAt) {
		return remote.ErrUnauthorized
	}
	s.c.setToken(auth.AccessToken)
	return nil
}

func (s *accountService) UpdateName(ctx context.Context, name string) (*entity.Profile, error) {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.name", ""); err != nil {
		return nil, err
	}
	uid, err := s.c.userId()
	if err != nil {
		return nil, err
	}
	acc := srv.accounts[uid]
	acc.name = name
	return profileOf(acc), nil
}

func (s *accountService) UpdateEmail(ctx context.Context, email, currentPassword string) (*entity.Profile, error) {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.email", ""); err != nil {
		return nil, err
	}
	uid, err := s.c.userId()
	if err != nil {
		return nil, err
	}
	acc := srv.accounts[uid]
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(currentPassword)) != nil {
		return nil, ErrInvalidCredentials
	}
	key := strings.ToLower(email)
	if owner, exists := srv.byEmail[key]; exists && owner != uid {
		return nil, ErrEmailTaken
	}
	delete(srv.byEmail, strings.ToLower(acc.email))
	acc.email = email
	srv.byEmail[key] = uid
	return profileOf(acc), nil
}

func (s *accountService) UpdatePreferences(ctx context.Context, prefs map[string]interface{}) (*entity.Profile, error) {
	srv := s.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("account.prefs", ""); err != nil {
		return nil, err
	}
	uid, err := s.c.userId()
	if err != nil {
		return nil, err
	}
	acc := srv.accounts[uid]
	// Preferences are replaced as a whole, like the real account API.
	acc.prefs = make(map[string]interface{}, len(prefs))
	for k, v := range prefs {
		acc.prefs[k] = v
	}
	return profileOf(acc), nil
}

// ==================== FILES ====================

type fileStorage struct{ c *Client }

func (f *fileStorage) Upload(ctx context.Context, name, contentType string, data io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, data); err != nil {
		return "", err
	}

	srv := f.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("files.upload", name); err != nil {
		return "", err
	}
	if _, err := f.c.userId(); err != nil {
		return "", err
	}
	id := uuid.NewString()
	srv.files[id] = buf.Bytes()
	return id, nil
}

func (f *fileStorage) Delete(ctx context.Context, fileId string) error {
	srv := f.c.server
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if err := srv.enter("files.delete", fileId); err != nil {
		return err
	}
	if _, err := f.c.userId(); err != nil {
		return err
	}
	if _, ok := srv.files[fileId]; !ok {
		return remote.ErrNotFound
	}
	delete(srv.files, fileId)
	return nil
}

func (f *fileStorage) ViewURL(fileId string) string {
	return fmt.Sprintf("memory://files/%s/view", fileId)
}
