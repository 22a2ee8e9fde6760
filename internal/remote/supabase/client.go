// Package supabase adapts a Supabase project (GoTrue auth, PostgREST tables
// and a storage bucket) to the remote backend contract.
package supabase

import (
	"context"
	"errors"
	"sync"

	sb "github.com/supabase-community/supabase-go"

	"quiknote-be/internal/config"
	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote"
)

var ErrNotConfigured = errors.New("backend is not configured")

// Client is one browser login's view of the project. The underlying
// supabase client carries the user's access token, so it is never shared.
type Client struct {
	cfg config.BaaSConfig

	mu   sync.RWMutex
	api  *sb.Client
	auth *entity.AuthSession
}

// NewFactory returns a factory of signed-out clients. With an incomplete
// configuration every client fails each call with ErrNotConfigured.
func NewFactory(cfg config.BaaSConfig) remote.BackendFactory {
	return func() (remote.Backend, error) {
		return NewClient(cfg)
	}
}

func NewClient(cfg config.BaaSConfig) (*Client, error) {
	c := &Client{cfg: cfg}
	if !cfg.Configured() {
		return c, nil
	}
	api, err := c.dial()
	if err != nil {
		return nil, err
	}
	c.api = api
	return c, nil
}

func (c *Client) dial() (*sb.Client, error) {
	return sb.NewClient(c.cfg.Endpoint, c.cfg.ProjectKey, &sb.ClientOptions{Schema: c.cfg.Database})
}

func (c *Client) Notes() remote.NoteCollection {
	return &noteCollection{c: c, table: c.cfg.NotesCollection}
}

func (c *Client) Notebooks() remote.NotebookCollection {
	return &notebookCollection{c: c, table: c.cfg.NotebooksCollection}
}

func (c *Client) Account() remote.AccountService { return &accountService{c} }
func (c *Client) Files() remote.FileStorage      { return &fileStorage{c} }

// conn returns the api client and the signed-in user id.
func (c *Client) conn(ctx context.Context) (*sb.Client, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.api == nil {
		return nil, "", ErrNotConfigured
	}
	if c.auth == nil {
		return c.api, "", nil
	}
	return c.api, c.auth.UserId, nil
}

// authed is conn for calls that need a signed-in user.
func (c *Client) authed(ctx context.Context) (*sb.Client, string, error) {
	api, uid, err := c.conn(ctx)
	if err != nil {
		return nil, "", err
	}
	if uid == "" {
		return nil, "", remote.ErrUnauthorized
	}
	return api, uid, nil
}

// reset drops the user's token by replacing the api client.
func (c *Client) reset() error {
	api, err := c.dial()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.api = api
	c.auth = nil
	c.mu.Unlock()
	return nil
}

func (c *Client) setAuth(auth entity.AuthSession) {
	c.mu.Lock()
	c.auth = &auth
	c.mu.Unlock()
}
