// Package remote declares the operations QuikNote consumes from its
// backend-as-a-service: account/session management, file storage and the two
// owner-scoped record collections.
package remote

import (
	"context"
	"errors"
	"io"
	"time"

	"quiknote-be/internal/entity"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrUnauthorized = errors.New("no active session")
	// ErrInvalidCredentials is returned by Login and UpdateEmail for a wrong
	// email or password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrConflict           = errors.New("conflicting record")
)

// NoteRecord is a note as returned by the backend. Pointer fields are nil when
// the response did not carry them. Notebooks holds the raw relationship value,
// which depending on backend configuration may be a string id, an embedded
// object, a list of either, or nil.
type NoteRecord struct {
	Id         string
	UserId     string
	Title      *string
	Content    *string
	Notebooks  interface{}
	IsFavorite *bool
	IsTrashed  *bool
	TrashedAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// NoteFields is the write shape for create and update. Nil fields are left
// untouched on update.
type NoteFields struct {
	Title      *string
	Content    *string
	Notebook   *entity.NotebookRef
	IsFavorite *bool
	IsTrashed  *bool
	TrashedAt  *time.Time
	// ClearTrashedAt writes an explicit null to trashedAt.
	ClearTrashedAt bool
}

type NotebookRecord struct {
	Id        string
	UserId    string
	Name      *string
	IsTrashed *bool
	TrashedAt *time.Time
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type NotebookFields struct {
	Name           *string
	IsTrashed      *bool
	TrashedAt      *time.Time
	ClearTrashedAt bool
}

// Collection is an owner-scoped record collection.
type Collection[R any, F any] interface {
	Create(ctx context.Context, ownerId string, fields F) (*R, error)
	ListByOwner(ctx context.Context, ownerId string) ([]*R, error)
	Get(ctx context.Context, id string) (*R, error)
	Update(ctx context.Context, id string, fields F) (*R, error)
	Delete(ctx context.Context, id string) error
}

type NoteCollection = Collection[NoteRecord, NoteFields]
type NotebookCollection = Collection[NotebookRecord, NotebookFields]

// Collections groups the two record collections used by the notes store.
type Collections interface {
	Notes() NoteCollection
	Notebooks() NotebookCollection
}

type AccountService interface {
	Login(ctx context.Context, email, password string) (*entity.AuthSession, *entity.Profile, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, email, password, name string) (*entity.Profile, error)
	// CurrentSession returns nil without error when nobody is signed in.
	CurrentSession(ctx context.Context) (*entity.AuthSession, error)
	CurrentProfile(ctx context.Context) (*entity.Profile, error)
	// Resume re-attaches previously issued tokens to this client.
	Resume(ctx context.Context, auth entity.AuthSession) error
	UpdateName(ctx context.Context, name string) (*entity.Profile, error)
	UpdateEmail(ctx context.Context, email, currentPassword string) (*entity.Profile, error)
	UpdatePreferences(ctx context.Context, prefs map[string]interface{}) (*entity.Profile, error)
}

type FileStorage interface {
	Upload(ctx context.Context, name, contentType string, data io.Reader) (string, error)
	Delete(ctx context.Context, fileId string) error
	ViewURL(fileId string) string
}

// Backend is one authenticated client of the backend-as-a-service. Each
// browser login gets its own Backend because the account session is
// client-side state.
type Backend interface {
	Collections
	Account() AccountService
	Files() FileStorage
}

// BackendFactory creates a fresh, signed-out Backend client.
type BackendFactory func() (Backend, error)
