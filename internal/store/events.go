package store

import (
	"context"
	"time"
)

type ChangeKind string

const (
	NoteCreated       ChangeKind = "note.created"
	NoteUpdated       ChangeKind = "note.updated"
	NoteDeleted       ChangeKind = "note.deleted"
	NoteTrashed       ChangeKind = "note.trashed"
	NoteRestored      ChangeKind = "note.restored"
	NoteFavorited     ChangeKind = "note.favorited"
	NotebookCreated   ChangeKind = "notebook.created"
	NotebookUpdated   ChangeKind = "notebook.updated"
	NotebookDeleted   ChangeKind = "notebook.deleted"
	NotebookTrashed   ChangeKind = "notebook.trashed"
	NotebookRestored  ChangeKind = "notebook.restored"
	TrashEmptied      ChangeKind = "trash.emptied"
	CollectionsSynced ChangeKind = "collections.synced"
)

// Change describes a local collection mutation that followed a successful
// remote call.
type Change struct {
	Kind      ChangeKind `json:"kind"`
	UserId    string     `json:"user_id"`
	EntityIds []string   `json:"entity_ids"`
	At        time.Time  `json:"at"`
}

// EventSink receives changes after the local state has been patched. A sink
// error is logged and never fails the operation.
type EventSink interface {
	Publish(ctx context.Context, change Change) error
}

// Owner yields the id of the signed-in user, or "" when signed out.
type Owner interface {
	UserID() string
}

// OwnerFunc adapts a function to Owner.
type OwnerFunc func() string

func (f OwnerFunc) UserID() string { return f() }

// SyncPolicy selects how UpdateNote reconciles local state.
type SyncPolicy int

const (
	// SyncMerge patches the note from the update response and re-reads it
	// when the response omits a relationship the patch changed.
	SyncMerge SyncPolicy = iota
	// SyncRefetch reloads both collections after every update.
	SyncRefetch
)

const defaultFanout = 16

type Option func(*Store)

func WithEventSink(sink EventSink) Option {
	return func(s *Store) { s.sink = sink }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func WithSyncPolicy(policy SyncPolicy) Option {
	return func(s *Store) { s.policy = policy }
}

// WithFanout caps the number of concurrent per-item remote calls issued by
// the notebook cascades and EmptyTrash.
func WithFanout(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.fanout = n
		}
	}
}
