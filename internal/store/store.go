// Package store holds the in-memory note and notebook collections of one
// signed-in user and keeps them consistent with the backend. Every mutation
// issues its remote call first and patches local state only on success.
package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/remote"
)

const module = "NotesStore"

type Store struct {
	notesRemote     remote.NoteCollection
	notebooksRemote remote.NotebookCollection
	owner           Owner
	log             logger.ILogger
	sink            EventSink
	clock           func() time.Time
	policy          SyncPolicy
	fanout          int

	mu        sync.RWMutex
	notes     []entity.Note
	notebooks []entity.Notebook
	// epoch changes on Clear so responses that arrive for a previous
	// session are dropped.
	epoch uint64

	inflight atomic.Int32
}

func New(collections remote.Collections, owner Owner, log logger.ILogger, opts ...Option) *Store {
	s := &Store{
		notesRemote:     collections.Notes(),
		notebooksRemote: collections.Notebooks(),
		owner:           owner,
		log:             log,
		clock:           time.Now,
		policy:          SyncMerge,
		fanout:          defaultFanout,
		notes:           []entity.Note{},
		notebooks:       []entity.Notebook{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	return s.inflight.Load() > 0
}

// FetchAll loads both collections concurrently. Each collection is replaced
// only when its own read succeeds; a failed read is logged and leaves the
// previous contents in place. Without a signed-in user this is a no-op.
func (s *Store) FetchAll(ctx context.Context) {
	if uid := s.owner.UserID(); uid != "" {
		s.fetchAll(ctx, uid)
	}
}

// fetchAll reloads both collections concurrently and reports whether the
// notes collection was replaced.
func (s *Store) fetchAll(ctx context.Context, uid string) bool {
	var (
		g              errgroup.Group
		notesOK, nbsOK bool
	)
	g.Go(func() error {
		notesOK = s.fetchNotes(ctx, uid)
		return nil
	})
	g.Go(func() error {
		nbsOK = s.fetchNotebooks(ctx, uid)
		return nil
	})
	_ = g.Wait()

	if notesOK || nbsOK {
		s.emit(ctx, CollectionsSynced)
	}
	return notesOK
}

// FetchNotes reloads only the notes collection.
func (s *Store) FetchNotes(ctx context.Context) {
	if uid := s.owner.UserID(); uid != "" && s.fetchNotes(ctx, uid) {
		s.emit(ctx, CollectionsSynced)
	}
}

// FetchNotebooks reloads only the notebooks collection.
func (s *Store) FetchNotebooks(ctx context.Context) {
	if uid := s.owner.UserID(); uid != "" && s.fetchNotebooks(ctx, uid) {
		s.emit(ctx, CollectionsSynced)
	}
}

func (s *Store) fetchNotes(ctx context.Context, uid string) bool {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	epoch := s.currentEpoch()
	records, err := s.notesRemote.ListByOwner(ctx, uid)
	if err != nil {
		s.log.Error(module, "Failed to fetch notes", map[string]interface{}{
			"user_id": uid,
			"error":   err,
		})
		return false
	}

	notes := make([]entity.Note, 0, len(records))
	for _, rec := range records {
		notes = append(notes, noteFromRecord(rec))
	}
	return s.apply(epoch, func() { s.notes = notes })
}

func (s *Store) fetchNotebooks(ctx context.Context, uid string) bool {
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	epoch := s.currentEpoch()
	records, err := s.notebooksRemote.ListByOwner(ctx, uid)
	if err != nil {
		s.log.Error(module, "Failed to fetch notebooks", map[string]interface{}{
			"user_id": uid,
			"error":   err,
		})
		return false
	}

	notebooks := make([]entity.Notebook, 0, len(records))
	for _, rec := range records {
		notebooks = append(notebooks, notebookFromRecord(rec))
	}
	return s.apply(epoch, func() { s.notebooks = notebooks })
}

// Clear drops all local state. It is called on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = []entity.Note{}
	s.notebooks = []entity.Notebook{}
	s.epoch++
}

func (s *Store) currentEpoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

// apply runs fn under the write lock unless Clear happened since epoch was
// taken.
func (s *Store) apply(epoch uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return false
	}
	fn()
	return true
}

func (s *Store) requireOwner() (string, error) {
	uid := s.owner.UserID()
	if uid == "" {
		return "", ErrNotAuthenticated
	}
	return uid, nil
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

func (s *Store) fail(op string, err error, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["error"] = err
	s.log.Error(module, "Failed to "+op, details)
	return &OperationError{Op: op, Err: err}
}

func (s *Store) emit(ctx context.Context, kind ChangeKind, ids ...string) {
	if s.sink == nil {
		return
	}
	if ids == nil {
		ids = []string{}
	}
	change := Change{Kind: kind, UserId: s.owner.UserID(), EntityIds: ids, At: s.now()}
	if err := s.sink.Publish(ctx, change); err != nil {
		s.log.Warn(module, "Failed to publish change", map[string]interface{}{
			"kind":  string(kind),
			"error": err,
		})
	}
}

// indexes below assume the caller holds mu.

func (s *Store) noteIndex(id string) int {
	for i := range s.notes {
		if s.notes[i].Id == id {
			return i
		}
	}
	return -1
}

func (s *Store) notebookIndex(id string) int {
	for i := range s.notebooks {
		if s.notebooks[i].Id == id {
			return i
		}
	}
	return -1
}
