// Package memory is an in-process stand-in for the backend-as-a-service. It
// keeps accounts, records and files in maps, can render the note/notebook
// relationship in every shape the real backend produces, and supports failure
// injection for tests.
package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote"
)

// RelationShape selects how a note's notebook relationship is rendered.
type RelationShape int

const (
	ShapeScalar     RelationShape = iota // "nb1"
	ShapeObject                          // {"$id": "nb1"}
	ShapeList                            // ["nb1"]
	ShapeObjectList                      // [{"$id": "nb1"}]
)

var (
	ErrEmailTaken         = fmt.Errorf("a user with the same email already exists: %w", remote.ErrConflict)
	ErrInvalidCredentials = remote.ErrInvalidCredentials
)

type account struct {
	id           string
	email        string
	name         string
	passwordHash []byte
	prefs        map[string]interface{}
}

type noteRow struct {
	id         string
	userId     string
	title      string
	content    string
	notebookId string
	isFavorite bool
	isTrashed  bool
	trashedAt  *time.Time
	createdAt  time.Time
	updatedAt  *time.Time
}

type notebookRow struct {
	id        string
	userId    string
	name      string
	isTrashed bool
	trashedAt *time.Time
	createdAt time.Time
	updatedAt *time.Time
}

type failure struct {
	id  string
	err error
}

type Server struct {
	mu sync.Mutex

	accounts  map[string]*account
	byEmail   map[string]string
	tokens    map[string]entity.AuthSession
	notes     map[string]*noteRow
	notebooks map[string]*notebookRow
	files     map[string][]byte

	shape         RelationShape
	echoRelations bool
	clock         func() time.Time
	tokenTTL      time.Duration
	seq           int64

	failures map[string][]failure
	calls    map[string]int
}

type Option func(*Server)

func WithRelationShape(shape RelationShape) Option {
	return func(s *Server) { s.shape = shape }
}

// WithoutRelationEcho makes update responses omit the notebook relationship,
// like a backend that only returns relationships on expanded reads.
func WithoutRelationEcho() Option {
	return func(s *Server) { s.echoRelations = false }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Server) { s.clock = clock }
}

func NewServer(opts ...Option) *Server {
	s := &Server{
		accounts:      make(map[string]*account),
		byEmail:       make(map[string]string),
		tokens:        make(map[string]entity.AuthSession),
		notes:         make(map[string]*noteRow),
		notebooks:     make(map[string]*notebookRow),
		files:         make(map[string][]byte),
		shape:         ShapeScalar,
		echoRelations: true,
		clock:         time.Now,
		tokenTTL:      24 * time.Hour,
		failures:      make(map[string][]failure),
		calls:         make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClient returns a signed-out client bound to this server.
func (s *Server) NewClient() *Client {
	return &Client{server: s}
}

func (s *Server) Factory() remote.BackendFactory {
	return func() (remote.Backend, error) {
		return s.NewClient(), nil
	}
}

// FailOn makes the next matching operation return err. An empty id matches
// any record. Failures stay armed until Heal is called.
func (s *Server) FailOn(op, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], failure{id: id, err: err})
}

func (s *Server) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string][]failure)
}

// Calls returns how many times op was invoked, failed calls included.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// NoteCount returns the number of stored notes across all users.
func (s *Server) NoteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

func (s *Server) NotebookCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notebooks)
}

// FileCount returns the number of stored files.
func (s *Server) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// StoredNotebookId reads the raw relationship column of a note, bypassing
// rendering. Empty when the note is detached or missing.
func (s *Server) StoredNotebookId(noteId string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.notes[noteId]; ok {
		return row.notebookId
	}
	return ""
}

// enter records the call and returns any injected failure. Caller holds mu.
func (s *Server) enter(op, id string) error {
	s.calls[op]++
	for _, f := range s.failures[op] {
		if f.id == "" || f.id == id {
			return f.err
		}
	}
	return nil
}

func (s *Server) nextId(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%06d", prefix, s.seq)
}

func (s *Server) now() time.Time {
	return s.clock().UTC()
}

func (s *Server) renderRelation(notebookId string) interface{} {
	switch s.shape {
	case ShapeObject:
		if notebookId == "" {
			return nil
		}
		return map[string]interface{}{"$id": notebookId}
	case ShapeList:
		if notebookId == "" {
			return []interface{}{}
		}
		return []interface{}{notebookId}
	case ShapeObjectList:
		if notebookId == "" {
			return []interface{}{}
		}
		return []interface{}{map[string]interface{}{"$id": notebookId}}
	default:
		if notebookId == "" {
			return nil
		}
		return notebookId
	}
}

func (s *Server) noteRecord(row *noteRow, withRelation bool) *remote.NoteRecord {
	title, content := row.title, row.content
	fav, trashed := row.isFavorite, row.isTrashed
	rec := &remote.NoteRecord{
		Id:         row.id,
		UserId:     row.userId,
		Title:      &title,
		Content:    &content,
		IsFavorite: &fav,
		IsTrashed:  &trashed,
		TrashedAt:  copyTime(row.trashedAt),
		CreatedAt:  row.createdAt,
		UpdatedAt:  copyTime(row.updatedAt),
	}
	if withRelation {
		rec.Notebooks = s.renderRelation(row.notebookId)
	}
	return rec
}

func notebookRecord(row *notebookRow) *remote.NotebookRecord {
	name, trashed := row.name, row.isTrashed
	return &remote.NotebookRecord{
		Id:        row.id,
		UserId:    row.userId,
		Name:      &name,
		IsTrashed: &trashed,
		TrashedAt: copyTime(row.trashedAt),
		CreatedAt: row.createdAt,
		UpdatedAt: copyTime(row.updatedAt),
	}
}

func sortedNotes(rows []*noteRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].createdAt.Equal(rows[j].createdAt) {
			return rows[i].id > rows[j].id
		}
		return rows[i].createdAt.After(rows[j].createdAt)
	})
}

func sortedNotebooks(rows []*notebookRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].createdAt.Equal(rows[j].createdAt) {
			return rows[i].id > rows[j].id
		}
		return rows[i].createdAt.After(rows[j].createdAt)
	})
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
