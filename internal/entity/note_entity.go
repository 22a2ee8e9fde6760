package entity

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// NotebookRef is the canonical in-memory notebook association of a note:
// either Some(id) or None.
type NotebookRef struct {
	id string
}

// NoNotebook is the None value.
var NoNotebook = NotebookRef{}

func SomeNotebook(id string) NotebookRef {
	return NotebookRef{id: id}
}

func (r NotebookRef) ID() (string, bool) {
	return r.id, r.id != ""
}

func (r NotebookRef) IsNone() bool {
	return r.id == ""
}

// Is reports whether the reference points at the given notebook.
// None never matches, not even an empty id.
func (r NotebookRef) Is(notebookId string) bool {
	return r.id != "" && r.id == notebookId
}

func (r NotebookRef) String() string {
	if r.id == "" {
		return "<none>"
	}
	return r.id
}

func (r NotebookRef) MarshalJSON() ([]byte, error) {
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}

// UnmarshalJSON accepts null or an id; a blank id is None.
func (r *NotebookRef) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = NoNotebook
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*r = NotebookRef{id: strings.TrimSpace(id)}
	return nil
}

type Note struct {
	Id         string      `json:"id"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	UserId     string      `json:"user_id"`
	Notebook   NotebookRef `json:"notebook_id"`
	IsFavorite bool        `json:"is_favorite"`
	IsTrashed  bool        `json:"is_trashed"`
	TrashedAt  *time.Time  `json:"trashed_at"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  *time.Time  `json:"updated_at"`
}

// MarkTrashed sets the trash flag and timestamp together.
func (n *Note) MarkTrashed(at time.Time) {
	n.IsTrashed = true
	n.TrashedAt = &at
}

// MarkRestored clears the trash flag and timestamp together.
func (n *Note) MarkRestored() {
	n.IsTrashed = false
	n.TrashedAt = nil
}
