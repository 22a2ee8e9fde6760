package supabase

import (
	"encoding/json"
	"time"

	"quiknote-be/internal/remote"
)

// Column names shared by both tables.
const (
	colId         = "id"
	colUserId     = "user_id"
	colIsTrashed  = "is_trashed"
	colTrashedAt  = "trashed_at"
	colCreatedAt  = "created_at"
	colUpdatedAt  = "updated_at"
	colTitle      = "title"
	colContent    = "content"
	colNotebookId = "notebook_id"
	colFavorite   = "is_favorite"
	colName       = "name"
)

type noteRow struct {
	Id         string          `json:"id"`
	UserId     string          `json:"user_id"`
	Title      *string         `json:"title"`
	Content    *string         `json:"content"`
	NotebookId *string         `json:"notebook_id"`
	Notebooks  json.RawMessage `json:"notebooks,omitempty"`
	IsFavorite *bool           `json:"is_favorite"`
	IsTrashed  *bool           `json:"is_trashed"`
	TrashedAt  *time.Time      `json:"trashed_at"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at"`
}

// record prefers an embedded relationship over the plain foreign key.
func (r noteRow) record() *remote.NoteRecord {
	rec := &remote.NoteRecord{
		Id:         r.Id,
		UserId:     r.UserId,
		Title:      r.Title,
		Content:    r.Content,
		IsFavorite: r.IsFavorite,
		IsTrashed:  r.IsTrashed,
		TrashedAt:  r.TrashedAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	switch {
	case len(r.Notebooks) > 0 && string(r.Notebooks) != "null":
		rec.Notebooks = r.Notebooks
	case r.NotebookId != nil:
		rec.Notebooks = *r.NotebookId
	}
	return rec
}

type notebookRow struct {
	Id        string     `json:"id"`
	UserId    string     `json:"user_id"`
	Name      *string    `json:"name"`
	IsTrashed *bool      `json:"is_trashed"`
	TrashedAt *time.Time `json:"trashed_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func (r notebookRow) record() *remote.NotebookRecord {
	return &remote.NotebookRecord{
		Id:        r.Id,
		UserId:    r.UserId,
		Name:      r.Name,
		IsTrashed: r.IsTrashed,
		TrashedAt: r.TrashedAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// notePayload maps the set fields to columns. A nil value writes NULL.
func notePayload(f remote.NoteFields) map[string]interface{} {
	m := map[string]interface{}{}
	if f.Title != nil {
		m[colTitle] = *f.Title
	}
	if f.Content != nil {
		m[colContent] = *f.Content
	}
	if f.Notebook != nil {
		if id, ok := f.Notebook.ID(); ok {
			m[colNotebookId] = id
		} else {
			m[colNotebookId] = nil
		}
	}
	if f.IsFavorite != nil {
		m[colFavorite] = *f.IsFavorite
	}
	trashPayload(m, f.IsTrashed, f.TrashedAt, f.ClearTrashedAt)
	return m
}

func notebookPayload(f remote.NotebookFields) map[string]interface{} {
	m := map[string]interface{}{}
	if f.Name != nil {
		m[colName] = *f.Name
	}
	trashPayload(m, f.IsTrashed, f.TrashedAt, f.ClearTrashedAt)
	return m
}

func trashPayload(m map[string]interface{}, trashed *bool, at *time.Time, clear bool) {
	if trashed != nil {
		m[colIsTrashed] = *trashed
	}
	if at != nil {
		m[colTrashedAt] = at.UTC().Format(time.RFC3339Nano)
	}
	if clear {
		m[colTrashedAt] = nil
	}
}
