package dto

import (
	"encoding/json"
	"time"

	"quiknote-be/internal/entity"
)

// NotebookField distinguishes an absent "notebook_id" (Set false) from an
// explicit null, which detaches the note.
type NotebookField struct {
	Set bool
	Ref entity.NotebookRef
}

func (f *NotebookField) UnmarshalJSON(data []byte) error {
	f.Set = true
	return json.Unmarshal(data, &f.Ref)
}

type CreateNoteRequest struct {
	Title      string  `json:"title" validate:"max=512"`
	Content    string  `json:"content"`
	NotebookId *string `json:"notebook_id"`
	IsFavorite bool    `json:"is_favorite"`
}

type UpdateNoteRequest struct {
	Id         string        `json:"-"`
	Title      *string       `json:"title" validate:"omitempty,max=512"`
	Content    *string       `json:"content"`
	NotebookId NotebookField `json:"notebook_id"`
}

type FavoriteNoteRequest struct {
	Id    string `json:"-"`
	Value *bool  `json:"value" validate:"required"`
}

// ListNotesQuery selects one of the derived note views.
type ListNotesQuery struct {
	View       string `query:"view" validate:"omitempty,oneof=all active favorites trashed"`
	NotebookId string `query:"notebook_id"`
}

type NoteResponse struct {
	Id         string     `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	NotebookId *string    `json:"notebook_id"`
	IsFavorite bool       `json:"is_favorite"`
	IsTrashed  bool       `json:"is_trashed"`
	TrashedAt  *time.Time `json:"trashed_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

func NewNoteResponse(n entity.Note) *NoteResponse {
	res := &NoteResponse{
		Id:         n.Id,
		Title:      n.Title,
		Content:    n.Content,
		IsFavorite: n.IsFavorite,
		IsTrashed:  n.IsTrashed,
		TrashedAt:  n.TrashedAt,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
	if id, ok := n.Notebook.ID(); ok {
		res.NotebookId = &id
	}
	return res
}

func NewNoteResponses(notes []entity.Note) []*NoteResponse {
	out := make([]*NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, NewNoteResponse(n))
	}
	return out
}
