package dto

import (
	"time"

	"quiknote-be/internal/entity"
)

type CreateNotebookRequest struct {
	Name string `json:"name" validate:"max=256"`
}

type UpdateNotebookRequest struct {
	Id   string `json:"-"`
	Name string `json:"name" validate:"max=256"`
}

type NotebookResponse struct {
	Id        string     `json:"id"`
	Name      string     `json:"name"`
	IsTrashed bool       `json:"is_trashed"`
	TrashedAt *time.Time `json:"trashed_at"`
	NoteCount int        `json:"note_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func NewNotebookResponse(nb entity.Notebook, noteCount int) *NotebookResponse {
	return &NotebookResponse{
		Id:        nb.Id,
		Name:      nb.Name,
		IsTrashed: nb.IsTrashed,
		TrashedAt: nb.TrashedAt,
		NoteCount: noteCount,
		CreatedAt: nb.CreatedAt,
		UpdatedAt: nb.UpdatedAt,
	}
}

type ShowNotebookResponse struct {
	Notebook *NotebookResponse `json:"notebook"`
	Notes    []*NoteResponse   `json:"notes"`
}
