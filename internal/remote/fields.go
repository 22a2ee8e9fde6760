package remote

import (
	"time"

	"quiknote-be/internal/entity"
)

func String(v string) *string { return &v }
func Bool(v bool) *bool       { return &v }

func TrashNoteFields(at time.Time) NoteFields {
	return NoteFields{IsTrashed: Bool(true), TrashedAt: &at}
}

func RestoreNoteFields() NoteFields {
	return NoteFields{IsTrashed: Bool(false), ClearTrashedAt: true}
}

func FavoriteNoteFields(value bool) NoteFields {
	return NoteFields{IsFavorite: Bool(value)}
}

func TrashNotebookFields(at time.Time) NotebookFields {
	return NotebookFields{IsTrashed: Bool(true), TrashedAt: &at}
}

func RestoreNotebookFields() NotebookFields {
	return NotebookFields{IsTrashed: Bool(false), ClearTrashedAt: true}
}

// NotebookPtr is a helper for NoteFields.Notebook.
func NotebookPtr(ref entity.NotebookRef) *entity.NotebookRef { return &ref }
