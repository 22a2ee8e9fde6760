package store

import (
	"context"
	"strings"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote"
)

type NoteInput struct {
	Title      string
	Content    string
	Notebook   entity.NotebookRef
	IsFavorite bool
}

// NotePatch carries the user-editable note fields. Nil fields are unchanged.
type NotePatch struct {
	Title    *string
	Content  *string
	Notebook *entity.NotebookRef
}

// CreateNote creates the note remotely and prepends it locally. Nothing is
// inserted before the backend confirms.
func (s *Store) CreateNote(ctx context.Context, in NoteInput) (*entity.Note, error) {
	uid, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}

	epoch := s.currentEpoch()
	rec, err := s.notesRemote.Create(ctx, uid, remote.NoteFields{
		Title:      remote.String(in.Title),
		Content:    remote.String(in.Content),
		Notebook:   remote.NotebookPtr(in.Notebook),
		IsFavorite: remote.Bool(in.IsFavorite),
		IsTrashed:  remote.Bool(false),
	})
	if err != nil {
		return nil, s.fail("create note", err, map[string]interface{}{"user_id": uid})
	}

	note := noteFromRecord(rec)
	if note.UserId == "" {
		note.UserId = uid
	}
	// A create response that drops the relationship still belongs where the
	// user filed it.
	if note.Notebook.IsNone() && !in.Notebook.IsNone() {
		note.Notebook = in.Notebook
	}
	s.apply(epoch, func() {
		s.notes = append([]entity.Note{note}, s.notes...)
	})
	s.emit(ctx, NoteCreated, note.Id)
	return &note, nil
}

// UpdateNote writes the patch remotely and reconciles the local note
// according to the store's SyncPolicy.
func (s *Store) UpdateNote(ctx context.Context, id string, patch NotePatch) (*entity.Note, error) {
	uid, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleRequired
	}

	epoch := s.currentEpoch()
	rec, err := s.notesRemote.Update(ctx, id, remote.NoteFields{
		Title:    patch.Title,
		Content:  patch.Content,
		Notebook: patch.Notebook,
	})
	if err != nil {
		return nil, s.fail("update note", err, map[string]interface{}{"note_id": id})
	}

	// A failed or superseded refetch falls back to merging the response.
	if s.policy == SyncRefetch && s.fetchAll(ctx, uid) {
		if note, ok := s.Note(id); ok {
			s.emit(ctx, NoteUpdated, id)
			return note, nil
		}
		note := noteFromRecord(rec)
		return &note, nil
	}

	keepRelation := patch.Notebook == nil
	if patch.Notebook != nil && !patch.Notebook.IsNone() && NormalizeNotebookRef(rec.Notebooks).IsNone() {
		// The response does not say where the note lives now; ask.
		if fresh, err := s.notesRemote.Get(ctx, id); err == nil {
			rec = fresh
		} else {
			s.log.Warn(module, "Failed to re-read updated note", map[string]interface{}{
				"note_id": id,
				"error":   err,
			})
			rec.Notebooks = *patch.Notebook
		}
	}

	var updated entity.Note
	found := false
	s.apply(epoch, func() {
		if i := s.noteIndex(id); i >= 0 {
			s.notes[i] = mergeNote(s.notes[i], rec, keepRelation, s.now())
			updated = s.notes[i]
			found = true
		}
	})
	if !found {
		updated = noteFromRecord(rec)
	}
	s.emit(ctx, NoteUpdated, id)
	return &updated, nil
}

// DeleteNote removes the note permanently.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	if _, err := s.requireOwner(); err != nil {
		return err
	}
	epoch := s.currentEpoch()
	if err := s.notesRemote.Delete(ctx, id); err != nil {
		return s.fail("delete note", err, map[string]interface{}{"note_id": id})
	}
	s.apply(epoch, func() {
		if i := s.noteIndex(id); i >= 0 {
			s.notes = append(s.notes[:i:i], s.notes[i+1:]...)
		}
	})
	s.emit(ctx, NoteDeleted, id)
	return nil
}

func (s *Store) TrashNote(ctx context.Context, id string) (*entity.Note, error) {
	return s.patchNote(ctx, id, "trash note", NoteTrashed, remote.TrashNoteFields(s.now()))
}

func (s *Store) RestoreNote(ctx context.Context, id string) (*entity.Note, error) {
	return s.patchNote(ctx, id, "restore note", NoteRestored, remote.RestoreNoteFields())
}

// ToggleFavorite sets the favorite flag to value.
func (s *Store) ToggleFavorite(ctx context.Context, id string, value bool) (*entity.Note, error) {
	return s.patchNote(ctx, id, "update favorite", NoteFavorited, remote.FavoriteNoteFields(value))
}

// patchNote applies a flag-only update. Such updates never touch the
// relationship, so a response without one keeps the local reference.
func (s *Store) patchNote(ctx context.Context, id, op string, kind ChangeKind, fields remote.NoteFields) (*entity.Note, error) {
	if _, err := s.requireOwner(); err != nil {
		return nil, err
	}
	epoch := s.currentEpoch()
	rec, err := s.notesRemote.Update(ctx, id, fields)
	if err != nil {
		return nil, s.fail(op, err, map[string]interface{}{"note_id": id})
	}

	var updated entity.Note
	found := false
	s.apply(epoch, func() {
		if i := s.noteIndex(id); i >= 0 {
			s.notes[i] = mergeNote(s.notes[i], rec, true, s.now())
			updated = s.notes[i]
			found = true
		}
	})
	if !found {
		updated = noteFromRecord(rec)
	}
	s.emit(ctx, kind, id)
	return &updated, nil
}
