package store

import (
	"context"
	"strings"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote"
)

func (s *Store) CreateNotebook(ctx context.Context, name string) (*entity.Notebook, error) {
	uid, err := s.requireOwner()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	epoch := s.currentEpoch()
	rec, err := s.notebooksRemote.Create(ctx, uid, remote.NotebookFields{
		Name:      remote.String(name),
		IsTrashed: remote.Bool(false),
	})
	if err != nil {
		return nil, s.fail("create notebook", err, map[string]interface{}{"user_id": uid})
	}

	notebook := notebookFromRecord(rec)
	if notebook.UserId == "" {
		notebook.UserId = uid
	}
	s.apply(epoch, func() {
		s.notebooks = append([]entity.Notebook{notebook}, s.notebooks...)
	})
	s.emit(ctx, NotebookCreated, notebook.Id)
	return &notebook, nil
}

func (s *Store) UpdateNotebook(ctx context.Context, id, name string) (*entity.Notebook, error) {
	if _, err := s.requireOwner(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	return s.patchNotebook(ctx, id, "update notebook", NotebookUpdated, remote.NotebookFields{Name: remote.String(name)})
}

// DeleteNotebook removes the notebook permanently. Notes filed under it keep
// their reference.
func (s *Store) DeleteNotebook(ctx context.Context, id string) error {
	if _, err := s.requireOwner(); err != nil {
		return err
	}
	epoch := s.currentEpoch()
	if err := s.notebooksRemote.Delete(ctx, id); err != nil {
		return s.fail("delete notebook", err, map[string]interface{}{"notebook_id": id})
	}
	s.apply(epoch, func() {
		if i := s.notebookIndex(id); i >= 0 {
			s.notebooks = append(s.notebooks[:i:i], s.notebooks[i+1:]...)
		}
	})
	s.emit(ctx, NotebookDeleted, id)
	return nil
}

func (s *Store) patchNotebook(ctx context.Context, id, op string, kind ChangeKind, fields remote.NotebookFields) (*entity.Notebook, error) {
	if _, err := s.requireOwner(); err != nil {
		return nil, err
	}
	epoch := s.currentEpoch()
	rec, err := s.notebooksRemote.Update(ctx, id, fields)
	if err != nil {
		return nil, s.fail(op, err, map[string]interface{}{"notebook_id": id})
	}

	var updated entity.Notebook
	found := false
	s.apply(epoch, func() {
		if i := s.notebookIndex(id); i >= 0 {
			s.notebooks[i] = mergeNotebook(s.notebooks[i], rec, s.now())
			updated = s.notebooks[i]
			found = true
		}
	})
	if !found {
		updated = notebookFromRecord(rec)
	}
	s.emit(ctx, kind, id)
	return &updated, nil
}
