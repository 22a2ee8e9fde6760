package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/remote"
)

// EmptyTrashReport tells the caller what EmptyTrash removed.
type EmptyTrashReport struct {
	Notes           int  `json:"notes"`
	Notebooks       int  `json:"notebooks"`
	NothingToDelete bool `json:"nothing_to_delete"`
}

// TrashNotebook trashes every active note filed under the notebook and then
// the notebook itself. All note calls finish before the notebook call starts.
// Any failure aborts the operation without rollback and without touching
// local state.
func (s *Store) TrashNotebook(ctx context.Context, id string) (*entity.Notebook, error) {
	if _, err := s.requireOwner(); err != nil {
		return nil, err
	}

	epoch := s.currentEpoch()
	at := s.now()
	targets := s.noteIds(func(n *entity.Note) bool {
		return n.Notebook.Is(id) && !n.IsTrashed
	})

	err := s.eachNote(ctx, targets, func(ctx context.Context, noteId string) error {
		_, err := s.notesRemote.Update(ctx, noteId, remote.TrashNoteFields(at))
		return err
	})
	if err != nil {
		return nil, s.fail("trash notebook", err, map[string]interface{}{
			"notebook_id": id,
			"notes":       len(targets),
		})
	}

	rec, err := s.notebooksRemote.Update(ctx, id, remote.TrashNotebookFields(at))
	if err != nil {
		return nil, s.fail("trash notebook", err, map[string]interface{}{"notebook_id": id})
	}

	var updated entity.Notebook
	s.apply(epoch, func() {
		for i := range s.notes {
			if s.notes[i].Notebook.Is(id) {
				s.notes[i].MarkTrashed(at)
			}
		}
		updated = s.mergeNotebookLocked(id, rec)
	})
	s.emit(ctx, NotebookTrashed, append([]string{id}, targets...)...)
	return &updated, nil
}

// RestoreNotebook restores every trashed note filed under the notebook and
// then the notebook. Notes that were trashed individually before the
// notebook was trashed are restored as well.
func (s *Store) RestoreNotebook(ctx context.Context, id string) (*entity.Notebook, error) {
	if _, err := s.requireOwner(); err != nil {
		return nil, err
	}

	epoch := s.currentEpoch()
	targets := s.noteIds(func(n *entity.Note) bool {
		return n.Notebook.Is(id) && n.IsTrashed
	})

	err := s.eachNote(ctx, targets, func(ctx context.Context, noteId string) error {
		_, err := s.notesRemote.Update(ctx, noteId, remote.RestoreNoteFields())
		return err
	})
	if err != nil {
		return nil, s.fail("restore notebook", err, map[string]interface{}{
			"notebook_id": id,
			"notes":       len(targets),
		})
	}

	rec, err := s.notebooksRemote.Update(ctx, id, remote.RestoreNotebookFields())
	if err != nil {
		return nil, s.fail("restore notebook", err, map[string]interface{}{"notebook_id": id})
	}

	restored := make(map[string]struct{}, len(targets))
	for _, noteId := range targets {
		restored[noteId] = struct{}{}
	}

	var updated entity.Notebook
	s.apply(epoch, func() {
		for i := range s.notes {
			if _, ok := restored[s.notes[i].Id]; ok {
				s.notes[i].MarkRestored()
			}
		}
		updated = s.mergeNotebookLocked(id, rec)
	})
	s.emit(ctx, NotebookRestored, append([]string{id}, targets...)...)
	return &updated, nil
}

// EmptyTrash permanently deletes every trashed note and notebook. With an
// empty trash it makes no remote call and reports NothingToDelete.
func (s *Store) EmptyTrash(ctx context.Context) (*EmptyTrashReport, error) {
	if _, err := s.requireOwner(); err != nil {
		return nil, err
	}

	epoch := s.currentEpoch()
	noteIds := s.noteIds(func(n *entity.Note) bool { return n.IsTrashed })
	notebookIds := s.notebookIds(func(nb *entity.Notebook) bool { return nb.IsTrashed })
	if len(noteIds) == 0 && len(notebookIds) == 0 {
		return &EmptyTrashReport{NothingToDelete: true}, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		return s.eachNote(ctx, noteIds, s.notesRemote.Delete)
	})
	g.Go(func() error {
		return s.eachNote(ctx, notebookIds, s.notebooksRemote.Delete)
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail("empty trash", err, map[string]interface{}{
			"notes":     len(noteIds),
			"notebooks": len(notebookIds),
		})
	}

	deleted := make(map[string]struct{}, len(noteIds)+len(notebookIds))
	for _, id := range noteIds {
		deleted[id] = struct{}{}
	}
	for _, id := range notebookIds {
		deleted[id] = struct{}{}
	}
	s.apply(epoch, func() {
		notes := s.notes[:0:0]
		for _, n := range s.notes {
			if _, ok := deleted[n.Id]; !ok {
				notes = append(notes, n)
			}
		}
		notebooks := s.notebooks[:0:0]
		for _, nb := range s.notebooks {
			if _, ok := deleted[nb.Id]; !ok {
				notebooks = append(notebooks, nb)
			}
		}
		s.notes, s.notebooks = notes, notebooks
	})

	s.emit(ctx, TrashEmptied, append(noteIds, notebookIds...)...)
	return &EmptyTrashReport{Notes: len(noteIds), Notebooks: len(notebookIds)}, nil
}

// eachNote runs call for every id with bounded concurrency and waits for all
// of them. The first error is returned.
func (s *Store) eachNote(ctx context.Context, ids []string, call func(context.Context, string) error) error {
	if len(ids) == 0 {
		return nil
	}
	var g errgroup.Group
	g.SetLimit(s.fanout)
	for _, id := range ids {
		g.Go(func() error {
			return call(ctx, id)
		})
	}
	return g.Wait()
}

func (s *Store) noteIds(match func(*entity.Note) bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for i := range s.notes {
		if match(&s.notes[i]) {
			ids = append(ids, s.notes[i].Id)
		}
	}
	return ids
}

func (s *Store) notebookIds(match func(*entity.Notebook) bool) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := []string{}
	for i := range s.notebooks {
		if match(&s.notebooks[i]) {
			ids = append(ids, s.notebooks[i].Id)
		}
	}
	return ids
}

// mergeNotebookLocked patches the notebook from rec. Caller holds mu.
func (s *Store) mergeNotebookLocked(id string, rec *remote.NotebookRecord) entity.Notebook {
	if i := s.notebookIndex(id); i >= 0 {
		s.notebooks[i] = mergeNotebook(s.notebooks[i], rec, s.now())
		return s.notebooks[i]
	}
	return notebookFromRecord(rec)
}
