package store

import "quiknote-be/internal/entity"

// Queries are synchronous and return copies; callers cannot mutate the store
// through them.

func (s *Store) Notes() []entity.Note {
	return s.filterNotes(func(*entity.Note) bool { return true })
}

func (s *Store) Notebooks() []entity.Notebook {
	return s.filterNotebooks(func(*entity.Notebook) bool { return true })
}

func (s *Store) Note(id string) (*entity.Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.noteIndex(id); i >= 0 {
		n := s.notes[i]
		return &n, true
	}
	return nil, false
}

func (s *Store) Notebook(id string) (*entity.Notebook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.notebookIndex(id); i >= 0 {
		nb := s.notebooks[i]
		return &nb, true
	}
	return nil, false
}

// FavoriteNotes returns favorites that are not in the trash.
func (s *Store) FavoriteNotes() []entity.Note {
	return s.filterNotes(func(n *entity.Note) bool { return n.IsFavorite && !n.IsTrashed })
}

func (s *Store) TrashedNotes() []entity.Note {
	return s.filterNotes(func(n *entity.Note) bool { return n.IsTrashed })
}

func (s *Store) TrashedNotebooks() []entity.Notebook {
	return s.filterNotebooks(func(nb *entity.Notebook) bool { return nb.IsTrashed })
}

func (s *Store) ActiveNotes() []entity.Note {
	return s.filterNotes(func(n *entity.Note) bool { return !n.IsTrashed })
}

func (s *Store) ActiveNotebooks() []entity.Notebook {
	return s.filterNotebooks(func(nb *entity.Notebook) bool { return !nb.IsTrashed })
}

// NotesByNotebook returns the active notes filed under the notebook.
func (s *Store) NotesByNotebook(notebookId string) []entity.Note {
	return s.filterNotes(func(n *entity.Note) bool { return !n.IsTrashed && n.Notebook.Is(notebookId) })
}

func (s *Store) filterNotes(match func(*entity.Note) bool) []entity.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Note, 0, len(s.notes))
	for i := range s.notes {
		if match(&s.notes[i]) {
			out = append(out, s.notes[i])
		}
	}
	return out
}

func (s *Store) filterNotebooks(match func(*entity.Notebook) bool) []entity.Notebook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Notebook, 0, len(s.notebooks))
	for i := range s.notebooks {
		if match(&s.notebooks[i]) {
			out = append(out, s.notebooks[i])
		}
	}
	return out
}
