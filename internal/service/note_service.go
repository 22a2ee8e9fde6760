package service

import (
	"context"

	"quiknote-be/internal/dto"
	"quiknote-be/internal/entity"
	"quiknote-be/internal/store"
)

type INoteService interface {
	List(ctx context.Context, sessionId string, query *dto.ListNotesQuery) ([]*dto.NoteResponse, error)
	Show(ctx context.Context, sessionId, id string) (*dto.NoteResponse, error)
	Create(ctx context.Context, sessionId string, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, sessionId string, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, sessionId, id string) error
	Trash(ctx context.Context, sessionId, id string) (*dto.NoteResponse, error)
	Restore(ctx context.Context, sessionId, id string) (*dto.NoteResponse, error)
	Favorite(ctx context.Context, sessionId string, req *dto.FavoriteNoteRequest) (*dto.NoteResponse, error)
}

type noteService struct {
	registry WorkspaceRegistry
	board    IBoardService
}

// NewNoteService prunes the board placement of a permanently deleted note
// when board is non-nil.
func NewNoteService(registry WorkspaceRegistry, board IBoardService) INoteService {
	return &noteService{registry: registry, board: board}
}

func (c *noteService) store(ctx context.Context, sessionId string) (*store.Store, error) {
	ws, err := c.registry.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return ws.Store, nil
}

func (c *noteService) List(ctx context.Context, sessionId string, query *dto.ListNotesQuery) ([]*dto.NoteResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	var notes []entity.Note
	switch query.View {
	case "active":
		notes = st.ActiveNotes()
	case "favorites":
		notes = st.FavoriteNotes()
	case "trashed":
		notes = st.TrashedNotes()
	default:
		notes = st.Notes()
	}

	if query.NotebookId != "" {
		filtered := notes[:0]
		for _, n := range notes {
			if n.Notebook.Is(query.NotebookId) {
				filtered = append(filtered, n)
			}
		}
		notes = filtered
	}
	return dto.NewNoteResponses(notes), nil
}

func (c *noteService) Show(ctx context.Context, sessionId, id string) (*dto.NoteResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	note, ok := st.Note(id)
	if !ok {
		return nil, store.ErrNoteNotFound
	}
	return dto.NewNoteResponse(*note), nil
}

func (c *noteService) Create(ctx context.Context, sessionId string, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	note, err := st.CreateNote(ctx, store.NoteInput{
		Title:      req.Title,
		Content:    req.Content,
		Notebook:   notebookRef(req.NotebookId),
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponse(*note), nil
}

func (c *noteService) Update(ctx context.Context, sessionId string, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	patch := store.NotePatch{Title: req.Title, Content: req.Content}
	if req.NotebookId.Set {
		ref := req.NotebookId.Ref
		patch.Notebook = &ref
	}
	note, err := st.UpdateNote(ctx, req.Id, patch)
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponse(*note), nil
}

func (c *noteService) Delete(ctx context.Context, sessionId, id string) error {
	ws, err := c.registry.Get(ctx, sessionId)
	if err != nil {
		return err
	}
	if err := ws.Store.DeleteNote(ctx, id); err != nil {
		return err
	}
	if c.board != nil {
		c.board.Prune(ctx, ws)
	}
	return nil
}

func (c *noteService) Trash(ctx context.Context, sessionId, id string) (*dto.NoteResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	note, err := st.TrashNote(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponse(*note), nil
}

func (c *noteService) Restore(ctx context.Context, sessionId, id string) (*dto.NoteResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	note, err := st.RestoreNote(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponse(*note), nil
}

func (c *noteService) Favorite(ctx context.Context, sessionId string, req *dto.FavoriteNoteRequest) (*dto.NoteResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	note, err := st.ToggleFavorite(ctx, req.Id, *req.Value)
	if err != nil {
		return nil, err
	}
	return dto.NewNoteResponse(*note), nil
}
