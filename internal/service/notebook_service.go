package service

import (
	"context"

	"quiknote-be/internal/dto"
	"quiknote-be/internal/entity"
	"quiknote-be/internal/store"
)

type INotebookService interface {
	GetAll(ctx context.Context, sessionId string) ([]*dto.NotebookResponse, error)
	Show(ctx context.Context, sessionId, id string) (*dto.ShowNotebookResponse, error)
	Create(ctx context.Context, sessionId string, req *dto.CreateNotebookRequest) (*dto.NotebookResponse, error)
	Update(ctx context.Context, sessionId string, req *dto.UpdateNotebookRequest) (*dto.NotebookResponse, error)
	Delete(ctx context.Context, sessionId, id string) error
	Trash(ctx context.Context, sessionId, id string) (*dto.NotebookResponse, error)
	Restore(ctx context.Context, sessionId, id string) (*dto.NotebookResponse, error)
}

type notebookService struct {
	registry WorkspaceRegistry
}

func NewNotebookService(registry WorkspaceRegistry) INotebookService {
	return &notebookService{registry: registry}
}

func (c *notebookService) store(ctx context.Context, sessionId string) (*store.Store, error) {
	ws, err := c.registry.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	return ws.Store, nil
}

func activeCount(st *store.Store, notebookId string) int {
	return len(st.NotesByNotebook(notebookId))
}

func (c *notebookService) respond(st *store.Store, nb *entity.Notebook) *dto.NotebookResponse {
	return dto.NewNotebookResponse(*nb, activeCount(st, nb.Id))
}

func (c *notebookService) GetAll(ctx context.Context, sessionId string) ([]*dto.NotebookResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	notebooks := st.ActiveNotebooks()
	res := make([]*dto.NotebookResponse, 0, len(notebooks))
	for i := range notebooks {
		res = append(res, c.respond(st, &notebooks[i]))
	}
	return res, nil
}

func (c *notebookService) Show(ctx context.Context, sessionId, id string) (*dto.ShowNotebookResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	nb, ok := st.Notebook(id)
	if !ok {
		return nil, store.ErrNotebookNotFound
	}

	// A trashed notebook shows the notes that went to the trash with it.
	notes := st.NotesByNotebook(id)
	if nb.IsTrashed {
		notes = notes[:0]
		for _, n := range st.Notes() {
			if n.Notebook.Is(id) {
				notes = append(notes, n)
			}
		}
	}
	return &dto.ShowNotebookResponse{
		Notebook: c.respond(st, nb),
		Notes:    dto.NewNoteResponses(notes),
	}, nil
}

func (c *notebookService) Create(ctx context.Context, sessionId string, req *dto.CreateNotebookRequest) (*dto.NotebookResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	nb, err := st.CreateNotebook(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return c.respond(st, nb), nil
}

func (c *notebookService) Update(ctx context.Context, sessionId string, req *dto.UpdateNotebookRequest) (*dto.NotebookResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	nb, err := st.UpdateNotebook(ctx, req.Id, req.Name)
	if err != nil {
		return nil, err
	}
	return c.respond(st, nb), nil
}

func (c *notebookService) Delete(ctx context.Context, sessionId, id string) error {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return err
	}
	return st.DeleteNotebook(ctx, id)
}

func (c *notebookService) Trash(ctx context.Context, sessionId, id string) (*dto.NotebookResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	nb, err := st.TrashNotebook(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.respond(st, nb), nil
}

func (c *notebookService) Restore(ctx context.Context, sessionId, id string) (*dto.NotebookResponse, error) {
	st, err := c.store(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	nb, err := st.RestoreNotebook(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.respond(st, nb), nil
}
