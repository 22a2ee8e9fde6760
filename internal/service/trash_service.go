package service

import (
	"context"

	"quiknote-be/internal/dto"
)

type ITrashService interface {
	List(ctx context.Context, sessionId string) (*dto.TrashResponse, error)
	Empty(ctx context.Context, sessionId string) (*dto.EmptyTrashResponse, error)
}

type trashService struct {
	registry WorkspaceRegistry
	board    IBoardService
}

// NewTrashService prunes board placements of permanently deleted notes when
// board is non-nil.
func NewTrashService(registry WorkspaceRegistry, board IBoardService) ITrashService {
	return &trashService{registry: registry, board: board}
}

func (s *trashService) List(ctx context.Context, sessionId string) (*dto.TrashResponse, error) {
	ws, err := s.registry.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	st := ws.Store

	notebooks := st.TrashedNotebooks()
	res := &dto.TrashResponse{
		Notes:     dto.NewNoteResponses(st.TrashedNotes()),
		Notebooks: make([]*dto.NotebookResponse, 0, len(notebooks)),
	}
	for _, nb := range notebooks {
		res.Notebooks = append(res.Notebooks, dto.NewNotebookResponse(nb, 0))
	}
	return res, nil
}

func (s *trashService) Empty(ctx context.Context, sessionId string) (*dto.EmptyTrashResponse, error) {
	ws, err := s.registry.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	report, err := ws.Store.EmptyTrash(ctx)
	if err != nil {
		return nil, err
	}
	if s.board != nil && report.Notes > 0 {
		s.board.Prune(ctx, ws)
	}
	return &dto.EmptyTrashResponse{
		DeletedNotes:     report.Notes,
		DeletedNotebooks: report.Notebooks,
		NothingToDelete:  report.NothingToDelete,
	}, nil
}
