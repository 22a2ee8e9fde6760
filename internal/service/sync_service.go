package service

import (
	"context"
	"time"

	"quiknote-be/internal/dto"
	"quiknote-be/internal/workspace"
)

type ISyncService interface {
	// Sync reloads both collections of one workspace.
	Sync(ctx context.Context, sessionId string) (*dto.SyncResponse, error)
	// ResyncAll reloads every signed-in workspace in memory and returns how
	// many were refreshed.
	ResyncAll(ctx context.Context) int
}

type syncService struct {
	registry WorkspaceRegistry
	clock    func() time.Time
}

func NewSyncService(registry WorkspaceRegistry) ISyncService {
	return &syncService{registry: registry, clock: time.Now}
}

func (s *syncService) Sync(ctx context.Context, sessionId string) (*dto.SyncResponse, error) {
	ws, err := s.registry.Get(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	ws.Store.FetchAll(ctx)
	return &dto.SyncResponse{
		Notes:     len(ws.Store.Notes()),
		Notebooks: len(ws.Store.Notebooks()),
		Loading:   ws.Store.Loading(),
		SyncedAt:  s.clock(),
	}, nil
}

func (s *syncService) ResyncAll(ctx context.Context) int {
	var targets []*workspace.Workspace
	s.registry.Each(func(ws *workspace.Workspace) {
		if ws.UserID() != "" {
			targets = append(targets, ws)
		}
	})
	for _, ws := range targets {
		ws.Store.FetchAll(ctx)
	}
	return len(targets)
}
