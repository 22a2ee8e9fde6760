package service

import (
	"context"
	"math/rand/v2"
	"sort"

	"quiknote-be/internal/board"
	"quiknote-be/internal/dto"
	"quiknote-be/internal/entity"
	"quiknote-be/internal/pkg/logger"
	"quiknote-be/internal/repository/contract"
	"quiknote-be/internal/repository/specification"
	"quiknote-be/internal/store"
	"quiknote-be/internal/workspace"
)

type IBoardService interface {
	Layout(ctx context.Context, sessionId string) ([]*dto.BoardCardResponse, error)
	Move(ctx context.Context, sessionId string, req *dto.MoveCardRequest) (*dto.BoardCardResponse, error)
	BringToFront(ctx context.Context, sessionId, noteId string) (*dto.BoardCardResponse, error)
	Paint(ctx context.Context, sessionId string, req *dto.PaintCardRequest) (*dto.BoardCardResponse, error)
	// Prune drops placements of notes that no longer exist.
	Prune(ctx context.Context, ws *workspace.Workspace)
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type boardService struct {
	registry WorkspaceRegistry
	repo     contract.BoardRepository
	src      board.Source
	log      logger.ILogger
}

// NewBoardService places new cards with src, or math/rand when src is nil.
func NewBoardService(registry WorkspaceRegistry, repo contract.BoardRepository, src board.Source, log logger.ILogger) IBoardService {
	if src == nil {
		src = globalRand{}
	}
	return &boardService{registry: registry, repo: repo, src: src, log: log}
}

func (s *boardService) open(ctx context.Context, sessionId string) (*store.Store, string, error) {
	ws, err := s.registry.Get(ctx, sessionId)
	if err != nil {
		return nil, "", err
	}
	uid := ws.UserID()
	if uid == "" {
		return nil, "", store.ErrNotAuthenticated
	}
	return ws.Store, uid, nil
}

func cardResponse(note entity.Note, p *entity.CardPlacement) *dto.BoardCardResponse {
	return &dto.BoardCardResponse{
		NoteId:   note.Id,
		Title:    note.Title,
		Content:  note.Content,
		X:        p.X,
		Y:        p.Y,
		ZIndex:   p.ZIndex,
		Color:    p.Color,
		TextTone: string(board.TextTone(p.Color)),
	}
}

func (s *boardService) newPlacement(uid, noteId string, z int64) *entity.CardPlacement {
	pos := board.InitialPosition(s.src)
	return &entity.CardPlacement{
		NoteId: noteId,
		UserId: uid,
		X:      pos.X,
		Y:      pos.Y,
		ZIndex: z,
		Color:  board.DefaultColor,
	}
}

// Layout returns every active note as a card, placing cards seen for the
// first time. Cards are ordered back to front.
func (s *boardService) Layout(ctx context.Context, sessionId string) ([]*dto.BoardCardResponse, error) {
	st, uid, err := s.open(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	notes := st.ActiveNotes()
	if len(notes) == 0 {
		return []*dto.BoardCardResponse{}, nil
	}

	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.Id)
	}
	placements, err := s.repo.FindAll(ctx, specification.ByUser{UserId: uid}, specification.ByNotes{NoteIds: ids})
	if err != nil {
		return nil, err
	}
	byNote := make(map[string]*entity.CardPlacement, len(placements))
	for _, p := range placements {
		byNote[p.NoteId] = p
	}

	maxZ, err := s.repo.MaxZIndex(ctx, uid)
	if err != nil {
		return nil, err
	}

	cards := make([]*dto.BoardCardResponse, 0, len(notes))
	// Oldest notes first so newer cards stack on top.
	for i := len(notes) - 1; i >= 0; i-- {
		note := notes[i]
		p, ok := byNote[note.Id]
		if !ok {
			maxZ++
			p = s.newPlacement(uid, note.Id, maxZ)
			if err := s.repo.Save(ctx, p); err != nil {
				return nil, err
			}
		}
		cards = append(cards, cardResponse(note, p))
	}
	sort.SliceStable(cards, func(i, j int) bool { return cards[i].ZIndex < cards[j].ZIndex })
	return cards, nil
}

// card resolves an active note and its placement, creating an unsaved
// placement on top of the stack when there is none.
func (s *boardService) card(ctx context.Context, st *store.Store, uid, noteId string) (entity.Note, *entity.CardPlacement, error) {
	note, ok := st.Note(noteId)
	if !ok || note.IsTrashed {
		return entity.Note{}, nil, store.ErrNoteNotFound
	}
	p, err := s.repo.FindOne(ctx, specification.ByUser{UserId: uid}, specification.ByNote{NoteId: noteId})
	if err != nil {
		return entity.Note{}, nil, err
	}
	if p == nil {
		maxZ, err := s.repo.MaxZIndex(ctx, uid)
		if err != nil {
			return entity.Note{}, nil, err
		}
		p = s.newPlacement(uid, noteId, maxZ+1)
	}
	return *note, p, nil
}

func (s *boardService) Move(ctx context.Context, sessionId string, req *dto.MoveCardRequest) (*dto.BoardCardResponse, error) {
	st, uid, err := s.open(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	note, p, err := s.card(ctx, st, uid, req.NoteId)
	if err != nil {
		return nil, err
	}

	pos := board.Clamp(board.Point{X: p.X, Y: p.Y}, board.Point{X: req.DX, Y: req.DY}, board.Area{Width: req.Width, Height: req.Height})
	p.X, p.Y = pos.X, pos.Y
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return cardResponse(note, p), nil
}

func (s *boardService) BringToFront(ctx context.Context, sessionId, noteId string) (*dto.BoardCardResponse, error) {
	st, uid, err := s.open(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	note, p, err := s.card(ctx, st, uid, noteId)
	if err != nil {
		return nil, err
	}

	maxZ, err := s.repo.MaxZIndex(ctx, uid)
	if err != nil {
		return nil, err
	}
	if p.ZIndex < maxZ {
		p.ZIndex = maxZ + 1
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return cardResponse(note, p), nil
}

func (s *boardService) Paint(ctx context.Context, sessionId string, req *dto.PaintCardRequest) (*dto.BoardCardResponse, error) {
	color, err := board.NormalizeColor(req.Color)
	if err != nil {
		return nil, err
	}
	st, uid, err := s.open(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	note, p, err := s.card(ctx, st, uid, req.NoteId)
	if err != nil {
		return nil, err
	}

	p.Color = color
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return cardResponse(note, p), nil
}

func (s *boardService) Prune(ctx context.Context, ws *workspace.Workspace) {
	uid := ws.UserID()
	if uid == "" {
		return
	}
	placements, err := s.repo.FindAll(ctx, specification.ByUser{UserId: uid})
	if err != nil {
		s.log.Warn("BoardService", "Failed to load placements for pruning", map[string]interface{}{"user_id": uid, "error": err})
		return
	}

	var stale []string
	for _, p := range placements {
		if _, ok := ws.Store.Note(p.NoteId); !ok {
			stale = append(stale, p.NoteId)
		}
	}
	if len(stale) == 0 {
		return
	}
	if err := s.repo.DeleteByNoteIds(ctx, uid, stale); err != nil {
		s.log.Warn("BoardService", "Failed to prune placements", map[string]interface{}{"user_id": uid, "error": err})
	}
}
