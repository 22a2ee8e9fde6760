package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/repository/specification"
)

// BoardRepository is the in-process fallback used without a database. It
// only understands the ByUser, ByNote and ByNotes specifications.
type BoardRepository struct {
	mu    sync.RWMutex
	cards map[string]map[string]entity.CardPlacement
}

func NewBoardRepository() *BoardRepository {
	return &BoardRepository{cards: make(map[string]map[string]entity.CardPlacement)}
}

func (r *BoardRepository) Save(ctx context.Context, placement *entity.CardPlacement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	placement.UpdatedAt = time.Now().UTC()
	user, ok := r.cards[placement.UserId]
	if !ok {
		user = make(map[string]entity.CardPlacement)
		r.cards[placement.UserId] = user
	}
	user[placement.NoteId] = *placement
	return nil
}

func (r *BoardRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CardPlacement, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *BoardRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CardPlacement, error) {
	var (
		userId  string
		noteIds map[string]struct{}
	)
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByUser:
			userId = s.UserId
		case specification.ByNote:
			noteIds = map[string]struct{}{s.NoteId: {}}
		case specification.ByNotes:
			noteIds = make(map[string]struct{}, len(s.NoteIds))
			for _, id := range s.NoteIds {
				noteIds[id] = struct{}{}
			}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*entity.CardPlacement, 0)
	for uid, user := range r.cards {
		if userId != "" && uid != userId {
			continue
		}
		for noteId, card := range user {
			if noteIds != nil {
				if _, ok := noteIds[noteId]; !ok {
					continue
				}
			}
			c := card
			result = append(result, &c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ZIndex < result[j].ZIndex })
	return result, nil
}

func (r *BoardRepository) MaxZIndex(ctx context.Context, userId string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var max int64
	for _, card := range r.cards[userId] {
		if card.ZIndex > max {
			max = card.ZIndex
		}
	}
	return max, nil
}

func (r *BoardRepository) DeleteByNoteIds(ctx context.Context, userId string, noteIds []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range noteIds {
		delete(r.cards[userId], id)
	}
	return nil
}
