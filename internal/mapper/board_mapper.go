package mapper

import (
	"quiknote-be/internal/entity"
	"quiknote-be/internal/model"
)

type BoardMapper struct{}

func NewBoardMapper() *BoardMapper {
	return &BoardMapper{}
}

func (m *BoardMapper) ToEntity(c *model.BoardCard) *entity.CardPlacement {
	if c == nil {
		return nil
	}
	return &entity.CardPlacement{
		NoteId:    c.NoteId,
		UserId:    c.UserId,
		X:         c.X,
		Y:         c.Y,
		ZIndex:    c.ZIndex,
		Color:     c.Color,
		UpdatedAt: c.UpdatedAt,
	}
}

func (m *BoardMapper) ToModel(p *entity.CardPlacement) *model.BoardCard {
	if p == nil {
		return nil
	}
	return &model.BoardCard{
		UserId:    p.UserId,
		NoteId:    p.NoteId,
		X:         p.X,
		Y:         p.Y,
		ZIndex:    p.ZIndex,
		Color:     p.Color,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *BoardMapper) ToEntities(cards []*model.BoardCard) []*entity.CardPlacement {
	entities := make([]*entity.CardPlacement, 0, len(cards))
	for _, c := range cards {
		entities = append(entities, m.ToEntity(c))
	}
	return entities
}
