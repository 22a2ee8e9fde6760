package contract

import (
	"context"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/repository/specification"
)

type BoardRepository interface {
	// Save inserts or replaces the placement of (UserId, NoteId).
	Save(ctx context.Context, placement *entity.CardPlacement) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CardPlacement, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CardPlacement, error)
	MaxZIndex(ctx context.Context, userId string) (int64, error)
	DeleteByNoteIds(ctx context.Context, userId string, noteIds []string) error
}
