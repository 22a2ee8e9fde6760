package implementation

import (
	"context"
	"errors"

	"quiknote-be/internal/entity"
	"quiknote-be/internal/mapper"
	"quiknote-be/internal/model"
	"quiknote-be/internal/repository/contract"
	"quiknote-be/internal/repository/scope"
	"quiknote-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BoardRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BoardMapper
}

func NewBoardRepository(db *gorm.DB) contract.BoardRepository {
	return &BoardRepositoryImpl{
		db:     db,
		mapper: mapper.NewBoardMapper(),
	}
}

func (r *BoardRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *BoardRepositoryImpl) Save(ctx context.Context, placement *entity.CardPlacement) error {
	m := r.mapper.ToModel(placement)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "note_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"x", "y", "z_index", "color", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*placement = *r.mapper.ToEntity(m)
	return nil
}

func (r *BoardRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.CardPlacement, error) {
	var m model.BoardCard
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BoardRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CardPlacement, error) {
	var models []*model.BoardCard
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Scopes(scope.OrderByStack).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *BoardRepositoryImpl) MaxZIndex(ctx context.Context, userId string) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).
		Model(&model.BoardCard{}).
		Where("user_id = ?", userId).
		Select("COALESCE(MAX(z_index), 0)").
		Scan(&max).Error
	return max, err
}

func (r *BoardRepositoryImpl) DeleteByNoteIds(ctx context.Context, userId string, noteIds []string) error {
	if len(noteIds) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND note_id IN ?", userId, noteIds).
		Delete(&model.BoardCard{}).Error
}
