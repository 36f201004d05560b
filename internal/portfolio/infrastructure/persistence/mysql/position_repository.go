package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type positionRepository struct {
	db *gorm.DB
}

// NewPositionRepository 创建持仓仓储实例
func NewPositionRepository(db *gorm.DB) domain.PositionRepository {
	return &positionRepository{db: db}
}

func (r *positionRepository) ListOpen(ctx context.Context) ([]*domain.Position, error) {
	var models []*PositionModel
	err := r.db.WithContext(ctx).
		Where("shares > 0").
		Order("ticker asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	positions := make([]*domain.Position, len(models))
	for i, m := range models {
		positions[i] = toPosition(m)
	}
	return positions, nil
}

func (r *positionRepository) GetByTicker(ctx context.Context, ticker string) (*domain.Position, error) {
	var model PositionModel
	err := r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toPosition(&model), nil
}

func (r *positionRepository) Save(ctx context.Context, position *domain.Position) error {
	model := toPositionModel(position)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "ticker"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"shares", "avg_cost_basis", "total_cost_basis",
				"current_value", "unrealized_pnl", "last_updated", "updated_at",
			}),
		}).
		Create(model).Error
}

func (r *positionRepository) Delete(ctx context.Context, ticker string) error {
	return r.db.WithContext(ctx).
		Where("ticker = ?", ticker).
		Delete(&PositionModel{}).Error
}
