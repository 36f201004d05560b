package mysql

import (
	"context"

	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"gorm.io/gorm"
)

type targetRepository struct {
	db *gorm.DB
}

// NewTargetRepository 创建目标配置仓储实例
func NewTargetRepository(db *gorm.DB) domain.TargetRepository {
	return &targetRepository{db: db}
}

func (r *targetRepository) List(ctx context.Context) ([]*domain.Target, error) {
	var models []*TargetModel
	err := r.db.WithContext(ctx).
		Order("target_weight desc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	targets := make([]*domain.Target, len(models))
	for i, m := range models {
		targets[i] = toTarget(m)
	}
	return targets, nil
}
