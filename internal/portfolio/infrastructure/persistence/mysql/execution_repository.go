package mysql

import (
	"context"
	"time"

	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"gorm.io/gorm"
)

type executionRepository struct {
	db *gorm.DB
}

// NewExecutionRepository 创建成交记录仓储实例
func NewExecutionRepository(db *gorm.DB) domain.ExecutionRepository {
	return &executionRepository{db: db}
}

func (r *executionRepository) Append(ctx context.Context, execution *domain.Execution) error {
	model := toExecutionModel(execution)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	execution.ID = model.ID
	return nil
}

func (r *executionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Execution, error) {
	var models []*ExecutionModel
	err := r.db.WithContext(ctx).
		Order("execution_date desc, id desc").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	executions := make([]*domain.Execution, len(models))
	for i, m := range models {
		executions[i] = toExecution(m)
	}
	return executions, nil
}

func (r *executionRepository) ListThrough(ctx context.Context, date time.Time) ([]*domain.Execution, error) {
	var models []*ExecutionModel
	err := r.db.WithContext(ctx).
		Where("execution_date <= ?", date).
		Order("execution_date asc, id asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	executions := make([]*domain.Execution, len(models))
	for i, m := range models {
		executions[i] = toExecution(m)
	}
	return executions, nil
}
