package domain

import (
	"context"
	"time"
)

// PositionRepository 持仓仓储接口
type PositionRepository interface {
	// ListOpen 列出 shares > 0 的持仓，按 ticker 排序
	ListOpen(ctx context.Context) ([]*Position, error)
	// GetByTicker 按 ticker 获取持仓，未找到时返回 nil
	GetByTicker(ctx context.Context, ticker string) (*Position, error)
	// Save 新建或更新持仓
	Save(ctx context.Context, position *Position) error
	// Delete 删除持仓行（清仓时）
	Delete(ctx context.Context, ticker string) error
}

// TargetRepository 目标配置仓储接口，只读
type TargetRepository interface {
	// List 按 target_weight 降序列出全部目标配置
	List(ctx context.Context) ([]*Target, error)
}

// ExecutionRepository 成交记录仓储接口，追加写入
type ExecutionRepository interface {
	// Append 追加一条成交记录
	Append(ctx context.Context, execution *Execution) error
	// ListRecent 按成交时间倒序列出最近的成交记录
	ListRecent(ctx context.Context, limit int) ([]*Execution, error)
	// ListThrough 列出截止日期（含）之前的全部成交记录
	ListThrough(ctx context.Context, date time.Time) ([]*Execution, error)
}
