package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
)

// PositionModel MySQL 持仓表映射
type PositionModel struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
	Ticker         string          `gorm:"column:ticker;type:varchar(16);uniqueIndex;not null;comment:标的"`
	Shares         decimal.Decimal `gorm:"column:shares;type:decimal(32,18);not null"`
	AvgCostBasis   decimal.Decimal `gorm:"column:avg_cost_basis;type:decimal(32,18);not null"`
	TotalCostBasis decimal.Decimal `gorm:"column:total_cost_basis;type:decimal(32,18);not null"`
	CurrentValue   decimal.Decimal `gorm:"column:current_value;type:decimal(32,18);not null"`
	UnrealizedPnL  decimal.Decimal `gorm:"column:unrealized_pnl;type:decimal(32,18);not null"`
	LastUpdated    time.Time       `gorm:"column:last_updated;not null"`
}

func (PositionModel) TableName() string { return "positions" }

// TargetModel MySQL 目标配置表映射，只读参考数据
// target_weight 按百分比存储（30 表示 30%）
type TargetModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time       `gorm:"column:created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at"`
	Ticker       string          `gorm:"column:ticker;type:varchar(16);uniqueIndex;not null"`
	Name         string          `gorm:"column:name;type:varchar(128);not null"`
	Sector       string          `gorm:"column:sector;type:varchar(64);not null"`
	TargetWeight decimal.Decimal `gorm:"column:target_weight;type:decimal(32,18);not null"`
	TargetValue  decimal.Decimal `gorm:"column:target_value;type:decimal(32,18);not null"`
	TargetShares decimal.Decimal `gorm:"column:target_shares;type:decimal(32,18);not null"`
	Priority     int             `gorm:"column:priority;not null;default:0"`
}

func (TargetModel) TableName() string { return "targets" }

// ExecutionModel MySQL 成交记录表映射，只追加
type ExecutionModel struct {
	ID            uint            `gorm:"primaryKey;autoIncrement"`
	CreatedAt     time.Time       `gorm:"column:created_at"`
	Ticker        string          `gorm:"column:ticker;type:varchar(16);index;not null"`
	Action        string          `gorm:"column:action;type:varchar(8);not null"`
	Shares        decimal.Decimal `gorm:"column:shares;type:decimal(32,18);not null"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(32,18);not null"`
	TotalCost     decimal.Decimal `gorm:"column:total_cost;type:decimal(32,18);not null"`
	Fees          decimal.Decimal `gorm:"column:fees;type:decimal(32,18);not null"`
	ExecutionDate time.Time       `gorm:"column:execution_date;index;not null"`
	Broker        string          `gorm:"column:broker;type:varchar(64)"`
	Notes         string          `gorm:"column:notes;type:varchar(255)"`
}

func (ExecutionModel) TableName() string { return "executions" }

// --- mapping helpers ---

func toPositionModel(p *domain.Position) *PositionModel {
	if p == nil {
		return nil
	}
	return &PositionModel{
		Ticker:         p.Ticker,
		Shares:         p.Shares,
		AvgCostBasis:   p.AvgCostBasis,
		TotalCostBasis: p.TotalCostBasis,
		CurrentValue:   p.CurrentValue,
		UnrealizedPnL:  p.UnrealizedPnL,
		LastUpdated:    p.LastUpdated,
	}
}

func toPosition(m *PositionModel) *domain.Position {
	if m == nil {
		return nil
	}
	return &domain.Position{
		Ticker:         m.Ticker,
		Shares:         m.Shares,
		AvgCostBasis:   m.AvgCostBasis,
		TotalCostBasis: m.TotalCostBasis,
		CurrentValue:   m.CurrentValue,
		UnrealizedPnL:  m.UnrealizedPnL,
		LastUpdated:    m.LastUpdated,
	}
}

func toTarget(m *TargetModel) *domain.Target {
	if m == nil {
		return nil
	}
	return &domain.Target{
		Ticker:       m.Ticker,
		Name:         m.Name,
		Sector:       m.Sector,
		TargetWeight: m.TargetWeight,
		TargetValue:  m.TargetValue,
		TargetShares: m.TargetShares,
		Priority:     m.Priority,
	}
}

func toExecutionModel(e *domain.Execution) *ExecutionModel {
	if e == nil {
		return nil
	}
	return &ExecutionModel{
		ID:            e.ID,
		Ticker:        e.Ticker,
		Action:        string(e.Action),
		Shares:        e.Shares,
		Price:         e.Price,
		TotalCost:     e.TotalCost,
		Fees:          e.Fees,
		ExecutionDate: e.ExecutionDate,
		Broker:        e.Broker,
		Notes:         e.Notes,
	}
}

func toExecution(m *ExecutionModel) *domain.Execution {
	if m == nil {
		return nil
	}
	return &domain.Execution{
		ID:            m.ID,
		Ticker:        m.Ticker,
		Action:        domain.Action(m.Action),
		Shares:        m.Shares,
		Price:         m.Price,
		TotalCost:     m.TotalCost,
		Fees:          m.Fees,
		ExecutionDate: m.ExecutionDate,
		Broker:        m.Broker,
		Notes:         m.Notes,
	}
}
