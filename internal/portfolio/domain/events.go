package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeExecutedEvent 交易执行事件
type TradeExecutedEvent struct {
	Ticker     string          `json:"ticker"`
	Action     Action          `json:"action"`
	Shares     decimal.Decimal `json:"shares"`
	Price      decimal.Decimal `json:"price"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// PricesRefreshedEvent 价格刷新事件
type PricesRefreshedEvent struct {
	UpdatedCount int       `json:"updated_count"`
	RefreshedAt  time.Time `json:"refreshed_at"`
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	PublishTradeExecuted(event TradeExecutedEvent) error
	PublishPricesRefreshed(event PricesRefreshedEvent) error
}
