// Package application 组合管理应用服务：配置对比、交易执行、价格刷新、成交查询
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

var (
	// ErrInvalidAction 交易方向不合法
	ErrInvalidAction = errors.New("action must be BUY or SELL")
	// ErrNonPositiveShares 数量必须为正
	ErrNonPositiveShares = errors.New("shares must be positive")
	// ErrNonPositivePrice 价格必须为正
	ErrNonPositivePrice = errors.New("price must be positive")
)

// 成交记录查询默认条数
const defaultTransactionLimit = 100

// PriceReader 最新价格读取接口，由行情数据上下文提供实现
type PriceReader interface {
	LatestAdjClose(ctx context.Context, ticker string) (decimal.Decimal, bool, error)
	LatestAdjCloseBatch(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error)
}

// AllocationRow 配置对比表中的一行
type AllocationRow struct {
	Ticker        string          `json:"ticker"`
	Name          string          `json:"name"`
	Sector        string          `json:"sector"`
	Shares        decimal.Decimal `json:"shares"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	ActualWeight  decimal.Decimal `json:"actual_weight"`
	TargetWeight  decimal.Decimal `json:"target_weight"`
	WeightDiff    decimal.Decimal `json:"weight_diff"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// AllocationReport 目标 vs 实际配置报告
type AllocationReport struct {
	Rows       []AllocationRow `json:"rows"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// Summary 组合汇总
type Summary struct {
	TotalValue    decimal.Decimal `json:"total_value"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	OverallReturn decimal.Decimal `json:"overall_return_pct"`
	PositionCount int             `json:"position_count"`
	LastUpdated   time.Time       `json:"last_updated"`
}

// PortfolioService 组合管理应用服务
type PortfolioService struct {
	positions  domain.PositionRepository
	targets    domain.TargetRepository
	executions domain.ExecutionRepository
	prices     PriceReader
	events     domain.EventPublisher
}

// NewPortfolioService 创建组合管理应用服务
func NewPortfolioService(
	positions domain.PositionRepository,
	targets domain.TargetRepository,
	executions domain.ExecutionRepository,
	prices PriceReader,
	events domain.EventPublisher,
) *PortfolioService {
	return &PortfolioService{
		positions:  positions,
		targets:    targets,
		executions: executions,
		prices:     prices,
		events:     events,
	}
}

// Allocation 生成目标 vs 实际配置报告
// 实际权重 = 持仓市值 / 组合总市值；有目标无持仓的 ticker 也占一行
func (s *PortfolioService) Allocation(ctx context.Context) (*AllocationReport, error) {
	positions, err := s.positions.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	targets, err := s.targets.List(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range positions {
		total = total.Add(p.CurrentValue)
	}

	byTicker := make(map[string]*domain.Position, len(positions))
	for _, p := range positions {
		byTicker[p.Ticker] = p
	}

	hundred := decimal.NewFromInt(100)
	rows := make([]AllocationRow, 0, len(targets))
	seen := make(map[string]bool, len(targets))

	for _, t := range targets {
		seen[t.Ticker] = true
		row := AllocationRow{
			Ticker:       t.Ticker,
			Name:         t.Name,
			Sector:       t.Sector,
			TargetWeight: t.TargetWeight,
		}
		if p, ok := byTicker[t.Ticker]; ok {
			row.Shares = p.Shares
			row.CurrentValue = p.CurrentValue
			row.UnrealizedPnL = p.UnrealizedPnL
			if total.IsPositive() {
				row.ActualWeight = p.CurrentValue.Div(total).Mul(hundred)
			}
		}
		row.WeightDiff = row.ActualWeight.Sub(t.TargetWeight)
		rows = append(rows, row)
	}

	// 有持仓但不在目标配置中的 ticker
	for _, p := range positions {
		if seen[p.Ticker] {
			continue
		}
		row := AllocationRow{
			Ticker:        p.Ticker,
			Shares:        p.Shares,
			CurrentValue:  p.CurrentValue,
			UnrealizedPnL: p.UnrealizedPnL,
		}
		if total.IsPositive() {
			row.ActualWeight = p.CurrentValue.Div(total).Mul(hundred)
		}
		row.WeightDiff = row.ActualWeight
		rows = append(rows, row)
	}

	return &AllocationReport{Rows: rows, TotalValue: total}, nil
}

// ExecuteTrade 执行交易：先写成交记录，再读改写持仓
// SELL 不允许超过持有数量；清仓时删除持仓行
func (s *PortfolioService) ExecuteTrade(ctx context.Context, ticker string, action domain.Action, shares, price decimal.Decimal) (*domain.Execution, error) {
	if !action.Valid() {
		return nil, ErrInvalidAction
	}
	if !shares.IsPositive() {
		return nil, ErrNonPositiveShares
	}
	if !price.IsPositive() {
		return nil, ErrNonPositivePrice
	}

	position, err := s.positions.GetByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}

	if action == domain.ActionSell {
		held := decimal.Zero
		if position != nil {
			held = position.Shares
		}
		if held.LessThan(shares) {
			return nil, fmt.Errorf("cannot sell %s shares - only %s available", shares.String(), held.String())
		}
	}

	execution := domain.NewExecution(ticker, action, shares, price)
	if err := s.executions.Append(ctx, execution); err != nil {
		return nil, err
	}

	switch action {
	case domain.ActionBuy:
		if position == nil {
			position = domain.NewPosition(ticker, shares, price)
		} else {
			position.ApplyBuy(shares, price)
		}
		if err := s.positions.Save(ctx, position); err != nil {
			return nil, err
		}
	case domain.ActionSell:
		if err := position.ApplySell(shares, price); err != nil {
			return nil, err
		}
		if position.IsClosed() {
			if err := s.positions.Delete(ctx, ticker); err != nil {
				return nil, err
			}
		} else if err := s.positions.Save(ctx, position); err != nil {
			return nil, err
		}
	}

	logger.Info(ctx, "trade executed",
		"ticker", ticker, "action", string(action),
		"shares", shares.String(), "price", price.String())

	if err := s.events.PublishTradeExecuted(domain.TradeExecutedEvent{
		Ticker:     ticker,
		Action:     action,
		Shares:     shares,
		Price:      price,
		TotalCost:  execution.TotalCost,
		ExecutedAt: execution.ExecutionDate,
	}); err != nil {
		logger.Warn(ctx, "failed to publish trade event", "error", err)
	}

	return execution, nil
}

// RefreshPrices 用最新复权收盘价刷新全部持仓的市值与未实现盈亏，返回更新条数
func (s *PortfolioService) RefreshPrices(ctx context.Context) (int, error) {
	positions, err := s.positions.ListOpen(ctx)
	if err != nil {
		return 0, err
	}
	if len(positions) == 0 {
		return 0, nil
	}

	tickers := make([]string, len(positions))
	for i, p := range positions {
		tickers[i] = p.Ticker
	}
	latest, err := s.prices.LatestAdjCloseBatch(ctx, tickers)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, p := range positions {
		price, ok := latest[p.Ticker]
		if !ok {
			logger.Warn(ctx, "no price available, skipping", "ticker", p.Ticker)
			continue
		}
		p.RefreshValue(price)
		if err := s.positions.Save(ctx, p); err != nil {
			return updated, err
		}
		updated++
	}

	logger.Info(ctx, "prices refreshed", "updated", updated)

	if err := s.events.PublishPricesRefreshed(domain.PricesRefreshedEvent{
		UpdatedCount: updated,
		RefreshedAt:  time.Now(),
	}); err != nil {
		logger.Warn(ctx, "failed to publish refresh event", "error", err)
	}

	return updated, nil
}

// Transactions 返回最近的成交记录，limit 非正时取默认条数
func (s *PortfolioService) Transactions(ctx context.Context, limit int) ([]*domain.Execution, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	return s.executions.ListRecent(ctx, limit)
}

// Positions 返回当前全部持仓
func (s *PortfolioService) Positions(ctx context.Context) ([]*domain.Position, error) {
	return s.positions.ListOpen(ctx)
}

// Summarize 返回组合汇总：总市值、总成本、未实现盈亏、总回报率
func (s *PortfolioService) Summarize(ctx context.Context) (*Summary, error) {
	positions, err := s.positions.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		TotalValue:    decimal.Zero,
		TotalCost:     decimal.Zero,
		UnrealizedPnL: decimal.Zero,
		OverallReturn: decimal.Zero,
		PositionCount: len(positions),
	}
	for _, p := range positions {
		summary.TotalValue = summary.TotalValue.Add(p.CurrentValue)
		summary.TotalCost = summary.TotalCost.Add(p.TotalCostBasis)
		summary.UnrealizedPnL = summary.UnrealizedPnL.Add(p.UnrealizedPnL)
		if p.LastUpdated.After(summary.LastUpdated) {
			summary.LastUpdated = p.LastUpdated
		}
	}
	if summary.TotalCost.IsPositive() {
		summary.OverallReturn = summary.TotalValue.Sub(summary.TotalCost).
			Div(summary.TotalCost).
			Mul(decimal.NewFromInt(100))
	}
	return summary, nil
}
