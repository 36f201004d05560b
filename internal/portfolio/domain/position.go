// Package domain 组合管理上下文的领域模型：持仓、目标配置、成交记录
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Position 持仓：某一 ticker 的持有数量及其成本与市值
type Position struct {
	Ticker         string
	Shares         decimal.Decimal
	AvgCostBasis   decimal.Decimal
	TotalCostBasis decimal.Decimal
	CurrentValue   decimal.Decimal
	UnrealizedPnL  decimal.Decimal
	LastUpdated    time.Time
}

// NewPosition 以一笔买入开仓
func NewPosition(ticker string, shares, price decimal.Decimal) *Position {
	value := shares.Mul(price)
	return &Position{
		Ticker:         ticker,
		Shares:         shares,
		AvgCostBasis:   price,
		TotalCostBasis: value,
		CurrentValue:   value,
		UnrealizedPnL:  decimal.Zero,
		LastUpdated:    time.Now(),
	}
}

// ApplyBuy 买入加仓：成本基数累加，均价重算，市值按成交价刷新
func (p *Position) ApplyBuy(shares, price decimal.Decimal) {
	value := shares.Mul(price)
	p.Shares = p.Shares.Add(shares)
	p.TotalCostBasis = p.TotalCostBasis.Add(value)
	p.AvgCostBasis = p.TotalCostBasis.Div(p.Shares)
	p.CurrentValue = p.Shares.Mul(price)
	p.UnrealizedPnL = p.CurrentValue.Sub(p.TotalCostBasis)
	p.LastUpdated = time.Now()
}

// ApplySell 卖出减仓：成本基数按原均价等比扣减；不允许卖出超过持有数量
func (p *Position) ApplySell(shares, price decimal.Decimal) error {
	if p.Shares.LessThan(shares) {
		return fmt.Errorf("cannot sell %s shares - only %s available", shares.String(), p.Shares.String())
	}

	costPerShare := p.TotalCostBasis.Div(p.Shares)
	p.Shares = p.Shares.Sub(shares)
	p.TotalCostBasis = costPerShare.Mul(p.Shares)

	if p.Shares.IsZero() {
		p.AvgCostBasis = decimal.Zero
		p.CurrentValue = decimal.Zero
		p.UnrealizedPnL = decimal.Zero
	} else {
		p.AvgCostBasis = p.TotalCostBasis.Div(p.Shares)
		p.CurrentValue = p.Shares.Mul(price)
		p.UnrealizedPnL = p.CurrentValue.Sub(p.TotalCostBasis)
	}
	p.LastUpdated = time.Now()
	return nil
}

// RefreshValue 用最新价格刷新市值与未实现盈亏
func (p *Position) RefreshValue(price decimal.Decimal) {
	p.CurrentValue = p.Shares.Mul(price)
	p.UnrealizedPnL = p.CurrentValue.Sub(p.TotalCostBasis)
	p.LastUpdated = time.Now()
}

// IsClosed 持仓是否已清空（清空后持仓行删除）
func (p *Position) IsClosed() bool {
	return p.Shares.IsZero()
}

// ROIPercent 投资回报率（%），成本基数为零时返回零
func (p *Position) ROIPercent() decimal.Decimal {
	if p.TotalCostBasis.IsZero() {
		return decimal.Zero
	}
	return p.CurrentValue.Sub(p.TotalCostBasis).Div(p.TotalCostBasis).Mul(decimal.NewFromInt(100))
}
