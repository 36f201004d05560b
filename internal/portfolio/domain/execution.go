package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Action 交易方向
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Valid 方向是否合法
func (a Action) Valid() bool {
	return a == ActionBuy || a == ActionSell
}

// Execution 成交记录，追加写入，不可变更
type Execution struct {
	ID            uint
	Ticker        string
	Action        Action
	Shares        decimal.Decimal
	Price         decimal.Decimal
	TotalCost     decimal.Decimal
	Fees          decimal.Decimal
	ExecutionDate time.Time
	Broker        string
	Notes         string
}

// NewExecution 创建一条成交记录，成交金额 = 数量 × 价格，手续费默认为零
func NewExecution(ticker string, action Action, shares, price decimal.Decimal) *Execution {
	return &Execution{
		Ticker:        ticker,
		Action:        action,
		Shares:        shares,
		Price:         price,
		TotalCost:     shares.Mul(price),
		Fees:          decimal.Zero,
		ExecutionDate: time.Now(),
	}
}

// HeldTickersOn 根据截止日期前的成交记录净额计算当日持有的 ticker 数量
// BUY 累加、SELL 扣减，净持仓为正才计入
func HeldTickersOn(executions []*Execution, date time.Time) int {
	cutoff := date.Truncate(24 * time.Hour)

	holdings := make(map[string]decimal.Decimal)
	for _, e := range executions {
		if e.ExecutionDate.Truncate(24 * time.Hour).After(cutoff) {
			continue
		}
		switch e.Action {
		case ActionBuy:
			holdings[e.Ticker] = holdings[e.Ticker].Add(e.Shares)
		case ActionSell:
			holdings[e.Ticker] = holdings[e.Ticker].Sub(e.Shares)
		}
	}

	count := 0
	for _, shares := range holdings {
		if shares.IsPositive() {
			count++
		}
	}
	return count
}
