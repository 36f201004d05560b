// Package domain 行情数据上下文的领域模型：日线价格
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DailyPrice 某一 ticker 某交易日的日线行情
type DailyPrice struct {
	Ticker    string
	PriceDate time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	AdjClose  decimal.Decimal
	Volume    int64
}

// PriceRepository 日线价格仓储接口
type PriceRepository interface {
	// Series 按日期升序返回区间内某 ticker 的日线序列
	Series(ctx context.Context, ticker string, from, to time.Time) ([]*DailyPrice, error)
	// Latest 返回某 ticker 最新一条日线，未找到时返回 nil
	Latest(ctx context.Context, ticker string) (*DailyPrice, error)
	// LatestBatch 批量返回多个 ticker 的最新日线
	LatestBatch(ctx context.Context, tickers []string) (map[string]*DailyPrice, error)
	// DateRange 返回库内数据的最早与最晚交易日
	DateRange(ctx context.Context) (earliest, latest time.Time, err error)
	// Save 写入或更新一条日线（按 ticker + price_date 幂等）
	Save(ctx context.Context, price *DailyPrice) error
}

// DailyReturns 由复权收盘价序列计算日收益率，首日无收益
// 序列长度不足两天时返回空
func DailyReturns(prices []*DailyPrice) []float64 {
	if len(prices) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev, _ := prices[i-1].AdjClose.Float64()
		cur, _ := prices[i].AdjClose.Float64()
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, cur/prev-1)
	}
	return returns
}
