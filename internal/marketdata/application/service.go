// Package application 行情数据应用服务
package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/alphaview/internal/marketdata/domain"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

// ErrInvalidPrice 日线数据缺少 ticker 或交易日
var ErrInvalidPrice = errors.New("ticker and price date are required")

// MarketDataService 行情数据应用服务
type MarketDataService struct {
	prices domain.PriceRepository
}

// NewMarketDataService 创建行情数据应用服务
func NewMarketDataService(prices domain.PriceRepository) *MarketDataService {
	return &MarketDataService{prices: prices}
}

// Series 返回区间内某 ticker 的日线序列（日期升序）
func (s *MarketDataService) Series(ctx context.Context, ticker string, from, to time.Time) ([]*domain.DailyPrice, error) {
	return s.prices.Series(ctx, ticker, from, to)
}

// ReturnSeries 返回区间内某 ticker 的日收益率序列及对应日期
// 收益率从第二个交易日开始计
func (s *MarketDataService) ReturnSeries(ctx context.Context, ticker string, from, to time.Time) ([]time.Time, []float64, error) {
	prices, err := s.prices.Series(ctx, ticker, from, to)
	if err != nil {
		return nil, nil, err
	}
	returns := domain.DailyReturns(prices)
	if returns == nil {
		return nil, nil, nil
	}
	dates := make([]time.Time, 0, len(returns))
	for i := 1; i < len(prices); i++ {
		dates = append(dates, prices[i].PriceDate)
	}
	return dates, returns, nil
}

// LatestAdjClose 返回某 ticker 最新的复权收盘价，无数据时第二个返回值为 false
func (s *MarketDataService) LatestAdjClose(ctx context.Context, ticker string) (decimal.Decimal, bool, error) {
	latest, err := s.prices.Latest(ctx, ticker)
	if err != nil {
		return decimal.Zero, false, err
	}
	if latest == nil {
		logger.Warn(ctx, "no price data for ticker", "ticker", ticker)
		return decimal.Zero, false, nil
	}
	return latest.AdjClose, true, nil
}

// LatestAdjCloseBatch 批量返回多个 ticker 的最新复权收盘价，缺数据的 ticker 不出现在结果中
func (s *MarketDataService) LatestAdjCloseBatch(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	latest, err := s.prices.LatestBatch(ctx, tickers)
	if err != nil {
		return nil, err
	}
	result := make(map[string]decimal.Decimal, len(latest))
	for ticker, p := range latest {
		result[ticker] = p.AdjClose
	}
	return result, nil
}

// DateRange 返回库内行情数据覆盖的日期区间
func (s *MarketDataService) DateRange(ctx context.Context) (time.Time, time.Time, error) {
	return s.prices.DateRange(ctx)
}

// Ingest 批量写入日线行情，按 ticker + price_date 幂等，返回写入条数
// 任一条目非法时整批拒绝，不产生部分写入
func (s *MarketDataService) Ingest(ctx context.Context, prices []*domain.DailyPrice) (int, error) {
	for _, p := range prices {
		if p.Ticker == "" || p.PriceDate.IsZero() {
			return 0, ErrInvalidPrice
		}
	}
	for i, p := range prices {
		if err := s.prices.Save(ctx, p); err != nil {
			return i, err
		}
	}
	return len(prices), nil
}
