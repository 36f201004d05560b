// Package application 绩效分析应用服务
package application

import (
	"context"
	"sort"
	"time"

	"github.com/wyfcoding/alphaview/internal/analytics/domain"
	mdomain "github.com/wyfcoding/alphaview/internal/marketdata/domain"
	pdomain "github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

// DefaultBenchmark 默认基准标的
const DefaultBenchmark = "SPY"

// SeriesPoint 绩效序列上的一个点
type SeriesPoint struct {
	Date             time.Time `json:"date"`
	CumulativeReturn float64   `json:"cumulative_return"`
	Drawdown         float64   `json:"drawdown"`
	HeldStocks       int       `json:"held_stocks"`
}

// PerformanceReport 绩效报告：组合与基准的序列及指标
type PerformanceReport struct {
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	Benchmark        string          `json:"benchmark"`
	Portfolio        []SeriesPoint   `json:"portfolio"`
	BenchmarkSeries  []SeriesPoint   `json:"benchmark_series"`
	Metrics          *domain.Metrics `json:"metrics"`
	BenchmarkMetrics *domain.Metrics `json:"benchmark_metrics"`
}

// AnalyticsService 绩效分析应用服务
type AnalyticsService struct {
	positions  pdomain.PositionRepository
	executions pdomain.ExecutionRepository
	prices     mdomain.PriceRepository
}

// NewAnalyticsService 创建绩效分析应用服务
func NewAnalyticsService(positions pdomain.PositionRepository, executions pdomain.ExecutionRepository, prices mdomain.PriceRepository) *AnalyticsService {
	return &AnalyticsService{positions: positions, executions: executions, prices: prices}
}

// Performance 计算区间内组合与基准的绩效报告
// 组合日收益按各持仓当前市值加权；基准为空时使用默认基准
func (s *AnalyticsService) Performance(ctx context.Context, from, to time.Time, benchmark string) (*PerformanceReport, error) {
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}

	dates, portfolioReturns, err := s.portfolioReturns(ctx, from, to)
	if err != nil {
		return nil, err
	}

	benchPrices, err := s.prices.Series(ctx, benchmark, from, to)
	if err != nil {
		return nil, err
	}
	benchReturns := mdomain.DailyReturns(benchPrices)
	benchDates := make([]time.Time, 0, len(benchReturns))
	for i := 1; i < len(benchPrices); i++ {
		benchDates = append(benchDates, benchPrices[i].PriceDate)
	}

	executions, err := s.executions.ListThrough(ctx, to)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{
		From:             from,
		To:               to,
		Benchmark:        benchmark,
		Portfolio:        buildSeries(dates, portfolioReturns, executions),
		BenchmarkSeries:  buildSeries(benchDates, benchReturns, nil),
		Metrics:          domain.Compute(portfolioReturns),
		BenchmarkMetrics: domain.Compute(benchReturns),
	}
	return report, nil
}

// portfolioReturns 组合日收益率序列：各持仓日收益按当前市值占比加权求和
func (s *AnalyticsService) portfolioReturns(ctx context.Context, from, to time.Time) ([]time.Time, []float64, error) {
	positions, err := s.positions.ListOpen(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(positions) == 0 {
		return nil, nil, nil
	}

	totalValue := 0.0
	values := make(map[string]float64, len(positions))
	for _, p := range positions {
		v, _ := p.CurrentValue.Float64()
		values[p.Ticker] = v
		totalValue += v
	}
	if totalValue == 0 {
		return nil, nil, nil
	}

	// 按日期汇总各 ticker 的加权收益
	byDate := make(map[time.Time]float64)
	var dateOrder []time.Time

	for _, p := range positions {
		series, err := s.prices.Series(ctx, p.Ticker, from, to)
		if err != nil {
			return nil, nil, err
		}
		returns := mdomain.DailyReturns(series)
		if returns == nil {
			logger.Warn(ctx, "insufficient price history for ticker", "ticker", p.Ticker)
			continue
		}
		weight := values[p.Ticker] / totalValue
		for i, r := range returns {
			date := series[i+1].PriceDate
			if _, ok := byDate[date]; !ok {
				dateOrder = append(dateOrder, date)
			}
			byDate[date] += weight * r
		}
	}

	sort.Slice(dateOrder, func(i, j int) bool { return dateOrder[i].Before(dateOrder[j]) })
	returns := make([]float64, len(dateOrder))
	for i, date := range dateOrder {
		returns[i] = byDate[date]
	}
	return dateOrder, returns, nil
}

func buildSeries(dates []time.Time, returns []float64, executions []*pdomain.Execution) []SeriesPoint {
	if len(returns) == 0 {
		return nil
	}
	cumulative := domain.CumulativeReturns(returns)
	drawdowns := domain.Drawdowns(returns)
	points := make([]SeriesPoint, len(returns))
	for i := range returns {
		points[i] = SeriesPoint{
			Date:             dates[i],
			CumulativeReturn: cumulative[i],
			Drawdown:         drawdowns[i],
		}
		if executions != nil {
			points[i].HeldStocks = pdomain.HeldTickersOn(executions, dates[i])
		}
	}
	return points
}
