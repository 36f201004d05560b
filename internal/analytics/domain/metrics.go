// Package domain 收益序列风险指标计算，纯函数，不依赖存储
package domain

import (
	"math"

	"github.com/montanaflynn/stats"
)

const (
	// TradingDaysPerYear 年化使用的交易日数
	TradingDaysPerYear = 252
	// RiskFreeRate 夏普比率使用的无风险利率
	RiskFreeRate = 0.02
)

// Metrics 一组日收益率序列的风险指标
type Metrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	Volatility       float64 `json:"volatility"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	VaR95            float64 `json:"var_95"`
	CVaR95           float64 `json:"cvar_95"`
	CalmarRatio      float64 `json:"calmar_ratio"`
}

// Compute 计算日收益率序列的全部指标，空序列返回 nil
func Compute(returns []float64) *Metrics {
	if len(returns) == 0 {
		return nil
	}

	total := 1.0
	for _, r := range returns {
		total *= 1 + r
	}
	totalReturn := total - 1

	annualized := math.Pow(1+totalReturn, TradingDaysPerYear/float64(len(returns))) - 1

	stddev, _ := stats.StandardDeviationSample(returns)
	volatility := stddev * math.Sqrt(TradingDaysPerYear)

	sharpe := 0.0
	if volatility != 0 {
		sharpe = (annualized - RiskFreeRate) / volatility
	}

	maxDD := MaxDrawdown(returns)

	var95, _ := stats.Percentile(returns, 5)
	cvar95 := var95
	var tail []float64
	for _, r := range returns {
		if r <= var95 {
			tail = append(tail, r)
		}
	}
	if len(tail) > 0 {
		cvar95, _ = stats.Mean(tail)
	}

	calmar := 0.0
	if maxDD != 0 {
		calmar = annualized / math.Abs(maxDD)
	}

	return &Metrics{
		TotalReturn:      totalReturn,
		AnnualizedReturn: annualized,
		Volatility:       volatility,
		SharpeRatio:      sharpe,
		MaxDrawdown:      maxDD,
		VaR95:            var95,
		CVaR95:           cvar95,
		CalmarRatio:      calmar,
	}
}

// CumulativeReturns 累计收益序列：cumprod(1+r) − 1
func CumulativeReturns(returns []float64) []float64 {
	if len(returns) == 0 {
		return nil
	}
	out := make([]float64, len(returns))
	acc := 1.0
	for i, r := range returns {
		acc *= 1 + r
		out[i] = acc - 1
	}
	return out
}

// Drawdowns 回撤序列：累计净值 / 历史最高净值 − 1，全程非正
// 历史最高净值从首日净值起算，首日亏损不计入回撤
func Drawdowns(returns []float64) []float64 {
	if len(returns) == 0 {
		return nil
	}
	out := make([]float64, len(returns))
	acc := 1.0
	var peak float64
	for i, r := range returns {
		acc *= 1 + r
		if i == 0 || acc > peak {
			peak = acc
		}
		out[i] = acc/peak - 1
	}
	return out
}

// MaxDrawdown 最大回撤，即回撤序列的最小值
func MaxDrawdown(returns []float64) float64 {
	minDD := 0.0
	for _, dd := range Drawdowns(returns) {
		if dd < minDD {
			minDD = dd
		}
	}
	return minDD
}
