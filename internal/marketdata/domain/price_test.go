package domain

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func price(ticker string, date string, adjClose string) *DailyPrice {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return &DailyPrice{
		Ticker:    ticker,
		PriceDate: d,
		AdjClose:  decimal.RequireFromString(adjClose),
	}
}

func TestDailyReturns(t *testing.T) {
	prices := []*DailyPrice{
		price("AAPL", "2024-01-02", "100"),
		price("AAPL", "2024-01-03", "102"),
		price("AAPL", "2024-01-04", "51"),
	}

	returns := DailyReturns(prices)
	if len(returns) != 2 {
		t.Fatalf("len(returns) = %d, want 2", len(returns))
	}
	if math.Abs(returns[0]-0.02) > 1e-12 {
		t.Errorf("returns[0] = %f, want 0.02", returns[0])
	}
	if math.Abs(returns[1]-(-0.5)) > 1e-12 {
		t.Errorf("returns[1] = %f, want -0.5", returns[1])
	}
}

func TestDailyReturnsShortSeries(t *testing.T) {
	if got := DailyReturns(nil); got != nil {
		t.Errorf("nil series should yield nil, got %v", got)
	}
	one := []*DailyPrice{price("AAPL", "2024-01-02", "100")}
	if got := DailyReturns(one); got != nil {
		t.Errorf("single-day series should yield nil, got %v", got)
	}
}

func TestDailyReturnsZeroPrevious(t *testing.T) {
	prices := []*DailyPrice{
		price("AAPL", "2024-01-02", "0"),
		price("AAPL", "2024-01-03", "100"),
	}
	returns := DailyReturns(prices)
	if len(returns) != 1 || returns[0] != 0 {
		t.Errorf("zero previous close should yield 0 return, got %v", returns)
	}
}
