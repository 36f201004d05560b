package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestNewPosition(t *testing.T) {
	p := NewPosition("AAPL", d("10"), d("150"))

	if !p.Shares.Equal(d("10")) {
		t.Errorf("shares = %s, want 10", p.Shares)
	}
	if !p.AvgCostBasis.Equal(d("150")) {
		t.Errorf("avg cost = %s, want 150", p.AvgCostBasis)
	}
	if !p.TotalCostBasis.Equal(d("1500")) {
		t.Errorf("total cost = %s, want 1500", p.TotalCostBasis)
	}
	if !p.CurrentValue.Equal(d("1500")) {
		t.Errorf("current value = %s, want 1500", p.CurrentValue)
	}
}

func TestApplyBuyAveragesCost(t *testing.T) {
	p := NewPosition("AAPL", d("10"), d("100"))
	p.ApplyBuy(d("10"), d("200"))

	if !p.Shares.Equal(d("20")) {
		t.Errorf("shares = %s, want 20", p.Shares)
	}
	if !p.TotalCostBasis.Equal(d("3000")) {
		t.Errorf("total cost = %s, want 3000", p.TotalCostBasis)
	}
	if !p.AvgCostBasis.Equal(d("150")) {
		t.Errorf("avg cost = %s, want 150", p.AvgCostBasis)
	}
	// 市值按最新成交价刷新
	if !p.CurrentValue.Equal(d("4000")) {
		t.Errorf("current value = %s, want 4000", p.CurrentValue)
	}
	if !p.UnrealizedPnL.Equal(d("1000")) {
		t.Errorf("unrealized pnl = %s, want 1000", p.UnrealizedPnL)
	}
}

func TestApplySellReducesCostAtAverage(t *testing.T) {
	p := NewPosition("AAPL", d("20"), d("150"))

	if err := p.ApplySell(d("10"), d("180")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !p.Shares.Equal(d("10")) {
		t.Errorf("shares = %s, want 10", p.Shares)
	}
	// 成本基数按原均价 150 扣减
	if !p.TotalCostBasis.Equal(d("1500")) {
		t.Errorf("total cost = %s, want 1500", p.TotalCostBasis)
	}
	if !p.AvgCostBasis.Equal(d("150")) {
		t.Errorf("avg cost = %s, want 150", p.AvgCostBasis)
	}
	if !p.CurrentValue.Equal(d("1800")) {
		t.Errorf("current value = %s, want 1800", p.CurrentValue)
	}
}

func TestApplySellFullCloses(t *testing.T) {
	p := NewPosition("AAPL", d("10"), d("100"))

	if err := p.ApplySell(d("10"), d("120")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !p.IsClosed() {
		t.Error("expected position to be closed")
	}
	if !p.TotalCostBasis.IsZero() || !p.AvgCostBasis.IsZero() {
		t.Errorf("closed position should have zero cost basis, got total=%s avg=%s", p.TotalCostBasis, p.AvgCostBasis)
	}
}

func TestApplySellInsufficientShares(t *testing.T) {
	p := NewPosition("AAPL", d("5"), d("100"))

	err := p.ApplySell(d("10"), d("100"))
	if err == nil {
		t.Fatal("expected error when selling more than held")
	}
	// 持仓不受失败的卖出影响
	if !p.Shares.Equal(d("5")) {
		t.Errorf("shares = %s, want 5", p.Shares)
	}
}

func TestRefreshValue(t *testing.T) {
	p := NewPosition("AAPL", d("10"), d("100"))
	p.RefreshValue(d("130"))

	if !p.CurrentValue.Equal(d("1300")) {
		t.Errorf("current value = %s, want 1300", p.CurrentValue)
	}
	if !p.UnrealizedPnL.Equal(d("300")) {
		t.Errorf("unrealized pnl = %s, want 300", p.UnrealizedPnL)
	}
}

func TestROIPercent(t *testing.T) {
	p := NewPosition("AAPL", d("10"), d("100"))
	p.RefreshValue(d("125"))

	if !p.ROIPercent().Equal(d("25")) {
		t.Errorf("roi = %s, want 25", p.ROIPercent())
	}

	zero := &Position{}
	if !zero.ROIPercent().IsZero() {
		t.Error("roi with zero cost basis should be zero")
	}
}
