package domain

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func exec(ticker string, action Action, shares string, date string) *Execution {
	return &Execution{
		Ticker:        ticker,
		Action:        action,
		Shares:        d(shares),
		ExecutionDate: day(date),
	}
}

func TestHeldTickersOn(t *testing.T) {
	executions := []*Execution{
		exec("AAPL", ActionBuy, "10", "2024-01-02"),
		exec("MSFT", ActionBuy, "5", "2024-01-03"),
		exec("AAPL", ActionSell, "10", "2024-01-10"),
		exec("GOOG", ActionBuy, "3", "2024-02-01"),
	}

	tests := []struct {
		name string
		date string
		want int
	}{
		{name: "before any trade", date: "2024-01-01", want: 0},
		{name: "after first buy", date: "2024-01-02", want: 1},
		{name: "two holdings", date: "2024-01-05", want: 2},
		{name: "aapl fully sold", date: "2024-01-10", want: 1},
		{name: "later buy counted", date: "2024-03-01", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HeldTickersOn(executions, day(tt.date)); got != tt.want {
				t.Errorf("HeldTickersOn(%s) = %d, want %d", tt.date, got, tt.want)
			}
		})
	}
}

func TestHeldTickersOnPartialSell(t *testing.T) {
	executions := []*Execution{
		exec("AAPL", ActionBuy, "10", "2024-01-02"),
		exec("AAPL", ActionSell, "4", "2024-01-05"),
	}
	if got := HeldTickersOn(executions, day("2024-01-06")); got != 1 {
		t.Errorf("partial sell should keep the ticker held, got %d", got)
	}
}

func TestHeldTickersOnEmpty(t *testing.T) {
	if got := HeldTickersOn(nil, day("2024-01-01")); got != 0 {
		t.Errorf("empty executions should yield 0, got %d", got)
	}
}

func TestNewExecution(t *testing.T) {
	e := NewExecution("AAPL", ActionBuy, d("10"), d("150.50"))
	if !e.TotalCost.Equal(d("1505")) {
		t.Errorf("total cost = %s, want 1505", e.TotalCost)
	}
	if !e.Fees.IsZero() {
		t.Errorf("fees = %s, want 0", e.Fees)
	}
	if !e.Action.Valid() {
		t.Error("BUY should be a valid action")
	}
	if Action("HOLD").Valid() {
		t.Error("HOLD should not be a valid action")
	}
}
