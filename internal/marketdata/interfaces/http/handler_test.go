package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/alphaview/internal/marketdata/application"
	"github.com/wyfcoding/alphaview/internal/marketdata/domain"
)

type recordingPrices struct {
	saved []*domain.DailyPrice
}

func (r *recordingPrices) Series(ctx context.Context, ticker string, from, to time.Time) ([]*domain.DailyPrice, error) {
	return nil, nil
}
func (r *recordingPrices) Latest(ctx context.Context, ticker string) (*domain.DailyPrice, error) {
	return nil, nil
}
func (r *recordingPrices) LatestBatch(ctx context.Context, tickers []string) (map[string]*domain.DailyPrice, error) {
	return nil, nil
}
func (r *recordingPrices) DateRange(ctx context.Context) (time.Time, time.Time, error) {
	return time.Time{}, time.Time{}, nil
}
func (r *recordingPrices) Save(ctx context.Context, price *domain.DailyPrice) error {
	r.saved = append(r.saved, price)
	return nil
}

func allowAll() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

func newRouter(prices *recordingPrices) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewMarketDataHandler(application.NewMarketDataService(prices))
	router := gin.New()
	handler.RegisterRoutes(router, allowAll(), allowAll())
	return router
}

func TestIngestPrices(t *testing.T) {
	prices := &recordingPrices{}
	router := newRouter(prices)

	body := `{"prices":[
		{"ticker":"AAPL","date":"2026-08-21","close":"230.10","adj_close":"229.80","volume":1000},
		{"ticker":"SPY","date":"2026-08-21","close":"560.00"}
	]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/marketdata/prices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var payload struct {
		Data struct {
			Saved int `json:"saved"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.Data.Saved != 2 {
		t.Errorf("saved = %d, want 2", payload.Data.Saved)
	}
	if len(prices.saved) != 2 {
		t.Fatalf("repository received %d rows, want 2", len(prices.saved))
	}
	if prices.saved[0].AdjClose.String() != "229.8" {
		t.Errorf("adj_close = %s, want 229.8", prices.saved[0].AdjClose)
	}
	// adj_close 缺省时回落到收盘价
	if !prices.saved[1].AdjClose.Equal(prices.saved[1].Close) {
		t.Errorf("adj_close = %s, want close %s", prices.saved[1].AdjClose, prices.saved[1].Close)
	}
}

func TestIngestPricesInvalidDate(t *testing.T) {
	prices := &recordingPrices{}
	router := newRouter(prices)

	body := `{"prices":[{"ticker":"AAPL","date":"21/08/2026","close":"230.10"}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/marketdata/prices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if len(prices.saved) != 0 {
		t.Errorf("invalid batch should not reach the repository, got %d rows", len(prices.saved))
	}
}
