package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/alphaview/internal/analytics/application"
	mapp "github.com/wyfcoding/alphaview/internal/marketdata/application"
	mdomain "github.com/wyfcoding/alphaview/internal/marketdata/domain"
	pdomain "github.com/wyfcoding/alphaview/internal/portfolio/domain"
)

type emptyPrices struct{}

func (emptyPrices) Series(ctx context.Context, ticker string, from, to time.Time) ([]*mdomain.DailyPrice, error) {
	return nil, nil
}
func (emptyPrices) Latest(ctx context.Context, ticker string) (*mdomain.DailyPrice, error) {
	return nil, nil
}
func (emptyPrices) LatestBatch(ctx context.Context, tickers []string) (map[string]*mdomain.DailyPrice, error) {
	return nil, nil
}
func (emptyPrices) DateRange(ctx context.Context) (time.Time, time.Time, error) {
	return time.Time{}, time.Time{}, nil
}
func (emptyPrices) Save(ctx context.Context, price *mdomain.DailyPrice) error { return nil }

type emptyPositions struct{}

func (emptyPositions) ListOpen(ctx context.Context) ([]*pdomain.Position, error) { return nil, nil }
func (emptyPositions) GetByTicker(ctx context.Context, ticker string) (*pdomain.Position, error) {
	return nil, nil
}
func (emptyPositions) Save(ctx context.Context, p *pdomain.Position) error { return nil }
func (emptyPositions) Delete(ctx context.Context, ticker string) error     { return nil }

type emptyExecutions struct{}

func (emptyExecutions) Append(ctx context.Context, e *pdomain.Execution) error { return nil }
func (emptyExecutions) ListRecent(ctx context.Context, limit int) ([]*pdomain.Execution, error) {
	return nil, nil
}
func (emptyExecutions) ListThrough(ctx context.Context, date time.Time) ([]*pdomain.Execution, error) {
	return nil, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	prices := emptyPrices{}
	svc := application.NewAnalyticsService(emptyPositions{}, emptyExecutions{}, prices)
	handler := NewAnalyticsHandler(svc, mapp.NewMarketDataService(prices))
	router := gin.New()
	handler.RegisterRoutes(router, func(c *gin.Context) { c.Next() })
	return router
}

// 行情表为空时返回空串区间而不是报错
func TestDateRangeEmptyStore(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/daterange", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var payload struct {
		Data struct {
			Earliest string `json:"earliest"`
			Latest   string `json:"latest"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if payload.Data.Earliest != "" || payload.Data.Latest != "" {
		t.Errorf("empty store range = %q / %q, want empty strings", payload.Data.Earliest, payload.Data.Latest)
	}
}

func TestPerformanceRejectsInvertedRange(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/performance?from=2026-06-01&to=2026-01-01", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
