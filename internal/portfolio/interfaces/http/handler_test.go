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
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/alphaview/internal/portfolio/application"
	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"github.com/wyfcoding/alphaview/pkg/metrics"
)

type stubPositions struct {
	byTicker map[string]*domain.Position
}

func (s *stubPositions) ListOpen(ctx context.Context) ([]*domain.Position, error) {
	out := make([]*domain.Position, 0, len(s.byTicker))
	for _, p := range s.byTicker {
		out = append(out, p)
	}
	return out, nil
}
func (s *stubPositions) GetByTicker(ctx context.Context, ticker string) (*domain.Position, error) {
	return s.byTicker[ticker], nil
}
func (s *stubPositions) Save(ctx context.Context, p *domain.Position) error {
	s.byTicker[p.Ticker] = p
	return nil
}
func (s *stubPositions) Delete(ctx context.Context, ticker string) error {
	delete(s.byTicker, ticker)
	return nil
}

type stubTargets struct{}

func (stubTargets) List(ctx context.Context) ([]*domain.Target, error) { return nil, nil }

type stubExecutions struct {
	appended []*domain.Execution
}

func (s *stubExecutions) Append(ctx context.Context, e *domain.Execution) error {
	s.appended = append(s.appended, e)
	return nil
}
func (s *stubExecutions) ListRecent(ctx context.Context, limit int) ([]*domain.Execution, error) {
	return s.appended, nil
}
func (s *stubExecutions) ListThrough(ctx context.Context, date time.Time) ([]*domain.Execution, error) {
	return s.appended, nil
}

type stubPrices struct{}

func (stubPrices) LatestAdjClose(ctx context.Context, ticker string) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, nil
}
func (stubPrices) LatestAdjCloseBatch(ctx context.Context, tickers []string) (map[string]decimal.Decimal, error) {
	return nil, nil
}

type stubPublisher struct{}

func (stubPublisher) PublishTradeExecuted(domain.TradeExecutedEvent) error     { return nil }
func (stubPublisher) PublishPricesRefreshed(domain.PricesRefreshedEvent) error { return nil }

func allowAll() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

func newRouter(positions *stubPositions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := application.NewPortfolioService(positions, stubTargets{}, &stubExecutions{}, stubPrices{}, stubPublisher{})
	handler := NewPortfolioHandler(svc, metrics.New("test"))
	router := gin.New()
	handler.RegisterRoutes(router, allowAll(), allowAll())
	return router
}

func TestExecuteTradeEndpoint(t *testing.T) {
	positions := &stubPositions{byTicker: map[string]*domain.Position{}}
	router := newRouter(positions)

	body := `{"ticker":"AAPL","action":"BUY","shares":"10","price":"150"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/portfolio/trades", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if positions.byTicker["AAPL"] == nil {
		t.Error("position should exist after BUY")
	}
}

func TestExecuteTradeEndpointSellTooMany(t *testing.T) {
	positions := &stubPositions{byTicker: map[string]*domain.Position{}}
	router := newRouter(positions)

	body := `{"ticker":"AAPL","action":"SELL","shares":"10","price":"150"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/portfolio/trades", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid error payload: %v", err)
	}
	// 错误消息原样透传给前端告警
	if !strings.Contains(payload.Error, "only 0 available") {
		t.Errorf("error = %q, want raw validation message", payload.Error)
	}
}

func TestExportEndpointContentDisposition(t *testing.T) {
	positions := &stubPositions{byTicker: map[string]*domain.Position{
		"AAPL": domain.NewPosition("AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100)),
	}}
	router := newRouter(positions)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio/export?format=csv", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %s, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=portfolio_") {
		t.Errorf("content disposition = %s", cd)
	}
}
