// Package http 行情数据接口：日线行情批量导入
package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/alphaview/internal/marketdata/application"
	"github.com/wyfcoding/alphaview/internal/marketdata/domain"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

// MarketDataHandler 行情数据 HTTP 处理器
type MarketDataHandler struct {
	app *application.MarketDataService
}

// NewMarketDataHandler 创建行情数据 HTTP 处理器
func NewMarketDataHandler(app *application.MarketDataService) *MarketDataHandler {
	return &MarketDataHandler{app: app}
}

// RegisterRoutes 注册路由，行情导入仅 admin
func (h *MarketDataHandler) RegisterRoutes(router *gin.Engine, requireAuth, requireAdmin gin.HandlerFunc) {
	api := router.Group("/api/v1/marketdata", requireAuth)
	{
		api.POST("/prices", requireAdmin, h.IngestPrices)
	}
}

type priceBar struct {
	Ticker   string `json:"ticker" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close" binding:"required"`
	AdjClose string `json:"adj_close"`
	Volume   int64  `json:"volume"`
}

type ingestRequest struct {
	Prices []priceBar `json:"prices" binding:"required"`
}

// IngestPrices 批量导入日线行情（仅 admin），同一 ticker + 交易日重复导入为更新
func (h *MarketDataHandler) IngestPrices(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prices := make([]*domain.DailyPrice, 0, len(req.Prices))
	for _, bar := range req.Prices {
		price, err := toDailyPrice(bar)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		prices = append(prices, price)
	}

	saved, err := h.app.Ingest(c.Request.Context(), prices)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to ingest prices", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"saved": saved}})
}

func toDailyPrice(bar priceBar) (*domain.DailyPrice, error) {
	date, err := time.Parse("2006-01-02", bar.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q for %s", bar.Date, bar.Ticker)
	}
	closePrice, err := decimal.NewFromString(bar.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid close for %s", bar.Ticker)
	}

	// adj_close 缺省时用收盘价
	adjClose := closePrice
	if bar.AdjClose != "" {
		if adjClose, err = decimal.NewFromString(bar.AdjClose); err != nil {
			return nil, fmt.Errorf("invalid adj_close for %s", bar.Ticker)
		}
	}

	open, err := parseOptional(bar.Open)
	if err != nil {
		return nil, fmt.Errorf("invalid open for %s", bar.Ticker)
	}
	high, err := parseOptional(bar.High)
	if err != nil {
		return nil, fmt.Errorf("invalid high for %s", bar.Ticker)
	}
	low, err := parseOptional(bar.Low)
	if err != nil {
		return nil, fmt.Errorf("invalid low for %s", bar.Ticker)
	}

	return &domain.DailyPrice{
		Ticker:    bar.Ticker,
		PriceDate: date,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePrice,
		AdjClose:  adjClose,
		Volume:    bar.Volume,
	}, nil
}

func parseOptional(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
