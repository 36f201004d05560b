// Package http 绩效分析接口
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/alphaview/internal/analytics/application"
	mapp "github.com/wyfcoding/alphaview/internal/marketdata/application"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

// AnalyticsHandler 绩效分析 HTTP 处理器
type AnalyticsHandler struct {
	app        *application.AnalyticsService
	marketData *mapp.MarketDataService
}

// NewAnalyticsHandler 创建绩效分析 HTTP 处理器
func NewAnalyticsHandler(app *application.AnalyticsService, marketData *mapp.MarketDataService) *AnalyticsHandler {
	return &AnalyticsHandler{app: app, marketData: marketData}
}

// RegisterRoutes 注册路由
func (h *AnalyticsHandler) RegisterRoutes(router *gin.Engine, requireAuth gin.HandlerFunc) {
	api := router.Group("/api/v1/analytics", requireAuth)
	{
		api.GET("/performance", h.Performance)
		api.GET("/daterange", h.DateRange)
	}
}

// Performance 区间绩效报告
// from/to 为空时默认取最近一年
func (h *AnalyticsHandler) Performance(c *gin.Context) {
	to, err := parseDate(c.Query("to"), time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}
	from, err := parseDate(c.Query("from"), to.AddDate(-1, 0, 0))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	if from.After(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from date must not be after to date"})
		return
	}

	report, err := h.app.Performance(c.Request.Context(), from, to, c.Query("benchmark"))
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to build performance report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// DateRange 行情数据覆盖的日期区间
func (h *AnalyticsHandler) DateRange(c *gin.Context) {
	earliest, latest, err := h.marketData.DateRange(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to query date range", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 库内没有行情数据时区间为空串
	payload := gin.H{"earliest": "", "latest": ""}
	if !earliest.IsZero() {
		payload["earliest"] = earliest.Format("2006-01-02")
	}
	if !latest.IsZero() {
		payload["latest"] = latest.Format("2006-01-02")
	}
	c.JSON(http.StatusOK, gin.H{"data": payload})
}

func parseDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", s)
}
