// Package http 组合管理接口：配置对比、交易执行、价格刷新、成交查询、导出
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/alphaview/internal/portfolio/application"
	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"github.com/wyfcoding/alphaview/pkg/logger"
	"github.com/wyfcoding/alphaview/pkg/metrics"
)

// PortfolioHandler 组合管理 HTTP 处理器
type PortfolioHandler struct {
	app     *application.PortfolioService
	metrics *metrics.Metrics
}

// NewPortfolioHandler 创建组合管理 HTTP 处理器
func NewPortfolioHandler(app *application.PortfolioService, m *metrics.Metrics) *PortfolioHandler {
	return &PortfolioHandler{app: app, metrics: m}
}

// RegisterRoutes 注册路由，viewer 可读，交易与价格刷新仅 admin
func (h *PortfolioHandler) RegisterRoutes(router *gin.Engine, requireAuth, requireAdmin gin.HandlerFunc) {
	api := router.Group("/api/v1/portfolio", requireAuth)
	{
		api.GET("/allocation", h.Allocation)
		api.GET("/summary", h.Summary)
		api.GET("/transactions", h.Transactions)
		api.GET("/export", h.Export)
		api.POST("/trades", requireAdmin, h.ExecuteTrade)
		api.POST("/prices/refresh", requireAdmin, h.RefreshPrices)
	}
}

// Allocation 目标 vs 实际配置
func (h *PortfolioHandler) Allocation(c *gin.Context) {
	report, err := h.app.Allocation(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to build allocation report", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.metrics.PositionsOpen.Set(float64(len(report.Rows)))
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// Summary 组合汇总
func (h *PortfolioHandler) Summary(c *gin.Context) {
	summary, err := h.app.Summarize(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to build summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}

type tradeRequest struct {
	Ticker string `json:"ticker" binding:"required"`
	Action string `json:"action" binding:"required"`
	Shares string `json:"shares" binding:"required"`
	Price  string `json:"price" binding:"required"`
}

// ExecuteTrade 执行交易（仅 admin）
func (h *PortfolioHandler) ExecuteTrade(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shares, err := decimal.NewFromString(req.Shares)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shares"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	execution, err := h.app.ExecuteTrade(c.Request.Context(), req.Ticker, domain.Action(req.Action), shares, price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.metrics.TradesTotal.WithLabelValues(string(execution.Action)).Inc()
	c.JSON(http.StatusOK, gin.H{"data": execution})
}

// RefreshPrices 刷新全部持仓市值（仅 admin）
func (h *PortfolioHandler) RefreshPrices(c *gin.Context) {
	updated, err := h.app.RefreshPrices(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to refresh prices", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.metrics.PriceRefreshTotal.Add(float64(updated))
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": updated}})
}

// Transactions 最近成交记录
func (h *PortfolioHandler) Transactions(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "100")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	executions, err := h.app.Transactions(c.Request.Context(), limit)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list transactions", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toTransactionViews(executions)})
}

// Export 导出组合文件
func (h *PortfolioHandler) Export(c *gin.Context) {
	req := application.ExportRequest{
		Format:              c.DefaultQuery("format", application.FormatCSV),
		IncludeTransactions: c.Query("include_transactions") == "true",
	}
	if fields, ok := c.GetQueryArray("field"); ok {
		req.Fields = fields
	}

	result, err := h.app.Export(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

type transactionView struct {
	ID            uint   `json:"id"`
	Ticker        string `json:"ticker"`
	Action        string `json:"action"`
	Shares        string `json:"shares"`
	Price         string `json:"price"`
	TotalCost     string `json:"total_cost"`
	Fees          string `json:"fees"`
	ExecutionDate string `json:"execution_date"`
}

func toTransactionViews(executions []*domain.Execution) []transactionView {
	views := make([]transactionView, len(executions))
	for i, e := range executions {
		views[i] = transactionView{
			ID:            e.ID,
			Ticker:        e.Ticker,
			Action:        string(e.Action),
			Shares:        e.Shares.String(),
			Price:         e.Price.StringFixed(2),
			TotalCost:     e.TotalCost.StringFixed(2),
			Fees:          e.Fees.StringFixed(2),
			ExecutionDate: e.ExecutionDate.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return views
}
