// Package metrics 提供 Prometheus helper，包含仪表盘常用 counter/gauge/histogram
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/alphaview/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 登录尝试计数
	LoginsTotal prometheus.Counter
	// 登录失败计数
	LoginFailuresTotal prometheus.Counter

	// 交易执行计数
	TradesTotal *prometheus.CounterVec
	// 价格刷新的持仓数
	PriceRefreshTotal prometheus.Counter
	// 当前持仓数量
	PositionsOpen prometheus.Gauge
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alphaview",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alphaview",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LoginsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alphaview",
			Subsystem: serviceName,
			Name:      "logins_total",
			Help:      "Total login attempts",
		}),
		LoginFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alphaview",
			Subsystem: serviceName,
			Name:      "login_failures_total",
			Help:      "Total failed login attempts",
		}),
		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alphaview",
			Subsystem: serviceName,
			Name:      "trades_total",
			Help:      "Total executed trades",
		}, []string{"action"}),
		PriceRefreshTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alphaview",
			Subsystem: serviceName,
			Name:      "price_refresh_total",
			Help:      "Total positions refreshed with latest prices",
		}),
		PositionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "alphaview",
			Subsystem: serviceName,
			Name:      "positions_open",
			Help:      "Number of open positions",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.LoginFailuresTotal,
		m.TradesTotal,
		m.PriceRefreshTotal,
		m.PositionsOpen,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Serve 在独立端口暴露 /metrics
func (m *Metrics) Serve(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%d", port)
		logger.Info(context.Background(), "Metrics server started", "addr", addr, "path", path)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error(context.Background(), "Metrics server failed", "error", err)
		}
	}()
}
