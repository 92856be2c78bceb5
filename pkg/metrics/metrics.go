// Package metrics 提供 Prometheus helper，包含商品目录服务的 counter/histogram
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// CatalogMetrics 商品目录指标集合，nil 接收者上的方法均为空操作
type CatalogMetrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	RequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	RequestDuration *prometheus.HistogramVec
	// 鉴权失败计数
	AuthFailuresTotal *prometheus.CounterVec
	// 商品创建计数
	ProductsCreatedTotal prometheus.Counter
	// 存储调用耗时
	StoreDuration *prometheus.HistogramVec
}

// New 创建并注册指标
func New(serviceName string) *CatalogMetrics {
	serviceName = strings.NewReplacer("-", "_", ".", "_").Replace(serviceName)
	m := &CatalogMetrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "requests_total",
			Help:      "Total catalog HTTP requests",
		}, []string{"operation", "result"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "request_duration_seconds",
			Help:      "Catalog HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "auth_failures_total",
			Help:      "Rejected admin credentials",
		}, []string{"reason"}),
		ProductsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "products_created_total",
			Help:      "Products written to the store",
		}),
		StoreDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "store_duration_seconds",
			Help:      "Document store call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.AuthFailuresTotal,
		m.ProductsCreatedTotal,
		m.StoreDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry 返回指标注册表
func (m *CatalogMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler 返回 /metrics 处理器
func (m *CatalogMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest 记录 HTTP 请求
func (m *CatalogMetrics) RecordRequest(operation, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, result).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordAuthFailure 记录鉴权失败
func (m *CatalogMetrics) RecordAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordProductCreated 记录商品创建
func (m *CatalogMetrics) RecordProductCreated() {
	if m == nil {
		return
	}
	m.ProductsCreatedTotal.Inc()
}

// ObserveStore 记录存储调用耗时
func (m *CatalogMetrics) ObserveStore(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func (m *CatalogMetrics) StartHTTPServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "Prometheus HTTP server stopped", "error", err)
		}
	}()
	return srv
}
