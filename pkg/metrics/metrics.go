// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集应用和系统指标.
//
// Example:
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.RequestCounter.WithLabelValues("GET", "/access/ABC123").Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/tempshare/pkg/configs"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// SessionsCreated 创建的分享会话计数.
	SessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tempshare_sessions_created_total",
			Help: "Total number of upload sessions created",
		},
	)

	// SessionsSwept 被过期清理移除的会话计数.
	SessionsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tempshare_sessions_swept_total",
			Help: "Total number of expired sessions removed by the sweep",
		},
	)

	// AssetsDeleted 资产存储删除调用计数（含失败）.
	AssetsDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tempshare_assets_deleted_total",
			Help: "Total number of asset delete calls by outcome",
		},
		[]string{"outcome"},
	)

	// Downloads 文件下载计数.
	Downloads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tempshare_downloads_total",
			Help: "Total number of file downloads served",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
)

// InitMetrics 初始化Metrics.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	// 注册标准收集器
	if config.RuntimeMetrics {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	// 注册自定义指标
	registry.MustRegister(
		RequestCounter, RequestDuration,
		SessionsCreated, SessionsSwept, AssetsDeleted, Downloads,
	)

	return nil
}

// StartMetricsServer 启动Metrics HTTP服务器.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// 如果启用pprof，注册pprof端点
	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}
