// Package metrics Prometheus 指标
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// 数据集指标
	datasetUploadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_dataset_upload_total",
			Help: "Total number of dataset uploads",
		},
		[]string{"status"},
	)

	datasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketpulse_dataset_rows",
			Help: "Number of daily records in the active dataset",
		},
	)

	// 回测指标
	backtestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_backtest_total",
			Help: "Total number of backtest runs",
		},
		[]string{"strategy", "status"},
	)

	backtestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketpulse_backtest_duration_seconds",
			Help:    "Backtest execution duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"strategy"},
	)

	// 日报与预警指标
	reportTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketpulse_report_total",
			Help: "Total number of daily report computations",
		},
	)

	compositeScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketpulse_composite_score",
			Help: "Latest composite market score (0-100)",
		},
	)

	alertTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketpulse_alert_total",
			Help: "Total number of alerts generated",
		},
		[]string{"level"},
	)

	// WebSocket 指标
	websocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketpulse_websocket_clients",
			Help: "Number of connected WebSocket clients",
		},
	)

	// 系统指标
	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketpulse_goroutine_count",
			Help: "Number of goroutines",
		},
	)

	memoryAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketpulse_memory_alloc_bytes",
			Help: "Bytes of allocated heap objects",
		},
	)

	processCPUPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketpulse_process_cpu_percent",
			Help: "Process CPU usage percentage",
		},
	)

	processMemoryMB = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketpulse_process_memory_mb",
			Help: "Process resident memory in MB",
		},
	)
)

// PrometheusMetrics Prometheus 指标收集器
type PrometheusMetrics struct{}

// NewPrometheusMetrics 创建 Prometheus 指标收集器
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{}
}

// RecordDatasetUpload 记录数据集上传
func (pm *PrometheusMetrics) RecordDatasetUpload(status string) {
	datasetUploadTotal.WithLabelValues(status).Inc()
}

// SetDatasetRows 设置当前数据集行数
func (pm *PrometheusMetrics) SetDatasetRows(rows int) {
	datasetRows.Set(float64(rows))
}

// RecordBacktest 记录一次回测
func (pm *PrometheusMetrics) RecordBacktest(strategy, status string, duration time.Duration) {
	backtestTotal.WithLabelValues(strategy, status).Inc()
	if status == "success" {
		backtestDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	}
}

// RecordReport 记录一次日报计算并更新综合评分
func (pm *PrometheusMetrics) RecordReport(score float64) {
	reportTotal.Inc()
	compositeScore.Set(score)
}

// RecordAlerts 按级别记录预警数量
func (pm *PrometheusMetrics) RecordAlerts(levels []string) {
	for _, level := range levels {
		alertTotal.WithLabelValues(level).Inc()
	}
}

// SetWebSocketClients 设置当前 WebSocket 连接数
func (pm *PrometheusMetrics) SetWebSocketClients(count int) {
	websocketClients.Set(float64(count))
}

// SetGoroutineCount 设置 Goroutine 数量
func (pm *PrometheusMetrics) SetGoroutineCount(count int) {
	goroutineCount.Set(float64(count))
}

// SetMemoryAlloc 设置堆内存分配
func (pm *PrometheusMetrics) SetMemoryAlloc(bytes uint64) {
	memoryAllocBytes.Set(float64(bytes))
}

// SetProcessCPU 设置进程 CPU 占用率
func (pm *PrometheusMetrics) SetProcessCPU(percent float64) {
	processCPUPercent.Set(percent)
}

// SetProcessMemoryMB 设置进程常驻内存
func (pm *PrometheusMetrics) SetProcessMemoryMB(mb float64) {
	processMemoryMB.Set(mb)
}

// 全局实例
var globalPrometheusMetrics *PrometheusMetrics

// GetPrometheusMetrics 获取全局 Prometheus 指标收集器
func GetPrometheusMetrics() *PrometheusMetrics {
	once.Do(func() {
		globalPrometheusMetrics = NewPrometheusMetrics()
	})
	return globalPrometheusMetrics
}
