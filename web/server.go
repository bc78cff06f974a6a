// Package web gin REST API：数据集上传、回测、日报、预警与实时推送
package web

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketpulse/config"
	"marketpulse/indicators"
	"marketpulse/logger"
	"marketpulse/market"
	"marketpulse/metrics"
	"marketpulse/storage"
)

// Version 构建版本号，由 main 包注入
var Version = "dev"

// Server Web 服务器
type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	pm         *metrics.PrometheusMetrics
	collector  *metrics.SystemMetricsCollector
	logStore   *storage.LogStorage
	btStore    *storage.BacktestStore
	hub        *Hub

	// 内存中的当前数据集与对应指标行，整体替换，读写共用一把锁
	mu      sync.RWMutex
	dataset *market.Dataset
	rows    []indicators.Row
}

// Options 服务器外部依赖，均可为 nil（相应功能降级）
type Options struct {
	LogStore      *storage.LogStorage
	BacktestStore *storage.BacktestStore
	Collector     *metrics.SystemMetricsCollector
}

// NewServer 创建 Web 服务器
func NewServer(cfg *config.Config, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Web.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	}

	s := &Server{
		cfg:       cfg,
		pm:        metrics.GetPrometheusMetrics(),
		collector: opts.Collector,
		logStore:  opts.LogStore,
		btStore:   opts.BacktestStore,
		hub:       newHub(),
	}
	go s.hub.run()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(GinLoggerMiddleware(cfg.Web.Mode == "debug"))
	if cfg.RateLimit.Enabled == nil || *cfg.RateLimit.Enabled {
		r.Use(RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	s.setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(r *gin.Engine) {
	// Prometheus metrics 端点（供 Prometheus 抓取）
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/version", s.getVersion)

		api.POST("/dataset", s.uploadDataset)
		api.GET("/dataset", s.getDatasetStatus)
		api.GET("/indicators", s.getIndicators)

		api.POST("/backtest", s.runBacktest)
		api.GET("/backtest/history", s.getBacktestHistory)

		api.GET("/report", s.getReport)
		api.GET("/alerts", s.getAlerts)

		api.GET("/logs", s.getLogs)
		api.GET("/system/status", s.getSystemStatus)

		// WebSocket：日志与回测完成事件推送
		api.GET("/ws", s.handleWebSocket)
	}
}

// Start 启动 Web 服务器，context 取消时优雅关闭
func (s *Server) Start(ctx context.Context) error {
	go func() {
		logger.Info("🌐 Web服务器启动在 http://%s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("❌ Web服务器启动失败: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("❌ Web服务器关闭失败: %v", err)
		} else {
			logger.Info("✅ Web服务器已关闭")
		}
	}()

	return nil
}

// Stop 停止 Web 服务器
func (s *Server) Stop() {
	if s == nil || s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Error("❌ Web服务器关闭失败: %v", err)
	}
}

// replaceDataset 整体替换当前数据集与指标行
func (s *Server) replaceDataset(ds *market.Dataset, rows []indicators.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = ds
	s.rows = rows
}

// snapshot 取当前数据集快照，后续计算不再持锁
func (s *Server) snapshot() (*market.Dataset, []indicators.Row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset, s.rows, s.dataset != nil
}

// getVersion 版本号
func (s *Server) getVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"version": Version,
	})
}

// getSystemStatus 进程资源快照
func (s *Server) getSystemStatus(c *gin.Context) {
	if s.collector == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "系统指标采集未启用",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  s.collector.Snapshot(),
	})
}
