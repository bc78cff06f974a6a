package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marketpulse/backtest"
	"marketpulse/logger"
	"marketpulse/strategy"
)

// BacktestRequest 回测请求
// params 省略时依次回退到配置文件的策略默认值、内置默认值
type BacktestRequest struct {
	Strategy        string           `json:"strategy" binding:"required"`
	Params          *strategy.Params `json:"params"`
	InitialCapital  float64          `json:"initial_capital"`
	TransactionCost *float64         `json:"transaction_cost"`
	StopLoss        float64          `json:"stop_loss"`
	TakeProfit      float64          `json:"take_profit"`
	SaveReport      bool             `json:"save_report"`
}

// BacktestResponse 回测响应
type BacktestResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Result     *backtest.Result     `json:"result,omitempty"`
	Evaluation *backtest.Evaluation `json:"evaluation,omitempty"`
	ReportPath string               `json:"report_path,omitempty"`
}

// resolveParams 解析策略参数：请求优先，其次配置文件，最后内置默认值
func (s *Server) resolveParams(kind strategy.Kind, req *BacktestRequest) strategy.Params {
	if req.Params != nil {
		return *req.Params
	}
	if p, ok := s.cfg.Strategies[string(kind)]; ok {
		return p
	}
	return strategy.DefaultParams(kind)
}

// resolveOptions 解析回测选项：请求优先，其次配置文件
func (s *Server) resolveOptions(req *BacktestRequest) backtest.Options {
	opt := backtest.Options{
		InitialCapital:  s.cfg.Backtest.InitialCapital,
		TransactionCost: s.cfg.Backtest.TransactionCost,
		StopLoss:        s.cfg.Backtest.StopLoss,
		TakeProfit:      s.cfg.Backtest.TakeProfit,
	}
	if req.InitialCapital > 0 {
		opt.InitialCapital = req.InitialCapital
	}
	if req.TransactionCost != nil && *req.TransactionCost >= 0 {
		opt.TransactionCost = *req.TransactionCost
	}
	if req.StopLoss > 0 {
		opt.StopLoss = req.StopLoss
	}
	if req.TakeProfit > 0 {
		opt.TakeProfit = req.TakeProfit
	}
	return opt
}

// runBacktest 运行回测
func (s *Server) runBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, BacktestResponse{
			Success: false,
			Message: fmt.Sprintf("请求参数错误: %v", err),
		})
		return
	}

	kind := strategy.Kind(req.Strategy)
	valid := false
	for _, k := range strategy.Kinds() {
		if k == kind {
			valid = true
			break
		}
	}
	if !valid {
		s.pm.RecordBacktest(req.Strategy, "invalid", 0)
		c.JSON(http.StatusBadRequest, BacktestResponse{
			Success: false,
			Message: fmt.Sprintf("不支持的策略: %s", req.Strategy),
		})
		return
	}

	dataset, rows, ok := s.snapshot()
	if !ok {
		s.pm.RecordBacktest(req.Strategy, "no_dataset", 0)
		c.JSON(http.StatusConflict, BacktestResponse{
			Success: false,
			Message: "尚未上传数据集",
		})
		return
	}

	params := s.resolveParams(kind, &req)
	opt := s.resolveOptions(&req)

	logger.Info("📊 开始回测: 策略=%s, 窗口=%d, 数据=%d 天", kind, params.Window, len(rows))
	start := time.Now()

	signals, err := strategy.Generate(kind, rows, params)
	if err != nil {
		var cfgErr *strategy.ConfigError
		if errors.As(err, &cfgErr) {
			s.pm.RecordBacktest(req.Strategy, "config_error", 0)
			c.JSON(http.StatusBadRequest, BacktestResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
		s.pm.RecordBacktest(req.Strategy, "error", 0)
		c.JSON(http.StatusInternalServerError, BacktestResponse{
			Success: false,
			Message: fmt.Sprintf("信号生成失败: %v", err),
		})
		return
	}

	result, err := backtest.NewBacktester(kind, rows, signals, opt).Run()
	if err != nil {
		s.pm.RecordBacktest(req.Strategy, "error", 0)
		logger.Error("❌ 回测失败: %v", err)
		c.JSON(http.StatusInternalServerError, BacktestResponse{
			Success: false,
			Message: fmt.Sprintf("回测失败: %v", err),
		})
		return
	}

	duration := time.Since(start)
	s.pm.RecordBacktest(req.Strategy, "success", duration)

	evaluation := backtest.Evaluate(result)

	var reportPath string
	if req.SaveReport {
		reportPath, err = backtest.GenerateReport(result, s.cfg.Backtest.ReportDir)
		if err != nil {
			logger.Warn("⚠️ 生成报告失败: %v", err)
		} else {
			logger.Info("📄 报告已生成: %s", reportPath)
		}
		if csvPath, err := backtest.SaveEquityCurveCSV(result, s.cfg.Backtest.ReportDir); err != nil {
			logger.Warn("⚠️ 保存权益曲线失败: %v", err)
		} else {
			logger.Info("📈 权益曲线已保存: %s", csvPath)
		}
	}

	// 落回测历史
	if s.btStore != nil {
		startDate, endDate := dataset.DateRange()
		if err := s.btStore.Save(result, startDate, endDate); err != nil {
			logger.Warn("⚠️ 保存回测历史失败: %v", err)
		}
	}

	// 推送回测完成事件
	s.hub.broadcastJSON(map[string]interface{}{
		"type": "backtest_complete",
		"data": map[string]interface{}{
			"strategy":     result.Strategy,
			"total_return": result.TotalReturn,
			"sharpe_ratio": result.SharpeRatio,
			"max_drawdown": result.MaxDrawdown,
			"total_trades": result.TotalTrades,
		},
	})

	logger.Info("✅ 回测完成: 总收益率=%.2f%%, 夏普比率=%.2f, 耗时=%v",
		result.TotalReturn*100, result.SharpeRatio, duration)

	c.JSON(http.StatusOK, BacktestResponse{
		Success:    true,
		Message:    "回测完成",
		Result:     result,
		Evaluation: &evaluation,
		ReportPath: reportPath,
	})
}

// getBacktestHistory 回测历史
func (s *Server) getBacktestHistory(c *gin.Context) {
	if s.btStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "回测历史存储未启用",
		})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.btStore.List(c.Query("strategy"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": fmt.Sprintf("查询回测历史失败: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": records,
	})
}
