// Package backtest 策略回测引擎
// 逐日顺序推进的状态机：全仓持有（INVESTED）与空仓（FLAT）二选一，
// 不支持部分仓位与做空；每日结果只依赖前一日状态与当日信号
package backtest

import (
	"errors"
	"math"
	"time"

	"marketpulse/indicators"
	"marketpulse/logger"
	"marketpulse/strategy"
)

const epsilon = 1e-8

// ErrNoSignals 信号序列缺失或与数据行数不匹配，回测拒绝运行
var ErrNoSignals = errors.New("信号序列缺失，请先执行策略生成信号")

// ErrNoData 数据序列为空
var ErrNoData = errors.New("回测数据为空")

// 交易动作
const (
	ActionBuy      = "BUY"
	ActionSell     = "SELL"
	ActionStopLoss = "STOP_LOSS"
)

// Options 回测参数
type Options struct {
	InitialCapital  float64 `json:"initial_capital"`  // 初始资金，默认 100000
	TransactionCost float64 `json:"transaction_cost"` // 单边交易成本（比例）
	StopLoss        float64 `json:"stop_loss"`        // 止损比例（相对权益峰值的回撤）
	TakeProfit      float64 `json:"take_profit"`      // 止盈比例（单次卖出收益上限）
}

// DefaultOptions 默认回测参数
func DefaultOptions() Options {
	return Options{
		InitialCapital:  100000,
		TransactionCost: 0.001,
		StopLoss:        0.1,
		TakeProfit:      0.2,
	}
}

// Trade 交易记录，按日期追加，不可变
type Trade struct {
	Date      time.Time `json:"date"`
	Action    string    `json:"action"`  // BUY / SELL / STOP_LOSS
	Capital   float64   `json:"capital"` // 交易后资金（BUY 记录交易前权益）
	PctChange float64   `json:"pct_change"`
}

// EquityPoint 每日权益点
type EquityPoint struct {
	Date     time.Time `json:"date"`
	Equity   float64   `json:"equity"`
	Capital  float64   `json:"capital"`
	Position float64   `json:"position"`
}

// Result 回测结果
type Result struct {
	Strategy       string        `json:"strategy"`
	InitialCapital float64       `json:"initial_capital"`
	FinalCapital   float64       `json:"final_capital"`
	TotalReturn    float64       `json:"total_return"`
	AnnualReturn   float64       `json:"annual_return"`
	MaxDrawdown    float64       `json:"max_drawdown"`
	SharpeRatio    float64       `json:"sharpe_ratio"`
	WinRate        float64       `json:"win_rate"`
	TotalTrades    int           `json:"total_trades"`
	Trades         []Trade       `json:"trades"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
	Metrics        Metrics       `json:"metrics"`
	RiskMetrics    RiskMetrics   `json:"risk_metrics"`
}

// Backtester 回测器
type Backtester struct {
	rows    []indicators.Row
	signals []strategy.Signal
	kind    strategy.Kind
	opt     Options

	capital     float64
	position    float64
	peak        float64
	maxDrawdown float64
	equity      []EquityPoint
	trades      []Trade
}

// NewBacktester 创建回测器
func NewBacktester(kind strategy.Kind, rows []indicators.Row, signals []strategy.Signal, opt Options) *Backtester {
	return &Backtester{
		rows:    rows,
		signals: signals,
		kind:    kind,
		opt:     opt,
		equity:  make([]EquityPoint, 0, len(rows)),
		trades:  make([]Trade, 0),
	}
}

// Run 运行回测
// 相同输入与参数多次运行产生完全一致的结果（无隐藏随机性）
func (bt *Backtester) Run() (*Result, error) {
	if len(bt.rows) == 0 {
		logger.Error("❌ 回测失败: 数据序列为空")
		return nil, ErrNoData
	}
	if len(bt.signals) != len(bt.rows) {
		logger.Error("❌ 回测失败: 信号序列缺失或长度不匹配 (%d 信号 / %d 行)", len(bt.signals), len(bt.rows))
		return nil, ErrNoSignals
	}

	bt.capital = bt.opt.InitialCapital
	bt.position = 0
	bt.peak = bt.opt.InitialCapital
	bt.maxDrawdown = 0

	logger.Info("🚀 开始回测: %s 策略, %d 个交易日", bt.kind, len(bt.rows))

	for i := range bt.rows {
		bt.step(i)
	}

	// 期末仍持仓则按持仓价值平仓，不收取额外成本
	if bt.position > 0 {
		bt.capital += bt.position
		bt.position = 0
		logger.Info("📊 回测结束，强制平仓")
	}

	logger.Info("✅ 回测完成: %d 笔交易, 最终资金 %.2f", len(bt.trades), bt.capital)

	result := &Result{
		Strategy:       string(bt.kind),
		InitialCapital: bt.opt.InitialCapital,
		FinalCapital:   bt.capital,
		MaxDrawdown:    bt.maxDrawdown,
		TotalTrades:    len(bt.trades),
		Trades:         bt.trades,
		EquityCurve:    bt.equity,
	}
	fillPerformance(result, len(bt.rows))
	result.Metrics = CalculateMetrics(bt.equity, bt.trades)
	result.Metrics.CalmarRatio = CalmarFrom(result.AnnualReturn, result.MaxDrawdown)
	result.RiskMetrics = CalculateRiskMetrics(bt.equity)
	return result, nil
}

// step 推进一个交易日
func (bt *Backtester) step(i int) {
	row := &bt.rows[i]
	date := row.Record.Date

	// 1. 记录当日权益
	currentEquity := bt.capital + bt.position
	bt.equity = append(bt.equity, EquityPoint{
		Date:     date,
		Equity:   currentEquity,
		Capital:  bt.capital,
		Position: bt.position,
	})

	// 2. 更新权益峰值与回撤
	if currentEquity > bt.peak {
		bt.peak = currentEquity
	}
	var drawdown float64
	if bt.peak > 0 {
		drawdown = (bt.peak - currentEquity) / bt.peak
	}
	if drawdown > bt.maxDrawdown {
		bt.maxDrawdown = drawdown
	}

	// 3. 止损检查：持仓中回撤超限则强制平仓，当日不再处理信号
	if bt.position > 0 && drawdown > bt.opt.StopLoss {
		bt.capital = bt.position * (1 - bt.opt.StopLoss - bt.opt.TransactionCost)
		bt.position = 0
		bt.trades = append(bt.trades, Trade{Date: date, Action: ActionStopLoss, Capital: bt.capital})
		logger.Warn("⚠️ 止损触发: %s, 回撤 %.2f%%, 剩余资金 %.2f", date.Format("2006-01-02"), drawdown*100, bt.capital)
		return
	}

	// 4. 信号处理
	switch {
	case bt.signals[i] == strategy.Buy && bt.position == 0:
		bt.position = bt.capital * (1 - bt.opt.TransactionCost)
		bt.capital = 0
		bt.trades = append(bt.trades, Trade{Date: date, Action: ActionBuy, Capital: currentEquity})
		logger.Debug("📈 买入: %s, 持仓 %.2f", date.Format("2006-01-02"), bt.position)

	case bt.signals[i] == strategy.Sell && bt.position > 0:
		// 持有期收益代理：当日上涨率的 10%，缺失时取 2% 默认值，受止盈上限约束
		pct := 0.02
		if !math.IsNaN(row.AdvanceRatio) {
			pct = row.AdvanceRatio * 0.1
		}
		if pct > bt.opt.TakeProfit {
			pct = bt.opt.TakeProfit
		}
		bt.capital = bt.position * (1 + pct - bt.opt.TransactionCost)
		bt.position = 0
		bt.trades = append(bt.trades, Trade{Date: date, Action: ActionSell, Capital: bt.capital, PctChange: pct})
		logger.Debug("📉 卖出: %s, 收益 %.2f%%, 资金 %.2f", date.Format("2006-01-02"), pct*100, bt.capital)
	}
}

// fillPerformance 计算核心绩效指标
func fillPerformance(r *Result, numDays int) {
	if r.InitialCapital > 0 {
		r.TotalReturn = (r.FinalCapital - r.InitialCapital) / r.InitialCapital
	}

	// 年化收益：按 252 个交易日几何年化，单日序列退化为总收益
	if numDays > 1 {
		r.AnnualReturn = math.Pow(1+r.TotalReturn, 252/float64(numDays)) - 1
	} else {
		r.AnnualReturn = r.TotalReturn
	}

	r.SharpeRatio = sharpeRatio(r.EquityCurve)
	r.WinRate = winRate(r.Trades)
}

// sharpeRatio 日收益率均值/标准差 × √252，权益点不足 2 个时为 0
func sharpeRatio(equity []EquityPoint) float64 {
	returns := equityReturns(equity)
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range returns {
		mean += v
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, v := range returns {
		diff := v - mean
		variance += diff * diff
	}
	var std float64
	if len(returns) > 1 {
		std = math.Sqrt(variance / float64(len(returns)-1))
	}
	return mean / (std + epsilon) * math.Sqrt(252)
}

// winRate 盈利卖出占有收益记录的交易比例，总交易少于 2 笔时为 0
func winRate(trades []Trade) float64 {
	if len(trades) < 2 {
		return 0
	}
	wins, sells := 0, 0
	for _, t := range trades {
		if t.Action != ActionSell {
			continue
		}
		sells++
		if t.PctChange > 0 {
			wins++
		}
	}
	if sells == 0 {
		return 0
	}
	return float64(wins) / float64(sells)
}

// equityReturns 权益曲线的日收益率序列
func equityReturns(equity []EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1].Equity > 0 {
			returns = append(returns, (equity[i].Equity-equity[i-1].Equity)/equity[i-1].Equity)
		}
	}
	return returns
}
