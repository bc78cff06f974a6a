package backtest

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketpulse/indicators"
	"marketpulse/market"
	"marketpulse/strategy"
)

func makeRows(n int, fill func(i int, r *market.DailyRecord)) []indicators.Row {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := make(market.Series, n)
	for i := range records {
		rec := market.NewDailyRecord(base.AddDate(0, 0, i))
		rec.TotalTurnover = 10000
		if fill != nil {
			fill(i, &rec)
		}
		records[i] = rec
	}
	return indicators.Compute(records)
}

// TestBuySellCycle 测试一买一卖的精确资金流
func TestBuySellCycle(t *testing.T) {
	rows := makeRows(3, func(i int, r *market.DailyRecord) {
		if i == 2 {
			// 卖出日上涨率 0.8 → 收益代理 8%
			r.Advances, r.Declines, r.Flat = 4000, 950, 50
		}
	})
	signals := []strategy.Signal{strategy.Buy, strategy.Hold, strategy.Sell}

	result, err := NewBacktester(strategy.Momentum, rows, signals, DefaultOptions()).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}

	// 买入: 100000 × (1-0.001) = 99900
	// 卖出: 99900 × (1 + 0.08 - 0.001) = 107792.1
	if math.Abs(result.FinalCapital-107792.1) > 1e-6 {
		t.Errorf("最终资金应为 107792.1，实际 %v", result.FinalCapital)
	}
	if result.TotalTrades != 2 {
		t.Errorf("应有 2 笔交易，实际 %d", result.TotalTrades)
	}
	if result.Trades[0].Action != ActionBuy || result.Trades[1].Action != ActionSell {
		t.Errorf("交易动作错误: %+v", result.Trades)
	}
	if math.Abs(result.TotalReturn-0.077921) > 1e-9 {
		t.Errorf("总收益率错误: %v", result.TotalReturn)
	}
	t.Logf("✅ 一买一卖资金流正确: 最终资金 %.2f", result.FinalCapital)
}

// TestSellReturnCappedByTakeProfit 单次卖出收益受止盈上限约束
func TestSellReturnCappedByTakeProfit(t *testing.T) {
	rows := makeRows(2, func(i int, r *market.DailyRecord) {
		if i == 1 {
			// 上涨率 1.0 → 收益代理 10%，应被 5% 止盈截断
			r.Advances, r.Declines, r.Flat = 5000, 0, 0
		}
	})
	signals := []strategy.Signal{strategy.Buy, strategy.Sell}

	opt := DefaultOptions()
	opt.TakeProfit = 0.05
	result, err := NewBacktester(strategy.Momentum, rows, signals, opt).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}

	expected := 99900 * (1 + 0.05 - 0.001)
	if math.Abs(result.FinalCapital-expected) > 1e-6 {
		t.Errorf("最终资金应为 %.2f，实际 %v", expected, result.FinalCapital)
	}
	if result.Trades[1].PctChange != 0.05 {
		t.Errorf("卖出收益应被截断为 0.05，实际 %v", result.Trades[1].PctChange)
	}
	t.Log("✅ 止盈上限生效")
}

// TestStopLossTriggered 极小止损线下买入成本即触发止损
func TestStopLossTriggered(t *testing.T) {
	rows := makeRows(2, nil)
	signals := []strategy.Signal{strategy.Buy, strategy.Hold}

	opt := DefaultOptions()
	opt.StopLoss = 0.0005
	result, err := NewBacktester(strategy.Momentum, rows, signals, opt).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}

	if len(result.Trades) != 2 {
		t.Fatalf("应有买入+止损 2 笔交易，实际 %d", len(result.Trades))
	}
	if result.Trades[1].Action != ActionStopLoss {
		t.Errorf("第二笔应为止损，实际 %s", result.Trades[1].Action)
	}
	// 止损: 99900 × (1 - 0.0005 - 0.001) = 99750.15
	if math.Abs(result.FinalCapital-99750.15) > 1e-6 {
		t.Errorf("止损后资金应为 99750.15，实际 %v", result.FinalCapital)
	}
	t.Logf("✅ 止损触发正确: 剩余资金 %.2f", result.FinalCapital)
}

// TestFlatMarketNoTrades 全程观望不产生交易
func TestFlatMarketNoTrades(t *testing.T) {
	rows := makeRows(30, nil)
	signals := make([]strategy.Signal, 30)

	result, err := NewBacktester(strategy.Momentum, rows, signals, DefaultOptions()).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}

	if result.TotalTrades != 0 {
		t.Errorf("不应有交易，实际 %d 笔", result.TotalTrades)
	}
	if result.FinalCapital != result.InitialCapital {
		t.Errorf("资金应不变，实际 %v", result.FinalCapital)
	}
	if result.TotalReturn != 0 || result.MaxDrawdown != 0 {
		t.Errorf("收益与回撤应为 0: %v, %v", result.TotalReturn, result.MaxDrawdown)
	}
	if len(result.EquityCurve) != 30 {
		t.Errorf("权益曲线应有 30 个点，实际 %d", len(result.EquityCurve))
	}
	t.Log("✅ 观望行情无交易")
}

// TestForcedLiquidation 期末持仓按持仓价值平仓
func TestForcedLiquidation(t *testing.T) {
	rows := makeRows(2, nil)
	signals := []strategy.Signal{strategy.Buy, strategy.Hold}

	result, err := NewBacktester(strategy.Momentum, rows, signals, DefaultOptions()).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}
	// 买入后持仓 99900，期末平仓不收取成本
	if math.Abs(result.FinalCapital-99900) > 1e-6 {
		t.Errorf("期末平仓资金应为 99900，实际 %v", result.FinalCapital)
	}
	t.Log("✅ 期末强制平仓正确")
}

// TestDeterministic 相同输入重复运行结果一致
func TestDeterministic(t *testing.T) {
	rows := makeRows(40, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 10000 + float64(i%7)*800
		r.Advances = float64(2000 + i*30)
		r.Declines = float64(3000 - i*30)
	})
	signals := make([]strategy.Signal, 40)
	for i := range signals {
		switch i % 6 {
		case 1:
			signals[i] = strategy.Buy
		case 4:
			signals[i] = strategy.Sell
		}
	}

	r1, err := NewBacktester(strategy.Momentum, rows, signals, DefaultOptions()).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}
	r2, err := NewBacktester(strategy.Momentum, rows, signals, DefaultOptions()).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}

	b1, _ := json.Marshal(r1)
	b2, _ := json.Marshal(r2)
	if string(b1) != string(b2) {
		t.Error("重复运行结果不一致")
	}
	t.Log("✅ 回测结果可复现")
}

// TestRunErrors 空数据与信号缺失
func TestRunErrors(t *testing.T) {
	if _, err := NewBacktester(strategy.Momentum, nil, nil, DefaultOptions()).Run(); err != ErrNoData {
		t.Errorf("空数据应返回 ErrNoData，实际 %v", err)
	}

	rows := makeRows(5, nil)
	if _, err := NewBacktester(strategy.Momentum, rows, []strategy.Signal{strategy.Buy}, DefaultOptions()).Run(); err != ErrNoSignals {
		t.Errorf("信号长度不匹配应返回 ErrNoSignals，实际 %v", err)
	}
	t.Log("✅ 错误输入均被拒绝")
}

// TestEvaluate 测试结果评级
func TestEvaluate(t *testing.T) {
	rows := makeRows(3, func(i int, r *market.DailyRecord) {
		if i == 2 {
			r.Advances, r.Declines, r.Flat = 4000, 950, 50
		}
	})
	signals := []strategy.Signal{strategy.Buy, strategy.Hold, strategy.Sell}
	result, err := NewBacktester(strategy.Momentum, rows, signals, DefaultOptions()).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}

	eval := Evaluate(result)
	if eval.RiskLevel == "" || eval.ReturnRating == "" || eval.Stability == "" || eval.Advice == "" {
		t.Errorf("评价字段不应为空: %+v", eval)
	}
	// 回撤 0.1% → 低风险；收益 7.8% → 一般
	if eval.RiskLevel != "低风险" {
		t.Errorf("风险水平应为低风险，实际 %s", eval.RiskLevel)
	}
	if eval.ReturnRating != "一般" {
		t.Errorf("收益表现应为一般，实际 %s", eval.ReturnRating)
	}
	t.Logf("✅ 评价: %s / %s / %s", eval.RiskLevel, eval.ReturnRating, eval.Stability)
}

// TestGenerateReportFiles 回测报告与权益曲线落盘
func TestGenerateReportFiles(t *testing.T) {
	rows := makeRows(3, func(i int, r *market.DailyRecord) {
		if i == 2 {
			r.Advances, r.Declines, r.Flat = 4000, 950, 50
		}
	})
	signals := []strategy.Signal{strategy.Buy, strategy.Hold, strategy.Sell}
	result, err := NewBacktester(strategy.Momentum, rows, signals, DefaultOptions()).Run()
	if err != nil {
		t.Fatalf("回测失败: %v", err)
	}

	dir := t.TempDir()
	reportPath, err := GenerateReport(result, dir)
	if err != nil {
		t.Fatalf("生成报告失败: %v", err)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("报告文件不存在: %v", err)
	}
	if filepath.Dir(reportPath) != dir {
		t.Errorf("报告应写入 %s，实际 %s", dir, reportPath)
	}

	csvPath, err := SaveEquityCurveCSV(result, dir)
	if err != nil {
		t.Fatalf("保存权益曲线失败: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("读取权益曲线失败: %v", err)
	}
	if len(data) == 0 {
		t.Error("权益曲线文件为空")
	}
	t.Logf("✅ 报告文件: %s", reportPath)
}
