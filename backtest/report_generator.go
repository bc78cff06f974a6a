package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Evaluation 策略三维评价
type Evaluation struct {
	RiskLevel    string `json:"risk_level"`   // 风险水平（按最大回撤）
	ReturnRating string `json:"return_rating"` // 收益评价（按总收益率）
	Stability    string `json:"stability"`    // 稳定性（按夏普比率）
	Advice       string `json:"advice"`       // 综合建议
}

// Evaluate 生成策略评价
func Evaluate(r *Result) Evaluation {
	e := Evaluation{}

	switch {
	case r.MaxDrawdown < 0.05:
		e.RiskLevel = "低风险"
	case r.MaxDrawdown < 0.15:
		e.RiskLevel = "中风险"
	default:
		e.RiskLevel = "高风险"
	}

	switch {
	case r.TotalReturn > 0.2:
		e.ReturnRating = "优秀"
	case r.TotalReturn > 0.1:
		e.ReturnRating = "良好"
	case r.TotalReturn > 0:
		e.ReturnRating = "一般"
	default:
		e.ReturnRating = "较差"
	}

	switch {
	case r.SharpeRatio > 1:
		e.Stability = "稳定"
	case r.SharpeRatio > 0.5:
		e.Stability = "较稳定"
	default:
		e.Stability = "不稳定"
	}

	switch {
	case r.TotalReturn > 0.1 && r.MaxDrawdown < 0.1:
		e.Advice = "可以考虑实盘测试"
	case r.TotalReturn > 0:
		e.Advice = "需要优化参数"
	default:
		e.Advice = "建议重新设计策略"
	}
	return e
}

// GenerateReport 生成 Markdown 回测报告文件，返回文件路径
func GenerateReport(result *Result, reportDir string) (string, error) {
	if reportDir == "" {
		reportDir = filepath.Join("backtest", "reports")
	}
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	reportPath := filepath.Join(reportDir, fmt.Sprintf("%s_%s.md", result.Strategy, timestamp))

	eval := Evaluate(result)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# 回测报告 · %s 策略\n\n", result.Strategy))
	b.WriteString(fmt.Sprintf("生成时间：%s\n\n", time.Now().Format("2006-01-02 15:04:05")))

	b.WriteString("## 收益指标\n\n")
	b.WriteString(fmt.Sprintf("- 初始资金：%.2f\n", result.InitialCapital))
	b.WriteString(fmt.Sprintf("- 最终资金：%.2f\n", result.FinalCapital))
	b.WriteString(fmt.Sprintf("- 总收益率：%.2f%%\n", result.TotalReturn*100))
	b.WriteString(fmt.Sprintf("- 年化收益率：%.2f%%\n\n", result.AnnualReturn*100))

	b.WriteString("## 风险指标\n\n")
	b.WriteString(fmt.Sprintf("- 最大回撤：%.2f%%（持续 %d 天）\n", result.MaxDrawdown*100, result.Metrics.MaxDrawdownDuration))
	b.WriteString(fmt.Sprintf("- 年化波动率：%.2f%%\n", result.Metrics.Volatility*100))
	b.WriteString(fmt.Sprintf("- 夏普比率：%.2f，索提诺比率：%.2f，卡玛比率：%.2f\n", result.SharpeRatio, result.Metrics.SortinoRatio, result.Metrics.CalmarRatio))
	b.WriteString(fmt.Sprintf("- VaR(95%%)：%.2f%%，CVaR(95%%)：%.2f%%\n\n", result.RiskMetrics.VaR95*100, result.RiskMetrics.CVaR95*100))

	b.WriteString("## 交易统计\n\n")
	b.WriteString(fmt.Sprintf("- 交易次数：%d，胜率：%.2f%%\n", result.TotalTrades, result.WinRate*100))
	b.WriteString(fmt.Sprintf("- 平均盈利：%.2f%%，平均亏损：%.2f%%\n", result.Metrics.AvgWin*100, result.Metrics.AvgLoss*100))
	b.WriteString(fmt.Sprintf("- 最大连续盈利：%d 次，最大连续亏损：%d 次\n\n", result.Metrics.MaxConsecutiveWins, result.Metrics.MaxConsecutiveLosses))

	b.WriteString("## 策略评价\n\n")
	b.WriteString(fmt.Sprintf("- 风险水平：%s\n", eval.RiskLevel))
	b.WriteString(fmt.Sprintf("- 收益表现：%s\n", eval.ReturnRating))
	b.WriteString(fmt.Sprintf("- 策略稳定性：%s\n", eval.Stability))
	b.WriteString(fmt.Sprintf("- 建议：%s\n", eval.Advice))

	if err := os.WriteFile(reportPath, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("写入报告文件失败: %w", err)
	}
	return reportPath, nil
}

// SaveEquityCurveCSV 导出权益曲线 CSV，返回文件路径
func SaveEquityCurveCSV(result *Result, reportDir string) (string, error) {
	if reportDir == "" {
		reportDir = filepath.Join("backtest", "reports")
	}
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	csvPath := filepath.Join(reportDir, fmt.Sprintf("%s_equity_%s.csv", result.Strategy, timestamp))

	var b strings.Builder
	b.WriteString("date,equity,capital,position\n")
	for _, p := range result.EquityCurve {
		b.WriteString(fmt.Sprintf("%s,%.2f,%.2f,%.2f\n", p.Date.Format("2006-01-02"), p.Equity, p.Capital, p.Position))
	}

	if err := os.WriteFile(csvPath, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("写入权益曲线失败: %w", err)
	}
	return csvPath, nil
}
