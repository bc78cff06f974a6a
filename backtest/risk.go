package backtest

import (
	"math"
	"sort"
)

// RiskMetrics 尾部风险指标，历史模拟法，比例值为小数
type RiskMetrics struct {
	VaR95  float64 `json:"var_95"`  // 95% 置信度风险价值
	VaR99  float64 `json:"var_99"`  // 99% 置信度风险价值
	CVaR95 float64 `json:"cvar_95"` // 95% 条件风险价值
	CVaR99 float64 `json:"cvar_99"` // 99% 条件风险价值
}

// CalculateRiskMetrics 从权益曲线计算尾部风险指标
func CalculateRiskMetrics(equity []EquityPoint) RiskMetrics {
	returns := equityReturns(equity)
	if len(returns) == 0 {
		return RiskMetrics{}
	}
	return RiskMetrics{
		VaR95:  historicalVaR(returns, 0.95),
		VaR99:  historicalVaR(returns, 0.99),
		CVaR95: conditionalVaR(returns, 0.95),
		CVaR99: conditionalVaR(returns, 0.99),
	}
}

// historicalVaR 历史模拟法 VaR，返回正数表示损失
func historicalVaR(returns []float64, confidence float64) float64 {
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	index := int(float64(len(sorted)) * (1 - confidence))
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	if index < 0 {
		index = 0
	}
	return math.Abs(sorted[index])
}

// conditionalVaR 超过 VaR 阈值部分的平均损失（Expected Shortfall）
func conditionalVaR(returns []float64, confidence float64) float64 {
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	index := int(float64(len(sorted)) * (1 - confidence))
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	if index < 0 {
		return 0
	}

	sum := 0.0
	for i := 0; i <= index; i++ {
		sum += sorted[i]
	}
	return math.Abs(sum / float64(index+1))
}
