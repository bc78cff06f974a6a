package backtest

import (
	"math"
)

// Metrics 扩展绩效指标，比例值均为小数（0.1 = 10%）
type Metrics struct {
	// 风险指标
	Volatility          float64 `json:"volatility"`            // 年化波动率
	MaxDrawdownDuration int     `json:"max_drawdown_duration"` // 最大回撤持续天数

	// 风险调整收益
	SortinoRatio float64 `json:"sortino_ratio"`
	CalmarRatio  float64 `json:"calmar_ratio"`

	// 交易质量（基于卖出交易的收益率）
	ProfitFactor float64 `json:"profit_factor"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`

	// 连续性指标
	MaxConsecutiveWins   int `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int `json:"max_consecutive_losses"`
}

// CalculateMetrics 计算扩展指标
func CalculateMetrics(equity []EquityPoint, trades []Trade) Metrics {
	returns := equityReturns(equity)
	pcts := sellReturns(trades)

	m := Metrics{
		Volatility:          annualizedVolatility(returns),
		MaxDrawdownDuration: maxDrawdownDuration(equity),
		SortinoRatio:        sortinoRatio(returns),
		ProfitFactor:        profitFactor(pcts),
		AvgWin:              avgAbove(pcts, 0),
		AvgLoss:             avgBelowAbs(pcts, 0),
	}
	m.LargestWin, m.LargestLoss = extremes(pcts)
	m.MaxConsecutiveWins, m.MaxConsecutiveLosses = consecutiveRuns(pcts)
	return m
}

// sellReturns 提取卖出交易的收益率序列（止损与买入不计入）
func sellReturns(trades []Trade) []float64 {
	out := make([]float64, 0, len(trades))
	for _, t := range trades {
		if t.Action == ActionSell {
			out = append(out, t.PctChange)
		}
	}
	return out
}

// annualizedVolatility 日收益率标准差 × √252
func annualizedVolatility(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		diff := r - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))
	return math.Sqrt(variance) * math.Sqrt(252)
}

// sortinoRatio 只计下行波动的风险调整收益
func sortinoRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	downVariance := 0.0
	downCount := 0
	for _, r := range returns {
		if r < 0 {
			downVariance += r * r
			downCount++
		}
	}
	if downCount == 0 {
		return 0
	}
	downStd := math.Sqrt(downVariance / float64(downCount))
	if downStd == 0 {
		return 0
	}
	return mean / downStd * math.Sqrt(252)
}

// CalmarFrom 年化收益/最大回撤
func CalmarFrom(annualReturn, maxDrawdown float64) float64 {
	if maxDrawdown == 0 {
		return 0
	}
	return annualReturn / maxDrawdown
}

// maxDrawdownDuration 最长的回撤持续天数（权益低于前期峰值的连续天数）
func maxDrawdownDuration(equity []EquityPoint) int {
	if len(equity) == 0 {
		return 0
	}
	maxDuration, current := 0, 0
	peak := equity[0].Equity
	for _, p := range equity {
		if p.Equity >= peak {
			peak = p.Equity
			if current > maxDuration {
				maxDuration = current
			}
			current = 0
		} else {
			current++
		}
	}
	if current > maxDuration {
		maxDuration = current
	}
	return maxDuration
}

// profitFactor 总盈利/总亏损，无亏损时为 0
func profitFactor(pcts []float64) float64 {
	totalProfit, totalLoss := 0.0, 0.0
	for _, p := range pcts {
		if p > 0 {
			totalProfit += p
		} else {
			totalLoss += math.Abs(p)
		}
	}
	if totalLoss == 0 {
		return 0
	}
	return totalProfit / totalLoss
}

func avgAbove(pcts []float64, threshold float64) float64 {
	sum, count := 0.0, 0
	for _, p := range pcts {
		if p > threshold {
			sum += p
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func avgBelowAbs(pcts []float64, threshold float64) float64 {
	sum, count := 0.0, 0
	for _, p := range pcts {
		if p < threshold {
			sum += math.Abs(p)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func extremes(pcts []float64) (largestWin, largestLoss float64) {
	for _, p := range pcts {
		if p > largestWin {
			largestWin = p
		}
		if p < 0 && math.Abs(p) > largestLoss {
			largestLoss = math.Abs(p)
		}
	}
	return largestWin, largestLoss
}

func consecutiveRuns(pcts []float64) (maxWins, maxLosses int) {
	wins, losses := 0, 0
	for _, p := range pcts {
		if p > 0 {
			wins++
			losses = 0
			if wins > maxWins {
				maxWins = wins
			}
		} else {
			losses++
			wins = 0
			if losses > maxLosses {
				maxLosses = losses
			}
		}
	}
	return maxWins, maxLosses
}
