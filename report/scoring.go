// Package report 综合评分与智能日报
// 七个独立加权因子对最新交易日打分（0-100），加权平均得到综合评分；
// 因子所需列缺失或历史不足时返回中性 50 分，属于设计内的软降级，不报错
package report

import (
	"math"

	"marketpulse/market"
)

const epsilon = 1e-8

// 因子名称
const (
	FactorVolume         = "volume"
	FactorNorthMoney     = "north_money"
	FactorAdvanceDecline = "advance_decline"
	FactorLimitUp        = "limit_up"
	FactorMarketCap      = "market_cap"
	FactorSectorRotation = "sector_rotation"
	FactorSentiment      = "sentiment"
)

// Weights 固定因子权重，总和为 1.0
var Weights = map[string]float64{
	FactorVolume:         0.15,
	FactorNorthMoney:     0.15,
	FactorAdvanceDecline: 0.15,
	FactorLimitUp:        0.15,
	FactorMarketCap:      0.15,
	FactorSectorRotation: 0.15,
	FactorSentiment:      0.10,
}

// FactorNames 固定顺序的因子名列表
func FactorNames() []string {
	return []string{
		FactorVolume, FactorNorthMoney, FactorAdvanceDecline, FactorLimitUp,
		FactorMarketCap, FactorSectorRotation, FactorSentiment,
	}
}

// ScoreBreakdown 评分结果
type ScoreBreakdown struct {
	Composite float64            `json:"composite_score"`
	Factors   map[string]float64 `json:"factor_scores"`
}

// ComputeScores 计算七因子评分与加权综合评分，综合评分恒在 [0,100]
func ComputeScores(records market.Series) ScoreBreakdown {
	scorers := map[string]func(market.Series) float64{
		FactorVolume:         volumeScore,
		FactorNorthMoney:     northMoneyScore,
		FactorAdvanceDecline: advanceDeclineScore,
		FactorLimitUp:        limitUpScore,
		FactorMarketCap:      marketCapScore,
		FactorSectorRotation: sectorRotationScore,
		FactorSentiment:      sentimentScore,
	}

	factors := make(map[string]float64, len(scorers))
	weighted, totalWeight := 0.0, 0.0
	for _, name := range FactorNames() {
		score := scorers[name](records)
		factors[name] = score
		weighted += score * Weights[name]
		totalWeight += Weights[name]
	}

	composite := 50.0
	if totalWeight > 0 {
		composite = weighted / totalWeight
	}
	return ScoreBreakdown{Composite: clamp(composite), Factors: factors}
}

// volumeScore 量能评分：最新成交额相对 5 日均值的单调阶梯映射
// 至少需要 5 个交易日
func volumeScore(records market.Series) float64 {
	if len(records) < 5 {
		return 50
	}
	latest := records.Latest().TotalTurnover
	ma5 := records.TailMean(func(r *market.DailyRecord) float64 { return r.TotalTurnover }, 5)
	if !market.Valid(latest) || !market.Valid(ma5) {
		return 50
	}
	ratio := latest / (ma5 + epsilon)
	switch {
	case ratio > 1.3:
		return 85
	case ratio > 1.1:
		return 70
	case ratio >= 0.8:
		return 50
	case ratio >= 0.6:
		return 30
	default:
		return 15
	}
}

// northMoneyScore 北向资金评分：流量档位 + 3 日趋势项，基准 50 分
// 至少需要 3 个交易日
func northMoneyScore(records market.Series) float64 {
	if len(records) < 3 {
		return 50
	}
	flow := records.Latest().NorthboundNet
	if !market.Valid(flow) {
		return 50
	}

	var flowScore float64
	switch {
	case flow > 80:
		flowScore = 30
	case flow > 50:
		flowScore = 20
	case flow > 20:
		flowScore = 10
	case flow < -50:
		flowScore = -25
	case flow < -20:
		flowScore = -15
	}

	recent := records.Tail(func(r *market.DailyRecord) float64 { return r.NorthboundNet }, 3)
	var trendScore float64
	if allAbove(recent, 0) {
		trendScore = 15
	} else if allBelow(recent, 0) {
		trendScore = -15
	}

	return clamp(50 + flowScore + trendScore)
}

// advanceDeclineScore 涨跌家数评分：上涨占比的阶梯映射
func advanceDeclineScore(records market.Series) float64 {
	latest := records.Latest()
	if latest == nil || !market.Valid(latest.Advances) || !market.Valid(latest.Declines) {
		return 50
	}
	total := latest.Advances + latest.Declines
	if total == 0 {
		return 50
	}
	ratio := latest.Advances / total
	switch {
	case ratio > 0.7:
		return 85
	case ratio > 0.6:
		return 70
	case ratio < 0.3:
		return 25
	case ratio < 0.4:
		return 35
	default:
		return 50
	}
}

// limitUpScore 涨停板评分：涨停家数档位，封板率与跌停家数修正
// 至少需要 3 个交易日
func limitUpScore(records market.Series) float64 {
	if len(records) < 3 {
		return 50
	}
	latest := records.Latest()
	if !market.Valid(latest.LimitUp) {
		return 50
	}

	score := 50.0
	limitUp := latest.LimitUp
	switch {
	case limitUp > 100:
		score += 25
	case limitUp > 80:
		score += 15
	case limitUp > 60:
		score += 5
	case limitUp < 10:
		score -= 30
	case limitUp < 20:
		score -= 20
	}

	if market.Valid(latest.BoardRate) {
		switch {
		case latest.BoardRate > 0.8:
			score += 15
		case latest.BoardRate > 0.6:
			score += 5
		case latest.BoardRate < 0.4:
			score -= 10
		}
	}

	if market.Valid(latest.LimitDown) {
		switch {
		case latest.LimitDown > 50:
			score -= 20
		case latest.LimitDown > 30:
			score -= 10
		}
	}

	return clamp(score)
}

// marketCapScore 市值分布评分：大盘股主导加分，小盘股过度集中减分，结构均衡小幅加分
func marketCapScore(records market.Series) float64 {
	latest := records.Latest()
	if latest == nil {
		return 50
	}
	large := market.Or(latest.CapOver100, 0)
	mid1 := market.Or(latest.Cap50To100, 0)
	mid2 := market.Or(latest.Cap20To50, 0)
	small := market.Or(latest.CapUnder20, 0)
	total := large + mid1 + mid2 + small
	if total == 0 {
		return 50
	}

	largeRatio := large / total
	smallRatio := small / total

	score := 50.0
	switch {
	case largeRatio > 0.4:
		score += 15
	case smallRatio > 0.6:
		score -= 15
	case largeRatio >= 0.2 && largeRatio <= 0.4 && smallRatio <= 0.4:
		score += 10
	}
	return clamp(score)
}

// sectorRotationScore 板块轮动评分：主板与创业板涨停分布均衡加分，严重偏斜减分
func sectorRotationScore(records market.Series) float64 {
	latest := records.Latest()
	if latest == nil || !market.Valid(latest.MainBoardLimitUp) || !market.Valid(latest.GrowthBoardLimitUp) {
		return 50
	}
	total := latest.MainBoardLimitUp + latest.GrowthBoardLimitUp
	if total <= 0 {
		return 50
	}

	mainRatio := latest.MainBoardLimitUp / total
	score := 50.0
	if mainRatio >= 0.3 && mainRatio <= 0.7 {
		score += 10
	} else if mainRatio > 0.8 || mainRatio < 0.2 {
		score -= 5
	}
	return clamp(score)
}

// sentimentScore 情绪因子评分：各可用情绪项的平均修正量放大 2 倍叠加在 50 分上
func sentimentScore(records market.Series) float64 {
	latest := records.Latest()
	if latest == nil {
		return 50
	}

	var factors []float64

	if market.Valid(latest.LimitUp) {
		switch {
		case latest.LimitUp > 80:
			factors = append(factors, 15)
		case latest.LimitUp > 50:
			factors = append(factors, 8)
		case latest.LimitUp < 20:
			factors = append(factors, -10)
		}
	}

	if market.Valid(latest.NorthboundNet) {
		switch {
		case latest.NorthboundNet > 50:
			factors = append(factors, 12)
		case latest.NorthboundNet > 20:
			factors = append(factors, 6)
		case latest.NorthboundNet < -30:
			factors = append(factors, -8)
		}
	}

	if market.Valid(latest.Advances) && market.Valid(latest.Declines) {
		upRatio := latest.Advances / (latest.Advances + latest.Declines + 1)
		if upRatio > 0.7 {
			factors = append(factors, 10)
		} else if upRatio < 0.3 {
			factors = append(factors, -8)
		}
	}

	if len(records) >= 5 && market.Valid(latest.TotalTurnover) {
		ma5 := records.TailMean(func(r *market.DailyRecord) float64 { return r.TotalTurnover }, 5)
		if market.Valid(ma5) && ma5 != 0 {
			trend := (latest.TotalTurnover - ma5) / ma5
			if trend > 0.1 {
				factors = append(factors, 8)
			} else if trend < -0.1 {
				factors = append(factors, -6)
			}
		}
	}

	score := 50.0
	if len(factors) > 0 {
		sum := 0.0
		for _, f := range factors {
			sum += f
		}
		score += sum / float64(len(factors)) * 2
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func allAbove(values []float64, threshold float64) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if !market.Valid(v) || v <= threshold {
			return false
		}
	}
	return true
}

func allBelow(values []float64, threshold float64) bool {
	if len(values) == 0 {
		return false
	}
	for _, v := range values {
		if !market.Valid(v) || v >= threshold {
			return false
		}
	}
	return true
}
