package report

import (
	"strconv"
	"strings"

	"marketpulse/i18n"
	"marketpulse/market"
)

// Dimension 单个维度的档位结果
type Dimension struct {
	Level string  `json:"level"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Ratio float64 `json:"ratio,omitempty"`
}

// SectorEntry 行业涨停榜条目
type SectorEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Overview 六维市场概览
type Overview struct {
	Turnover   Dimension          `json:"turnover"`
	Northbound Dimension          `json:"northbound"`
	Breadth    Dimension          `json:"breadth"`
	LimitUp    Dimension          `json:"limit_up"`
	CapDist    map[string]float64 `json:"cap_dist,omitempty"`
	Sectors    []SectorEntry      `json:"sectors,omitempty"`
}

// quantileLevel 阈值降序匹配，取首个满足 value >= threshold 的档位
func quantileLevel(value float64, thresholds []struct {
	min   float64
	level string
}, fallback string) string {
	for _, t := range thresholds {
		if value >= t.min {
			return t.level
		}
	}
	return fallback
}

var heatLevels = []struct {
	min   float64
	level string
}{
	{1.3, "hot"}, {1.1, "warm"}, {0.9, "neutral"}, {0.7, "cool"},
}

var breadthLevels = []struct {
	min   float64
	level string
}{
	{0.7, "hot"}, {0.55, "warm"}, {0.45, "neutral"}, {0.3, "cool"},
}

var limitUpLevels = []struct {
	min   float64
	level string
}{
	{10, "hot"}, {3, "warm"}, {1, "neutral"}, {0.5, "cool"},
}

func dimension(level string, value, ratio float64) Dimension {
	return Dimension{
		Level: level,
		Label: i18n.T("level." + level),
		Value: value,
		Ratio: ratio,
	}
}

// BuildOverview 生成六维市场概览，各维度独立降级，不因单列缺失整体失败
func BuildOverview(records market.Series) Overview {
	return Overview{
		Turnover:   turnoverDimension(records),
		Northbound: northDimension(records),
		Breadth:    breadthDimension(records),
		LimitUp:    limitUpDimension(records),
		CapDist:    capDistribution(records),
		Sectors:    sectorRanking(records),
	}
}

// turnoverDimension 成交额热度：最新值相对 5 日均值
func turnoverDimension(records market.Series) Dimension {
	if len(records) < 5 {
		return dimension("unknown", 0, 1)
	}
	latest := records.Latest().TotalTurnover
	avg5 := records.TailMean(func(r *market.DailyRecord) float64 { return r.TotalTurnover }, 5)
	if !market.Valid(latest) || !market.Valid(avg5) || avg5 == 0 {
		return dimension("unknown", 0, 1)
	}
	ratio := latest / avg5
	return dimension(quantileLevel(ratio, heatLevels, "cold"), latest, ratio)
}

// northDimension 北向资金态度
func northDimension(records market.Series) Dimension {
	latest := records.Latest()
	if latest == nil || !market.Valid(latest.NorthboundNet) {
		return dimension("unknown", 0, 0)
	}
	flow := latest.NorthboundNet
	switch {
	case flow > 50:
		return dimension("positive", flow, 0)
	case flow < -30:
		return dimension("cautious", flow, 0)
	default:
		return dimension("calm", flow, 0)
	}
}

// breadthDimension 涨跌广度
func breadthDimension(records market.Series) Dimension {
	latest := records.Latest()
	if latest == nil || !market.Valid(latest.Advances) || !market.Valid(latest.Declines) {
		return dimension("unknown", 0, 0.5)
	}
	ratio := latest.Advances / (latest.Advances + latest.Declines + epsilon)
	return dimension(quantileLevel(ratio, breadthLevels, "cold"), latest.Advances, ratio)
}

// limitUpDimension 涨停跌停力量对比
func limitUpDimension(records market.Series) Dimension {
	latest := records.Latest()
	if latest == nil || !market.Valid(latest.LimitUp) {
		return dimension("unknown", 0, 1)
	}
	ld := market.Or(latest.LimitDown, 0)
	ratio := latest.LimitUp / (ld + epsilon)
	return dimension(quantileLevel(ratio, limitUpLevels, "cold"), latest.LimitUp, ratio)
}

// capDistribution 涨停板市值分布，四档全缺或总量为零返回 nil
func capDistribution(records market.Series) map[string]float64 {
	latest := records.Latest()
	if latest == nil {
		return nil
	}
	dist := map[string]float64{
		"over_100":  market.Or(latest.CapOver100, 0),
		"50_to_100": market.Or(latest.Cap50To100, 0),
		"20_to_50":  market.Or(latest.Cap20To50, 0),
		"under_20":  market.Or(latest.CapUnder20, 0),
	}
	total := 0.0
	for _, v := range dist {
		total += v
	}
	if total == 0 {
		return nil
	}
	return dist
}

// sectorRanking 解析行业涨停榜文本，格式为反斜杠分隔的 名称\数量 交替序列
// 最多保留前 8 个行业
func sectorRanking(records market.Series) []SectorEntry {
	latest := records.Latest()
	if latest == nil || latest.SectorRanking == "" {
		return nil
	}

	parts := strings.Split(latest.SectorRanking, `\`)
	var entries []SectorEntry
	for i := 0; i < len(parts) && len(entries) < 8; i++ {
		name := strings.TrimSpace(parts[i])
		if name == "" {
			continue
		}
		count := 0
		if i+1 < len(parts) {
			if n, err := strconv.Atoi(strings.TrimSpace(parts[i+1])); err == nil {
				count = n
				i++
			}
		}
		entries = append(entries, SectorEntry{Name: name, Count: count})
	}
	return entries
}
