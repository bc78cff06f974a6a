package report

import (
	"fmt"
	"math"
	"strings"

	"marketpulse/i18n"
	"marketpulse/market"
)

// NarrativeAnalysis 生成一行式市场综述，各片段以 " | " 连接
// 量价、资金、广度、涨停四个片段各自独立，对应列缺失时静默跳过
func NarrativeAnalysis(records market.Series) string {
	if len(records) == 0 {
		return i18n.T("analysis.no_data")
	}
	latest := records.Latest()

	var parts []string

	if part := volumeNarrative(records, latest); part != "" {
		parts = append(parts, part)
	}
	if part := northNarrative(records, latest); part != "" {
		parts = append(parts, part)
	}
	if part := breadthNarrative(latest); part != "" {
		parts = append(parts, part)
	}
	if part := limitUpNarrative(latest); part != "" {
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return i18n.T("analysis.no_data")
	}
	return strings.Join(parts, " | ")
}

func volumeNarrative(records market.Series, latest *market.DailyRecord) string {
	if len(records) < 5 || !market.Valid(latest.TotalTurnover) {
		return ""
	}
	ma5 := records.TailMean(func(r *market.DailyRecord) float64 { return r.TotalTurnover }, 5)
	if !market.Valid(ma5) || ma5 == 0 {
		return ""
	}
	ratio := latest.TotalTurnover / ma5
	data := map[string]interface{}{
		"Volume": fmt.Sprintf("%.0f", latest.TotalTurnover),
		"Pct":    fmt.Sprintf("%.0f%%", (ratio-1)*100),
	}
	switch {
	case ratio > 1.3:
		return i18n.T("analysis.volume.surge", data)
	case ratio > 1.1:
		return i18n.T("analysis.volume.mild", data)
	case ratio < 0.8:
		return i18n.T("analysis.volume.shrink", data)
	default:
		return i18n.T("analysis.volume.steady", data)
	}
}

func northNarrative(records market.Series, latest *market.DailyRecord) string {
	if !market.Valid(latest.NorthboundNet) {
		return ""
	}
	flow := latest.NorthboundNet

	trend := i18n.T("analysis.north.trend.unknown")
	if len(records) >= 3 {
		recent := records.Tail(func(r *market.DailyRecord) float64 { return r.NorthboundNet }, 3)
		switch {
		case allAbove(recent, 0):
			trend = i18n.T("analysis.north.trend.in")
		case allBelow(recent, 0):
			trend = i18n.T("analysis.north.trend.out")
		default:
			trend = i18n.T("analysis.north.trend.oscillate")
		}
	}

	data := map[string]interface{}{
		"Flow":  fmt.Sprintf("%.0f", math.Abs(flow)),
		"Trend": trend,
	}
	switch {
	case flow > 50:
		return i18n.T("analysis.north.rush", data)
	case flow > 20:
		return i18n.T("analysis.north.favor", data)
	case flow < -30:
		return i18n.T("analysis.north.exit", data)
	default:
		return ""
	}
}

func breadthNarrative(latest *market.DailyRecord) string {
	if !market.Valid(latest.Advances) || !market.Valid(latest.Declines) {
		return ""
	}
	upRatio := latest.Advances / (latest.Advances + latest.Declines + 1)
	switch {
	case upRatio > 0.7:
		return i18n.T("analysis.breadth.rally", map[string]interface{}{
			"Pct": fmt.Sprintf("%.0f%%", upRatio*100),
		})
	case upRatio < 0.3:
		return i18n.T("analysis.breadth.selloff", map[string]interface{}{
			"Pct": fmt.Sprintf("%.0f%%", (1-upRatio)*100),
		})
	default:
		return i18n.T("analysis.breadth.split")
	}
}

func limitUpNarrative(latest *market.DailyRecord) string {
	if !market.Valid(latest.LimitUp) {
		return ""
	}
	limitUp := latest.LimitUp
	data := map[string]interface{}{
		"Count": fmt.Sprintf("%.0f", limitUp),
		"Rate":  fmt.Sprintf("%.1f%%", market.Or(latest.BoardRate, 0)*100),
	}
	switch {
	case limitUp > 80:
		return i18n.T("analysis.limitup.wave", data)
	case limitUp > 50:
		return i18n.T("analysis.limitup.active", data)
	case limitUp < 20:
		return i18n.T("analysis.limitup.sparse", data)
	default:
		return ""
	}
}
