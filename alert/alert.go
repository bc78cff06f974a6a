// Package alert 智能预警引擎
// 对最新交易日做异常检测：量能、涨停家数、北向资金、封板率四类规则，
// 每类规则只依赖自己的列，缺列时跳过该类而非整体失败
package alert

import (
	"fmt"
	"math"

	"marketpulse/i18n"
	"marketpulse/market"
)

// 预警级别
const (
	LevelWarning = "warning"
	LevelInfo    = "info"
	LevelSuccess = "success"
)

// Alert 一条预警
type Alert struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// Generate 对序列最新一天运行全部预警规则，少于 5 个交易日直接返回 nil
func Generate(records market.Series) []Alert {
	if len(records) < 5 {
		return nil
	}
	latest := records.Latest()

	var alerts []Alert
	alerts = append(alerts, volumeAlerts(records, latest)...)
	alerts = append(alerts, limitUpAlerts(records, latest)...)
	alerts = append(alerts, northboundAlerts(records, latest)...)
	alerts = append(alerts, boardRateAlerts(latest)...)
	return alerts
}

// volumeAlerts 量能异常：较 20 日均值放大 1.5 倍告警，萎缩至 0.7 倍提示
func volumeAlerts(records market.Series, latest *market.DailyRecord) []Alert {
	current := latest.TotalTurnover
	avg := records.TailMean(func(r *market.DailyRecord) float64 { return r.TotalTurnover }, 20)
	if !market.Valid(current) || !market.Valid(avg) || avg == 0 {
		return nil
	}

	value := i18n.T("alert.volume.value", map[string]interface{}{
		"Current": fmt.Sprintf("%.0f", current),
		"Avg":     fmt.Sprintf("%.0f", avg),
	})
	switch {
	case current > avg*1.5:
		return []Alert{{
			Level: LevelWarning,
			Message: i18n.T("alert.volume.surge", map[string]interface{}{
				"Pct": fmt.Sprintf("%.1f", (current/avg-1)*100),
			}),
			Value: value,
		}}
	case current < avg*0.7:
		return []Alert{{
			Level: LevelInfo,
			Message: i18n.T("alert.volume.shrink", map[string]interface{}{
				"Pct": fmt.Sprintf("%.1f", (1-current/avg)*100),
			}),
			Value: value,
		}}
	}
	return nil
}

// limitUpAlerts 涨停异常：最新涨停家数超过 10 日均值 2 倍
func limitUpAlerts(records market.Series, latest *market.DailyRecord) []Alert {
	current := latest.LimitUp
	avg := records.TailMean(func(r *market.DailyRecord) float64 { return r.LimitUp }, 10)
	if !market.Valid(current) || !market.Valid(avg) {
		return nil
	}
	if current > avg*2 && avg > 0 {
		return []Alert{{
			Level: LevelWarning,
			Message: i18n.T("alert.limitup.active", map[string]interface{}{
				"Count": fmt.Sprintf("%.0f", current),
			}),
			Value: i18n.T("alert.limitup.value", map[string]interface{}{
				"Pct": fmt.Sprintf("%.1f", (current/avg-1)*100),
			}),
		}}
	}
	return nil
}

// northboundAlerts 北向异常：绝对流量超过 10 日均值绝对值的 3 倍
// 超百亿升级为 warning
func northboundAlerts(records market.Series, latest *market.DailyRecord) []Alert {
	current := latest.NorthboundNet
	avg := records.TailMean(func(r *market.DailyRecord) float64 { return r.NorthboundNet }, 10)
	if !market.Valid(current) || !market.Valid(avg) || avg == 0 {
		return nil
	}
	if math.Abs(current) <= math.Abs(avg)*3 {
		return nil
	}

	direction := i18n.T("alert.north.in")
	if current < 0 {
		direction = i18n.T("alert.north.out")
	}
	level := LevelInfo
	if math.Abs(current) > 100 {
		level = LevelWarning
	}
	return []Alert{{
		Level: level,
		Message: i18n.T("alert.north.flow", map[string]interface{}{
			"Direction": direction,
			"Flow":      fmt.Sprintf("%+.0f", current),
		}),
		Value: i18n.T("alert.north.value", map[string]interface{}{
			"Times": fmt.Sprintf("%.1f", math.Abs(current/avg)),
		}),
	}}
}

// boardRateAlerts 封板率异常：低于 50% 告警，高于 80% 报喜
func boardRateAlerts(latest *market.DailyRecord) []Alert {
	if !market.Valid(latest.BoardRate) {
		return nil
	}
	rate := latest.BoardRate * 100
	switch {
	case rate < 50:
		return []Alert{{
			Level: LevelWarning,
			Message: i18n.T("alert.boardrate.low", map[string]interface{}{
				"Rate": fmt.Sprintf("%.1f", rate),
			}),
			Value: i18n.T("alert.boardrate.low_value"),
		}}
	case rate > 80:
		return []Alert{{
			Level: LevelSuccess,
			Message: i18n.T("alert.boardrate.high", map[string]interface{}{
				"Rate": fmt.Sprintf("%.1f", rate),
			}),
			Value: i18n.T("alert.boardrate.high_value"),
		}}
	}
	return nil
}
