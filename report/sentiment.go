package report

import (
	"marketpulse/i18n"
	"marketpulse/market"
)

// Sentiment 市场情绪温度计
type Sentiment struct {
	Score   float64            `json:"score"`
	Level   string             `json:"level"`
	Trend   string             `json:"trend"`
	Factors map[string]float64 `json:"factors"` // 各情绪项贡献值，缺列时为 0
}

// AnalyzeSentiment 综合涨停、北向、广度、量能四项计算情绪温度（0-100）
// 得分 = 50 + 各项贡献之和，数据不足两个交易日时返回中性
func AnalyzeSentiment(records market.Series) Sentiment {
	factors := map[string]float64{
		"limit_up":    0,
		"north_money": 0,
		"breadth":     0,
		"volume":      0,
	}
	if len(records) < 2 {
		return Sentiment{
			Score:   50,
			Level:   i18n.T("sentiment.neutral.level"),
			Trend:   i18n.T("sentiment.neutral.trend"),
			Factors: factors,
		}
	}
	latest := records.Latest()

	if market.Valid(latest.LimitUp) {
		switch {
		case latest.LimitUp > 80:
			factors["limit_up"] = 20
		case latest.LimitUp > 50:
			factors["limit_up"] = 15
		case latest.LimitUp > 30:
			factors["limit_up"] = 10
		case latest.LimitUp < 10:
			factors["limit_up"] = -10
		default:
			factors["limit_up"] = 5
		}
	}

	if market.Valid(latest.NorthboundNet) {
		switch {
		case latest.NorthboundNet > 50:
			factors["north_money"] = 20
		case latest.NorthboundNet > 20:
			factors["north_money"] = 15
		case latest.NorthboundNet < -30:
			factors["north_money"] = -15
		case latest.NorthboundNet < -10:
			factors["north_money"] = -10
		default:
			factors["north_money"] = 5
		}
	}

	if market.Valid(latest.Advances) && market.Valid(latest.Declines) {
		ratio := latest.Advances / (latest.Advances + latest.Declines + 1)
		switch {
		case ratio > 0.7:
			factors["breadth"] = 20
		case ratio > 0.6:
			factors["breadth"] = 15
		case ratio < 0.3:
			factors["breadth"] = -15
		case ratio < 0.4:
			factors["breadth"] = -10
		default:
			factors["breadth"] = 5
		}
	}

	if len(records) >= 5 && market.Valid(latest.TotalTurnover) {
		prev := records[len(records)-2].TotalTurnover
		if market.Valid(prev) && prev != 0 {
			change := (latest.TotalTurnover - prev) / prev
			switch {
			case change > 0.1:
				factors["volume"] = 15
			case change > 0.05:
				factors["volume"] = 10
			case change < -0.1:
				factors["volume"] = -10
			default:
				factors["volume"] = 5
			}
		}
	}

	score := 50.0
	for _, f := range factors {
		score += f
	}
	score = clamp(score)

	var key string
	switch {
	case score >= 80:
		key = "fanatic"
	case score >= 70:
		key = "optimistic"
	case score >= 60:
		key = "warm"
	case score >= 40:
		key = "neutral"
	case score >= 30:
		key = "cautious"
	default:
		key = "panic"
	}

	return Sentiment{
		Score:   score,
		Level:   i18n.T("sentiment." + key + ".level"),
		Trend:   i18n.T("sentiment." + key + ".trend"),
		Factors: factors,
	}
}
