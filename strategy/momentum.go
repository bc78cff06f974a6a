package strategy

import (
	"math"

	"marketpulse/indicators"
	"marketpulse/market"
)

// momentumSignals 动量策略
// 成交额动量 = 全天总额/窗口均值 - 1，高于阈值买入，低于负阈值卖出
// 窗口均值要求完整窗口，序列前段无信号
func momentumSignals(rows []indicators.Row, p Params) ([]Signal, error) {
	if p.Window <= 0 {
		return nil, configErr(Momentum, "窗口必须为正数，当前为 %d", p.Window)
	}
	if p.Threshold <= 0 {
		return nil, configErr(Momentum, "动量阈值必须为正数，当前为 %v", p.Threshold)
	}

	turnover := turnoverColumn(rows)
	mean := indicators.RollingMean(turnover, p.Window, p.Window)

	signals := make([]Signal, len(rows))
	for i := range rows {
		if math.IsNaN(turnover[i]) || math.IsNaN(mean[i]) || mean[i] == 0 {
			continue
		}
		momentum := turnover[i]/mean[i] - 1
		switch {
		case momentum > p.Threshold:
			signals[i] = Buy
		case momentum < -p.Threshold:
			signals[i] = Sell
		}
	}
	return signals, nil
}

func turnoverColumn(rows []indicators.Row) []float64 {
	out := make([]float64, len(rows))
	for i := range rows {
		out[i] = rows[i].Record.TotalTurnover
	}
	return out
}

func column(rows []indicators.Row, get func(*market.DailyRecord) float64) []float64 {
	out := make([]float64, len(rows))
	for i := range rows {
		out[i] = get(&rows[i].Record)
	}
	return out
}
