package strategy

import (
	"math"

	"marketpulse/indicators"
	"marketpulse/market"
)

// northboundSignals 北向资金策略
// 窗口内北向净值累计流入超过阈值买入，累计流出超过阈值卖出
func northboundSignals(rows []indicators.Row, p Params) ([]Signal, error) {
	if p.Window <= 0 {
		return nil, configErr(Northbound, "窗口必须为正数，当前为 %d", p.Window)
	}
	if p.Threshold <= 0 {
		return nil, configErr(Northbound, "资金阈值必须为正数，当前为 %v", p.Threshold)
	}

	north := column(rows, func(r *market.DailyRecord) float64 { return r.NorthboundNet })
	trend := indicators.RollingSum(north, p.Window)

	signals := make([]Signal, len(rows))
	for i := range rows {
		if math.IsNaN(trend[i]) {
			continue
		}
		switch {
		case trend[i] > p.Threshold:
			signals[i] = Buy
		case trend[i] < -p.Threshold:
			signals[i] = Sell
		}
	}
	return signals, nil
}
