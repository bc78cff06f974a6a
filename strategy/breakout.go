package strategy

import (
	"math"

	"marketpulse/indicators"
)

// breakoutSignals 突破策略
// 阻力位/支撑位取前一日为止的滚动最大/最小值（后移一位排除当日，避免未来数据），
// 成交额突破阻力位×倍数买入，跌破支撑位/倍数卖出
func breakoutSignals(rows []indicators.Row, p Params) ([]Signal, error) {
	if p.Window <= 0 {
		return nil, configErr(Breakout, "窗口必须为正数，当前为 %d", p.Window)
	}
	if p.Multiplier <= 1 {
		return nil, configErr(Breakout, "突破倍数必须大于 1，当前为 %v", p.Multiplier)
	}

	turnover := turnoverColumn(rows)
	resistance := indicators.Shift(indicators.RollingMax(turnover, p.Window), 1)
	support := indicators.Shift(indicators.RollingMin(turnover, p.Window), 1)

	signals := make([]Signal, len(rows))
	for i := range rows {
		if math.IsNaN(turnover[i]) {
			continue
		}
		if !math.IsNaN(resistance[i]) && turnover[i] > resistance[i]*p.Multiplier {
			signals[i] = Buy
		} else if !math.IsNaN(support[i]) && turnover[i] < support[i]/p.Multiplier {
			signals[i] = Sell
		}
	}
	return signals, nil
}
