package strategy

import (
	"math"

	"marketpulse/indicators"
)

// meanReversionSignals 均值回归策略
// 成交额相对窗口均值的 Z-score 低于 -阈值视为超卖买入，高于 +阈值视为超买卖出
func meanReversionSignals(rows []indicators.Row, p Params) ([]Signal, error) {
	if p.Window <= 1 {
		return nil, configErr(MeanReversion, "窗口必须大于 1，当前为 %d", p.Window)
	}
	if p.ZThreshold <= 0 {
		return nil, configErr(MeanReversion, "Z-score 阈值必须为正数，当前为 %v", p.ZThreshold)
	}

	turnover := turnoverColumn(rows)
	zscore := indicators.ZScore(turnover, p.Window)

	signals := make([]Signal, len(rows))
	for i := range rows {
		z := zscore[i]
		if math.IsNaN(z) {
			continue
		}
		switch {
		case z < -p.ZThreshold:
			signals[i] = Buy
		case z > p.ZThreshold:
			signals[i] = Sell
		}
	}
	return signals, nil
}
