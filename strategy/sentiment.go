package strategy

import (
	"math"

	"marketpulse/indicators"
	"marketpulse/market"
)

// sentimentSignals 市场情绪策略
// 情绪冰点（上涨率与涨停占比双低）买入，情绪狂热（双高）卖出
func sentimentSignals(rows []indicators.Row, p Params) ([]Signal, error) {
	if p.ExtremeThreshold <= 0.5 || p.ExtremeThreshold >= 1 {
		return nil, configErr(Sentiment, "情绪极端阈值必须在 (0.5, 1) 区间，当前为 %v", p.ExtremeThreshold)
	}

	signals := make([]Signal, len(rows))
	for i := range rows {
		rec := &rows[i].Record
		if !market.Valid(rec.Advances) || !market.Valid(rec.Declines) || !market.Valid(rec.LimitUp) {
			continue
		}
		total := rec.Advances + rec.Declines + market.Or(rec.Flat, 0)
		if total <= 0 {
			continue
		}
		advanceRatio := rec.Advances / total
		limitUpRatio := rec.LimitUp / total
		if math.IsNaN(advanceRatio) || math.IsNaN(limitUpRatio) {
			continue
		}
		if advanceRatio < 1-p.ExtremeThreshold && limitUpRatio < 0.01 {
			signals[i] = Buy
		} else if advanceRatio > p.ExtremeThreshold && limitUpRatio > 0.03 {
			signals[i] = Sell
		}
	}
	return signals, nil
}
