// Package indicators 技术与情绪指标引擎
// 以成交额为价格代理，从每日记录序列派生技术指标与市场情绪指标
// 第 i 行的派生值只依赖第 0..i 行，不存在未来数据泄露；输入序列不会被修改
package indicators

import (
	"math"

	"marketpulse/market"
)

const epsilon = 1e-8

// Row 指标增强后的单日数据
// RSI、MACD、ZScore 在窗口未满足前为 NaN，消费方须视 NaN 为无信号；
// 移动平均类指标使用不完整窗口的部分统计（最少 1 个有效值）
type Row struct {
	Record market.DailyRecord

	// 成交额均线
	MA5  float64
	MA10 float64
	MA20 float64

	// 布林带（20日，±2σ）
	BBMiddle float64
	BBUpper  float64
	BBLower  float64
	BBWidth  float64

	// 动量指标
	RSI        float64 // RSI(14)，窗口未满为 NaN
	MACD       float64 // EMA12-EMA26，窗口未满为 NaN
	MACDSignal float64
	MACDHist   float64
	ZScore     float64 // 20日 z-score，窗口未满为 NaN

	// 市场广度
	AdvanceRatio float64 // 上涨率 = 上涨/(上涨+下跌+平盘)
	UpDownRatio  float64 // 涨跌比 = (上涨+1)/(下跌+1)

	// 资金与涨停板
	NorthMA5        float64
	NorthMA10       float64
	LimitUpMA5      float64
	LimitUpMomentum float64 // 全天涨停/5日均 - 1
}

// Compute 计算完整指标表
func Compute(records market.Series) []Row {
	turnover := records.Column(func(r *market.DailyRecord) float64 { return r.TotalTurnover })
	north := records.Column(func(r *market.DailyRecord) float64 { return r.NorthboundNet })
	limitUp := records.Column(func(r *market.DailyRecord) float64 { return r.LimitUp })

	ma5 := RollingMean(turnover, 5, 1)
	ma10 := RollingMean(turnover, 10, 1)
	ma20 := RollingMean(turnover, 20, 1)
	bbStd := RollingStd(turnover, 20, 2)

	rsi := RSI(turnover, 14)
	macd, macdSignal, macdHist := MACD(turnover, 12, 26, 9)
	zscore := ZScore(turnover, 20)

	northMA5 := RollingMean(north, 5, 1)
	northMA10 := RollingMean(north, 10, 1)
	limitUpMA5 := RollingMean(limitUp, 5, 1)

	rows := make([]Row, len(records))
	for i := range records {
		r := Row{
			Record:     records[i],
			MA5:        ma5[i],
			MA10:       ma10[i],
			MA20:       ma20[i],
			BBMiddle:   ma20[i],
			RSI:        rsi[i],
			MACD:       macd[i],
			MACDSignal: macdSignal[i],
			MACDHist:   macdHist[i],
			ZScore:     zscore[i],
			NorthMA5:   northMA5[i],
			NorthMA10:  northMA10[i],
		}

		// 布林带：标准差未定义时上下轨与带宽为 NaN
		if market.Valid(ma20[i]) && market.Valid(bbStd[i]) {
			r.BBUpper = ma20[i] + 2*bbStd[i]
			r.BBLower = ma20[i] - 2*bbStd[i]
			r.BBWidth = (r.BBUpper - r.BBLower) / (ma20[i] + epsilon)
		} else {
			r.BBUpper = math.NaN()
			r.BBLower = math.NaN()
			r.BBWidth = math.NaN()
		}

		rec := &records[i]
		r.AdvanceRatio = advanceRatio(rec)
		if market.Valid(rec.Advances) && market.Valid(rec.Declines) {
			r.UpDownRatio = (rec.Advances + 1) / (rec.Declines + 1)
		} else {
			r.UpDownRatio = math.NaN()
		}

		r.LimitUpMA5 = limitUpMA5[i]
		if market.Valid(limitUp[i]) && market.Valid(limitUpMA5[i]) {
			r.LimitUpMomentum = limitUp[i]/(limitUpMA5[i]+epsilon) - 1
		} else {
			r.LimitUpMomentum = math.NaN()
		}

		rows[i] = r
	}
	return rows
}

// RSI 相对强弱指数
// 采用 Wilder 式滚动均值：14 日窗口内的平均涨幅/平均跌幅，
// 分母加 epsilon 防止无跌幅时除零（RS 极大时 RSI 趋近 100）
func RSI(values []float64, period int) []float64 {
	deltas := diff(values)
	gains := make([]float64, len(deltas))
	losses := make([]float64, len(deltas))
	for i, d := range deltas {
		if math.IsNaN(d) {
			gains[i] = math.NaN()
			losses[i] = math.NaN()
			continue
		}
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	avgGain := RollingMean(gains, period, period)
	avgLoss := RollingMean(losses, period, period)

	result := make([]float64, len(values))
	for i := range values {
		if math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]) {
			result[i] = math.NaN()
			continue
		}
		rs := avgGain[i] / (avgLoss[i] + epsilon)
		result[i] = 100 - 100/(1+rs)
	}
	return result
}

// MACD 指数平滑异同移动平均
// 返回 MACD 线、信号线、柱状图；慢线窗口（slow 个有效值）满足前为 NaN
func MACD(values []float64, fast, slow, signal int) (macd, signalLine, histogram []float64) {
	emaFast := EWMean(values, fast)
	emaSlow := EWMean(values, slow)

	macd = make([]float64, len(values))
	seen := 0
	for i := range values {
		if !math.IsNaN(values[i]) {
			seen++
		}
		if seen < slow || math.IsNaN(emaFast[i]) || math.IsNaN(emaSlow[i]) {
			macd[i] = math.NaN()
		} else {
			macd[i] = emaFast[i] - emaSlow[i]
		}
	}

	signalLine = EWMean(macd, signal)
	histogram = make([]float64, len(values))
	for i := range values {
		if math.IsNaN(macd[i]) || math.IsNaN(signalLine[i]) {
			histogram[i] = math.NaN()
		} else {
			histogram[i] = macd[i] - signalLine[i]
		}
	}
	return macd, signalLine, histogram
}

// ZScore 滚动标准分：(值 - 滚动均值)/(滚动标准差 + epsilon)
// 窗口未满足前为 NaN
func ZScore(values []float64, window int) []float64 {
	mean := RollingMean(values, window, window)
	std := RollingStd(values, window, window)
	result := make([]float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) || math.IsNaN(mean[i]) || math.IsNaN(std[i]) {
			result[i] = math.NaN()
		} else {
			result[i] = (values[i] - mean[i]) / (std[i] + epsilon)
		}
	}
	return result
}

// advanceRatio 上涨率，上涨或下跌缺失、或总家数为零时为 NaN
func advanceRatio(r *market.DailyRecord) float64 {
	if !market.Valid(r.Advances) || !market.Valid(r.Declines) {
		return math.NaN()
	}
	total := r.Advances + r.Declines + market.Or(r.Flat, 0)
	if total <= 0 {
		return math.NaN()
	}
	return r.Advances / total
}
