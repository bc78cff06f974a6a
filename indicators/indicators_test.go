package indicators

import (
	"math"
	"testing"
	"time"

	"marketpulse/market"
)

// makeRecords 生成连续交易日的测试序列，成交额按给定值填充
func makeRecords(turnovers []float64) market.Series {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	records := make(market.Series, len(turnovers))
	for i, v := range turnovers {
		r := market.NewDailyRecord(base.AddDate(0, 0, i))
		r.TotalTurnover = v
		records[i] = r
	}
	return records
}

// TestRollingMean 测试滚动均值
func TestRollingMean(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}
	result := RollingMean(values, 3, 3)

	if !math.IsNaN(result[0]) || !math.IsNaN(result[1]) {
		t.Error("窗口未满时应为 NaN")
	}
	if result[2] != 20 {
		t.Errorf("3日均值应为 20，实际 %v", result[2])
	}
	if result[4] != 40 {
		t.Errorf("3日均值应为 40，实际 %v", result[4])
	}

	// minPeriods=1 时不完整窗口也有值
	partial := RollingMean(values, 3, 1)
	if partial[0] != 10 || partial[1] != 15 {
		t.Errorf("部分窗口均值错误: %v, %v", partial[0], partial[1])
	}
	t.Log("✅ 滚动均值计算正确")
}

// TestRollingMeanSkipsNaN 缺失值不参与均值计算
func TestRollingMeanSkipsNaN(t *testing.T) {
	values := []float64{10, math.NaN(), 30}
	result := RollingMean(values, 3, 1)
	if result[2] != 20 {
		t.Errorf("均值应跳过 NaN 得 20，实际 %v", result[2])
	}
	t.Log("✅ 缺失值被正确跳过")
}

// TestRSIBounds 测试 RSI 取值范围
func TestRSIBounds(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		// 震荡序列
		values[i] = 10000 + float64(i%5)*300
	}
	result := RSI(values, 14)

	for i, v := range result {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Errorf("第 %d 天 RSI 超出 [0,100]: %v", i, v)
		}
	}
	// 窗口未满足前应为 NaN
	if !math.IsNaN(result[5]) {
		t.Error("RSI 窗口未满时应为 NaN")
	}
	t.Log("✅ RSI 取值范围正确")
}

// TestRSIAllGains 持续上涨时 RSI 趋近 100
func TestRSIAllGains(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 10000 + float64(i)*100
	}
	result := RSI(values, 14)
	last := result[len(result)-1]
	if math.IsNaN(last) || last < 99 {
		t.Errorf("纯上涨序列 RSI 应趋近 100，实际 %v", last)
	}
	t.Logf("✅ 纯上涨 RSI = %.4f", last)
}

// TestZScoreWindow 测试 Z-score 窗口行为
func TestZScoreWindow(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 10000
	}
	values[24] = 20000 // 最后一天暴增

	result := ZScore(values, 20)
	if !math.IsNaN(result[18]) {
		t.Error("窗口未满时 Z-score 应为 NaN")
	}
	if math.IsNaN(result[24]) || result[24] <= 0 {
		t.Errorf("暴增日 Z-score 应为正，实际 %v", result[24])
	}
	t.Logf("✅ 暴增日 Z-score = %.4f", result[24])
}

// TestMACDWarmup MACD 慢线窗口满足前为 NaN
func TestMACDWarmup(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 10000 + float64(i)*50
	}
	macd, signal, hist := MACD(values, 12, 26, 9)

	if !math.IsNaN(macd[24]) {
		t.Error("第 25 天 MACD 应为 NaN（慢线窗口未满）")
	}
	if math.IsNaN(macd[26]) {
		t.Error("第 27 天 MACD 应有值")
	}
	if math.IsNaN(signal[39]) || math.IsNaN(hist[39]) {
		t.Error("末尾信号线与柱状图应有值")
	}
	if math.Abs(hist[39]-(macd[39]-signal[39])) > 1e-9 {
		t.Error("柱状图应等于 MACD 线减信号线")
	}
	t.Log("✅ MACD 窗口行为正确")
}

// TestShift 测试序列后移
// TestComputeEmptySeries 空序列与 nil 序列应返回空结果而不崩溃
func TestComputeEmptySeries(t *testing.T) {
	if rows := Compute(market.Series{}); len(rows) != 0 {
		t.Errorf("空序列应返回 0 行，实际 %d", len(rows))
	}
	if rows := Compute(nil); len(rows) != 0 {
		t.Errorf("nil 序列应返回 0 行，实际 %d", len(rows))
	}
	if d := diff(nil); len(d) != 0 {
		t.Errorf("空序列差分应为空，实际 %d", len(d))
	}
	t.Log("✅ 空序列安全降级")
}

func TestShift(t *testing.T) {
	values := []float64{1, 2, 3}
	shifted := Shift(values, 1)
	if !math.IsNaN(shifted[0]) || shifted[1] != 1 || shifted[2] != 2 {
		t.Errorf("后移结果错误: %v", shifted)
	}
	t.Log("✅ 序列后移正确")
}

// TestComputeBreadth 测试市场广度指标
func TestComputeBreadth(t *testing.T) {
	records := makeRecords([]float64{10000, 11000, 12000})
	records[2].Advances = 3000
	records[2].Declines = 1000
	records[2].Flat = 1000

	rows := Compute(records)
	last := rows[2]
	if math.Abs(last.AdvanceRatio-0.6) > 1e-9 {
		t.Errorf("上涨率应为 0.6，实际 %v", last.AdvanceRatio)
	}
	if math.Abs(last.UpDownRatio-3001.0/1001.0) > 1e-9 {
		t.Errorf("涨跌比错误: %v", last.UpDownRatio)
	}
	// 广度数据缺失的行应为 NaN
	if !math.IsNaN(rows[0].AdvanceRatio) {
		t.Error("缺失行上涨率应为 NaN")
	}
	t.Log("✅ 市场广度指标正确")
}

// TestComputeNoLookahead 第 i 行指标不依赖未来数据
func TestComputeNoLookahead(t *testing.T) {
	turnovers := []float64{10000, 10500, 11000, 10800, 11200, 11500, 10900, 11800, 12000, 11600}
	full := Compute(makeRecords(turnovers))
	head := Compute(makeRecords(turnovers[:6]))

	for i := 0; i < 6; i++ {
		if !sameFloat(full[i].MA5, head[i].MA5) || !sameFloat(full[i].RSI, head[i].RSI) ||
			!sameFloat(full[i].ZScore, head[i].ZScore) || !sameFloat(full[i].MACD, head[i].MACD) {
			t.Errorf("第 %d 行指标受到后续数据影响", i)
		}
	}
	t.Log("✅ 无未来数据泄露")
}

// TestComputeBollinger 测试布林带
func TestComputeBollinger(t *testing.T) {
	turnovers := make([]float64, 25)
	for i := range turnovers {
		turnovers[i] = 10000 + float64(i%4)*500
	}
	rows := Compute(makeRecords(turnovers))
	last := rows[24]

	if math.IsNaN(last.BBUpper) || math.IsNaN(last.BBLower) {
		t.Fatal("布林带上下轨应有值")
	}
	if last.BBUpper <= last.BBMiddle || last.BBLower >= last.BBMiddle {
		t.Error("布林带上轨应高于中轨，下轨应低于中轨")
	}
	if last.BBWidth <= 0 {
		t.Errorf("带宽应为正，实际 %v", last.BBWidth)
	}
	t.Log("✅ Bollinger Bands 计算正确")
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) < 1e-12
}
