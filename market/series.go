package market

import (
	"math"
	"time"
)

// Series 按日期升序排列的记录序列
// 日期单调递增且无重复是上游清洗模块保证的前置条件，本包不做运行时检查
type Series []DailyRecord

// Latest 最后一个交易日的记录，空序列返回 nil
func (s Series) Latest() *DailyRecord {
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}

// Column 提取一列数值
func (s Series) Column(get func(*DailyRecord) float64) []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = get(&s[i])
	}
	return out
}

// TailMean 最近 n 条记录的均值，忽略缺失值；无有效值返回 NaN
func (s Series) TailMean(get func(*DailyRecord) float64, n int) float64 {
	start := len(s) - n
	if start < 0 {
		start = 0
	}
	sum, count := 0.0, 0
	for i := start; i < len(s); i++ {
		v := get(&s[i])
		if Valid(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}

// Tail 最近 n 条记录的数值切片（含缺失值）
func (s Series) Tail(get func(*DailyRecord) float64, n int) []float64 {
	start := len(s) - n
	if start < 0 {
		start = 0
	}
	out := make([]float64, 0, len(s)-start)
	for i := start; i < len(s); i++ {
		out = append(out, get(&s[i]))
	}
	return out
}

// Dataset 一次上传产生的完整数据集
// 清洗日志由上游模块随数据一并传入，作为值保存，不使用进程级共享状态
type Dataset struct {
	Records    Series    `json:"records"`
	CleanLog   []string  `json:"clean_log"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DateRange 数据集覆盖的日期区间
func (d *Dataset) DateRange() (time.Time, time.Time) {
	if len(d.Records) == 0 {
		return time.Time{}, time.Time{}
	}
	return d.Records[0].Date, d.Records[len(d.Records)-1].Date
}
