// Package market A股市场每日数据模型
// 上游清洗模块产出按日期升序、无重复日期的记录序列，本包只定义模型与只读访问工具
package market

import (
	"math"
	"time"
)

// DailyRecord 单个交易日的市场统计
// 除日期外所有数值字段均可缺失，缺失值以 NaN 表示
type DailyRecord struct {
	Date time.Time // 交易日

	// 量价数据
	TotalTurnover float64 // 全天总额（亿元）
	YesterdayDiff float64 // 今昨差额（亿元）

	// 涨跌家数
	Advances float64 // 上涨家数
	Declines float64 // 下跌家数
	Flat     float64 // 平盘家数

	// 涨停板数据
	LimitUp            float64 // 全天涨停家数
	LimitDown          float64 // 全天跌停家数
	BoardRate          float64 // 全天封板率 [0,1]
	MainBoardLimitUp   float64 // 主板涨停数
	GrowthBoardLimitUp float64 // 创业板涨停数

	// 资金数据
	NorthboundNet float64 // 北向净值（亿元）
	MarginBalance float64 // 两融余额（亿元）
	MarginNetBuy  float64 // 两融净买入（亿元）

	// 涨停板市值分布（全天）
	CapOver100  float64 // 涨停板 >100亿
	Cap50To100  float64 // 涨停板 50-100亿
	Cap20To50   float64 // 涨停板 20-50亿
	CapUnder20  float64 // 涨停板 <20亿

	// 涨停板市值分布（早盘）
	CapOver100AM float64
	Cap50To100AM float64
	Cap20To50AM  float64
	CapUnder20AM float64

	// 板块文本字段（由独立的热点解析模块消费，本核心不解析）
	SectorRanking  string // 行业涨停榜原始文本
	ConceptRanking string // 概念涨停榜原始文本
}

// NewDailyRecord 创建一条记录，所有数值字段初始化为缺失
func NewDailyRecord(date time.Time) DailyRecord {
	nan := math.NaN()
	return DailyRecord{
		Date:               date,
		TotalTurnover:      nan,
		YesterdayDiff:      nan,
		Advances:           nan,
		Declines:           nan,
		Flat:               nan,
		LimitUp:            nan,
		LimitDown:          nan,
		BoardRate:          nan,
		MainBoardLimitUp:   nan,
		GrowthBoardLimitUp: nan,
		NorthboundNet:      nan,
		MarginBalance:      nan,
		MarginNetBuy:       nan,
		CapOver100:         nan,
		Cap50To100:         nan,
		Cap20To50:          nan,
		CapUnder20:         nan,
		CapOver100AM:       nan,
		Cap50To100AM:       nan,
		Cap20To50AM:        nan,
		CapUnder20AM:       nan,
	}
}

// Valid 判断数值是否存在
func Valid(v float64) bool {
	return !math.IsNaN(v)
}

// Or 返回 v，缺失时返回 fallback
func Or(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}
