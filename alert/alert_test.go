package alert

import (
	"testing"
	"time"

	"marketpulse/i18n"
	"marketpulse/market"
)

func init() {
	_ = i18n.Init("zh-CN")
}

func makeRecords(n int, fill func(i int, r *market.DailyRecord)) market.Series {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := make(market.Series, n)
	for i := range records {
		rec := market.NewDailyRecord(base.AddDate(0, 0, i))
		if fill != nil {
			fill(i, &rec)
		}
		records[i] = rec
	}
	return records
}

func countLevel(alerts []Alert, level string) int {
	n := 0
	for _, a := range alerts {
		if a.Level == level {
			n++
		}
	}
	return n
}

// TestGenerateShortSeries 不足 5 个交易日不产生预警
func TestGenerateShortSeries(t *testing.T) {
	records := makeRecords(4, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 50000
	})
	if alerts := Generate(records); alerts != nil {
		t.Errorf("短序列应返回 nil，实际 %d 条", len(alerts))
	}
	t.Log("✅ 短序列无预警")
}

// TestVolumeSurgeAlert 量能放大预警
func TestVolumeSurgeAlert(t *testing.T) {
	records := makeRecords(10, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 8000
		if i == 9 {
			r.TotalTurnover = 20000 // 远超均值 1.5 倍
		}
	})
	alerts := Generate(records)
	if countLevel(alerts, LevelWarning) == 0 {
		t.Fatalf("应产生 warning 预警，实际 %+v", alerts)
	}
	t.Logf("✅ 放量预警: %s", alerts[0].Message)
}

// TestVolumeShrinkAlert 量能萎缩提示
func TestVolumeShrinkAlert(t *testing.T) {
	records := makeRecords(10, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 10000
		if i == 9 {
			r.TotalTurnover = 3000
		}
	})
	alerts := Generate(records)
	if countLevel(alerts, LevelInfo) == 0 {
		t.Fatalf("应产生 info 提示，实际 %+v", alerts)
	}
	t.Log("✅ 缩量提示正确")
}

// TestLimitUpAlert 涨停潮预警
func TestLimitUpAlert(t *testing.T) {
	records := makeRecords(12, func(i int, r *market.DailyRecord) {
		r.LimitUp = 30
		if i == 11 {
			r.LimitUp = 150 // 超 10 日均值 2 倍
		}
	})
	alerts := Generate(records)
	if len(alerts) != 1 || alerts[0].Level != LevelWarning {
		t.Fatalf("应产生 1 条 warning，实际 %+v", alerts)
	}
	t.Logf("✅ 涨停潮预警: %s", alerts[0].Message)
}

// TestNorthboundAlert 北向异动预警
func TestNorthboundAlert(t *testing.T) {
	// 超百亿异动升级为 warning
	records := makeRecords(12, func(i int, r *market.DailyRecord) {
		r.NorthboundNet = 10
		if i == 11 {
			r.NorthboundNet = 120
		}
	})
	alerts := Generate(records)
	if len(alerts) != 1 || alerts[0].Level != LevelWarning {
		t.Fatalf("超百亿流入应为 warning，实际 %+v", alerts)
	}

	// 普通异动为 info
	records = makeRecords(12, func(i int, r *market.DailyRecord) {
		r.NorthboundNet = 10
		if i == 11 {
			r.NorthboundNet = -60
		}
	})
	alerts = Generate(records)
	if len(alerts) != 1 || alerts[0].Level != LevelInfo {
		t.Fatalf("普通流出异动应为 info，实际 %+v", alerts)
	}
	t.Log("✅ 北向异动预警正确")
}

// TestBoardRateAlerts 封板率预警双向
func TestBoardRateAlerts(t *testing.T) {
	records := makeRecords(6, func(i int, r *market.DailyRecord) {
		if i == 5 {
			r.BoardRate = 0.35
		}
	})
	alerts := Generate(records)
	if len(alerts) != 1 || alerts[0].Level != LevelWarning {
		t.Fatalf("低封板率应为 warning，实际 %+v", alerts)
	}

	records = makeRecords(6, func(i int, r *market.DailyRecord) {
		if i == 5 {
			r.BoardRate = 0.9
		}
	})
	alerts = Generate(records)
	if len(alerts) != 1 || alerts[0].Level != LevelSuccess {
		t.Fatalf("高封板率应为 success，实际 %+v", alerts)
	}
	t.Log("✅ 封板率预警正确")
}

// TestGenerateMissingColumns 缺列时跳过对应规则
func TestGenerateMissingColumns(t *testing.T) {
	// 只有量能列，其余规则应静默跳过
	records := makeRecords(10, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 10000
	})
	alerts := Generate(records)
	if len(alerts) != 0 {
		t.Errorf("平稳量能且其余缺列时不应有预警，实际 %+v", alerts)
	}
	t.Log("✅ 缺列规则被跳过")
}
