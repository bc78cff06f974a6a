package report

import (
	"math"
	"testing"
	"time"

	"marketpulse/i18n"
	"marketpulse/market"
)

func init() {
	// 文案类函数依赖翻译，初始化失败时回退为 key，不影响断言
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

// TestComputeScoresBounds 综合评分与各因子均在 [0,100]
func TestComputeScoresBounds(t *testing.T) {
	records := makeRecords(10, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 9000 + float64(i)*200
		r.NorthboundNet = float64(i*20 - 80)
		r.Advances = float64(2500 + i*100)
		r.Declines = float64(2500 - i*100)
		r.LimitUp = float64(30 + i*5)
		r.LimitDown = 5
		r.BoardRate = 0.7
	})

	scores := ComputeScores(records)
	if scores.Composite < 0 || scores.Composite > 100 {
		t.Errorf("综合评分超出范围: %v", scores.Composite)
	}
	if len(scores.Factors) != 7 {
		t.Errorf("应有 7 个因子，实际 %d", len(scores.Factors))
	}
	for name, score := range scores.Factors {
		if score < 0 || score > 100 {
			t.Errorf("因子 %s 超出范围: %v", name, score)
		}
	}
	t.Logf("✅ 综合评分 %.2f，各因子在范围内", scores.Composite)
}

// TestComputeScoresEmptyData 全缺失数据退化为中性 50 分
func TestComputeScoresEmptyData(t *testing.T) {
	records := makeRecords(10, nil)
	scores := ComputeScores(records)
	if scores.Composite != 50 {
		t.Errorf("全缺失时综合评分应为 50，实际 %v", scores.Composite)
	}
	for name, score := range scores.Factors {
		if score != 50 {
			t.Errorf("因子 %s 应为中性 50，实际 %v", name, score)
		}
	}
	t.Log("✅ 缺失数据软降级为中性分")
}

// TestVolumeScoreSteps 量能因子阶梯映射
func TestVolumeScoreSteps(t *testing.T) {
	cases := []struct {
		latest   float64
		expected float64
	}{
		{14000, 85}, // ratio ≈ 1.52
		{9500, 70},  // ratio ≈ 1.13
		{8000, 50},  // ratio = 1.0
		{5500, 30},  // ratio ≈ 0.72
		{3000, 15},  // ratio ≈ 0.44
	}
	for _, c := range cases {
		records := makeRecords(5, func(i int, r *market.DailyRecord) {
			r.TotalTurnover = 8000
			if i == 4 {
				r.TotalTurnover = c.latest
			}
		})
		got := volumeScore(records)
		if got != c.expected {
			t.Errorf("最新成交 %v 应得 %v 分，实际 %v", c.latest, c.expected, got)
		}
	}

	// 不足 5 日返回中性
	if got := volumeScore(makeRecords(3, nil)); got != 50 {
		t.Errorf("不足 5 日应为 50，实际 %v", got)
	}
	t.Log("✅ 量能因子阶梯正确")
}

// TestVolumeScoreMonotonic 量能因子随比值单调不减
func TestVolumeScoreMonotonic(t *testing.T) {
	prev := -1.0
	for latest := 2000.0; latest <= 16000; latest += 200 {
		records := makeRecords(5, func(i int, r *market.DailyRecord) {
			r.TotalTurnover = 8000
			if i == 4 {
				r.TotalTurnover = latest
			}
		})
		got := volumeScore(records)
		if got < prev {
			t.Fatalf("量能评分在 %v 处下降: %v -> %v", latest, prev, got)
		}
		prev = got
	}
	t.Log("✅ 量能因子单调不减")
}

// TestNorthMoneyScore 北向因子：大额流入 + 3 日连续流入
func TestNorthMoneyScore(t *testing.T) {
	records := makeRecords(3, func(i int, r *market.DailyRecord) {
		r.NorthboundNet = []float64{60, 70, 90}[i]
	})
	if got := northMoneyScore(records); got != 95 {
		t.Errorf("流入 90 + 3日连续流入应得 95，实际 %v", got)
	}

	// 大额流出 + 连续流出触底
	records = makeRecords(3, func(i int, r *market.DailyRecord) {
		r.NorthboundNet = []float64{-60, -70, -90}[i]
	})
	if got := northMoneyScore(records); got != 10 {
		t.Errorf("流出应得 10，实际 %v", got)
	}

	// 缺列中性
	if got := northMoneyScore(makeRecords(3, nil)); got != 50 {
		t.Errorf("缺列应为 50，实际 %v", got)
	}
	t.Log("✅ 北向因子正确")
}

// TestAdvanceDeclineScore 涨跌家数因子
func TestAdvanceDeclineScore(t *testing.T) {
	cases := []struct {
		adv, dec float64
		expected float64
	}{
		{80, 20, 85},
		{65, 35, 70},
		{50, 50, 50},
		{35, 65, 35},
		{20, 80, 25},
	}
	for _, c := range cases {
		records := makeRecords(1, func(i int, r *market.DailyRecord) {
			r.Advances, r.Declines = c.adv, c.dec
		})
		if got := advanceDeclineScore(records); got != c.expected {
			t.Errorf("涨/跌 %v/%v 应得 %v，实际 %v", c.adv, c.dec, c.expected, got)
		}
	}
	t.Log("✅ 涨跌家数因子正确")
}

// TestLimitUpScore 涨停板因子组合修正
func TestLimitUpScore(t *testing.T) {
	// 涨停 120 家 + 封板率 0.85 + 无跌停 → 50+25+15 = 90
	records := makeRecords(3, func(i int, r *market.DailyRecord) {
		r.LimitUp = 120
		r.BoardRate = 0.85
		r.LimitDown = 0
	})
	if got := limitUpScore(records); got != 90 {
		t.Errorf("应得 90，实际 %v", got)
	}

	// 涨停 5 家 + 封板率 0.3 + 跌停 60 家 → 50-30-10-20 = 0（触底）
	records = makeRecords(3, func(i int, r *market.DailyRecord) {
		r.LimitUp = 5
		r.BoardRate = 0.3
		r.LimitDown = 60
	})
	if got := limitUpScore(records); got != 0 {
		t.Errorf("应触底 0，实际 %v", got)
	}
	t.Log("✅ 涨停板因子正确")
}

// TestMarketCapScore 市值分布因子
func TestMarketCapScore(t *testing.T) {
	// 大盘股主导
	records := makeRecords(1, func(i int, r *market.DailyRecord) {
		r.CapOver100, r.Cap50To100, r.Cap20To50, r.CapUnder20 = 50, 20, 20, 10
	})
	if got := marketCapScore(records); got != 65 {
		t.Errorf("大盘主导应得 65，实际 %v", got)
	}

	// 小盘股过度集中
	records = makeRecords(1, func(i int, r *market.DailyRecord) {
		r.CapOver100, r.Cap50To100, r.Cap20To50, r.CapUnder20 = 5, 5, 20, 70
	})
	if got := marketCapScore(records); got != 35 {
		t.Errorf("小盘集中应得 35，实际 %v", got)
	}
	t.Log("✅ 市值分布因子正确")
}

// TestSectorRotationScore 板块轮动因子
func TestSectorRotationScore(t *testing.T) {
	records := makeRecords(1, func(i int, r *market.DailyRecord) {
		r.MainBoardLimitUp, r.GrowthBoardLimitUp = 30, 30 // 均衡
	})
	if got := sectorRotationScore(records); got != 60 {
		t.Errorf("均衡分布应得 60，实际 %v", got)
	}

	records = makeRecords(1, func(i int, r *market.DailyRecord) {
		r.MainBoardLimitUp, r.GrowthBoardLimitUp = 90, 5 // 严重偏斜
	})
	if got := sectorRotationScore(records); got != 45 {
		t.Errorf("严重偏斜应得 45，实际 %v", got)
	}
	t.Log("✅ 板块轮动因子正确")
}

// TestRecommendTiers 建议档位划分
func TestRecommendTiers(t *testing.T) {
	cases := []struct {
		score float64
		tier  string
	}{
		{85, TierAggressive},
		{70, TierOptimistic},
		{50, TierBalanced},
		{35, TierDefensive},
		{20, TierConservative},
	}
	for _, c := range cases {
		rec := Recommend(ScoreBreakdown{Composite: c.score, Factors: map[string]float64{}})
		if rec.Tier != c.tier {
			t.Errorf("评分 %v 应为 %s 档，实际 %s", c.score, c.tier, rec.Tier)
		}
		if rec.Title == "" || rec.Advice == "" {
			t.Errorf("档位 %s 文案不应为空", c.tier)
		}
	}
	t.Log("✅ 建议档位正确")
}

// TestRecommendFactorNotes 弱势与强势因子点名
func TestRecommendFactorNotes(t *testing.T) {
	scores := ScoreBreakdown{
		Composite: 55,
		Factors: map[string]float64{
			FactorVolume:     85, // 强势
			FactorNorthMoney: 20, // 弱势
			FactorLimitUp:    50,
		},
	}
	rec := Recommend(scores)
	if len(rec.StrongFactors) != 1 || len(rec.WeakFactors) != 1 {
		t.Errorf("应各有 1 个强/弱因子，实际 %d/%d", len(rec.StrongFactors), len(rec.WeakFactors))
	}
	if len(rec.Notes) != 2 {
		t.Errorf("应有 2 条提示，实际 %d", len(rec.Notes))
	}
	t.Log("✅ 因子点名正确")
}

// TestAnalyzeSentiment 情绪温度计
func TestAnalyzeSentiment(t *testing.T) {
	// 数据不足时中性，各项贡献为 0
	s := AnalyzeSentiment(makeRecords(1, nil))
	if s.Score != 50 {
		t.Errorf("单日数据应为中性 50，实际 %v", s.Score)
	}
	for name, v := range s.Factors {
		if v != 0 {
			t.Errorf("数据不足时 %s 贡献应为 0，实际 %v", name, v)
		}
	}

	// 四项均落在基准档（各 +5）：得分 = 50 + 20 = 70，乐观
	records := makeRecords(5, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 10000
		if i == 4 {
			r.LimitUp = 20
			r.NorthboundNet = 10
			r.Advances, r.Declines = 2500, 2500
		}
	})
	s = AnalyzeSentiment(records)
	if math.Abs(s.Score-70) > 1e-9 {
		t.Errorf("基准档行情应得 70，实际 %v", s.Score)
	}
	for _, name := range []string{"limit_up", "north_money", "breadth", "volume"} {
		if s.Factors[name] != 5 {
			t.Errorf("基准档 %s 贡献应为 5，实际 %v", name, s.Factors[name])
		}
	}
	if s.Level != i18n.T("sentiment.optimistic.level") {
		t.Errorf("70 分应为乐观档，实际 %q", s.Level)
	}

	// 全面火热：涨停 100 家、北向大额流入、广度强、量能放大
	records = makeRecords(5, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 10000
		if i == 4 {
			r.TotalTurnover = 12000
			r.LimitUp = 100
			r.NorthboundNet = 80
			r.Advances, r.Declines = 4000, 800
		}
	})
	s = AnalyzeSentiment(records)
	// 因子: 20+20+20+15 = 75 → 125 截断为 100
	if s.Score != 100 {
		t.Errorf("火热行情应截断为 100，实际 %v", s.Score)
	}
	if s.Level != i18n.T("sentiment.fanatic.level") {
		t.Errorf("满分应为狂热档，实际 %q", s.Level)
	}

	// 冰点行情（量能列不足 5 日，贡献为 0）
	records = makeRecords(2, func(i int, r *market.DailyRecord) {
		if i == 1 {
			r.LimitUp = 5
			r.NorthboundNet = -80
			r.Advances, r.Declines = 800, 4000
		}
	})
	s = AnalyzeSentiment(records)
	// 因子: -10-15-15 = -40 → 10
	if math.Abs(s.Score-10) > 1e-9 {
		t.Errorf("冰点行情应得 10，实际 %v", s.Score)
	}
	if s.Factors["volume"] != 0 {
		t.Errorf("量能数据不足时贡献应为 0，实际 %v", s.Factors["volume"])
	}
	t.Log("✅ 情绪温度计正确")
}

// TestBuildOverview 市场总览维度
func TestBuildOverview(t *testing.T) {
	records := makeRecords(6, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 10000
		if i == 5 {
			r.TotalTurnover = 15000 // 相对 5 日均值 11000 → 1.36 → hot
			r.NorthboundNet = 60    // positive
			r.Advances, r.Declines, r.Flat = 4000, 900, 100
			r.LimitUp, r.LimitDown = 80, 4
			r.CapOver100, r.Cap50To100, r.Cap20To50, r.CapUnder20 = 10, 20, 30, 40
			r.SectorRanking = `电子\12\医药\8\汽车\5`
		}
	})

	ov := BuildOverview(records)
	if ov.Turnover.Level != "hot" {
		t.Errorf("量能档位应为 hot，实际 %s", ov.Turnover.Level)
	}
	if ov.Northbound.Level != "positive" {
		t.Errorf("北向档位应为 positive，实际 %s", ov.Northbound.Level)
	}
	if ov.CapDist == nil || ov.CapDist["under_20"] != 40 {
		t.Errorf("市值分布错误: %v", ov.CapDist)
	}
	if len(ov.Sectors) != 3 || ov.Sectors[0].Name != "电子" || ov.Sectors[0].Count != 12 {
		t.Errorf("板块榜解析错误: %+v", ov.Sectors)
	}
	t.Log("✅ 市场总览维度正确")
}

// TestNarrativeAnalysis 叙事分析文本
func TestNarrativeAnalysis(t *testing.T) {
	// 无可用数据
	if got := NarrativeAnalysis(makeRecords(1, nil)); got == "" {
		t.Error("无数据时应返回提示文本")
	}

	records := makeRecords(5, func(i int, r *market.DailyRecord) {
		r.TotalTurnover = 10000
		if i == 4 {
			r.TotalTurnover = 14000
			r.NorthboundNet = 70
			r.Advances, r.Declines = 4000, 800
			r.LimitUp = 90
			r.BoardRate = 0.75
		}
	})
	text := NarrativeAnalysis(records)
	if text == "" {
		t.Fatal("叙事文本不应为空")
	}
	t.Logf("✅ 叙事分析: %s", text)
}
