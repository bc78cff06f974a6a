package report

import (
	"strings"

	"marketpulse/i18n"
)

// Recommendation 基于综合评分的操作建议
type Recommendation struct {
	Score         float64  `json:"score"`
	Tier          string   `json:"tier"`
	Title         string   `json:"title"`
	Advice        string   `json:"advice"`
	WeakFactors   []string `json:"weak_factors,omitempty"`
	StrongFactors []string `json:"strong_factors,omitempty"`
	Notes         []string `json:"notes,omitempty"`
}

// 建议档位
const (
	TierAggressive   = "aggressive"
	TierOptimistic   = "optimistic"
	TierBalanced     = "balanced"
	TierDefensive    = "defensive"
	TierConservative = "conservative"
)

// Recommend 按综合评分划档生成建议，并点名弱势（<40）与强势（>70）因子
func Recommend(scores ScoreBreakdown) Recommendation {
	var tier string
	switch {
	case scores.Composite >= 80:
		tier = TierAggressive
	case scores.Composite >= 65:
		tier = TierOptimistic
	case scores.Composite >= 45:
		tier = TierBalanced
	case scores.Composite >= 30:
		tier = TierDefensive
	default:
		tier = TierConservative
	}

	rec := Recommendation{
		Score:  scores.Composite,
		Tier:   tier,
		Title:  i18n.T("recommend." + tier + ".title"),
		Advice: i18n.T("recommend." + tier + ".advice"),
	}

	// 按固定顺序遍历，保证输出稳定
	for _, name := range FactorNames() {
		score, ok := scores.Factors[name]
		if !ok {
			continue
		}
		if score < 40 {
			rec.WeakFactors = append(rec.WeakFactors, i18n.T("factor."+name))
		} else if score > 70 {
			rec.StrongFactors = append(rec.StrongFactors, i18n.T("factor."+name))
		}
	}

	if len(rec.WeakFactors) > 0 {
		rec.Notes = append(rec.Notes, i18n.T("recommend.weak_note", map[string]interface{}{
			"Factors": strings.Join(rec.WeakFactors, "、"),
		}))
	}
	if len(rec.StrongFactors) > 0 {
		rec.Notes = append(rec.Notes, i18n.T("recommend.strong_note", map[string]interface{}{
			"Factors": strings.Join(rec.StrongFactors, "、"),
		}))
	}

	return rec
}
