package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketpulse/logger"
	"marketpulse/report"
)

// getReport 智能日报：因子评分、综合评分、操作建议、情绪温度计、六维概览与综述
func (s *Server) getReport(c *gin.Context) {
	dataset, _, ok := s.snapshot()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "尚未上传数据集",
		})
		return
	}

	records := dataset.Records
	scores := report.ComputeScores(records)
	recommendation := report.Recommend(scores)
	sentiment := report.AnalyzeSentiment(records)
	overview := report.BuildOverview(records)
	narrative := report.NarrativeAnalysis(records)

	s.pm.RecordReport(scores.Composite)
	logger.Debug("📋 日报已生成: 综合评分=%.1f, 情绪=%.1f", scores.Composite, sentiment.Score)

	latest := records.Latest()
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"date":           latest.Date.Format("2006-01-02"),
		"scores":         scores,
		"recommendation": recommendation,
		"sentiment":      sentiment,
		"overview":       overview,
		"narrative":      narrative,
	})
}
