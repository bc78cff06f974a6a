package web

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketpulse/indicators"
	"marketpulse/logger"
	"marketpulse/market"
)

// recordDTO 上传与下发中的单日记录
// 数值字段用指针表达缺失：JSON 的 null / 缺字段进来是 NaN，出去是 null
type recordDTO struct {
	Date               string   `json:"date" binding:"required"` // 2006-01-02
	TotalTurnover      *float64 `json:"total_turnover"`
	YesterdayDiff      *float64 `json:"yesterday_diff"`
	Advances           *float64 `json:"advances"`
	Declines           *float64 `json:"declines"`
	Flat               *float64 `json:"flat"`
	LimitUp            *float64 `json:"limit_up"`
	LimitDown          *float64 `json:"limit_down"`
	BoardRate          *float64 `json:"board_rate"`
	MainBoardLimitUp   *float64 `json:"main_board_limit_up"`
	GrowthBoardLimitUp *float64 `json:"growth_board_limit_up"`
	NorthboundNet      *float64 `json:"northbound_net"`
	MarginBalance      *float64 `json:"margin_balance"`
	MarginNetBuy       *float64 `json:"margin_net_buy"`
	CapOver100         *float64 `json:"cap_over_100"`
	Cap50To100         *float64 `json:"cap_50_to_100"`
	Cap20To50          *float64 `json:"cap_20_to_50"`
	CapUnder20         *float64 `json:"cap_under_20"`
	CapOver100AM       *float64 `json:"cap_over_100_am"`
	Cap50To100AM       *float64 `json:"cap_50_to_100_am"`
	Cap20To50AM        *float64 `json:"cap_20_to_50_am"`
	CapUnder20AM       *float64 `json:"cap_under_20_am"`
	SectorRanking      string   `json:"sector_ranking"`
	ConceptRanking     string   `json:"concept_ranking"`
}

// datasetRequest 数据集上传请求，records 由上游清洗模块产出并按日期升序
type datasetRequest struct {
	Records  []recordDTO `json:"records" binding:"required"`
	CleanLog []string    `json:"clean_log"`
}

func deref(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func fptr(v float64) *float64 {
	if !market.Valid(v) {
		return nil
	}
	return &v
}

// toRecord 转换为领域记录
func (d *recordDTO) toRecord() (market.DailyRecord, error) {
	date, err := time.Parse("2006-01-02", d.Date)
	if err != nil {
		return market.DailyRecord{}, fmt.Errorf("日期格式错误: %s", d.Date)
	}

	rec := market.NewDailyRecord(date)
	rec.TotalTurnover = deref(d.TotalTurnover)
	rec.YesterdayDiff = deref(d.YesterdayDiff)
	rec.Advances = deref(d.Advances)
	rec.Declines = deref(d.Declines)
	rec.Flat = deref(d.Flat)
	rec.LimitUp = deref(d.LimitUp)
	rec.LimitDown = deref(d.LimitDown)
	rec.BoardRate = deref(d.BoardRate)
	rec.MainBoardLimitUp = deref(d.MainBoardLimitUp)
	rec.GrowthBoardLimitUp = deref(d.GrowthBoardLimitUp)
	rec.NorthboundNet = deref(d.NorthboundNet)
	rec.MarginBalance = deref(d.MarginBalance)
	rec.MarginNetBuy = deref(d.MarginNetBuy)
	rec.CapOver100 = deref(d.CapOver100)
	rec.Cap50To100 = deref(d.Cap50To100)
	rec.Cap20To50 = deref(d.Cap20To50)
	rec.CapUnder20 = deref(d.CapUnder20)
	rec.CapOver100AM = deref(d.CapOver100AM)
	rec.Cap50To100AM = deref(d.Cap50To100AM)
	rec.Cap20To50AM = deref(d.Cap20To50AM)
	rec.CapUnder20AM = deref(d.CapUnder20AM)
	rec.SectorRanking = d.SectorRanking
	rec.ConceptRanking = d.ConceptRanking
	return rec, nil
}

// uploadDataset 上传数据集，整体替换内存中的当前数据集
func (s *Server) uploadDataset(c *gin.Context) {
	var req datasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.pm.RecordDatasetUpload("invalid")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": fmt.Sprintf("请求参数错误: %v", err),
		})
		return
	}
	if len(req.Records) == 0 {
		s.pm.RecordDatasetUpload("invalid")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "记录列表不能为空",
		})
		return
	}

	records := make(market.Series, 0, len(req.Records))
	for i, dto := range req.Records {
		rec, err := dto.toRecord()
		if err != nil {
			s.pm.RecordDatasetUpload("invalid")
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("第 %d 条记录无效: %v", i+1, err),
			})
			return
		}
		// 日期必须严格升序，重复或乱序直接拒绝
		if i > 0 && !rec.Date.After(records[i-1].Date) {
			s.pm.RecordDatasetUpload("invalid")
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": fmt.Sprintf("日期必须严格升序: 第 %d 条 %s", i+1, dto.Date),
			})
			return
		}
		records = append(records, rec)
	}

	dataset := &market.Dataset{
		Records:    records,
		CleanLog:   req.CleanLog,
		UploadedAt: time.Now(),
	}
	rows := indicators.Compute(records)
	s.replaceDataset(dataset, rows)

	s.pm.RecordDatasetUpload("success")
	s.pm.SetDatasetRows(len(records))

	start, end := dataset.DateRange()
	logger.Info("📊 数据集已更新: %d 条记录, %s ~ %s",
		len(records), start.Format("2006-01-02"), end.Format("2006-01-02"))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "数据集已更新",
		"rows":    len(records),
		"range":   gin.H{"start": start.Format("2006-01-02"), "end": end.Format("2006-01-02")},
	})
}

// getDatasetStatus 数据集摘要与清洗报告
func (s *Server) getDatasetStatus(c *gin.Context) {
	dataset, _, ok := s.snapshot()
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"loaded":  false,
		})
		return
	}

	start, end := dataset.DateRange()
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"loaded":      true,
		"rows":        len(dataset.Records),
		"range":       gin.H{"start": start.Format("2006-01-02"), "end": end.Format("2006-01-02")},
		"uploaded_at": dataset.UploadedAt,
		"clean_log":   dataset.CleanLog,
	})
}
