package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketpulse/indicators"
)

// indicatorRowDTO 指标行的 JSON 表达，缺失值下发为 null
type indicatorRowDTO struct {
	Date            string   `json:"date"`
	TotalTurnover   *float64 `json:"total_turnover"`
	MA5             *float64 `json:"ma5"`
	MA10            *float64 `json:"ma10"`
	MA20            *float64 `json:"ma20"`
	BBMiddle        *float64 `json:"bb_middle"`
	BBUpper         *float64 `json:"bb_upper"`
	BBLower         *float64 `json:"bb_lower"`
	BBWidth         *float64 `json:"bb_width"`
	RSI             *float64 `json:"rsi"`
	MACD            *float64 `json:"macd"`
	MACDSignal      *float64 `json:"macd_signal"`
	MACDHist        *float64 `json:"macd_hist"`
	ZScore          *float64 `json:"z_score"`
	AdvanceRatio    *float64 `json:"advance_ratio"`
	UpDownRatio     *float64 `json:"up_down_ratio"`
	NorthMA5        *float64 `json:"north_ma5"`
	NorthMA10       *float64 `json:"north_ma10"`
	LimitUpMA5      *float64 `json:"limit_up_ma5"`
	LimitUpMomentum *float64 `json:"limit_up_momentum"`
}

func toIndicatorDTO(row *indicators.Row) indicatorRowDTO {
	return indicatorRowDTO{
		Date:            row.Record.Date.Format("2006-01-02"),
		TotalTurnover:   fptr(row.Record.TotalTurnover),
		MA5:             fptr(row.MA5),
		MA10:            fptr(row.MA10),
		MA20:            fptr(row.MA20),
		BBMiddle:        fptr(row.BBMiddle),
		BBUpper:         fptr(row.BBUpper),
		BBLower:         fptr(row.BBLower),
		BBWidth:         fptr(row.BBWidth),
		RSI:             fptr(row.RSI),
		MACD:            fptr(row.MACD),
		MACDSignal:      fptr(row.MACDSignal),
		MACDHist:        fptr(row.MACDHist),
		ZScore:          fptr(row.ZScore),
		AdvanceRatio:    fptr(row.AdvanceRatio),
		UpDownRatio:     fptr(row.UpDownRatio),
		NorthMA5:        fptr(row.NorthMA5),
		NorthMA10:       fptr(row.NorthMA10),
		LimitUpMA5:      fptr(row.LimitUpMA5),
		LimitUpMomentum: fptr(row.LimitUpMomentum),
	}
}

// getIndicators 指标增强后的序列尾部，limit 控制条数（默认 60）
func (s *Server) getIndicators(c *gin.Context) {
	_, rows, ok := s.snapshot()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "尚未上传数据集",
		})
		return
	}

	limit := 60
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "limit 必须是正整数",
			})
			return
		}
		limit = n
	}
	if limit > len(rows) {
		limit = len(rows)
	}

	out := make([]indicatorRowDTO, 0, limit)
	for i := len(rows) - limit; i < len(rows); i++ {
		out = append(out, toIndicatorDTO(&rows[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"total":      len(rows),
		"indicators": out,
	})
}
