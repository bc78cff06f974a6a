package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"marketpulse/alert"
	"marketpulse/storage"
)

// getAlerts 对当前数据集最新交易日运行预警规则
func (s *Server) getAlerts(c *gin.Context) {
	dataset, _, ok := s.snapshot()
	if !ok {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "尚未上传数据集",
		})
		return
	}

	alerts := alert.Generate(dataset.Records)
	levels := make([]string, len(alerts))
	for i, a := range alerts {
		levels[i] = a.Level
	}
	s.pm.RecordAlerts(levels)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(alerts),
		"alerts":  alerts,
	})
}

// getLogs 查询落库日志
func (s *Server) getLogs(c *gin.Context) {
	if s.logStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"message": "日志存储未启用",
		})
		return
	}

	params := storage.LogQueryParams{
		Level:   c.Query("level"),
		Keyword: c.Query("keyword"),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Offset = n
		}
	}
	if v := c.Query("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.StartTime = t
		}
	}
	if v := c.Query("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			params.EndTime = t
		}
	}

	logs, total, err := s.logStore.GetLogs(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": fmt.Sprintf("查询日志失败: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"total":   total,
		"logs":    logs,
	})
}
