package storage

import (
	"time"

	"gorm.io/gorm"

	"marketpulse/backtest"
)

// BacktestStore 回测历史存取
type BacktestStore struct {
	db *gorm.DB
}

// NewBacktestStore 创建回测历史存取器
func NewBacktestStore(db *gorm.DB) *BacktestStore {
	return &BacktestStore{db: db}
}

// Save 落一条回测摘要
func (s *BacktestStore) Save(result *backtest.Result, start, end time.Time) error {
	record := &BacktestRecord{
		Strategy:       result.Strategy,
		StartDate:      start,
		EndDate:        end,
		InitialCapital: result.InitialCapital,
		FinalCapital:   result.FinalCapital,
		TotalReturn:    result.TotalReturn,
		AnnualReturn:   result.AnnualReturn,
		MaxDrawdown:    result.MaxDrawdown,
		SharpeRatio:    result.SharpeRatio,
		WinRate:        result.WinRate,
		TotalTrades:    result.TotalTrades,
		CreatedAt:      time.Now().UTC(),
	}
	return s.db.Create(record).Error
}

// List 按时间倒序返回最近的回测记录，strategy 为空时不过滤
func (s *BacktestStore) List(strategy string, limit int) ([]*BacktestRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := s.db.Model(&BacktestRecord{})
	if strategy != "" {
		query = query.Where("strategy = ?", strategy)
	}

	var records []*BacktestRecord
	err := query.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
