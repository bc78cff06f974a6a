package storage

import "time"

// LogEntry 日志表
type LogEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Level     string    `gorm:"index;size:16;not null" json:"level"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"-"`
}

// TableName 指定表名
func (LogEntry) TableName() string {
	return "logs"
}

// BacktestRecord 回测历史表，每次回测落一条摘要
type BacktestRecord struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Strategy       string    `gorm:"index;size:32;not null" json:"strategy"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	InitialCapital float64   `json:"initial_capital"`
	FinalCapital   float64   `json:"final_capital"`
	TotalReturn    float64   `json:"total_return"`
	AnnualReturn   float64   `json:"annual_return"`
	MaxDrawdown    float64   `json:"max_drawdown"`
	SharpeRatio    float64   `json:"sharpe_ratio"`
	WinRate        float64   `json:"win_rate"`
	TotalTrades    int       `json:"total_trades"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (BacktestRecord) TableName() string {
	return "backtest_records"
}
