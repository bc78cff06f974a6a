package storage

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

// LogStorage 异步日志落库
// 日志先进内存通道，后台协程按批写入数据库；通道满时丢弃，绝不阻塞调用方
type LogStorage struct {
	db          *gorm.DB
	logCh       chan *LogEntry
	batchSize   int
	flushEvery  time.Duration
	closed      bool
	closeMu     sync.RWMutex
	done        chan struct{}
	subscribers []chan *LogEntry
	subMu       sync.RWMutex
}

// LogQueryParams 日志查询参数
type LogQueryParams struct {
	StartTime time.Time
	EndTime   time.Time
	Level     string
	Keyword   string
	Limit     int
	Offset    int
}

// NewLogStorage 创建日志落库器并启动后台写入协程
func NewLogStorage(db *gorm.DB, bufferSize, batchSize, flushIntervalSec int) *LogStorage {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if flushIntervalSec <= 0 {
		flushIntervalSec = 5
	}

	ls := &LogStorage{
		db:         db,
		logCh:      make(chan *LogEntry, bufferSize),
		batchSize:  batchSize,
		flushEvery: time.Duration(flushIntervalSec) * time.Second,
		done:       make(chan struct{}),
	}
	go ls.processLogs()
	return ls
}

// WriteLog 写入一条日志（异步，不阻塞）
func (ls *LogStorage) WriteLog(level, message string) {
	ls.closeMu.RLock()
	defer ls.closeMu.RUnlock()
	if ls.closed {
		return
	}

	entry := &LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   message,
	}
	select {
	case ls.logCh <- entry:
	default:
		// 通道满，丢弃
	}
}

// processLogs 后台批量写入循环
func (ls *LogStorage) processLogs() {
	defer close(ls.done)

	buffer := make([]*LogEntry, 0, ls.batchSize)
	ticker := time.NewTicker(ls.flushEvery)
	defer ticker.Stop()

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		// 写入失败静默处理，落库不能反过来影响主流程
		if err := ls.db.Create(buffer).Error; err == nil {
			ls.notifySubscribers(buffer)
		}
		buffer = make([]*LogEntry, 0, ls.batchSize)
	}

	for {
		select {
		case entry, ok := <-ls.logCh:
			if !ok {
				flush()
				return
			}
			buffer = append(buffer, entry)
			if len(buffer) >= ls.batchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// Subscribe 订阅新写入的日志（用于 WebSocket 实时推送）
func (ls *LogStorage) Subscribe() chan *LogEntry {
	ls.subMu.Lock()
	defer ls.subMu.Unlock()

	ch := make(chan *LogEntry, 100)
	ls.subscribers = append(ls.subscribers, ch)
	return ch
}

// Unsubscribe 取消订阅并关闭通道
func (ls *LogStorage) Unsubscribe(ch chan *LogEntry) {
	ls.subMu.Lock()
	defer ls.subMu.Unlock()

	for i, sub := range ls.subscribers {
		if sub == ch {
			ls.subscribers = append(ls.subscribers[:i], ls.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// 推送期间持有读锁，保证 Unsubscribe/Close 不会关闭正在写入的通道
func (ls *LogStorage) notifySubscribers(entries []*LogEntry) {
	go func() {
		ls.subMu.RLock()
		defer ls.subMu.RUnlock()
		for _, entry := range entries {
			for _, sub := range ls.subscribers {
				select {
				case sub <- entry:
				default:
					// 订阅者处理不过来，跳过
				}
			}
		}
	}()
}

// GetLogs 按条件分页查询日志，返回记录与总数
func (ls *LogStorage) GetLogs(params LogQueryParams) ([]*LogEntry, int64, error) {
	query := ls.db.Model(&LogEntry{})

	if !params.StartTime.IsZero() {
		query = query.Where("timestamp >= ?", params.StartTime)
	}
	if !params.EndTime.IsZero() {
		query = query.Where("timestamp <= ?", params.EndTime)
	}
	if params.Level != "" {
		query = query.Where("level = ?", params.Level)
	}
	if params.Keyword != "" {
		query = query.Where("message LIKE ?", "%"+params.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询日志总数失败: %w", err)
	}

	if params.Limit <= 0 {
		params.Limit = 100
	}
	if params.Limit > 1000 {
		params.Limit = 1000
	}

	var logs []*LogEntry
	err := query.Order("timestamp DESC").Limit(params.Limit).Offset(params.Offset).Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询日志失败: %w", err)
	}
	return logs, total, nil
}

// CleanOldLogs 清理超过指定天数的日志，days <= 0 时不清理
func (ls *LogStorage) CleanOldLogs(days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	result := ls.db.Where("timestamp < ?", cutoff).Delete(&LogEntry{})
	return result.RowsAffected, result.Error
}

// Close 关闭落库器，等待缓冲区刷完
func (ls *LogStorage) Close() error {
	ls.closeMu.Lock()
	if ls.closed {
		ls.closeMu.Unlock()
		return nil
	}
	ls.closed = true
	close(ls.logCh)
	ls.closeMu.Unlock()

	// 等待后台协程刷完缓冲区
	select {
	case <-ls.done:
	case <-time.After(3 * time.Second):
	}

	ls.subMu.Lock()
	for _, sub := range ls.subscribers {
		close(sub)
	}
	ls.subscribers = nil
	ls.subMu.Unlock()

	return nil
}
