// Package logger 全局分级日志
// 控制台始终输出；DEBUG 级别时额外写入按日期轮转的文件；
// 可选注册存储写入器，把日志异步落库供 Web 端查询与推送
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel 日志级别
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

const logDir = "logs"

var (
	globalLevel LogLevel = INFO
	mu          sync.RWMutex

	// 时区：日志时间戳与文件轮转都按该时区
	globalLocation *time.Location = time.Local
	locationMu     sync.RWMutex

	// 应用日志与 Web 访问日志各自一个轮转文件
	appFile = &rotatingFile{prefix: "app-marketpulse"}
	webFile = &rotatingFile{prefix: "web-gin"}

	// 落库写入器（函数指针，避免与 storage 包循环依赖）
	logStorageWriter func(level, message string)
	logStorageMu     sync.RWMutex
)

// String 返回日志级别的字符串表示
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel 解析日志级别字符串，无法识别时返回 INFO
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// SetLevel 设置全局日志级别，DEBUG 级别同时启用文件日志
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	globalLevel = level

	if level == DEBUG {
		if err := appFile.open(location()); err != nil {
			log.Printf("[WARN] 启用文件日志失败: %v，将只输出到控制台", err)
		}
	} else {
		appFile.close()
	}
}

// GetLevel 获取全局日志级别
func GetLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return globalLevel
}

// SetLocation 设置全局日志时区
func SetLocation(loc *time.Location) {
	locationMu.Lock()
	defer locationMu.Unlock()
	globalLocation = loc
}

func location() *time.Location {
	locationMu.RLock()
	defer locationMu.RUnlock()
	return globalLocation
}

// InitLogStorage 注册日志落库写入器（由 main 包调用）
func InitLogStorage(writer func(level, message string)) {
	logStorageMu.Lock()
	defer logStorageMu.Unlock()
	logStorageWriter = writer
}

// InitWebLogger 初始化 Web 访问日志文件
func InitWebLogger() error {
	return webFile.open(location())
}

// WriteWebLog 写入 Web 访问日志（供 Gin 中间件使用）
func WriteWebLog(message string) {
	webFile.write(location(), message)
}

// Close 关闭全部文件日志并注销落库写入器（程序退出时调用）
func Close() {
	appFile.close()
	webFile.close()
	logStorageMu.Lock()
	defer logStorageMu.Unlock()
	logStorageWriter = nil
}

// rotatingFile 按日期轮转的日志文件，文件名形如 <prefix>-2026-08-31.log
type rotatingFile struct {
	mu      sync.Mutex
	prefix  string
	file    *os.File
	writer  *log.Logger
	curDate string
}

// open 打开当天的日志文件；已打开且日期未变时是空操作
// 调用方不持锁
func (r *rotatingFile) open(loc *time.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rotateLocked(loc)
}

func (r *rotatingFile) rotateLocked(loc *time.Location) error {
	today := time.Now().In(loc).Format("2006-01-02")
	if r.writer != nil && r.curDate == today {
		return nil
	}

	if r.file != nil {
		r.file.Close()
		r.file = nil
		r.writer = nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("创建日志文件夹失败: %w", err)
	}
	name := filepath.Join(logDir, fmt.Sprintf("%s-%s.log", r.prefix, today))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("打开日志文件失败: %w", err)
	}

	r.file = file
	r.curDate = today
	// 时间戳自己写，标准前缀留空
	r.writer = log.New(file, "", 0)
	return nil
}

// write 追加一行，必要时先轮转；文件不可用时静默丢弃
func (r *rotatingFile) write(loc *time.Location, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rotateLocked(loc); err != nil {
		return
	}
	if r.writer != nil {
		stamp := time.Now().In(loc).Format("2006/01/02 15:04:05")
		r.writer.Printf("%s %s", stamp, strings.TrimSuffix(message, "\n"))
	}
}

func (r *rotatingFile) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file != nil {
		r.file.Close()
		r.file = nil
		r.writer = nil
		r.curDate = ""
	}
}

func shouldLog(level LogLevel) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= globalLevel
}

// logf 统一出口：控制台、DEBUG 文件、异步落库
func logf(level LogLevel, format string, args ...interface{}) {
	if !shouldLog(level) {
		return
	}
	prefix := fmt.Sprintf("[%s] ", level.String())
	message := fmt.Sprintf(prefix+format, args...)

	log.Printf(prefix+format, args...)

	if GetLevel() == DEBUG {
		appFile.write(location(), message)
	}

	logStorageMu.RLock()
	writer := logStorageWriter
	logStorageMu.RUnlock()
	if writer != nil {
		// 异步落库，落库失败不能反过来影响主流程
		go func() {
			defer func() {
				_ = recover()
			}()
			writer(level.String(), message)
		}()
	}
}

// Debug 输出调试日志
func Debug(format string, args ...interface{}) {
	logf(DEBUG, format, args...)
}

// Info 输出一般信息日志
func Info(format string, args ...interface{}) {
	logf(INFO, format, args...)
}

// Warn 输出警告日志
func Warn(format string, args ...interface{}) {
	logf(WARN, format, args...)
}

// Error 输出错误日志
func Error(format string, args ...interface{}) {
	logf(ERROR, format, args...)
}

// Fatal 输出致命错误日志并退出程序
func Fatal(format string, args ...interface{}) {
	logf(FATAL, format, args...)
	os.Exit(1)
}
