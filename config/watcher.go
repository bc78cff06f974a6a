package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher 配置文件监控器，文件变化时重新加载并回调
// 只有日志级别与语言等运行期可调项会被热更新，其余变更需要重启
type Watcher struct {
	configPath  string
	watcher     *fsnotify.Watcher
	onChange    func(*Config)
	mu          sync.RWMutex
	isWatching  bool
	lastModTime time.Time
	errorChan   chan error
}

// NewWatcher 创建配置监控器
func NewWatcher(configPath string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %v", err)
	}

	configDir := filepath.Dir(configPath)
	if configDir == "" || configDir == "." {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("获取当前目录失败: %v", err)
		}
		configPath = filepath.Join(cwd, filepath.Base(configPath))
	}

	var lastModTime time.Time
	if info, err := os.Stat(configPath); err == nil {
		lastModTime = info.ModTime()
	}

	return &Watcher{
		configPath:  configPath,
		watcher:     fsw,
		onChange:    onChange,
		lastModTime: lastModTime,
		errorChan:   make(chan error, 10),
	}, nil
}

// Start 开始监控配置文件
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isWatching {
		return fmt.Errorf("配置监控器已经在运行")
	}

	if err := w.watcher.Add(filepath.Dir(w.configPath)); err != nil {
		return fmt.Errorf("添加监控目录失败: %v", err)
	}

	w.isWatching = true
	go w.watchLoop(ctx)
	return nil
}

// Stop 停止监控
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isWatching {
		return nil
	}
	w.isWatching = false
	return w.watcher.Close()
}

// Errors 加载或解析失败的错误通道
func (w *Watcher) Errors() <-chan error {
	return w.errorChan
}

func (w *Watcher) watchLoop(ctx context.Context) {
	// 定期兜底检查，编辑器原子替换文件时 fsnotify 事件可能丢失
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name == w.configPath && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// 延迟处理，避免文件正在写入时读取
				time.Sleep(100 * time.Millisecond)
				w.handleChange()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)

		case <-ticker.C:
			w.checkModTime()
		}
	}
}

func (w *Watcher) handleChange() {
	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(w.configPath)
	if err != nil {
		w.reportError(fmt.Errorf("获取文件信息失败: %v", err))
		return
	}
	if !info.ModTime().After(w.lastModTime) {
		return
	}
	w.lastModTime = info.ModTime()

	newConfig, err := LoadConfig(w.configPath)
	if err != nil {
		w.reportError(fmt.Errorf("重新加载配置失败: %v", err))
		return
	}

	if w.onChange != nil {
		w.onChange(newConfig)
	}
}

func (w *Watcher) checkModTime() {
	w.mu.RLock()
	last := w.lastModTime
	w.mu.RUnlock()

	info, err := os.Stat(w.configPath)
	if err != nil {
		return
	}
	if info.ModTime().After(last) {
		w.handleChange()
	}
}

func (w *Watcher) reportError(err error) {
	select {
	case w.errorChan <- err:
	default:
	}
}
