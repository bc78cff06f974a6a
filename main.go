package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketpulse/config"
	"marketpulse/i18n"
	"marketpulse/logger"
	"marketpulse/metrics"
	"marketpulse/storage"
	"marketpulse/web"
)

// Version 版本号
var Version = "1.2.0"

func main() {
	// 检查版本参数
	if len(os.Args) > 1 && (os.Args[1] == "-version" || os.Args[1] == "--version") {
		fmt.Printf("MarketPulse 行情看板\n")
		fmt.Printf("Version: %s\n", Version)
		os.Exit(0)
	}

	// 解析调试参数（-debug / --debug）
	debugMode := false
	filteredArgs := []string{os.Args[0]}
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-debug", "--debug":
			debugMode = true
		default:
			filteredArgs = append(filteredArgs, arg)
		}
	}
	os.Args = filteredArgs

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// 配置文件不存在时使用默认配置，不阻止启动
	var cfg *config.Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("[INFO] 配置文件 %s 不存在，使用默认配置", configPath)
		cfg = config.DefaultConfig()
	} else {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("[FATAL] 加载配置失败: %v", err)
		}
	}

	if debugMode {
		cfg.System.LogLevel = "debug"
		cfg.Web.Mode = "debug"
	}

	// 时区与日志级别尽早设置，后面的日志按配置输出
	if loc, err := time.LoadLocation(cfg.System.Timezone); err != nil {
		log.Printf("[WARN] 加载时区 %s 失败: %v，使用 Asia/Shanghai", cfg.System.Timezone, err)
	} else {
		logger.SetLocation(loc)
	}
	logLevel := logger.ParseLogLevel(cfg.System.LogLevel)
	logger.SetLevel(logLevel)

	logger.Info("🚀 MarketPulse 行情看板系统启动...")
	logger.Info("📦 版本号: %s", Version)
	logger.Info("日志级别设置为: %s", logLevel.String())

	// 初始化 i18n 系统
	if err := i18n.Init(cfg.System.Language); err != nil {
		logger.Warn("⚠️ 初始化 i18n 失败: %v，将使用默认语言", err)
	} else {
		logger.Info("✅ i18n 系统已初始化，语言: %s", cfg.System.Language)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 日志落库与回测历史存储
	var (
		logStore *storage.LogStorage
		btStore  *storage.BacktestStore
	)
	db, err := storage.Open(storage.Config{
		Type:            cfg.Database.Type,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		logger.Warn("⚠️ 初始化数据库失败: %v (将继续运行，但不保存日志与回测历史)", err)
	} else {
		logStore = storage.NewLogStorage(db, cfg.Database.BufferSize, cfg.Database.BatchSize, cfg.Database.FlushInterval)
		btStore = storage.NewBacktestStore(db)
		logger.InitLogStorage(func(level, message string) {
			logStore.WriteLog(level, message)
		})
		logger.Info("✅ 数据库已初始化 (类型: %s)", cfg.Database.Type)

		// 启动定期日志清理任务，每天凌晨2点执行
		if cfg.System.LogRetentionDays > 0 {
			go runLogCleanup(ctx, logStore, cfg.System.LogRetentionDays)
		}
	}

	// gin 访问日志写独立文件
	if err := logger.InitWebLogger(); err != nil {
		logger.Warn("⚠️ 初始化 Web 日志失败: %v", err)
	}

	// Prometheus 系统指标采集器
	collector := metrics.NewSystemMetricsCollector(30 * time.Second)
	collector.Start()
	logger.Info("✅ 系统指标采集器已启动")

	// Web 服务器
	web.Version = Version
	server := web.NewServer(cfg, web.Options{
		LogStore:      logStore,
		BacktestStore: btStore,
		Collector:     collector,
	})
	if err := server.Start(ctx); err != nil {
		logger.Fatal("❌ 启动Web服务器失败: %v", err)
	}

	// 配置热更新：运行期只调整日志级别与语言，其余变更需要重启
	watcher, err := config.NewWatcher(configPath, func(newCfg *config.Config) {
		newLevel := logger.ParseLogLevel(newCfg.System.LogLevel)
		if newLevel != logger.GetLevel() {
			logger.SetLevel(newLevel)
			logger.Info("🔄 日志级别已更新为: %s", newLevel.String())
		}
		if newCfg.System.Language != i18n.GetSystemLanguage() {
			i18n.SetSystemLanguage(newCfg.System.Language)
			logger.Info("🔄 系统语言已更新为: %s", newCfg.System.Language)
		}
	})
	if err != nil {
		logger.Warn("⚠️ 创建配置监控器失败: %v", err)
	} else if err := watcher.Start(ctx); err != nil {
		logger.Warn("⚠️ 启动配置监控失败: %v", err)
	} else {
		defer watcher.Stop()
		go func() {
			for err := range watcher.Errors() {
				logger.Warn("⚠️ 配置热更新失败: %v", err)
			}
		}()
	}

	logger.Info("✅ 系统初始化完成，程序正在运行中...")
	logger.Info("💡 按 Ctrl+C 退出程序")

	// 等待退出信号（SIGINT 或 SIGTERM）
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("🛑 收到退出信号，开始优雅关闭...")

	cancel()
	server.Stop()
	collector.Stop()

	// 先关日志文件，再关落库通道，保证批量缓冲落盘
	logger.Close()
	if logStore != nil {
		logStore.Close()
	}

	fmt.Println("✅ MarketPulse 已安全退出")
}

// runLogCleanup 每天凌晨2点清理过期日志
func runLogCleanup(ctx context.Context, logStore *storage.LogStorage, retentionDays int) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 2, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.Add(24 * time.Hour)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(next.Sub(now)):
		}

		logger.Info("🧹 开始定期清理日志...")
		rows, err := logStore.CleanOldLogs(retentionDays)
		if err != nil {
			logger.Warn("⚠️ 清理日志失败: %v", err)
		} else {
			logger.Info("✅ 已清理 %d 条过期日志（%d 天前）", rows, retentionDays)
		}
	}
}
