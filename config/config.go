// Package config YAML 配置加载与校验
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"marketpulse/strategy"
)

// Config 行情看板系统配置
type Config struct {
	// Web 服务配置
	Web struct {
		Host string `yaml:"host"` // 监听地址（默认 0.0.0.0）
		Port int    `yaml:"port"` // 监听端口（默认 8080）
		Mode string `yaml:"mode"` // gin 模式: debug, release，默认 release
	} `yaml:"web"`

	// 回测默认参数，API 请求未携带时使用
	Backtest struct {
		InitialCapital  float64 `yaml:"initial_capital"`  // 初始资金，默认 100000
		TransactionCost float64 `yaml:"transaction_cost"` // 单边交易成本，默认 0.001
		StopLoss        float64 `yaml:"stop_loss"`        // 止损线，默认 0.1
		TakeProfit      float64 `yaml:"take_profit"`      // 止盈上限，默认 0.2
		ReportDir       string  `yaml:"report_dir"`       // 回测报告输出目录，默认 ./reports
	} `yaml:"backtest"`

	// 各策略默认参数，键为策略名
	Strategies map[string]strategy.Params `yaml:"strategies"`

	// 日志落库配置
	Database struct {
		Type            string `yaml:"type"`              // 数据库类型: sqlite, postgres, mysql，默认 sqlite
		DSN             string `yaml:"dsn"`               // 数据源名称，默认 ./data/marketpulse.db
		MaxOpenConns    int    `yaml:"max_open_conns"`    // 最大打开连接数，默认100
		MaxIdleConns    int    `yaml:"max_idle_conns"`    // 最大空闲连接数，默认10
		ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // 连接最大生命周期（秒），默认3600
		BufferSize      int    `yaml:"buffer_size"`       // 日志写入缓冲区大小，默认1000
		BatchSize       int    `yaml:"batch_size"`        // 批量写入大小，默认100
		FlushInterval   int    `yaml:"flush_interval"`    // 刷新间隔（秒），默认5
	} `yaml:"database"`

	// 限流配置
	RateLimit struct {
		Enabled *bool   `yaml:"enabled"` // 省略时默认开启
		RPS     float64 `yaml:"rps"`     // 每秒请求数，默认 20
		Burst   int     `yaml:"burst"`   // 突发容量，默认 40
	} `yaml:"rate_limit"`

	System struct {
		LogLevel         string `yaml:"log_level"`          // debug, info, warn, error
		Timezone         string `yaml:"timezone"`           // 时区，如 "Asia/Shanghai"
		Language         string `yaml:"language"`           // 界面语言，如 "zh-CN" 或 "en-US"
		LogRetentionDays int    `yaml:"log_retention_days"` // 日志保留天数（默认30天，0表示不清理）
	} `yaml:"system"`
}

// LoadConfig 从文件加载配置
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %v", err)
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes 从字节数组加载配置（用于测试）
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %v", err)
	}

	return &cfg, nil
}

// DefaultConfig 全默认值配置，配置文件不存在时使用
func DefaultConfig() *Config {
	cfg := &Config{}
	// Validate 会把所有零值字段填成默认值
	_ = cfg.Validate()
	return cfg
}

// Validate 校验配置并填充默认值
func (c *Config) Validate() error {
	if c.Web.Host == "" {
		c.Web.Host = "0.0.0.0"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port 必须在 1-65535 之间，当前值: %d", c.Web.Port)
	}
	if c.Web.Mode == "" {
		c.Web.Mode = "release"
	}
	if c.Web.Mode != "debug" && c.Web.Mode != "release" {
		return fmt.Errorf("web.mode 必须是 debug 或 release，当前值: %s", c.Web.Mode)
	}

	if c.Backtest.InitialCapital == 0 {
		c.Backtest.InitialCapital = 100000
	}
	if c.Backtest.InitialCapital < 0 {
		return fmt.Errorf("backtest.initial_capital 不能为负数")
	}
	if c.Backtest.TransactionCost == 0 {
		c.Backtest.TransactionCost = 0.001
	}
	if c.Backtest.TransactionCost < 0 || c.Backtest.TransactionCost >= 1 {
		return fmt.Errorf("backtest.transaction_cost 必须在 [0,1) 之间")
	}
	if c.Backtest.StopLoss == 0 {
		c.Backtest.StopLoss = 0.1
	}
	if c.Backtest.TakeProfit == 0 {
		c.Backtest.TakeProfit = 0.2
	}
	if c.Backtest.ReportDir == "" {
		c.Backtest.ReportDir = "./reports"
	}

	if c.Strategies == nil {
		c.Strategies = make(map[string]strategy.Params)
	}
	for name := range c.Strategies {
		if !validStrategy(name) {
			return fmt.Errorf("未知的策略名: %s", name)
		}
	}

	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	switch c.Database.Type {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("database.type 必须是 sqlite、postgres 或 mysql，当前值: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		if c.Database.Type == "sqlite" {
			c.Database.DSN = "./data/marketpulse.db"
		} else {
			return fmt.Errorf("database.type 为 %s 时必须提供 database.dsn", c.Database.Type)
		}
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 100
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 10
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = 3600
	}
	if c.Database.BufferSize <= 0 {
		c.Database.BufferSize = 1000
	}
	if c.Database.BatchSize <= 0 {
		c.Database.BatchSize = 100
	}
	if c.Database.FlushInterval <= 0 {
		c.Database.FlushInterval = 5
	}

	if c.RateLimit.Enabled == nil {
		enabled := true
		c.RateLimit.Enabled = &enabled
	}
	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 40
	}

	if c.System.LogLevel == "" {
		c.System.LogLevel = "info"
	}
	if c.System.Timezone == "" {
		c.System.Timezone = "Asia/Shanghai"
	}
	if c.System.Language == "" {
		c.System.Language = "zh-CN"
	}
	if c.System.LogRetentionDays < 0 {
		return fmt.Errorf("system.log_retention_days 不能为负数")
	}

	return nil
}

func validStrategy(name string) bool {
	for _, k := range strategy.Kinds() {
		if string(k) == name {
			return true
		}
	}
	return false
}
