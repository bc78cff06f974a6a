// Package strategy 交易信号生成器
// 五种独立策略，均为指标序列到逐日信号的纯函数；一次回测只激活一种策略
package strategy

import (
	"fmt"

	"marketpulse/indicators"
)

// Signal 单日交易信号
type Signal int

const (
	Sell Signal = -1 // 卖出
	Hold Signal = 0  // 观望
	Buy  Signal = 1  // 买入
)

// Kind 策略类型
type Kind string

const (
	Momentum      Kind = "momentum"       // 动量策略
	MeanReversion Kind = "mean_reversion" // 均值回归策略
	Breakout      Kind = "breakout"       // 突破策略
	Sentiment     Kind = "sentiment"      // 市场情绪策略
	Northbound    Kind = "north_flow"     // 北向资金策略
)

// Kinds 所有支持的策略类型
func Kinds() []Kind {
	return []Kind{Momentum, MeanReversion, Breakout, Sentiment, Northbound}
}

// Params 策略参数，由调用方提供，各策略只读取自己声明的字段
type Params struct {
	Window           int     `json:"window" yaml:"window"`                       // 滚动窗口（天）
	Threshold        float64 `json:"threshold" yaml:"threshold"`                 // 动量/北向资金阈值
	ZThreshold       float64 `json:"z_threshold" yaml:"z_threshold"`             // 均值回归 Z-score 阈值
	Multiplier       float64 `json:"multiplier" yaml:"multiplier"`               // 突破倍数
	ExtremeThreshold float64 `json:"extreme_threshold" yaml:"extreme_threshold"` // 情绪极端阈值
}

// DefaultParams 各策略的默认参数
func DefaultParams(kind Kind) Params {
	switch kind {
	case Momentum:
		return Params{Window: 5, Threshold: 0.1}
	case MeanReversion:
		return Params{Window: 20, ZThreshold: 2}
	case Breakout:
		return Params{Window: 20, Multiplier: 1.05}
	case Sentiment:
		return Params{ExtremeThreshold: 0.7}
	case Northbound:
		return Params{Window: 3, Threshold: 20}
	default:
		return Params{}
	}
}

// ConfigError 策略配置错误，回测在此类错误下直接拒绝运行，不产生部分结果
type ConfigError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("策略 %s 配置错误: %s", e.Kind, e.Reason)
}

func configErr(kind Kind, format string, args ...interface{}) error {
	return &ConfigError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// Generate 按策略类型生成逐日信号序列，与输入行一一对应
// 序列长度不足策略窗口时全部为 Hold，不报错
func Generate(kind Kind, rows []indicators.Row, p Params) ([]Signal, error) {
	switch kind {
	case Momentum:
		return momentumSignals(rows, p)
	case MeanReversion:
		return meanReversionSignals(rows, p)
	case Breakout:
		return breakoutSignals(rows, p)
	case Sentiment:
		return sentimentSignals(rows, p)
	case Northbound:
		return northboundSignals(rows, p)
	default:
		return nil, configErr(kind, "不支持的策略类型")
	}
}
