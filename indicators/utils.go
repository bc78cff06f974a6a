package indicators

import "math"

// ========== 滚动窗口计算工具 ==========
// 输入序列允许包含 NaN（缺失值），所有函数按位返回与输入等长的序列

// RollingMean 滚动均值
// 窗口内有效值个数不足 minPeriods 时返回 NaN
func RollingMean(values []float64, window, minPeriods int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, count := 0.0, 0
		for j := start; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				count++
			}
		}
		if count < minPeriods || count == 0 {
			result[i] = math.NaN()
		} else {
			result[i] = sum / float64(count)
		}
	}
	return result
}

// RollingStd 滚动标准差（样本标准差）
// 有效值不足 minPeriods 或不足 2 个时返回 NaN
func RollingStd(values []float64, window, minPeriods int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		sum, count := 0.0, 0
		for j := start; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				count++
			}
		}
		if count < minPeriods || count < 2 {
			result[i] = math.NaN()
			continue
		}
		mean := sum / float64(count)
		variance := 0.0
		for j := start; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				diff := values[j] - mean
				variance += diff * diff
			}
		}
		result[i] = math.Sqrt(variance / float64(count-1))
	}
	return result
}

// RollingSum 滚动求和，要求窗口内有 window 个有效值，否则返回 NaN
func RollingSum(values []float64, window int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			result[i] = math.NaN()
			continue
		}
		sum, count := 0.0, 0
		for j := i - window + 1; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				sum += values[j]
				count++
			}
		}
		if count < window {
			result[i] = math.NaN()
		} else {
			result[i] = sum
		}
	}
	return result
}

// RollingMax 滚动最大值，要求窗口内有 window 个有效值
func RollingMax(values []float64, window int) []float64 {
	return rollingExtreme(values, window, func(a, b float64) bool { return a > b })
}

// RollingMin 滚动最小值，要求窗口内有 window 个有效值
func RollingMin(values []float64, window int) []float64 {
	return rollingExtreme(values, window, func(a, b float64) bool { return a < b })
}

func rollingExtreme(values []float64, window int, better func(a, b float64) bool) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			result[i] = math.NaN()
			continue
		}
		best := math.NaN()
		count := 0
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(values[j]) {
				continue
			}
			count++
			if math.IsNaN(best) || better(values[j], best) {
				best = values[j]
			}
		}
		if count < window {
			result[i] = math.NaN()
		} else {
			result[i] = best
		}
	}
	return result
}

// EWMean 指数加权均值（按 span 取平滑系数 α = 2/(span+1)，权重自序列起点累积）
// 缺失值不参与加权，但会使历史权重继续衰减
func EWMean(values []float64, span int) []float64 {
	result := make([]float64, len(values))
	alpha := 2.0 / (float64(span) + 1.0)
	num, den := 0.0, 0.0
	for i, v := range values {
		num *= 1 - alpha
		den *= 1 - alpha
		if !math.IsNaN(v) {
			num += v
			den++
		}
		if den > 0 {
			result[i] = num / den
		} else {
			result[i] = math.NaN()
		}
	}
	return result
}

// Shift 序列整体后移 n 位，空出的位置填 NaN
func Shift(values []float64, n int) []float64 {
	result := make([]float64, len(values))
	for i := range values {
		if i-n < 0 || i-n >= len(values) {
			result[i] = math.NaN()
		} else {
			result[i] = values[i-n]
		}
	}
	return result
}

// diff 一阶差分，首位及任一侧缺失的位置为 NaN
func diff(values []float64) []float64 {
	result := make([]float64, len(values))
	if len(values) == 0 {
		return result
	}
	result[0] = math.NaN()
	for i := 1; i < len(values); i++ {
		if math.IsNaN(values[i]) || math.IsNaN(values[i-1]) {
			result[i] = math.NaN()
		} else {
			result[i] = values[i] - values[i-1]
		}
	}
	return result
}
