package utils

import "math"

// 缓动函数：输入进度 t ∈ [0, 1]，返回缓动后的值
// 用于目标出现/消失、进度环与结算面板的动画

// EaseOutCubic 三次方缓出，开始快结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseOutQuad 二次方缓出
func EaseOutQuad(t float64) float64 {
	return 1 - (1-t)*(1-t)
}

// Pulse 周期为 period 秒的 0~1 脉冲（正弦），用于提示闪烁
func Pulse(now, period float64) float64 {
	if period <= 0 {
		return 1
	}
	return 0.5 + 0.5*math.Sin(2*math.Pi*now/period)
}

// Clamp01 限制在 [0, 1]
func Clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}

// Lerp 线性插值，t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
