package utils

import (
	"math"
	"testing"
)

func TestEasing(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(float64) float64
		input    float64
		expected float64
	}{
		{"三次方缓出起点", EaseOutCubic, 0, 0},
		{"三次方缓出中点", EaseOutCubic, 0.5, 0.875},
		{"三次方缓出终点", EaseOutCubic, 1, 1},
		{"二次方缓出中点", EaseOutQuad, 0.5, 0.75},
		{"限制下界", Clamp01, -0.5, 0},
		{"限制上界", Clamp01, 1.5, 1},
		{"限制区间内", Clamp01, 0.3, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.input); math.Abs(got-tt.expected) > 0.001 {
				t.Errorf("f(%v) = %v, 期望 %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPulse(t *testing.T) {
	if got := Pulse(0, 1); math.Abs(got-0.5) > 0.001 {
		t.Errorf("Pulse(0) = %v, 期望 0.5", got)
	}
	if got := Pulse(0.25, 1); math.Abs(got-1) > 0.001 {
		t.Errorf("Pulse(0.25) = %v, 期望 1", got)
	}
	if Pulse(3, 0) != 1 {
		t.Error("非正周期应返回 1")
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(10, 20, 0.5); got != 15 {
		t.Errorf("Lerp(10, 20, 0.5) = %v, 期望 15", got)
	}
}
