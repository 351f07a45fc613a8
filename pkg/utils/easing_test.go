package utils

import (
	"math"
	"testing"
)

const epsilon = 1e-9

// TestEaseOutCubic 测试三次方缓出
func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.0, 0.0},
		{0.5, 0.875},
		{1.0, 1.0},
		{-0.5, 0.0},
		{2.0, 1.0},
	}

	for _, tt := range tests {
		got := EaseOutCubic(tt.input)
		if math.Abs(got-tt.expected) > epsilon {
			t.Errorf("EaseOutCubic(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// TestEaseOutCubicMonotonic 测试缓出曲线单调递增且前半段超过线性
func TestEaseOutCubicMonotonic(t *testing.T) {
	prev := -1.0
	for i := 0; i <= 100; i++ {
		x := float64(i) / 100
		v := EaseOutCubic(x)
		if v < prev {
			t.Fatalf("EaseOutCubic not monotonic at %v", x)
		}
		if x > 0 && x < 1 && v <= x {
			t.Errorf("EaseOutCubic(%v) = %v, expected above linear", x, v)
		}
		prev = v
	}
}

// TestLerp 测试线性插值
func TestLerp(t *testing.T) {
	tests := []struct {
		a, b, t  float64
		expected float64
	}{
		{0, 10, 0, 0},
		{0, 10, 1, 10},
		{0, 10, 0.5, 5},
		{1, 0, 0.25, 0.75},
		{100, 60, 0.5, 80},
	}

	for _, tt := range tests {
		got := Lerp(tt.a, tt.b, tt.t)
		if math.Abs(got-tt.expected) > epsilon {
			t.Errorf("Lerp(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.t, got, tt.expected)
		}
	}
}
