package stimulus

import (
	"image"
	"time"
)

// 摇晃检测参数
const (
	ShakeWindow       = time.Second
	ShakeMinSamples   = 8
	ShakeMinReversals = 4
)

type cursorSample struct {
	at time.Time
	p  image.Point
}

// ShakeDetector 光标摇晃检测
//
// 维护最近 1 秒的光标采样，采样数不少于 8 且任一轴的位移方向反转不少于 4 次时判定为摇晃。
type ShakeDetector struct {
	samples []cursorSample
}

// NewShakeDetector 创建摇晃检测器
func NewShakeDetector() *ShakeDetector {
	return &ShakeDetector{}
}

// Prune 丢弃早于 now-1s 的采样
func (d *ShakeDetector) Prune(now time.Time) {
	cut := 0
	for cut < len(d.samples) && now.Sub(d.samples[cut].at) > ShakeWindow {
		cut++
	}
	d.samples = d.samples[cut:]
}

// Add 记录一个采样并返回是否检测到摇晃
func (d *ShakeDetector) Add(now time.Time, p image.Point) bool {
	d.samples = append(d.samples, cursorSample{at: now, p: p})
	d.Prune(now)

	if len(d.samples) < ShakeMinSamples {
		return false
	}
	return reversals(d.samples, func(p image.Point) int { return p.X }) >= ShakeMinReversals ||
		reversals(d.samples, func(p image.Point) int { return p.Y }) >= ShakeMinReversals
}

// Reset 清空采样窗口
func (d *ShakeDetector) Reset() {
	d.samples = d.samples[:0]
}

// Len 返回窗口内采样数
func (d *ShakeDetector) Len() int {
	return len(d.samples)
}

// reversals 统计某一轴上非零位移的符号变化次数
func reversals(samples []cursorSample, axis func(image.Point) int) int {
	count, lastSign := 0, 0
	for i := 1; i < len(samples); i++ {
		delta := axis(samples[i].p) - axis(samples[i-1].p)
		sign := 0
		switch {
		case delta > 0:
			sign = 1
		case delta < 0:
			sign = -1
		}
		if sign == 0 {
			continue
		}
		if lastSign != 0 && sign != lastSign {
			count++
		}
		lastSign = sign
	}
	return count
}
