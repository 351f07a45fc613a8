package stimulus

import (
	"math"
	"sync/atomic"
)

// feedCapacity 音量通道容量，满时丢弃最旧的采样
const feedCapacity = 64

// VolumeFeed 采集 goroutine 到 UI goroutine 的音量通道（单生产者单消费者）
type VolumeFeed struct {
	ch      chan int
	running atomic.Bool
}

// NewVolumeFeed 创建音量通道
func NewVolumeFeed() *VolumeFeed {
	return &VolumeFeed{ch: make(chan int, feedCapacity)}
}

// Push 写入一个采样（0-100），通道满时丢弃最旧的采样，不会阻塞
func (f *VolumeFeed) Push(v int) {
	v = clampLevel(v)
	for {
		select {
		case f.ch <- v:
			return
		default:
		}
		select {
		case <-f.ch:
		default:
		}
	}
}

// Drain 依次取出所有待处理采样，返回取出的数量
func (f *VolumeFeed) Drain(fn func(int)) int {
	n := 0
	for {
		select {
		case v := <-f.ch:
			fn(v)
			n++
		default:
			return n
		}
	}
}

// SetRunning 由采集 goroutine 设置
func (f *VolumeFeed) SetRunning(running bool) {
	f.running.Store(running)
}

// Running 返回采集 goroutine 是否在运行
func (f *VolumeFeed) Running() bool {
	return f.running.Load()
}

// floorDB 映射到音量 0 的 dBFS
const floorDB = -60.0

// Level 把一段 16 位 PCM 采样转换为 0-100 音量
// RMS 的 dBFS 在 [-60, 0] 内线性映射到 [0, 100]
func Level(samples []int16) int {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		f := float64(s) / 32768.0
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	if rms <= 0 {
		return 0
	}
	db := 20 * math.Log10(rms)
	return clampLevel(int(math.Round((db - floorDB) / -floorDB * 100)))
}

func clampLevel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
