// Package stimulus 实现驱动状态转换的外部刺激源
//
// 包括麦克风音量迟滞、光标摇晃检测、全屏暂停信号和跨 goroutine 的音量通道。
package stimulus

import (
	"time"

	"github.com/decker502/quackduck/pkg/sched"
)

// 聆听迟滞时间
const (
	ListenEntryDelay = 100 * time.Millisecond
	ListenExitDelay  = 1000 * time.Millisecond
)

// ListenTarget 音量迟滞控制的对象（宠物）
type ListenTarget interface {
	IsListening() bool
	// CanStartListening 当前状态是否允许进入聆听（跳跃、下落、拖拽、玩耍、落地时不允许）
	CanStartListening() bool
	StartListening()
	StopListening()
	// Touch 记录一次真实交互
	Touch()
}

// Hysteresis 音量迟滞检测器
//
// 音量超过阈值并持续 100ms 后进入聆听；聆听中音量不超过阈值并持续 1000ms 后退出。
// 两个计时器都是单次定时器，条件撤销时立即取消。
type Hysteresis struct {
	Threshold int

	target ListenTarget
	entry  *sched.Timer
	exit   *sched.Timer
}

// NewHysteresis 创建迟滞检测器
func NewHysteresis(s *sched.Scheduler, threshold int, target ListenTarget) *Hysteresis {
	h := &Hysteresis{Threshold: threshold, target: target}
	h.entry = s.NewTimer("listen-entry", ListenEntryDelay, false, h.onEntry)
	h.exit = s.NewTimer("listen-exit", ListenExitDelay, false, h.onExit)
	return h
}

// Sample 处理一个 0-100 的音量采样
func (h *Hysteresis) Sample(v int) {
	if v > h.Threshold {
		h.target.Touch()
		h.exit.Stop()
		if !h.target.IsListening() && !h.entry.Active() && h.target.CanStartListening() {
			h.entry.Start()
		}
		return
	}

	h.entry.Stop()
	if h.target.IsListening() && !h.exit.Active() {
		h.exit.Start()
	}
}

// Reset 取消所有挂起的计时器
func (h *Hysteresis) Reset() {
	h.entry.Stop()
	h.exit.Stop()
}

// EntryPending 返回进入计时器是否挂起
func (h *Hysteresis) EntryPending() bool {
	return h.entry.Active()
}

// ExitPending 返回退出计时器是否挂起
func (h *Hysteresis) ExitPending() bool {
	return h.exit.Active()
}

func (h *Hysteresis) onEntry() {
	if h.target.IsListening() || !h.target.CanStartListening() {
		return
	}
	h.target.StartListening()
}

func (h *Hysteresis) onExit() {
	if !h.target.IsListening() {
		return
	}
	h.target.StopListening()
}
