package pet

import (
	"image"
	"time"

	"github.com/decker502/quackduck/pkg/sched"
)

// ButtonMask 按下的鼠标按键
type ButtonMask uint8

const (
	ButtonLeft ButtonMask = 1 << iota
	ButtonRight
	ButtonMiddle
)

// MouseEvent 鼠标事件
type MouseEvent struct {
	Local   image.Point // 相对精灵左上角
	Global  image.Point // 屏幕坐标
	Buttons ButtonMask  // 按下的按键
}

// Left 左键是否按下
func (e MouseEvent) Left() bool {
	return e.Buttons&ButtonLeft != 0
}

// State 宠物行为状态
//
// 状态由 Pet 独占持有，只在成为当前状态期间存活。
// UpdateAnimation 每个动画 tick（约 100ms）调用一次，UpdatePosition 每个物理 tick（约 20ms）调用一次。
type State interface {
	Kind() Kind
	Enter()
	Exit(next State)
	UpdateAnimation()
	UpdatePosition()
	MousePress(ev MouseEvent)
	MouseMove(ev MouseEvent)
	MouseRelease(ev MouseEvent)

	suspend()
	resume()
	refresh()
}

type pausedTimer struct {
	t         *sched.Timer
	remaining time.Duration
}

// base 所有状态共用的部分：帧游标、进入时间、状态私有定时器
type base struct {
	p *Pet

	anim   string
	frames []*image.RGBA
	index  int
	loop   bool
	frozen bool
	gen    int

	enteredAt time.Time
	timers    []*sched.Timer
	paused    []pausedTimer
}

func newBase(p *Pet) base {
	return base{p: p}
}

// begin 记录进入时间
func (b *base) begin() {
	b.enteredAt = b.p.clock()
}

// elapsed 进入状态后经过的时间（不含全屏暂停）
func (b *base) elapsed() time.Duration {
	return b.p.clock().Sub(b.enteredAt)
}

// play 从第一帧开始播放动画
func (b *base) play(name string, loop bool) {
	b.anim = name
	b.frames = b.p.store.Frames(name)
	b.gen = b.p.store.Generation()
	b.index = 0
	b.loop = loop
	b.frozen = false
	b.p.frame = b.frames[0]
}

// refresh 按当前动画名重新取帧并回到第一帧，循环和冻结标记不变
func (b *base) refresh() {
	if b.anim == "" {
		return
	}
	b.frames = b.p.store.Frames(b.anim)
	b.gen = b.p.store.Generation()
	b.index = 0
	b.p.frame = b.frames[0]
}

// freeze 停在当前帧
func (b *base) freeze() {
	b.frozen = true
}

// advance 前进一帧
// 非循环动画已经停在最后一帧时返回 true
func (b *base) advance() bool {
	if b.frozen || b.frames == nil {
		return false
	}
	if b.gen != b.p.store.Generation() {
		b.frames = b.p.store.Frames(b.anim)
		b.gen = b.p.store.Generation()
		if b.index >= len(b.frames) {
			b.index = 0
		}
	}

	if b.index >= len(b.frames)-1 {
		if !b.loop {
			b.p.frame = b.frames[b.index]
			return true
		}
		b.index = 0
	} else {
		b.index++
	}
	b.p.frame = b.frames[b.index]
	return false
}

// after 启动一个属于该状态的单次定时器，退出状态时自动停止
func (b *base) after(name string, d time.Duration, fn func()) *sched.Timer {
	t := b.p.sched.After(name, d, fn)
	b.timers = append(b.timers, t)
	return t
}

func (b *base) stopTimers() {
	for _, t := range b.timers {
		t.Stop()
	}
	b.timers = nil
	b.paused = nil
}

func (b *base) suspend() {
	now := b.p.sched.Now()
	for _, t := range b.timers {
		if t.Active() {
			b.paused = append(b.paused, pausedTimer{t: t, remaining: t.Due().Sub(now)})
			t.Stop()
		}
	}
}

func (b *base) resume() {
	for _, pt := range b.paused {
		pt.t.StartAfter(pt.remaining)
	}
	b.paused = nil
}

// 默认行为

func (b *base) Enter()           {}
func (b *base) Exit(State)       { b.stopTimers() }
func (b *base) UpdateAnimation() { b.advance() }
func (b *base) UpdatePosition()  {}

// MousePress 左键按下开始拖拽
func (b *base) MousePress(ev MouseEvent) {
	if ev.Left() {
		b.p.startDrag(ev)
	}
}

func (b *base) MouseMove(MouseEvent)    {}
func (b *base) MouseRelease(MouseEvent) {}
