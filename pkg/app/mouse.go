package app

import (
	"image"
	"time"

	"github.com/decker502/quackduck/pkg/pet"
)

// DoubleClickInterval 两次按下间隔小于此值视为双击
const DoubleClickInterval = 400 * time.Millisecond

// MouseHandler 接收翻译后的鼠标事件（*pet.Pet 实现了它）
type MouseHandler interface {
	MousePress(ev pet.MouseEvent)
	MouseMove(ev pet.MouseEvent)
	MouseRelease(ev pet.MouseEvent)
	MouseDoubleClick(ev pet.MouseEvent)
}

// mouseTracker 把每帧的鼠标快照翻译成按下/移动/松开/双击事件
type mouseTracker struct {
	pressed   bool
	last      image.Point
	lastClick time.Time
}

// mouseSnapshot 一帧的鼠标状态
type mouseSnapshot struct {
	Now    time.Time
	Left   bool            // 左键是否按下
	Global image.Point     // 屏幕坐标
	Sprite image.Rectangle // 精灵在屏幕上的矩形
}

// update 比较上一帧并向 h 发送事件
func (m *mouseTracker) update(s mouseSnapshot, h MouseHandler) {
	ev := pet.MouseEvent{
		Local:  s.Global.Sub(s.Sprite.Min),
		Global: s.Global,
	}
	if s.Left {
		ev.Buttons = pet.ButtonLeft
	}

	switch {
	case s.Left && !m.pressed:
		// 只有按在精灵上才开始交互
		if !s.Global.In(s.Sprite) {
			return
		}
		m.pressed = true
		if !m.lastClick.IsZero() && s.Now.Sub(m.lastClick) < DoubleClickInterval {
			m.lastClick = time.Time{}
			h.MouseDoubleClick(ev)
		} else {
			m.lastClick = s.Now
			h.MousePress(ev)
		}
	case s.Left && m.pressed:
		if s.Global != m.last {
			h.MouseMove(ev)
		}
	case !s.Left && m.pressed:
		m.pressed = false
		h.MouseRelease(ev)
	}
	m.last = s.Global
}
