package pet

import (
	"image"

	"github.com/decker502/quackduck/pkg/skin"
)

// Dragging 被鼠标拖拽，松开后下落
type Dragging struct {
	base
	offset image.Point
}

// NewDragging 创建拖拽状态
func NewDragging(p *Pet) *Dragging {
	return &Dragging{base: newBase(p)}
}

func (s *Dragging) Kind() Kind { return KindDragging }

func (s *Dragging) Enter() {
	s.begin()
	s.p.labelHidden = true
	s.play(skin.AnimFall, false)
	s.freeze()
}

func (s *Dragging) Exit(next State) {
	s.p.labelHidden = false
	s.stopTimers()
}

func (s *Dragging) UpdateAnimation() {}

func (s *Dragging) MousePress(ev MouseEvent) {
	s.offset = ev.Local
}

func (s *Dragging) MouseMove(ev MouseEvent) {
	s.p.x = float64(ev.Global.X - s.offset.X)
	s.p.y = float64(ev.Global.Y - s.offset.Y)
}

func (s *Dragging) MouseRelease(ev MouseEvent) {
	s.p.ChangeState(NewFalling(s.p, false, nil))
}

// Sleeping 入睡，唤醒定时器到期或被点击时醒来
type Sleeping struct {
	base
}

// NewSleeping 创建睡眠状态
func NewSleeping(p *Pet) *Sleeping {
	return &Sleeping{base: newBase(p)}
}

func (s *Sleeping) Kind() Kind { return KindSleeping }

func (s *Sleeping) Enter() {
	s.begin()
	if s.p.store.Has(skin.AnimSleepTransition) {
		s.play(skin.AnimSleepTransition, false)
	} else {
		s.play(skin.AnimSleep, true)
	}
	d := seconds(s.p.uniform(900, 3600))
	s.after("wake", d, s.onWake)
}

func (s *Sleeping) UpdateAnimation() {
	if s.advance() && s.anim == skin.AnimSleepTransition {
		s.play(skin.AnimSleep, true)
	}
}

func (s *Sleeping) onWake() {
	if s.p.ChangeState(NewWalking(s.p)) {
		s.p.touch()
	}
}

func (s *Sleeping) MousePress(ev MouseEvent) {
	if !ev.Left() {
		return
	}
	s.p.touch()
	s.p.startDrag(ev)
}

// Listening 听到声音，暂停移动
type Listening struct {
	base
	press *MouseEvent
}

// NewListening 创建聆听状态
func NewListening(p *Pet) *Listening {
	return &Listening{base: newBase(p)}
}

func (s *Listening) Kind() Kind { return KindListening }

func (s *Listening) Enter() {
	s.begin()
	s.play(skin.AnimListen, true)
	if s.p.rng.Float64() < s.p.traits.SoundResponseProb {
		s.p.PlayRandomSound()
	}
}

// MousePress 聆听时按下不立即拖拽，按住移动才开始
func (s *Listening) MousePress(ev MouseEvent) {
	if ev.Left() {
		pressed := ev
		s.press = &pressed
	}
}

func (s *Listening) MouseMove(ev MouseEvent) {
	if s.press == nil || !ev.Left() {
		return
	}
	press := *s.press
	s.press = nil
	if s.p.startDrag(press) {
		s.p.state.MouseMove(ev)
	}
}

func (s *Listening) MouseRelease(MouseEvent) {
	s.press = nil
}
