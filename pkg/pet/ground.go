package pet

import (
	"time"

	"github.com/decker502/quackduck/pkg/skin"
)

// Idle 原地待机，超过 idle_duration 后开始行走
type Idle struct {
	base
}

// NewIdle 创建待机状态
func NewIdle(p *Pet) *Idle {
	return &Idle{base: newBase(p)}
}

func (s *Idle) Kind() Kind { return KindIdle }

func (s *Idle) Enter() {
	s.begin()
	name := skin.AnimIdle
	if names := s.p.store.IdleNames(); len(names) > 0 {
		name = names[s.p.rng.IntN(len(names))]
	}
	s.play(name, true)
}

func (s *Idle) UpdatePosition() {
	if s.elapsed() > s.p.idleDuration() {
		s.p.ChangeState(NewWalking(s.p))
	}
}

// Walking 在屏幕两侧之间来回行走
type Walking struct {
	base
	duration time.Duration
}

// NewWalking 创建行走状态
func NewWalking(p *Pet) *Walking {
	return &Walking{base: newBase(p)}
}

func (s *Walking) Kind() Kind { return KindWalking }

func (s *Walking) Enter() {
	s.begin()
	s.duration = seconds(s.p.uniform(5, 15))
	s.play(skin.AnimWalk, true)
}

func (s *Walking) UpdatePosition() {
	s.p.walkStep()
	if s.elapsed() > s.duration {
		s.p.ChangeState(NewIdle(s.p))
	}
}

// Running 加速奔跑，结束后恢复行走
type Running struct {
	base
	duration  time.Duration
	prevBoost float64
}

// NewRunning 创建奔跑状态
func NewRunning(p *Pet) *Running {
	return &Running{base: newBase(p)}
}

func (s *Running) Kind() Kind { return KindRunning }

func (s *Running) Enter() {
	s.begin()
	s.prevBoost = s.p.boost
	s.p.boost = 2
	s.duration = seconds(s.p.uniform(60, 120))
	s.play(skin.AnimRunning, true)
}

func (s *Running) Exit(next State) {
	s.p.boost = s.prevBoost
	s.stopTimers()
}

func (s *Running) UpdatePosition() {
	s.p.walkStep()
	if s.elapsed() > s.duration {
		s.p.ChangeState(NewWalking(s.p))
	}
}

// walkStep 按当前速度和方向移动，碰到屏幕边缘时掉头
func (p *Pet) walkStep() {
	p.x += p.Speed() * float64(p.direction)
	w, _ := p.store.FrameSize()
	maxX := float64(p.screenW - w)
	if p.x < 0 {
		p.x = 0
		p.direction = 1
	} else if p.x > maxX {
		p.x = maxX
		p.direction = -1
	}
	p.facingRight = p.direction == 1
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
