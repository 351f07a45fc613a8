package pet

import (
	"math"
	"time"

	"github.com/decker502/quackduck/pkg/skin"
)

// 玩耍参数（像素）
const (
	playfulDeadband  = 10
	playfulJumpRange = 50
	playfulRearm     = 100
)

// Playful 追逐光标，靠近时跳起
//
// 跳跃时以自身作为返回状态，落地后回到同一个实例继续玩耍。
type Playful struct {
	base
	duration  time.Duration
	started   bool
	hasJumped bool

	savedDirection int
	savedFacing    bool
	savedBoost     float64
}

// NewPlayful 创建玩耍状态
func NewPlayful(p *Pet) *Playful {
	return &Playful{base: newBase(p)}
}

func (s *Playful) Kind() Kind { return KindPlayful }

func (s *Playful) Enter() {
	if !s.started {
		s.started = true
		s.begin()
		s.savedDirection = s.p.direction
		s.savedFacing = s.p.facingRight
		s.savedBoost = s.p.boost
		s.p.boost = 2
		s.duration = seconds(s.p.uniform(20, 120))
	}
	s.play(skin.AnimWalk, true)
}

func (s *Playful) Exit(next State) {
	s.stopTimers()
	if next.Kind() == KindJumping {
		return
	}
	s.restore()
}

func (s *Playful) restore() {
	s.p.boost = s.savedBoost
	s.p.direction = s.savedDirection
	s.p.facingRight = s.savedFacing
}

func (s *Playful) abandon() {
	s.restore()
}

func (s *Playful) UpdatePosition() {
	w, _ := s.p.store.FrameSize()
	center := s.p.x + float64(w)/2
	cursor := s.p.cursorPos()
	d := float64(cursor.X) - center

	if math.Abs(d) > playfulDeadband {
		if d > 0 {
			s.p.direction = 1
		} else {
			s.p.direction = -1
		}
		s.p.facingRight = s.p.direction == 1
		s.p.x += s.p.Speed() * float64(s.p.direction)
		s.p.clampX()
	}

	if math.Abs(d) >= playfulRearm {
		s.hasJumped = false
	}

	if s.elapsed() > s.duration {
		s.p.ChangeState(NewIdle(s.p))
		return
	}

	if math.Abs(d) < playfulJumpRange && !s.hasJumped {
		s.hasJumped = true
		s.p.ChangeState(NewJumping(s.p, s))
	}
}

// Attack 播放一次攻击动画，结束后回到触发它的状态
type Attack struct {
	base
	ret Kind
}

// NewAttack 创建攻击状态，ret 为结束后回到的状态类型
func NewAttack(p *Pet, ret Kind) *Attack {
	return &Attack{base: newBase(p), ret: ret}
}

func (s *Attack) Kind() Kind { return KindAttack }

func (s *Attack) Enter() {
	s.begin()
	s.play(skin.AnimAttack, false)
}

func (s *Attack) UpdateAnimation() {
	if s.advance() {
		s.p.changeOr(s.p.newState(s.ret), NewWalking(s.p))
	}
}

func (s *Attack) MouseMove(ev MouseEvent) {
	if ev.Left() {
		s.p.startDrag(ev)
	}
}
