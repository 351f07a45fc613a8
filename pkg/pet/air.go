package pet

import "github.com/decker502/quackduck/pkg/skin"

// 跳跃初速度
const (
	jumpVelocity        = -15.0
	playfulJumpVelocity = -22.5
)

// Falling 自由下落，落地后进入 Landing
type Falling struct {
	base
	playAnimation bool
	ret           State
	v             float64
}

// NewFalling 创建下落状态
//
// 参数：
//   - playAnimation: 是否播放 fall 动画（否则停在当前帧）
//   - ret: 落地后进入的状态，nil 表示 Walking
func NewFalling(p *Pet, playAnimation bool, ret State) *Falling {
	return &Falling{base: newBase(p), playAnimation: playAnimation, ret: ret}
}

func (s *Falling) Kind() Kind { return KindFalling }

func (s *Falling) Enter() {
	s.begin()
	if s.playAnimation || s.p.frame == nil {
		s.play(skin.AnimFall, true)
	} else {
		s.freeze()
	}
}

// refresh 冻结下落时沿用的是上一个状态的帧，换肤后改为冻结在 fall 第一帧
func (s *Falling) refresh() {
	if s.anim == "" {
		s.play(skin.AnimFall, true)
		s.freeze()
		return
	}
	s.base.refresh()
}

func (s *Falling) UpdatePosition() {
	s.v++
	s.p.y += s.v
	if s.p.y+float64(s.p.height()) >= float64(s.p.groundY()) {
		s.p.y = float64(s.p.groundY() - s.p.height())
		s.v = 0
		s.p.ChangeState(NewLanding(s.p, s.ret))
	}
}

// Landing 播放一次落地动画后进入下一个状态
type Landing struct {
	base
	next State
}

// NewLanding 创建落地状态，next 为 nil 时落地后行走
func NewLanding(p *Pet, next State) *Landing {
	return &Landing{base: newBase(p), next: next}
}

func (s *Landing) Kind() Kind { return KindLanding }

func (s *Landing) Enter() {
	s.begin()
	if s.next == nil {
		s.next = NewWalking(s.p)
	}
	s.play(skin.AnimLand, false)
}

func (s *Landing) Exit(next State) {
	if next != s.next {
		abandon(s.next)
	}
	s.stopTimers()
}

func (s *Landing) UpdateAnimation() {
	if s.advance() {
		s.p.changeOr(s.next, NewWalking(s.p))
	}
}

// Jumping 向上跳起，速度变为非负后切换到下落帧
type Jumping struct {
	base
	ret     State
	v       float64
	falling bool
}

// NewJumping 创建跳跃状态，ret 为 nil 时落地后行走
func NewJumping(p *Pet, ret State) *Jumping {
	return &Jumping{base: newBase(p), ret: ret}
}

func (s *Jumping) Kind() Kind { return KindJumping }

func (s *Jumping) Enter() {
	s.begin()
	s.p.facingRight = s.p.direction == 1
	s.v = jumpVelocity
	if s.ret != nil && s.ret.Kind() == KindPlayful {
		s.v = playfulJumpVelocity
	}
	s.play(skin.AnimJump, false)
}

func (s *Jumping) Exit(next State) {
	if next.Kind() != KindLanding {
		abandon(s.ret)
	}
	s.stopTimers()
}

func (s *Jumping) UpdateAnimation() {
	s.advance()
}

func (s *Jumping) UpdatePosition() {
	s.v++
	s.p.y += s.v
	if s.v >= 0 && !s.falling {
		s.falling = true
		s.play(skin.AnimFall, true)
	}
	if s.v > 0 && s.p.y+float64(s.p.height()) >= float64(s.p.groundY()) {
		s.p.y = float64(s.p.groundY() - s.p.height())
		s.p.ChangeState(NewLanding(s.p, s.ret))
	}
}

// abandoner 被跳过的返回状态（例如跳跃中被拖走时的 Playful）需要恢复现场
type abandoner interface {
	abandon()
}

func abandon(s State) {
	if a, ok := s.(abandoner); ok {
		a.abandon()
	}
}
