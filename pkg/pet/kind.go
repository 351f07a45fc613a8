package pet

import "strings"

// Kind 状态类型（封闭集合）
type Kind int

const (
	KindIdle Kind = iota
	KindWalking
	KindFalling
	KindLanding
	KindJumping
	KindDragging
	KindSleeping
	KindListening
	KindPlayful
	KindAttack
	KindRunning
)

// AllKinds 所有状态类型
var AllKinds = []Kind{
	KindIdle, KindWalking, KindFalling, KindLanding, KindJumping, KindDragging,
	KindSleeping, KindListening, KindPlayful, KindAttack, KindRunning,
}

var kindNames = map[Kind]string{
	KindIdle:      "Idle",
	KindWalking:   "Walking",
	KindFalling:   "Falling",
	KindLanding:   "Landing",
	KindJumping:   "Jumping",
	KindDragging:  "Dragging",
	KindSleeping:  "Sleeping",
	KindListening: "Listening",
	KindPlayful:   "Playful",
	KindAttack:    "Attack",
	KindRunning:   "Running",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind 按名字（不区分大小写）查找状态类型
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if strings.EqualFold(n, name) {
			return k, true
		}
	}
	return 0, false
}

// OnGround 该状态下精灵底部必须贴地
func (k Kind) OnGround() bool {
	switch k {
	case KindIdle, KindWalking, KindSleeping, KindListening, KindPlayful, KindAttack, KindRunning:
		return true
	}
	return false
}

// Airborne 下落或跳跃中
func (k Kind) Airborne() bool {
	return k == KindFalling || k == KindJumping
}

// in 判断 k 是否属于集合
func (k Kind) in(set ...Kind) bool {
	for _, s := range set {
		if k == s {
			return true
		}
	}
	return false
}
