package pet

import (
	"time"

	"github.com/decker502/quackduck/pkg/utils"
)

// 爱心动画参数
const (
	HeartLifetime = 2 * time.Second
	HeartRise     = 40.0
)

// Heart 双击时放出的爱心，独立于状态机
type Heart struct {
	x, y float64
	born time.Time
}

// HeartView 绘制用的爱心快照
type HeartView struct {
	X, Y  int
	Alpha float64
}

func (p *Pet) spawnHeart() {
	w, _ := p.store.FrameSize()
	p.hearts = append(p.hearts, &Heart{
		x:    p.x + float64(w)/2,
		y:    p.y,
		born: p.sched.Now(),
	})
}

// updateHearts 移除已经消失的爱心
func (p *Pet) updateHearts() {
	now := p.sched.Now()
	alive := p.hearts[:0]
	for _, h := range p.hearts {
		if now.Sub(h.born) < HeartLifetime {
			alive = append(alive, h)
		}
	}
	for i := len(alive); i < len(p.hearts); i++ {
		p.hearts[i] = nil
	}
	p.hearts = alive
}

// Hearts 返回当前所有爱心的位置和透明度
func (p *Pet) Hearts() []HeartView {
	now := p.sched.Now()
	out := make([]HeartView, 0, len(p.hearts))
	for _, h := range p.hearts {
		t := float64(now.Sub(h.born)) / float64(HeartLifetime)
		if t >= 1 {
			continue
		}
		rise := utils.EaseOutCubic(t) * HeartRise
		out = append(out, HeartView{
			X:     int(h.x),
			Y:     int(h.y - rise),
			Alpha: utils.Lerp(1, 0, t),
		})
	}
	return out
}
