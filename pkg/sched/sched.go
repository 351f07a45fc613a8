// Package sched 提供驱动宠物的协作式定时器调度器
//
// 所有定时器都在调用 AdvanceTo/AdvanceBy 的 goroutine 上触发，回调之间不会并发执行。
// 桌面端在每次 ebiten Update 中把调度器推进到墙上时间；测试中手动推进。
//
// 定时器按到期时间顺序触发。回调执行期间 Now() 返回该定时器的到期时间，
// 而不是推进目标时间。
package sched

import (
	"log"
	"time"
)

// Scheduler 定时器调度器，持有活动定时器集合和虚拟时钟
//
// 非线程安全，只能在单个 goroutine（桌面端为 UI goroutine）中使用。
type Scheduler struct {
	now    time.Time
	active []*Timer
	seq    uint64

	// MaxLag 周期定时器允许落后的最大时长，超过后直接重新对齐而不是逐个补发。
	// 为 0 时不限制（测试依赖逐个补发）
	MaxLag time.Duration
}

// New 创建时钟从 start 开始的调度器
func New(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now 返回调度器当前时间
func (s *Scheduler) Now() time.Time {
	return s.now
}

// NewTimer 创建一个未启动的定时器，需调用 Start 启动
func (s *Scheduler) NewTimer(name string, interval time.Duration, periodic bool, fn func()) *Timer {
	return &Timer{
		s:        s,
		name:     name,
		interval: interval,
		periodic: periodic,
		fn:       fn,
	}
}

// After 创建并启动单次定时器
func (s *Scheduler) After(name string, d time.Duration, fn func()) *Timer {
	t := s.NewTimer(name, d, false, fn)
	t.Start()
	return t
}

// Every 创建并启动周期定时器
func (s *Scheduler) Every(name string, d time.Duration, fn func()) *Timer {
	t := s.NewTimer(name, d, true, fn)
	t.Start()
	return t
}

// Pending 返回活动定时器数量
func (s *Scheduler) Pending() int {
	return len(s.active)
}

// AdvanceBy 将时钟推进 d，触发期间到期的所有定时器
func (s *Scheduler) AdvanceBy(d time.Duration) {
	s.AdvanceTo(s.now.Add(d))
}

// AdvanceTo 将时钟推进到 target，按顺序触发到期定时器
// target 早于当前时间时忽略
func (s *Scheduler) AdvanceTo(target time.Time) {
	if target.Before(s.now) {
		return
	}

	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}

		if next.due.After(s.now) {
			s.now = next.due
		}

		if next.periodic {
			next.due = next.due.Add(next.period())
			if s.MaxLag > 0 && target.Sub(next.due) > s.MaxLag {
				log.Printf("[Sched] Timer %s fell behind by %v, resynchronising", next.name, target.Sub(next.due))
				next.due = target.Add(next.period())
			}
			next.seq = s.nextSeq()
		} else {
			next.active = false
			s.remove(next)
		}

		next.fn()
	}

	s.now = target
}

// nextDue 返回 target 之前最早到期的定时器
// 到期时间相同时按启动顺序
func (s *Scheduler) nextDue(target time.Time) *Timer {
	var best *Timer
	for _, t := range s.active {
		if t.due.After(target) {
			continue
		}
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *Scheduler) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *Scheduler) add(t *Timer) {
	for _, a := range s.active {
		if a == t {
			return
		}
	}
	s.active = append(s.active, t)
}

func (s *Scheduler) remove(t *Timer) {
	for i, a := range s.active {
		if a == t {
			s.active = append(s.active[:i], s.active[i+1:]...)
			return
		}
	}
}
