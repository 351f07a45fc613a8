package sched

import "time"

// MinPeriod 周期定时器的最小间隔，更小的间隔按此值处理
const MinPeriod = time.Millisecond

// Timer 由 Scheduler 管理的单次或周期定时器
//
// Stop 是同步取消：Stop 返回后，在再次 Start 之前回调不会执行。
type Timer struct {
	s        *Scheduler
	name     string
	interval time.Duration
	periodic bool
	fn       func()

	due    time.Time
	seq    uint64
	active bool
}

// Start 启动（或重启）定时器，在一个完整间隔后触发
// 重启活动中的定时器会推迟其到期时间
func (t *Timer) Start() {
	d := t.interval
	if t.periodic {
		d = t.period()
	}
	t.due = t.s.now.Add(d)
	t.seq = t.s.nextSeq()
	t.active = true
	t.s.add(t)
}

// StartAfter 以新的间隔启动定时器
func (t *Timer) StartAfter(d time.Duration) {
	t.interval = d
	t.Start()
}

// Stop 停止定时器，重复停止无副作用
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.active = false
	t.s.remove(t)
}

// Active 返回定时器是否处于活动状态
func (t *Timer) Active() bool {
	return t != nil && t.active && t.s.contains(t)
}

// period 周期定时器两次触发之间的间隔
func (t *Timer) period() time.Duration {
	if t.interval < MinPeriod {
		return MinPeriod
	}
	return t.interval
}

// Interval 返回当前间隔
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// SetInterval 修改下次 Start 使用的间隔
// 活动中的周期定时器保持当前到期时间
func (t *Timer) SetInterval(d time.Duration) {
	t.interval = d
}

// Due 返回下次触发时间，仅在活动状态下有意义
func (t *Timer) Due() time.Time {
	return t.due
}

// Name 返回定时器名称（用于日志）
func (t *Timer) Name() string {
	return t.name
}

func (s *Scheduler) contains(t *Timer) bool {
	for _, a := range s.active {
		if a == t {
			return true
		}
	}
	return false
}
