package sched

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// TestAfterFiresOnce 测试单次定时器只触发一次
func TestAfterFiresOnce(t *testing.T) {
	s := New(epoch)
	count := 0
	timer := s.After("once", 100*time.Millisecond, func() { count++ })

	s.AdvanceBy(99 * time.Millisecond)
	if count != 0 {
		t.Fatalf("Expected no firing before deadline, got %d", count)
	}
	s.AdvanceBy(time.Millisecond)
	if count != 1 {
		t.Fatalf("Expected 1 firing at deadline, got %d", count)
	}
	s.AdvanceBy(time.Second)
	if count != 1 {
		t.Errorf("Single-shot timer fired again: %d", count)
	}
	if timer.Active() {
		t.Error("Expected fired single-shot timer to be inactive")
	}
}

// TestEveryReplaysMissedTicks 测试大步推进时周期定时器逐个补发，且 Now 等于到期时间
func TestEveryReplaysMissedTicks(t *testing.T) {
	s := New(epoch)
	var seen []time.Duration
	s.Every("tick", 20*time.Millisecond, func() {
		seen = append(seen, s.Now().Sub(epoch))
	})

	s.AdvanceBy(100 * time.Millisecond)

	if len(seen) != 5 {
		t.Fatalf("Expected 5 ticks, got %d", len(seen))
	}
	for i, d := range seen {
		want := time.Duration(i+1) * 20 * time.Millisecond
		if d != want {
			t.Errorf("tick %d: expected Now()=%v, got %v", i, want, d)
		}
	}
}

// TestStopCancelsSynchronously 测试 Stop 同步取消
func TestStopCancelsSynchronously(t *testing.T) {
	s := New(epoch)
	count := 0
	var timer *Timer
	timer = s.Every("tick", 10*time.Millisecond, func() {
		count++
		if count == 3 {
			timer.Stop()
		}
	})

	s.AdvanceBy(time.Second)
	if count != 3 {
		t.Errorf("Expected timer to stop itself after 3 ticks, got %d", count)
	}
	if s.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", s.Pending())
	}
}

// TestStartRestartsFullInterval 测试重启后等待完整间隔
func TestStartRestartsFullInterval(t *testing.T) {
	s := New(epoch)
	count := 0
	timer := s.Every("dir", 20*time.Second, func() { count++ })

	s.AdvanceBy(15 * time.Second)
	timer.Stop()
	s.AdvanceBy(30 * time.Second)
	timer.Start()

	s.AdvanceBy(19 * time.Second)
	if count != 0 {
		t.Fatalf("Expected restarted timer to wait a full interval, fired %d", count)
	}
	s.AdvanceBy(time.Second)
	if count != 1 {
		t.Errorf("Expected 1 firing after full interval, got %d", count)
	}
}

// TestChronologicalOrder 测试按到期时间顺序触发
func TestChronologicalOrder(t *testing.T) {
	s := New(epoch)
	var order []string
	s.After("b", 30*time.Millisecond, func() { order = append(order, "b") })
	s.After("a", 10*time.Millisecond, func() { order = append(order, "a") })
	s.After("c", 30*time.Millisecond, func() { order = append(order, "c") })

	s.AdvanceBy(time.Second)

	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, order)
			break
		}
	}
}

// TestCallbackCanArmTimers 测试回调中可以启动新定时器
func TestCallbackCanArmTimers(t *testing.T) {
	s := New(epoch)
	fired := false
	s.After("outer", 10*time.Millisecond, func() {
		s.After("inner", 10*time.Millisecond, func() { fired = true })
	})

	s.AdvanceBy(25 * time.Millisecond)
	if !fired {
		t.Error("Expected timer armed inside a callback to fire within the same advance")
	}
}

// TestMaxLagResynchronises 测试超过 MaxLag 后重新对齐
func TestMaxLagResynchronises(t *testing.T) {
	s := New(epoch)
	s.MaxLag = time.Second
	count := 0
	s.Every("physics", 20*time.Millisecond, func() { count++ })

	s.AdvanceBy(time.Minute)

	if count > 5 {
		t.Errorf("Expected lagging timer to resync instead of replaying, fired %d times", count)
	}
}

// TestAdvanceBackwardsIgnored 测试时间倒退被忽略
func TestAdvanceBackwardsIgnored(t *testing.T) {
	s := New(epoch)
	s.AdvanceTo(epoch.Add(-time.Second))
	if !s.Now().Equal(epoch) {
		t.Errorf("Expected clock to stay at %v, got %v", epoch, s.Now())
	}
}

// TestZeroPeriodDoesNotSpin 测试零间隔的周期定时器按最小间隔触发，推进能够返回
func TestZeroPeriodDoesNotSpin(t *testing.T) {
	s := New(epoch)
	count := 0
	s.Every("zero", 0, func() { count++ })

	s.AdvanceBy(10 * time.Millisecond)

	want := int(10 * time.Millisecond / MinPeriod)
	if count != want {
		t.Errorf("Expected %d firings, got %d", want, count)
	}
	if !s.Now().Equal(epoch.Add(10 * time.Millisecond)) {
		t.Errorf("Expected clock at +10ms, got %v", s.Now().Sub(epoch))
	}
}
