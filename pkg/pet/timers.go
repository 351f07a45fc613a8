package pet

import (
	"image"
	"log"
	"math"
	"time"

	"github.com/decker502/quackduck/pkg/sched"
	"github.com/decker502/quackduck/pkg/skin"
	"github.com/decker502/quackduck/pkg/traits"
)

// 定时器间隔
const (
	AnimationInterval    = 100 * time.Millisecond
	PhysicsInterval      = 20 * time.Millisecond
	VolumePollInterval   = 20 * time.Millisecond
	ShakePollInterval    = 50 * time.Millisecond
	SleepCheckInterval   = 10 * time.Second
	PlayfulCheckInterval = 10 * time.Minute
	AttackCheckInterval  = 5 * time.Second
	RunCheckInterval     = 5 * time.Minute
	FullscreenInterval   = 4 * time.Second
)

type petTimers struct {
	animation  *sched.Timer
	physics    *sched.Timer
	volume     *sched.Timer
	shake      *sched.Timer
	sleep      *sched.Timer
	playful    *sched.Timer
	attack     *sched.Timer
	run        *sched.Timer
	direction  *sched.Timer
	random     *sched.Timer
	sound      *sched.Timer
	fullscreen *sched.Timer
}

// pausable 全屏暂停时停止的定时器（shake 单独按状态启停）
func (t *petTimers) pausable() []*sched.Timer {
	return []*sched.Timer{t.animation, t.physics, t.volume, t.sleep, t.playful, t.attack, t.run, t.direction, t.random, t.sound}
}

func (p *Pet) initTimers() {
	s := p.sched
	p.timers = petTimers{
		animation:  s.NewTimer("animation", AnimationInterval, true, p.animationTick),
		physics:    s.NewTimer("physics", PhysicsInterval, true, p.physicsTick),
		volume:     s.NewTimer("volume", VolumePollInterval, true, p.pollVolume),
		shake:      s.NewTimer("shake", ShakePollInterval, true, p.pollShake),
		sleep:      s.NewTimer("sleep-check", SleepCheckInterval, true, p.checkSleep),
		playful:    s.NewTimer("playful-check", PlayfulCheckInterval, true, p.checkPlayful),
		attack:     s.NewTimer("attack-check", AttackCheckInterval, true, p.checkAttack),
		run:        s.NewTimer("run-check", RunCheckInterval, true, p.checkRun),
		direction:  s.NewTimer("direction", p.settings.DirectionChangeIntervalD(), true, p.changeDirection),
		random:     s.NewTimer("random-behavior", p.randomBehaviorDelay(), false, p.randomBehavior),
		sound:      s.NewTimer("next-sound", p.nextSoundDelay(), false, p.nextSound),
		fullscreen: s.NewTimer("fullscreen", FullscreenInterval, true, p.pollFullscreen),
	}
}

func (p *Pet) startTimers() {
	for _, t := range p.timers.pausable() {
		t.Start()
	}
	p.timers.fullscreen.Start()
	p.updateShakeDetection()
}

func (p *Pet) stopTimers() {
	for _, t := range p.timers.pausable() {
		t.Stop()
	}
	p.timers.shake.Stop()
	p.shake.Reset()
}

// updateShakeDetection 仅在 Idle / Walking 中检测摇晃
func (p *Pet) updateShakeDetection() {
	if p.paused || !p.started {
		return
	}
	if p.state.Kind().in(KindIdle, KindWalking) {
		if !p.timers.shake.Active() {
			p.timers.shake.Start()
		}
		return
	}
	p.timers.shake.Stop()
	p.shake.Reset()
}

// ----- tick -----

func (p *Pet) animationTick() {
	p.state.UpdateAnimation()
}

func (p *Pet) physicsTick() {
	p.state.UpdatePosition()
	if k := p.state.Kind(); k.OnGround() {
		p.clampToGround()
		if k.in(KindWalking, KindRunning, KindPlayful) {
			p.clampX()
		}
	}
	p.updateHearts()
	p.updateLabel()
}

// ----- 刺激源 -----

func (p *Pet) pollVolume() {
	if !p.volume.Running() {
		p.listen.Sample(0)
		return
	}
	p.volume.Drain(p.listen.Sample)
}

// nearCursor 光标是否在精灵中心 50·size/3 像素内
func (p *Pet) nearCursor(cur image.Point) bool {
	c := p.Center()
	r := 50 * float64(p.store.Size()) / 3
	return math.Hypot(float64(cur.X-c.X), float64(cur.Y-c.Y)) <= r
}

func (p *Pet) pollShake() {
	now := p.sched.Now()
	cur := p.cursorPos()
	if !p.nearCursor(cur) {
		p.shake.Prune(now)
		return
	}
	if p.shake.Add(now, cur) {
		p.shake.Reset()
		p.ChangeState(NewPlayful(p))
	}
}

func (p *Pet) checkSleep() {
	if p.state.Kind().in(KindFalling, KindDragging, KindListening, KindJumping, KindPlayful, KindSleeping) {
		return
	}
	if p.sched.Now().Sub(p.lastInteraction) >= p.SleepTimeout() {
		p.ChangeState(NewSleeping(p))
	}
}

func (p *Pet) checkPlayful() {
	if p.state.Kind().in(KindFalling, KindDragging, KindListening, KindJumping, KindPlayful) {
		return
	}
	if p.rng.Float64() < p.PlayfulProbability() {
		p.ChangeState(NewPlayful(p))
	}
}

func (p *Pet) checkAttack() {
	k := p.state.Kind()
	cur := p.cursorPos()
	if !k.in(KindWalking, KindIdle) || !p.store.Has(skin.AnimAttack) || !p.nearCursor(cur) {
		return
	}
	if p.rng.Float64() >= p.uniform(0.01, 0.2) {
		return
	}
	if cur.X >= p.Center().X {
		p.direction = 1
	} else {
		p.direction = -1
	}
	p.facingRight = p.direction == 1
	p.ChangeState(NewAttack(p, k))
}

func (p *Pet) checkRun() {
	if p.state.Kind().in(KindFalling, KindDragging, KindListening, KindJumping, KindPlayful, KindRunning, KindAttack) {
		return
	}
	if !p.store.Has(skin.AnimRunning) {
		return
	}
	if p.rng.Float64() < p.uniform(0.01, 0.05) {
		p.ChangeState(NewRunning(p))
	}
}

func (p *Pet) changeDirection() {
	if p.state.Kind() == KindWalking {
		p.flipDirection()
	}
}

func (p *Pet) flipDirection() {
	p.direction = -p.direction
	p.facingRight = p.direction == 1
}

func (p *Pet) randomBehaviorDelay() time.Duration {
	return seconds(p.uniform(20, 40))
}

// randomBehavior 随机进入待机或掉头
func (p *Pet) randomBehavior() {
	defer p.timers.random.StartAfter(p.randomBehaviorDelay())

	k := p.state.Kind()
	if p.rng.IntN(2) == 0 {
		if !k.in(KindIdle, KindFalling, KindJumping, KindDragging, KindSleeping, KindListening, KindLanding) {
			p.ChangeState(NewIdle(p))
		}
		return
	}
	if k.in(KindIdle, KindWalking, KindRunning) {
		p.flipDirection()
	}
}

func (p *Pet) nextSoundDelay() time.Duration {
	return time.Duration(120000+p.rng.IntN(600000-120000+1)) * time.Millisecond
}

func (p *Pet) nextSound() {
	p.PlayRandomSound()
	p.timers.sound.StartAfter(p.nextSoundDelay())
}

// PlayRandomSound 按设置的开关和音量播放一个随机声音
// 播放失败只记录日志
func (p *Pet) PlayRandomSound() bool {
	if !p.settings.SoundEnabled || p.audio == nil {
		return false
	}
	snd, ok := p.store.RandomSound()
	if !ok {
		return false
	}
	if err := p.audio.Play(snd, p.settings.SoundVolume); err != nil {
		log.Printf("[Audio] Failed to play %s: %v", snd.Name, err)
		return false
	}
	return true
}

// ----- 全屏暂停 -----

func (p *Pet) pollFullscreen() {
	fs, changed := p.fullscreen.Poll()
	if !changed {
		return
	}
	if fs {
		p.Pause()
	} else {
		p.Resume()
	}
}

// Pause 停止除全屏检测外的所有定时器并隐藏精灵，状态保持不变
func (p *Pet) Pause() {
	if p.paused || !p.started {
		return
	}
	p.stopTimers()
	p.listen.Reset()
	p.state.suspend()
	p.paused = true
	p.pausedAt = p.sched.Now()
	p.visible = false
	log.Printf("[Pet] Paused (foreground fullscreen)")
}

// Resume 以完整间隔重新启动定时器并显示精灵
func (p *Pet) Resume() {
	if !p.paused {
		return
	}
	p.paused = false
	p.pausedTotal += p.sched.Now().Sub(p.pausedAt)
	p.visible = true
	for _, t := range p.timers.pausable() {
		t.Start()
	}
	p.state.resume()
	p.updateShakeDetection()
	log.Printf("[Pet] Resumed")
}

// ----- 鼠标 -----

// MousePress 鼠标按下
func (p *Pet) MousePress(ev MouseEvent) {
	if p.paused || p.state == nil {
		return
	}
	p.touch()
	p.state.MousePress(ev)
}

// MouseMove 鼠标移动
func (p *Pet) MouseMove(ev MouseEvent) {
	if p.paused || p.state == nil {
		return
	}
	p.state.MouseMove(ev)
}

// MouseRelease 鼠标松开
func (p *Pet) MouseRelease(ev MouseEvent) {
	if p.paused || p.state == nil {
		return
	}
	p.state.MouseRelease(ev)
}

// MouseDoubleClick 双击在精灵上方放出一颗心
func (p *Pet) MouseDoubleClick(ev MouseEvent) {
	if p.paused || p.state == nil {
		return
	}
	p.touch()
	p.spawnHeart()
}

// ----- 设置变化 -----

// SetSize 修改尺寸：重建帧、保持底部位置、重新进入当前状态
func (p *Pet) SetSize(size int) {
	p.settings.PetSize = size
	p.settings.Sanitize()
	bottom := p.y + float64(p.height())
	p.store.SetSize(p.settings.PetSize)
	p.y = bottom - float64(p.height())
	p.label = labelCache{}
	p.reenter()
	p.applyGround()
}

// SetGroundLevel 修改地面（距屏幕底部的像素）
func (p *Pet) SetGroundLevel(px int) {
	p.settings.GroundLevel = px
	p.settings.Sanitize()
	p.applyGround()
}

// SetScreenSize 屏幕尺寸变化
func (p *Pet) SetScreenSize(w, h int) {
	p.screenW, p.screenH = w, h
	p.applyGround()
}

// applyGround 地面升高时贴地，降低时下落
func (p *Pet) applyGround() {
	if p.state == nil || !p.state.Kind().OnGround() {
		return
	}
	bottom := p.y + float64(p.height())
	ground := float64(p.groundY())
	switch {
	case bottom > ground:
		p.clampToGround()
	case bottom < ground-1:
		p.ChangeState(NewFalling(p, false, nil))
	}
}

// SetSkin 加载皮肤（空路径为默认皮肤），失败时已回退到默认皮肤
func (p *Pet) SetSkin(path string) error {
	err := p.store.LoadSkin(path)
	p.settings.SelectedSkin = path
	p.label = labelCache{}
	p.reenter()
	return err
}

// SetName 修改名字并重新生成参数
func (p *Pet) SetName(name string) {
	p.settings.PetName = name
	p.traits = traits.For(name)
	log.Printf("[Pet] Renamed to %q, traits %+v", name, p.traits)
}

// SetActivationThreshold 修改聆听阈值
func (p *Pet) SetActivationThreshold(v int) {
	p.settings.ActivationThreshold = v
	p.settings.Sanitize()
	p.listen.Threshold = p.settings.ActivationThreshold
}

// SetDirectionChangeInterval 修改转向间隔（秒），下次启动定时器时生效
func (p *Pet) SetDirectionChangeInterval(sec float64) {
	p.settings.DirectionChangeInterval = sec
	p.settings.Sanitize()
	p.timers.direction.SetInterval(p.settings.DirectionChangeIntervalD())
	if p.timers.direction.Active() {
		p.timers.direction.Start()
	}
}
