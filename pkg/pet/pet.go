// Package pet 实现桌面宠物的行为核心
//
// Pet 是进程内唯一的协调者：持有位置、朝向、尺寸、参数和当前状态，
// 把调度器的各个定时器接到状态机上，并分发鼠标事件和声音播放请求。
// 所有方法都必须在调度器所在的 goroutine 中调用。
package pet

import (
	"image"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/decker502/quackduck/pkg/config"
	"github.com/decker502/quackduck/pkg/sched"
	"github.com/decker502/quackduck/pkg/skin"
	"github.com/decker502/quackduck/pkg/stimulus"
	"github.com/decker502/quackduck/pkg/traits"
	"golang.org/x/time/rate"
)

// historySize 状态历史保留条数
const historySize = 10

// AudioSink 声音播放
type AudioSink interface {
	Play(s skin.Sound, volume float64) error
}

// Cursor 全局光标位置
type Cursor interface {
	CursorPosition() image.Point
}

// CursorFunc 函数适配器
type CursorFunc func() image.Point

// CursorPosition 实现 Cursor
func (f CursorFunc) CursorPosition() image.Point {
	return f()
}

// Transition 一条状态转换记录
type Transition struct {
	At   time.Time
	From Kind
	To   Kind
}

// Options 创建 Pet 的依赖
type Options struct {
	Scheduler *sched.Scheduler
	Store     *skin.Store
	Settings  *config.Settings

	ScreenWidth  int
	ScreenHeight int

	Audio      AudioSink         // 可为 nil
	Cursor     Cursor            // 可为 nil（光标视为在屏幕外）
	Fullscreen stimulus.Detector // 可为 nil（从不暂停）
	Volume     *stimulus.VolumeFeed

	// Rand 运行时随机源，nil 时使用随机种子
	Rand *rand.Rand

	// OnTransition 每次状态转换后回调（调试界面使用）
	OnTransition func(Transition)
}

// Pet 宠物协调者
type Pet struct {
	sched    *sched.Scheduler
	store    *skin.Store
	settings *config.Settings
	audio    AudioSink
	cursor   Cursor
	rng      *rand.Rand
	volume   *stimulus.VolumeFeed

	traits traits.Traits

	x, y        float64
	direction   int
	facingRight bool
	boost       float64
	frame       *image.RGBA
	screenW     int
	screenH     int

	lastInteraction time.Time

	state    State
	history  []Transition
	changing bool
	started  bool

	paused      bool
	pausedAt    time.Time
	pausedTotal time.Duration
	visible     bool
	labelHidden bool

	listen     *stimulus.Hysteresis
	shake      *stimulus.ShakeDetector
	fullscreen *stimulus.FullscreenWatcher
	timers     petTimers

	hearts []*Heart
	label  labelCache

	rejectLog    rate.Sometimes
	onTransition func(Transition)
}

// New 创建宠物（尚未启动）
func New(opts Options) *Pet {
	settings := opts.Settings
	if settings == nil {
		settings = config.DefaultSettings()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	volume := opts.Volume
	if volume == nil {
		volume = stimulus.NewVolumeFeed()
	}

	p := &Pet{
		sched:        opts.Scheduler,
		store:        opts.Store,
		settings:     settings,
		audio:        opts.Audio,
		cursor:       opts.Cursor,
		rng:          rng,
		volume:       volume,
		traits:       traits.For(settings.PetName),
		direction:    1,
		facingRight:  true,
		boost:        1,
		screenW:      opts.ScreenWidth,
		screenH:      opts.ScreenHeight,
		visible:      true,
		shake:        stimulus.NewShakeDetector(),
		fullscreen:   stimulus.NewFullscreenWatcher(opts.Fullscreen),
		rejectLog:    rate.Sometimes{First: 5, Interval: 10 * time.Second},
		onTransition: opts.OnTransition,
	}
	p.store.SetSize(settings.PetSize)
	p.listen = stimulus.NewHysteresis(p.sched, settings.ActivationThreshold, p)
	p.initTimers()
	return p
}

// Start 把宠物放在屏幕顶部之上，以 Falling 状态启动所有定时器
func (p *Pet) Start() {
	if p.started {
		return
	}
	p.started = true
	p.lastInteraction = p.sched.Now()

	fw, _ := p.store.BaseFrameSize()
	p.x = float64((p.screenW - fw) / 2)
	p.y = -float64(p.height())

	p.state = NewFalling(p, true, nil)
	p.state.Enter()
	p.startTimers()
	log.Printf("[Pet] Started %q at (%d, %d), traits %+v", p.settings.PetName, p.X(), p.Y(), p.traits)
}

// Stop 停止所有定时器并退出当前状态
func (p *Pet) Stop() {
	if !p.started {
		return
	}
	p.started = false
	p.stopTimers()
	p.listen.Reset()
	p.timers.fullscreen.Stop()
	if p.state != nil {
		p.state.Exit(p.state)
	}
	log.Printf("[Pet] Stopped")
}

// ChangeState 请求状态转换
//
// 被守卫拒绝、在另一次转换中嵌套调用、或全屏暂停期间调用时返回 false。
func (p *Pet) ChangeState(next State) bool {
	return p.transition(next, nil)
}

func (p *Pet) transition(next State, replay *MouseEvent) bool {
	if next == nil || p.state == nil {
		return false
	}
	if p.changing {
		p.rejectLog.Do(func() {
			log.Printf("[Pet] Dropped nested transition to %s", next.Kind())
		})
		return false
	}
	if p.paused {
		return false
	}
	cur := p.state.Kind()
	if reason := p.guard(cur, next.Kind()); reason != "" {
		p.rejectLog.Do(func() {
			log.Printf("[Pet] Rejected %s -> %s: %s", cur, next.Kind(), reason)
		})
		return false
	}

	p.changing = true
	defer func() { p.changing = false }()

	old := p.state
	old.Exit(next)
	p.state = next
	t := p.record(old.Kind(), next.Kind())
	next.Enter()
	if replay != nil {
		next.MousePress(*replay)
	}
	p.updateShakeDetection()

	log.Printf("[Pet] %s -> %s", t.From, t.To)
	if p.onTransition != nil {
		p.onTransition(t)
	}
	return true
}

// guard 返回拒绝原因，允许时返回空串
func (p *Pet) guard(cur, next Kind) string {
	switch {
	case cur == KindSleeping && !next.in(KindDragging, KindPlayful, KindListening, KindJumping, KindWalking):
		return "sleeping"
	case next.in(KindRunning, KindAttack) && p.Airborne():
		return "airborne"
	case cur == KindPlayful && next == KindIdle && p.Airborne():
		return "airborne"
	case cur == KindPlayful && next == KindListening:
		return "playful"
	}
	return ""
}

// changeOr 转换到 next，被拒绝时转换到 fallback
func (p *Pet) changeOr(next, fallback State) {
	if !p.ChangeState(next) {
		abandon(next)
		p.ChangeState(fallback)
	}
}

// reenter 换肤和改尺寸后刷新当前状态的帧引用，帧游标归零
// 不经过守卫，也不记录历史；状态参数和状态私有定时器保持不变
func (p *Pet) reenter() {
	if p.state == nil || p.changing {
		return
	}
	p.state.refresh()
}

func (p *Pet) record(from, to Kind) Transition {
	at := p.sched.Now()
	if n := len(p.history); n > 0 && !at.After(p.history[n-1].At) {
		at = p.history[n-1].At.Add(time.Nanosecond)
	}
	t := Transition{At: at, From: from, To: to}
	p.history = append(p.history, t)
	if len(p.history) > historySize {
		p.history = p.history[len(p.history)-historySize:]
	}
	return t
}

// newState 按类型创建默认参数的状态
func (p *Pet) newState(k Kind) State {
	switch k {
	case KindIdle:
		return NewIdle(p)
	case KindWalking:
		return NewWalking(p)
	case KindFalling:
		return NewFalling(p, true, nil)
	case KindLanding:
		return NewLanding(p, nil)
	case KindJumping:
		return NewJumping(p, nil)
	case KindDragging:
		return NewDragging(p)
	case KindSleeping:
		return NewSleeping(p)
	case KindListening:
		return NewListening(p)
	case KindPlayful:
		return NewPlayful(p)
	case KindAttack:
		return NewAttack(p, KindWalking)
	case KindRunning:
		return NewRunning(p)
	}
	return NewWalking(p)
}

// ForceState 调试用：请求转换到指定类型（仍受守卫约束）
func (p *Pet) ForceState(k Kind) bool {
	p.touch()
	return p.ChangeState(p.newState(k))
}

// DebugTouch 调试用：重置最后交互时间
func (p *Pet) DebugTouch() {
	p.touch()
}

// touch 记录一次真实交互
func (p *Pet) touch() {
	if now := p.sched.Now(); now.After(p.lastInteraction) {
		p.lastInteraction = now
	}
}

// clock 排除全屏暂停时间的时钟，状态内的持续时间都以它计算
func (p *Pet) clock() time.Time {
	now := p.sched.Now()
	paused := p.pausedTotal
	if p.paused {
		paused += now.Sub(p.pausedAt)
	}
	return now.Add(-paused)
}

func (p *Pet) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*p.rng.Float64()
}

func (p *Pet) cursorPos() image.Point {
	if p.cursor == nil {
		return image.Pt(-1<<20, -1<<20)
	}
	return p.cursor.CursorPosition()
}

// startDrag 进入拖拽并重放按下事件（记录抓取偏移）
func (p *Pet) startDrag(press MouseEvent) bool {
	return p.transition(NewDragging(p), &press)
}

// ----- 几何 -----

// X 精灵左上角横坐标
func (p *Pet) X() int { return int(math.Round(p.x)) }

// Y 精灵左上角纵坐标
func (p *Pet) Y() int { return int(math.Round(p.y)) }

// Position 精灵左上角
func (p *Pet) Position() image.Point { return image.Pt(p.X(), p.Y()) }

func (p *Pet) width() int {
	w, _ := p.store.FrameSize()
	return w
}

func (p *Pet) height() int {
	_, h := p.store.FrameSize()
	return h
}

// Size 精灵尺寸（像素）
func (p *Pet) Size() (int, int) {
	return p.store.FrameSize()
}

// groundY 精灵底部应停靠的绝对 y
func (p *Pet) groundY() int {
	return p.screenH - p.settings.GroundLevel
}

// GroundLevel 返回地面的绝对 y
func (p *Pet) GroundLevel() int {
	return p.groundY()
}

// Center 精灵中心
func (p *Pet) Center() image.Point {
	w, h := p.store.FrameSize()
	return image.Pt(p.X()+w/2, p.Y()+h/2)
}

// Airborne 是否在空中（下落、跳跃，或底部离开地面）
func (p *Pet) Airborne() bool {
	if p.state != nil && p.state.Kind().Airborne() {
		return true
	}
	if p.state != nil && p.state.Kind() == KindDragging {
		return false
	}
	return p.y+float64(p.height()) < float64(p.groundY())-1
}

func (p *Pet) clampX() {
	maxX := float64(p.screenW - p.width())
	if p.x > maxX {
		p.x = maxX
	}
	if p.x < 0 {
		p.x = 0
	}
}

func (p *Pet) clampToGround() {
	p.y = float64(p.groundY() - p.height())
}

// Speed 当前每物理 tick 的移动像素
func (p *Pet) Speed() float64 {
	base := p.traits.BaseSpeed
	if p.settings.DuckSpeed > 0 {
		base = p.settings.DuckSpeed
	}
	return base * float64(p.store.Size()) / 3 * p.boost
}

func (p *Pet) idleDuration() time.Duration {
	return p.settings.IdleDurationD()
}

// SleepTimeout 生效的入睡超时
func (p *Pet) SleepTimeout() time.Duration {
	if p.settings.SleepTimeout > 0 {
		return p.settings.SleepTimeoutD()
	}
	return p.traits.SleepTimeout
}

// PlayfulProbability 生效的玩耍概率
func (p *Pet) PlayfulProbability() float64 {
	if p.settings.PlayfulBehaviorProbability > 0 {
		return p.settings.PlayfulBehaviorProbability
	}
	return p.traits.PlayfulProb
}

// ----- 访问器 -----

// State 当前状态
func (p *Pet) State() State { return p.state }

// Kind 当前状态类型
func (p *Pet) Kind() Kind { return p.state.Kind() }

// History 最近的状态转换（旧的在前）
func (p *Pet) History() []Transition {
	out := make([]Transition, len(p.history))
	copy(out, p.history)
	return out
}

// Frame 当前帧
func (p *Pet) Frame() *image.RGBA { return p.frame }

// FacingRight 朝右时不镜像
func (p *Pet) FacingRight() bool { return p.facingRight }

// Direction 移动方向 ±1
func (p *Pet) Direction() int { return p.direction }

// Visible 全屏暂停时隐藏
func (p *Pet) Visible() bool { return p.visible }

// Paused 是否处于全屏暂停
func (p *Pet) Paused() bool { return p.paused }

// Traits 名字生成的参数
func (p *Pet) Traits() traits.Traits { return p.traits }

// Settings 当前设置
func (p *Pet) Settings() *config.Settings { return p.settings }

// LastInteraction 最后一次真实交互的时间
func (p *Pet) LastInteraction() time.Time { return p.lastInteraction }

// ScreenSize 屏幕尺寸
func (p *Pet) ScreenSize() (int, int) { return p.screenW, p.screenH }

// ----- 迟滞检测回调（stimulus.ListenTarget） -----

// IsListening 实现 stimulus.ListenTarget
func (p *Pet) IsListening() bool {
	return p.state != nil && p.state.Kind() == KindListening
}

// CanStartListening 实现 stimulus.ListenTarget
func (p *Pet) CanStartListening() bool {
	if p.state == nil || p.paused {
		return false
	}
	return !p.state.Kind().in(KindJumping, KindFalling, KindDragging, KindPlayful, KindLanding)
}

// StartListening 实现 stimulus.ListenTarget
func (p *Pet) StartListening() {
	p.ChangeState(NewListening(p))
}

// StopListening 实现 stimulus.ListenTarget
func (p *Pet) StopListening() {
	p.ChangeState(NewWalking(p))
}

// Touch 实现 stimulus.ListenTarget
func (p *Pet) Touch() {
	p.touch()
}
