package pet

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/decker502/quackduck/pkg/config"
	"github.com/decker502/quackduck/pkg/sched"
	"github.com/decker502/quackduck/pkg/skin"
	"github.com/decker502/quackduck/pkg/stimulus"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	screenW = 1920
	screenH = 1080
)

// lowSource 让所有随机抽样取区间下限（IntN 返回 0）
type lowSource struct{}

func (lowSource) Uint64() uint64 { return 1 << 10 }

func lowRand() *rand.Rand { return rand.New(lowSource{}) }

// MockAudio 记录播放请求
type MockAudio struct {
	played []string
	volume float64
	err    error
}

func (m *MockAudio) Play(s skin.Sound, volume float64) error {
	if m.err != nil {
		return m.err
	}
	m.played = append(m.played, s.Name)
	m.volume = volume
	return nil
}

// MockDetector 可控的全屏检测
type MockDetector struct {
	fullscreen bool
}

func (m *MockDetector) IsForegroundFullscreen() bool { return m.fullscreen }

// tileSheet 6x4 瓦片，每个瓦片上方 8 行透明
func tileSheet() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 6*32, 4*32))
	for r := 0; r < 4; r++ {
		for c := 0; c < 6; c++ {
			col := color.RGBA{R: uint8(30 * c), G: uint8(60 * r), B: 120, A: 255}
			for y := r*32 + 8; y < (r+1)*32; y++ {
				for x := c * 32; x < (c+1)*32; x++ {
					img.SetRGBA(x, y, col)
				}
			}
		}
	}
	return img
}

// baseAnimations 默认测试皮肤（不含 running/attack，保证随机检查不触发）
func baseAnimations() map[string][]string {
	return map[string][]string{
		"idle":             {"0:0"},
		"idle_blink":       {"0:0", "0:2"},
		"walk":             {"1:0", "1:1", "1:2", "1:3", "1:4", "1:5"},
		"listen":           {"2:1"},
		"fall":             {"2:3"},
		"jump":             {"2:0", "2:1", "2:2", "2:3"},
		"land":             {"2:2"},
		"sleep":            {"0:1"},
		"sleep_transition": {"2:1"},
	}
}

func testSkin(t *testing.T, anims map[string][]string) *skin.Skin {
	t.Helper()
	m := &skin.Manifest{
		Spritesheet: "sprite.png",
		FrameWidth:  32,
		FrameHeight: 32,
		Animations:  anims,
		Sound:       skin.SoundList{"wuak.wav"},
	}
	var buf bytes.Buffer
	if err := skin.WriteArchive(&buf, m, tileSheet(), []skin.Sound{{Name: "wuak.wav", Data: []byte("RIFF")}}); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}
	sk, err := skin.ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "default")
	if err != nil {
		t.Fatalf("ReadArchive: %v", err)
	}
	return sk
}

type harness struct {
	t        *testing.T
	sched    *sched.Scheduler
	store    *skin.Store
	settings *config.Settings
	audio    *MockAudio
	detector *MockDetector
	feed     *stimulus.VolumeFeed
	cursor   image.Point
	cursorFn func() image.Point
	pet      *Pet
}

type harnessOption func(*harness, *Options)

func withAnimations(anims map[string][]string) harnessOption {
	return func(h *harness, _ *Options) {
		sk := testSkin(h.t, anims)
		h.store = skin.NewStore(func() (*skin.Skin, error) { return sk, nil })
	}
}

func withSettings(fn func(*config.Settings)) harnessOption {
	return func(h *harness, _ *Options) { fn(h.settings) }
}

// noPlayful 让每 10 分钟的玩耍检查几乎不可能触发
var noPlayful = withSettings(func(s *config.Settings) { s.PlayfulBehaviorProbability = 1e-15 })

func withRand(r *rand.Rand) harnessOption {
	return func(_ *harness, o *Options) { o.Rand = r }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		sched:    sched.New(epoch),
		settings: config.DefaultSettings(),
		audio:    &MockAudio{},
		detector: &MockDetector{},
		feed:     stimulus.NewVolumeFeed(),
		cursor:   image.Pt(-5000, -5000),
	}
	h.settings.GroundLevel = 100

	o := Options{Rand: lowRand()}
	withAnimations(baseAnimations())(h, &o)
	for _, opt := range opts {
		opt(h, &o)
	}
	if err := h.store.LoadSkin(""); err != nil {
		t.Fatalf("LoadSkin: %v", err)
	}

	o.Scheduler = h.sched
	o.Store = h.store
	o.Settings = h.settings
	o.ScreenWidth = screenW
	o.ScreenHeight = screenH
	o.Audio = h.audio
	o.Fullscreen = h.detector
	o.Volume = h.feed
	o.Cursor = CursorFunc(func() image.Point {
		if h.cursorFn != nil {
			return h.cursorFn()
		}
		return h.cursor
	})
	h.pet = New(o)
	return h
}

// runUntil 以 10ms 步长推进，直到 cond 成立或超时
func (h *harness) runUntil(cond func() bool, limit time.Duration) bool {
	h.t.Helper()
	deadline := h.sched.Now().Add(limit)
	for !cond() {
		if !h.sched.Now().Before(deadline) {
			return false
		}
		h.sched.AdvanceBy(10 * time.Millisecond)
	}
	return true
}

func (h *harness) mustReach(k Kind, limit time.Duration) {
	h.t.Helper()
	if !h.runUntil(func() bool { return h.pet.Kind() == k }, limit) {
		h.t.Fatalf("Expected to reach %s within %v, still %s", k, limit, h.pet.Kind())
	}
}

// startWalking 启动并等到第一次进入 Walking
func (h *harness) startWalking() {
	h.t.Helper()
	h.pet.Start()
	h.mustReach(KindWalking, 3*time.Second)
}

func (h *harness) press(global image.Point) MouseEvent {
	ev := MouseEvent{Local: global.Sub(h.pet.Position()), Global: global, Buttons: ButtonLeft}
	h.pet.MousePress(ev)
	return ev
}

// tail 返回最近 n 条历史的目标状态序列（含第一条的起始状态）
func tail(p *Pet, n int) []Kind {
	hist := p.History()
	if len(hist) < n {
		n = len(hist)
	}
	hist = hist[len(hist)-n:]
	if len(hist) == 0 {
		return nil
	}
	out := []Kind{hist[0].From}
	for _, t := range hist {
		out = append(out, t.To)
	}
	return out
}

func equalKinds(a, b []Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var errAudio = errors.New("device busy")
