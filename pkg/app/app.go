// Package app 提供宠物的 ebiten 窗口包装器
//
// 窗口无边框、透明、置顶，大小只包住精灵及其上方的名字标签和爱心，
// 每帧跟随精灵移动。调度器在 ebiten Update 中推进到墙上时间，
// 所有定时器回调因此都在 UI goroutine 上执行。
package app

import (
	"image"
	"image/color"
	"log"
	"time"

	"github.com/decker502/quackduck/pkg/pet"
	"github.com/decker502/quackduck/pkg/sched"
	"github.com/decker502/quackduck/pkg/skin"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// MaxLag 调度器允许落后的最长时间（例如系统休眠唤醒后）
const MaxLag = 2 * time.Second

// Options 应用依赖
type Options struct {
	Pet       *pet.Pet
	Scheduler *sched.Scheduler
	Store     *skin.Store
	Now       func() time.Time // 默认 time.Now
}

// App 实现 ebiten.Game 接口
type App struct {
	pet   *pet.Pet
	sched *sched.Scheduler
	store *skin.Store
	now   func() time.Time

	mouse  mouseTracker
	window image.Rectangle // 当前窗口矩形（屏幕坐标）

	gen    int
	images map[*image.RGBA]*ebiten.Image // 帧 -> GPU 图片
	heart  *ebiten.Image
}

// New 创建应用
func New(opts Options) *App {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	opts.Scheduler.MaxLag = MaxLag
	return &App{
		pet:    opts.Pet,
		sched:  opts.Scheduler,
		store:  opts.Store,
		now:    now,
		images: make(map[*image.RGBA]*ebiten.Image),
		heart:  ebiten.NewImageFromImage(heartImage(2)),
	}
}

// Run 设置窗口并运行 ebiten 主循环，直到窗口关闭或按下 ESC
func Run(a *App, title string) error {
	ebiten.SetWindowDecorated(false)  // 无边框
	ebiten.SetScreenTransparent(true) // 透明背景
	ebiten.SetWindowFloating(true)    // 始终置顶
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(60)

	a.syncWindow()
	log.Printf("[App] Window at %v", a.window)

	return ebiten.RunGameWithOptions(a, &ebiten.RunGameOptions{ScreenTransparent: true})
}

// Update 推进调度器并翻译鼠标输入
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	a.sched.AdvanceTo(a.now())

	cx, cy := ebiten.CursorPosition()
	wx, wy := ebiten.WindowPosition()
	w, h := a.store.FrameSize()
	a.mouse.update(mouseSnapshot{
		Now:    a.now(),
		Left:   ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Global: image.Pt(wx+cx, wy+cy),
		Sprite: image.Rectangle{Min: a.pet.Position(), Max: a.pet.Position().Add(image.Pt(w, h))},
	}, a.pet)

	a.syncWindow()
	return nil
}

// syncWindow 让窗口跟随精灵
func (a *App) syncWindow() {
	w, h := a.store.FrameSize()
	sprite := image.Rectangle{Min: a.pet.Position(), Max: a.pet.Position().Add(image.Pt(w, h))}
	r := windowRect(sprite, a.pet.Label().FontSize)
	if r == a.window {
		return
	}
	if r.Size() != a.window.Size() {
		ebiten.SetWindowSize(r.Dx(), r.Dy())
	}
	if r.Min != a.window.Min {
		ebiten.SetWindowPosition(r.Min.X, r.Min.Y)
	}
	a.window = r
}

// frameImage 返回帧对应的 GPU 图片，换肤或改尺寸后重建缓存
func (a *App) frameImage(frame *image.RGBA) *ebiten.Image {
	if gen := a.store.Generation(); gen != a.gen {
		for _, img := range a.images {
			img.Deallocate()
		}
		a.images = make(map[*image.RGBA]*ebiten.Image)
		a.gen = gen
	}
	img, ok := a.images[frame]
	if !ok {
		img = ebiten.NewImageFromImage(frame)
		a.images[frame] = img
	}
	return img
}

// Draw 绘制精灵、名字标签和爱心
// 全屏暂停时什么都不画，窗口完全透明
func (a *App) Draw(screen *ebiten.Image) {
	if !a.pet.Visible() {
		return
	}
	origin := a.window.Min

	if frame := a.pet.Frame(); frame != nil {
		op := &ebiten.DrawImageOptions{}
		if !a.pet.FacingRight() {
			op.GeoM.Scale(-1, 1)
			op.GeoM.Translate(float64(frame.Bounds().Dx()), 0)
		}
		pos := a.pet.Position().Sub(origin)
		op.GeoM.Translate(float64(pos.X), float64(pos.Y))
		screen.DrawImage(a.frameImage(frame), op)
	}

	for _, h := range a.pet.Hearts() {
		op := &ebiten.DrawImageOptions{}
		hb := a.heart.Bounds()
		op.GeoM.Translate(float64(h.X-origin.X-hb.Dx()/2), float64(h.Y-origin.Y-hb.Dy()))
		op.ColorScale.ScaleAlpha(float32(h.Alpha))
		screen.DrawImage(a.heart, op)
	}

	if l := a.pet.Label(); l.Visible {
		a.drawLabel(screen, l, origin)
	}
}

// drawLabel 以标签中心和底边为锚点绘制名字
func (a *App) drawLabel(screen *ebiten.Image, l pet.Label, origin image.Point) {
	face := basicfont.Face7x13
	scale := float64(l.FontSize) / float64(face.Height)
	width := float64(text.BoundString(face, l.Text).Dx()) * scale

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(l.X-origin.X)-width/2, float64(l.Y-origin.Y))
	op.ColorScale.ScaleWithColor(color.White)
	text.DrawWithOptions(screen, l.Text, face, op)
}

// Layout 画布大小等于窗口大小
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
