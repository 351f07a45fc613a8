package cli

import (
	"context"
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/spf13/cobra"

	"github.com/decker502/quackduck/internal/capture"
	"github.com/decker502/quackduck/internal/crash"
	"github.com/decker502/quackduck/internal/desktop"
	"github.com/decker502/quackduck/pkg/app"
	"github.com/decker502/quackduck/pkg/game"
	"github.com/decker502/quackduck/pkg/pet"
	"github.com/decker502/quackduck/pkg/sched"
	"github.com/decker502/quackduck/pkg/stimulus"
)

// audioSampleRate ebiten 音频上下文采样率
const audioSampleRate = 48000

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the desktop pet (default when no command is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPet(opts)
		},
	}
}

// runPet 组装所有组件并运行 ebiten 主循环，退出时保存设置
func runPet(opts *options) error {
	closer := opts.setupLogging()
	defer closer.Close()
	defer crash.Recover(opts.logDir, Version)

	sm, err := opts.loadSettings()
	if err != nil {
		return err
	}
	settings := sm.GetSettings()
	store := newStore(settings.SelectedSkin)

	var (
		cursor     pet.Cursor = pet.CursorFunc(windowCursor)
		fullscreen stimulus.Detector
	)
	screenW, screenH := 1920, 1080
	if m := ebiten.Monitor(); m != nil {
		screenW, screenH = m.Size()
	}
	if x11, xerr := desktop.OpenX11(); xerr != nil {
		log.Printf("[Desktop] X11 unavailable: %v (no fullscreen pause)", xerr)
	} else {
		defer x11.Close()
		cursor = x11
		fullscreen = x11
		screenW, screenH = x11.ScreenSize()
	}

	scheduler := sched.New(time.Now())
	feed := stimulus.NewVolumeFeed()
	sounds := game.NewAudioManager(audio.NewContext(audioSampleRate), store.Generation)
	defer sounds.Close()

	p := pet.New(pet.Options{
		Scheduler:    scheduler,
		Store:        store,
		Settings:     settings,
		ScreenWidth:  screenW,
		ScreenHeight: screenH,
		Audio:        sounds,
		Cursor:       cursor,
		Fullscreen:   fullscreen,
		Volume:       feed,
	})

	mic := capture.New(opts.env.MicCommand, settings.SelectedMicIndex, feed)
	if cerr := mic.Start(context.Background()); cerr != nil {
		log.Printf("[Capture] Warning: %v (listening disabled)", cerr)
	}
	defer mic.Stop()

	p.Start()
	defer p.Stop()

	defer func() {
		if serr := sm.Save(); serr != nil {
			log.Printf("[Settings] Warning: %v", serr)
		}
	}()

	return app.Run(app.New(app.Options{
		Pet:       p,
		Scheduler: scheduler,
		Store:     store,
	}), "QuackDuck")
}

// windowCursor 没有 X11 时用窗口位置加窗口内光标位置近似全局光标
func windowCursor() image.Point {
	cx, cy := ebiten.CursorPosition()
	wx, wy := ebiten.WindowPosition()
	return image.Pt(wx+cx, wy+cy)
}
