package desktop

import (
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// X11 X 服务器连接
// 方法可以在任意 goroutine 调用
type X11 struct {
	mu     sync.Mutex
	conn   *xgb.Conn
	root   xproto.Window
	screen image.Rectangle

	atomActive     xproto.Atom
	atomState      xproto.Atom
	atomFullscreen xproto.Atom
}

// OpenX11 连接 X 服务器（读取 DISPLAY）
func OpenX11() (*X11, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("desktop: connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	if setup == nil {
		conn.Close()
		return nil, errors.New("desktop: no X setup info")
	}
	scr := setup.DefaultScreen(conn)

	x := &X11{
		conn:   conn,
		root:   scr.Root,
		screen: image.Rect(0, 0, int(scr.WidthInPixels), int(scr.HeightInPixels)),
	}
	for name, dst := range map[string]*xproto.Atom{
		"_NET_ACTIVE_WINDOW":       &x.atomActive,
		"_NET_WM_STATE":            &x.atomState,
		"_NET_WM_STATE_FULLSCREEN": &x.atomFullscreen,
	} {
		atom, err := x.intern(name)
		if err != nil {
			conn.Close()
			return nil, err
		}
		*dst = atom
	}

	log.Printf("[Desktop] Connected to X server, screen %dx%d", x.screen.Dx(), x.screen.Dy())
	return x, nil
}

func (x *X11) intern(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(x.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("desktop: intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

// Close 断开连接
func (x *X11) Close() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn != nil {
		x.conn.Close()
		x.conn = nil
	}
}

// ScreenSize 默认屏幕尺寸
func (x *X11) ScreenSize() (int, int) {
	return x.screen.Dx(), x.screen.Dy()
}

// CursorPosition 全局光标位置，查询失败时返回屏幕外的点
func (x *X11) CursorPosition() image.Point {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn == nil {
		return image.Pt(-1<<20, -1<<20)
	}
	reply, err := xproto.QueryPointer(x.conn, x.root).Reply()
	if err != nil {
		return image.Pt(-1<<20, -1<<20)
	}
	return image.Pt(int(reply.RootX), int(reply.RootY))
}

// IsForegroundFullscreen 前台窗口是否全屏（桌面窗口除外）
func (x *X11) IsForegroundFullscreen() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.conn == nil {
		return false
	}

	win, ok := x.activeWindow()
	if !ok {
		return false
	}
	rect, ok := x.windowRect(win)
	if !ok {
		return false
	}
	return isFullscreen(x.hasFullscreenState(win), rect, x.screen, x.windowClass(win))
}

func (x *X11) activeWindow() (xproto.Window, bool) {
	reply, err := xproto.GetProperty(x.conn, false, x.root, x.atomActive, xproto.AtomWindow, 0, 1).Reply()
	if err != nil || reply.Format != 32 || len(reply.Value) < 4 {
		return 0, false
	}
	win := xproto.Window(xgb.Get32(reply.Value))
	return win, win != 0
}

func (x *X11) windowRect(win xproto.Window) (image.Rectangle, bool) {
	geom, err := xproto.GetGeometry(x.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return image.Rectangle{}, false
	}
	pos, err := xproto.TranslateCoordinates(x.conn, win, x.root, 0, 0).Reply()
	if err != nil {
		return image.Rectangle{}, false
	}
	min := image.Pt(int(pos.DstX), int(pos.DstY))
	return image.Rectangle{Min: min, Max: min.Add(image.Pt(int(geom.Width), int(geom.Height)))}, true
}

func (x *X11) hasFullscreenState(win xproto.Window) bool {
	reply, err := xproto.GetProperty(x.conn, false, win, x.atomState, xproto.AtomAtom, 0, 32).Reply()
	if err != nil || reply.Format != 32 {
		return false
	}
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		if xproto.Atom(xgb.Get32(reply.Value[i:])) == x.atomFullscreen {
			return true
		}
	}
	return false
}

func (x *X11) windowClass(win xproto.Window) []string {
	reply, err := xproto.GetProperty(x.conn, false, win, xproto.AtomWmClass, xproto.AtomString, 0, 64).Reply()
	if err != nil {
		return nil
	}
	return parseWMClass(reply.Value)
}
