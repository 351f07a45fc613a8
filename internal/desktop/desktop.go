// Package desktop 桌面环境查询：前台全屏检测、屏幕尺寸、全局光标位置
//
// 在 X11 上通过 jezek/xgb 直接查询 X 服务器；
// 连接不上时调用方回退到 ebiten 提供的窗口内信息。
package desktop

import (
	"bytes"
	"image"
	"strings"
)

// desktopClasses 桌面本身的窗口类，它们总是铺满屏幕，不算全屏应用
var desktopClasses = []string{
	"desktop_window",
	"nautilus-desktop",
	"xfdesktop",
	"plasmashell",
	"pcmanfm",
	"caja",
	"nemo-desktop",
	"xdesktop",
}

// isDesktopClass 窗口类是否属于桌面
func isDesktopClass(classes []string) bool {
	for _, c := range classes {
		c = strings.ToLower(c)
		for _, d := range desktopClasses {
			if c == d {
				return true
			}
		}
	}
	return false
}

// coversMonitor 窗口是否覆盖整个屏幕
func coversMonitor(win, screen image.Rectangle) bool {
	if win.Empty() || screen.Empty() {
		return false
	}
	return win.Min.X <= screen.Min.X && win.Min.Y <= screen.Min.Y &&
		win.Max.X >= screen.Max.X && win.Max.Y >= screen.Max.Y
}

// parseWMClass 解析 WM_CLASS 属性（以 NUL 分隔的 instance 和 class）
func parseWMClass(value []byte) []string {
	var out []string
	for _, part := range bytes.Split(value, []byte{0}) {
		if len(part) > 0 {
			out = append(out, string(part))
		}
	}
	return out
}

// isFullscreen 判断前台窗口是否全屏
//
// 参数：
//   - stateFullscreen: 窗口带有 _NET_WM_STATE_FULLSCREEN
//   - win: 窗口在根窗口坐标系中的矩形
//   - screen: 屏幕矩形
//   - classes: 窗口的 WM_CLASS
func isFullscreen(stateFullscreen bool, win, screen image.Rectangle, classes []string) bool {
	if isDesktopClass(classes) {
		return false
	}
	return stateFullscreen || coversMonitor(win, screen)
}
