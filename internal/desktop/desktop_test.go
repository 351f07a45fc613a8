package desktop

import (
	"image"
	"reflect"
	"testing"
)

// TestCoversMonitor 测试窗口覆盖屏幕判断
func TestCoversMonitor(t *testing.T) {
	screen := image.Rect(0, 0, 1920, 1080)
	tests := []struct {
		name string
		win  image.Rectangle
		want bool
	}{
		{"exact", image.Rect(0, 0, 1920, 1080), true},
		{"larger", image.Rect(-2, -2, 1922, 1082), true},
		{"maximized below panel", image.Rect(0, 28, 1920, 1080), false},
		{"small", image.Rect(100, 100, 500, 400), false},
		{"empty", image.Rectangle{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coversMonitor(tt.win, screen); got != tt.want {
				t.Errorf("coversMonitor(%v) = %v, want %v", tt.win, got, tt.want)
			}
		})
	}
}

// TestParseWMClass 测试 WM_CLASS 解析
func TestParseWMClass(t *testing.T) {
	got := parseWMClass([]byte("xfdesktop\x00Xfdesktop\x00"))
	want := []string{"xfdesktop", "Xfdesktop"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseWMClass = %v, want %v", got, want)
	}
	if got := parseWMClass(nil); len(got) != 0 {
		t.Errorf("Expected no classes, got %v", got)
	}
}

// TestIsFullscreen 测试前台全屏判断（桌面窗口除外）
func TestIsFullscreen(t *testing.T) {
	screen := image.Rect(0, 0, 1920, 1080)
	full := screen
	small := image.Rect(0, 0, 800, 600)

	tests := []struct {
		name    string
		state   bool
		win     image.Rectangle
		classes []string
		want    bool
	}{
		{"video player covering screen", false, full, []string{"mpv", "mpv"}, true},
		{"fullscreen state flag", true, small, []string{"firefox", "Firefox"}, true},
		{"desktop window", false, full, []string{"desktop_window", "Nautilus"}, false},
		{"desktop case insensitive", true, full, []string{"Plasmashell"}, false},
		{"normal window", false, small, []string{"xterm"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFullscreen(tt.state, tt.win, screen, tt.classes); got != tt.want {
				t.Errorf("isFullscreen = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestOpenX11WithoutDisplay 测试没有 X 服务器时返回错误
func TestOpenX11WithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", ":9999")
	x, err := OpenX11()
	if err == nil {
		x.Close()
		t.Skip("unexpected X server on :9999")
	}
}
