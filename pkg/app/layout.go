package app

import (
	"image"
	"image/color"
)

// 窗口在精灵周围留出的边距：上方放名字标签和爱心
const (
	padX      = 24
	padTopMin = 48
)

// windowRect 包住精灵、名字标签和爱心的窗口矩形（屏幕坐标）
func windowRect(sprite image.Rectangle, fontSize int) image.Rectangle {
	top := padTopMin
	if t := fontSize*2 + 40; t > top {
		top = t
	}
	return image.Rect(sprite.Min.X-padX, sprite.Min.Y-top, sprite.Max.X+padX, sprite.Max.Y)
}

// heartShape 9x8 的爱心位图
var heartShape = []string{
	".XX...XX.",
	"XXXX.XXXX",
	"XXXXXXXXX",
	"XXXXXXXXX",
	".XXXXXXX.",
	"..XXXXX..",
	"...XXX...",
	"....X....",
}

// heartImage 生成按 scale 放大的爱心图片
func heartImage(scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	w, h := len(heartShape[0]), len(heartShape)
	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	red := color.RGBA{R: 230, G: 40, B: 70, A: 255}
	for y, row := range heartShape {
		for x, c := range row {
			if c != 'X' {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetRGBA(x*scale+dx, y*scale+dy, red)
				}
			}
		}
	}
	return img
}
