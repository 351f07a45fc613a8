package pet

import "image"

// Label 名字标签的位置
//
// X 为标签水平中心，Y 为标签底边。
type Label struct {
	Text     string
	X, Y     int
	FontSize int
	Visible  bool
}

type labelCache struct {
	frame *image.RGBA
	top   int
	pos   Label
}

// opaqueTop 自上而下扫描第一行含非透明像素的行号，全透明时返回 0
func opaqueTop(img *image.RGBA) int {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				return y - b.Min.Y
			}
		}
	}
	return 0
}

// updateLabel 每个物理 tick 重新计算名字标签位置
func (p *Pet) updateLabel() {
	if p.label.frame != p.frame {
		p.label.frame = p.frame
		p.label.top = opaqueTop(p.frame)
	}

	font := p.settings.FontBaseSize * p.store.Size() / 3
	if font < 1 {
		font = 1
	}
	w, _ := p.store.FrameSize()

	l := Label{
		Text:     p.settings.PetName,
		X:        p.X() + w/2,
		Y:        p.Y() + p.label.top - p.settings.NameOffsetY,
		FontSize: font,
		Visible:  p.settings.ShowName && p.settings.PetName != "" && !p.labelHidden && p.visible,
	}
	l.X = clampInt(l.X, 0, p.screenW)
	l.Y = clampInt(l.Y, font, p.screenH)
	p.label.pos = l
}

// Label 返回最近一次计算的名字标签
func (p *Pet) Label() Label {
	return p.label.pos
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
