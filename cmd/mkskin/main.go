// cmd/mkskin/main.go
// 生成内置默认皮肤 assets/skins/default.zip
//
// 用法：
//
//	go run ./cmd/mkskin [-o assets/skins/default.zip]
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/decker502/quackduck/pkg/skin"
)

const (
	frame   = 32
	columns = 6
	rows    = 4

	soundRate = 48000
)

var (
	bodyColor = color.RGBA{R: 250, G: 214, B: 64, A: 255}
	beakColor = color.RGBA{R: 244, G: 140, B: 36, A: 255}
	eyeColor  = color.RGBA{R: 24, G: 24, B: 24, A: 255}
	legColor  = beakColor
)

// pose 一帧鸭子的姿态参数
type pose struct {
	dy       int  // 身体上下偏移
	eyes     bool // 睁眼
	leg      int  // 两腿的前后相位 -2..2
	beakOpen bool
	tilt     int // 头部前伸
}

func manifest() *skin.Manifest {
	return &skin.Manifest{
		Spritesheet: "sprite.png",
		FrameWidth:  frame,
		FrameHeight: frame,
		Animations: map[string][]string{
			skin.AnimIdle:            {"0:0"},
			"idle_blink":             {"0:0", "0:2"},
			skin.AnimWalk:            {"1:0", "1:1", "1:2", "1:3", "1:4", "1:5"},
			skin.AnimListen:          {"2:1"},
			skin.AnimFall:            {"2:3"},
			skin.AnimJump:            {"2:0", "2:1", "2:2", "2:3"},
			skin.AnimLand:            {"2:2"},
			skin.AnimSleep:           {"0:1"},
			skin.AnimSleepTransition: {"2:1"},
			skin.AnimRunning:         {"1:0", "1:2", "1:4"},
			skin.AnimAttack:          {"3:0", "3:1", "3:2"},
		},
		Sound: skin.SoundList{"wuak.wav"},
	}
}

// poses 按 spritesheet 行列排列的姿态
func poses() [rows][columns]*pose {
	var p [rows][columns]*pose
	p[0][0] = &pose{eyes: true}
	p[0][1] = &pose{dy: 3}
	p[0][2] = &pose{}
	for i, leg := range []int{-2, -1, 0, 2, 1, 0} {
		p[1][i] = &pose{eyes: true, leg: leg, dy: i % 2}
	}
	p[2][0] = &pose{eyes: true, dy: 2}
	p[2][1] = &pose{eyes: true, beakOpen: true}
	p[2][2] = &pose{eyes: true, dy: 3, leg: 1}
	p[2][3] = &pose{eyes: true, dy: -2, leg: -1}
	p[3][0] = &pose{eyes: true, tilt: 1}
	p[3][1] = &pose{eyes: true, tilt: 3, beakOpen: true}
	p[3][2] = &pose{eyes: true, tilt: 1}
	return p
}

func fillEllipse(img *image.RGBA, cx, cy, rx, ry float64, c color.RGBA) {
	for y := int(cy - ry); y <= int(cy+ry); y++ {
		for x := int(cx - rx); x <= int(cx+rx); x++ {
			dx, dy := (float64(x)+0.5-cx)/rx, (float64(y)+0.5-cy)/ry
			if dx*dx+dy*dy <= 1 {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// drawDuck 在 (ox, oy) 开始的瓦片里画一只朝右的鸭子，上方留透明行
func drawDuck(img *image.RGBA, ox, oy int, p *pose) {
	x0, y0 := float64(ox), float64(oy+p.dy)

	// 腿
	fillRect(img, image.Rect(ox+10+p.leg, oy+27, ox+12+p.leg, oy+31), legColor)
	fillRect(img, image.Rect(ox+16-p.leg, oy+27, ox+18-p.leg, oy+31), legColor)

	// 身体和头
	fillEllipse(img, x0+13, y0+21, 10, 7, bodyColor)
	hx := x0 + 19 + float64(p.tilt)
	fillEllipse(img, hx, y0+12, 6, 6, bodyColor)

	// 嘴
	fillRect(img, image.Rect(int(hx)+5, int(y0)+12, int(hx)+10, int(y0)+14), beakColor)
	if p.beakOpen {
		fillRect(img, image.Rect(int(hx)+5, int(y0)+15, int(hx)+9, int(y0)+16), beakColor)
	}

	// 眼睛
	if p.eyes {
		fillRect(img, image.Rect(int(hx)+2, int(y0)+9, int(hx)+4, int(y0)+11), eyeColor)
	} else {
		fillRect(img, image.Rect(int(hx)+1, int(y0)+10, int(hx)+4, int(y0)+11), eyeColor)
	}
}

func spritesheet() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, columns*frame, rows*frame))
	for r, row := range poses() {
		for c, p := range row {
			if p != nil {
				drawDuck(img, c*frame, r*frame, p)
			}
		}
	}
	return img
}

// quack 合成一声 0.25 秒的 16 位单声道叫声
func quack() []byte {
	n := soundRate / 4
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / soundRate
		f := 520 - 900*t
		env := math.Sin(math.Pi * float64(i) / float64(n))
		v := env * (0.6*math.Sin(2*math.Pi*f*t) + 0.3*math.Sin(4*math.Pi*f*t))
		samples[i] = int16(v * 12000)
	}
	return wav(samples)
}

// wav 写出 RIFF/WAVE PCM 文件
func wav(samples []int16) []byte {
	var buf bytes.Buffer
	dataLen := uint32(len(samples) * 2)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))           // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))           // mono
	binary.Write(&buf, binary.LittleEndian, uint32(soundRate))   // sample rate
	binary.Write(&buf, binary.LittleEndian, uint32(soundRate*2)) // byte rate
	binary.Write(&buf, binary.LittleEndian, uint16(2))           // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16))          // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	binary.Write(&buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

func main() {
	out := flag.String("o", filepath.Join("assets", "skins", "default.zip"), "output path")
	flag.Parse()

	var buf bytes.Buffer
	sounds := []skin.Sound{{Name: "wuak.wav", Data: quack()}}
	if err := skin.WriteArchive(&buf, manifest(), spritesheet(), sounds); err != nil {
		log.Fatalf("生成皮肤失败: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		log.Fatalf("写入 %s 失败: %v", *out, err)
	}
	log.Printf("✓ 已生成 %s (%d 字节)", *out, buf.Len())
}
