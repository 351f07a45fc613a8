package skin

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"math/rand/v2"
	"sort"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultFrameSize 没有清单时占位帧的原始边长
const DefaultFrameSize = 32

// maxDefaultFailures 默认皮肤连续加载失败多少次后进入占位模式
const maxDefaultFailures = 3

// ErrStoreFailed 默认皮肤多次加载失败后，Store 只返回占位帧
var ErrStoreFailed = errors.New("skin: store failed, serving placeholder frames")

// Placeholder 占位帧颜色（品红）
var Placeholder = color.RGBA{R: 255, G: 0, B: 255, A: 255}

// Loader 加载默认皮肤
type Loader func() (*Skin, error)

// Store 动画帧仓库
//
// 按名字返回缩放后的帧序列，从不返回空序列：
//   - jump 缺失时用 fall，fall 缺失时用 jump
//   - running 缺失时用 walk
//   - 然后是 idle
//   - 最后是一张品红占位帧
//
// 皮肤或尺寸变化时整体重建，之前返回的帧序列随之失效（Generation 递增）。
// 非线程安全，只在 UI goroutine 中使用。
type Store struct {
	loadDefault Loader

	skin        *Skin
	size        int
	frames      map[string][]*image.RGBA
	placeholder *image.RGBA

	defaultFailures int
	failed          bool
	generation      int

	// Intn 用于随机选择声音，测试中可替换
	Intn func(n int) int
}

// NewStore 创建帧仓库（尺寸默认为 3，尚未加载皮肤）
func NewStore(loadDefault Loader) *Store {
	s := &Store{
		loadDefault: loadDefault,
		size:        3,
		frames:      make(map[string][]*image.RGBA),
		Intn:        rand.IntN,
	}
	s.rebuild()
	return s
}

// LoadSkin 加载皮肤
//
// path 为空时加载默认皮肤。加载失败时回退到默认皮肤并返回错误，
// Store 在任何情况下都保持可用。
func (s *Store) LoadSkin(path string) error {
	if s.failed {
		return ErrStoreFailed
	}

	if path == "" {
		return s.useDefault()
	}

	sk, err := OpenArchive(path)
	if err != nil {
		log.Printf("[Skin] Failed to load %s: %v (falling back to default)", path, err)
		if derr := s.useDefault(); derr != nil {
			return errors.Join(err, derr)
		}
		return err
	}

	s.install(sk)
	return nil
}

// Install 直接安装已解码的皮肤
//
// 未通过 Check 的皮肤被忽略，当前皮肤保持不变。
func (s *Store) Install(sk *Skin) error {
	if s.failed {
		return ErrStoreFailed
	}
	if sk == nil {
		return fmt.Errorf("%w: nil skin", ErrBadManifest)
	}
	if err := sk.Check(); err != nil {
		log.Printf("[Skin] Refusing to install %s: %v", sk.Name, err)
		return err
	}
	s.install(sk)
	return nil
}

func (s *Store) useDefault() error {
	var lastErr error
	for s.defaultFailures < maxDefaultFailures {
		sk, err := s.loadDefault()
		if err == nil {
			err = sk.Check()
		}
		if err == nil {
			s.defaultFailures = 0
			s.install(sk)
			return nil
		}
		s.defaultFailures++
		lastErr = err
		log.Printf("[Skin] Default skin failed to load (%d/%d): %v", s.defaultFailures, maxDefaultFailures, err)
	}

	s.failed = true
	s.skin = nil
	s.rebuild()
	log.Printf("[Skin] Default skin unusable, serving placeholder frames")
	return fmt.Errorf("%w: %v", ErrStoreFailed, lastErr)
}

func (s *Store) install(sk *Skin) {
	s.skin = sk
	s.rebuild()
}

// SetSize 修改缩放倍数并重建帧
func (s *Store) SetSize(size int) {
	if size < 1 {
		size = 1
	}
	if size == s.size {
		return
	}
	s.size = size
	s.rebuild()
}

// Size 返回当前缩放倍数
func (s *Store) Size() int {
	return s.size
}

func (s *Store) rebuild() {
	s.generation++
	s.frames = make(map[string][]*image.RGBA)

	fw, fh := s.BaseFrameSize()
	s.placeholder = image.NewRGBA(image.Rect(0, 0, fw*s.size, fh*s.size))
	draw.Draw(s.placeholder, s.placeholder.Bounds(), &image.Uniform{C: Placeholder}, image.Point{}, draw.Src)

	if s.skin == nil || s.failed {
		return
	}

	sheet := s.skin.Sheet
	bounds := sheet.Bounds()
	for name, tiles := range s.skin.Manifest.Animations {
		var seq []*image.RGBA
		for _, ref := range tiles {
			row, col, err := ParseTile(ref)
			if err != nil {
				log.Printf("[Skin] %s/%s: skipping frame: %v", s.skin.Name, name, err)
				continue
			}
			src := image.Rect(col*fw, row*fh, (col+1)*fw, (row+1)*fh).Add(bounds.Min)
			if !src.In(bounds) {
				log.Printf("[Skin] %s/%s: skipping frame %q outside spritesheet", s.skin.Name, name, ref)
				continue
			}
			dst := image.NewRGBA(image.Rect(0, 0, fw*s.size, fh*s.size))
			draw.NearestNeighbor.Scale(dst, dst.Bounds(), sheet, src, draw.Src, nil)
			seq = append(seq, dst)
		}
		if len(seq) == 0 {
			log.Printf("[Skin] %s/%s: no valid frames, treating as absent", s.skin.Name, name)
			continue
		}
		s.frames[name] = seq
	}
}

// Frames 返回动画帧序列，按回退链从不返回空序列
func (s *Store) Frames(name string) []*image.RGBA {
	for _, n := range fallbackChain(name) {
		if seq, ok := s.frames[n]; ok {
			return seq
		}
	}
	return []*image.RGBA{s.placeholder}
}

func fallbackChain(name string) []string {
	switch name {
	case AnimJump:
		return []string{AnimJump, AnimFall, AnimIdle}
	case AnimFall:
		return []string{AnimFall, AnimJump, AnimIdle}
	case AnimRunning:
		return []string{AnimRunning, AnimWalk, AnimIdle}
	default:
		return []string{name, AnimIdle}
	}
}

// Has 返回皮肤是否定义了该动画（不考虑回退）
func (s *Store) Has(name string) bool {
	_, ok := s.frames[name]
	return ok
}

// IdleNames 返回所有以 idle 开头的动画名（已排序）
func (s *Store) IdleNames() []string {
	var names []string
	for name := range s.frames {
		if strings.HasPrefix(name, AnimIdle) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// BaseFrameSize 返回原始帧尺寸
func (s *Store) BaseFrameSize() (int, int) {
	if s.skin == nil || s.skin.Manifest == nil || s.failed {
		return DefaultFrameSize, DefaultFrameSize
	}
	return s.skin.Manifest.FrameWidth, s.skin.Manifest.FrameHeight
}

// FrameSize 返回缩放后的帧尺寸
func (s *Store) FrameSize() (int, int) {
	fw, fh := s.BaseFrameSize()
	return fw * s.size, fh * s.size
}

// RandomSound 随机返回一个声音，没有声音时 ok 为 false
func (s *Store) RandomSound() (Sound, bool) {
	if s.skin == nil || len(s.skin.Sounds) == 0 {
		return Sound{}, false
	}
	return s.skin.Sounds[s.Intn(len(s.skin.Sounds))], true
}

// SkinName 返回当前皮肤名
func (s *Store) SkinName() string {
	if s.skin == nil {
		return ""
	}
	return s.skin.Name
}

// Failed 返回是否已进入占位模式
func (s *Store) Failed() bool {
	return s.failed
}

// Generation 每次重建帧时递增
func (s *Store) Generation() int {
	return s.generation
}
