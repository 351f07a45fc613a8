package skin

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	// spritesheet 支持 png / bmp / webp
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// 皮肤加载错误分类
var (
	ErrNoManifest    = errors.New("skin: config.json not found")
	ErrBadManifest   = errors.New("skin: invalid config.json")
	ErrNoSpritesheet = errors.New("skin: spritesheet not found")
	ErrBadImage      = errors.New("skin: spritesheet cannot be decoded")
)

// Sound 皮肤包中的一个 WAV 声音
type Sound struct {
	Name string
	Data []byte
}

// Skin 解码后的皮肤包
type Skin struct {
	Name     string
	Manifest *Manifest
	Sheet    image.Image
	Sounds   []Sound
}

// OpenArchive 从磁盘读取皮肤包
func OpenArchive(p string) (*Skin, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open skin %s: %w", p, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat skin %s: %w", p, err)
	}

	name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	return ReadArchive(f, info.Size(), name)
}

// ReadArchive 从 ZIP 数据解码皮肤包
//
// 参数：
//   - r, size: ZIP 数据
//   - name: 皮肤名（用于日志和显示）
//
// 返回：
//   - *Skin: 清单、spritesheet 和声音
//   - error: 清单缺失/非法、spritesheet 缺失或无法解码
func ReadArchive(r io.ReaderAt, size int64, name string) (*Skin, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive: %v", ErrNoManifest, err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[path.Clean(f.Name)] = f
	}

	mf, ok := files[ManifestName]
	if !ok {
		return nil, ErrNoManifest
	}
	data, err := readZipFile(mf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	sf, ok := files[path.Clean(manifest.Spritesheet)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSpritesheet, manifest.Spritesheet)
	}
	sheetData, err := readZipFile(sf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSpritesheet, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(sheetData))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadImage, manifest.Spritesheet, err)
	}
	if err := manifest.checkSheet(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	sheet, _, err := image.Decode(bytes.NewReader(sheetData))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadImage, manifest.Spritesheet, err)
	}

	sk := &Skin{
		Name:     name,
		Manifest: manifest,
		Sheet:    sheet,
	}

	for _, s := range manifest.Sound {
		if !strings.EqualFold(path.Ext(s), ".wav") {
			log.Printf("[Skin] %s: ignoring non-wav sound %q", name, s)
			continue
		}
		f, ok := files[path.Clean(s)]
		if !ok {
			log.Printf("[Skin] %s: sound %q not found in archive", name, s)
			continue
		}
		b, err := readZipFile(f)
		if err != nil {
			log.Printf("[Skin] %s: failed to read sound %q: %v", name, s, err)
			continue
		}
		sk.Sounds = append(sk.Sounds, Sound{Name: s, Data: b})
	}

	log.Printf("[Skin] Loaded %s: %d animations, %d sounds", name, len(manifest.Animations), len(sk.Sounds))
	return sk, nil
}

// Check 校验已解码皮肤的清单和 spritesheet 尺寸
func (sk *Skin) Check() error {
	if sk.Manifest == nil || sk.Sheet == nil {
		return fmt.Errorf("%w: incomplete skin %s", ErrBadManifest, sk.Name)
	}
	if err := sk.Manifest.Validate(); err != nil {
		return err
	}
	b := sk.Sheet.Bounds()
	return sk.Manifest.checkSheet(b.Dx(), b.Dy())
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// WriteArchive 把清单、spritesheet（PNG 编码）和声音写成皮肤包
func WriteArchive(w io.Writer, m *Manifest, sheet image.Image, sounds []Sound) error {
	if err := m.Validate(); err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	cfg, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	fw, err := zw.Create(ManifestName)
	if err != nil {
		return err
	}
	if _, err := fw.Write(cfg); err != nil {
		return err
	}

	if sheet != nil {
		fw, err = zw.Create(m.Spritesheet)
		if err != nil {
			return err
		}
		if err := png.Encode(fw, sheet); err != nil {
			return fmt.Errorf("encode spritesheet: %w", err)
		}
	}

	for _, s := range sounds {
		fw, err = zw.Create(s.Name)
		if err != nil {
			return err
		}
		if _, err := fw.Write(s.Data); err != nil {
			return err
		}
	}

	return zw.Close()
}

// ListArchives 列出目录下的 *.zip 皮肤包（按文件名排序）
// 目录不存在时返回空列表
func ListArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list skins in %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".zip") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
