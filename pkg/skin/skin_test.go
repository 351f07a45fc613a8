package skin

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// tileColor 每个瓦片使用不同颜色，便于验证切割位置
func tileColor(row, col int) color.RGBA {
	return color.RGBA{R: uint8(40 * row), G: uint8(40 * col), B: 200, A: 255}
}

func makeSheet(rows, cols, fw, fh int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols*fw, rows*fh))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for y := r * fh; y < (r+1)*fh; y++ {
				for x := c * fw; x < (c+1)*fw; x++ {
					img.SetRGBA(x, y, tileColor(r, c))
				}
			}
		}
	}
	return img
}

func testManifest() *Manifest {
	return &Manifest{
		Spritesheet: "sprite.png",
		FrameWidth:  4,
		FrameHeight: 4,
		Animations: map[string][]string{
			"idle":       {"0:0"},
			"idle_blink": {"0:0", "0:1"},
			"walk":       {"1:0", "1:1", "1:2"},
			"fall":       {"2:0"},
		},
		Sound: SoundList{"wuak.wav"},
	}
}

func buildArchive(t *testing.T, m *Manifest, sounds []Sound) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := WriteArchive(&buf, m, makeSheet(3, 3, m.FrameWidth, m.FrameHeight), sounds); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}
	return buf.Bytes()
}

func rawArchive(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		w.Write(data)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func readSkin(t *testing.T, data []byte) *Skin {
	t.Helper()
	sk, err := ReadArchive(bytes.NewReader(data), int64(len(data)), "test")
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	return sk
}

// TestSoundListForms 测试 sound 字段的字符串和数组两种写法
func TestSoundListForms(t *testing.T) {
	tests := []struct {
		name string
		json string
		want SoundList
	}{
		{"string", `"a.wav"`, SoundList{"a.wav"}},
		{"list", `["a.wav","b.wav"]`, SoundList{"a.wav", "b.wav"}},
		{"empty string", `""`, nil},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte(`{"spritesheet":"s.png","frame_width":1,"frame_height":1,"animations":{"idle":["0:0"]},"sound":` + tt.json + `}`)
			m, err := ParseManifest(data)
			if err != nil {
				t.Fatalf("ParseManifest failed: %v", err)
			}
			if !reflect.DeepEqual(m.Sound, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, m.Sound)
			}
		})
	}
}

// TestParseManifestInvalid 测试非法清单
func TestParseManifestInvalid(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"no spritesheet", `{"frame_width":1,"frame_height":1,"animations":{}}`},
		{"zero width", `{"spritesheet":"s.png","frame_width":0,"frame_height":1,"animations":{}}`},
		{"no animations", `{"spritesheet":"s.png","frame_width":1,"frame_height":1}`},
		{"sound number", `{"spritesheet":"s.png","frame_width":1,"frame_height":1,"animations":{"idle":["0:0"]},"sound":3}`},
		{"no idle", `{"spritesheet":"s.png","frame_width":1,"frame_height":1,"animations":{"walk":["1:0"]}}`},
		{"empty idle", `{"spritesheet":"s.png","frame_width":1,"frame_height":1,"animations":{"idle":[]}}`},
		{"huge frame", `{"spritesheet":"s.png","frame_width":1099511627776,"frame_height":1,"animations":{"idle":["0:0"]}}`},
		{"frame over cap", `{"spritesheet":"s.png","frame_width":2048,"frame_height":2048,"animations":{"idle":["0:0"]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.json))
			if !errors.Is(err, ErrBadManifest) {
				t.Errorf("Expected ErrBadManifest, got %v", err)
			}
		})
	}
}

// TestParseTile 测试瓦片坐标解析
func TestParseTile(t *testing.T) {
	tests := []struct {
		in       string
		row, col int
		wantErr  bool
	}{
		{"0:0", 0, 0, false},
		{"2:5", 2, 5, false},
		{" 1 : 3 ", 1, 3, false},
		{"1", 0, 0, true},
		{"a:b", 0, 0, true},
		{"-1:0", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		row, col, err := ParseTile(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTile(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && (row != tt.row || col != tt.col) {
			t.Errorf("ParseTile(%q) = %d:%d, want %d:%d", tt.in, row, col, tt.row, tt.col)
		}
	}
}

// TestReadArchiveErrors 测试皮肤包错误分类
func TestReadArchiveErrors(t *testing.T) {
	goodCfg := []byte(`{"spritesheet":"sprite.png","frame_width":4,"frame_height":4,"animations":{"idle":["0:0"]}}`)
	tests := []struct {
		name  string
		files map[string][]byte
		want  error
	}{
		{"no manifest", map[string][]byte{"sprite.png": {1}}, ErrNoManifest},
		{"bad json", map[string][]byte{"config.json": []byte("{")}, ErrBadManifest},
		{"no spritesheet", map[string][]byte{"config.json": goodCfg}, ErrNoSpritesheet},
		{"bad image", map[string][]byte{"config.json": goodCfg, "sprite.png": []byte("not a png")}, ErrBadImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := rawArchive(t, tt.files)
			_, err := ReadArchive(bytes.NewReader(data), int64(len(data)), "broken")
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("not a zip", func(t *testing.T) {
		data := []byte("plain text")
		_, err := ReadArchive(bytes.NewReader(data), int64(len(data)), "text")
		if !errors.Is(err, ErrNoManifest) {
			t.Errorf("Expected ErrNoManifest, got %v", err)
		}
	})
}

// TestReadArchiveSounds 测试只接受包内存在的 .wav 声音
func TestReadArchiveSounds(t *testing.T) {
	m := testManifest()
	m.Sound = SoundList{"wuak.wav", "missing.wav", "music.mp3"}
	data := buildArchive(t, m, []Sound{
		{Name: "wuak.wav", Data: []byte("RIFF")},
		{Name: "music.mp3", Data: []byte("ID3")},
	})

	sk := readSkin(t, data)
	if len(sk.Sounds) != 1 || sk.Sounds[0].Name != "wuak.wav" {
		t.Fatalf("Expected only wuak.wav, got %+v", sk.Sounds)
	}
	if string(sk.Sounds[0].Data) != "RIFF" {
		t.Errorf("Sound data mismatch: %q", sk.Sounds[0].Data)
	}
}

func storeWith(t *testing.T, m *Manifest) *Store {
	t.Helper()
	sk := readSkin(t, buildArchive(t, m, []Sound{{Name: "wuak.wav", Data: []byte("RIFF")}}))
	s := NewStore(func() (*Skin, error) { return sk, nil })
	if err := s.LoadSkin(""); err != nil {
		t.Fatalf("LoadSkin failed: %v", err)
	}
	return s
}

// TestFramesScaledNearestNeighbour 测试按整数倍最近邻缩放
func TestFramesScaledNearestNeighbour(t *testing.T) {
	s := storeWith(t, testManifest())
	s.SetSize(2)

	walk := s.Frames("walk")
	if len(walk) != 3 {
		t.Fatalf("Expected 3 walk frames, got %d", len(walk))
	}
	for i, f := range walk {
		if f.Bounds().Dx() != 8 || f.Bounds().Dy() != 8 {
			t.Fatalf("Frame %d: expected 8x8, got %v", i, f.Bounds())
		}
		want := tileColor(1, i)
		for _, p := range []image.Point{{0, 0}, {7, 7}, {3, 5}} {
			if got := f.RGBAAt(p.X, p.Y); got != want {
				t.Errorf("Frame %d pixel %v: expected %v, got %v", i, p, want, got)
			}
		}
	}

	if w, h := s.FrameSize(); w != 8 || h != 8 {
		t.Errorf("FrameSize: expected 8x8, got %dx%d", w, h)
	}
}

// TestFramesFallbackChain 测试回退链
func TestFramesFallbackChain(t *testing.T) {
	s := storeWith(t, testManifest())
	idle := s.Frames("idle")[0]
	fall := s.Frames("fall")[0]
	walk := s.Frames("walk")

	tests := []struct {
		name string
		want *image.RGBA
	}{
		{"jump", fall},
		{"listen", idle},
		{"sleep", idle},
		{"no_such_animation", idle},
		{"running", walk[0]},
	}
	for _, tt := range tests {
		got := s.Frames(tt.name)
		if len(got) == 0 || got[0] != tt.want {
			t.Errorf("Frames(%q): unexpected fallback", tt.name)
		}
	}

	if s.Has("jump") {
		t.Error("Has(jump) should ignore fallbacks")
	}
	if !reflect.DeepEqual(s.IdleNames(), []string{"idle", "idle_blink"}) {
		t.Errorf("IdleNames: got %v", s.IdleNames())
	}
}

// TestFallWithoutIdle 测试 fall 缺失时回退到 jump，两者都缺失时回退到占位帧
func TestFallWithoutIdle(t *testing.T) {
	m := testManifest()
	m.Animations = map[string][]string{"idle": {"9:9"}, "jump": {"2:1"}}
	s := storeWith(t, m)

	if got := s.Frames("fall"); got[0] != s.Frames("jump")[0] {
		t.Error("Expected fall to fall back to jump")
	}

	walk := s.Frames("walk")
	if len(walk) != 1 || walk[0].RGBAAt(0, 0) != Placeholder {
		t.Fatalf("Expected magenta placeholder, got %d frames", len(walk))
	}
	if walk[0].Bounds().Dx() != 12 || walk[0].Bounds().Dy() != 12 {
		t.Errorf("Placeholder size: expected 12x12, got %v", walk[0].Bounds())
	}
}

// TestMalformedTilesSkipped 测试非法瓦片被跳过，全部非法时动画视为缺失
func TestMalformedTilesSkipped(t *testing.T) {
	m := testManifest()
	m.Animations["walk"] = []string{"1:0", "bogus", "9:9", "1:2"}
	m.Animations["listen"] = []string{"x", "7:7"}
	s := storeWith(t, m)

	if n := len(s.Frames("walk")); n != 2 {
		t.Errorf("Expected 2 valid walk frames, got %d", n)
	}
	if s.Has("listen") {
		t.Error("Expected listen with zero valid frames to be absent")
	}
}

// TestDefaultFailureLatch 测试默认皮肤连续失败三次后进入占位模式
func TestDefaultFailureLatch(t *testing.T) {
	calls := 0
	s := NewStore(func() (*Skin, error) {
		calls++
		return nil, errors.New("disk on fire")
	})

	err := s.LoadSkin("")
	if !errors.Is(err, ErrStoreFailed) {
		t.Fatalf("Expected ErrStoreFailed, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
	if !s.Failed() {
		t.Error("Expected store to be failed")
	}

	frames := s.Frames("idle")
	if len(frames) != 1 || frames[0].RGBAAt(0, 0) != Placeholder {
		t.Fatal("Expected placeholder frame")
	}
	if frames[0].Bounds().Dx() != 96 {
		t.Errorf("Placeholder width: expected 96, got %d", frames[0].Bounds().Dx())
	}

	if err := s.LoadSkin(""); !errors.Is(err, ErrStoreFailed) {
		t.Errorf("Expected latch to persist, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected no more attempts after latch, got %d", calls)
	}
}

// TestDefaultRecoversBeforeLatch 测试失败次数未达上限时成功加载会清零计数
func TestDefaultRecoversBeforeLatch(t *testing.T) {
	sk := readSkin(t, buildArchive(t, testManifest(), nil))
	calls := 0
	s := NewStore(func() (*Skin, error) {
		calls++
		if calls <= 2 {
			return nil, errors.New("flaky")
		}
		return sk, nil
	})
	if err := s.LoadSkin(""); err != nil {
		t.Fatalf("Expected success on third attempt, got %v", err)
	}
	if s.Failed() {
		t.Error("Store should not be failed")
	}
}

// TestLoadSkinFallsBackToDefault 测试自定义皮肤失败时回退到默认皮肤
func TestLoadSkinFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.zip")
	if err := os.WriteFile(bad, rawArchive(t, map[string][]byte{"readme.txt": []byte("hi")}), 0o644); err != nil {
		t.Fatal(err)
	}

	s := storeWith(t, testManifest())
	gen := s.Generation()

	err := s.LoadSkin(bad)
	if !errors.Is(err, ErrNoManifest) {
		t.Fatalf("Expected ErrNoManifest, got %v", err)
	}
	if s.SkinName() != "test" {
		t.Errorf("Expected default skin, got %q", s.SkinName())
	}
	if s.Generation() == gen {
		t.Error("Expected frames to be rebuilt")
	}

	good := filepath.Join(dir, "blue.zip")
	if err := os.WriteFile(good, buildArchive(t, testManifest(), nil), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadSkin(good); err != nil {
		t.Fatalf("LoadSkin(good) failed: %v", err)
	}
	if s.SkinName() != "blue" {
		t.Errorf("Expected skin name blue, got %q", s.SkinName())
	}
}

// TestFrameLargerThanSheet 帧尺寸超过 spritesheet 时拒绝皮肤并回退到默认皮肤
func TestFrameLargerThanSheet(t *testing.T) {
	m := testManifest()
	m.FrameWidth, m.FrameHeight = 64, 64
	var buf bytes.Buffer
	if err := WriteArchive(&buf, m, makeSheet(1, 1, 4, 4), nil); err != nil {
		t.Fatalf("WriteArchive failed: %v", err)
	}
	_, err := ReadArchive(bytes.NewReader(buf.Bytes()), int64(buf.Len()), "giant")
	if !errors.Is(err, ErrBadManifest) {
		t.Fatalf("Expected ErrBadManifest, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "giant.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	s := storeWith(t, testManifest())
	if err := s.LoadSkin(path); !errors.Is(err, ErrBadManifest) {
		t.Fatalf("Expected ErrBadManifest, got %v", err)
	}
	if s.SkinName() != "test" {
		t.Errorf("Expected default skin, got %q", s.SkinName())
	}
	if w, h := s.FrameSize(); w != 12 || h != 12 {
		t.Errorf("Expected default 12x12 frames, got %dx%d", w, h)
	}
}

// TestInstallRejectsHugeFrame 直接安装帧尺寸异常的皮肤被拒绝，当前皮肤不变
func TestInstallRejectsHugeFrame(t *testing.T) {
	s := storeWith(t, testManifest())
	gen := s.Generation()

	m := testManifest()
	m.FrameWidth = 1 << 40
	err := s.Install(&Skin{Name: "huge", Manifest: m, Sheet: makeSheet(1, 1, 4, 4)})
	if !errors.Is(err, ErrBadManifest) {
		t.Fatalf("Expected ErrBadManifest, got %v", err)
	}
	if s.SkinName() != "test" || s.Generation() != gen {
		t.Error("Expected current skin to stay installed")
	}
}

// TestDefaultLoaderWithoutIdle 默认皮肤缺少 idle 时按加载失败计数
func TestDefaultLoaderWithoutIdle(t *testing.T) {
	m := testManifest()
	delete(m.Animations, "idle")
	s := NewStore(func() (*Skin, error) {
		return &Skin{Name: "noidle", Manifest: m, Sheet: makeSheet(3, 3, 4, 4)}, nil
	})
	if err := s.LoadSkin(""); !errors.Is(err, ErrStoreFailed) {
		t.Fatalf("Expected ErrStoreFailed, got %v", err)
	}
	if !s.Failed() {
		t.Error("Expected store to be failed")
	}
}

// TestListArchives 测试皮肤目录枚举
func TestListArchives(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.zip", "a.ZIP", "notes.txt"} {
		os.WriteFile(filepath.Join(dir, name), []byte{}, 0o644)
	}
	os.Mkdir(filepath.Join(dir, "c.zip"), 0o755)

	got, err := ListArchives(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.ZIP"), filepath.Join(dir, "b.zip")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	missing, err := ListArchives(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Errorf("Expected empty result for missing dir, got %v, %v", missing, err)
	}
}

// TestRandomSound 测试随机声音选择
func TestRandomSound(t *testing.T) {
	s := storeWith(t, testManifest())
	s.Intn = func(n int) int { return n - 1 }
	snd, ok := s.RandomSound()
	if !ok || snd.Name != "wuak.wav" {
		t.Errorf("Expected wuak.wav, got %+v, %v", snd, ok)
	}

	empty := NewStore(func() (*Skin, error) { return nil, errors.New("none") })
	if _, ok := empty.RandomSound(); ok {
		t.Error("Expected no sound from empty store")
	}
}
