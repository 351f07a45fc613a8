// Package skin 加载皮肤包（spritesheet + config.json + 声音）并提供按名字取帧的 FrameStore
//
// 皮肤包是一个 ZIP 文件，根目录必须包含 config.json：
//
//	{
//	  "spritesheet": "sprite.png",
//	  "frame_width": 32,
//	  "frame_height": 32,
//	  "animations": {"idle": ["0:0"], "walk": ["1:0", "1:1"]},
//	  "sound": ["wuak.wav"]
//	}
//
// 动画值是 "row:col" 字符串列表（0 起始的瓦片坐标）。
package skin

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// 常用动画名
const (
	AnimIdle            = "idle"
	AnimWalk            = "walk"
	AnimListen          = "listen"
	AnimFall            = "fall"
	AnimJump            = "jump"
	AnimLand            = "land"
	AnimSleep           = "sleep"
	AnimSleepTransition = "sleep_transition"
	AnimRunning         = "running"
	AnimAttack          = "attack"
)

// ManifestName 皮肤包中清单文件的固定名字
const ManifestName = "config.json"

// 尺寸上限（像素）
const (
	MaxFrameSize = 256
	MaxSheetSize = 16384
)

// Manifest 皮肤清单
type Manifest struct {
	Spritesheet string              `json:"spritesheet"`
	FrameWidth  int                 `json:"frame_width"`
	FrameHeight int                 `json:"frame_height"`
	Animations  map[string][]string `json:"animations"`
	Sound       SoundList           `json:"sound,omitempty"`
}

// SoundList 声音列表，JSON 中既可以是字符串也可以是字符串数组
type SoundList []string

// UnmarshalJSON 同时接受 "a.wav" 和 ["a.wav", "b.wav"]
func (l *SoundList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		if one == "" {
			*l = nil
			return nil
		}
		*l = SoundList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("sound must be a string or a list of strings: %w", err)
	}
	*l = many
	return nil
}

// ParseManifest 解析并校验 config.json
//
// 返回的错误都包装了 ErrBadManifest。
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate 校验必填字段
func (m *Manifest) Validate() error {
	switch {
	case strings.TrimSpace(m.Spritesheet) == "":
		return fmt.Errorf("%w: missing spritesheet", ErrBadManifest)
	case m.FrameWidth <= 0 || m.FrameHeight <= 0:
		return fmt.Errorf("%w: frame size %dx%d", ErrBadManifest, m.FrameWidth, m.FrameHeight)
	case m.FrameWidth > MaxFrameSize || m.FrameHeight > MaxFrameSize:
		return fmt.Errorf("%w: frame size %dx%d exceeds %d", ErrBadManifest, m.FrameWidth, m.FrameHeight, MaxFrameSize)
	case m.Animations == nil:
		return fmt.Errorf("%w: missing animations", ErrBadManifest)
	case len(m.Animations[AnimIdle]) == 0:
		return fmt.Errorf("%w: missing %q animation", ErrBadManifest, AnimIdle)
	}
	return nil
}

// checkSheet 校验 spritesheet 尺寸：不超过上限且至少容纳一帧
func (m *Manifest) checkSheet(w, h int) error {
	switch {
	case w > MaxSheetSize || h > MaxSheetSize:
		return fmt.Errorf("%w: %s is %dx%d, larger than %d", ErrBadImage, m.Spritesheet, w, h, MaxSheetSize)
	case m.FrameWidth > w || m.FrameHeight > h:
		return fmt.Errorf("%w: frame size %dx%d larger than spritesheet %dx%d", ErrBadManifest, m.FrameWidth, m.FrameHeight, w, h)
	}
	return nil
}

var errBadTile = errors.New("bad tile reference")

// ParseTile 解析 "row:col" 瓦片坐标
func ParseTile(s string) (row, col int, err error) {
	r, c, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w %q", errBadTile, s)
	}
	row, err = strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q: %v", errBadTile, s, err)
	}
	col, err = strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return 0, 0, fmt.Errorf("%w %q: %v", errBadTile, s, err)
	}
	if row < 0 || col < 0 {
		return 0, 0, fmt.Errorf("%w %q: negative index", errBadTile, s)
	}
	return row, col, nil
}
