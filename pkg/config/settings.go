package config

import (
	"fmt"
	"log"
	"math"
	"reflect"
	"time"

	"gopkg.in/yaml.v3"
)

// 合法的宠物尺寸
var ValidPetSizes = []int{1, 2, 3, 5, 10}

// 转向间隔范围（秒）
const (
	MinDirectionChangeInterval = 1.0
	MaxDirectionChangeInterval = 24 * 60 * 60.0
)

// Settings 宠物设置（键值存储中的所有键）
//
// DuckSpeed、SleepTimeout、PlayfulBehaviorProbability 为 0 时使用名字生成的参数。
type Settings struct {
	PetName                    string  `yaml:"pet_name" toml:"pet_name"`
	PetSize                    int     `yaml:"pet_size" toml:"pet_size"`
	ActivationThreshold        int     `yaml:"activation_threshold" toml:"activation_threshold"`
	SoundEnabled               bool    `yaml:"sound_enabled" toml:"sound_enabled"`
	SoundVolume                float64 `yaml:"sound_volume" toml:"sound_volume"`
	GroundLevel                int     `yaml:"ground_level" toml:"ground_level"` // 距屏幕底部的像素
	SkinFolder                 string  `yaml:"skin_folder" toml:"skin_folder"`
	SelectedSkin               string  `yaml:"selected_skin" toml:"selected_skin"` // 为空表示默认皮肤
	DuckSpeed                  float64 `yaml:"duck_speed" toml:"duck_speed"`
	IdleDuration               float64 `yaml:"idle_duration" toml:"idle_duration"`                         // 秒
	SleepTimeout               float64 `yaml:"sleep_timeout" toml:"sleep_timeout"`                         // 秒
	DirectionChangeInterval    float64 `yaml:"direction_change_interval" toml:"direction_change_interval"` // 秒
	NameOffsetY                int     `yaml:"name_offset_y" toml:"name_offset_y"`
	FontBaseSize               int     `yaml:"font_base_size" toml:"font_base_size"`
	ShowName                   bool    `yaml:"show_name" toml:"show_name"`
	SelectedMicIndex           *int    `yaml:"selected_mic_index" toml:"selected_mic_index"`
	PlayfulBehaviorProbability float64 `yaml:"playful_behavior_probability" toml:"playful_behavior_probability"`
	CurrentLanguage            string  `yaml:"current_language" toml:"current_language"`
	SkippedVersion             string  `yaml:"skipped_version" toml:"skipped_version"`
}

// DefaultSettings 返回默认设置
func DefaultSettings() *Settings {
	return &Settings{
		PetSize:                 3,
		ActivationThreshold:     10,
		SoundEnabled:            true,
		SoundVolume:             0.5,
		GroundLevel:             40,
		SkinFolder:              "skins",
		IdleDuration:            5,
		DirectionChangeInterval: 20,
		NameOffsetY:             10,
		FontBaseSize:            12,
		ShowName:                true,
		CurrentLanguage:         "en",
	}
}

// DecodeSettings 从 YAML 解码设置
//
// 逐键解码：单个键格式错误时使用该键的默认值，其余键照常读取。
//
// 返回：
//   - *Settings: 解码并校正后的设置
//   - []string: 被替换为默认值的键
//   - error: 整个文档无法解析时返回错误（此时返回默认设置）
func DecodeSettings(data []byte) (*Settings, []string, error) {
	s := DefaultSettings()

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return s, nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	var bad []string
	v := reflect.ValueOf(s).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("yaml")
		node, ok := raw[key]
		if !ok {
			continue
		}
		field := v.Field(i)
		tmp := reflect.New(field.Type())
		if err := node.Decode(tmp.Interface()); err != nil {
			log.Printf("[Settings] Malformed %s: %v (using default)", key, err)
			bad = append(bad, key)
			continue
		}
		field.Set(tmp.Elem())
	}

	bad = append(bad, s.Sanitize()...)
	return s, bad, nil
}

// Encode 序列化为 YAML
func (s *Settings) Encode() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settings: %w", err)
	}
	return data, nil
}

// Clone 返回深拷贝
func (s *Settings) Clone() *Settings {
	c := *s
	if s.SelectedMicIndex != nil {
		idx := *s.SelectedMicIndex
		c.SelectedMicIndex = &idx
	}
	return &c
}

// Sanitize 把超出范围的值替换为默认值，返回被替换的键
func (s *Settings) Sanitize() []string {
	d := DefaultSettings()
	var fixed []string
	fix := func(key string, bad bool, apply func()) {
		if bad {
			apply()
			fixed = append(fixed, key)
			log.Printf("[Settings] Invalid %s, using default", key)
		}
	}

	fix("pet_size", !validSize(s.PetSize), func() { s.PetSize = d.PetSize })
	fix("activation_threshold", s.ActivationThreshold < 0 || s.ActivationThreshold > 100,
		func() { s.ActivationThreshold = d.ActivationThreshold })
	fix("sound_volume", badFloat(s.SoundVolume) || s.SoundVolume < 0 || s.SoundVolume > 1,
		func() { s.SoundVolume = d.SoundVolume })
	fix("ground_level", s.GroundLevel < 0, func() { s.GroundLevel = d.GroundLevel })
	fix("skin_folder", s.SkinFolder == "", func() { s.SkinFolder = d.SkinFolder })
	fix("duck_speed", badFloat(s.DuckSpeed) || s.DuckSpeed < 0, func() { s.DuckSpeed = d.DuckSpeed })
	fix("idle_duration", badFloat(s.IdleDuration) || s.IdleDuration <= 0,
		func() { s.IdleDuration = d.IdleDuration })
	fix("sleep_timeout", badFloat(s.SleepTimeout) || s.SleepTimeout < 0,
		func() { s.SleepTimeout = d.SleepTimeout })
	fix("direction_change_interval", badFloat(s.DirectionChangeInterval) ||
		s.DirectionChangeInterval < MinDirectionChangeInterval || s.DirectionChangeInterval > MaxDirectionChangeInterval,
		func() { s.DirectionChangeInterval = d.DirectionChangeInterval })
	fix("font_base_size", s.FontBaseSize <= 0, func() { s.FontBaseSize = d.FontBaseSize })
	fix("selected_mic_index", s.SelectedMicIndex != nil && *s.SelectedMicIndex < 0,
		func() { s.SelectedMicIndex = nil })
	fix("playful_behavior_probability",
		badFloat(s.PlayfulBehaviorProbability) || s.PlayfulBehaviorProbability < 0 || s.PlayfulBehaviorProbability > 1,
		func() { s.PlayfulBehaviorProbability = d.PlayfulBehaviorProbability })

	return fixed
}

func validSize(size int) bool {
	for _, v := range ValidPetSizes {
		if v == size {
			return true
		}
	}
	return false
}

func badFloat(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// Seconds 把秒数转换为 time.Duration
func Seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// IdleDurationD 空闲状态持续时间
func (s *Settings) IdleDurationD() time.Duration {
	return Seconds(s.IdleDuration)
}

// SleepTimeoutD 入睡超时，0 表示使用名字生成的参数
func (s *Settings) SleepTimeoutD() time.Duration {
	return Seconds(s.SleepTimeout)
}

// DirectionChangeIntervalD 转向检查间隔
func (s *Settings) DirectionChangeIntervalD() time.Duration {
	return Seconds(s.DirectionChangeInterval)
}
