package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Override TOML 覆盖文件，只有出现的键会覆盖已保存的设置
type Override struct {
	PetName                    *string  `toml:"pet_name"`
	PetSize                    *int     `toml:"pet_size"`
	ActivationThreshold        *int     `toml:"activation_threshold"`
	SoundEnabled               *bool    `toml:"sound_enabled"`
	SoundVolume                *float64 `toml:"sound_volume"`
	GroundLevel                *int     `toml:"ground_level"`
	SkinFolder                 *string  `toml:"skin_folder"`
	SelectedSkin               *string  `toml:"selected_skin"`
	DuckSpeed                  *float64 `toml:"duck_speed"`
	IdleDuration               *float64 `toml:"idle_duration"`
	SleepTimeout               *float64 `toml:"sleep_timeout"`
	DirectionChangeInterval    *float64 `toml:"direction_change_interval"`
	NameOffsetY                *int     `toml:"name_offset_y"`
	FontBaseSize               *int     `toml:"font_base_size"`
	ShowName                   *bool    `toml:"show_name"`
	SelectedMicIndex           *int     `toml:"selected_mic_index"`
	PlayfulBehaviorProbability *float64 `toml:"playful_behavior_probability"`
	CurrentLanguage            *string  `toml:"current_language"`
}

// LoadOverride 读取 TOML 覆盖文件
func LoadOverride(path string) (*Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read override file: %w", err)
	}
	return ParseOverride(data)
}

// ParseOverride 解析 TOML 覆盖内容
func ParseOverride(data []byte) (*Override, error) {
	var o Override
	if err := toml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse override file: %w", err)
	}
	return &o, nil
}

// Apply 把覆盖值写入 s 并重新校正，返回被校正的键
func (o *Override) Apply(s *Settings) []string {
	setString(&s.PetName, o.PetName)
	setInt(&s.PetSize, o.PetSize)
	setInt(&s.ActivationThreshold, o.ActivationThreshold)
	if o.SoundEnabled != nil {
		s.SoundEnabled = *o.SoundEnabled
	}
	setFloat(&s.SoundVolume, o.SoundVolume)
	setInt(&s.GroundLevel, o.GroundLevel)
	setString(&s.SkinFolder, o.SkinFolder)
	setString(&s.SelectedSkin, o.SelectedSkin)
	setFloat(&s.DuckSpeed, o.DuckSpeed)
	setFloat(&s.IdleDuration, o.IdleDuration)
	setFloat(&s.SleepTimeout, o.SleepTimeout)
	setFloat(&s.DirectionChangeInterval, o.DirectionChangeInterval)
	setInt(&s.NameOffsetY, o.NameOffsetY)
	setInt(&s.FontBaseSize, o.FontBaseSize)
	if o.ShowName != nil {
		s.ShowName = *o.ShowName
	}
	if o.SelectedMicIndex != nil {
		idx := *o.SelectedMicIndex
		s.SelectedMicIndex = &idx
	}
	setFloat(&s.PlayfulBehaviorProbability, o.PlayfulBehaviorProbability)
	setString(&s.CurrentLanguage, o.CurrentLanguage)
	return s.Sanitize()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
