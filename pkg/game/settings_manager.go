package game

import (
	"fmt"
	"log"

	"github.com/decker502/quackduck/pkg/config"
	"github.com/quasilyte/gdata/v2"
)

// AppName gdata 存储使用的应用名
const AppName = "quackduck"

// SettingsManager 设置管理器
// 负责宠物设置的加载、保存和内存管理
//
// GetSettings 返回的指针与宠物共享，宠物对设置的修改在下次 Save 时持久化。
type SettingsManager struct {
	gdataManager *gdata.Manager   // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *config.Settings // 当前设置
	substituted  []string         // 最近一次加载时被替换为默认值的键
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "pet"
)

// OpenStorage 打开 gdata 存储
//
// 失败时返回 nil 并记录日志，调用方以降级模式继续运行
func OpenStorage(appName string) *gdata.Manager {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[Settings] Warning: storage unavailable: %v (settings will not persist)", err)
		return nil
	}
	return m
}

// NewSettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *SettingsManager: 设置管理器实例（加载失败时使用默认设置）
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     config.DefaultSettings(),
	}

	// 加载失败不是致命错误，使用默认设置
	if err := sm.Load(); err != nil {
		log.Printf("[Settings] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm
}

// Load 从 gdata 加载设置
//
// 单个键的值损坏时只替换该键为默认值，其余键照常加载。
// 如果 gdataManager 为 nil 或数据不存在，使用默认设置
//
// 返回：
//   - error: 数据无法读取或整体无法解析时返回错误
func (sm *SettingsManager) Load() error {
	sm.substituted = nil

	// 降级模式：无法持久化，使用默认设置
	if sm.gdataManager == nil {
		sm.replace(config.DefaultSettings())
		return nil
	}

	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.replace(config.DefaultSettings())
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.replace(config.DefaultSettings())
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded, substituted, err := config.DecodeSettings(data)
	if err != nil {
		sm.replace(config.DefaultSettings())
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	sm.replace(loaded)
	sm.substituted = substituted
	for _, key := range substituted {
		log.Printf("[Settings] Warning: invalid value for %q, using default", key)
	}
	log.Printf("[Settings] Settings loaded successfully")
	return nil
}

// replace 原地替换设置内容，保持已发出的指针有效
func (sm *SettingsManager) replace(s *config.Settings) {
	*sm.settings = *s
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := sm.settings.Encode()
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[Settings] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *config.Settings {
	return sm.settings
}

// Substituted 最近一次加载时被替换为默认值的键
func (sm *SettingsManager) Substituted() []string {
	return sm.substituted
}

// Persistent 设置是否能持久化
func (sm *SettingsManager) Persistent() bool {
	return sm.gdataManager != nil
}

// SetSoundVolume 设置音效音量
//
// 音量值会被限制在 0.0 ~ 1.0 范围内
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clampVolume(volume)
}

// SetSoundEnabled 设置音效开关
//
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.settings.SoundEnabled = enabled
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
