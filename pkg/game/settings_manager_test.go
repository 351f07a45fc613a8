package game

import (
	"os"
	"testing"

	"github.com/quasilyte/gdata/v2"
)

// openTestStorage 在临时 HOME 下打开 gdata
func openTestStorage(t *testing.T) *gdata.Manager {
	t.Helper()
	tempDir := t.TempDir()
	originalHome := os.Getenv("HOME")
	os.Setenv("HOME", tempDir)
	t.Cleanup(func() { os.Setenv("HOME", originalHome) })

	gdataManager, err := gdata.Open(gdata.Config{
		AppName: "test_quackduck",
	})
	if err != nil {
		t.Fatalf("Failed to create gdata manager: %v", err)
	}
	return gdataManager
}

// TestNewSettingsManager 测试正常初始化 SettingsManager
func TestNewSettingsManager(t *testing.T) {
	sm := NewSettingsManager(openTestStorage(t))

	settings := sm.GetSettings()
	if settings == nil {
		t.Fatal("GetSettings() returned nil after initialization")
	}
	if settings.PetSize != 3 {
		t.Errorf("Initial PetSize: got %v, want 3", settings.PetSize)
	}
	if !sm.Persistent() {
		t.Error("Expected persistent settings")
	}
}

// TestNewSettingsManagerNilGdata 测试 gdataManager 为 nil 时的降级场景
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm := NewSettingsManager(nil)

	if sm.GetSettings().SoundVolume != 0.5 {
		t.Errorf("SoundVolume: got %v, want 0.5", sm.GetSettings().SoundVolume)
	}
	if sm.Persistent() {
		t.Error("Expected degraded mode")
	}
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should return nil, got %v", err)
	}
	if err := sm.Load(); err != nil {
		t.Errorf("Load() in degraded mode should return nil, got %v", err)
	}
}

// TestSettingsLoadSave 测试保存后重新加载
func TestSettingsLoadSave(t *testing.T) {
	storage := openTestStorage(t)
	sm := NewSettingsManager(storage)

	s := sm.GetSettings()
	s.PetName = "Quacky"
	s.PetSize = 5
	s.GroundLevel = 120
	mic := 2
	s.SelectedMicIndex = &mic
	sm.SetSoundVolume(0.25)
	sm.SetSoundEnabled(false)

	if err := sm.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2 := NewSettingsManager(storage)
	got := sm2.GetSettings()
	if got.PetName != "Quacky" || got.PetSize != 5 || got.GroundLevel != 120 {
		t.Errorf("Loaded settings mismatch: %+v", got)
	}
	if got.SoundVolume != 0.25 || got.SoundEnabled {
		t.Errorf("Expected volume 0.25 and sound disabled, got %v/%v", got.SoundVolume, got.SoundEnabled)
	}
	if got.SelectedMicIndex == nil || *got.SelectedMicIndex != 2 {
		t.Errorf("Expected mic index 2, got %v", got.SelectedMicIndex)
	}
}

// TestLoadRecoversBadKeys 测试单个键损坏时只替换该键
func TestLoadRecoversBadKeys(t *testing.T) {
	storage := openTestStorage(t)
	data := []byte("pet_name: Ducky\npet_size: 7\nsound_volume: loud\nground_level: 60\n")
	if err := storage.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		t.Fatalf("SaveObjectProp: %v", err)
	}

	sm := NewSettingsManager(storage)
	s := sm.GetSettings()
	if s.PetName != "Ducky" || s.GroundLevel != 60 {
		t.Errorf("Expected valid keys kept, got %+v", s)
	}
	if s.PetSize != 3 || s.SoundVolume != 0.5 {
		t.Errorf("Expected defaults for bad keys, got size=%d volume=%v", s.PetSize, s.SoundVolume)
	}
	if len(sm.Substituted()) != 2 {
		t.Errorf("Expected 2 substituted keys, got %v", sm.Substituted())
	}
}

// TestLoadKeepsPointer 测试重新加载后已发出的设置指针仍然有效
func TestLoadKeepsPointer(t *testing.T) {
	storage := openTestStorage(t)
	sm := NewSettingsManager(storage)
	shared := sm.GetSettings()

	other := NewSettingsManager(storage)
	other.GetSettings().PetName = "Reloaded"
	if err := other.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if err := sm.Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if shared.PetName != "Reloaded" {
		t.Errorf("Expected shared pointer to see reloaded name, got %q", shared.PetName)
	}
}

// TestSetSoundVolumeClamp 测试音量限制
func TestSetSoundVolumeClamp(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"normal", 0.6, 0.6},
		{"below zero", -0.5, 0.0},
		{"above one", 1.5, 1.0},
		{"zero", 0.0, 0.0},
		{"one", 1.0, 1.0},
	}

	sm := NewSettingsManager(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm.SetSoundVolume(tt.input)
			if got := sm.GetSettings().SoundVolume; got != tt.expected {
				t.Errorf("SetSoundVolume(%v): got %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
