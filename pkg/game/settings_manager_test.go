package game

import (
	"testing"
)

// TestDefaultSettings 测试默认值
func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	if settings.MusicVolume != 0.5 {
		t.Errorf("MusicVolume: got %v, want 0.5", settings.MusicVolume)
	}
	if settings.SoundVolume != 0.8 {
		t.Errorf("SoundVolume: got %v, want 0.8", settings.SoundVolume)
	}
	if settings.Muted || settings.Fullscreen {
		t.Errorf("expected unmuted windowed defaults, got %+v", settings)
	}
}

// TestNewSettingsManagerNilGdata 测试降级模式
func TestNewSettingsManagerNilGdata(t *testing.T) {
	sm, err := NewSettingsManager(nil)
	if err != nil {
		t.Fatalf("NewSettingsManager(nil) error: %v", err)
	}
	if sm.GetSettings().SoundVolume != 0.8 {
		t.Errorf("Degraded mode SoundVolume: got %v, want 0.8", sm.GetSettings().SoundVolume)
	}
	sm.SetMuted(true)
	if err := sm.Save(); err != nil {
		t.Errorf("Save() in degraded mode should not fail: %v", err)
	}
	if !sm.GetSettings().Muted {
		t.Error("in-memory settings must survive a degraded save")
	}
}

// TestSettingsLoadSave 测试保存后重新加载
func TestSettingsLoadSave(t *testing.T) {
	gm := openTestGdata(t, "test_hygin_settings")

	sm1, _ := NewSettingsManager(gm)
	sm1.SetMusicVolume(0.3)
	sm1.SetSoundVolume(0.6)
	sm1.SetMuted(true)
	sm1.SetFullscreen(true)
	if err := sm1.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	sm2, _ := NewSettingsManager(gm)
	got := sm2.GetSettings()
	want := GameSettings{MusicVolume: 0.3, SoundVolume: 0.6, Muted: true, Fullscreen: true}
	if *got != want {
		t.Errorf("Loaded settings: got %+v, want %+v", *got, want)
	}
}

// TestSettingsCorruptData 测试损坏数据回退到默认设置
func TestSettingsCorruptData(t *testing.T) {
	gm := openTestGdata(t, "test_hygin_settings_corrupt")
	if err := gm.SaveObjectProp(settingsObject, settingsProperty, []byte("musicVolume: [oops")); err != nil {
		t.Fatalf("failed to seed data: %v", err)
	}

	sm, err := NewSettingsManager(gm)
	if err != nil {
		t.Fatalf("NewSettingsManager() error: %v", err)
	}
	if *sm.GetSettings() != *DefaultSettings() {
		t.Errorf("expected defaults after corrupt data, got %+v", *sm.GetSettings())
	}
}

// TestVolumeClamp 测试音量范围限制
func TestVolumeClamp(t *testing.T) {
	sm, _ := NewSettingsManager(nil)

	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"正常值", 0.5, 0.5},
		{"下限", 0.0, 0.0},
		{"上限", 1.0, 1.0},
		{"低于下限", -0.5, 0.0},
		{"高于上限", 1.5, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm.SetMusicVolume(tt.input)
			sm.SetSoundVolume(tt.input)
			if sm.GetSettings().MusicVolume != tt.expected || sm.GetSettings().SoundVolume != tt.expected {
				t.Errorf("volume(%v): got %v/%v, want %v", tt.input,
					sm.GetSettings().MusicVolume, sm.GetSettings().SoundVolume, tt.expected)
			}
		})
	}
}

// TestToggleMuted 测试静音切换
func TestToggleMuted(t *testing.T) {
	sm, _ := NewSettingsManager(nil)
	if !sm.ToggleMuted() || sm.ToggleMuted() {
		t.Error("ToggleMuted should flip the state each call")
	}
}
