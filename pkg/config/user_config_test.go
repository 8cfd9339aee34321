package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUserConfig(t *testing.T) {
	t.Run("文件不存在返回空配置", func(t *testing.T) {
		cfg, err := LoadUserConfig(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Game.Muted != nil || cfg.Scores.ServerURL != nil {
			t.Errorf("expected unset fields, got %+v", cfg)
		}
	})

	t.Run("读取已设置的字段", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[game]
muted = true

[scores]
server-url = "http://localhost:8080"
player-name = "Ana"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		cfg, err := LoadUserConfig(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !BoolOr(cfg.Game.Muted, false) {
			t.Error("expected muted = true")
		}
		if BoolOr(cfg.Game.Fullscreen, false) {
			t.Error("expected fullscreen to fall back to false")
		}
		if got := StringOr(cfg.Scores.ServerURL, ""); got != "http://localhost:8080" {
			t.Errorf("expected server url, got %q", got)
		}
		if got := StringOr(cfg.Scores.DBPath, "default.db"); got != "default.db" {
			t.Errorf("expected default db path, got %q", got)
		}
	})

	t.Run("格式错误", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("[game\nmuted = "), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadUserConfig(path); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("空路径", func(t *testing.T) {
		if _, err := LoadUserConfig(""); err == nil {
			t.Error("expected error for empty path")
		}
	})
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	if got, want := DefaultUserConfigPath(), filepath.Join(dir, "hygin", "config.toml"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if got, want := DefaultScoreDBPath(), filepath.Join(dir, "hygin", "scores.db"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
