package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// UserConfig 用户配置文件（TOML）
// 指针字段为 nil 表示"未设置"，由命令行参数或默认值决定
type UserConfig struct {
	Game   GameSection   `toml:"game"`
	Scores ScoresSection `toml:"scores"`
}

// GameSection 桌面端游戏设置
type GameSection struct {
	Verbose    *bool `toml:"verbose"`
	Fullscreen *bool `toml:"fullscreen"`
	Muted      *bool `toml:"muted"`
}

// ScoresSection 分数后端设置
// server-url 优先；都未设置时使用本地 SQLite 文件
type ScoresSection struct {
	ServerURL  *string `toml:"server-url"`
	DBPath     *string `toml:"db-path"`
	PlayerName *string `toml:"player-name"`
}

// XDGConfigHome 返回 XDG 配置目录
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome 返回 XDG 数据目录
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultUserConfigPath 默认配置文件路径
func DefaultUserConfigPath() string {
	return filepath.Join(XDGConfigHome(), "hygin", "config.toml")
}

// DefaultScoreDBPath 默认本地分数数据库路径
func DefaultScoreDBPath() string {
	return filepath.Join(XDGDataHome(), "hygin", "scores.db")
}

// LoadUserConfig 读取 TOML 用户配置，文件不存在不算错误
func LoadUserConfig(path string) (UserConfig, error) {
	if path == "" {
		return UserConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return UserConfig{}, nil
		}
		return UserConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg UserConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return UserConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// BoolOr 返回指针值，未设置时返回默认值
func BoolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// StringOr 返回指针值，未设置或为空时返回默认值
func StringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}
