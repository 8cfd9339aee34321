//go:build android

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// saveDirName gdata 在应用私有目录下使用的子目录
const saveDirName = "saves"

// EnsureStorageDir 在 gdata 初始化前创建 /data/data/{package}/saves 并确认可写
// gdata 在 Android 上不会预先创建这个子目录
func EnsureStorageDir() error {
	base := StoragePath()
	if base == "" {
		return errors.New("failed to detect android package name")
	}
	dir := filepath.Join(base, saveDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	_ = os.Remove(probe)
	return nil
}

// StoragePath 应用私有目录 /data/data/{package}
// 包名取自 /proc/self/cmdline，读取失败时返回空字符串
func StoragePath() string {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return ""
	}
	pkg := strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, string(data)))
	if pkg == "" {
		return ""
	}
	return filepath.Join("/data/data", pkg)
}
