//go:build !android

package utils

// EnsureStorageDir 桌面端与 iOS 由 gdata 自行创建目录
func EnsureStorageDir() error {
	return nil
}

// StoragePath 只在 Android 上有意义，其他平台返回空字符串
func StoragePath() string {
	return ""
}
