// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包按路径前缀把 "assets/" 与 "data/" 分派到对应的文件系统，
// 并通过 FS() 暴露成一个 fs.FS，供 ResourceManager、MaskLoader 与 GameCatalog 使用。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var (
	assetsFS    fs.FS
	dataFS      fs.FS
	initialized bool
)

// ErrNotInitialized Init 之前访问资源
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

// Init 设置资源文件系统
// 必须在 main() 开始时、任何资源加载之前调用
//
// 参数：
//   - assets: 根目录包含 assets/ 的文件系统
//   - data: 根目录包含 data/ 的文件系统
func Init(assets, data fs.FS) {
	assetsFS = assets
	dataFS = data
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// FS 返回按前缀分派的只读文件系统
func FS() fs.FS {
	return routedFS{}
}

type routedFS struct{}

func (routedFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return Open(name)
}

func (routedFS) ReadFile(name string) ([]byte, error) {
	return ReadFile(name)
}

// resolve 标准化路径并选择文件系统
func resolve(p string) (fs.FS, string, error) {
	if !initialized {
		return nil, "", ErrNotInitialized
	}
	// embed.FS 使用正斜杠
	p = strings.TrimPrefix(filepath.ToSlash(p), "./")

	switch {
	case p == "assets" || strings.HasPrefix(p, "assets/"):
		return assetsFS, p, nil
	case p == "data" || strings.HasPrefix(p, "data/"):
		return dataFS, p, nil
	}
	return nil, "", &fs.PathError{
		Op:   "open",
		Path: p,
		Err:  fmt.Errorf("unknown resource path prefix (must start with 'assets/' or 'data/'): %w", fs.ErrNotExist),
	}
}

// Open 打开文件，路径必须以 "assets/" 或 "data/" 开头
func Open(path string) (fs.File, error) {
	fsys, p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fsys.Open(p)
}

// ReadFile 读取文件内容
func ReadFile(path string) ([]byte, error) {
	fsys, p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, p)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	file, err := Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

// Glob 匹配文件，模式必须以 "assets/" 或 "data/" 开头
func Glob(pattern string) ([]string, error) {
	fsys, p, err := resolve(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(fsys, p)
}

// ReadDir 读取目录内容
func ReadDir(path string) ([]fs.DirEntry, error) {
	fsys, p, err := resolve(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadDir(fsys, p)
}

// Sub 返回指定目录的子文件系统
func Sub(dir string) (fs.FS, error) {
	fsys, p, err := resolve(dir)
	if err != nil {
		return nil, err
	}
	return fs.Sub(fsys, p)
}
