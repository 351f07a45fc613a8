// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的资源。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/decker502/quackduck/pkg/skin"
)

// DefaultSkinPath 内置默认皮肤在嵌入文件系统中的路径
const DefaultSkinPath = "assets/skins/default.zip"

var errNotInitialized = errors.New("embedded package not initialized, call Init() first")

var (
	assetsFS    fs.FS
	initialized bool
)

// Init 初始化嵌入文件系统
// 必须在 main() 开始时、任何资源加载之前调用
func Init(assets fs.FS) {
	assetsFS = assets
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// clean 标准化路径：正斜杠、去掉 "./" 前缀，且必须以 "assets/" 开头
func clean(path string) (string, error) {
	if !initialized {
		return "", errNotInitialized
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	if !strings.HasPrefix(path, "assets/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'assets/')", path)
	}
	return path, nil
}

// Open 打开嵌入文件
func Open(path string) (fs.File, error) {
	path, err := clean(path)
	if err != nil {
		return nil, err
	}
	return assetsFS.Open(path)
}

// ReadFile 读取嵌入文件内容
func ReadFile(path string) ([]byte, error) {
	path, err := clean(path)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(assetsFS, path)
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

// Glob 匹配嵌入文件
func Glob(pattern string) ([]string, error) {
	pattern, err := clean(pattern)
	if err != nil {
		return nil, err
	}
	return fs.Glob(assetsFS, pattern)
}

// DefaultSkin 从嵌入资源加载默认皮肤
//
// 作为 skin.Store 的默认皮肤加载器使用
func DefaultSkin() (*skin.Skin, error) {
	data, err := ReadFile(DefaultSkinPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read default skin: %w", err)
	}
	sk, err := skin.ReadArchive(bytes.NewReader(data), int64(len(data)), "default")
	if err != nil {
		return nil, fmt.Errorf("failed to load default skin: %w", err)
	}
	return sk, nil
}
