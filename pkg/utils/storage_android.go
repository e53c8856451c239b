//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureStorageDir 在 gdata 打开存储前创建 /data/data/{package}/{appName} 并确认可写
//
// gdata 在 Android 上不会预先创建子目录，图片框几何第一次保存时会失败。
func EnsureStorageDir(appName string) error {
	dir := StorageLocation(appName)
	if dir == "" {
		return fmt.Errorf("failed to detect Android package name")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("storage directory %s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}

// StorageLocation 返回应用的存储目录，无法识别包名时返回空字符串
func StorageLocation(appName string) string {
	pkg, err := androidPackage()
	if err != nil {
		return ""
	}
	return filepath.Join("/data/data", pkg, appName)
}

// androidPackage 从 /proc/self/cmdline 读取包名（以 NUL 结尾）
func androidPackage() (string, error) {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return "", err
	}
	name, _, _ := strings.Cut(string(data), "\x00")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty /proc/self/cmdline")
	}
	return name, nil
}
