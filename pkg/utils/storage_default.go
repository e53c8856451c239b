//go:build !android

package utils

// EnsureStorageDir 桌面平台由 gdata 自行创建存储目录，这里不做任何事
func EnsureStorageDir(appName string) error {
	return nil
}

// StorageLocation 桌面平台返回空字符串（路径由 gdata 决定）
func StorageLocation(appName string) string {
	return ""
}
