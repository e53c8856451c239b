//go:build !mobile

// Package mobile 是 gomobile bind 的入口，桌面构建只编译本文件
package mobile

// Dummy 让桌面构建下的 ./... 仍包含本包
func Dummy() {}
