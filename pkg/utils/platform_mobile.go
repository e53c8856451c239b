//go:build mobile

package utils

// IsMobile 移动端编译时恒为 true
// PointerSampler 据此在没有触摸时不回退到鼠标位置
func IsMobile() bool {
	return true
}
