package config

// 布局配置常量
// 本文件定义了窗口尺寸和角色渲染区域的布局参数

const (
	// WindowWidth, WindowHeight 默认逻辑窗口尺寸（像素）
	WindowWidth  = 1000
	WindowHeight = 800

	// MinWindowWidth, MinWindowHeight 窗口可缩放的下限
	MinWindowWidth  = 320
	MinWindowHeight = 320

	// SurfaceAspect 角色渲染区域的宽高比（与角色骨架的 200x320 设计尺寸一致）
	SurfaceAspect = 200.0 / 320.0

	// SurfaceHeightRatio 渲染区域高度占视口高度的比例
	SurfaceHeightRatio = 0.85

	// SurfaceBottomMargin 渲染区域底边到视口底边的距离（像素）
	SurfaceBottomMargin = 16.0
)

// CharacterSurfaceRect 返回角色渲染区域在视口中的矩形
//
// 渲染区域水平居中、贴近底部，高度为视口高度的 SurfaceHeightRatio，
// 宽度按 SurfaceAspect 计算；视口过窄时改为以宽度为准。
//
// 返回值：左上角 x, y 以及宽高 w, h
func CharacterSurfaceRect(viewportWidth, viewportHeight float64) (x, y, w, h float64) {
	h = viewportHeight * SurfaceHeightRatio
	w = h * SurfaceAspect
	if w > viewportWidth {
		w = viewportWidth
		h = w / SurfaceAspect
	}
	x = (viewportWidth - w) / 2
	y = viewportHeight - SurfaceBottomMargin - h
	if y < 0 {
		y = 0
	}
	return x, y, w, h
}
