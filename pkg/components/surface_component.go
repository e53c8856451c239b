package components

// SurfaceComponent 角色渲染区域（屏幕坐标，像素）
//
// 相当于角色的画布：指针映射、点击判定与渲染都以此矩形为准。
type SurfaceComponent struct {
	X      float64
	Y      float64
	Width  float64
	Height float64

	// Mounted 渲染区域是否已就绪，未就绪时忽略指针映射
	Mounted bool

	// Draggable 角色是否可拖动（全屏图片模式下启用）
	Draggable bool

	// Dimmed 体验开始前角色变暗显示
	Dimmed bool
}

// Contains 判断屏幕坐标点是否落在渲染区域内
func (s *SurfaceComponent) Contains(x, y float64) bool {
	return s.Mounted && x >= s.X && x <= s.X+s.Width && y >= s.Y && y <= s.Y+s.Height
}
