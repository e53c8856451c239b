package components

// GazeTarget 视线目标采样
// X 范围 [0, HorizontalScale]，Y 范围 [0, 1]，原点在渲染区域左上角
type GazeTarget struct {
	X float64
	Y float64
}

// GazeComponent 保存最新一次指针采样（后写覆盖，不保留历史）
type GazeComponent struct {
	Target GazeTarget

	// HasSample 是否已收到过有效采样
	HasSample bool

	// HorizontalScale 水平放大倍数（默认 4），使水平方向的视线扫动比垂直方向更大
	HorizontalScale float64
}
