package components

// IdleCycleComponent 点击轮播待机/反应动画
type IdleCycleComponent struct {
	// Rotation 固定的轮播顺序
	Rotation []string

	// Pressed 指针是否在角色上按下（本次手势）
	Pressed bool

	// Dragging 角色是否正在被拖动
	Dragging bool

	// WasDragged 本次手势移动超过阈值，抑制随后的点击
	WasDragged bool

	// LastX, LastY 上一次指针位置（拖动增量计算）
	LastX float64
	LastY float64

	// DragThreshold 判定为拖动的最小位移（像素）
	DragThreshold float64
}
