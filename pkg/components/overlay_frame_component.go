package components

import "github.com/hajimehoshi/ebiten/v2"

// DisplayMode 图片展示模式
type DisplayMode string

const (
	// DisplayModeFrame 可拖动、可缩放的浮动图片框
	DisplayModeFrame DisplayMode = "frame"
	// DisplayModeFullscreen 图片作为全屏背景，角色可拖动
	DisplayModeFullscreen DisplayMode = "fullscreen"
)

// Edge 缩放手柄所在的边
type Edge int

const (
	EdgeNone Edge = iota
	EdgeTop
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// String 返回边的名称
func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	}
	return "none"
}

// GestureKind 图片框手势状态
type GestureKind int

const (
	GestureIdle GestureKind = iota
	GestureDragging
	GestureResizing
)

// OverlayGeometry 图片框几何（像素），以视口右边和上边为锚点
type OverlayGeometry struct {
	Width  float64
	Height float64
	Right  float64
	Top    float64
}

// OverlayFrameComponent 图片框组件（纯数据）
type OverlayFrameComponent struct {
	// Geometry 当前已提交的几何（始终满足 80% 可见约束）
	Geometry OverlayGeometry

	// Mode 展示模式，仅 DisplayModeFrame 下可拖动/缩放
	Mode DisplayMode

	// Gesture 当前手势；Edge 仅在 GestureResizing 时有效
	Gesture GestureKind
	Edge    Edge

	// StartX, StartY 手势起点；Start 手势开始时的几何
	StartX float64
	StartY float64
	Start  OverlayGeometry

	// Image 当前显示的图片，nil 时不显示图片框
	Image *ebiten.Image

	// ImageFormat 当前图片的格式；ImageRevision 每次替换图片递增
	ImageFormat   string
	ImageRevision int
}

// Movable 图片框当前模式下是否允许拖动/缩放
func (f *OverlayFrameComponent) Movable() bool {
	return f.Mode != DisplayModeFullscreen
}

// Visible 是否已收到过图片（图片框只在有图片时显示和响应手势）
func (f *OverlayFrameComponent) Visible() bool {
	return f.ImageRevision > 0
}
