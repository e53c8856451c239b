package utils

import (
	"math"

	"github.com/decker502/avatarstage/pkg/components"
)

// 图片框几何计算
//
// 图片框以视口右边和上边为锚点（right/top 为图片框右边/上边到视口对应边的距离）。
// 任意时刻必须满足：
//
//	-ratio*width  <= right <= viewportWidth  + ratio*width
//	-ratio*height <= top   <= viewportHeight + ratio*height
//
// 即图片框至多 ratio（默认 20%）移出视口。

// Viewport 视口尺寸（像素）
type Viewport struct {
	Width  float64
	Height float64
}

// FrameLimits 图片框尺寸与越界限制
type FrameLimits struct {
	// MinSize 最小宽/高（像素）
	MinSize float64

	// OffscreenRatio 允许移出视口的比例
	OffscreenRatio float64
}

// DefaultFrameLimits 默认限制：最小 100px，最多 20% 移出视口
var DefaultFrameLimits = FrameLimits{MinSize: 100, OffscreenRatio: 0.2}

// MaxSize 返回图片框的最大宽/高：视口宽高中的较大值
func (l FrameLimits) MaxSize(vp Viewport) float64 {
	return math.Max(vp.Width, vp.Height)
}

// ClampAnchor 将锚点距离限制在 [-ratio*size, extent+ratio*size] 内
func ClampAnchor(anchor, size, extent, ratio float64) float64 {
	return Clamp(anchor, -ratio*size, extent+ratio*size)
}

// InAnchorBounds 判断锚点距离是否在允许范围内
func InAnchorBounds(anchor, size, extent, ratio float64) bool {
	return anchor >= -ratio*size && anchor <= extent+ratio*size
}

// ClampGeometry 对几何的 right/top 执行越界约束，尺寸不变
func ClampGeometry(g components.OverlayGeometry, vp Viewport, limits FrameLimits) components.OverlayGeometry {
	g.Right = ClampAnchor(g.Right, g.Width, vp.Width, limits.OffscreenRatio)
	g.Top = ClampAnchor(g.Top, g.Height, vp.Height, limits.OffscreenRatio)
	return g
}

// NormalizeGeometry 用于恢复持久化的几何或视口变化后：
// 先把尺寸限制在 [MinSize, MaxSize]，再约束锚点
func NormalizeGeometry(g components.OverlayGeometry, vp Viewport, limits FrameLimits) components.OverlayGeometry {
	maxSize := math.Max(limits.MaxSize(vp), limits.MinSize)
	g.Width = Clamp(g.Width, limits.MinSize, maxSize)
	g.Height = Clamp(g.Height, limits.MinSize, maxSize)
	return ClampGeometry(g, vp, limits)
}

// DragGeometry 计算拖动后的几何
//
// 参数：
//   - start: 手势开始时的几何
//   - startX, startY: 手势起点
//   - x, y: 当前指针位置
//
// right 以右边为锚点，所以水平增量取反：dx = startX - x
func DragGeometry(start components.OverlayGeometry, startX, startY, x, y float64, vp Viewport, limits FrameLimits) components.OverlayGeometry {
	g := start
	g.Right = start.Right + (startX - x)
	g.Top = start.Top + (y - startY)
	return ClampGeometry(g, vp, limits)
}

// ResizeGeometry 计算拖动某条边的缩放手柄后的几何
//
// 每条边只改变自己所在的轴，对边保持不动：
//   - right:  width = clamp(sw + dx)，right 随之减小
//   - left:   width = clamp(sw - dx)，right 不变
//   - bottom: height = clamp(sh + dy)，top 不变
//   - top:    height = clamp(sh - dy)，top 随之增大
//
// 其中 dx = x - startX，dy = y - startY。
// 返回 ok=false 表示新锚点越界，调用者应保留上一次已提交的几何。
func ResizeGeometry(start components.OverlayGeometry, edge components.Edge, startX, startY, x, y float64, vp Viewport, limits FrameLimits) (components.OverlayGeometry, bool) {
	dx := x - startX
	dy := y - startY
	maxSize := math.Max(limits.MaxSize(vp), limits.MinSize)
	g := start

	switch edge {
	case components.EdgeRight:
		g.Width = Clamp(start.Width+dx, limits.MinSize, maxSize)
		g.Right = start.Right - (g.Width - start.Width)
		return g, InAnchorBounds(g.Right, g.Width, vp.Width, limits.OffscreenRatio)

	case components.EdgeLeft:
		g.Width = Clamp(start.Width-dx, limits.MinSize, maxSize)
		g.Right = start.Right
		return g, InAnchorBounds(g.Right, g.Width, vp.Width, limits.OffscreenRatio)

	case components.EdgeBottom:
		g.Height = Clamp(start.Height+dy, limits.MinSize, maxSize)
		g.Top = start.Top
		return g, InAnchorBounds(g.Top, g.Height, vp.Height, limits.OffscreenRatio)

	case components.EdgeTop:
		g.Height = Clamp(start.Height-dy, limits.MinSize, maxSize)
		g.Top = start.Top + (start.Height - g.Height)
		return g, InAnchorBounds(g.Top, g.Height, vp.Height, limits.OffscreenRatio)
	}
	return start, false
}

// FrameScreenRect 返回图片框在屏幕上的矩形（左上角与尺寸）
func FrameScreenRect(g components.OverlayGeometry, vp Viewport) (x, y, w, h float64) {
	return vp.Width - g.Right - g.Width, g.Top, g.Width, g.Height
}

// HitTestFrame 判断屏幕坐标点落在图片框的哪个部分
//
// 返回值：
//   - edge: 命中的缩放手柄，未命中手柄时为 EdgeNone
//   - body: 是否命中图片框（包括手柄区域）
//
// 手柄为沿边内侧 thickness 像素宽的条带，优先级 left、bottom、right、top。
func HitTestFrame(g components.OverlayGeometry, vp Viewport, px, py, thickness float64) (edge components.Edge, body bool) {
	x, y, w, h := FrameScreenRect(g, vp)
	if px < x || px > x+w || py < y || py > y+h {
		return components.EdgeNone, false
	}
	switch {
	case px <= x+thickness:
		return components.EdgeLeft, true
	case py >= y+h-thickness:
		return components.EdgeBottom, true
	case px >= x+w-thickness:
		return components.EdgeRight, true
	case py <= y+thickness:
		return components.EdgeTop, true
	}
	return components.EdgeNone, true
}

// Clamp 将 v 限制在 [lo, hi] 内
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
