package utils

import "github.com/decker502/avatarstage/pkg/components"

// MapPointerToGaze 将屏幕指针坐标映射为视线目标
//
// 坐标先相对渲染区域归一化并限制在 [0,1]，水平分量再乘以 hScale：
//
//	x = clamp01((px - left) / width) * hScale
//	y = clamp01((py - top) / height)
//
// 渲染区域宽或高为 0 时返回 ok=false，调用者应保留上一次采样。
func MapPointerToGaze(px, py float64, surface *components.SurfaceComponent, hScale float64) (components.GazeTarget, bool) {
	if surface == nil || !surface.Mounted || surface.Width <= 0 || surface.Height <= 0 {
		return components.GazeTarget{}, false
	}
	return components.GazeTarget{
		X: Clamp((px-surface.X)/surface.Width, 0, 1) * hScale,
		Y: Clamp((py-surface.Y)/surface.Height, 0, 1),
	}, true
}

// GazeToNDC 将视线目标转换为 [-1,1] 范围的标准化坐标（Y 轴向上）
//
// ndcX = x*2 - 1，ndcY = (1-y)*2 - 1，结果限制在 [-1,1]，
// 因此放大后的水平分量在到达渲染区域中线后即饱和。
func GazeToNDC(g components.GazeTarget) (float64, float64) {
	return Clamp(g.X*2-1, -1, 1), Clamp((1-g.Y)*2-1, -1, 1)
}

// AimBonePosition 计算视线控制骨骼在骨架坐标系中的位置
//
// 位置 = 包围盒偏移 + ndc * (尺寸/2)，结果始终落在 offset ± size/2 之内。
func AimBonePosition(g components.GazeTarget, geom components.SkeletonGeometry) (float64, float64) {
	nx, ny := GazeToNDC(g)
	return geom.OffsetX + nx*geom.Width/2, geom.OffsetY + ny*geom.Height/2
}
