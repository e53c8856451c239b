// Package utils 提供通用工具函数
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerSample 一帧的指针状态（鼠标或第一个触摸点）
type PointerSample struct {
	// X, Y 指针位置（屏幕坐标）
	X, Y float64

	// Pressed 鼠标左键或触摸是否处于按下状态
	Pressed bool

	// Present 本帧是否有有效位置（无触摸的移动设备上为 false）
	Present bool
}

// PointerSampler 跟踪触摸/鼠标指针
// 触摸优先，触摸释放时沿用最后一次触摸位置
type PointerSampler struct {
	touchID    ebiten.TouchID
	touching   bool
	lastTouchX int
	lastTouchY int
}

// NewPointerSampler 创建指针采样器
func NewPointerSampler() *PointerSampler {
	return &PointerSampler{touchID: -1}
}

// Sample 读取当前帧的指针状态（每帧调用一次）
func (p *PointerSampler) Sample() PointerSample {
	// 首先检查触摸输入（移动设备）
	if justPressed := inpututil.AppendJustPressedTouchIDs(nil); !p.touching && len(justPressed) > 0 {
		p.touchID = justPressed[0]
		p.touching = true
	}

	if p.touching {
		for _, id := range ebiten.AppendTouchIDs(nil) {
			if id == p.touchID {
				p.lastTouchX, p.lastTouchY = ebiten.TouchPosition(id)
				return PointerSample{X: float64(p.lastTouchX), Y: float64(p.lastTouchY), Pressed: true, Present: true}
			}
		}
		// 触摸已释放，使用最后的触摸位置
		p.touching = false
		p.touchID = -1
		return PointerSample{X: float64(p.lastTouchX), Y: float64(p.lastTouchY), Pressed: false, Present: true}
	}

	if IsMobile() {
		return PointerSample{X: float64(p.lastTouchX), Y: float64(p.lastTouchY)}
	}

	// 其次检查鼠标输入（桌面设备）
	x, y := ebiten.CursorPosition()
	return PointerSample{
		X:       float64(x),
		Y:       float64(y),
		Pressed: ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Present: true,
	}
}
