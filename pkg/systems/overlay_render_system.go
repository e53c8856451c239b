package systems

import (
	"image/color"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	frameBackground  = color.RGBA{0, 0, 0, 160}
	frameBorder      = color.RGBA{255, 255, 255, 200}
	frameHandle      = color.RGBA{120, 180, 255, 220}
	frameBorderWidth = float32(2)
)

// OverlayRenderSystem 渲染会话引擎推送的图片
//
// 图片框模式：按几何绘制浮动图片框，带边框；手势进行中高亮当前缩放手柄。
// 全屏模式：图片铺满视口作为背景，需要在角色之前绘制（DrawBackground）。
type OverlayRenderSystem struct {
	entityManager   *ecs.EntityManager
	handleThickness float64
}

// NewOverlayRenderSystem 创建图片渲染系统
func NewOverlayRenderSystem(em *ecs.EntityManager, handleThickness float64) *OverlayRenderSystem {
	return &OverlayRenderSystem{entityManager: em, handleThickness: handleThickness}
}

// DrawBackground 绘制全屏模式下的背景图片
func (s *OverlayRenderSystem) DrawBackground(screen *ebiten.Image) {
	vw, vh := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())
	for _, frame := range s.visibleFrames() {
		if frame.Mode != components.DisplayModeFullscreen {
			continue
		}
		b := frame.Image.Bounds()
		scale, ox, oy := utils.CoverRect(float64(b.Dx()), float64(b.Dy()), vw, vh)
		if scale == 0 {
			continue
		}
		op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(ox, oy)
		screen.DrawImage(frame.Image, op)
	}
}

// DrawFrames 绘制图片框模式下的浮动图片框（在角色之上）
func (s *OverlayRenderSystem) DrawFrames(screen *ebiten.Image) {
	vp := utils.Viewport{Width: float64(screen.Bounds().Dx()), Height: float64(screen.Bounds().Dy())}
	for _, frame := range s.visibleFrames() {
		if frame.Mode != components.DisplayModeFrame {
			continue
		}
		x, y, w, h := utils.FrameScreenRect(frame.Geometry, vp)
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), frameBackground, false)

		b := frame.Image.Bounds()
		scale, ox, oy := utils.FitRect(float64(b.Dx()), float64(b.Dy()), w, h)
		if scale > 0 {
			op := &ebiten.DrawImageOptions{Filter: ebiten.FilterLinear}
			op.GeoM.Scale(scale, scale)
			op.GeoM.Translate(x+ox, y+oy)
			screen.DrawImage(frame.Image, op)
		}

		vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), frameBorderWidth, frameBorder, true)
		if frame.Gesture == components.GestureResizing {
			s.drawHandle(screen, frame.Edge, x, y, w, h)
		}
	}
}

func (s *OverlayRenderSystem) drawHandle(screen *ebiten.Image, edge components.Edge, x, y, w, h float64) {
	t := s.handleThickness
	switch edge {
	case components.EdgeLeft:
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(t), float32(h), frameHandle, false)
	case components.EdgeRight:
		vector.DrawFilledRect(screen, float32(x+w-t), float32(y), float32(t), float32(h), frameHandle, false)
	case components.EdgeTop:
		vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(t), frameHandle, false)
	case components.EdgeBottom:
		vector.DrawFilledRect(screen, float32(x), float32(y+h-t), float32(w), float32(t), frameHandle, false)
	}
}

func (s *OverlayRenderSystem) visibleFrames() []*components.OverlayFrameComponent {
	var frames []*components.OverlayFrameComponent
	for _, id := range ecs.GetEntitiesWith1[*components.OverlayFrameComponent](s.entityManager) {
		frame, _ := ecs.GetComponent[*components.OverlayFrameComponent](s.entityManager, id)
		if frame.Image != nil {
			frames = append(frames, frame)
		}
	}
	return frames
}
