package systems

import (
	"log"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/utils"
)

// GeometryStore 图片框几何的持久化接口（由 game.OverlayStore 实现）
type GeometryStore interface {
	Load() components.OverlayGeometry
	Save(g components.OverlayGeometry) error
}

// DragResizeSystem 图片框拖动/缩放控制
//
// 状态机：Idle → Dragging | Resizing(edge) → Idle（指针释放）。
// 按下点落在边缘手柄上时开始缩放（不会同时开始拖动），落在其余区域时开始拖动。
// 手势进行中的按下会被忽略；没有取消手势的路径。
// 每一步都重新计算并约束几何，手势结束时持久化。
type DragResizeSystem struct {
	entityManager *ecs.EntityManager
	dispatcher    *PointerDispatcher
	store         GeometryStore

	viewport        utils.Viewport
	limits          utils.FrameLimits
	handleThickness float64

	downHandle *ListenerHandle
	moveHandle *ListenerHandle
	upHandle   *ListenerHandle
	active     ecs.EntityID
}

// NewDragResizeSystem 创建图片框控制系统（尚未激活）
//
// store 可为 nil（不持久化）。
func NewDragResizeSystem(em *ecs.EntityManager, dispatcher *PointerDispatcher, store GeometryStore, limits utils.FrameLimits, handleThickness float64) *DragResizeSystem {
	return &DragResizeSystem{
		entityManager:   em,
		dispatcher:      dispatcher,
		store:           store,
		limits:          limits,
		handleThickness: handleThickness,
	}
}

// Activate 恢复已保存的几何并注册按下监听
func (s *DragResizeSystem) Activate(vp utils.Viewport) {
	s.viewport = vp
	if s.store != nil {
		restored := s.store.Load()
		for _, frame := range s.frames() {
			frame.Geometry = utils.NormalizeGeometry(restored, vp, s.limits)
		}
	}
	if !s.downHandle.Active() {
		s.downHandle = s.dispatcher.On(PointerDown, PriorityFrame, s.onDown)
	}
}

// Deactivate 注销所有监听；进行中的手势被放弃（不持久化）
func (s *DragResizeSystem) Deactivate() {
	s.downHandle.Release()
	s.endGesture()
	for _, frame := range s.frames() {
		frame.Gesture = components.GestureIdle
		frame.Edge = components.EdgeNone
	}
}

// SetViewport 视口变化时重新约束几何
func (s *DragResizeSystem) SetViewport(vp utils.Viewport) {
	if vp == s.viewport {
		return
	}
	s.viewport = vp
	for _, frame := range s.frames() {
		frame.Geometry = utils.NormalizeGeometry(frame.Geometry, vp, s.limits)
	}
}

// Viewport 返回当前视口
func (s *DragResizeSystem) Viewport() utils.Viewport {
	return s.viewport
}

func (s *DragResizeSystem) frames() []*components.OverlayFrameComponent {
	ids := ecs.GetEntitiesWith1[*components.OverlayFrameComponent](s.entityManager)
	frames := make([]*components.OverlayFrameComponent, 0, len(ids))
	for _, id := range ids {
		frame, _ := ecs.GetComponent[*components.OverlayFrameComponent](s.entityManager, id)
		frames = append(frames, frame)
	}
	return frames
}

func (s *DragResizeSystem) onDown(ev PointerEvent) bool {
	if s.moveHandle.Active() {
		// 手势进行中
		return true
	}
	for _, id := range ecs.GetEntitiesWith1[*components.OverlayFrameComponent](s.entityManager) {
		frame, _ := ecs.GetComponent[*components.OverlayFrameComponent](s.entityManager, id)
		if !frame.Visible() || !frame.Movable() || frame.Gesture != components.GestureIdle {
			continue
		}
		edge, body := utils.HitTestFrame(frame.Geometry, s.viewport, ev.X, ev.Y, s.handleThickness)
		if !body {
			continue
		}
		s.Begin(id, edge, ev.X, ev.Y)
		return true
	}
	return false
}

// Begin 开始拖动（edge 为 EdgeNone）或缩放手势
func (s *DragResizeSystem) Begin(id ecs.EntityID, edge components.Edge, x, y float64) bool {
	frame, ok := ecs.GetComponent[*components.OverlayFrameComponent](s.entityManager, id)
	if !ok || frame.Gesture != components.GestureIdle {
		return false
	}
	frame.Gesture = components.GestureDragging
	if edge != components.EdgeNone {
		frame.Gesture = components.GestureResizing
	}
	frame.Edge = edge
	frame.StartX, frame.StartY = x, y
	frame.Start = frame.Geometry

	s.active = id
	s.moveHandle = s.dispatcher.On(PointerMove, PriorityFrame, func(ev PointerEvent) bool {
		s.Move(ev.X, ev.Y)
		return false
	})
	s.upHandle = s.dispatcher.On(PointerUp, PriorityFrame, func(ev PointerEvent) bool {
		s.End()
		return true
	})
	return true
}

// Move 按当前手势更新几何
func (s *DragResizeSystem) Move(x, y float64) {
	frame, ok := ecs.GetComponent[*components.OverlayFrameComponent](s.entityManager, s.active)
	if !ok {
		return
	}
	switch frame.Gesture {
	case components.GestureDragging:
		frame.Geometry = utils.DragGeometry(frame.Start, frame.StartX, frame.StartY, x, y, s.viewport, s.limits)
	case components.GestureResizing:
		if g, ok := utils.ResizeGeometry(frame.Start, frame.Edge, frame.StartX, frame.StartY, x, y, s.viewport, s.limits); ok {
			frame.Geometry = g
		}
	}
}

// End 结束手势并持久化几何
func (s *DragResizeSystem) End() {
	id := s.active
	s.endGesture()

	frame, ok := ecs.GetComponent[*components.OverlayFrameComponent](s.entityManager, id)
	if !ok || frame.Gesture == components.GestureIdle {
		return
	}
	frame.Gesture = components.GestureIdle
	frame.Edge = components.EdgeNone

	if s.store == nil {
		return
	}
	if err := s.store.Save(frame.Geometry); err != nil {
		log.Printf("[DragResizeSystem] Warning: failed to save frame geometry: %v", err)
	}
}

func (s *DragResizeSystem) endGesture() {
	s.moveHandle.Release()
	s.upHandle.Release()
	s.moveHandle, s.upHandle = nil, nil
}
