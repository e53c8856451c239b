package systems

import (
	"math"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
)

// IdleClickSystem 点击角色时轮播待机/反应动画，并处理可拖动角色的拖动
//
// 一次手势：在角色区域内按下 → （可选）移动 → 释放。
// 若角色可拖动且任意一次移动的位移超过阈值，本次手势被视为拖动，释放时不触发点击。
type IdleClickSystem struct {
	entityManager *ecs.EntityManager
	dispatcher    *PointerDispatcher
	layers        *AnimationLayerSystem

	downHandle *ListenerHandle
	moveHandle *ListenerHandle
	upHandle   *ListenerHandle
	pressed    ecs.EntityID
}

// NewIdleClickSystem 创建点击轮播系统（尚未激活）
func NewIdleClickSystem(em *ecs.EntityManager, dispatcher *PointerDispatcher, layers *AnimationLayerSystem) *IdleClickSystem {
	return &IdleClickSystem{entityManager: em, dispatcher: dispatcher, layers: layers}
}

// Activate 注册角色区域的按下监听
func (s *IdleClickSystem) Activate() {
	if s.downHandle.Active() {
		return
	}
	s.downHandle = s.dispatcher.On(PointerDown, PriorityCharacter, s.onDown)
}

// Deactivate 注销全部监听（包括进行中的手势）
func (s *IdleClickSystem) Deactivate() {
	s.downHandle.Release()
	s.endGesture()
}

func (s *IdleClickSystem) onDown(ev PointerEvent) bool {
	if s.moveHandle.Active() {
		return false
	}
	for _, id := range ecs.GetEntitiesWith2[*components.IdleCycleComponent, *components.SurfaceComponent](s.entityManager) {
		surface, _ := ecs.GetComponent[*components.SurfaceComponent](s.entityManager, id)
		if !surface.Contains(ev.X, ev.Y) {
			continue
		}
		cycle, _ := ecs.GetComponent[*components.IdleCycleComponent](s.entityManager, id)
		cycle.Pressed = true
		cycle.Dragging = surface.Draggable
		cycle.WasDragged = false
		cycle.LastX, cycle.LastY = ev.X, ev.Y

		// 手势期间监听全局移动/释放，即使指针离开了角色区域
		s.pressed = id
		s.moveHandle = s.dispatcher.On(PointerMove, PriorityCharacter, s.onMove)
		s.upHandle = s.dispatcher.On(PointerUp, PriorityCharacter, s.onUp)
		return true
	}
	return false
}

func (s *IdleClickSystem) onMove(ev PointerEvent) bool {
	cycle, ok := ecs.GetComponent[*components.IdleCycleComponent](s.entityManager, s.pressed)
	if !ok || !cycle.Dragging {
		return false
	}
	surface, ok := ecs.GetComponent[*components.SurfaceComponent](s.entityManager, s.pressed)
	if !ok {
		return false
	}

	dx, dy := ev.X-cycle.LastX, ev.Y-cycle.LastY
	if math.Abs(dx) > cycle.DragThreshold || math.Abs(dy) > cycle.DragThreshold {
		cycle.WasDragged = true
	}
	surface.X += dx
	surface.Y += dy
	cycle.LastX, cycle.LastY = ev.X, ev.Y

	// 不消费：视线跟随仍需收到移动事件
	return false
}

func (s *IdleClickSystem) onUp(ev PointerEvent) bool {
	id := s.pressed
	s.endGesture()

	cycle, ok := ecs.GetComponent[*components.IdleCycleComponent](s.entityManager, id)
	if !ok {
		return false
	}
	wasDragged := cycle.WasDragged
	cycle.Pressed = false
	cycle.Dragging = false
	cycle.WasDragged = false
	if wasDragged {
		return true
	}

	surface, ok := ecs.GetComponent[*components.SurfaceComponent](s.entityManager, id)
	if ok && surface.Contains(ev.X, ev.Y) {
		s.Click(id)
	}
	return true
}

func (s *IdleClickSystem) endGesture() {
	s.moveHandle.Release()
	s.upHandle.Release()
	s.moveHandle, s.upHandle = nil, nil
}

// Click 播放轮播中的下一个可用动画
// 返回播放的动画名；没有可用动画时返回空字符串
func (s *IdleClickSystem) Click(id ecs.EntityID) string {
	cycle, ok := ecs.GetComponent[*components.IdleCycleComponent](s.entityManager, id)
	if !ok {
		return ""
	}
	skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
	if !ok || skel.State == nil {
		return ""
	}

	current := ""
	if track, ok := s.layers.Track(id, components.TrackBody); ok {
		current = track.Animation
	}
	next, ok := NextInRotation(cycle.Rotation, current, skel.Available)
	if !ok {
		return ""
	}
	s.layers.SetAnimation(id, components.TrackBody, next, true)
	return next
}

// NextInRotation 返回轮播中 current 之后第一个存在于 available 中的动画
//
// current 不在轮播中时从第一个开始。绕回起点仍未找到时返回 ok=false
// （只有 current 自身存在时会返回 current）。
func NextInRotation(rotation []string, current string, available map[string]bool) (string, bool) {
	n := len(rotation)
	if n == 0 {
		return "", false
	}
	start := -1
	for i, name := range rotation {
		if name == current {
			start = i
			break
		}
	}
	for step := 1; step <= n; step++ {
		i := (start + step) % n
		if available[rotation[i]] {
			return rotation[i], true
		}
	}
	return "", false
}
