package systems

import (
	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/utils"
)

// PointerTrackingSystem 把指针移动映射为视线目标
//
// 视线跟随与会话状态无关，只要渲染区域已就绪就持续更新。
// 同一帧内的多次移动只保留最后一次（后写覆盖）。
type PointerTrackingSystem struct {
	entityManager *ecs.EntityManager
	dispatcher    *PointerDispatcher
	moveHandle    *ListenerHandle
}

// NewPointerTrackingSystem 创建视线跟随系统（尚未激活）
func NewPointerTrackingSystem(em *ecs.EntityManager, dispatcher *PointerDispatcher) *PointerTrackingSystem {
	return &PointerTrackingSystem{entityManager: em, dispatcher: dispatcher}
}

// Activate 注册全局指针移动监听
func (s *PointerTrackingSystem) Activate() {
	if s.moveHandle.Active() {
		return
	}
	s.moveHandle = s.dispatcher.On(PointerMove, PriorityTracking, func(ev PointerEvent) bool {
		s.HandleMove(ev.X, ev.Y)
		return false
	})
}

// Deactivate 注销监听
func (s *PointerTrackingSystem) Deactivate() {
	s.moveHandle.Release()
	s.moveHandle = nil
}

// Active 是否已激活
func (s *PointerTrackingSystem) Active() bool {
	return s.moveHandle.Active()
}

// HandleMove 处理一次指针移动
func (s *PointerTrackingSystem) HandleMove(x, y float64) {
	entities := ecs.GetEntitiesWith2[*components.GazeComponent, *components.SurfaceComponent](s.entityManager)
	for _, id := range entities {
		gaze, _ := ecs.GetComponent[*components.GazeComponent](s.entityManager, id)
		surface, _ := ecs.GetComponent[*components.SurfaceComponent](s.entityManager, id)

		target, ok := utils.MapPointerToGaze(x, y, surface, gaze.HorizontalScale)
		if !ok {
			continue
		}
		gaze.Target = target
		gaze.HasSample = true
	}
}
