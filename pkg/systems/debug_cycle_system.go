package systems

import (
	"log"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
)

// DebugCycleSystem 调试模式下按固定间隔依次循环播放骨架中的每个动画
// 只处理 AnimationLayerComponent.Debug 为 true 的实体
type DebugCycleSystem struct {
	entityManager *ecs.EntityManager
	layers        *AnimationLayerSystem
}

// NewDebugCycleSystem 创建调试轮播系统
func NewDebugCycleSystem(em *ecs.EntityManager, layers *AnimationLayerSystem) *DebugCycleSystem {
	return &DebugCycleSystem{entityManager: em, layers: layers}
}

// Update 推进计时器，到期后切换到下一个动画
func (s *DebugCycleSystem) Update(deltaTime float64) {
	entities := ecs.GetEntitiesWith3[*components.DebugCycleComponent, *components.AnimationLayerComponent, *components.SkeletonComponent](s.entityManager)
	for _, id := range entities {
		layer, _ := ecs.GetComponent[*components.AnimationLayerComponent](s.entityManager, id)
		if !layer.Debug {
			continue
		}
		cycle, _ := ecs.GetComponent[*components.DebugCycleComponent](s.entityManager, id)
		skel, _ := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
		names := skel.AnimationNames
		if len(names) == 0 {
			continue
		}

		if !cycle.Started {
			cycle.Started = true
			cycle.Index = 0
			cycle.Timer = 0
			s.play(id, cycle, names)
			continue
		}

		cycle.Timer += deltaTime
		if cycle.Interval <= 0 || cycle.Timer < cycle.Interval {
			continue
		}
		cycle.Timer -= cycle.Interval
		s.play(id, cycle, names)
	}
}

func (s *DebugCycleSystem) play(id ecs.EntityID, cycle *components.DebugCycleComponent, names []string) {
	name := names[cycle.Index%len(names)]
	cycle.Index = (cycle.Index + 1) % len(names)
	log.Printf("[DebugCycle] playing %s", name)
	s.layers.ForceAnimation(id, components.TrackBody, name, true)
}
