package systems

import (
	"log"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
)

// AnimationLayerSystem 分层动画控制器
//
// 轨道 0 播放身体/待机/反应动画，轨道 1 专用于口型。
// 所有对动画轨道的修改都必须经过本系统：
//   - 动画名必须存在于当前骨架中，否则记录警告并忽略
//   - 对同一轨道重复设置相同的动画（循环标志也相同）不产生任何修改
//   - 重复触发当前口型不产生任何修改
//   - 调试模式下禁用 SetAnimation/AddAnimation
type AnimationLayerSystem struct {
	entityManager *ecs.EntityManager
}

// NewAnimationLayerSystem 创建分层动画控制器
func NewAnimationLayerSystem(em *ecs.EntityManager) *AnimationLayerSystem {
	return &AnimationLayerSystem{entityManager: em}
}

func (s *AnimationLayerSystem) components(id ecs.EntityID) (*components.SkeletonComponent, *components.AnimationLayerComponent, bool) {
	skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
	if !ok || skel.Skeleton == nil || skel.State == nil {
		return nil, nil, false
	}
	layer, ok := ecs.GetComponent[*components.AnimationLayerComponent](s.entityManager, id)
	if !ok {
		return nil, nil, false
	}
	return skel, layer, true
}

// SetAnimation 立即替换轨道上的动画
//
// 返回 true 表示轨道被修改。
func (s *AnimationLayerSystem) SetAnimation(id ecs.EntityID, track int, name string, loop bool) bool {
	skel, layer, ok := s.components(id)
	if !ok {
		return false
	}
	if layer.Debug {
		log.Printf("[AnimationLayerSystem] Debug mode: ignoring SetAnimation(%d, %s)", track, name)
		return false
	}
	return s.set(skel, track, name, loop)
}

// ForceAnimation 跳过调试模式检查直接设置动画（供调试轮播使用）
func (s *AnimationLayerSystem) ForceAnimation(id ecs.EntityID, track int, name string, loop bool) bool {
	skel, _, ok := s.components(id)
	if !ok {
		return false
	}
	return s.set(skel, track, name, loop)
}

func (s *AnimationLayerSystem) set(skel *components.SkeletonComponent, track int, name string, loop bool) bool {
	if !skel.Available[name] {
		log.Printf("[AnimationLayerSystem] Warning: animation %q not found in %s", name, skel.AssetKey)
		return false
	}
	if current := skel.State.Current(track); current != nil && current.Animation.Name == name && current.Loop == loop {
		return false
	}
	if _, err := skel.State.SetAnimationByName(track, name, loop); err != nil {
		log.Printf("[AnimationLayerSystem] Warning: %v", err)
		return false
	}
	return true
}

// AddAnimation 在轨道当前动画之后排队播放
//
// delay <= 0 时在上一个动画结束时开始（减去交叉淡入时长，再加上 delay）
func (s *AnimationLayerSystem) AddAnimation(id ecs.EntityID, track int, name string, loop bool, delay float64) bool {
	skel, layer, ok := s.components(id)
	if !ok {
		return false
	}
	if layer.Debug {
		log.Printf("[AnimationLayerSystem] Debug mode: ignoring AddAnimation(%d, %s)", track, name)
		return false
	}
	if !skel.Available[name] {
		log.Printf("[AnimationLayerSystem] Warning: animation %q not found in %s", name, skel.AssetKey)
		return false
	}
	if _, err := skel.State.AddAnimationByName(track, name, loop, delay); err != nil {
		log.Printf("[AnimationLayerSystem] Warning: %v", err)
		return false
	}
	return true
}

// Play 恢复动画时间推进
func (s *AnimationLayerSystem) Play(id ecs.EntityID) {
	if skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id); ok {
		skel.Paused = false
	}
}

// Pause 暂停动画时间推进（视线跟随不受影响）
func (s *AnimationLayerSystem) Pause(id ecs.EntityID) {
	if skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id); ok {
		skel.Paused = true
	}
}

// TriggerViseme 在轨道 1 播放口型
//
// 与当前口型相同时不做任何修改；否则设置两者之间的交叉淡入时长，
// 以非循环方式播放新口型并记录为当前口型。
func (s *AnimationLayerSystem) TriggerViseme(id ecs.EntityID, name string) bool {
	skel, layer, ok := s.components(id)
	if !ok {
		return false
	}
	if name == layer.ActiveViseme {
		return false
	}
	if !skel.Available[name] {
		log.Printf("[AnimationLayerSystem] Warning: viseme %q not found in %s", name, skel.AssetKey)
		return false
	}

	// 初始口型可能不存在于骨架中，此时只是没有淡入
	if skel.Available[layer.ActiveViseme] {
		if err := skel.State.Data.SetMixByName(layer.ActiveViseme, name, layer.VisemeMix); err != nil {
			log.Printf("[AnimationLayerSystem] Warning: %v", err)
		}
	}
	entry, err := skel.State.SetAnimationByName(components.TrackViseme, name, false)
	if err != nil {
		log.Printf("[AnimationLayerSystem] Warning: %v", err)
		return false
	}
	entry.TimeScale = 1
	layer.ActiveViseme = name
	return true
}

// AvailableAnimations 返回当前骨架中的全部动画名
func (s *AnimationLayerSystem) AvailableAnimations(id ecs.EntityID) []string {
	skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
	if !ok {
		return nil
	}
	return append([]string(nil), skel.AnimationNames...)
}

// Track 返回轨道当前状态的快照
func (s *AnimationLayerSystem) Track(id ecs.EntityID, track int) (components.TrackState, bool) {
	skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
	if !ok || skel.State == nil {
		return components.TrackState{}, false
	}
	entry := skel.State.Current(track)
	if entry == nil {
		return components.TrackState{}, false
	}
	return components.TrackState{Track: track, Animation: entry.Animation.Name, Loop: entry.Loop}, true
}

// Update 推进动画状态并把姿势应用到骨架
// 暂停时时间不推进，但仍然应用当前姿势
func (s *AnimationLayerSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.SkeletonComponent](s.entityManager) {
		skel, _ := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
		if skel.Skeleton == nil || skel.State == nil {
			continue
		}
		if !skel.Paused {
			skel.State.Update(deltaTime)
		}
		skel.State.Apply(skel.Skeleton)
	}
}
