package systems

import (
	"log"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/utils"
)

// BoneAimSystem 每帧把视线目标写入视线控制骨骼，然后更新骨架世界变换
//
// 执行顺序：AnimationLayerSystem.Update 之后、渲染之前。
// 缺少包围盒、骨骼或骨架时跳过视线写入，但只要骨架存在仍会更新世界变换。
type BoneAimSystem struct {
	entityManager *ecs.EntityManager
}

// NewBoneAimSystem 创建视线控制系统
func NewBoneAimSystem(em *ecs.EntityManager) *BoneAimSystem {
	return &BoneAimSystem{entityManager: em}
}

// Update 更新所有骨架
func (s *BoneAimSystem) Update(deltaTime float64) {
	for _, id := range ecs.GetEntitiesWith1[*components.SkeletonComponent](s.entityManager) {
		skel, _ := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
		if skel.Skeleton == nil {
			continue
		}

		if aim, ok := ecs.GetComponent[*components.AimBoneComponent](s.entityManager, id); ok {
			if gaze, ok := ecs.GetComponent[*components.GazeComponent](s.entityManager, id); ok {
				s.aim(skel, aim, gaze)
			}
		}

		skel.Skeleton.Update(deltaTime)
		skel.Skeleton.UpdateWorldTransform()
	}
}

func (s *BoneAimSystem) aim(skel *components.SkeletonComponent, aim *components.AimBoneComponent, gaze *components.GazeComponent) {
	if skel.Geometry == nil || !gaze.HasSample {
		return
	}
	index, ok := ResolveBone(skel, aim)
	if !ok {
		return
	}
	bone := skel.Skeleton.Bones[index]
	bone.X, bone.Y = utils.AimBonePosition(gaze.Target, *skel.Geometry)
}

// ResolveBone 校验视线骨骼句柄，句柄过期时按名称重新解析
//
// 返回 ok=false 表示当前骨架中没有该骨骼。
func ResolveBone(skel *components.SkeletonComponent, aim *components.AimBoneComponent) (int, bool) {
	if skel.Skeleton == nil {
		return -1, false
	}
	h := aim.Handle
	if h.Generation == skel.Generation && h.Index >= 0 && h.Index < len(skel.Skeleton.Bones) {
		return h.Index, true
	}
	if h.Generation == skel.Generation && h.Index < 0 {
		// 已经在当前代数下解析失败过
		return -1, false
	}

	index := skel.Skeleton.FindBoneIndex(aim.BoneName)
	aim.Handle = components.BoneHandle{Generation: skel.Generation, Index: index}
	if index < 0 {
		log.Printf("[BoneAimSystem] Warning: bone %q not found in %s, gaze tracking disabled", aim.BoneName, skel.AssetKey)
		return -1, false
	}
	return index, true
}
