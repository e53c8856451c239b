package systems

import (
	"fmt"
	"log"
	"sort"

	"github.com/decker502/avatarstage/internal/spine"
	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/game"
)

// AvatarSource 按资源键加载角色资源（由 game.ResourceManager 实现）
type AvatarSource interface {
	LoadAvatar(key string) (*game.AvatarAssets, error)
}

// AvatarLoaderOptions 加载后的初始设置
type AvatarLoaderOptions struct {
	// DefaultAnimation 加载后在轨道 0 循环播放的动画（角色配置未指定时使用）
	DefaultAnimation string

	// InitialViseme 加载后视为当前口型的动画名
	InitialViseme string
}

// AvatarLoaderSystem 负责角色资源的加载、切换与释放
//
// 每次加载或释放都会递增 SkeletonComponent.Generation，使旧的骨骼句柄失效。
// 加载失败时骨架为 nil，LoadError 记录原因，渲染系统据此显示占位提示。
type AvatarLoaderSystem struct {
	entityManager *ecs.EntityManager
	source        AvatarSource
	options       AvatarLoaderOptions
	loaded        map[ecs.EntityID]*game.AvatarAssets
}

// NewAvatarLoaderSystem 创建角色加载系统
func NewAvatarLoaderSystem(em *ecs.EntityManager, source AvatarSource, options AvatarLoaderOptions) *AvatarLoaderSystem {
	return &AvatarLoaderSystem{
		entityManager: em,
		source:        source,
		options:       options,
		loaded:        make(map[ecs.EntityID]*game.AvatarAssets),
	}
}

// Load 为实体加载（或切换到）指定角色
//
// 旧资源总是先被释放。返回的错误同时记录在 SkeletonComponent.LoadError 中。
func (s *AvatarLoaderSystem) Load(id ecs.EntityID, key string) error {
	skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
	if !ok {
		return fmt.Errorf("entity %d has no skeleton component", id)
	}
	s.Release(id)

	skel.AssetKey = key
	assets, err := s.source.LoadAvatar(key)
	if err != nil {
		skel.LoadError = err
		log.Printf("[AvatarLoader] Failed to load avatar %q: %v", key, err)
		return err
	}
	s.loaded[id] = assets
	s.mount(id, skel, assets)
	return nil
}

func (s *AvatarLoaderSystem) mount(id ecs.EntityID, skel *components.SkeletonComponent, assets *game.AvatarAssets) {
	data := assets.Skeleton
	skeleton := spine.NewSkeleton(data)
	if scale := assets.Config.Scale; scale > 0 {
		skeleton.ScaleX, skeleton.ScaleY = scale, scale
	}
	stateData := spine.NewAnimationStateData(data)
	stateData.DefaultMix = 0

	skel.Skeleton = skeleton
	skel.State = spine.NewAnimationState(stateData)
	skel.Pages = assets.Pages
	skel.PremultipliedAlpha = assets.PremultipliedAlpha
	skel.LoadError = nil
	skel.Paused = false

	skel.AnimationNames = data.AnimationNames()
	sort.Strings(skel.AnimationNames)
	skel.Available = make(map[string]bool, len(skel.AnimationNames))
	for _, name := range skel.AnimationNames {
		skel.Available[name] = true
	}

	// 视线控制骨骼只用于驱动约束，不参与渲染和包围盒
	if aim, ok := ecs.GetComponent[*components.AimBoneComponent](s.entityManager, id); ok {
		if aim.BoneName == "" {
			aim.BoneName = assets.Config.AimBone
		}
		aim.Handle = components.InvalidBoneHandle
		if bone := skeleton.FindBone(aim.BoneName); bone != nil {
			bone.Active = false
		}
	}

	defaultAnimation := assets.Config.DefaultAnimation
	if defaultAnimation == "" {
		defaultAnimation = s.options.DefaultAnimation
	}
	if skel.Available[defaultAnimation] {
		if _, err := skel.State.SetAnimationByName(components.TrackBody, defaultAnimation, true); err != nil {
			log.Printf("[AvatarLoader] Warning: %v", err)
		}
		skel.State.Apply(skeleton)
	} else if defaultAnimation != "" {
		log.Printf("[AvatarLoader] Warning: default animation %q not found in %s", defaultAnimation, skel.AssetKey)
	}

	if layer, ok := ecs.GetComponent[*components.AnimationLayerComponent](s.entityManager, id); ok {
		layer.ActiveViseme = s.options.InitialViseme
	}
	if cycle, ok := ecs.GetComponent[*components.DebugCycleComponent](s.entityManager, id); ok {
		cycle.Started = false
	}

	skeleton.UpdateWorldTransform()
	if x, y, w, h, ok := skeleton.GetBounds(); ok {
		skel.Geometry = &components.SkeletonGeometry{OffsetX: x, OffsetY: y, Width: w, Height: h}
	} else {
		skel.Geometry = nil
		log.Printf("[AvatarLoader] Warning: %s has no visible attachments, gaze tracking disabled", skel.AssetKey)
	}

	log.Printf("[AvatarLoader] Mounted %s (generation %d, %d animations)", skel.AssetKey, skel.Generation, len(skel.AnimationNames))
}

// Release 释放实体当前的角色资源
// 释放失败只记录日志，组件状态总会被清空
func (s *AvatarLoaderSystem) Release(id ecs.EntityID) {
	skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, id)
	if !ok {
		return
	}
	if assets, ok := s.loaded[id]; ok {
		if err := assets.Release(); err != nil {
			log.Printf("[AvatarLoader] Warning: failed to release %s: %v", skel.AssetKey, err)
		}
		delete(s.loaded, id)
	}

	skel.Generation++
	skel.Skeleton = nil
	skel.State = nil
	skel.Available = nil
	skel.AnimationNames = nil
	skel.Geometry = nil
	skel.Pages = nil
}

// ReleaseAll 释放全部已加载的资源（场景卸载时调用）
func (s *AvatarLoaderSystem) ReleaseAll() {
	for id := range s.loaded {
		s.Release(id)
	}
}
