package scenes

import (
	"log"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/config"
	"github.com/decker502/avatarstage/pkg/conversation"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/embedded"
	"github.com/decker502/avatarstage/pkg/game"
	"github.com/decker502/avatarstage/pkg/systems"
	"github.com/decker502/avatarstage/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
)

// placeholderFontSize 加载失败提示的字号
const placeholderFontSize = 18

// NewAvatarScene 创建角色场景
//
// 创建实体和系统、激活指针监听并加载初始角色。
// 角色加载失败不会返回错误：渲染区域显示占位提示，按 Tab 可以切换到其他角色。
func NewAvatarScene(rm *game.ResourceManager, sm *game.SceneManager, opts AvatarSceneOptions) *AvatarScene {
	interaction := opts.Interaction
	if interaction == nil {
		interaction = config.DefaultInteractionConfig()
	}
	inbox := opts.Inbox
	if inbox == nil {
		inbox = conversation.NewInbox(conversation.DefaultInboxCapacity)
	}
	mode := opts.Mode
	if mode == "" {
		mode = components.DisplayModeFrame
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = config.WindowWidth, config.WindowHeight
	}

	s := &AvatarScene{
		entityManager:   ecs.NewEntityManager(),
		resourceManager: rm,
		sceneManager:    sm,
		interaction:     interaction,
		inbox:           inbox,
		store:           opts.Store,
		sampler:         utils.NewPointerSampler(),
		mode:            mode,
		debug:           opts.Debug,
		showHUD:         opts.Debug,
		viewport:        utils.Viewport{Width: float64(width), Height: float64(height)},
	}

	s.initEntities()
	s.initSystems(rm)

	if opts.Script != nil {
		s.player = conversation.NewScriptPlayer(opts.Script, s.inbox, embedded.ReadFile)
		log.Printf("[AvatarScene] Playing conversation script %q (%d events)", opts.Script.Name, len(opts.Script.Events))
	}

	key := opts.AvatarKey
	if key == "" && rm.Registry() != nil {
		key = rm.Registry().Default
	}
	if err := s.loaderSystem.Load(s.character, key); err != nil {
		log.Printf("[AvatarScene] Avatar %q not loaded, showing placeholder: %v", key, err)
	}

	log.Printf("[AvatarScene] Initialized: avatar=%s mode=%s debug=%v viewport=%.0fx%.0f",
		key, mode, opts.Debug, s.viewport.Width, s.viewport.Height)
	return s
}

// initEntities 创建角色实体和图片框实体
func (s *AvatarScene) initEntities() {
	em := s.entityManager
	cfg := s.interaction

	s.character = em.CreateEntity()
	ecs.AddComponent(em, s.character, &components.SkeletonComponent{})
	ecs.AddComponent(em, s.character, &components.AimBoneComponent{Handle: components.InvalidBoneHandle})
	ecs.AddComponent(em, s.character, &components.GazeComponent{HorizontalScale: cfg.Gaze.HorizontalScale})
	ecs.AddComponent(em, s.character, &components.SurfaceComponent{
		Draggable: s.mode == components.DisplayModeFullscreen,
		Dimmed:    true,
	})
	ecs.AddComponent(em, s.character, &components.AnimationLayerComponent{
		Debug:     s.debug,
		VisemeMix: cfg.Animation.VisemeMix,
	})
	rotation := make([]string, len(cfg.Animation.IdleRotation))
	copy(rotation, cfg.Animation.IdleRotation)
	ecs.AddComponent(em, s.character, &components.IdleCycleComponent{
		Rotation:      rotation,
		DragThreshold: cfg.Character.DragThreshold,
	})
	ecs.AddComponent(em, s.character, &components.ConversationComponent{})
	ecs.AddComponent(em, s.character, &components.DebugCycleComponent{Interval: cfg.Debug.CycleInterval.Seconds()})
	s.layoutSurface()

	s.frame = em.CreateEntity()
	ecs.AddComponent(em, s.frame, &components.OverlayFrameComponent{
		Mode:     s.mode,
		Geometry: defaultGeometry(cfg),
	})
}

// initSystems 创建并激活所有系统
func (s *AvatarScene) initSystems(rm *game.ResourceManager) {
	em := s.entityManager
	cfg := s.interaction

	s.dispatcher = systems.NewPointerDispatcher()
	s.layerSystem = systems.NewAnimationLayerSystem(em)
	s.trackingSystem = systems.NewPointerTrackingSystem(em, s.dispatcher)
	s.boneAimSystem = systems.NewBoneAimSystem(em)
	s.idleClickSystem = systems.NewIdleClickSystem(em, s.dispatcher, s.layerSystem)
	s.bridgeSystem = systems.NewConversationBridgeSystem(em, s.inbox, s.layerSystem, decodeImage, cfg.Animation.StateAnimations)
	s.debugCycleSystem = systems.NewDebugCycleSystem(em, s.layerSystem)
	s.loaderSystem = systems.NewAvatarLoaderSystem(em, rm, systems.AvatarLoaderOptions{
		DefaultAnimation: cfg.Animation.DefaultAnimation,
		InitialViseme:    cfg.Animation.InitialViseme,
	})

	limits := utils.FrameLimits{MinSize: cfg.ImageFrame.MinSize, OffscreenRatio: cfg.ImageFrame.OffscreenRatio}
	s.dragResizeSystem = systems.NewDragResizeSystem(em, s.dispatcher, s.store, limits, cfg.ImageFrame.HandleThickness)

	face, err := rm.LoadFont(placeholderFontSize)
	if err != nil {
		log.Printf("[AvatarScene] Warning: placeholder font unavailable: %v", err)
	}
	s.skeletonRender = systems.NewSkeletonRenderSystem(em, face)
	s.overlayRender = systems.NewOverlayRenderSystem(em, cfg.ImageFrame.HandleThickness)

	s.trackingSystem.Activate()
	s.idleClickSystem.Activate()
	s.dragResizeSystem.Activate(s.viewport)
}

func defaultGeometry(cfg *config.InteractionConfig) components.OverlayGeometry {
	return components.OverlayGeometry{
		Width:  cfg.ImageFrame.DefaultWidth,
		Height: cfg.ImageFrame.DefaultHeight,
		Right:  cfg.ImageFrame.DefaultRight,
		Top:    cfg.ImageFrame.DefaultTop,
	}
}

// decodeImage 解码会话引擎推送的图片并上传到 GPU
func decodeImage(format, data string) (*ebiten.Image, error) {
	img, err := game.DecodeBase64Image(format, data)
	if err != nil {
		return nil, err
	}
	return ebiten.NewImageFromImage(img), nil
}
