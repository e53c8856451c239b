package scenes

import (
	"image/color"
	"log"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/config"
	"github.com/decker502/avatarstage/pkg/conversation"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/decker502/avatarstage/pkg/game"
	"github.com/decker502/avatarstage/pkg/systems"
	"github.com/decker502/avatarstage/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// backgroundColor 没有全屏图片时的背景色
var backgroundColor = color.RGBA{R: 24, G: 26, B: 33, A: 255}

// AvatarSceneOptions 角色场景启动参数
type AvatarSceneOptions struct {
	// AvatarKey 初始角色资源键（如 "robot"）
	AvatarKey string

	// Mode 图片展示模式
	Mode components.DisplayMode

	// Debug 调试模式：轮播所有动画，忽略外部动画指令
	Debug bool

	// Interaction 交互参数，nil 时使用默认值
	Interaction *config.InteractionConfig

	// Inbox 外部会话事件队列，nil 时场景自行创建
	Inbox *conversation.Inbox

	// Script 演示用会话脚本，可为 nil
	Script *conversation.Script

	// Store 图片框几何持久化，可为 nil
	Store systems.GeometryStore

	// Width, Height 初始视口尺寸
	Width  int
	Height int
}

// AvatarScene 角色场景
//
// 场景由一个角色实体（骨架、视线、分层动画、点击轮播、会话状态）
// 和一个图片框实体组成，所有行为都由 systems 包中的系统驱动。
//
// 每帧更新顺序：
//  1. 键盘快捷键
//  2. 指针采样 → PointerDispatcher（视线跟随、角色点击/拖动、图片框拖动/缩放）
//  3. 演示脚本 → Inbox → ConversationBridge → AnimationLayer
//  4. 调试轮播
//  5. 动画推进与姿态应用
//  6. 视线骨骼定位与世界变换
type AvatarScene struct {
	entityManager   *ecs.EntityManager
	resourceManager *game.ResourceManager
	sceneManager    *game.SceneManager
	interaction     *config.InteractionConfig

	inbox   *conversation.Inbox
	player  *conversation.ScriptPlayer
	store   systems.GeometryStore
	sampler *utils.PointerSampler

	// 系统
	dispatcher       *systems.PointerDispatcher
	trackingSystem   *systems.PointerTrackingSystem
	boneAimSystem    *systems.BoneAimSystem
	layerSystem      *systems.AnimationLayerSystem
	idleClickSystem  *systems.IdleClickSystem
	bridgeSystem     *systems.ConversationBridgeSystem
	dragResizeSystem *systems.DragResizeSystem
	debugCycleSystem *systems.DebugCycleSystem
	loaderSystem     *systems.AvatarLoaderSystem
	skeletonRender   *systems.SkeletonRenderSystem
	overlayRender    *systems.OverlayRenderSystem

	// 实体
	character ecs.EntityID
	frame     ecs.EntityID

	mode     components.DisplayMode
	debug    bool
	showHUD  bool
	viewport utils.Viewport

	// baseX, baseY 未拖动时渲染区域的左上角，视口变化时保留拖动偏移
	baseX float64
	baseY float64
}

// Update 更新场景逻辑
func (s *AvatarScene) Update(deltaTime float64) {
	s.handleKeys()

	s.dispatcher.Feed(s.sampler.Sample())

	if s.player != nil {
		s.player.Update(deltaTime)
	}
	s.bridgeSystem.Update(deltaTime)
	s.debugCycleSystem.Update(deltaTime)
	s.layerSystem.Update(deltaTime)
	s.boneAimSystem.Update(deltaTime)
}

func (s *AvatarScene) handleKeys() {
	// 开始体验：取消变暗
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		s.bridgeSystem.Start(s.character)
	}

	// 切换角色
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		s.nextAvatar()
	}

	// 暂停/继续动画
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, s.character); ok && skel.Paused {
			s.layerSystem.Play(s.character)
		} else {
			s.layerSystem.Pause(s.character)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		s.showHUD = !s.showHUD
	}
}

// nextAvatar 按注册表顺序切换到下一个角色
func (s *AvatarScene) nextAvatar() {
	registry := s.resourceManager.Registry()
	if registry == nil || len(registry.Keys()) == 0 {
		return
	}
	keys := registry.Keys()
	current := ""
	if skel, ok := ecs.GetComponent[*components.SkeletonComponent](s.entityManager, s.character); ok {
		current = skel.AssetKey
	}
	next := keys[0]
	for i, k := range keys {
		if k == current {
			next = keys[(i+1)%len(keys)]
			break
		}
	}
	if err := s.loaderSystem.Load(s.character, next); err != nil {
		log.Printf("[AvatarScene] Failed to switch avatar to %s: %v", next, err)
	}
}

// Draw 绘制场景：背景 → 角色 → 图片框 → 调试信息
func (s *AvatarScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	s.overlayRender.DrawBackground(screen)
	s.skeletonRender.Draw(screen)
	s.overlayRender.DrawFrames(screen)
	if s.showHUD {
		s.drawHUD(screen)
	}
}

// Resize 视口尺寸变化时重新布局渲染区域，并重新约束图片框
func (s *AvatarScene) Resize(width, height int) {
	vp := utils.Viewport{Width: float64(width), Height: float64(height)}
	if vp == s.viewport || width <= 0 || height <= 0 {
		return
	}
	s.viewport = vp
	s.layoutSurface()
	s.dragResizeSystem.SetViewport(vp)
}

// layoutSurface 按视口计算渲染区域，保留角色被拖动的偏移
func (s *AvatarScene) layoutSurface() {
	surface, ok := ecs.GetComponent[*components.SurfaceComponent](s.entityManager, s.character)
	if !ok {
		return
	}
	dx, dy := surface.X-s.baseX, surface.Y-s.baseY
	x, y, w, h := config.CharacterSurfaceRect(s.viewport.Width, s.viewport.Height)
	s.baseX, s.baseY = x, y
	surface.X, surface.Y = x+dx, y+dy
	surface.Width, surface.Height = w, h
	surface.Mounted = true
}

// SaveOnExit 保存图片框几何并释放角色资源
func (s *AvatarScene) SaveOnExit() bool {
	ok := true
	if s.store != nil {
		if frame, found := ecs.GetComponent[*components.OverlayFrameComponent](s.entityManager, s.frame); found {
			if err := s.store.Save(frame.Geometry); err != nil {
				log.Printf("[AvatarScene] Warning: failed to save image frame: %v", err)
				ok = false
			}
		}
	}
	s.Close()
	return ok
}

// Close 注销所有指针监听并释放角色资源
func (s *AvatarScene) Close() {
	s.trackingSystem.Deactivate()
	s.idleClickSystem.Deactivate()
	s.dragResizeSystem.Deactivate()
	s.loaderSystem.ReleaseAll()
}

// Inbox 返回会话事件入口，外部会话引擎通过它推送事件（可在任意 goroutine 调用）
func (s *AvatarScene) Inbox() conversation.Port {
	return s.inbox
}

// Character 返回角色实体
func (s *AvatarScene) Character() ecs.EntityID {
	return s.character
}
