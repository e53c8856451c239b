package systems

import (
	"log"

	"github.com/decker502/avatarstage/pkg/components"
	"github.com/decker502/avatarstage/pkg/conversation"
	"github.com/decker502/avatarstage/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImageDecoder 把会话引擎推送的 base64 图片解码为可绘制的图片
type ImageDecoder func(format, data string) (*ebiten.Image, error)

// ConversationBridgeSystem 会话事件到角色控制器的桥接
//
// 每帧 Update 开始时取出收件箱中的全部事件并按到达顺序处理：
//   - StateChanged：记录状态；按配置映射身体动画（默认不映射）
//   - AnimationChanged：转发给 AnimationLayerSystem.SetAnimation
//   - Viseme：转发给 AnimationLayerSystem.TriggerViseme
//   - ImageChanged：解码并替换图片框中的图片
type ConversationBridgeSystem struct {
	entityManager   *ecs.EntityManager
	inbox           *conversation.Inbox
	layers          *AnimationLayerSystem
	decode          ImageDecoder
	stateAnimations map[string]string
	lastDropped     uint64
}

// NewConversationBridgeSystem 创建会话桥接系统
//
// decode 为 nil 时忽略图片事件；stateAnimations 可为 nil。
func NewConversationBridgeSystem(em *ecs.EntityManager, inbox *conversation.Inbox, layers *AnimationLayerSystem, decode ImageDecoder, stateAnimations map[string]string) *ConversationBridgeSystem {
	return &ConversationBridgeSystem{
		entityManager:   em,
		inbox:           inbox,
		layers:          layers,
		decode:          decode,
		stateAnimations: stateAnimations,
	}
}

// Update 处理本帧收到的所有事件
func (s *ConversationBridgeSystem) Update(deltaTime float64) {
	if dropped := s.inbox.Dropped(); dropped != s.lastDropped {
		log.Printf("[ConversationBridge] Warning: inbox overflow, %d events dropped so far", dropped)
		s.lastDropped = dropped
	}
	for _, ev := range s.inbox.Drain() {
		s.Handle(ev)
	}
}

// Handle 处理单个事件
func (s *ConversationBridgeSystem) Handle(ev conversation.Event) {
	switch e := ev.(type) {
	case conversation.StateChanged:
		s.handleState(e)
	case conversation.AnimationChanged:
		for _, id := range s.characters() {
			s.layers.SetAnimation(id, e.Layer, e.Name, e.Loop)
		}
	case conversation.Viseme:
		for _, id := range s.characters() {
			s.layers.TriggerViseme(id, e.Name)
		}
	case conversation.ImageChanged:
		s.handleImage(e)
	default:
		log.Printf("[ConversationBridge] Warning: ignoring %s", conversation.Describe(ev))
	}
}

func (s *ConversationBridgeSystem) characters() []ecs.EntityID {
	return ecs.GetEntitiesWith2[*components.SkeletonComponent, *components.AnimationLayerComponent](s.entityManager)
}

func (s *ConversationBridgeSystem) handleState(e conversation.StateChanged) {
	for _, id := range ecs.GetEntitiesWith1[*components.ConversationComponent](s.entityManager) {
		conv, _ := ecs.GetComponent[*components.ConversationComponent](s.entityManager, id)
		if conv.State == e.State {
			continue
		}
		log.Printf("[ConversationBridge] state %q -> %q", conv.State, e.State)
		conv.State = e.State
		if !conv.Started && IsActiveState(e.State) {
			s.Start(id)
		}
	}

	name, ok := s.stateAnimations[e.State]
	if !ok || name == "" {
		return
	}
	for _, id := range s.characters() {
		s.layers.SetAnimation(id, components.TrackBody, name, true)
	}
}

// Start 标记体验已开始，角色取消变暗
func (s *ConversationBridgeSystem) Start(id ecs.EntityID) {
	if conv, ok := ecs.GetComponent[*components.ConversationComponent](s.entityManager, id); ok {
		conv.Started = true
	}
	if surface, ok := ecs.GetComponent[*components.SurfaceComponent](s.entityManager, id); ok {
		surface.Dimmed = false
	}
}

// IsActiveState 状态是否表示会话已在进行（非 uninitialized/idle）
func IsActiveState(state string) bool {
	switch state {
	case "", "uninitialized", "idle":
		return false
	}
	return true
}

func (s *ConversationBridgeSystem) handleImage(e conversation.ImageChanged) {
	if s.decode == nil {
		return
	}
	img, err := s.decode(e.Format, e.Data)
	if err != nil {
		log.Printf("[ConversationBridge] Warning: failed to decode image (%s): %v", e.Format, err)
		return
	}
	for _, id := range ecs.GetEntitiesWith1[*components.OverlayFrameComponent](s.entityManager) {
		frame, _ := ecs.GetComponent[*components.OverlayFrameComponent](s.entityManager, id)
		if frame.Image != nil && frame.Image != img {
			frame.Image.Deallocate()
		}
		frame.Image = img
		frame.ImageFormat = e.Format
		frame.ImageRevision++
	}
}
