package components

const (
	// TrackBody 身体/待机/反应动画轨道
	TrackBody = 0
	// TrackViseme 口型动画轨道
	TrackViseme = 1
)

// AnimationLayerComponent 分层动画控制状态（纯数据）
// 由 AnimationLayerSystem 独占修改
type AnimationLayerComponent struct {
	// Debug 调试模式：禁用 SetAnimation/AddAnimation，由 DebugCycleSystem 接管轨道 0
	// 只能在创建时设置
	Debug bool

	// ActiveViseme 当前口型动画名（初始为闭嘴口型 "mouth_M"）
	ActiveViseme string

	// VisemeMix 口型之间的交叉淡入时长（秒）
	VisemeMix float64
}

// TrackState 单条轨道的只读快照
type TrackState struct {
	Track     int
	Animation string
	Loop      bool
}
