package components

// ConversationComponent 记录外部会话引擎最近一次推送的状态
// 状态值对本模块是不透明的（idle/playing/paused/userSpeaking 等）
type ConversationComponent struct {
	State string

	// Started 体验是否已开始（首次进入非 idle/uninitialized 状态）
	Started bool
}
