// Package conversation 定义外部会话引擎与角色控制器之间的消息边界
//
// 会话引擎（对话状态机、语音合成）不在本模块内，它只通过 Port 推送事件。
// 事件进入有界收件箱 Inbox，由游戏循环在每帧 Update 开始时统一取出处理，
// 因此所有状态修改都发生在游戏循环所在的 goroutine 中。
package conversation

import "fmt"

// Event 会话事件
// 具体类型：StateChanged、AnimationChanged、Viseme、ImageChanged
type Event interface {
	isEvent()
}

// StateChanged 会话状态切换
// 状态值对本模块不透明（如 idle、playing、paused、userSpeaking）
type StateChanged struct {
	State string
}

// AnimationChanged 会话引擎要求角色在指定轨道播放动画
type AnimationChanged struct {
	Name  string
	Layer int
	Loop  bool
}

// Viseme 当前发音单元对应的口型
type Viseme struct {
	Name string
}

// ImageChanged 会话引擎推送一张新图片（base64 编码）
type ImageChanged struct {
	// Format 图片格式，如 "png"、"jpeg"、"webp"
	Format string

	// Data base64 编码的图片数据
	Data string
}

func (StateChanged) isEvent()     {}
func (AnimationChanged) isEvent() {}
func (Viseme) isEvent()           {}
func (ImageChanged) isEvent()     {}

// Describe 返回事件的简短描述（用于日志）
func Describe(e Event) string {
	switch ev := e.(type) {
	case StateChanged:
		return fmt.Sprintf("state=%s", ev.State)
	case AnimationChanged:
		return fmt.Sprintf("animation=%s layer=%d loop=%v", ev.Name, ev.Layer, ev.Loop)
	case Viseme:
		return fmt.Sprintf("viseme=%s", ev.Name)
	case ImageChanged:
		return fmt.Sprintf("image format=%s bytes=%d", ev.Format, len(ev.Data))
	}
	return fmt.Sprintf("unknown event %T", e)
}
