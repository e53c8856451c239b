package systems

import (
	"sort"

	"github.com/decker502/avatarstage/pkg/utils"
)

// PointerEventKind 指针事件类型
type PointerEventKind int

const (
	PointerMove PointerEventKind = iota
	PointerDown
	PointerUp
)

// String 返回事件类型名称
func (k PointerEventKind) String() string {
	switch k {
	case PointerMove:
		return "move"
	case PointerDown:
		return "down"
	case PointerUp:
		return "up"
	}
	return "unknown"
}

// PointerEvent 指针事件（屏幕坐标）
type PointerEvent struct {
	Kind PointerEventKind
	X, Y float64
}

// PointerListener 指针事件回调
// 返回 true 表示事件已被消费，优先级更低的监听器不会再收到该事件
type PointerListener func(ev PointerEvent) bool

// 监听器优先级（数值越大越先收到事件）
const (
	PriorityTracking  = 0  // 视线跟随：只观察，不消费
	PriorityCharacter = 10 // 角色点击/拖动
	PriorityFrame     = 20 // 图片框拖动/缩放（在角色之上）
)

type listenerEntry struct {
	id       uint64
	priority int
	fn       PointerListener
	alive    bool
}

// ListenerHandle 已注册监听器的句柄
// 通过 Release 注销；重复 Release 是安全的
type ListenerHandle struct {
	dispatcher *PointerDispatcher
	kind       PointerEventKind
	entry      *listenerEntry
}

// Release 注销监听器
func (h *ListenerHandle) Release() {
	if h == nil || h.entry == nil || !h.entry.alive {
		return
	}
	h.entry.alive = false
	h.dispatcher.remove(h.kind, h.entry.id)
}

// Active 监听器是否仍然注册
func (h *ListenerHandle) Active() bool {
	return h != nil && h.entry != nil && h.entry.alive
}

// PointerDispatcher 将每帧的指针采样转换为 move/down/up 事件并分发给监听器
//
// 相当于全局的指针监听：监听器在激活时注册、在停用或手势结束时注销。
// 所有回调都在游戏循环中同步执行。
type PointerDispatcher struct {
	listeners map[PointerEventKind][]*listenerEntry
	nextID    uint64

	last    utils.PointerSample
	hasLast bool
}

// NewPointerDispatcher 创建指针事件分发器
func NewPointerDispatcher() *PointerDispatcher {
	return &PointerDispatcher{listeners: make(map[PointerEventKind][]*listenerEntry)}
}

// On 注册监听器，返回用于注销的句柄
func (d *PointerDispatcher) On(kind PointerEventKind, priority int, fn PointerListener) *ListenerHandle {
	d.nextID++
	entry := &listenerEntry{id: d.nextID, priority: priority, fn: fn, alive: true}
	list := append(d.listeners[kind], entry)
	// 同优先级保持注册顺序
	sort.SliceStable(list, func(i, j int) bool { return list[i].priority > list[j].priority })
	d.listeners[kind] = list
	return &ListenerHandle{dispatcher: d, kind: kind, entry: entry}
}

func (d *PointerDispatcher) remove(kind PointerEventKind, id uint64) {
	list := d.listeners[kind]
	for i, e := range list {
		if e.id == id {
			d.listeners[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// ListenerCount 返回指定类型的已注册监听器数量
func (d *PointerDispatcher) ListenerCount(kind PointerEventKind) int {
	return len(d.listeners[kind])
}

// Dispatch 按优先级分发事件
// 回调中注册或注销监听器是安全的：本次分发使用调用前的快照，已注销的监听器会被跳过
func (d *PointerDispatcher) Dispatch(ev PointerEvent) {
	snapshot := append([]*listenerEntry(nil), d.listeners[ev.Kind]...)
	for _, e := range snapshot {
		if !e.alive {
			continue
		}
		if e.fn(ev) {
			return
		}
	}
}

// Feed 输入一帧指针采样，产生相应的事件
//
// 事件顺序：位置变化时先发 move，然后是按下（down）或释放（up）
func (d *PointerDispatcher) Feed(s utils.PointerSample) {
	if !s.Present {
		if d.hasLast && d.last.Pressed {
			d.Dispatch(PointerEvent{Kind: PointerUp, X: d.last.X, Y: d.last.Y})
		}
		d.last.Pressed = false
		return
	}

	if !d.hasLast || s.X != d.last.X || s.Y != d.last.Y {
		d.Dispatch(PointerEvent{Kind: PointerMove, X: s.X, Y: s.Y})
	}

	wasPressed := d.hasLast && d.last.Pressed
	switch {
	case s.Pressed && !wasPressed:
		d.Dispatch(PointerEvent{Kind: PointerDown, X: s.X, Y: s.Y})
	case !s.Pressed && wasPressed:
		d.Dispatch(PointerEvent{Kind: PointerUp, X: s.X, Y: s.Y})
	}

	d.last = s
	d.hasLast = true
}
