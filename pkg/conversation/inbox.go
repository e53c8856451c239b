package conversation

import (
	"sync"
	"sync/atomic"
)

// DefaultInboxCapacity 收件箱默认容量
const DefaultInboxCapacity = 64

// Port 会话引擎推送事件的入口
// 实现必须可以从任意 goroutine 调用，且不能阻塞调用方
type Port interface {
	Push(e Event)
}

// Inbox 有界多生产者单消费者事件队列
//
// 线程安全：
//   - Push：可以从任意 goroutine 调用
//   - Drain：只由游戏循环调用
//
// 溢出：队列满时覆盖最旧的事件，Dropped 计数递增
type Inbox struct {
	mu     sync.Mutex
	events []Event
	head   int // 最旧事件的位置
	count  int

	dropped atomic.Uint64
}

// NewInbox 创建指定容量的收件箱，capacity <= 0 时使用默认容量
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultInboxCapacity
	}
	return &Inbox{events: make([]Event, capacity)}
}

// Push 追加事件，队列满时丢弃最旧的事件
func (in *Inbox) Push(e Event) {
	if e == nil {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()

	capacity := len(in.events)
	if in.count == capacity {
		in.events[in.head] = e
		in.head = (in.head + 1) % capacity
		in.dropped.Add(1)
		return
	}
	in.events[(in.head+in.count)%capacity] = e
	in.count++
}

// Drain 按到达顺序取出全部待处理事件
// 没有事件时返回 nil
func (in *Inbox) Drain() []Event {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.count == 0 {
		return nil
	}
	capacity := len(in.events)
	out := make([]Event, in.count)
	for i := range out {
		idx := (in.head + i) % capacity
		out[i] = in.events[idx]
		in.events[idx] = nil
	}
	in.head = 0
	in.count = 0
	return out
}

// Len 返回待处理事件数量
func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.count
}

// Dropped 返回因溢出被丢弃的事件总数
func (in *Inbox) Dropped() uint64 {
	return in.dropped.Load()
}
