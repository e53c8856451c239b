package components

// DebugCycleComponent 调试模式下依次播放骨架中的所有动画
type DebugCycleComponent struct {
	// Index 下一个要播放的动画索引
	Index int

	// Timer 当前动画已播放时长（秒）
	Timer float64

	// Interval 每个动画播放时长（秒）
	Interval float64

	// Started 是否已播放第一个动画
	Started bool
}
