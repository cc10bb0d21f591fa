package stream

// 订阅流配置默认值
const (
	// defaultPublishDebounceMs 状态发布去抖窗口设为200毫秒
	// 高到达率下避免下游观察者被连续的状态更新风暴淹没
	defaultPublishDebounceMs = 200

	// defaultTrackDebounceMs ID追踪同步去抖窗口设为500毫秒
	// 旁路同步对实时性要求低于主发布通道，用更宽的窗口降低写入频率
	defaultTrackDebounceMs = 500

	// defaultMinDifficulty 默认不做难度过滤
	defaultMinDifficulty = 0
)
