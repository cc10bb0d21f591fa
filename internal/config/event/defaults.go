package event

// 事件总线配置默认值
const (
	// defaultHistoryLimit 默认不记录事件历史
	// 任务状态与流状态已由各自的注册表/归并器持有，总线只负责传递变更
	defaultHistoryLimit = 0
)
