package types

// SubscriptionID 订阅标识类型
// 用于唯一标识事件总线订阅和外部记录流订阅
type SubscriptionID string

// EventType 事件类型
// 事件总线主题的标识，采用"域.动作"的命名约定（如 pending.changed）
type EventType string

// 系统内置事件主题
const (
	// EventTypePendingChanged 待处理任务注册表发生变更
	EventTypePendingChanged EventType = "pending.changed"

	// EventTypeProofCompleted 工作量证明求解完成，携带求解后的完整事件
	EventTypeProofCompleted EventType = "pow.completed"
)

// StreamUpdatedTopic 返回订阅流状态变更的事件主题
// 每个订阅流使用独立主题：stream.<订阅ID>.updated
func StreamUpdatedTopic(id SubscriptionID) EventType {
	return EventType("stream." + string(id) + ".updated")
}
