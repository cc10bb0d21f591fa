// 基于asaskevich/EventBus的事件总线实现
// 任务注册表与订阅流的状态变更通过总线主题对外广播

package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"

	eventconfig "github.com/13x-tech/snort/internal/config/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
)

// EventBus 是基于asaskevich/EventBus的实现
//
// 🎯 **设计要点**：
// - 保持与asaskevich/EventBus的完全兼容
// - 支持按主题的事件历史记录（可选）
// - 内置轻量指标统计
// - 生命周期由DI容器管理，Close时等待异步处理完成
type EventBus struct {
	// ================== 基础组件 ==================
	bus    evbus.Bus           // 底层事件总线
	config *eventconfig.Config // 配置

	// ================== 历史记录 ==================
	historyMu     sync.RWMutex                      // 历史记录锁
	eventHistory  map[event.EventType][]interface{} // 历史事件存储
	historyLimits map[event.EventType]int           // 各主题的历史容量

	// ================== 运行状态 ==================
	running atomic.Bool        // 运行状态
	ctx     context.Context    // 上下文
	cancel  context.CancelFunc // 取消函数

	// ================== 指标统计 ==================
	metrics *eventMetrics // 事件指标
}

// eventMetrics 简化的事件指标
type eventMetrics struct {
	totalEvents      atomic.Uint64
	publishedTopics  atomic.Uint64
	measurementStart time.Time
}

// New 创建事件总线实例
// 所有事件总线实例必须通过此函数创建，确保配置被正确应用
func New(config *eventconfig.Config) event.EventBus {
	ctx, cancel := context.WithCancel(context.Background())

	eb := &EventBus{
		bus:           evbus.New(),
		config:        config,
		eventHistory:  make(map[event.EventType][]interface{}),
		historyLimits: make(map[event.EventType]int),
		ctx:           ctx,
		cancel:        cancel,
		metrics:       &eventMetrics{measurementStart: time.Now()},
	}
	eb.running.Store(true)

	return eb
}

// Subscribe 订阅事件
func (eb *EventBus) Subscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 异步订阅事件
// transactional为true时同一主题的处理串行执行
func (eb *EventBus) SubscribeAsync(eventType event.EventType, handler interface{}, transactional bool) error {
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// SubscribeOnce 一次性订阅事件
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler interface{}) error {
	return eb.bus.SubscribeOnce(string(eventType), handler)
}

// Publish 发布事件
func (eb *EventBus) Publish(eventType event.EventType, args ...interface{}) {
	if !eb.running.Load() {
		return
	}

	eb.recordHistory(eventType, args)
	eb.metrics.totalEvents.Add(1)

	eb.bus.Publish(string(eventType), args...)
}

// PublishEvent 发布Event接口类型事件
func (eb *EventBus) PublishEvent(ev event.Event) {
	if ev == nil {
		return
	}
	eb.Publish(ev.Type(), ev.Data())
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType event.EventType, handler interface{}) error {
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// WaitAsync 等待所有异步处理完成
func (eb *EventBus) WaitAsync() {
	eb.bus.WaitAsync()
}

// HasCallback 检查是否有回调函数
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	return eb.bus.HasCallback(string(eventType))
}

// EnableEventHistory 启用事件历史记录
func (eb *EventBus) EnableEventHistory(eventType event.EventType, maxSize int) error {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	eb.historyLimits[eventType] = maxSize
	return nil
}

// DisableEventHistory 禁用事件历史记录
func (eb *EventBus) DisableEventHistory(eventType event.EventType) error {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	delete(eb.historyLimits, eventType)
	delete(eb.eventHistory, eventType)
	return nil
}

// GetEventHistory 获取指定事件类型的历史记录
func (eb *EventBus) GetEventHistory(eventType event.EventType) []interface{} {
	eb.historyMu.RLock()
	defer eb.historyMu.RUnlock()

	history := eb.eventHistory[eventType]
	if len(history) == 0 {
		return nil
	}

	// 返回副本，避免调用方修改内部状态
	out := make([]interface{}, len(history))
	copy(out, history)
	return out
}

// Close 关闭事件总线并等待异步处理完成
func (eb *EventBus) Close() error {
	if !eb.running.CompareAndSwap(true, false) {
		return nil
	}

	eb.cancel()
	eb.bus.WaitAsync()
	return nil
}

// recordHistory 记录事件历史
// 仅对启用了历史记录的主题生效，超出容量时淘汰最旧条目
func (eb *EventBus) recordHistory(eventType event.EventType, args []interface{}) {
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()

	limit, ok := eb.historyLimits[eventType]
	if !ok {
		// 未显式启用时检查配置的默认容量
		limit = eb.config.GetOptions().HistoryLimit
		if limit <= 0 {
			return
		}
	}

	history := eb.eventHistory[eventType]
	var entry interface{}
	if len(args) == 1 {
		entry = args[0]
	} else {
		entry = args
	}

	history = append(history, entry)
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	eb.eventHistory[eventType] = history
}
