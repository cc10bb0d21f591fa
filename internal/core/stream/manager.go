// 订阅流管理器
//
// 🗂️ **订阅流管理组件 (Stream Manager Component)**
//
// 本文件实现订阅流的集中管理，专注于：
// - 按订阅标识创建与复用订阅流实例
// - 并发订阅隔离：每个订阅持有独立的归并状态
// - 统一关停：释放所有订阅的去抖资源
package stream

import (
	"sync"

	"github.com/google/uuid"

	streamconfig "github.com/13x-tech/snort/internal/config/stream"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/storage"
	"github.com/13x-tech/snort/pkg/types"
)

// Manager 订阅流管理器
type Manager struct {
	logger  log.Logger
	bus     event.EventBus
	store   storage.MemoryStore
	options *streamconfig.StreamOptions

	mu   sync.Mutex
	subs map[types.SubscriptionID]*Subscription
}

// NewManager 创建订阅流管理器
func NewManager(logger log.Logger, bus event.EventBus, store storage.MemoryStore,
	options *streamconfig.StreamOptions) *Manager {

	return &Manager{
		logger:  logger,
		bus:     bus,
		store:   store,
		options: options,
		subs:    make(map[types.SubscriptionID]*Subscription),
	}
}

// Subscribe 获取或创建订阅流
// 同一标识返回同一实例，并发订阅各自持有独立状态
// 空标识自动分配随机订阅标识
func (m *Manager) Subscribe(id types.SubscriptionID) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = types.SubscriptionID(uuid.NewString())
	}

	if sub, ok := m.subs[id]; ok {
		return sub
	}

	sub := NewSubscription(m.logger, m.bus, m.store, m.options, id)
	m.subs[id] = sub
	m.logger.Debugf("创建订阅流: 订阅=%s", id)
	return sub
}

// Get 查询已存在的订阅流
func (m *Manager) Get(id types.SubscriptionID) (*Subscription, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[id]
	return sub, ok
}

// Unsubscribe 终止并移除订阅流
func (m *Manager) Unsubscribe(id types.SubscriptionID) {
	m.mu.Lock()
	sub, ok := m.subs[id]
	if ok {
		delete(m.subs, id)
	}
	m.mu.Unlock()

	if ok {
		sub.Close()
		m.logger.Debugf("移除订阅流: 订阅=%s", id)
	}
}

// Len 当前活跃订阅数
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Close 关停所有订阅流
func (m *Manager) Close() error {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		subs = append(subs, sub)
	}
	m.subs = make(map[types.SubscriptionID]*Subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	return nil
}
