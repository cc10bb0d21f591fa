package event

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/13x-tech/snort/internal/config/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
)

// 🧪 测试同步订阅与发布
func TestEventBusPublishSubscribe(t *testing.T) {
	bus := New(eventconfig.New(nil))
	defer func() { _ = bus.Close() }()

	var received atomic.Int64
	require.NoError(t, bus.Subscribe("test.topic", func(value int) {
		received.Add(int64(value))
	}))

	bus.Publish("test.topic", 1)
	bus.Publish("test.topic", 2)

	assert.Equal(t, int64(3), received.Load())
}

// 🧪 测试一次性订阅只触发一次
func TestEventBusSubscribeOnce(t *testing.T) {
	bus := New(eventconfig.New(nil))
	defer func() { _ = bus.Close() }()

	var calls atomic.Int64
	require.NoError(t, bus.SubscribeOnce("once.topic", func(string) {
		calls.Add(1)
	}))

	bus.Publish("once.topic", "a")
	bus.Publish("once.topic", "b")

	assert.Equal(t, int64(1), calls.Load())
}

// 🧪 测试关闭后发布被忽略
func TestEventBusClosedPublish(t *testing.T) {
	bus := New(eventconfig.New(nil))

	var calls atomic.Int64
	require.NoError(t, bus.Subscribe("closed.topic", func(string) {
		calls.Add(1)
	}))

	require.NoError(t, bus.Close())
	bus.Publish("closed.topic", "ignored")

	assert.Equal(t, int64(0), calls.Load())
	// 重复关闭为无操作
	assert.NoError(t, bus.Close())
}

// 🧪 测试事件历史记录的容量淘汰
func TestEventBusHistory(t *testing.T) {
	bus := New(eventconfig.New(nil))
	defer func() { _ = bus.Close() }()

	impl, ok := bus.(*EventBus)
	require.True(t, ok)

	topic := event.EventType("history.topic")
	require.NoError(t, impl.EnableEventHistory(topic, 2))

	bus.Publish(topic, "a")
	bus.Publish(topic, "b")
	bus.Publish(topic, "c")

	history := impl.GetEventHistory(topic)
	require.Len(t, history, 2)
	assert.Equal(t, "b", history[0])
	assert.Equal(t, "c", history[1])

	require.NoError(t, impl.DisableEventHistory(topic))
	assert.Nil(t, impl.GetEventHistory(topic))
}
