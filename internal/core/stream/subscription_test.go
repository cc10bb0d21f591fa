package stream

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/13x-tech/snort/internal/config/event"
	streamconfig "github.com/13x-tech/snort/internal/config/stream"
	memoryconfig "github.com/13x-tech/snort/internal/config/storage/memory"
	eventimpl "github.com/13x-tech/snort/internal/core/infrastructure/event"
	logimpl "github.com/13x-tech/snort/internal/core/infrastructure/log"
	memorystore "github.com/13x-tech/snort/internal/core/infrastructure/storage/memory"
	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/storage"
	"github.com/13x-tech/snort/pkg/types"
)

type streamFixture struct {
	bus     event.EventBus
	store   storage.MemoryStore
	manager *Manager
}

func newStreamFixture(t *testing.T, publishMs, trackMs int, minDifficulty uint32) *streamFixture {
	t.Helper()

	logger := logimpl.GetLogger()
	bus := eventimpl.New(eventconfig.New(nil))
	t.Cleanup(func() { _ = bus.Close() })

	store, err := memorystore.New(memoryconfig.New(nil), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	options := streamconfig.New(&types.UserStreamConfig{
		PublishDebounceMs: &publishMs,
		TrackDebounceMs:   &trackMs,
		MinDifficulty:     &minDifficulty,
	}).GetOptions()

	manager := NewManager(logger, bus, store, options)
	t.Cleanup(func() { _ = manager.Close() })

	return &streamFixture{bus: bus, store: store, manager: manager}
}

// 🧪 测试去抖窗口内的连续变更合并为一次发布
func TestSubscriptionDebouncedPublish(t *testing.T) {
	fixture := newStreamFixture(t, 40, 500, 0)
	sub := fixture.manager.Subscribe("sub-a")

	var publishes atomic.Int64
	lastSnapshot := make(chan Snapshot, 16)
	require.NoError(t, fixture.bus.Subscribe(types.StreamUpdatedTopic("sub-a"),
		func(snapshot Snapshot) {
			publishes.Add(1)
			lastSnapshot <- snapshot
		}))

	// 窗口内连续三个批次
	sub.OnBatch([]*nostr.Record{plainRecord("a", 100)})
	sub.OnBatch([]*nostr.Record{plainRecord("b", 101)})
	sub.OnBatch([]*nostr.Record{plainRecord("c", 102)})

	var snapshot Snapshot
	select {
	case snapshot = <-lastSnapshot:
	case <-time.After(3 * time.Second):
		t.Fatal("等待去抖发布超时")
	}

	assert.Equal(t, int64(1), publishes.Load(), "窗口内的连续变更应合并为一次发布")
	require.Len(t, snapshot.Records, 3)
	assert.Equal(t, "a", snapshot.Records[0].ID)
	assert.Equal(t, "c", snapshot.Records[2].ID)
}

// 🧪 测试无实际变化时不触发发布
func TestSubscriptionNoChangeNoPublish(t *testing.T) {
	fixture := newStreamFixture(t, 20, 500, 16)
	sub := fixture.manager.Subscribe("sub-b")

	var publishes atomic.Int64
	require.NoError(t, fixture.bus.Subscribe(types.StreamUpdatedTopic("sub-b"),
		func(Snapshot) { publishes.Add(1) }))

	// 批次被难度过滤后为空
	sub.OnBatch([]*nostr.Record{plainRecord("unproven", 100)})

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int64(0), publishes.Load(), "被完全过滤的批次不应产生发布")
}

// 🧪 测试结束信号触发发布
func TestSubscriptionOnEnd(t *testing.T) {
	fixture := newStreamFixture(t, 20, 500, 0)
	sub := fixture.manager.Subscribe("sub-c")

	snapshots := make(chan Snapshot, 4)
	require.NoError(t, fixture.bus.Subscribe(types.StreamUpdatedTopic("sub-c"),
		func(snapshot Snapshot) { snapshots <- snapshot }))

	sub.OnEnd()

	select {
	case snapshot := <-snapshots:
		assert.True(t, snapshot.Complete)
		assert.Empty(t, snapshot.Records)
	case <-time.After(3 * time.Second):
		t.Fatal("等待结束信号发布超时")
	}

	// 重复结束信号无变化，不再发布
	sub.OnEnd()
	time.Sleep(100 * time.Millisecond)
	select {
	case <-snapshots:
		t.Fatal("重复结束信号不应产生发布")
	default:
	}
}

// 🧪 测试ID追踪同步写入缓存
func TestSubscriptionTrack(t *testing.T) {
	fixture := newStreamFixture(t, 10, 30, 0)
	sub := fixture.manager.Subscribe("sub-d")

	sub.OnBatch([]*nostr.Record{
		plainRecord("a", 1700000300),
		plainRecord("b", 1700000100),
		plainRecord("c", 1700000200),
	})

	assert.Eventually(t, func() bool {
		payload, exists, err := fixture.store.Get(context.Background(), "feed:sub-d")
		if err != nil || !exists {
			return false
		}
		var track FeedTrack
		if err := json.Unmarshal(payload, &track); err != nil {
			return false
		}
		return len(track.IDs) == 3 &&
			track.Since == 1700000100 &&
			track.Until == 1700000300
	}, 3*time.Second, 20*time.Millisecond)
}

// 🧪 测试追踪同步并入先前记录的集合
func TestSubscriptionTrackMergesPrevious(t *testing.T) {
	fixture := newStreamFixture(t, 10, 30, 0)

	// 先前周期留下的追踪记录
	previous, err := json.Marshal(FeedTrack{
		IDs:   []string{"old"},
		Since: 1700000000,
		Until: 1700000050,
	})
	require.NoError(t, err)
	require.NoError(t, fixture.store.Set(context.Background(), "feed:sub-e", previous, 0))

	sub := fixture.manager.Subscribe("sub-e")
	sub.OnBatch([]*nostr.Record{plainRecord("new", 1700000400)})

	assert.Eventually(t, func() bool {
		payload, exists, err := fixture.store.Get(context.Background(), "feed:sub-e")
		if err != nil || !exists {
			return false
		}
		var track FeedTrack
		if err := json.Unmarshal(payload, &track); err != nil {
			return false
		}
		return len(track.IDs) == 2 &&
			track.IDs[0] == "old" &&
			track.Since == 1700000000 &&
			track.Until == 1700000400
	}, 3*time.Second, 20*time.Millisecond)
}

// 🧪 测试管理器的订阅复用与移除
func TestManagerSubscribe(t *testing.T) {
	fixture := newStreamFixture(t, 20, 500, 0)

	sub1 := fixture.manager.Subscribe("x")
	sub2 := fixture.manager.Subscribe("x")
	assert.Same(t, sub1, sub2, "同一标识应复用订阅实例")

	other := fixture.manager.Subscribe("y")
	assert.NotSame(t, sub1, other)
	assert.Equal(t, 2, fixture.manager.Len())

	// 并发订阅状态相互隔离
	sub1.OnBatch([]*nostr.Record{plainRecord("a", 1)})
	assert.Empty(t, other.Snapshot().Records, "独立订阅不共享状态")

	fixture.manager.Unsubscribe("x")
	assert.Equal(t, 1, fixture.manager.Len())
	_, ok := fixture.manager.Get("x")
	assert.False(t, ok)

	// 空标识自动分配
	anon := fixture.manager.Subscribe("")
	assert.NotEmpty(t, anon.ID())
	assert.NotSame(t, other, anon)
}
