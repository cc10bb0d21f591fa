package pending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/13x-tech/snort/internal/core/nostr"
)

func newTask(id string, target uint32) *Task {
	return &Task{
		ID:     id,
		Kind:   1,
		Target: target,
		Record: &nostr.Record{
			PubKey:    "ab",
			CreatedAt: 1700000000,
			Kind:      1,
			Content:   id,
		},
		Status:    StatusPending,
		StartedAt: time.Now(),
	}
}

// 🧪 测试任务登记与同标识替换
func TestRegistryAdd(t *testing.T) {
	registry := NewRegistry(nil)

	registry.Add(newTask("a", 10))
	registry.Add(newTask("b", 12))
	assert.Equal(t, 2, registry.Len())

	// 同标识登记替换旧任务并移至队尾
	registry.Add(newTask("a", 16))
	assert.Equal(t, 2, registry.Len())

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "b", snapshot[0].ID)
	assert.Equal(t, "a", snapshot[1].ID)
	assert.Equal(t, uint32(16), snapshot[1].Target)
}

// 🧪 测试终态迁移的恰好一次语义
func TestRegistryTransition(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Add(newTask("a", 10))
	registry.Add(newTask("b", 10))

	assert.True(t, registry.Transition("a", StatusSent, ""))

	// 重复迁移和对终态任务的迁移均失败
	assert.False(t, registry.Transition("a", StatusCanceled, "x"))
	assert.False(t, registry.Transition("missing", StatusSent, ""))

	// 非终态不是合法迁移目标
	assert.False(t, registry.Transition("b", StatusPending, ""))

	task, ok := registry.Get("a")
	require.True(t, ok)
	assert.Equal(t, StatusSent, task.Status)
}

// 🧪 测试终态任务移至队尾
func TestRegistryTransitionReorders(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Add(newTask("a", 10))
	registry.Add(newTask("b", 10))
	registry.Add(newTask("c", 10))

	require.True(t, registry.Transition("a", StatusTimedOut, "超时"))

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 3)
	assert.Equal(t, []string{"b", "c", "a"},
		[]string{snapshot[0].ID, snapshot[1].ID, snapshot[2].ID})
	assert.Equal(t, StatusTimedOut, snapshot[2].Status)
	assert.Equal(t, "超时", snapshot[2].Message)
}

// 🧪 测试删除与查询
func TestRegistryRemove(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Add(newTask("a", 10))

	assert.True(t, registry.Remove("a"))
	assert.False(t, registry.Remove("a"))

	_, ok := registry.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())
}

// 🧪 测试快照的隔离性
func TestRegistrySnapshotIsolation(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Add(newTask("a", 10))

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 1)
	snapshot[0].Record.Content = "mutated"
	snapshot[0].Status = StatusSent

	task, ok := registry.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", task.Record.Content)
	assert.Equal(t, StatusPending, task.Status)
}

// 🧪 测试批量收尾
func TestRegistryFailAllPending(t *testing.T) {
	registry := NewRegistry(nil)
	registry.Add(newTask("a", 10))
	registry.Add(newTask("b", 10))
	registry.Add(newTask("c", 10))
	require.True(t, registry.Transition("b", StatusSent, ""))

	count := registry.FailAllPending(StatusCanceled, "关停")
	assert.Equal(t, 2, count)

	for _, id := range []string{"a", "c"} {
		task, ok := registry.Get(id)
		require.True(t, ok)
		assert.Equal(t, StatusCanceled, task.Status)
	}

	// 已结束的任务不受影响
	task, ok := registry.Get("b")
	require.True(t, ok)
	assert.Equal(t, StatusSent, task.Status)

	assert.Empty(t, registry.Pending())
}

// 🧪 测试按登记时间排序的视图
func TestRegistrySortedByStart(t *testing.T) {
	registry := NewRegistry(nil)

	first := newTask("a", 10)
	second := newTask("b", 10)
	second.StartedAt = first.StartedAt.Add(time.Second)
	registry.Add(first)
	registry.Add(second)

	// 终态移位不影响按时间排序的视图
	require.True(t, registry.Transition("a", StatusSent, ""))

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "b", snapshot[0].ID, "终态任务应移至队尾")

	sorted := registry.SortedByStart()
	require.Len(t, sorted, 2)
	assert.Equal(t, "a", sorted[0].ID)
	assert.Equal(t, "b", sorted[1].ID)
}

// 🧪 测试代次受限的终态迁移与删除
func TestRegistryGenerationGuard(t *testing.T) {
	registry := NewRegistry(nil)
	task := newTask("a", 10)
	task.gen = 2
	registry.Add(task)

	// 旧代次的信号被拒绝，任务保持进行中
	assert.False(t, registry.transitionOwned("a", 1, StatusCanceled, ""))
	got, ok := registry.Get("a")
	require.True(t, ok)
	assert.Equal(t, StatusPending, got.Status)

	assert.False(t, registry.removeOwned("a", 1))
	assert.Equal(t, 1, registry.Len())

	// 当前代次正常迁移与删除
	assert.True(t, registry.transitionOwned("a", 2, StatusSent, ""))
	assert.True(t, registry.removeOwned("a", 2))
	assert.Equal(t, 0, registry.Len())
}
