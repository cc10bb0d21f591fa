package pending

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/13x-tech/snort/internal/config/event"
	powconfig "github.com/13x-tech/snort/internal/config/pow"
	clockimpl "github.com/13x-tech/snort/internal/core/infrastructure/clock"
	eventimpl "github.com/13x-tech/snort/internal/core/infrastructure/event"
	logimpl "github.com/13x-tech/snort/internal/core/infrastructure/log"
	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/internal/core/pow"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/types"
)

type orchestratorFixture struct {
	bus          event.EventBus
	registry     *Registry
	orchestrator *Orchestrator
}

func newFixture(t *testing.T, engineType string, timeoutSeconds, evictionMs int) *orchestratorFixture {
	t.Helper()

	logger := logimpl.GetLogger()
	clk := clockimpl.NewSystemClock()
	bus := eventimpl.New(eventconfig.New(nil))
	t.Cleanup(func() { _ = bus.Close() })

	threads := 2
	options := powconfig.New(&types.UserPowConfig{
		Engine:         &engineType,
		Threads:        &threads,
		TimeoutSeconds: &timeoutSeconds,
		EvictionMs:     &evictionMs,
	}).GetOptions()

	engine, err := pow.NewEngine(logger, clk, options)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	registry := NewRegistry(bus)
	orchestrator := NewOrchestrator(logger, clk, bus, registry, engine, options)
	t.Cleanup(func() { _ = orchestrator.Close() })

	return &orchestratorFixture{
		bus:          bus,
		registry:     registry,
		orchestrator: orchestrator,
	}
}

func unminedRecord(content string) *nostr.Record {
	return &nostr.Record{
		PubKey:    "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		CreatedAt: 1700000000,
		Kind:      1,
		Content:   content,
	}
}

// 🧪 测试成功路径：登记、求解、交付、宽限期清除
func TestOrchestratorSuccess(t *testing.T) {
	fixture := newFixture(t, "native", 30, 100)

	solvedCh := make(chan *nostr.Record, 1)
	require.NoError(t, fixture.bus.SubscribeOnce(types.EventTypeProofCompleted,
		func(solved *nostr.Record) {
			solvedCh <- solved
		}))

	record := unminedRecord("orchestrator success")
	expectedID, err := record.ComputeIDHex()
	require.NoError(t, err)

	callbackCh := make(chan *nostr.Record, 1)
	pendingID, err := fixture.orchestrator.RequestProofOfWork(record, 8,
		func(solved *nostr.Record) { callbackCh <- solved })
	require.NoError(t, err)
	assert.Equal(t, expectedID, pendingID, "任务标识应为求解前的事件标识")

	// 等待结果交付
	var solved *nostr.Record
	select {
	case solved = <-solvedCh:
	case <-time.After(30 * time.Second):
		t.Fatal("等待求解结果超时")
	}

	// 成功回调恰好触发一次
	select {
	case fromCallback := <-callbackCh:
		assert.Equal(t, solved.ID, fromCallback.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("等待成功回调超时")
	}

	digest, err := solved.IDBytes()
	require.NoError(t, err)
	assert.True(t, pow.CheckDifficulty(digest, 8))

	// 任务进入sent终态后在宽限期内保留
	task, ok := fixture.registry.Get(pendingID)
	if ok {
		assert.Equal(t, StatusSent, task.Status)
	}

	// 宽限期结束后任务被清除
	assert.Eventually(t, func() bool {
		_, ok := fixture.registry.Get(pendingID)
		return !ok
	}, 5*time.Second, 20*time.Millisecond)
}

// 🧪 测试同步前置校验
func TestOrchestratorPreconditions(t *testing.T) {
	fixture := newFixture(t, "native", 30, 100)

	_, err := fixture.orchestrator.RequestProofOfWork(nil, 8, nil)
	assert.Error(t, err)

	_, err = fixture.orchestrator.RequestProofOfWork(unminedRecord("x"), 0, nil)
	assert.ErrorIs(t, err, pow.ErrZeroTarget)

	_, err = fixture.orchestrator.RequestProofOfWork(unminedRecord("x"), 257, nil)
	assert.ErrorIs(t, err, pow.ErrTargetTooHigh)
}

// 🧪 测试无后端时的同步拒绝
func TestOrchestratorNoBackend(t *testing.T) {
	fixture := newFixture(t, "none", 30, 100)

	_, err := fixture.orchestrator.RequestProofOfWork(unminedRecord("x"), 8, nil)
	assert.ErrorIs(t, err, pow.ErrNoBackend)
	assert.Equal(t, 0, fixture.registry.Len(), "被拒绝的请求不应登记任务")
}

// 🧪 测试外部取消优先于其他终态
func TestOrchestratorCancel(t *testing.T) {
	fixture := newFixture(t, "native", 30, 100)

	pendingID, err := fixture.orchestrator.RequestProofOfWork(
		unminedRecord("cancel me"), 200, nil)
	require.NoError(t, err)

	require.NoError(t, fixture.orchestrator.Cancel(pendingID))

	task, ok := fixture.registry.Get(pendingID)
	require.True(t, ok)
	assert.Equal(t, StatusCanceled, task.Status)

	// 已结束的任务不能再次取消
	assert.ErrorIs(t, fixture.orchestrator.Cancel(pendingID), ErrTaskNotFound)
	assert.ErrorIs(t, fixture.orchestrator.Cancel("missing"), ErrTaskNotFound)
}

// 🧪 测试不可达难度的超时终态
func TestOrchestratorTimeout(t *testing.T) {
	fixture := newFixture(t, "native", 1, 100)

	pendingID, err := fixture.orchestrator.RequestProofOfWork(
		unminedRecord("timeout"), 200, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		task, ok := fixture.registry.Get(pendingID)
		return ok && task.Status == StatusTimedOut
	}, 10*time.Second, 50*time.Millisecond)

	task, ok := fixture.registry.Get(pendingID)
	require.True(t, ok)
	assert.Equal(t, "超时窗口内未找到解", task.Message)
}

// 🧪 测试关停语义
func TestOrchestratorClose(t *testing.T) {
	fixture := newFixture(t, "native", 30, 100)

	pendingID, err := fixture.orchestrator.RequestProofOfWork(
		unminedRecord("shutdown"), 200, nil)
	require.NoError(t, err)

	require.NoError(t, fixture.orchestrator.Close())

	task, ok := fixture.registry.Get(pendingID)
	require.True(t, ok)
	assert.Equal(t, StatusCanceled, task.Status)

	_, err = fixture.orchestrator.RequestProofOfWork(unminedRecord("late"), 8, nil)
	assert.ErrorIs(t, err, ErrOrchestratorClosed)
}

// 🧪 测试同一事件的重复请求不影响替换任务
func TestOrchestratorReplaceKeepsNewTaskPending(t *testing.T) {
	fixture := newFixture(t, "native", 30, 100)

	pendingID, err := fixture.orchestrator.RequestProofOfWork(
		unminedRecord("replace me"), 240, nil)
	require.NoError(t, err)

	replacementID, err := fixture.orchestrator.RequestProofOfWork(
		unminedRecord("replace me"), 240, nil)
	require.NoError(t, err)
	require.Equal(t, pendingID, replacementID, "同一事件的任务标识应保持稳定")

	// 被替换协程的取消信号不得落到替换任务上
	time.Sleep(500 * time.Millisecond)
	task, ok := fixture.registry.Get(pendingID)
	require.True(t, ok)
	assert.Equal(t, StatusPending, task.Status, "替换任务应保持进行中")
}

// 🧪 测试宽限期内的替换任务不被旧定时器清除
func TestOrchestratorEvictionSkipsReplacement(t *testing.T) {
	fixture := newFixture(t, "native", 30, 300)

	pendingID, err := fixture.orchestrator.RequestProofOfWork(
		unminedRecord("evict race"), 8, nil)
	require.NoError(t, err)

	// 等待首个任务进入sent终态（宽限期定时器已调度）
	require.Eventually(t, func() bool {
		task, ok := fixture.registry.Get(pendingID)
		return ok && task.Status == StatusSent
	}, 30*time.Second, 20*time.Millisecond)

	// 宽限期内以不可达难度重新请求同一事件
	_, err = fixture.orchestrator.RequestProofOfWork(
		unminedRecord("evict race"), 240, nil)
	require.NoError(t, err)

	// 旧定时器到期后替换任务仍在进行中
	time.Sleep(600 * time.Millisecond)
	task, ok := fixture.registry.Get(pendingID)
	require.True(t, ok, "替换任务不应被旧宽限期定时器清除")
	assert.Equal(t, StatusPending, task.Status)
}
