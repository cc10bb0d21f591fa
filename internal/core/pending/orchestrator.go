// 任务编排器
//
// 🎛️ **工作量证明编排组件 (Proof-of-Work Orchestrator)**
//
// 本文件实现挖矿任务的完整生命周期编排，专注于：
// - 同步前置校验：目标难度、后端可用性在登记前拒绝
// - 异步求解：每个任务独立协程调用挖矿后端
// - 结果校验：后端结果必须通过标识一致性与难度复核
// - 终态宽限期：成功任务保留展示一段时间后自动清除
//
// 🎯 **职责边界**：
// - 专门负责任务调度与结果交付
// - 状态登记委托给registry.go
// - 搜索算法委托给pow包后端
//
// ⚠️ **取消语义**：
// 外部取消先完成终态迁移再终止协程，协程返回的取消错误
// 因迁移已发生而被忽略，保证取消优先于其他终态。
package pending

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	powconfig "github.com/13x-tech/snort/internal/config/pow"
	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/internal/core/pow"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/clock"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	powif "github.com/13x-tech/snort/pkg/interfaces/pow"
	"github.com/13x-tech/snort/pkg/types"
)

// ErrOrchestratorClosed 编排器已关闭，不再接受新任务
var ErrOrchestratorClosed = errors.New("任务编排器已关闭")

// ErrTaskNotFound 指定任务不存在或已结束
var ErrTaskNotFound = errors.New("任务不存在")

// Orchestrator 工作量证明任务编排器
//
// 📝 **字段说明**：
// - registry: 任务注册表
// - engine: 挖矿后端引擎
// - options: 工作量证明配置（线程数、超时、上限、宽限期）
// - workers: 进行中任务的取消函数
// - timers: 成功任务的宽限期清除定时器
type Orchestrator struct {
	logger   log.Logger
	clock    clock.Clock
	bus      event.EventBus
	registry *Registry
	engine   *pow.Engine
	options  *powconfig.PowOptions

	mu      sync.Mutex
	workers map[string]*workerHandle
	timers  map[string]*time.Timer
	nextGen uint64
	closed  bool
	wg      sync.WaitGroup
}

// workerHandle 单个挖矿协程的控制句柄
// 以代次区分同一任务标识下的新旧协程，
// 旧协程的终态信号经代次校验被注册表拒绝
type workerHandle struct {
	cancel context.CancelFunc
	gen    uint64
}

// CompleteFunc 求解成功回调
// 每个任务至多调用一次，仅在成功交付时调用；失败经注册表观察
type CompleteFunc func(solved *nostr.Record)

// NewOrchestrator 创建任务编排器
func NewOrchestrator(logger log.Logger, clk clock.Clock, bus event.EventBus,
	registry *Registry, engine *pow.Engine, options *powconfig.PowOptions) *Orchestrator {

	return &Orchestrator{
		logger:   logger,
		clock:    clk,
		bus:      bus,
		registry: registry,
		engine:   engine,
		options:  options,
		workers:  make(map[string]*workerHandle),
		timers:   make(map[string]*time.Timer),
	}
}

// RequestProofOfWork 登记并启动一个挖矿任务
//
// 📋 **处理流程**：
// 1. 前置校验：目标难度为零、超过上限或无后端时同步拒绝
// 2. 以求解前的事件标识登记任务（pendingId）
// 3. 独立协程调用后端求解，调用方立即获得任务标识
//
// 求解结果经pow.completed主题与onComplete回调交付（回调可为nil），
// 任务状态经pending.changed可观察。
func (o *Orchestrator) RequestProofOfWork(record *nostr.Record, target uint32, onComplete CompleteFunc) (string, error) {
	// ==================== 同步前置校验 ====================

	if record == nil {
		return "", fmt.Errorf("待挖矿事件不能为空")
	}
	if target == 0 {
		return "", pow.ErrZeroTarget
	}
	if target > o.options.MaxTarget {
		return "", fmt.Errorf("%w: %d > %d", pow.ErrTargetTooHigh, target, o.options.MaxTarget)
	}

	backend, err := o.engine.Backend()
	if err != nil {
		return "", err
	}

	pendingID, err := record.ComputeIDHex()
	if err != nil {
		return "", fmt.Errorf("计算任务标识失败: %w", err)
	}

	// ==================== 任务登记与启动 ====================

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return "", ErrOrchestratorClosed
	}

	// 同一事件的旧任务先行取消，登记由Add完成替换；
	// 旧任务残留的宽限期定时器一并停止
	if prev, ok := o.workers[pendingID]; ok {
		prev.cancel()
	}
	if timer, ok := o.timers[pendingID]; ok {
		timer.Stop()
		delete(o.timers, pendingID)
	}

	o.nextGen++
	workerCtx, cancel := context.WithCancel(context.Background())
	handle := &workerHandle{cancel: cancel, gen: o.nextGen}
	o.workers[pendingID] = handle
	o.wg.Add(1)
	o.mu.Unlock()

	o.registry.Add(&Task{
		ID:        pendingID,
		Kind:      record.Kind,
		Target:    target,
		Record:    record.Clone(),
		Status:    StatusPending,
		StartedAt: o.clock.Now(),
		gen:       handle.gen,
	})

	o.logger.Infof("登记挖矿任务: 标识=%s, 目标难度=%d, 后端=%s",
		pendingID, target, backend.Name())

	go o.runWorker(workerCtx, handle, backend, pendingID, record.Clone(), target, onComplete)

	return pendingID, nil
}

// runWorker 执行单个挖矿任务并完成终态迁移
func (o *Orchestrator) runWorker(ctx context.Context, handle *workerHandle, backend powif.Miner,
	pendingID string, record *nostr.Record, target uint32, onComplete CompleteFunc) {

	defer o.wg.Done()
	defer o.releaseWorker(pendingID, handle)

	solved, err := backend.Mine(ctx, powif.Request{
		Threads:   o.options.Threads,
		TimeoutMs: o.options.TimeoutMs(),
		Target:    target,
		Record:    record,
	})

	switch {
	case err == nil:
		o.deliver(handle, pendingID, solved, target, onComplete)

	case errors.Is(err, pow.ErrMiningCanceled):
		// 外部取消已先行迁移终态，代次不符或重复通知时迁移失败
		if o.registry.transitionOwned(pendingID, handle.gen, StatusCanceled, "任务被取消") {
			o.logger.Debugf("挖矿任务已取消: 标识=%s", pendingID)
		}

	case errors.Is(err, pow.ErrMiningTimeout):
		o.registry.transitionOwned(pendingID, handle.gen, StatusTimedOut, "超时窗口内未找到解")
		o.logger.Warnf("挖矿任务超时: 标识=%s, 目标难度=%d, 错误=%v", pendingID, target, err)

	default:
		o.registry.transitionOwned(pendingID, handle.gen, StatusError, "挖矿内部故障")
		o.logger.Errorf("挖矿任务失败: 标识=%s, 错误=%v", pendingID, err)
	}
}

// deliver 校验并交付求解结果
//
// 后端结果必须满足：标识与序列化内容一致、摘要满足目标难度。
// 校验失败迁移到invalid终态，成功则发布结果并调度宽限期清除。
func (o *Orchestrator) deliver(handle *workerHandle, pendingID string, solved *nostr.Record,
	target uint32, onComplete CompleteFunc) {

	if err := o.validateSolved(solved, target); err != nil {
		o.registry.transitionOwned(pendingID, handle.gen, StatusInvalid, err.Error())
		o.logger.Errorf("挖矿结果校验失败: 标识=%s, 错误=%v", pendingID, err)
		return
	}

	// 先迁移终态再交付，迁移失败说明任务已被取消或已被新请求替换
	if !o.registry.transitionOwned(pendingID, handle.gen, StatusSent, "") {
		o.logger.Debugf("求解完成但任务已结束，丢弃结果: 标识=%s", pendingID)
		return
	}

	o.bus.Publish(types.EventTypeProofCompleted, solved)
	if onComplete != nil {
		onComplete(solved)
	}
	o.logger.Infof("挖矿任务完成: 任务=%s, 求解标识=%s", pendingID, solved.ID)

	o.scheduleEviction(pendingID, handle.gen)
}

// validateSolved 复核后端返回的求解事件
func (o *Orchestrator) validateSolved(solved *nostr.Record, target uint32) error {
	if solved == nil {
		return fmt.Errorf("%w: 后端返回空事件", pow.ErrInvalidResult)
	}

	idHex, err := solved.ComputeIDHex()
	if err != nil {
		return fmt.Errorf("%w: %v", pow.ErrInvalidResult, err)
	}
	if idHex != solved.ID {
		return fmt.Errorf("%w: 标识与内容不一致", pow.ErrInvalidResult)
	}

	digest, err := solved.IDBytes()
	if err != nil {
		return fmt.Errorf("%w: %v", pow.ErrInvalidResult, err)
	}
	if !pow.CheckDifficulty(digest, target) {
		return fmt.Errorf("%w: 摘要未满足目标难度%d", pow.ErrInvalidResult, target)
	}

	return nil
}

// scheduleEviction 调度成功任务的宽限期清除
// 清除按代次执行，宽限期内到达的替换任务不受影响
func (o *Orchestrator) scheduleEviction(pendingID string, gen uint64) {
	grace := o.options.Eviction()
	if grace <= 0 {
		o.registry.removeOwned(pendingID, gen)
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	if prev, ok := o.timers[pendingID]; ok {
		prev.Stop()
	}
	o.timers[pendingID] = time.AfterFunc(grace, func() {
		o.registry.removeOwned(pendingID, gen)

		o.mu.Lock()
		delete(o.timers, pendingID)
		o.mu.Unlock()
	})
}

// Cancel 取消进行中的任务
//
// 终态迁移先于协程终止，保证取消状态不被其他终态覆盖。
func (o *Orchestrator) Cancel(pendingID string) error {
	if !o.registry.Transition(pendingID, StatusCanceled, "任务被取消") {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, pendingID)
	}

	o.mu.Lock()
	handle, ok := o.workers[pendingID]
	o.mu.Unlock()
	if ok {
		handle.cancel()
	}

	o.logger.Infof("取消挖矿任务: 标识=%s", pendingID)
	return nil
}

// releaseWorker 清理任务的控制句柄
// 仅当注册的仍是本协程的句柄时删除，避免误删替换后的新任务
func (o *Orchestrator) releaseWorker(pendingID string, handle *workerHandle) {
	o.mu.Lock()
	if current, ok := o.workers[pendingID]; ok && current == handle {
		delete(o.workers, pendingID)
	}
	o.mu.Unlock()
	handle.cancel()
}

// Close 关停编排器
//
// 终止所有进行中协程并等待退出，剩余任务统一迁移到取消终态，
// 宽限期定时器全部停止。
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true

	for _, handle := range o.workers {
		handle.cancel()
	}
	for id, timer := range o.timers {
		timer.Stop()
		delete(o.timers, id)
	}
	o.mu.Unlock()

	o.wg.Wait()
	o.registry.FailAllPending(StatusCanceled, "编排器关停")

	o.logger.Info("任务编排器已关停")
	return nil
}
