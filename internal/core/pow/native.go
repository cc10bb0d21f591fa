// 原生挖矿后端
//
// ⛏️ **协程并行nonce搜索 (Native Mining Backend)**
//
// 本文件实现进程内的原生挖矿后端，专注于：
// - 条带划分：N个协程以不重叠的等差序列分摊nonce空间
// - 首胜交付：任一协程找到解后立即终止其余搜索
// - 时间戳刷新：每固定尝试次数刷新事件创建时间，扩大搜索空间
// - 取消与超时：周期性检查上下文，保证快速退出
//
// 🎯 **职责边界**：
// - 专门负责本地nonce空间搜索
// - 难度判定复用difficulty.go的纯函数
// - 后端选择由engine.go负责
package pow

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/clock"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	powif "github.com/13x-tech/snort/pkg/interfaces/pow"
)

const (
	// timestampRefreshInterval 每隔多少次尝试刷新一次事件时间戳
	timestampRefreshInterval = 1000

	// cancelCheckInterval 每隔多少次尝试检查一次上下文取消
	cancelCheckInterval = 256
)

// NativeMiner 协程并行的原生挖矿后端
//
// 📝 **字段说明**：
// - logger: 模块日志服务
// - clock: 统一时间源（时间戳刷新用）
// - defaultThreads: 请求未指定线程数时的默认并行度
type NativeMiner struct {
	logger         log.Logger
	clock          clock.Clock
	defaultThreads int
}

var _ powif.Miner = (*NativeMiner)(nil)

// NewNativeMiner 创建原生挖矿后端
func NewNativeMiner(logger log.Logger, clk clock.Clock, defaultThreads int) *NativeMiner {
	if defaultThreads <= 0 {
		defaultThreads = 1
	}
	return &NativeMiner{
		logger:         logger,
		clock:          clk,
		defaultThreads: defaultThreads,
	}
}

// Name 返回后端名称
func (m *NativeMiner) Name() string {
	return "native"
}

// Mine 搜索nonce空间直到事件标识满足目标难度
//
// 📋 **搜索流程**：
// 1. 参数校验与超时上下文构建
// 2. 按条带启动N个搜索协程（协程i从nonce=i开始，步长N）
// 3. 首个找到解的协程交付结果并终止其余协程
// 4. 超时/取消时按上下文错误分类返回哨兵错误
func (m *NativeMiner) Mine(ctx context.Context, req powif.Request) (*nostr.Record, error) {
	// ==================== 参数校验 ====================

	if req.Record == nil {
		return nil, fmt.Errorf("挖矿请求缺少事件")
	}
	if req.Target == 0 {
		return nil, ErrZeroTarget
	}
	if req.Target > nostr.IDSize*8 {
		return nil, fmt.Errorf("%w: %d > %d", ErrTargetTooHigh, req.Target, nostr.IDSize*8)
	}

	threads := req.Threads
	if threads <= 0 {
		threads = m.defaultThreads
	}

	mineCtx := ctx
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		mineCtx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	// stopCtx用于首胜后终止其余搜索协程
	stopCtx, stop := context.WithCancel(mineCtx)
	defer stop()

	startTime := m.clock.Now()
	m.logger.Debugf("开始原生挖矿: 目标难度=%d, 线程数=%d, 超时=%dms",
		req.Target, threads, req.TimeoutMs)

	// ==================== 并行搜索 ====================

	var totalAttempts atomic.Uint64
	results := make(chan *nostr.Record, threads)

	var wg sync.WaitGroup
	for i := 0; i < threads; i++ {
		wg.Add(1)
		go func(stripe int) {
			defer wg.Done()
			m.searchStripe(stopCtx, req, uint64(stripe), uint64(threads), &totalAttempts, results)
		}(i)
	}

	// 所有协程退出后关闭结果通道，保证无解时select能感知
	go func() {
		wg.Wait()
		close(results)
	}()

	// ==================== 结果交付 ====================

	solved, ok := <-results
	stop()
	wg.Wait()

	elapsed := m.clock.Since(startTime)
	attempts := totalAttempts.Load()

	if ok && solved != nil {
		observeMiningResult(m.Name(), resultSuccess, elapsed.Seconds(), attempts)
		m.logger.Infof("原生挖矿成功: 标识=%s, 尝试=%d次, 耗时=%v",
			solved.ID, attempts, elapsed)
		return solved, nil
	}

	// 通道关闭且无解：按上下文错误分类
	if ctx.Err() == context.Canceled {
		observeMiningResult(m.Name(), resultCanceled, elapsed.Seconds(), attempts)
		m.logger.Debugf("原生挖矿被取消: 尝试=%d次, 耗时=%v", attempts, elapsed)
		return nil, ErrMiningCanceled
	}

	observeMiningResult(m.Name(), resultTimeout, elapsed.Seconds(), attempts)
	m.logger.Warnf("原生挖矿超时: 目标难度=%d, 尝试=%d次, 耗时=%v",
		req.Target, attempts, elapsed)
	return nil, fmt.Errorf("%w: 目标难度%d在%dms内未找到解", ErrMiningTimeout, req.Target, req.TimeoutMs)
}

// searchStripe 在单个条带内搜索nonce
//
// 协程stripe从nonce=stripe开始，以stride为步长遍历，
// 各条带互不重叠，合并后覆盖完整nonce空间。
func (m *NativeMiner) searchStripe(ctx context.Context, req powif.Request,
	start, stride uint64, totalAttempts *atomic.Uint64, results chan<- *nostr.Record) {

	candidate := req.Record.Clone()
	candidate.CreatedAt = m.clock.Unix()

	var attempts uint64
	defer func() {
		totalAttempts.Add(attempts)
	}()

	for nonce := start; ; nonce += stride {
		if attempts%cancelCheckInterval == 0 && ctx.Err() != nil {
			return
		}
		if attempts > 0 && attempts%timestampRefreshInterval == 0 {
			candidate.CreatedAt = m.clock.Unix()
		}

		candidate.SetNonce(nonce, req.Target)
		attempts++

		digest, err := candidate.ComputeID()
		if err != nil {
			m.logger.Errorf("计算事件标识失败: %v", err)
			return
		}

		if CheckDifficulty(digest, req.Target) {
			solved := candidate.Clone()
			solved.ID = hex.EncodeToString(digest)
			select {
			case results <- solved:
			case <-ctx.Done():
			}
			return
		}
	}
}

// Close 释放后端资源（原生后端无持久资源）
func (m *NativeMiner) Close() error {
	return nil
}
