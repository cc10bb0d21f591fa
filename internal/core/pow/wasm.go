// WASM挖矿后端
//
// 🧩 **wazero运行时后端 (WASM Mining Backend)**
//
// 本文件实现基于wazero的WASM挖矿后端，专注于：
// - 模块编译：启动时编译一次，实例按请求创建
// - WASI支持：为wasip1编译的模块实例化WASI接口
// - 线性内存交换：JSON请求经guest分配器写入，结果经打包指针读出
// - 资源隔离：每次挖矿独立实例，结束后立即销毁
//
// 🎯 **导出函数约定**：
// guest模块需导出 allocate(size)->ptr、deallocate(ptr,size)
// 和 generate_pow(ptr,len)->(结果ptr<<32|len)，结果为JSON编码的响应。
package pow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	powif "github.com/13x-tech/snort/pkg/interfaces/pow"
)

// wasmResponse WASM后端的JSON响应结构
type wasmResponse struct {
	Event *nostr.Record `json:"event,omitempty"`
	Error string        `json:"error,omitempty"`
}

// WasmMiner 基于wazero的WASM挖矿后端
//
// 📝 **字段说明**：
// - logger: 模块日志服务
// - runtime: wazero运行时实例
// - compiled: 预编译的挖矿模块（启动时编译一次）
type WasmMiner struct {
	logger   log.Logger
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

var _ powif.Miner = (*WasmMiner)(nil)

// NewWasmMiner 创建WASM挖矿后端
//
// 读取并编译modulePath指向的WASM模块，同时实例化WASI接口
// （wasip1编译的模块依赖fd_write、clock_time_get等系统调用）。
func NewWasmMiner(logger log.Logger, modulePath string) (*WasmMiner, error) {
	if modulePath == "" {
		return nil, fmt.Errorf("未配置WASM模块路径")
	}

	wasmBytes, err := os.ReadFile(modulePath)
	if err != nil {
		return nil, fmt.Errorf("读取WASM模块失败: %w", err)
	}

	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx,
		wazero.NewRuntimeConfig().WithCompilationCache(wazero.NewCompilationCache()))

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("WASI接口实例化失败: %w", err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("编译WASM模块失败: %w", err)
	}

	logger.Infof("WASM挖矿模块编译完成: %s (%d字节)", modulePath, len(wasmBytes))

	return &WasmMiner{
		logger:   logger,
		runtime:  runtime,
		compiled: compiled,
	}, nil
}

// Name 返回后端名称
func (m *WasmMiner) Name() string {
	return "wasm"
}

// Mine 在WASM实例中执行nonce搜索
//
// 📋 **执行流程**：
// 1. 参数校验与超时上下文构建
// 2. 按请求实例化独立的模块实例
// 3. JSON请求写入guest线性内存，调用generate_pow导出函数
// 4. 读取打包指针指向的JSON响应并分类错误
func (m *WasmMiner) Mine(ctx context.Context, req powif.Request) (*nostr.Record, error) {
	if req.Record == nil {
		return nil, fmt.Errorf("挖矿请求缺少事件")
	}
	if req.Target == 0 {
		return nil, ErrZeroTarget
	}

	mineCtx := ctx
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		mineCtx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	startTime := time.Now()

	// 每次挖矿独立实例，互不共享线性内存
	instance, err := m.runtime.InstantiateModule(mineCtx, m.compiled,
		wazero.NewModuleConfig().WithName(""))
	if err != nil {
		observeMiningResult(m.Name(), resultError, time.Since(startTime).Seconds(), 0)
		return nil, fmt.Errorf("实例化WASM模块失败: %w", err)
	}
	defer instance.Close(context.Background())

	solved, err := m.invoke(mineCtx, instance, req)
	elapsed := time.Since(startTime)

	switch {
	case err == nil:
		observeMiningResult(m.Name(), resultSuccess, elapsed.Seconds(), 0)
		m.logger.Infof("WASM挖矿成功: 标识=%s, 耗时=%v", solved.ID, elapsed)
		return solved, nil
	case mineCtx.Err() == context.DeadlineExceeded && ctx.Err() != context.Canceled:
		observeMiningResult(m.Name(), resultTimeout, elapsed.Seconds(), 0)
		return nil, fmt.Errorf("%w: 目标难度%d在%dms内未找到解", ErrMiningTimeout, req.Target, req.TimeoutMs)
	case ctx.Err() == context.Canceled:
		observeMiningResult(m.Name(), resultCanceled, elapsed.Seconds(), 0)
		return nil, ErrMiningCanceled
	default:
		observeMiningResult(m.Name(), resultError, elapsed.Seconds(), 0)
		return nil, err
	}
}

// invoke 执行一次guest调用的完整内存交换
func (m *WasmMiner) invoke(ctx context.Context, instance api.Module, req powif.Request) (*nostr.Record, error) {
	mineFn := instance.ExportedFunction("generate_pow")
	allocFn := instance.ExportedFunction("allocate")
	freeFn := instance.ExportedFunction("deallocate")
	if mineFn == nil || allocFn == nil || freeFn == nil {
		return nil, fmt.Errorf("WASM模块缺少必需的导出函数 (generate_pow/allocate/deallocate)")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("编码挖矿请求失败: %w", err)
	}

	// 请求写入guest分配的线性内存
	allocResults, err := allocFn.Call(ctx, uint64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("guest内存分配失败: %w", err)
	}
	inputPtr := uint32(allocResults[0])
	defer freeFn.Call(context.Background(), uint64(inputPtr), uint64(len(payload)))

	if !instance.Memory().Write(inputPtr, payload) {
		return nil, fmt.Errorf("写入guest内存失败: ptr=%d, len=%d", inputPtr, len(payload))
	}

	results, err := mineFn.Call(ctx, uint64(inputPtr), uint64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("WASM挖矿执行失败: %w", err)
	}

	// 返回值高32位为结果指针，低32位为长度
	packed := results[0]
	outputPtr := uint32(packed >> 32)
	outputLen := uint32(packed)
	if outputLen == 0 {
		return nil, fmt.Errorf("WASM模块返回空响应")
	}

	responseBytes, ok := instance.Memory().Read(outputPtr, outputLen)
	if !ok {
		return nil, fmt.Errorf("读取guest内存失败: ptr=%d, len=%d", outputPtr, outputLen)
	}

	var response wasmResponse
	if err := json.Unmarshal(responseBytes, &response); err != nil {
		return nil, fmt.Errorf("解码挖矿响应失败: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("WASM后端错误: %s", response.Error)
	}
	if response.Event == nil {
		return nil, fmt.Errorf("WASM响应缺少事件")
	}

	return response.Event, nil
}

// Close 关闭运行时并释放编译缓存
func (m *WasmMiner) Close() error {
	return m.runtime.Close(context.Background())
}
