// 挖矿后端引擎
//
// 🚀 **后端选择与生命周期 (Mining Engine Component)**
//
// 本文件实现挖矿后端的统一入口，专注于：
// - 后端选择：按配置装配none/native/wasm后端
// - 优雅降级：wasm后端初始化失败时回退到native
// - 资源管理：统一的Close释放后端资源
//
// 🎯 **职责边界**：
// - 专门负责后端装配与访问
// - 不涉及搜索算法（由具体后端负责）
// - 不涉及任务编排（由pending包负责）
package pow

import (
	"fmt"

	powconfig "github.com/13x-tech/snort/internal/config/pow"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/clock"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	powif "github.com/13x-tech/snort/pkg/interfaces/pow"
)

// Engine 挖矿后端引擎
//
// 📝 **字段说明**：
// - logger: 模块日志服务
// - options: 工作量证明配置
// - backend: 装配好的挖矿后端，none模式下为nil
type Engine struct {
	logger  log.Logger
	options *powconfig.PowOptions
	backend powif.Miner
}

// NewEngine 按配置装配挖矿引擎
//
// wasm后端初始化失败时回退到native并记录警告，
// 保证节点在模块文件缺失时仍可提供挖矿服务。
func NewEngine(logger log.Logger, clk clock.Clock, options *powconfig.PowOptions) (*Engine, error) {
	if options == nil {
		return nil, fmt.Errorf("工作量证明配置不能为空")
	}
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("工作量证明配置无效: %w", err)
	}

	engine := &Engine{
		logger:  logger,
		options: options,
	}

	switch options.Engine {
	case powconfig.EngineNone:
		logger.Info("挖矿后端已禁用，工作量证明请求将被拒绝")

	case powconfig.EngineNative:
		engine.backend = NewNativeMiner(logger, clk, options.Threads)
		logger.Infof("原生挖矿后端就绪: 默认线程数=%d", options.Threads)

	case powconfig.EngineWasm:
		wasmMiner, err := NewWasmMiner(logger, options.WasmModulePath)
		if err != nil {
			logger.Warnf("WASM挖矿后端初始化失败，回退到native: %v", err)
			engine.backend = NewNativeMiner(logger, clk, options.Threads)
		} else {
			engine.backend = wasmMiner
			logger.Infof("WASM挖矿后端就绪: 模块=%s", options.WasmModulePath)
		}
	}

	return engine, nil
}

// Backend 获取当前挖矿后端
// none模式下返回ErrNoBackend
func (e *Engine) Backend() (powif.Miner, error) {
	if e.backend == nil {
		return nil, ErrNoBackend
	}
	return e.backend, nil
}

// Options 获取引擎使用的配置
func (e *Engine) Options() *powconfig.PowOptions {
	return e.options
}

// Close 释放后端资源
func (e *Engine) Close() error {
	if e.backend == nil {
		return nil
	}
	return e.backend.Close()
}
