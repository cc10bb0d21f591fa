package pow

import (
	"fmt"
	"time"

	configtypes "github.com/13x-tech/snort/pkg/types"
)

// EngineType 挖矿后端类型
type EngineType string

const (
	// EngineNone 无挖矿后端，工作量证明请求被同步拒绝
	EngineNone EngineType = "none"

	// EngineNative 原生Go后端：多协程分片搜索nonce空间
	EngineNative EngineType = "native"

	// EngineWasm wasm加速后端：通过wazero运行时调用编译好的挖矿模块
	EngineWasm EngineType = "wasm"
)

// PowOptions 工作量证明配置选项
type PowOptions struct {
	// Engine 挖矿后端选择
	Engine EngineType `json:"engine"`

	// Threads 单个挖矿任务的并行执行单元数
	Threads int `json:"threads"`

	// TimeoutSeconds 挖矿超时（秒），生成请求时转换为毫秒
	TimeoutSeconds int `json:"timeout_seconds"`

	// MaxTarget 允许的最大难度目标（前导零位数），超出即拒绝
	MaxTarget uint32 `json:"max_target"`

	// WasmModulePath wasm后端的模块文件路径
	WasmModulePath string `json:"wasm_module_path"`

	// EvictionMs 任务成功后保留展示的宽限期（毫秒），到期后从注册表中清除
	EvictionMs int `json:"eviction_ms"`
}

// Config 工作量证明配置实现
type Config struct {
	options *PowOptions
}

// New 创建工作量证明配置实现
// 先构造完整默认配置，再用用户配置覆盖已设置的字段
func New(userConfig *configtypes.UserPowConfig) *Config {
	options := &PowOptions{
		Engine:         defaultEngine,
		Threads:        defaultThreads,
		TimeoutSeconds: defaultTimeoutSeconds,
		MaxTarget:      defaultMaxTarget,
		WasmModulePath: defaultWasmModulePath,
		EvictionMs:     defaultEvictionMs,
	}

	if userConfig != nil {
		if userConfig.Engine != nil {
			options.Engine = EngineType(*userConfig.Engine)
		}
		if userConfig.Threads != nil {
			options.Threads = *userConfig.Threads
		}
		if userConfig.TimeoutSeconds != nil {
			options.TimeoutSeconds = *userConfig.TimeoutSeconds
		}
		if userConfig.MaxTarget != nil {
			options.MaxTarget = *userConfig.MaxTarget
		}
		if userConfig.WasmModulePath != nil {
			options.WasmModulePath = *userConfig.WasmModulePath
		}
		if userConfig.EvictionMs != nil {
			options.EvictionMs = *userConfig.EvictionMs
		}
	}

	return &Config{options: options}
}

// GetOptions 获取工作量证明配置选项
func (c *Config) GetOptions() *PowOptions {
	return c.options
}

// Timeout 返回挖矿超时时长
func (o *PowOptions) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// TimeoutMs 返回挖矿超时毫秒数（线格式使用毫秒）
func (o *PowOptions) TimeoutMs() int64 {
	return int64(o.TimeoutSeconds) * 1000
}

// Eviction 返回成功任务的展示宽限期
func (o *PowOptions) Eviction() time.Duration {
	return time.Duration(o.EvictionMs) * time.Millisecond
}

// Validate 校验配置的合法性
func (o *PowOptions) Validate() error {
	switch o.Engine {
	case EngineNone, EngineNative, EngineWasm:
	default:
		return fmt.Errorf("未知的挖矿后端: %q", o.Engine)
	}

	if o.Threads <= 0 {
		return fmt.Errorf("并行执行单元数必须为正数: %d", o.Threads)
	}

	if o.TimeoutSeconds <= 0 {
		return fmt.Errorf("挖矿超时必须为正数: %d", o.TimeoutSeconds)
	}

	if o.Engine == EngineWasm && o.WasmModulePath == "" {
		return fmt.Errorf("wasm后端需要配置模块文件路径")
	}

	return nil
}
