package pow

// 工作量证明配置默认值
const (
	// defaultEngine 默认使用原生Go后端
	// 原生后端无外部文件依赖，开箱即用；wasm后端需要用户提供模块文件
	defaultEngine = EngineNative

	// defaultThreads 默认并行执行单元数设为10
	// 与独立worker实现的默认请求保持一致，分片搜索下碰撞成本可忽略
	defaultThreads = 10

	// defaultTimeoutSeconds 默认挖矿超时设为30秒
	// 常用难度（16~24位）在现代CPU上通常秒级完成，30秒覆盖高难度边缘
	defaultTimeoutSeconds = 30

	// defaultMaxTarget 最大难度目标设为256
	// SHA-256摘要共256位，超过该值的目标在数学上不可满足
	defaultMaxTarget = 256

	// defaultWasmModulePath 默认不配置wasm模块路径
	defaultWasmModulePath = ""

	// defaultEvictionMs 成功任务的展示宽限期设为3500毫秒
	// 给观察者留出读取"已发送"状态的时间窗口，之后条目被清除
	defaultEvictionMs = 3500
)
