// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
//
// 🔧 零值陷阱处理说明：
// 为了区分"用户未设置"和"用户设置为零值"，所有字段使用指针类型：
// - nil: 表示用户未在配置文件中设置该字段，将使用系统默认值
// - &value: 表示用户明确设置了该值，即使是零值（如0、false、""）也会被采用
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// 工作量证明配置 - 对应配置文件中的 pow 字段
	Pow *UserPowConfig `json:"pow,omitempty"`

	// 订阅流配置 - 对应配置文件中的 stream 字段
	Stream *UserStreamConfig `json:"stream,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 事件总线配置
	Event *UserEventConfig `json:"event,omitempty"`

	// 内存缓存配置
	Memory *UserMemoryConfig `json:"memory,omitempty"`

	// 时钟配置
	Clock *UserClockConfig `json:"clock,omitempty"`
}

// UserPowConfig 用户工作量证明配置
// 对应配置文件中的 pow 字段
type UserPowConfig struct {
	Engine         *string `json:"engine,omitempty"`           // 挖矿后端：none | native | wasm
	Threads        *int    `json:"threads,omitempty"`          // 单个挖矿任务的并行协程数
	TimeoutSeconds *int    `json:"timeout_seconds,omitempty"`  // 挖矿超时（秒），生成请求时转换为毫秒
	MaxTarget      *uint32 `json:"max_target,omitempty"`       // 允许的最大难度目标（前导零位数）
	WasmModulePath *string `json:"wasm_module_path,omitempty"` // wasm后端的模块文件路径
	EvictionMs     *int    `json:"eviction_ms,omitempty"`      // 任务成功后保留展示的宽限期（毫秒）
}

// UserStreamConfig 用户订阅流配置
// 对应配置文件中的 stream 字段
type UserStreamConfig struct {
	PublishDebounceMs *int    `json:"publish_debounce_ms,omitempty"` // 状态发布去抖窗口（毫秒）
	TrackDebounceMs   *int    `json:"track_debounce_ms,omitempty"`   // ID追踪同步去抖窗口（毫秒）
	MinDifficulty     *uint32 `json:"min_difficulty,omitempty"`      // 默认最小难度阈值，0表示不过滤
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // 日志级别
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径
	ToConsole *bool   `json:"to_console,omitempty"` // 是否输出到控制台
}

// UserEventConfig 用户事件总线配置
type UserEventConfig struct {
	HistoryLimit *int `json:"history_limit,omitempty"` // 每个主题保留的历史事件数
}

// UserMemoryConfig 用户内存缓存配置
type UserMemoryConfig struct {
	LifeWindow         *string `json:"life_window,omitempty"`           // 缓存条目生命周期（如"10m"）
	CleanWindow        *string `json:"clean_window,omitempty"`          // 过期清理周期（如"5m"）
	MaxEntrySize       *int    `json:"max_entry_size,omitempty"`        // 单条缓存最大字节数
	MaxEntriesInWindow *int    `json:"max_entries_in_window,omitempty"` // 生命周期窗口内的最大条目数
}

// UserClockConfig 用户时钟配置
type UserClockConfig struct {
	Source     *string `json:"source,omitempty"`      // 时钟源：system | ntp
	NTPServer  *string `json:"ntp_server,omitempty"`  // NTP服务器地址
	SyncPeriod *string `json:"sync_period,omitempty"` // NTP同步周期（如"10m"）
}
