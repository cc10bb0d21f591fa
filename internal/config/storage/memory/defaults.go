package memory

// 内存缓存配置默认值
const (
	// defaultLifeWindow 缓存条目默认生命周期设为10分钟
	// 订阅流的ID追踪数据只在订阅会话期间有读取价值
	defaultLifeWindow = "10m"

	// defaultCleanWindow 过期清理周期设为5分钟
	defaultCleanWindow = "5m"

	// defaultMaxEntrySize 单条缓存最大字节数设为500
	// 典型追踪条目为数十个64字符十六进制ID的JSON数组
	defaultMaxEntrySize = 500

	// defaultMaxEntriesInWindow 生命周期窗口内的最大条目数
	defaultMaxEntriesInWindow = 1000
)
