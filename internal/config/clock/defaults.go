package clock

import "time"

// 时钟配置默认值
const (
	// defaultSource 默认使用系统本地时钟
	// NTP校准只在宿主明确要求跨节点时间一致性时启用
	defaultSource = SourceSystem

	// defaultNTPServer 默认NTP服务器
	defaultNTPServer = "pool.ntp.org"

	// defaultSyncPeriod NTP同步周期设为10分钟
	defaultSyncPeriod = 10 * time.Minute
)
