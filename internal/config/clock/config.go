package clock

import (
	"time"

	configtypes "github.com/13x-tech/snort/pkg/types"
)

// SourceType 时钟源类型
type SourceType string

const (
	// SourceSystem 系统本地时钟
	SourceSystem SourceType = "system"

	// SourceNTP NTP校准时钟：周期性查询NTP服务器并缓存偏移量
	SourceNTP SourceType = "ntp"
)

// ClockOptions 时钟配置选项
type ClockOptions struct {
	Source     SourceType    `json:"source"`      // 时钟源
	NTPServer  string        `json:"ntp_server"`  // NTP服务器地址
	SyncPeriod time.Duration `json:"sync_period"` // NTP同步周期
}

// Config 时钟配置实现
type Config struct {
	options *ClockOptions
}

// New 创建时钟配置实现
func New(userConfig *configtypes.UserClockConfig) *Config {
	options := &ClockOptions{
		Source:     defaultSource,
		NTPServer:  defaultNTPServer,
		SyncPeriod: defaultSyncPeriod,
	}

	if userConfig != nil {
		if userConfig.Source != nil {
			options.Source = SourceType(*userConfig.Source)
		}
		if userConfig.NTPServer != nil {
			options.NTPServer = *userConfig.NTPServer
		}
		if userConfig.SyncPeriod != nil {
			if d, err := time.ParseDuration(*userConfig.SyncPeriod); err == nil {
				options.SyncPeriod = d
			}
		}
	}

	return &Config{options: options}
}

// GetOptions 获取时钟配置选项
func (c *Config) GetOptions() *ClockOptions {
	return c.options
}
