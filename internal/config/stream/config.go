package stream

import (
	"time"

	configtypes "github.com/13x-tech/snort/pkg/types"
)

// StreamOptions 订阅流配置选项
type StreamOptions struct {
	// PublishDebounceMs 状态发布去抖窗口（毫秒）
	// 窗口内的连续状态变更合并为一次对外发布
	PublishDebounceMs int `json:"publish_debounce_ms"`

	// TrackDebounceMs ID追踪同步去抖窗口（毫秒）
	// 独立于发布节奏的旁路同步，向缓存写入累计事件ID列表
	TrackDebounceMs int `json:"track_debounce_ms"`

	// MinDifficulty 默认最小难度阈值，0表示不过滤
	MinDifficulty uint32 `json:"min_difficulty"`
}

// Config 订阅流配置实现
type Config struct {
	options *StreamOptions
}

// New 创建订阅流配置实现
func New(userConfig *configtypes.UserStreamConfig) *Config {
	options := &StreamOptions{
		PublishDebounceMs: defaultPublishDebounceMs,
		TrackDebounceMs:   defaultTrackDebounceMs,
		MinDifficulty:     defaultMinDifficulty,
	}

	if userConfig != nil {
		if userConfig.PublishDebounceMs != nil {
			options.PublishDebounceMs = *userConfig.PublishDebounceMs
		}
		if userConfig.TrackDebounceMs != nil {
			options.TrackDebounceMs = *userConfig.TrackDebounceMs
		}
		if userConfig.MinDifficulty != nil {
			options.MinDifficulty = *userConfig.MinDifficulty
		}
	}

	return &Config{options: options}
}

// GetOptions 获取订阅流配置选项
func (c *Config) GetOptions() *StreamOptions {
	return c.options
}

// PublishDebounce 返回状态发布去抖窗口时长
func (o *StreamOptions) PublishDebounce() time.Duration {
	return time.Duration(o.PublishDebounceMs) * time.Millisecond
}

// TrackDebounce 返回ID追踪同步去抖窗口时长
func (o *StreamOptions) TrackDebounce() time.Duration {
	return time.Duration(o.TrackDebounceMs) * time.Millisecond
}
