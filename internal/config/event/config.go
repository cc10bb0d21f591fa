package event

import (
	configtypes "github.com/13x-tech/snort/pkg/types"
)

// EventOptions 事件总线配置选项
type EventOptions struct {
	// HistoryLimit 每个主题默认保留的历史事件数，0表示不记录历史
	HistoryLimit int `json:"history_limit"`
}

// Config 事件总线配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件总线配置实现
func New(userConfig *configtypes.UserEventConfig) *Config {
	options := &EventOptions{
		HistoryLimit: defaultHistoryLimit,
	}

	if userConfig != nil && userConfig.HistoryLimit != nil {
		options.HistoryLimit = *userConfig.HistoryLimit
	}

	return &Config{options: options}
}

// NewFromOptions 从已解析的配置选项创建配置实现
func NewFromOptions(options *EventOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// GetOptions 获取事件总线配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}
