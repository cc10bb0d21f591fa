package memory

import (
	configtypes "github.com/13x-tech/snort/pkg/types"
)

// MemoryOptions 内存缓存配置选项
type MemoryOptions struct {
	LifeWindow         string `json:"life_window"`           // 缓存条目生命周期
	CleanWindow        string `json:"clean_window"`          // 过期清理周期
	MaxEntrySize       int    `json:"max_entry_size"`        // 单条缓存最大字节数
	MaxEntriesInWindow int    `json:"max_entries_in_window"` // 生命周期窗口内的最大条目数
}

// Config 内存缓存配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建内存缓存配置实现
func New(userConfig *configtypes.UserMemoryConfig) *Config {
	options := &MemoryOptions{
		LifeWindow:         defaultLifeWindow,
		CleanWindow:        defaultCleanWindow,
		MaxEntrySize:       defaultMaxEntrySize,
		MaxEntriesInWindow: defaultMaxEntriesInWindow,
	}

	if userConfig != nil {
		if userConfig.LifeWindow != nil {
			options.LifeWindow = *userConfig.LifeWindow
		}
		if userConfig.CleanWindow != nil {
			options.CleanWindow = *userConfig.CleanWindow
		}
		if userConfig.MaxEntrySize != nil {
			options.MaxEntrySize = *userConfig.MaxEntrySize
		}
		if userConfig.MaxEntriesInWindow != nil {
			options.MaxEntriesInWindow = *userConfig.MaxEntriesInWindow
		}
	}

	return &Config{options: options}
}

// NewFromOptions 从已解析的配置选项创建配置实现
func NewFromOptions(options *MemoryOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// GetOptions 获取内存缓存配置选项
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}

// GetLifeWindow 获取缓存条目生命周期
func (c *Config) GetLifeWindow() string {
	return c.options.LifeWindow
}

// GetCleanWindow 获取过期清理周期
func (c *Config) GetCleanWindow() string {
	return c.options.CleanWindow
}

// GetMaxEntrySize 获取单条缓存最大字节数
func (c *Config) GetMaxEntrySize() int {
	return c.options.MaxEntrySize
}

// GetMaxEntriesInWindow 获取生命周期窗口内的最大条目数
func (c *Config) GetMaxEntriesInWindow() int {
	return c.options.MaxEntriesInWindow
}
