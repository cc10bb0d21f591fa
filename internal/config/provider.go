package config

import (
	clockconfig "github.com/13x-tech/snort/internal/config/clock"
	eventconfig "github.com/13x-tech/snort/internal/config/event"
	logconfig "github.com/13x-tech/snort/internal/config/log"
	powconfig "github.com/13x-tech/snort/internal/config/pow"
	memoryconfig "github.com/13x-tech/snort/internal/config/storage/memory"
	streamconfig "github.com/13x-tech/snort/internal/config/stream"
	"github.com/13x-tech/snort/pkg/interfaces/config"
	"github.com/13x-tech/snort/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return &Provider{
		appConfig: appConfig,
	}
}

// GetPow 获取工作量证明配置
func (p *Provider) GetPow() *powconfig.PowOptions {
	var userPowConfig *types.UserPowConfig
	if p.appConfig != nil && p.appConfig.Pow != nil {
		userPowConfig = p.appConfig.Pow
	}

	// pow.New处理默认值应用和用户配置覆盖
	return powconfig.New(userPowConfig).GetOptions()
}

// GetStream 获取订阅流配置
func (p *Provider) GetStream() *streamconfig.StreamOptions {
	var userStreamConfig *types.UserStreamConfig
	if p.appConfig != nil && p.appConfig.Stream != nil {
		userStreamConfig = p.appConfig.Stream
	}

	return streamconfig.New(userStreamConfig).GetOptions()
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *logconfig.LogOptions {
	var userLogConfig *types.UserLogConfig
	if p.appConfig != nil && p.appConfig.Log != nil {
		userLogConfig = p.appConfig.Log
	}

	return logconfig.New(userLogConfig).GetOptions()
}

// GetEvent 获取事件总线配置
func (p *Provider) GetEvent() *eventconfig.EventOptions {
	var userEventConfig *types.UserEventConfig
	if p.appConfig != nil && p.appConfig.Event != nil {
		userEventConfig = p.appConfig.Event
	}

	return eventconfig.New(userEventConfig).GetOptions()
}

// GetMemory 获取内存缓存配置
func (p *Provider) GetMemory() *memoryconfig.MemoryOptions {
	var userMemoryConfig *types.UserMemoryConfig
	if p.appConfig != nil && p.appConfig.Memory != nil {
		userMemoryConfig = p.appConfig.Memory
	}

	return memoryconfig.New(userMemoryConfig).GetOptions()
}

// GetClock 获取时钟配置
func (p *Provider) GetClock() *clockconfig.ClockOptions {
	var userClockConfig *types.UserClockConfig
	if p.appConfig != nil && p.appConfig.Clock != nil {
		userClockConfig = p.appConfig.Clock
	}

	return clockconfig.New(userClockConfig).GetOptions()
}
