// Package config provides configuration provider interfaces.
package config

import (
	clockconfig "github.com/13x-tech/snort/internal/config/clock"
	eventconfig "github.com/13x-tech/snort/internal/config/event"
	logconfig "github.com/13x-tech/snort/internal/config/log"
	powconfig "github.com/13x-tech/snort/internal/config/pow"
	memoryconfig "github.com/13x-tech/snort/internal/config/storage/memory"
	streamconfig "github.com/13x-tech/snort/internal/config/stream"
)

// Provider 配置提供者接口
type Provider interface {
	// GetPow 获取工作量证明配置
	GetPow() *powconfig.PowOptions

	// GetStream 获取订阅流配置
	GetStream() *streamconfig.StreamOptions

	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEvent 获取事件总线配置
	GetEvent() *eventconfig.EventOptions

	// GetMemory 获取内存缓存配置
	GetMemory() *memoryconfig.MemoryOptions

	// GetClock 获取时钟配置
	GetClock() *clockconfig.ClockOptions
}
