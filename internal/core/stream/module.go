// Package stream 的fx模块装配
package stream

import (
	"context"

	"go.uber.org/fx"

	streamconfig "github.com/13x-tech/snort/internal/config/stream"
	logimpl "github.com/13x-tech/snort/internal/core/infrastructure/log"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/storage"
)

// ModuleInput 订阅流模块输入依赖
type ModuleInput struct {
	fx.In

	Logger    log.Logger
	EventBus  event.EventBus
	Store     storage.MemoryStore
	Options   *streamconfig.StreamOptions
	Lifecycle fx.Lifecycle
}

// ModuleOutput 订阅流模块输出服务
type ModuleOutput struct {
	fx.Out

	Manager *Manager
}

// Module 返回订阅流模块
func Module() fx.Option {
	return fx.Module("stream",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				moduleLogger := logimpl.NewModuleLogger(input.Logger, "stream")
				manager := NewManager(moduleLogger, input.EventBus, input.Store, input.Options)

				input.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						return manager.Close()
					},
				})

				return ModuleOutput{Manager: manager}, nil
			},
		),
	)
}
