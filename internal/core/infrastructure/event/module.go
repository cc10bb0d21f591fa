// Package event 提供事件管理功能
package event

import (
	"context"

	"go.uber.org/fx"

	eventconfig "github.com/13x-tech/snort/internal/config/event"
	"github.com/13x-tech/snort/pkg/interfaces/config"
	eventInterface "github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Logger    log.Logger      `optional:"true"` // 日志记录器（可选）
	Lifecycle fx.Lifecycle    // 生命周期管理
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus // 基础事件总线
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				eventConfig := eventconfig.NewFromOptions(input.Provider.GetEvent())
				bus := New(eventConfig)

				input.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						if input.Logger != nil {
							input.Logger.Debug("关闭事件总线")
						}
						return bus.Close()
					},
				})

				return ModuleOutput{
					EventBus: bus,
				}, nil
			},
		),
	)
}
