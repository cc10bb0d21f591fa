// Package pow 的fx模块装配
package pow

import (
	"context"

	"go.uber.org/fx"

	powconfig "github.com/13x-tech/snort/internal/config/pow"
	logimpl "github.com/13x-tech/snort/internal/core/infrastructure/log"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/clock"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
)

// ModuleInput 挖矿模块输入依赖
type ModuleInput struct {
	fx.In

	Logger    log.Logger
	Clock     clock.Clock
	Options   *powconfig.PowOptions
	Lifecycle fx.Lifecycle
}

// ModuleOutput 挖矿模块输出服务
type ModuleOutput struct {
	fx.Out

	Engine *Engine
}

// Module 返回挖矿模块
func Module() fx.Option {
	return fx.Module("pow",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				moduleLogger := logimpl.NewModuleLogger(input.Logger, "pow")

				engine, err := NewEngine(moduleLogger, input.Clock, input.Options)
				if err != nil {
					return ModuleOutput{}, err
				}

				input.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						moduleLogger.Debug("关闭挖矿引擎")
						return engine.Close()
					},
				})

				return ModuleOutput{Engine: engine}, nil
			},
		),
	)
}
