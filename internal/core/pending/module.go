// Package pending 的fx模块装配
package pending

import (
	"context"

	"go.uber.org/fx"

	powconfig "github.com/13x-tech/snort/internal/config/pow"
	logimpl "github.com/13x-tech/snort/internal/core/infrastructure/log"
	"github.com/13x-tech/snort/internal/core/pow"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/clock"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/event"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
)

// ModuleInput 任务编排模块输入依赖
type ModuleInput struct {
	fx.In

	Logger    log.Logger
	Clock     clock.Clock
	EventBus  event.EventBus
	Engine    *pow.Engine
	Options   *powconfig.PowOptions
	Lifecycle fx.Lifecycle
}

// ModuleOutput 任务编排模块输出服务
type ModuleOutput struct {
	fx.Out

	Registry     *Registry
	Orchestrator *Orchestrator
}

// Module 返回任务编排模块
func Module() fx.Option {
	return fx.Module("pending",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				moduleLogger := logimpl.NewModuleLogger(input.Logger, "pending")

				registry := NewRegistry(input.EventBus)
				orchestrator := NewOrchestrator(moduleLogger, input.Clock,
					input.EventBus, registry, input.Engine, input.Options)

				input.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						return orchestrator.Close()
					},
				})

				return ModuleOutput{
					Registry:     registry,
					Orchestrator: orchestrator,
				}, nil
			},
		),
	)
}
