// Package clock 提供统一时间源功能
package clock

import (
	"go.uber.org/fx"

	clockconfig "github.com/13x-tech/snort/internal/config/clock"
	"github.com/13x-tech/snort/pkg/interfaces/config"
	infraClock "github.com/13x-tech/snort/pkg/interfaces/infrastructure/clock"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
)

// ModuleInput 时钟模块输入依赖
type ModuleInput struct {
	fx.In

	Provider config.Provider // 配置提供者
	Logger   log.Logger      `optional:"true"` // 日志记录器（可选）
}

// ModuleOutput 时钟模块输出服务
type ModuleOutput struct {
	fx.Out

	Clock infraClock.Clock // 时间源
}

// Module 返回时钟模块
func Module() fx.Option {
	return fx.Module("clock",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				options := input.Provider.GetClock()

				var clk infraClock.Clock
				switch options.Source {
				case clockconfig.SourceNTP:
					ntpClock, err := NewNTPClock(options.NTPServer, options.SyncPeriod)
					if err != nil {
						// NTP初始化失败回退到系统时钟，时间源缺失比偏移更糟
						if input.Logger != nil {
							input.Logger.Warnf("NTP时钟初始化失败，回退到系统时钟: %v", err)
						}
						clk = NewSystemClock()
					} else {
						clk = ntpClock
					}
				default:
					clk = NewSystemClock()
				}

				return ModuleOutput{Clock: clk}, nil
			},
		),
	)
}
