// Package memory 提供内存缓存管理功能
package memory

import (
	"context"

	"go.uber.org/fx"

	memoryconfig "github.com/13x-tech/snort/internal/config/storage/memory"
	"github.com/13x-tech/snort/pkg/interfaces/config"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	storage "github.com/13x-tech/snort/pkg/interfaces/infrastructure/storage"
)

// ModuleInput 内存存储模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider // 配置提供者
	Logger    log.Logger      // 日志记录器
	Lifecycle fx.Lifecycle    // 生命周期管理
}

// ModuleOutput 内存存储模块输出服务
type ModuleOutput struct {
	fx.Out

	MemoryStore storage.MemoryStore // 内存缓存
}

// Module 返回内存存储模块
func Module() fx.Option {
	return fx.Module("memory",
		fx.Provide(
			func(input ModuleInput) (ModuleOutput, error) {
				memoryConfig := memoryconfig.NewFromOptions(input.Provider.GetMemory())

				store, err := New(memoryConfig, input.Logger)
				if err != nil {
					return ModuleOutput{}, err
				}

				input.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						return store.Close()
					},
				})

				return ModuleOutput{MemoryStore: store}, nil
			},
		),
	)
}
