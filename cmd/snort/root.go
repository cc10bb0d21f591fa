package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/13x-tech/snort/configs"
	"github.com/13x-tech/snort/internal/app"
	"github.com/13x-tech/snort/internal/app/version"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // 配置文件路径
	Verbose    bool   // 详细模式
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "snort",
	Short: "内容寻址事件的工作量证明任务引擎",
	Long: `snort - 工作量证明任务引擎

为内容寻址事件提供完整的工作量证明能力:
- 按目标难度并行搜索nonce空间（native或wasm后端）
- 任务注册表跟踪每个挖矿任务的生命周期
- 订阅流按最小难度过滤、去重并去抖发布事件批次

使用方式:
  snort run                 # 以服务方式运行任务引擎
  snort mine --target 16    # 同步挖矿单个事件`,
}

// runCmd 服务运行命令
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "启动任务引擎服务",
	Long:  "装配全部模块并以服务方式运行，按 Ctrl+C 优雅退出。",
	RunE: func(cmd *cobra.Command, args []string) error {
		var options []app.Option
		if globalFlags.ConfigPath != "" {
			options = append(options, app.WithConfigFile(globalFlags.ConfigPath))
		} else {
			// 零配置运行：使用编译时嵌入的默认配置
			options = append(options, app.WithEmbeddedConfig(configs.GetDefaultConfig()))
		}

		engineApp, err := app.Start(options...)
		if err != nil {
			return fmt.Errorf("启动任务引擎失败: %w", err)
		}

		engineApp.Wait()
		return nil
	},
}

// versionCmd 版本命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		if globalFlags.Verbose {
			fmt.Println(version.GetFullVersion())
			return
		}
		fmt.Printf("snort %s\n", version.GetVersion())
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// 全局标志
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "配置文件路径 (默认: configs/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "详细输出")

	// 添加子命令
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(versionCmd)
}
