package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	powconfig "github.com/13x-tech/snort/internal/config/pow"
	clockimpl "github.com/13x-tech/snort/internal/core/infrastructure/clock"
	logimpl "github.com/13x-tech/snort/internal/core/infrastructure/log"
	"github.com/13x-tech/snort/internal/core/nostr"
	"github.com/13x-tech/snort/internal/core/pow"
	powif "github.com/13x-tech/snort/pkg/interfaces/pow"
	"github.com/13x-tech/snort/pkg/types"
)

// mineFlags 挖矿命令标志
var mineFlags struct {
	PubKey         string // 作者公钥
	Kind           int    // 事件类型
	Content        string // 事件内容
	Target         uint32 // 目标难度
	Threads        int    // 并行协程数
	TimeoutSeconds int    // 超时（秒）
	Engine         string // 挖矿后端
	WasmModule     string // wasm模块路径
}

// mineCmd 同步挖矿命令
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "同步挖矿单个事件",
	Long: `构造事件并同步执行工作量证明，求解成功后输出完整事件JSON。

示例:
  snort mine --target 16 --content "hello" --pubkey <hex>
  snort mine --target 20 --threads 8 --timeout 60`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logimpl.GetLogger()
		clk := clockimpl.NewSystemClock()

		options := powconfig.New(&types.UserPowConfig{
			Engine:         &mineFlags.Engine,
			Threads:        &mineFlags.Threads,
			TimeoutSeconds: &mineFlags.TimeoutSeconds,
			WasmModulePath: &mineFlags.WasmModule,
		}).GetOptions()

		engine, err := pow.NewEngine(logger, clk, options)
		if err != nil {
			return fmt.Errorf("装配挖矿引擎失败: %w", err)
		}
		defer engine.Close()

		backend, err := engine.Backend()
		if err != nil {
			return err
		}

		record := &nostr.Record{
			PubKey:    mineFlags.PubKey,
			CreatedAt: clk.Unix(),
			Kind:      mineFlags.Kind,
			Tags:      [][]string{},
			Content:   mineFlags.Content,
		}

		fmt.Fprintf(os.Stderr, "⛏️  开始挖矿: 目标难度=%d, 后端=%s, 线程=%d\n",
			mineFlags.Target, backend.Name(), options.Threads)

		start := time.Now()
		solved, err := backend.Mine(context.Background(), powif.Request{
			Threads:   options.Threads,
			TimeoutMs: options.TimeoutMs(),
			Target:    mineFlags.Target,
			Record:    record,
		})
		if err != nil {
			return fmt.Errorf("挖矿失败: %w", err)
		}

		fmt.Fprintf(os.Stderr, "✅ 挖矿成功: 标识=%s, 耗时=%v\n", solved.ID, time.Since(start))

		output, err := json.MarshalIndent(solved, "", "  ")
		if err != nil {
			return fmt.Errorf("序列化结果失败: %w", err)
		}
		fmt.Println(string(output))
		return nil
	},
}

func init() {
	mineCmd.Flags().StringVar(&mineFlags.PubKey, "pubkey", "", "作者公钥（十六进制）")
	mineCmd.Flags().IntVar(&mineFlags.Kind, "kind", 1, "事件类型")
	mineCmd.Flags().StringVar(&mineFlags.Content, "content", "", "事件内容")
	mineCmd.Flags().Uint32Var(&mineFlags.Target, "target", 16, "目标难度（前导零位数）")
	mineCmd.Flags().IntVar(&mineFlags.Threads, "threads", 10, "并行协程数")
	mineCmd.Flags().IntVar(&mineFlags.TimeoutSeconds, "timeout", 30, "挖矿超时（秒）")
	mineCmd.Flags().StringVar(&mineFlags.Engine, "engine", "native", "挖矿后端: native | wasm")
	mineCmd.Flags().StringVar(&mineFlags.WasmModule, "wasm-module", "", "wasm后端的模块文件路径")
}
