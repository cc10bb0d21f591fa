// Package pow 提供工作量证明挖矿后端的接口定义
//
// ⛏️ **挖矿后端契约 (Mining Backend Contract)**
//
// 本文件定义了挖矿后端与任务编排器之间的消息契约，专注于：
// - 统一的挖矿请求结构（线程数、超时、目标难度、待挖事件）
// - 后端无关的结果交付（完整求解事件或区分超时/故障的错误）
// - 上下文取消：后端必须在ctx取消后尽快终止搜索
//
// 🎯 **设计原则**
// - 消息传递：编排器与后端之间只通过请求/结果通信，不共享可变状态
// - 可替换：native（协程并行）与wasm（wazero运行时）后端实现同一接口
// - 非阻塞：Mine由编排器在独立协程中调用，调用方控制流不被阻塞
package pow

import (
	"context"

	"github.com/13x-tech/snort/internal/core/nostr"
)

// Request 挖矿请求消息
//
// 与独立worker实现互通的JSON线格式：
// {"threads":10,"timeout":30000,"target":20,"event":{...}}
type Request struct {
	// Threads 并行搜索的执行单元数，0表示使用后端默认值
	Threads int `json:"threads"`

	// TimeoutMs 挖矿超时（毫秒），超时后返回超时错误
	TimeoutMs int64 `json:"timeout"`

	// Target 目标难度：事件ID所需的前导零位数
	Target uint32 `json:"target"`

	// Record 待挖矿的事件（挖矿过程只修改其私有副本）
	Record *nostr.Record `json:"event"`
}

// Miner 挖矿后端接口
type Miner interface {
	// Name 返回后端名称（native、wasm等）
	Name() string

	// Mine 搜索nonce空间直到事件ID满足目标难度
	//
	// 成功时返回完整的求解事件（含获胜nonce标签和更新后的时间戳）。
	// 超时返回可用errors.Is判别的超时错误；其他内部故障返回普通错误。
	// ctx取消后必须尽快返回，部分进度被丢弃且无副作用。
	Mine(ctx context.Context, req Request) (*nostr.Record, error)

	// Close 释放后端持有的资源（编译缓存、运行时等）
	Close() error
}
