// Package storage 提供系统的内存存储接口定义
//
// 🧠 **内存存储服务 (Memory Storage Service)**
//
// 本文件定义了系统的内存存储接口，专注于：
// - 高速缓存：基于内存的高速数据缓存和临时存储
// - 生命周期控制：支持TTL过期和自动清理机制
// - 多引擎支持：可基于Redis、Memcached、BigCache等实现
//
// 订阅流的ID追踪同步以缓存键值对的形式写入该接口；
// 持久化落盘不属于本系统的职责，接口语义仅承诺进程内可见。
//
// 🏗️ **设计原则**
// - 性能优先：充分利用内存的高速访问特性
// - 并发安全：支持高并发的读写操作
// - 易用性：简洁统一的API设计和错误处理
package storage

import (
	"context"
	"time"
)

// MemoryStore 定义了通用的内存缓存接口
type MemoryStore interface {
	// Get 获取缓存值，返回值、是否存在及可能的错误
	Get(ctx context.Context, key string) (value []byte, exists bool, err error)

	// Set 设置缓存值，可指定过期时间
	// ttl为0表示使用缓存的默认生命周期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除指定键的缓存
	// 如果键不存在，不返回错误
	Delete(ctx context.Context, key string) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// Close 关闭缓存并释放资源
	Close() error
}
