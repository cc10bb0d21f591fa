// Package memory 提供基于BigCache的内存缓存实现
package memory

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	memoryconfig "github.com/13x-tech/snort/internal/config/storage/memory"
	"github.com/13x-tech/snort/pkg/interfaces/infrastructure/log"
	storage "github.com/13x-tech/snort/pkg/interfaces/infrastructure/storage"
)

// TTL前缀，用于在缓存键中存储过期时间信息
const ttlPrefix = "_ttl_"

// Store 实现了MemoryStore接口，基于BigCache提供内存缓存功能
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
	mutex  sync.RWMutex
	config *memoryconfig.Config
	closed bool
}

// New 创建一个新的BigCache内存存储实例
func New(config *memoryconfig.Config, logger log.Logger) (storage.MemoryStore, error) {
	// 解析配置的生命周期窗口
	lifeWindow, err := time.ParseDuration(config.GetLifeWindow())
	if err != nil {
		logger.Errorf("解析生命周期窗口失败: %v", err)
		lifeWindow = 10 * time.Minute
	}

	cleanWindow, err := time.ParseDuration(config.GetCleanWindow())
	if err != nil {
		logger.Errorf("解析清理窗口失败: %v", err)
		cleanWindow = 5 * time.Minute
	}

	// 使用配置参数设置BigCache
	bigCacheConfig := bigcache.DefaultConfig(lifeWindow)
	bigCacheConfig.MaxEntriesInWindow = config.GetMaxEntriesInWindow()
	bigCacheConfig.MaxEntrySize = config.GetMaxEntrySize()
	bigCacheConfig.CleanWindow = cleanWindow

	cache, err := bigcache.New(context.Background(), bigCacheConfig)
	if err != nil {
		return nil, err
	}

	return &Store{
		cache:  cache,
		logger: logger,
		config: config,
	}, nil
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		s.logger.Info("内存存储已关闭，跳过重复关闭")
		return nil
	}

	s.logger.Info("关闭内存存储")
	err := s.cache.Close()
	if err == nil {
		s.closed = true
	}
	return err
}

// Get 获取缓存值
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	expired, err := s.isExpired(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if expired {
		return nil, false, nil
	}

	value, err := s.cache.Get(key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}

	return value, true, nil
}

// Set 设置缓存值，可指定过期时间
// ttl为0时沿用缓存的默认生命周期
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.cache.Set(key, value); err != nil {
		return err
	}

	if ttl > 0 {
		expiry := make([]byte, 8)
		binary.BigEndian.PutUint64(expiry, uint64(time.Now().Add(ttl).UnixNano()))
		return s.cache.Set(ttlPrefix+key, expiry)
	}

	return nil
}

// Delete 删除指定键的缓存
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	err := s.cache.Delete(key)
	if err != nil && err != bigcache.ErrEntryNotFound {
		return err
	}

	// TTL条目可能不存在，忽略未找到错误
	if err := s.cache.Delete(ttlPrefix + key); err != nil && err != bigcache.ErrEntryNotFound {
		return err
	}

	return nil
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, exists, err := s.Get(ctx, key)
	return exists, err
}

// isExpired 检查键对应的显式TTL是否已过期
func (s *Store) isExpired(key string) (bool, error) {
	expiry, err := s.cache.Get(ttlPrefix + key)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			// 未设置显式TTL，交给BigCache的生命周期窗口处理
			return false, nil
		}
		return false, err
	}

	if len(expiry) != 8 {
		return false, nil
	}

	expireAt := int64(binary.BigEndian.Uint64(expiry))
	return time.Now().UnixNano() > expireAt, nil
}
