// Package memory 提供基于BigCache的内存键值存储实现
//
// 主要用于测试与不要求持久化的部署形态，接口语义与Badger实现保持一致。
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	memoryconfig "github.com/mintforge/v1/internal/config/storage/memory"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	storage "github.com/mintforge/v1/pkg/interfaces/infrastructure/storage"
)

// Store 基于BigCache实现KVStore接口
//
// BigCache本身不支持键遍历与事务，这里用互斥锁加键集合补齐
// PrefixScan与WriteBatch的语义（单进程内原子）。
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
	mutex  sync.RWMutex
	closed bool
	keySet map[string]struct{}
	expiry map[string]time.Time
}

// New 创建BigCache内存存储实例
func New(config *memoryconfig.MemoryOptions, logger log.Logger) (storage.KVStore, error) {
	bigCacheConfig := bigcache.DefaultConfig(config.GetLifeWindow())
	bigCacheConfig.CleanWindow = config.GetCleanWindow()
	bigCacheConfig.Shards = config.GetShards()

	cache, err := bigcache.New(context.Background(), bigCacheConfig)
	if err != nil {
		logger.Errorf("创建BigCache实例失败: %v", err)
		return nil, err
	}

	return &Store{
		cache:  cache,
		logger: logger,
		keySet: make(map[string]struct{}),
		expiry: make(map[string]time.Time),
	}, nil
}

// Get 获取指定键的值，键不存在时返回nil值和nil错误
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	k := string(key)
	if s.expiredLocked(k) {
		s.removeLocked(k)
		return nil, nil
	}

	value, err := s.cache.Get(k)
	if err != nil {
		if err == bigcache.ErrEntryNotFound {
			return nil, nil
		}
		return nil, err
	}
	return value, nil
}

// Set 设置键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.setLocked(string(key), value, 0)
}

// SetWithTTL 设置键值对并指定过期时间，ttl为0表示跟随缓存生命周期
func (s *Store) SetWithTTL(ctx context.Context, key, value []byte, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.setLocked(string(key), value, ttl)
}

// Delete 删除指定键的值
func (s *Store) Delete(ctx context.Context, key []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.removeLocked(string(key))
	return nil
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	k := string(key)
	if s.expiredLocked(k) {
		s.removeLocked(k)
		return false, nil
	}
	_, ok := s.keySet[k]
	return ok, nil
}

// PrefixScan 按前缀扫描键值对
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	result := make(map[string][]byte)
	p := string(prefix)
	for k := range s.keySet {
		if !strings.HasPrefix(k, p) {
			continue
		}
		if s.expiredLocked(k) {
			s.removeLocked(k)
			continue
		}
		value, err := s.cache.Get(k)
		if err != nil {
			if err == bigcache.ErrEntryNotFound {
				delete(s.keySet, k)
				continue
			}
			return nil, err
		}
		result[k] = value
	}
	return result, nil
}

// WriteBatch 在锁内应用一组写入与删除
//
// BigCache没有事务，这里先做写入再做删除，持锁期间不会被其他
// 调用方观察到中间状态。
func (s *Store) WriteBatch(ctx context.Context, puts map[string][]byte, deletes [][]byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for k, v := range puts {
		if err := s.setLocked(k, v, 0); err != nil {
			return err
		}
	}
	for _, k := range deletes {
		s.removeLocked(string(k))
	}
	return nil
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil
	}
	err := s.cache.Close()
	if err == nil {
		s.closed = true
	}
	return err
}

func (s *Store) setLocked(key string, value []byte, ttl time.Duration) error {
	if err := s.cache.Set(key, value); err != nil {
		return err
	}
	s.keySet[key] = struct{}{}
	if ttl > 0 {
		s.expiry[key] = time.Now().Add(ttl)
	} else {
		delete(s.expiry, key)
	}
	return nil
}

func (s *Store) removeLocked(key string) {
	_ = s.cache.Delete(key)
	delete(s.keySet, key)
	delete(s.expiry, key)
}

func (s *Store) expiredLocked(key string) bool {
	deadline, ok := s.expiry[key]
	return ok && time.Now().After(deadline)
}
