// Package storage 提供MintForge系统的键值存储接口定义
//
// 💾 **键值存储服务 (Key-Value Storage Service)**
//
// 本文件定义了铸造平台的键值存储接口，专注于：
// - 高性能存储：BadgerDB的原生高性能键值存储服务
// - 事务支持：支持原子批量写入
// - 前缀扫描：高效的数据遍历和查询机制
//
// 🏗️ **设计原则**
// - 性能优先：充分利用底层引擎的性能优势
// - 数据安全：支持事务和数据完整性保障
// - 易用性：简洁的接口设计和错误处理
//
// 🔗 **组件关系**
// - KVStore：被铸造状态存储、结算账本等模块使用
// - 实现：internal/core/infrastructure/storage/badger（持久化）
// - 实现：internal/core/infrastructure/storage/memory（缓存/测试）
package storage

import (
	"context"
	"time"
)

// KVStore 定义键值存储的应用接口
//
// 提供简单易用的键值存储操作，适用于需要高性能键值操作的场景。
// 可用于实现状态表、账本、缓存等功能。
type KVStore interface {
	// Get 获取指定键的值
	// 如果键不存在，返回nil值和nil错误
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对
	// 如果键已存在，将覆盖原有值
	Set(ctx context.Context, key, value []byte) error

	// SetWithTTL 设置键值对并指定过期时间
	// ttl为0表示永不过期
	SetWithTTL(ctx context.Context, key, value []byte, ttl time.Duration) error

	// Delete 删除指定键的值
	// 如果键不存在，不会返回错误
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 扫描具有指定前缀的所有键值对
	// 返回 key(string) → value([]byte) 的映射
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// WriteBatch 原子地应用一组写入与删除
	// puts中的所有键值对与deletes中的所有键在同一事务内生效，
	// 任何一项失败则整体回滚
	WriteBatch(ctx context.Context, puts map[string][]byte, deletes [][]byte) error

	// Close 关闭存储
	// 确保所有待处理的事务被提交，数据被正确写入磁盘
	Close() error
}
