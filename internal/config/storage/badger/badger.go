// Package badger BadgerDB存储配置
package badger

import "github.com/mintforge/v1/pkg/types"

// BadgerOptions BadgerDB配置选项
type BadgerOptions struct {
	Path       string `json:"path"`        // 数据目录
	SyncWrites bool   `json:"sync_writes"` // 是否同步写
	InMemory   bool   `json:"in_memory"`   // 纯内存模式（测试用）
}

// GetPath 返回数据目录
func (o *BadgerOptions) GetPath() string { return o.Path }

// IsSyncWritesEnabled 返回是否启用同步写
func (o *BadgerOptions) IsSyncWritesEnabled() bool { return o.SyncWrites }

// IsInMemory 返回是否为纯内存模式
func (o *BadgerOptions) IsInMemory() bool { return o.InMemory }

// New 创建Badger配置选项，合并默认值与用户配置
func New(userConfig *types.UserBadgerConfig) *BadgerOptions {
	options := &BadgerOptions{
		Path:       "./data/badger",
		SyncWrites: true,
		InMemory:   false,
	}

	if userConfig == nil {
		return options
	}

	if userConfig.Path != nil {
		options.Path = *userConfig.Path
	}
	if userConfig.SyncWrites != nil {
		options.SyncWrites = *userConfig.SyncWrites
	}
	if userConfig.InMemory != nil {
		options.InMemory = *userConfig.InMemory
	}

	return options
}
