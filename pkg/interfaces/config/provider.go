// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/mintforge/v1/internal/config/api"
	clockconfig "github.com/mintforge/v1/internal/config/clock"
	logconfig "github.com/mintforge/v1/internal/config/log"
	minterconfig "github.com/mintforge/v1/internal/config/minter"
	badgerconfig "github.com/mintforge/v1/internal/config/storage/badger"
	memoryconfig "github.com/mintforge/v1/internal/config/storage/memory"
)

// Provider 配置提供者接口
//
// 各模块通过该接口获取已合并默认值的配置选项，
// 避免在业务代码中直接接触用户配置的指针字段。
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetMinter 获取铸造引擎配置
	GetMinter() *minterconfig.MinterOptions

	// GetClock 获取时钟源配置
	GetClock() *clockconfig.ClockOptions

	// GetBadger 获取BadgerDB存储配置
	GetBadger() *badgerconfig.BadgerOptions

	// GetMemory 获取内存缓存配置
	GetMemory() *memoryconfig.MemoryOptions
}
