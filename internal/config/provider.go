// Package config 配置提供者实现
//
// 将用户的统一配置（AppConfig）按关注点拆解为各模块的Options，
// 默认值合并在各子配置包的New中完成。
package config

import (
	apiconfig "github.com/mintforge/v1/internal/config/api"
	clockconfig "github.com/mintforge/v1/internal/config/clock"
	logconfig "github.com/mintforge/v1/internal/config/log"
	minterconfig "github.com/mintforge/v1/internal/config/minter"
	badgerconfig "github.com/mintforge/v1/internal/config/storage/badger"
	memoryconfig "github.com/mintforge/v1/internal/config/storage/memory"
	"github.com/mintforge/v1/pkg/interfaces/config"
	"github.com/mintforge/v1/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return &Provider{
		appConfig: appConfig,
	}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *logconfig.LogOptions {
	var userLogConfig *types.UserLogConfig
	if p.appConfig != nil {
		userLogConfig = p.appConfig.Log
	}
	return logconfig.New(userLogConfig)
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *apiconfig.APIOptions {
	var userAPIConfig *types.UserAPIConfig
	if p.appConfig != nil {
		userAPIConfig = p.appConfig.API
	}
	return apiconfig.New(userAPIConfig)
}

// GetMinter 获取铸造引擎配置
func (p *Provider) GetMinter() *minterconfig.MinterOptions {
	var userMinterConfig *types.UserMinterConfig
	if p.appConfig != nil {
		userMinterConfig = p.appConfig.Minter
	}
	return minterconfig.New(userMinterConfig)
}

// GetClock 获取时钟源配置
func (p *Provider) GetClock() *clockconfig.ClockOptions {
	var userClockConfig *types.UserClockConfig
	if p.appConfig != nil {
		userClockConfig = p.appConfig.Clock
	}
	return clockconfig.New(userClockConfig)
}

// GetBadger 获取BadgerDB存储配置
func (p *Provider) GetBadger() *badgerconfig.BadgerOptions {
	var userBadgerConfig *types.UserBadgerConfig
	if p.appConfig != nil && p.appConfig.Storage != nil {
		userBadgerConfig = p.appConfig.Storage.Badger
	}
	return badgerconfig.New(userBadgerConfig)
}

// GetMemory 获取内存缓存配置
func (p *Provider) GetMemory() *memoryconfig.MemoryOptions {
	var userMemoryConfig *types.UserMemoryConfig
	if p.appConfig != nil && p.appConfig.Storage != nil {
		userMemoryConfig = p.appConfig.Storage.Memory
	}
	return memoryconfig.New(userMemoryConfig)
}
