// Package storage 提供存储基础设施的依赖注入组装
package storage

import (
	"context"

	"go.uber.org/fx"

	badgerstore "github.com/mintforge/v1/internal/core/infrastructure/storage/badger"
	memorystore "github.com/mintforge/v1/internal/core/infrastructure/storage/memory"
	"github.com/mintforge/v1/pkg/interfaces/config"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/mintforge/v1/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider
	Logger   log.Logger
}

// ModuleOutput 定义存储模块的输出结构
//
// persistent: BadgerDB持久化存储，承载拍卖配置、结算回执与托管账本
// cache:      BigCache内存存储，承载收益分账元数据等可重建数据
type ModuleOutput struct {
	fx.Out

	Persistent storageInterface.KVStore `name:"persistent"`
	Cache      storageInterface.KVStore `name:"cache"`
}

// ProvideServices 根据配置初始化存储引擎
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	persistent, err := badgerstore.New(params.Provider.GetBadger(), params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	cache, err := memorystore.New(params.Provider.GetMemory(), params.Logger)
	if err != nil {
		_ = persistent.Close()
		return ModuleOutput{}, err
	}

	return ModuleOutput{Persistent: persistent, Cache: cache}, nil
}

// Module 返回存储基础设施模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),

		fx.Invoke(func(lc fx.Lifecycle, p struct {
			fx.In
			Persistent storageInterface.KVStore `name:"persistent"`
			Cache      storageInterface.KVStore `name:"cache"`
			Logger     log.Logger
		}) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					p.Logger.Info("正在关闭存储服务...")
					if err := p.Cache.Close(); err != nil {
						p.Logger.Errorf("关闭内存存储失败: %v", err)
					}
					if err := p.Persistent.Close(); err != nil {
						p.Logger.Errorf("关闭BadgerDB存储失败: %v", err)
						return err
					}
					p.Logger.Info("存储服务已安全关闭")
					return nil
				},
			})
		}),
	)
}
