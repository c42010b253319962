// Package minting 提供铸造引擎的依赖注入组装
//
// 🏗️ **装配关系**：
//
//	state.Store（持久KV） ──┬─→ invocations.Tracker
//	                        ├─→ auction.Engine
//	                        ├─→ payout.Engine
//	                        └─→ settlement.Service ←─ splitter.Splitter（缓存KV）
//	全部汇聚于 minter.Facade，对外导出 minting.Minter 端口。
package minting

import (
	"go.uber.org/fx"

	"github.com/mintforge/v1/internal/core/minting/auction"
	"github.com/mintforge/v1/internal/core/minting/invocations"
	"github.com/mintforge/v1/internal/core/minting/minter"
	"github.com/mintforge/v1/internal/core/minting/payout"
	"github.com/mintforge/v1/internal/core/minting/settlement"
	"github.com/mintforge/v1/internal/core/minting/splitter"
	"github.com/mintforge/v1/internal/core/minting/state"
	"github.com/mintforge/v1/pkg/interfaces/acl"
	"github.com/mintforge/v1/pkg/interfaces/config"
	infraClock "github.com/mintforge/v1/pkg/interfaces/infrastructure/clock"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/event"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/storage"
	"github.com/mintforge/v1/pkg/interfaces/minterfilter"
	"github.com/mintforge/v1/pkg/interfaces/minting"
	"github.com/mintforge/v1/pkg/interfaces/payment"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/interfaces/token"
)

// ModuleParams 定义铸造模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider   config.Provider
	Clock      infraClock.Clock
	Bus        event.Bus
	Logger     log.Logger
	Persistent storage.KVStore `name:"persistent"`
	Cache      storage.KVStore `name:"cache"`

	CoreRegistry registry.CoreRegistry
	Dispatcher   minterfilter.Dispatcher
	AdminACL     acl.AdminACL
	Native       payment.NativeTransferrer
	Resolver     token.Resolver
}

// ModuleOutput 定义铸造模块的输出结构
type ModuleOutput struct {
	fx.Out

	Minter  minting.Minter
	Payout  *payout.Engine
	Tracker *invocations.Tracker
}

// ProvideServices 组装铸造引擎
func ProvideServices(params ModuleParams) ModuleOutput {
	options := params.Provider.GetMinter()

	store := state.New(params.Persistent, params.Logger)
	tracker := invocations.New(store, params.CoreRegistry, params.Logger)
	fundsSplitter := splitter.New(params.CoreRegistry, params.Resolver, params.Native, params.Cache, options, params.Logger)
	payoutEngine := payout.New(store, params.Native, options, params.Logger)
	auctionEngine := auction.New(store, params.Clock, params.CoreRegistry, params.AdminACL, options, params.Logger)
	settlementService := settlement.New(store, params.Clock, params.CoreRegistry, params.AdminACL, fundsSplitter, payoutEngine, options, params.Logger)
	facade := minter.New(store, auctionEngine, settlementService, tracker, params.Dispatcher, params.Clock, params.Bus, params.Logger)

	return ModuleOutput{
		Minter:  facade,
		Payout:  payoutEngine,
		Tracker: tracker,
	}
}

// Module 返回铸造引擎模块
func Module() fx.Option {
	return fx.Module("minting",
		fx.Provide(ProvideServices),
	)
}
