package collab

import (
	"go.uber.org/fx"

	"github.com/mintforge/v1/pkg/interfaces/acl"
	"github.com/mintforge/v1/pkg/interfaces/config"
	infraClock "github.com/mintforge/v1/pkg/interfaces/infrastructure/clock"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/minterfilter"
	"github.com/mintforge/v1/pkg/interfaces/payment"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/interfaces/token"
)

// ModuleParams 定义协作方模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider
	Clock    infraClock.Clock
	Logger   log.Logger
}

// ModuleOutput 定义协作方模块的输出结构
//
// 同时导出具体类型与端口接口：端口供铸造引擎消费，
// 具体类型供管理API做项目登记、代币注册等本地运维操作。
type ModuleOutput struct {
	fx.Out

	Registry    *LocalRegistry
	Dispatcher  *LocalDispatcher
	Transferrer *LedgerTransferrer
	Resolver    *MapResolver

	CoreRegistry      registry.CoreRegistry
	FilterDispatcher  minterfilter.Dispatcher
	AdminACL          acl.AdminACL
	NativeTransferrer payment.NativeTransferrer
	TokenResolver     token.Resolver
}

// ProvideServices 初始化进程内协作方套件
//
// 💡 **部署说明**：
// 本套件以进程内账本实现核心注册表、铸造过滤器、Admin-ACL、
// 原生转账与ERC-20解析五个端口，承担开发网语义。生产部署
// 在相同端口上替换为链上RPC适配器，铸造引擎无需改动。
func ProvideServices(params ModuleParams) ModuleOutput {
	options := params.Provider.GetMinter()

	localRegistry := NewLocalRegistry(params.Logger)
	dispatcher := NewLocalDispatcher(localRegistry, params.Clock, options.GetMinterAddress(), params.Logger)
	allowlist := NewAllowlistACL(options.GetAdminAddresses())
	transferrer := NewLedgerTransferrer()
	resolver := NewMapResolver()

	return ModuleOutput{
		Registry:    localRegistry,
		Dispatcher:  dispatcher,
		Transferrer: transferrer,
		Resolver:    resolver,

		CoreRegistry:      localRegistry,
		FilterDispatcher:  dispatcher,
		AdminACL:          allowlist,
		NativeTransferrer: transferrer,
		TokenResolver:     resolver,
	}
}

// Module 返回进程内协作方模块
func Module() fx.Option {
	return fx.Module("collab",
		fx.Provide(ProvideServices),
	)
}
