// Package minting 提供荷兰拍卖铸造引擎的应用服务端口
//
// 🎯 **核心职责**：
// 定义铸造门面对外暴露的全部入口：购买、拍卖配置、收益提取、
// 超额结算资金取回与只读视图。API层与CLI层仅依赖本端口。
//
// 💡 **设计理念**：
// 每个入口与链上铸造合约的公开方法一一对应；调用者身份以参数
// 显式传入（平台侧已完成签名验证），授权判定在服务内部完成。
//
// ⚠️ **核心约束**：
// - 所有写操作要么完整生效、要么毫无痕迹（原子性）
// - 购买路径绝不在购买时分账——资金托管至收益提取时点
package minting

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mintforge/v1/pkg/types"
)

// PurchaseService 购买入口
type PurchaseService interface {
	// Purchase 以payer为接收人购买一枚令牌
	//
	// payment为随调用托管的金额，必须不低于当前曲线价格；
	// 超出部分同样托管，留待结算时退还。
	Purchase(ctx context.Context, key types.ProjectKey, payer common.Address, payment *big.Int) (uint64, error)

	// PurchaseTo 购买一枚令牌并铸造给指定接收地址
	PurchaseTo(ctx context.Context, key types.ProjectKey, payer, to common.Address, payment *big.Int) (uint64, error)
}

// AuctionConfigurator 拍卖配置入口
type AuctionConfigurator interface {
	// SetAuctionDetails 写入项目的拍卖参数（仅艺术家）
	SetAuctionDetails(ctx context.Context, key types.ProjectKey, caller common.Address,
		timestampStart, halfLifeSeconds uint64, startPrice, basePrice *big.Int) error

	// ResetAuctionDetails 重置拍卖配置（仅管理员）
	// 重置不清除结算账本：已购令牌的结算权利保留
	ResetAuctionDetails(ctx context.Context, key types.ProjectKey, caller common.Address) error

	// SetAllowablePriceDecayHalfLifeRangeSeconds 设置合法半衰期区间（仅管理员）
	SetAllowablePriceDecayHalfLifeRangeSeconds(ctx context.Context, caller common.Address, minSeconds, maxSeconds uint64) error

	// UpdateProjectCurrencyInfo 更新项目支付货币配置（仅艺术家）
	UpdateProjectCurrencyInfo(ctx context.Context, key types.ProjectKey, caller common.Address,
		currencySymbol string, currencyAddress common.Address) error
}

// SettlementService 结算入口
type SettlementService interface {
	// WithdrawArtistAndAdminRevenues 提取本周期艺术家与平台收益
	//
	// 前置条件：售罄或价格衰减至底价。返回实际拆分的总收益。
	// 这是资金离开托管的唯一时点。
	WithdrawArtistAndAdminRevenues(ctx context.Context, key types.ProjectKey, caller common.Address) (*big.Int, error)

	// AdminEmergencyReduceSelloutPrice 管理员紧急下调清算价（只许降低）
	AdminEmergencyReduceSelloutPrice(ctx context.Context, key types.ProjectKey, caller common.Address, newPrice *big.Int) error

	// ReclaimProjectExcessSettlementFunds 取回调用者在单个项目的超额结算资金
	ReclaimProjectExcessSettlementFunds(ctx context.Context, key types.ProjectKey, caller common.Address) (*big.Int, error)

	// ReclaimProjectExcessSettlementFundsTo 取回并支付到指定接收地址
	ReclaimProjectExcessSettlementFundsTo(ctx context.Context, recipient common.Address, key types.ProjectKey, caller common.Address) (*big.Int, error)

	// ReclaimProjectsExcessSettlementFunds 批量取回多个项目的超额结算资金
	// 任一项目无购买记录则整体失败
	ReclaimProjectsExcessSettlementFunds(ctx context.Context, keys []types.ProjectKey, caller common.Address) (*big.Int, error)

	// ReclaimProjectsExcessSettlementFundsTo 批量取回并支付到指定接收地址
	ReclaimProjectsExcessSettlementFundsTo(ctx context.Context, recipient common.Address, keys []types.ProjectKey, caller common.Address) (*big.Int, error)
}

// InvocationLimiter 铸造上限入口
type InvocationLimiter interface {
	// SyncProjectMaxInvocationsToCore 将权威上限同步进本地缓存
	SyncProjectMaxInvocationsToCore(ctx context.Context, key types.ProjectKey) (*types.MaxInvocationsProjectConfig, error)

	// ManuallyLimitProjectMaxInvocations 艺术家收紧本地铸造上限（仅艺术家，仅可收紧）
	ManuallyLimitProjectMaxInvocations(ctx context.Context, key types.ProjectKey, caller common.Address, newMax uint64) error
}

// Views 只读查询视图
type Views interface {
	// GetPriceInfo 查询当前价格与支付货币信息
	GetPriceInfo(ctx context.Context, key types.ProjectKey) (*types.PriceInfo, error)

	// ProjectAuctionParameters 查询拍卖参数
	ProjectAuctionParameters(ctx context.Context, key types.ProjectKey) (*types.AuctionParameters, error)

	// GetProjectExcessSettlementFunds 查询地址在项目内当前可取回的超额结算资金
	GetProjectExcessSettlementFunds(ctx context.Context, key types.ProjectKey, purchaser common.Address) (*big.Int, error)

	// GetNumSettleableInvocations 查询项目当前可结算铸造次数
	GetNumSettleableInvocations(ctx context.Context, key types.ProjectKey) (uint64, error)

	// GetProjectLatestPurchasePrice 查询项目最近成交价（提取后为最终清算价）
	GetProjectLatestPurchasePrice(ctx context.Context, key types.ProjectKey) (*big.Int, error)
}

// Minter 荷兰拍卖铸造门面的完整端口
type Minter interface {
	PurchaseService
	AuctionConfigurator
	SettlementService
	InvocationLimiter
	Views
}
