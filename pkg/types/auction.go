// Package types 拍卖与结算相关的业务数据结构
//
// 🎯 **荷兰拍卖引擎核心状态 (Dutch Auction State)**
//
// 本文件定义指数衰减荷兰拍卖的全部持久化状态，专注于：
// - 拍卖配置：起拍时间、半衰期、起拍价、底价
// - 结算账本：每个购买者的累计实付与购买次数
// - 调用上限：项目最大铸造次数的本地缓存
// - 资金拆分：项目的支付货币配置
//
// ⚠️ **核心约束**
// - 金额一律使用最小货币单位（wei级）的 *big.Int，禁止浮点
// - 拍卖周期（epoch）内 latestPurchasePrice 单调不增
// - 状态迁移：未配置 → 进行中 → 待结算 → 已结算，仅reset可回退
package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// CurrencySymbolUnconfigured 未配置支付货币时的哨兵符号
const CurrencySymbolUnconfigured = "UNCONFIG"

// AuctionConfig 单个项目的拍卖配置与周期内结算簿记
//
// timestampStart != 0 表示拍卖已配置。价格曲线为指数半衰 + 区间内
// 线性插值，详见 auction.Engine.GetPrice。
type AuctionConfig struct {
	// TimestampStart 拍卖开始时间（Unix秒）。0表示未配置。
	TimestampStart uint64 `json:"timestamp_start"`

	// PriceDecayHalfLifeSeconds 价格半衰期（秒）。配置时必须落在管理员设定的区间内。
	PriceDecayHalfLifeSeconds uint64 `json:"price_decay_half_life_seconds"`

	// StartPrice 起拍价（最小货币单位）。写入时强制 StartPrice > BasePrice。
	StartPrice *big.Int `json:"start_price"`

	// BasePrice 底价（最小货币单位）。价格曲线的渐近下界。
	BasePrice *big.Int `json:"base_price"`

	// LatestPurchasePrice 本周期最近一次购买的净价。
	// 收益提取后被钉为最终清算价。0表示本周期尚无购买。
	LatestPurchasePrice *big.Int `json:"latest_purchase_price"`

	// NumSettleableInvocations 仍可参与事后结算调整的铸造次数。
	NumSettleableInvocations uint64 `json:"num_settleable_invocations"`

	// AuctionRevenuesCollected 本周期艺术家/平台收益是否已提取。
	// 置true后禁止reset与再次提取。
	AuctionRevenuesCollected bool `json:"auction_revenues_collected"`
}

// Configured 返回拍卖是否已配置
func (c *AuctionConfig) Configured() bool {
	return c != nil && c.TimestampStart != 0
}

// Normalize 补齐nil金额字段为0，保证反序列化后的算术安全
func (c *AuctionConfig) Normalize() {
	if c.StartPrice == nil {
		c.StartPrice = new(big.Int)
	}
	if c.BasePrice == nil {
		c.BasePrice = new(big.Int)
	}
	if c.LatestPurchasePrice == nil {
		c.LatestPurchasePrice = new(big.Int)
	}
}

// SettlementReceipt 单个购买者在单个项目当前拍卖周期内的结算凭据
//
// 生命周期：首次购买时创建；周期内金额只增不减；
// reclaim调用将余额核销至 最终价×购买次数，多余部分退款。
type SettlementReceipt struct {
	// NetPosted 该地址为本项目当前周期累计实付金额（最小货币单位）
	NetPosted *big.Int `json:"net_posted"`

	// NumPurchases 该地址在本周期内的购买次数
	NumPurchases uint64 `json:"num_purchases"`
}

// Normalize 补齐nil金额字段
func (r *SettlementReceipt) Normalize() {
	if r.NetPosted == nil {
		r.NetPosted = new(big.Int)
	}
}

// MaxInvocationsProjectConfig 项目最大铸造次数的本地缓存
//
// 缓存可以滞后于权威注册表（假阴性安全：多做一次权威检查），
// 但同步后绝不会产生假阳性——权威上限只降不升。
type MaxInvocationsProjectConfig struct {
	// MaxInvocations 缓存的铸造上限
	MaxInvocations uint64 `json:"max_invocations"`

	// MaxHasBeenInvoked 是否已达上限的短路缓存
	MaxHasBeenInvoked bool `json:"max_has_been_invoked"`
}

// SplitFundsProjectConfig 项目资金拆分（支付货币）配置
//
// 仅艺术家或管理员可写；所有购买与提取路径读取。
type SplitFundsProjectConfig struct {
	// CurrencyAddress 支付货币合约地址。零地址表示原生货币。
	CurrencyAddress common.Address `json:"currency_address"`

	// CurrencySymbol 支付货币符号。未配置时为 CurrencySymbolUnconfigured。
	CurrencySymbol string `json:"currency_symbol"`
}

// Symbol 返回货币符号，未配置时返回哨兵值
func (c *SplitFundsProjectConfig) Symbol() string {
	if c == nil || c.CurrencySymbol == "" {
		return CurrencySymbolUnconfigured
	}
	return c.CurrencySymbol
}

// HalfLifeRange 管理员设定的合法半衰期区间（秒）
type HalfLifeRange struct {
	MinSeconds uint64 `json:"min_seconds"`
	MaxSeconds uint64 `json:"max_seconds"`
}

// Contains 判断半衰期是否落在区间内
func (r HalfLifeRange) Contains(halfLife uint64) bool {
	return halfLife >= r.MinSeconds && halfLife <= r.MaxSeconds
}

// PriceInfo 价格查询视图
type PriceInfo struct {
	IsConfigured    bool           `json:"is_configured"`
	TokenPrice      *big.Int       `json:"token_price"`
	CurrencySymbol  string         `json:"currency_symbol"`
	CurrencyAddress common.Address `json:"currency_address"`
}

// AuctionParameters 拍卖参数查询视图
type AuctionParameters struct {
	TimestampStart            uint64   `json:"timestamp_start"`
	PriceDecayHalfLifeSeconds uint64   `json:"price_decay_half_life_seconds"`
	StartPrice                *big.Int `json:"start_price"`
	BasePrice                 *big.Int `json:"base_price"`
}

// RevenueSplits 核心注册表返回的一级销售收益拆分
//
// Platform两项仅在engine形态的核心合约上存在；flagship形态恒为零值。
type RevenueSplits struct {
	ProviderAmount        *big.Int       `json:"provider_amount"`
	ProviderAddress       common.Address `json:"provider_address"`
	PlatformAmount        *big.Int       `json:"platform_amount"`
	PlatformAddress       common.Address `json:"platform_address"`
	ArtistAmount          *big.Int       `json:"artist_amount"`
	ArtistAddress         common.Address `json:"artist_address"`
	AdditionalPayeeAmount *big.Int       `json:"additional_payee_amount"`
	AdditionalPayee       common.Address `json:"additional_payee"`
}

// Normalize 补齐nil金额字段
func (s *RevenueSplits) Normalize() {
	if s.ProviderAmount == nil {
		s.ProviderAmount = new(big.Int)
	}
	if s.PlatformAmount == nil {
		s.PlatformAmount = new(big.Int)
	}
	if s.ArtistAmount == nil {
		s.ArtistAmount = new(big.Int)
	}
	if s.AdditionalPayeeAmount == nil {
		s.AdditionalPayeeAmount = new(big.Int)
	}
}

// Total 返回各拆分项之和
func (s *RevenueSplits) Total() *big.Int {
	total := new(big.Int)
	if s == nil {
		return total
	}
	s.Normalize()
	total.Add(total, s.ProviderAmount)
	total.Add(total, s.PlatformAmount)
	total.Add(total, s.ArtistAmount)
	total.Add(total, s.AdditionalPayeeAmount)
	return total
}

// ProjectStateData 核心注册表的项目权威状态
type ProjectStateData struct {
	Invocations    uint64 `json:"invocations"`     // 当前已铸造次数（权威）
	MaxInvocations uint64 `json:"max_invocations"` // 铸造上限（权威，只降不升）
	Paused         bool   `json:"paused"`          // 项目是否暂停
	CompletedAt    uint64 `json:"completed_at"`    // 完成时间戳，0表示未完成
}
