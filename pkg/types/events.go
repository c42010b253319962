// Package types 铸造平台的事件类型定义
//
// 业务事件由铸造门面在每次状态迁移后发布，等价于链上合约的事件日志。
// 基础设施层的事件总线只负责分发，事件语义由本文件约定。
package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventType 事件类型
type EventType string

// 铸造平台业务事件
const (
	// EventAuctionConfigured 拍卖参数已写入
	EventAuctionConfigured EventType = "minting:auction_configured"
	// EventAuctionReset 拍卖配置被管理员重置
	EventAuctionReset EventType = "minting:auction_reset"
	// EventTokenPurchased 一次购买完成（令牌已铸造，资金已托管）
	EventTokenPurchased EventType = "minting:token_purchased"
	// EventRevenuesWithdrawn 本周期收益已提取并完成拆分
	EventRevenuesWithdrawn EventType = "minting:revenues_withdrawn"
	// EventExcessReclaimed 购买者取回了超额结算资金
	EventExcessReclaimed EventType = "minting:excess_reclaimed"
	// EventSelloutPriceReduced 管理员紧急下调清算价
	EventSelloutPriceReduced EventType = "minting:sellout_price_reduced"
)

// AuctionConfiguredEvent 拍卖配置事件载荷
type AuctionConfiguredEvent struct {
	Key            ProjectKey `json:"key"`
	TimestampStart uint64     `json:"timestamp_start"`
	HalfLife       uint64     `json:"half_life"`
	StartPrice     *big.Int   `json:"start_price"`
	BasePrice      *big.Int   `json:"base_price"`
}

// TokenPurchasedEvent 购买事件载荷
type TokenPurchasedEvent struct {
	Key       ProjectKey     `json:"key"`
	TokenID   uint64         `json:"token_id"`
	Purchaser common.Address `json:"purchaser"`
	Recipient common.Address `json:"recipient"`
	PricePaid *big.Int       `json:"price_paid"` // 当时的曲线价格
	NetPosted *big.Int       `json:"net_posted"` // 实际托管金额
}

// RevenuesWithdrawnEvent 收益提取事件载荷
type RevenuesWithdrawnEvent struct {
	Key          ProjectKey `json:"key"`
	FinalPrice   *big.Int   `json:"final_price"`
	TotalRevenue *big.Int   `json:"total_revenue"`
}

// ExcessReclaimedEvent 超额结算资金取回事件载荷
type ExcessReclaimedEvent struct {
	Key       ProjectKey     `json:"key"`
	Purchaser common.Address `json:"purchaser"`
	Recipient common.Address `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
}
