// Package settlement 延迟结算账本与收益提取
//
// 🎯 **结算服务 (Settlement Service)**
//
// 荷兰拍卖的定义性设计：购买时资金全额托管，不做任何拆分；
// 最终清算价在售罄或衰减至底价时才确立。本包实现：
// - 收益提取：唯一的资金离开托管的时点，钉死最终清算价
// - 超额取回：购买者将余额核销至 最终价×购买次数，差额退款
// - 紧急降价：管理员在结算前单向下调清算价的逃生通道
//
// ⚠️ **核心约束**
// - 提取与每次取回都必须独立重验前置条件，不信任调用方快照
// - reset不剥夺已购令牌的结算权利：取回在reset前后均可调用
// - 二次取回得到零金额而非错误（幂等安全）
package settlement

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	minterconfig "github.com/mintforge/v1/internal/config/minter"
	"github.com/mintforge/v1/internal/core/minting/auction"
	"github.com/mintforge/v1/internal/core/minting/authz"
	"github.com/mintforge/v1/internal/core/minting/payout"
	"github.com/mintforge/v1/internal/core/minting/splitter"
	"github.com/mintforge/v1/internal/core/minting/state"
	"github.com/mintforge/v1/pkg/interfaces/acl"
	infraClock "github.com/mintforge/v1/pkg/interfaces/infrastructure/clock"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/types"
)

// Service 结算服务
type Service struct {
	store    *state.Store
	clock    infraClock.Clock
	registry registry.CoreRegistry
	acl      acl.AdminACL
	splitter *splitter.Splitter
	payout   *payout.Engine
	self     common.Address
	logger   log.Logger
}

// New 创建结算服务
func New(
	store *state.Store,
	clock infraClock.Clock,
	coreRegistry registry.CoreRegistry,
	adminACL acl.AdminACL,
	fundsSplitter *splitter.Splitter,
	payoutEngine *payout.Engine,
	options *minterconfig.MinterOptions,
	logger log.Logger,
) *Service {
	return &Service{
		store:    store,
		clock:    clock,
		registry: coreRegistry,
		acl:      adminACL,
		splitter: fundsSplitter,
		payout:   payoutEngine,
		self:     options.GetMinterAddress(),
		logger:   logger,
	}
}

// WithdrawArtistAndAdminRevenues 提取本周期艺术家与平台收益
//
// 前置条件：收益未提取过，且项目已售罄或价格已衰减至底价。
// 售罄时最终清算价为周期内最近成交价，衰减至底价时为底价。
// 返回实际拆分的总收益 = 最终价 × 可结算铸造次数。
func (s *Service) WithdrawArtistAndAdminRevenues(ctx context.Context, key types.ProjectKey, caller common.Address) (*big.Int, error) {
	if err := authz.RequireArtistOrAdmin(ctx, s.registry, s.acl, key, caller, s.self, "withdrawArtistAndAdminRevenues"); err != nil {
		return nil, err
	}

	cfg, err := s.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	if cfg.AuctionRevenuesCollected {
		return nil, &types.StateConflictError{Reason: types.StateConflictRevenuesAlreadyCollected, Key: key}
	}

	soldOut, err := s.isSoldOut(ctx, key)
	if err != nil {
		return nil, err
	}

	var finalPrice *big.Int
	if soldOut {
		finalPrice = new(big.Int).Set(cfg.LatestPurchasePrice)
	} else {
		price, priceErr := auction.PriceAt(key, cfg, uint64(s.clock.Unix()))
		if priceErr != nil {
			return nil, priceErr
		}
		if price.Cmp(cfg.BasePrice) != 0 {
			return nil, &types.StateConflictError{Reason: types.StateConflictAuctionNotYetSoldOut, Key: key}
		}
		finalPrice = new(big.Int).Set(cfg.BasePrice)
	}

	totalRevenue := new(big.Int).Mul(finalPrice, new(big.Int).SetUint64(cfg.NumSettleableInvocations))

	custody, err := s.store.GetCustody(ctx, key)
	if err != nil {
		return nil, err
	}
	if custody.Cmp(totalRevenue) < 0 {
		return nil, &types.ExternalCallError{
			Op:  "withdrawArtistAndAdminRevenues",
			Err: errInsufficientCustody(key, custody, totalRevenue),
		}
	}

	splitCfg, err := s.store.GetSplitConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.splitter.Split(ctx, key, totalRevenue, splitCfg.CurrencyAddress); err != nil {
		return nil, err
	}

	cfg.LatestPurchasePrice = finalPrice
	cfg.AuctionRevenuesCollected = true

	batch := s.store.NewBatch().
		PutAuctionConfig(key, cfg).
		PutCustody(key, new(big.Int).Sub(custody, totalRevenue))
	if err := s.store.Commit(ctx, batch); err != nil {
		// 支付腿已执行而状态未落盘，必须人工对账
		s.logger.Errorf("收益提取落盘失败，托管账与支付不一致: key=%s revenue=%s err=%v", key, totalRevenue, err)
		return nil, err
	}

	s.logger.Infof("收益提取完成: key=%s finalPrice=%s revenue=%s soldOut=%v", key, finalPrice, totalRevenue, soldOut)
	return totalRevenue, nil
}

// AdminEmergencyReduceSelloutPrice 管理员紧急下调清算价（仅可降低）
func (s *Service) AdminEmergencyReduceSelloutPrice(ctx context.Context, key types.ProjectKey, caller common.Address, newPrice *big.Int) error {
	if err := authz.RequireAdmin(ctx, s.acl, caller, s.self, "adminEmergencyReduceSelloutPrice"); err != nil {
		return err
	}
	if newPrice == nil {
		newPrice = new(big.Int)
	}

	cfg, err := s.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return err
	}
	if cfg.AuctionRevenuesCollected {
		return &types.StateConflictError{Reason: types.StateConflictRevenuesAlreadyCollected, Key: key}
	}
	if cfg.LatestPurchasePrice.Sign() == 0 {
		return &types.ValueError{Reason: types.ValueErrorNoPurchasesToAdjust, Detail: "本周期尚无成交价可下调"}
	}
	if newPrice.Cmp(cfg.LatestPurchasePrice) > 0 {
		return &types.ValueError{Reason: types.ValueErrorPriceAboveLatestPurchase, Detail: "清算价只允许下调"}
	}
	if newPrice.Cmp(cfg.BasePrice) < 0 {
		return &types.ValueError{Reason: types.ValueErrorPriceBelowBase, Detail: "清算价不得低于底价"}
	}

	cfg.LatestPurchasePrice = new(big.Int).Set(newPrice)
	if err := s.store.PutAuctionConfig(ctx, key, cfg); err != nil {
		return err
	}
	s.logger.Warnf("管理员紧急下调清算价: key=%s newPrice=%s", key, newPrice)
	return nil
}

// ReclaimProjectExcessSettlementFunds 取回调用者在单个项目的超额结算资金
func (s *Service) ReclaimProjectExcessSettlementFunds(ctx context.Context, key types.ProjectKey, caller common.Address) (*big.Int, error) {
	return s.ReclaimProjectExcessSettlementFundsTo(ctx, caller, key, caller)
}

// ReclaimProjectExcessSettlementFundsTo 取回并支付到指定接收地址
//
// owed = netPosted - finalPrice×numPurchases。收益已提取时最终价
// 为钉死的清算价；周期仍在进行时采用当前曲线价（价格单调不增，
// 这是对购买者最有利的到目前为止的价格）；拍卖被reset后回退到
// 最近成交价。
func (s *Service) ReclaimProjectExcessSettlementFundsTo(ctx context.Context, recipient common.Address, key types.ProjectKey, caller common.Address) (*big.Int, error) {
	if recipient == (common.Address{}) {
		return nil, &types.ZeroAddressError{Param: "recipient"}
	}

	batch := s.store.NewBatch()
	owed, err := s.stageReclaim(ctx, key, caller, batch)
	if err != nil {
		return nil, err
	}
	if owed.Sign() == 0 {
		return owed, nil
	}
	if err := s.store.Commit(ctx, batch); err != nil {
		return nil, err
	}
	if err := s.payout.ForceCredit(ctx, recipient, owed); err != nil {
		return nil, err
	}
	s.logger.Infof("超额结算资金已取回: key=%s purchaser=%s recipient=%s amount=%s", key, caller.Hex(), recipient.Hex(), owed)
	return owed, nil
}

// ReclaimProjectsExcessSettlementFunds 批量取回多个项目的超额结算资金
func (s *Service) ReclaimProjectsExcessSettlementFunds(ctx context.Context, keys []types.ProjectKey, caller common.Address) (*big.Int, error) {
	return s.ReclaimProjectsExcessSettlementFundsTo(ctx, caller, keys, caller)
}

// ReclaimProjectsExcessSettlementFundsTo 批量取回并支付到指定接收地址
//
// 所有项目的核销在同一事务内落盘，退款合并为一次支付。
// 任一项目无购买记录则整体失败，分文不动。
// 同一项目在批次中出现多次会被整体拒绝：每次暂存都基于
// 落盘前的收据与托管余额计算，重复项目会重复累计应退金额。
func (s *Service) ReclaimProjectsExcessSettlementFundsTo(ctx context.Context, recipient common.Address, keys []types.ProjectKey, caller common.Address) (*big.Int, error) {
	if recipient == (common.Address{}) {
		return nil, &types.ZeroAddressError{Param: "recipient"}
	}

	seen := make(map[types.ProjectKey]struct{}, len(keys))
	batch := s.store.NewBatch()
	total := new(big.Int)
	for _, key := range keys {
		if _, dup := seen[key]; dup {
			return nil, &types.ValueError{Reason: types.ValueErrorDuplicateProjectKey, Detail: "批量取回不允许重复项目"}
		}
		seen[key] = struct{}{}
		owed, err := s.stageReclaim(ctx, key, caller, batch)
		if err != nil {
			return nil, err
		}
		total.Add(total, owed)
	}
	if total.Sign() == 0 {
		return total, nil
	}
	if err := s.store.Commit(ctx, batch); err != nil {
		return nil, err
	}
	if err := s.payout.ForceCredit(ctx, recipient, total); err != nil {
		return nil, err
	}
	s.logger.Infof("批量超额结算资金已取回: projects=%d purchaser=%s recipient=%s amount=%s", len(keys), caller.Hex(), recipient.Hex(), total)
	return total, nil
}

// ExcessSettlementFunds 查询地址在项目内当前可取回的超额结算资金
func (s *Service) ExcessSettlementFunds(ctx context.Context, key types.ProjectKey, purchaser common.Address) (*big.Int, error) {
	cfg, err := s.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	receipt, err := s.store.GetReceipt(ctx, key, purchaser)
	if err != nil {
		return nil, err
	}
	if receipt.NumPurchases == 0 {
		return nil, &types.StateConflictError{Reason: types.StateConflictNoPriorPurchases, Key: key}
	}
	return s.computeOwed(key, cfg, receipt), nil
}

// stageReclaim 计算caller在key下的应退金额，并将核销与托管出账暂存到batch
func (s *Service) stageReclaim(ctx context.Context, key types.ProjectKey, caller common.Address, batch *state.Batch) (*big.Int, error) {
	cfg, err := s.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	receipt, err := s.store.GetReceipt(ctx, key, caller)
	if err != nil {
		return nil, err
	}
	if receipt.NumPurchases == 0 {
		return nil, &types.StateConflictError{Reason: types.StateConflictNoPriorPurchases, Key: key}
	}

	owed := s.computeOwed(key, cfg, receipt)
	if owed.Sign() == 0 {
		return owed, nil
	}

	custody, err := s.store.GetCustody(ctx, key)
	if err != nil {
		return nil, err
	}
	if custody.Cmp(owed) < 0 {
		return nil, &types.ExternalCallError{
			Op:  "reclaimExcessSettlementFunds",
			Err: errInsufficientCustody(key, custody, owed),
		}
	}

	receipt.NetPosted = new(big.Int).Sub(receipt.NetPosted, owed)
	batch.PutReceipt(key, caller, receipt).
		PutCustody(key, new(big.Int).Sub(custody, owed))
	return owed, nil
}

// computeOwed 计算应退金额 = netPosted - finalPrice×numPurchases（下钳为0）
func (s *Service) computeOwed(key types.ProjectKey, cfg *types.AuctionConfig, receipt *types.SettlementReceipt) *big.Int {
	finalPrice := s.effectivePrice(key, cfg)
	required := new(big.Int).Mul(finalPrice, new(big.Int).SetUint64(receipt.NumPurchases))
	owed := new(big.Int).Sub(receipt.NetPosted, required)
	if owed.Sign() < 0 {
		return new(big.Int)
	}
	return owed
}

// effectivePrice 返回结算视角下当前生效的每令牌价格
func (s *Service) effectivePrice(key types.ProjectKey, cfg *types.AuctionConfig) *big.Int {
	if cfg.AuctionRevenuesCollected {
		return cfg.LatestPurchasePrice
	}
	if price, err := auction.PriceAt(key, cfg, uint64(s.clock.Unix())); err == nil {
		return price
	}
	// 拍卖已reset或尚未开始：按最近成交价结算
	return cfg.LatestPurchasePrice
}

// isSoldOut 判断项目是否已售罄（权威计数达到生效上限）
func (s *Service) isSoldOut(ctx context.Context, key types.ProjectKey) (bool, error) {
	data, err := s.registry.ProjectStateData(ctx, key)
	if err != nil {
		return false, &types.ExternalCallError{Op: "projectStateData", Err: err}
	}

	ceiling := data.MaxInvocations
	if cached, cacheErr := s.store.HasMaxInvocations(ctx, key); cacheErr == nil && cached {
		cfg, cfgErr := s.store.GetMaxInvocations(ctx, key)
		if cfgErr != nil {
			return false, cfgErr
		}
		// 人为收紧的上限以缓存为准，缓存绝不高于权威上限
		if cfg.MaxInvocations < ceiling {
			ceiling = cfg.MaxInvocations
		}
	}
	return ceiling > 0 && data.Invocations >= ceiling, nil
}
