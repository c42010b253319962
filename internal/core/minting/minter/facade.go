// Package minter 荷兰拍卖铸造门面
//
// 🎯 **铸造门面 (Minter Facade)**
//
// 对外可调用面的唯一入口，组合拍卖引擎、调用上限跟踪器、
// 结算服务与强制入账引擎：
// - 购买路径：上限门检 → 曲线定价 → 委托铸造 → 托管簿记
// - 配置路径：委托拍卖引擎并广播业务事件
// - 结算路径：重入闩锁保护下委托结算服务
//
// ⚠️ **核心约束**
// - 购买绝不在购买时分账，全额托管至收益提取时点
// - 所有写状态的入口共享同一把变更闩锁：购买、提取、取回、
//   配置变更对同一份托管/收据/拍卖配置记录做读-改-写，
//   任意两个并发写入口都会丢失更新，因此必须互相串行化。
//   进入时获取、所有退出路径（含失败）无条件释放
package minter

import (
	"context"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/internal/core/minting/auction"
	"github.com/mintforge/v1/internal/core/minting/invocations"
	"github.com/mintforge/v1/internal/core/minting/settlement"
	"github.com/mintforge/v1/internal/core/minting/state"
	infraClock "github.com/mintforge/v1/pkg/interfaces/infrastructure/clock"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/event"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/minterfilter"
	"github.com/mintforge/v1/pkg/interfaces/minting"
	"github.com/mintforge/v1/pkg/types"
)

// entryLatch 写入口闩锁
//
// 等价于作用域锁：进入时CAS获取，defer无条件释放。
// 获取失败说明另一个写入口正在执行中，调用被整体拒绝。
type entryLatch struct {
	flag int32
}

func (l *entryLatch) acquire() error {
	if !atomic.CompareAndSwapInt32(&l.flag, 0, 1) {
		reentrancyRejectionsTotal.Inc()
		return &types.StateConflictError{Reason: types.StateConflictReentrantCall}
	}
	return nil
}

func (l *entryLatch) release() {
	atomic.StoreInt32(&l.flag, 0)
}

// Facade 荷兰拍卖铸造门面
type Facade struct {
	store      *state.Store
	auction    *auction.Engine
	settlement *settlement.Service
	tracker    *invocations.Tracker
	dispatcher minterfilter.Dispatcher
	clock      infraClock.Clock
	bus        event.Bus
	logger     log.Logger

	// 所有写状态的入口共用一把闩锁，见包注释
	stateLatch entryLatch
}

var _ minting.Minter = (*Facade)(nil)

// New 创建铸造门面
func New(
	store *state.Store,
	auctionEngine *auction.Engine,
	settlementService *settlement.Service,
	tracker *invocations.Tracker,
	dispatcher minterfilter.Dispatcher,
	clock infraClock.Clock,
	bus event.Bus,
	logger log.Logger,
) *Facade {
	return &Facade{
		store:      store,
		auction:    auctionEngine,
		settlement: settlementService,
		tracker:    tracker,
		dispatcher: dispatcher,
		clock:      clock,
		bus:        bus,
		logger:     logger,
	}
}

// ==================== 购买入口 ====================

// Purchase 以payer为接收人购买一枚令牌
func (f *Facade) Purchase(ctx context.Context, key types.ProjectKey, payer common.Address, payment *big.Int) (uint64, error) {
	return f.PurchaseTo(ctx, key, payer, payer, payment)
}

// PurchaseTo 购买一枚令牌并铸造给指定接收地址
func (f *Facade) PurchaseTo(ctx context.Context, key types.ProjectKey, payer, to common.Address, payment *big.Int) (uint64, error) {
	if err := f.stateLatch.acquire(); err != nil {
		return 0, err
	}
	defer f.stateLatch.release()

	tokenID, err := f.purchaseTo(ctx, key, payer, to, payment)
	if err != nil {
		purchaseFailuresTotal.WithLabelValues(failureClass(err)).Inc()
		return 0, err
	}
	return tokenID, nil
}

func (f *Facade) purchaseTo(ctx context.Context, key types.ProjectKey, payer, to common.Address, payment *big.Int) (uint64, error) {
	if to == (common.Address{}) {
		return 0, &types.ZeroAddressError{Param: "to"}
	}
	if payment == nil {
		payment = new(big.Int)
	}

	// 上限门检基于本地缓存，假阴性由下游分发者的权威校验兜底
	maxCfg, err := f.tracker.Gate(ctx, key)
	if err != nil {
		return 0, err
	}

	price, cfg, err := f.auction.GetPrice(ctx, key)
	if err != nil {
		return 0, err
	}
	if payment.Cmp(price) < 0 {
		return 0, &types.ValueError{Reason: types.ValueErrorPaymentBelowPrice, Detail: "付款低于当前拍卖价格"}
	}

	receipt, err := f.store.GetReceipt(ctx, key, payer)
	if err != nil {
		return 0, err
	}
	custody, err := f.store.GetCustody(ctx, key)
	if err != nil {
		return 0, err
	}

	tokenID, err := f.dispatcher.Mint(ctx, to, key, payer)
	if err != nil {
		return 0, &types.ExternalCallError{Op: "mint", Err: err}
	}

	// 价格随时间单调不增，最近成交价由构造即为周期内最低价
	cfg.LatestPurchasePrice = price
	cfg.NumSettleableInvocations++
	receipt.NetPosted = new(big.Int).Add(receipt.NetPosted, payment)
	receipt.NumPurchases++
	f.tracker.MarkMinted(maxCfg, tokenID)

	batch := f.store.NewBatch().
		PutAuctionConfig(key, cfg).
		PutReceipt(key, payer, receipt).
		PutCustody(key, new(big.Int).Add(custody, payment)).
		PutMaxInvocations(key, maxCfg)
	if err := f.store.Commit(ctx, batch); err != nil {
		// 令牌已铸出而托管簿记未落盘，必须人工对账
		f.logger.Errorf("购买簿记落盘失败: key=%s token=%d payer=%s err=%v", key, tokenID, payer.Hex(), err)
		return 0, err
	}

	purchasesTotal.Inc()
	observePayment(payment)
	f.bus.Publish(types.EventTokenPurchased, &types.TokenPurchasedEvent{
		Key:       key,
		TokenID:   tokenID,
		Purchaser: payer,
		Recipient: to,
		PricePaid: price,
		NetPosted: payment,
	})
	f.logger.Infof("购买完成: key=%s token=%d payer=%s price=%s payment=%s", key, tokenID, payer.Hex(), price, payment)
	return tokenID, nil
}

// ==================== 拍卖配置入口 ====================

// SetAuctionDetails 写入项目的拍卖参数（仅艺术家）
func (f *Facade) SetAuctionDetails(ctx context.Context, key types.ProjectKey, caller common.Address,
	timestampStart, halfLifeSeconds uint64, startPrice, basePrice *big.Int) error {
	if err := f.stateLatch.acquire(); err != nil {
		return err
	}
	defer f.stateLatch.release()

	if err := f.auction.SetAuctionDetails(ctx, key, caller, timestampStart, halfLifeSeconds, startPrice, basePrice); err != nil {
		return err
	}
	f.bus.Publish(types.EventAuctionConfigured, &types.AuctionConfiguredEvent{
		Key:            key,
		TimestampStart: timestampStart,
		HalfLife:       halfLifeSeconds,
		StartPrice:     startPrice,
		BasePrice:      basePrice,
	})
	return nil
}

// ResetAuctionDetails 重置拍卖配置（仅管理员）
func (f *Facade) ResetAuctionDetails(ctx context.Context, key types.ProjectKey, caller common.Address) error {
	if err := f.stateLatch.acquire(); err != nil {
		return err
	}
	defer f.stateLatch.release()

	if err := f.auction.ResetAuctionDetails(ctx, key, caller); err != nil {
		return err
	}
	f.bus.Publish(types.EventAuctionReset, key)
	return nil
}

// SetAllowablePriceDecayHalfLifeRangeSeconds 设置合法半衰期区间（仅管理员）
func (f *Facade) SetAllowablePriceDecayHalfLifeRangeSeconds(ctx context.Context, caller common.Address, minSeconds, maxSeconds uint64) error {
	if err := f.stateLatch.acquire(); err != nil {
		return err
	}
	defer f.stateLatch.release()

	return f.auction.SetAllowableHalfLifeRange(ctx, caller, minSeconds, maxSeconds)
}

// UpdateProjectCurrencyInfo 更新项目支付货币配置（仅艺术家）
func (f *Facade) UpdateProjectCurrencyInfo(ctx context.Context, key types.ProjectKey, caller common.Address,
	currencySymbol string, currencyAddress common.Address) error {
	if err := f.stateLatch.acquire(); err != nil {
		return err
	}
	defer f.stateLatch.release()

	return f.auction.UpdateProjectCurrencyInfo(ctx, key, caller, currencySymbol, currencyAddress)
}

// ==================== 铸造上限入口 ====================

// SyncProjectMaxInvocationsToCore 将权威上限同步进本地缓存
func (f *Facade) SyncProjectMaxInvocationsToCore(ctx context.Context, key types.ProjectKey) (*types.MaxInvocationsProjectConfig, error) {
	if err := f.stateLatch.acquire(); err != nil {
		return nil, err
	}
	defer f.stateLatch.release()

	return f.tracker.SyncFromAuthoritative(ctx, key)
}

// ManuallyLimitProjectMaxInvocations 艺术家收紧本地铸造上限
func (f *Facade) ManuallyLimitProjectMaxInvocations(ctx context.Context, key types.ProjectKey, caller common.Address, newMax uint64) error {
	if err := f.stateLatch.acquire(); err != nil {
		return err
	}
	defer f.stateLatch.release()

	return f.tracker.ManuallyLimit(ctx, key, caller, newMax)
}

// ==================== 结算入口 ====================

// WithdrawArtistAndAdminRevenues 提取本周期艺术家与平台收益
func (f *Facade) WithdrawArtistAndAdminRevenues(ctx context.Context, key types.ProjectKey, caller common.Address) (*big.Int, error) {
	if err := f.stateLatch.acquire(); err != nil {
		return nil, err
	}
	defer f.stateLatch.release()

	revenue, err := f.settlement.WithdrawArtistAndAdminRevenues(ctx, key, caller)
	if err != nil {
		return nil, err
	}

	revenuesWithdrawnTotal.Inc()
	cfg, cfgErr := f.store.GetAuctionConfig(ctx, key)
	if cfgErr == nil {
		f.bus.Publish(types.EventRevenuesWithdrawn, &types.RevenuesWithdrawnEvent{
			Key:          key,
			FinalPrice:   cfg.LatestPurchasePrice,
			TotalRevenue: revenue,
		})
	}
	return revenue, nil
}

// AdminEmergencyReduceSelloutPrice 管理员紧急下调清算价
func (f *Facade) AdminEmergencyReduceSelloutPrice(ctx context.Context, key types.ProjectKey, caller common.Address, newPrice *big.Int) error {
	if err := f.stateLatch.acquire(); err != nil {
		return err
	}
	defer f.stateLatch.release()

	if err := f.settlement.AdminEmergencyReduceSelloutPrice(ctx, key, caller, newPrice); err != nil {
		return err
	}
	f.bus.Publish(types.EventSelloutPriceReduced, key)
	return nil
}

// ReclaimProjectExcessSettlementFunds 取回调用者在单个项目的超额结算资金
func (f *Facade) ReclaimProjectExcessSettlementFunds(ctx context.Context, key types.ProjectKey, caller common.Address) (*big.Int, error) {
	return f.ReclaimProjectExcessSettlementFundsTo(ctx, caller, key, caller)
}

// ReclaimProjectExcessSettlementFundsTo 取回并支付到指定接收地址
func (f *Facade) ReclaimProjectExcessSettlementFundsTo(ctx context.Context, recipient common.Address, key types.ProjectKey, caller common.Address) (*big.Int, error) {
	if err := f.stateLatch.acquire(); err != nil {
		return nil, err
	}
	defer f.stateLatch.release()

	owed, err := f.settlement.ReclaimProjectExcessSettlementFundsTo(ctx, recipient, key, caller)
	if err != nil {
		return nil, err
	}
	f.publishReclaim(key, caller, recipient, owed)
	return owed, nil
}

// ReclaimProjectsExcessSettlementFunds 批量取回多个项目的超额结算资金
func (f *Facade) ReclaimProjectsExcessSettlementFunds(ctx context.Context, keys []types.ProjectKey, caller common.Address) (*big.Int, error) {
	return f.ReclaimProjectsExcessSettlementFundsTo(ctx, caller, keys, caller)
}

// ReclaimProjectsExcessSettlementFundsTo 批量取回并支付到指定接收地址
func (f *Facade) ReclaimProjectsExcessSettlementFundsTo(ctx context.Context, recipient common.Address, keys []types.ProjectKey, caller common.Address) (*big.Int, error) {
	if err := f.stateLatch.acquire(); err != nil {
		return nil, err
	}
	defer f.stateLatch.release()

	total, err := f.settlement.ReclaimProjectsExcessSettlementFundsTo(ctx, recipient, keys, caller)
	if err != nil {
		return nil, err
	}
	// 批量形态只发布一次聚合事件，以首个项目定位
	if len(keys) > 0 {
		f.publishReclaim(keys[0], caller, recipient, total)
	}
	return total, nil
}

func (f *Facade) publishReclaim(key types.ProjectKey, purchaser, recipient common.Address, amount *big.Int) {
	if amount.Sign() == 0 {
		return
	}
	reclaimsTotal.Inc()
	f.bus.Publish(types.EventExcessReclaimed, &types.ExcessReclaimedEvent{
		Key:       key,
		Purchaser: purchaser,
		Recipient: recipient,
		Amount:    amount,
	})
}

// ==================== 只读视图 ====================

// GetPriceInfo 查询当前价格与支付货币信息
//
// 拍卖已配置但未开始时返回起拍价；未配置时IsConfigured为false
// 且价格为零。货币信息未配置时符号为哨兵值UNCONFIG。
func (f *Facade) GetPriceInfo(ctx context.Context, key types.ProjectKey) (*types.PriceInfo, error) {
	cfg, err := f.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	splitCfg, err := f.store.GetSplitConfig(ctx, key)
	if err != nil {
		return nil, err
	}

	info := &types.PriceInfo{
		IsConfigured:    cfg.Configured(),
		TokenPrice:      new(big.Int),
		CurrencySymbol:  splitCfg.Symbol(),
		CurrencyAddress: splitCfg.CurrencyAddress,
	}
	if !info.IsConfigured {
		return info, nil
	}

	now := uint64(f.clock.Unix())
	if now < cfg.TimestampStart {
		info.TokenPrice = new(big.Int).Set(cfg.StartPrice)
		return info, nil
	}
	price, err := auction.PriceAt(key, cfg, now)
	if err != nil {
		return nil, err
	}
	info.TokenPrice = price
	return info, nil
}

// ProjectAuctionParameters 查询拍卖参数
func (f *Facade) ProjectAuctionParameters(ctx context.Context, key types.ProjectKey) (*types.AuctionParameters, error) {
	cfg, err := f.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	return &types.AuctionParameters{
		TimestampStart:            cfg.TimestampStart,
		PriceDecayHalfLifeSeconds: cfg.PriceDecayHalfLifeSeconds,
		StartPrice:                cfg.StartPrice,
		BasePrice:                 cfg.BasePrice,
	}, nil
}

// GetProjectExcessSettlementFunds 查询地址在项目内当前可取回的超额结算资金
func (f *Facade) GetProjectExcessSettlementFunds(ctx context.Context, key types.ProjectKey, purchaser common.Address) (*big.Int, error) {
	return f.settlement.ExcessSettlementFunds(ctx, key, purchaser)
}

// GetNumSettleableInvocations 查询项目当前可结算铸造次数
func (f *Facade) GetNumSettleableInvocations(ctx context.Context, key types.ProjectKey) (uint64, error) {
	cfg, err := f.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return 0, err
	}
	return cfg.NumSettleableInvocations, nil
}

// GetProjectLatestPurchasePrice 查询项目最近成交价
func (f *Facade) GetProjectLatestPurchasePrice(ctx context.Context, key types.ProjectKey) (*big.Int, error) {
	cfg, err := f.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return nil, err
	}
	return cfg.LatestPurchasePrice, nil
}

// failureClass 将错误映射为指标用的粗粒度类别
func failureClass(err error) string {
	switch {
	case types.IsAuthzError(err):
		return "authz"
	case types.IsZeroAddressError(err):
		return "zero_address"
	default:
		if _, ok := types.IsStateConflictError(err); ok {
			return "state_conflict"
		}
		if _, ok := types.IsValueError(err); ok {
			return "value"
		}
		if _, ok := types.IsExternalCallError(err); ok {
			return "external"
		}
		return "internal"
	}
}
