// Package auction 指数衰减荷兰拍卖引擎
//
// 🎯 **荷兰拍卖引擎 (Dutch Auction Engine)**
//
// 每个项目的拍卖参数状态机与实时清算价计算，专注于：
// - 价格曲线：半衰期指数衰减 + 半衰期区间内线性插值，底价钳制
// - 配置不变量：起拍必须在未来、起拍价高于底价、半衰期落在许可区间
// - 配置冻结：拍卖一旦开始（now >= timestampStart），配置冻结直至reset
//
// ⚠️ **核心约束**
// - 价格计算使用精确整数算术，先乘后除，顺序不可调换
// - 存在未结算购买时，新拍卖的起拍价不得高于最近成交价
//   （防止艺术家在买家已确立更低清算水平后重新抬价）
// - reset只清零四个时间/价格字段，结算账本与可结算计数保留
package auction

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	minterconfig "github.com/mintforge/v1/internal/config/minter"
	"github.com/mintforge/v1/internal/core/minting/authz"
	"github.com/mintforge/v1/internal/core/minting/state"
	"github.com/mintforge/v1/pkg/interfaces/acl"
	infraClock "github.com/mintforge/v1/pkg/interfaces/infrastructure/clock"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/types"
)

// Engine 荷兰拍卖引擎
type Engine struct {
	store    *state.Store
	clock    infraClock.Clock
	registry registry.CoreRegistry
	acl      acl.AdminACL
	self     common.Address
	options  *minterconfig.MinterOptions
	logger   log.Logger
}

// New 创建荷兰拍卖引擎
func New(
	store *state.Store,
	clock infraClock.Clock,
	coreRegistry registry.CoreRegistry,
	adminACL acl.AdminACL,
	options *minterconfig.MinterOptions,
	logger log.Logger,
) *Engine {
	return &Engine{
		store:    store,
		clock:    clock,
		registry: coreRegistry,
		acl:      adminACL,
		self:     options.GetMinterAddress(),
		options:  options,
		logger:   logger,
	}
}

// PriceAt 计算拍卖在now时刻的曲线价格
//
// 曲线定义（精确整数算术）：
//
//	halvings  = (now - start) / halfLife
//	price     = startPrice >> halvings
//	remainder = (now - start) mod halfLife
//	price    -= (price/2) * remainder / halfLife
//	price     = max(price, basePrice)
//
// 先乘后除的顺序决定精度，必须逐位复现。
func PriceAt(key types.ProjectKey, cfg *types.AuctionConfig, now uint64) (*big.Int, error) {
	if !cfg.Configured() || cfg.PriceDecayHalfLifeSeconds == 0 {
		return nil, &types.StateConflictError{Reason: types.StateConflictAuctionNotConfigured, Key: key}
	}
	if now < cfg.TimestampStart {
		return nil, &types.StateConflictError{Reason: types.StateConflictAuctionNotStarted, Key: key}
	}

	elapsed := now - cfg.TimestampStart
	halfLife := cfg.PriceDecayHalfLifeSeconds
	halvings := elapsed / halfLife
	remainder := elapsed % halfLife

	// 衰减超过256个半衰期时价格必然归零，直接钳到底价
	if halvings > 256 {
		return new(big.Int).Set(cfg.BasePrice), nil
	}

	price := new(big.Int).Rsh(cfg.StartPrice, uint(halvings))
	nextHalfPrice := new(big.Int).Rsh(price, 1)
	interp := new(big.Int).Mul(nextHalfPrice, new(big.Int).SetUint64(remainder))
	interp.Div(interp, new(big.Int).SetUint64(halfLife))
	price.Sub(price, interp)

	if price.Cmp(cfg.BasePrice) < 0 {
		return new(big.Int).Set(cfg.BasePrice), nil
	}
	return price, nil
}

// GetPrice 读取项目配置并计算当前曲线价格
func (e *Engine) GetPrice(ctx context.Context, key types.ProjectKey) (*big.Int, *types.AuctionConfig, error) {
	cfg, err := e.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	price, err := PriceAt(key, cfg, uint64(e.clock.Unix()))
	if err != nil {
		return nil, nil, err
	}
	return price, cfg, nil
}

// SetAuctionDetails 写入项目的拍卖参数（仅艺术家）
func (e *Engine) SetAuctionDetails(ctx context.Context, key types.ProjectKey, caller common.Address,
	timestampStart, halfLifeSeconds uint64, startPrice, basePrice *big.Int) error {

	if err := authz.RequireArtist(ctx, e.registry, key, caller, "setAuctionDetails"); err != nil {
		return err
	}

	cfg, err := e.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return err
	}

	now := uint64(e.clock.Unix())

	// 拍卖开始后配置冻结，只能先reset
	if cfg.Configured() && now >= cfg.TimestampStart {
		return &types.StateConflictError{Reason: types.StateConflictConfigurationLocked, Key: key}
	}

	if timestampStart <= now {
		return &types.ValueError{Reason: types.ValueErrorStartTimeInPast, Detail: "起拍时间必须在未来"}
	}

	hlRange, err := e.HalfLifeRange(ctx)
	if err != nil {
		return err
	}
	if !hlRange.Contains(halfLifeSeconds) {
		return &types.ValueError{Reason: types.ValueErrorHalfLifeOutOfRange, Detail: "半衰期超出管理员许可区间"}
	}

	if basePrice == nil || basePrice.Sign() == 0 {
		return &types.ValueError{Reason: types.ValueErrorBasePriceZero, Detail: "底价必须大于零"}
	}
	if startPrice == nil || startPrice.Cmp(basePrice) <= 0 {
		return &types.ValueError{Reason: types.ValueErrorStartPriceNotAboveBase, Detail: "起拍价必须高于底价"}
	}

	// 存在未结算购买时，不允许以高于已确立清算水平的价格重开拍卖
	if cfg.NumSettleableInvocations > 0 && startPrice.Cmp(cfg.LatestPurchasePrice) > 0 {
		return &types.ValueError{
			Reason: types.ValueErrorStartPriceAboveLatestPurchase,
			Detail: "存在未结算购买时，起拍价不得高于最近成交价",
		}
	}

	cfg.TimestampStart = timestampStart
	cfg.PriceDecayHalfLifeSeconds = halfLifeSeconds
	cfg.StartPrice = new(big.Int).Set(startPrice)
	cfg.BasePrice = new(big.Int).Set(basePrice)
	// LatestPurchasePrice/NumSettleableInvocations/AuctionRevenuesCollected
	// 属于上一周期的结算簿记，保留至提取或reset

	if err := e.store.PutAuctionConfig(ctx, key, cfg); err != nil {
		return err
	}
	e.logger.Infof("拍卖参数已写入: key=%s start=%d halfLife=%ds startPrice=%s basePrice=%s",
		key, timestampStart, halfLifeSeconds, startPrice, basePrice)
	return nil
}

// ResetAuctionDetails 重置拍卖配置（仅管理员）
//
// 清零四个时间/价格字段。结算账本、可结算计数与最近成交价
// 保留——已购令牌的结算权利不因reset而丧失。
func (e *Engine) ResetAuctionDetails(ctx context.Context, key types.ProjectKey, caller common.Address) error {
	if err := authz.RequireAdmin(ctx, e.acl, caller, e.self, "resetAuctionDetails"); err != nil {
		return err
	}

	cfg, err := e.store.GetAuctionConfig(ctx, key)
	if err != nil {
		return err
	}
	if !cfg.Configured() {
		return &types.StateConflictError{Reason: types.StateConflictAuctionNotConfigured, Key: key}
	}
	if cfg.AuctionRevenuesCollected {
		return &types.StateConflictError{Reason: types.StateConflictRevenuesAlreadyCollected, Key: key}
	}

	cfg.TimestampStart = 0
	cfg.PriceDecayHalfLifeSeconds = 0
	cfg.StartPrice = new(big.Int)
	cfg.BasePrice = new(big.Int)

	if err := e.store.PutAuctionConfig(ctx, key, cfg); err != nil {
		return err
	}
	e.logger.Infof("拍卖配置已重置: key=%s", key)
	return nil
}

// SetAllowableHalfLifeRange 设置合法半衰期区间（仅管理员）
func (e *Engine) SetAllowableHalfLifeRange(ctx context.Context, caller common.Address, minSeconds, maxSeconds uint64) error {
	if err := authz.RequireAdmin(ctx, e.acl, caller, e.self, "setAllowablePriceDecayHalfLifeRangeSeconds"); err != nil {
		return err
	}
	if minSeconds == 0 || maxSeconds < minSeconds {
		return &types.ValueError{Reason: types.ValueErrorHalfLifeOutOfRange, Detail: "区间下界必须为正且不大于上界"}
	}
	return e.store.PutHalfLifeRange(ctx, types.HalfLifeRange{MinSeconds: minSeconds, MaxSeconds: maxSeconds})
}

// HalfLifeRange 返回当前生效的半衰期许可区间
// 管理员未设置过时采用配置文件的初始区间
func (e *Engine) HalfLifeRange(ctx context.Context) (types.HalfLifeRange, error) {
	stored, err := e.store.GetHalfLifeRange(ctx)
	if err != nil {
		return types.HalfLifeRange{}, err
	}
	if stored != nil {
		return *stored, nil
	}
	return types.HalfLifeRange{
		MinSeconds: e.options.MinHalfLifeSeconds,
		MaxSeconds: e.options.MaxHalfLifeSeconds,
	}, nil
}

// UpdateProjectCurrencyInfo 更新项目支付货币配置（仅艺术家）
//
// 零地址货币表示原生货币，符号固定为ETH；ERC20货币必须
// 同时给出非零地址与非ETH符号。
func (e *Engine) UpdateProjectCurrencyInfo(ctx context.Context, key types.ProjectKey, caller common.Address,
	currencySymbol string, currencyAddress common.Address) error {

	if err := authz.RequireArtist(ctx, e.registry, key, caller, "updateProjectCurrencyInfo"); err != nil {
		return err
	}

	native := currencyAddress == (common.Address{})
	if native && currencySymbol != "ETH" {
		return &types.ValueError{Reason: types.ValueErrorUnknown, Detail: "原生货币的符号必须为ETH"}
	}
	if !native && (currencySymbol == "" || currencySymbol == "ETH") {
		return &types.ValueError{Reason: types.ValueErrorUnknown, Detail: "ERC20货币必须给出非ETH的符号"}
	}

	cfg := &types.SplitFundsProjectConfig{
		CurrencyAddress: currencyAddress,
		CurrencySymbol:  currencySymbol,
	}
	if err := e.store.PutSplitConfig(ctx, key, cfg); err != nil {
		return err
	}
	e.logger.Infof("项目支付货币已更新: key=%s symbol=%s address=%s", key, currencySymbol, currencyAddress.Hex())
	return nil
}
