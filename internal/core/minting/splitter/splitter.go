// Package splitter 一级销售收益的拆分与支付
//
// 🎯 **资金拆分器 (Funds Splitter)**
//
// 收益提取时点将托管总额按核心注册表的权威拆分元组支付给
// 渲染提供方/平台提供方/艺术家/附加收款人，专注于：
// - 形态判别：按拆分元组项数区分engine与flagship核心，判别结果缓存
// - 防御校验：拆分各项之和必须与应付总额精确相等
// - 双币支付：原生货币直接转账，ERC20经由transferFrom
//
// ⚠️ **核心约束**
// - 任一支付腿失败即返回分支可辨识的错误，调用方不得提交状态变更
// - flagship形态的平台两项必须为零值，否则视为外部合约异常
package splitter

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	minterconfig "github.com/mintforge/v1/internal/config/minter"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/storage"
	"github.com/mintforge/v1/pkg/interfaces/payment"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/interfaces/token"
	"github.com/mintforge/v1/pkg/types"
)

// 形态判别缓存的键前缀
const prefixEngineCache = "minting/engine/"

// Splitter 资金拆分器
type Splitter struct {
	registry   registry.CoreRegistry
	resolver   token.Resolver
	native     payment.NativeTransferrer
	cache      storage.KVStore
	custodian  common.Address
	gasStipend uint64
	logger     log.Logger
}

// New 创建资金拆分器
//
// cache建议注入内存缓存：判别结果对单个核心合约终身稳定，
// 缓存失效只会触发一次多余的探测，不影响正确性。
func New(
	coreRegistry registry.CoreRegistry,
	resolver token.Resolver,
	native payment.NativeTransferrer,
	cache storage.KVStore,
	options *minterconfig.MinterOptions,
	logger log.Logger,
) *Splitter {
	return &Splitter{
		registry:   coreRegistry,
		resolver:   resolver,
		native:     native,
		cache:      cache,
		custodian:  options.GetMinterAddress(),
		gasStipend: options.TransferGasStipend,
		logger:     logger,
	}
}

// IsEngine 判别核心合约是否为engine形态
//
// 首次调用探测注册表的拆分元组项数并缓存，后续直接命中缓存。
func (s *Splitter) IsEngine(ctx context.Context, coreContract common.Address) (bool, error) {
	cacheKey := []byte(prefixEngineCache + strings.ToLower(coreContract.Hex()))

	if raw, err := s.cache.Get(ctx, cacheKey); err == nil && len(raw) == 1 {
		return raw[0] == '1', nil
	}

	arity, err := s.registry.RevenueSplitArity(ctx, coreContract)
	if err != nil {
		return false, &types.ExternalCallError{Op: "revenueSplitArity", Err: err}
	}

	var isEngine bool
	switch arity {
	case registry.SplitArityEngine:
		isEngine = true
	case registry.SplitArityFlagship:
		isEngine = false
	default:
		return false, &types.ExternalCallError{
			Op:  "revenueSplitArity",
			Err: fmt.Errorf("核心合约返回了未知的拆分元组项数: %d", arity),
		}
	}

	flag := byte('0')
	if isEngine {
		flag = '1'
	}
	if err := s.cache.Set(ctx, cacheKey, []byte{flag}); err != nil {
		s.logger.Warnf("缓存形态判别结果失败: core=%s err=%v", coreContract.Hex(), err)
	}
	s.logger.Debugf("核心合约形态判别: core=%s engine=%v", coreContract.Hex(), isEngine)
	return isEngine, nil
}

// Split 将amount按项目的权威拆分元组支付给各收款人
//
// currency为零地址时走原生货币转账，否则经由ERC20从托管方
// transferFrom。各支付腿顺序执行，零金额的腿跳过。
func (s *Splitter) Split(ctx context.Context, key types.ProjectKey, amount *big.Int, currency common.Address) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}

	isEngine, err := s.IsEngine(ctx, key.CoreContract)
	if err != nil {
		return err
	}

	splits, err := s.registry.GetPrimaryRevenueSplits(ctx, key, amount)
	if err != nil {
		return &types.ExternalCallError{Op: "getPrimaryRevenueSplits", Err: err}
	}
	splits.Normalize()

	// 防御校验：外部合约的拆分结果必须精确覆盖应付总额
	if splits.Total().Cmp(amount) != 0 {
		return &types.ExternalCallError{Op: "split", SplitMismatch: true}
	}
	if !isEngine && (splits.PlatformAmount.Sign() != 0 || splits.PlatformAddress != (common.Address{})) {
		return &types.ExternalCallError{
			Op:  "split",
			Err: fmt.Errorf("flagship核心返回了非零的平台拆分项"),
		}
	}

	legs := []struct {
		leg    types.PaymentLeg
		param  string
		to     common.Address
		amount *big.Int
	}{
		{types.PaymentLegProvider, "provider_address", splits.ProviderAddress, splits.ProviderAmount},
		{types.PaymentLegPlatform, "platform_address", splits.PlatformAddress, splits.PlatformAmount},
		{types.PaymentLegArtist, "artist_address", splits.ArtistAddress, splits.ArtistAmount},
		{types.PaymentLegAdditionalPayee, "additional_payee", splits.AdditionalPayee, splits.AdditionalPayeeAmount},
	}

	for _, l := range legs {
		if l.amount.Sign() == 0 {
			continue
		}
		if l.to == (common.Address{}) {
			return &types.ZeroAddressError{Param: l.param}
		}
		if err := s.payLeg(ctx, l.to, l.amount, currency); err != nil {
			return &types.ExternalCallError{Op: "split", Leg: l.leg, Err: err}
		}
	}

	s.logger.Infof("收益拆分完成: key=%s amount=%s engine=%v", key, amount, isEngine)
	return nil
}

func (s *Splitter) payLeg(ctx context.Context, to common.Address, amount *big.Int, currency common.Address) error {
	if currency == (common.Address{}) {
		return s.native.Transfer(ctx, to, amount, s.gasStipend)
	}

	erc20, err := s.resolver.Resolve(currency)
	if err != nil {
		return err
	}
	ok, err := erc20.TransferFrom(ctx, s.custodian, to, amount)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ERC20转账返回失败标志")
	}
	return nil
}
