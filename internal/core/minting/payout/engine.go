// Package payout 保证入账的支付原语
//
// 🎯 **强制入账引擎 (Forced Credit Engine)**
//
// 接收方可能是会拒绝入账的合约账户。为了避免单个恶意或故障的
// 收款人阻塞共享账本上其他购买者的结算，退款路径使用本包的
// 强制入账原语：
// - 先尝试带执行预算上限的直接转账
// - 失败则降级为内部拉取式账本记账，收款人事后自行提取
//
// ⚠️ **核心约束**
// - ForceCredit对调用方而言必定成功（除非账本写入本身失败）
// - 调用方必须在调用前独立校验托管余额充足，本原语不做余额检查
package payout

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	minterconfig "github.com/mintforge/v1/internal/config/minter"
	"github.com/mintforge/v1/internal/core/minting/state"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/payment"
	"github.com/mintforge/v1/pkg/types"
)

// Engine 强制入账引擎
type Engine struct {
	store      *state.Store
	native     payment.NativeTransferrer
	gasStipend uint64
	logger     log.Logger

	// 账本读-改-写的互斥：入账来自结算路径，提取来自收款人自己，
	// 两者并发时任一方的余额更新都可能被覆盖
	creditMu sync.Mutex
}

// New 创建强制入账引擎
func New(store *state.Store, native payment.NativeTransferrer, options *minterconfig.MinterOptions, logger log.Logger) *Engine {
	return &Engine{
		store:      store,
		native:     native,
		gasStipend: options.TransferGasStipend,
		logger:     logger,
	}
}

// ForceCredit 向to强制入账amount
//
// 直接转账失败时记入拉取式账本，绝不让收款人的接收逻辑
// 阻塞调用方。零金额为空操作。
func (e *Engine) ForceCredit(ctx context.Context, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if to == (common.Address{}) {
		return &types.ZeroAddressError{Param: "to"}
	}

	transferErr := e.native.Transfer(ctx, to, amount, e.gasStipend)
	if transferErr == nil {
		return nil
	}
	e.logger.Warnf("直接转账被拒绝，降级为拉取式记账: to=%s amount=%s err=%v", to.Hex(), amount, transferErr)

	e.creditMu.Lock()
	defer e.creditMu.Unlock()

	credit, err := e.store.GetPendingCredit(ctx, to)
	if err != nil {
		return err
	}
	credit = new(big.Int).Add(credit, amount)

	batch := e.store.NewBatch().PutPendingCredit(to, credit)
	if err := e.store.Commit(ctx, batch); err != nil {
		return err
	}
	e.logger.Infof("拉取式入账完成: to=%s credited=%s balance=%s", to.Hex(), amount, credit)
	return nil
}

// WithdrawCredits 收款人提取自己的拉取式账本余额
//
// 余额为零时返回零金额，不是错误。提取转账不限制执行预算：
// 这是收款人自己发起的调用，拖垮自己不影响他人。
func (e *Engine) WithdrawCredits(ctx context.Context, caller common.Address) (*big.Int, error) {
	if caller == (common.Address{}) {
		return nil, &types.ZeroAddressError{Param: "caller"}
	}

	e.creditMu.Lock()
	defer e.creditMu.Unlock()

	credit, err := e.store.GetPendingCredit(ctx, caller)
	if err != nil {
		return nil, err
	}
	if credit.Sign() == 0 {
		return new(big.Int), nil
	}

	// 先核销后支付：支付失败则恢复余额，保证无重复提取窗口
	batch := e.store.NewBatch().DeletePendingCredit(caller)
	if err := e.store.Commit(ctx, batch); err != nil {
		return nil, err
	}

	if err := e.native.Transfer(ctx, caller, credit, 0); err != nil {
		restore := e.store.NewBatch().PutPendingCredit(caller, credit)
		if restoreErr := e.store.Commit(ctx, restore); restoreErr != nil {
			e.logger.Errorf("恢复拉取式账本余额失败: to=%s amount=%s err=%v", caller.Hex(), credit, restoreErr)
		}
		return nil, &types.ExternalCallError{Op: "withdrawCredits", Err: err}
	}

	e.logger.Infof("拉取式账本提取完成: to=%s amount=%s", caller.Hex(), credit)
	return credit, nil
}

// PendingCredit 查询地址的拉取式账本余额
func (e *Engine) PendingCredit(ctx context.Context, to common.Address) (*big.Int, error) {
	return e.store.GetPendingCredit(ctx, to)
}
