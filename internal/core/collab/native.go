package collab

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/pkg/interfaces/payment"
)

// LedgerTransferrer 以内部余额账本模拟的原生货币转账器
//
// 可将地址标记为拒收：对拒收地址的Transfer返回错误且无副作用，
// 用于驱动强制入账引擎的拉取式降级路径。
type LedgerTransferrer struct {
	mu       sync.RWMutex
	balances map[common.Address]*big.Int
	refusing map[common.Address]struct{}
}

// NewLedgerTransferrer 创建内部账本转账器
func NewLedgerTransferrer() *LedgerTransferrer {
	return &LedgerTransferrer{
		balances: make(map[common.Address]*big.Int),
		refusing: make(map[common.Address]struct{}),
	}
}

var _ payment.NativeTransferrer = (*LedgerTransferrer)(nil)

// Transfer 向to入账amount
func (t *LedgerTransferrer) Transfer(ctx context.Context, to common.Address, amount *big.Int, gasStipend uint64) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, refused := t.refusing[to]; refused {
		return fmt.Errorf("接收方 %s 拒绝入账", to.Hex())
	}

	balance, ok := t.balances[to]
	if !ok {
		balance = new(big.Int)
	}
	t.balances[to] = new(big.Int).Add(balance, amount)
	return nil
}

// BalanceOf 查询地址的账本余额
func (t *LedgerTransferrer) BalanceOf(addr common.Address) *big.Int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if balance, ok := t.balances[addr]; ok {
		return new(big.Int).Set(balance)
	}
	return new(big.Int)
}

// Fund 向地址注资（开发网与测试用）
func (t *LedgerTransferrer) Fund(addr common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	balance, ok := t.balances[addr]
	if !ok {
		balance = new(big.Int)
	}
	t.balances[addr] = new(big.Int).Add(balance, amount)
}

// SetRefusing 设置地址是否拒收
func (t *LedgerTransferrer) SetRefusing(addr common.Address, refusing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if refusing {
		t.refusing[addr] = struct{}{}
	} else {
		delete(t.refusing, addr)
	}
}
