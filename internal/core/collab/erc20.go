package collab

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/pkg/interfaces/token"
)

// MemoryERC20 进程内ERC-20代币
//
// 语义与标准合约一致：transferFrom受授权额度约束，失败以
// (false, nil) 返回而非错误，驱动拆分器的返回值检查路径。
type MemoryERC20 struct {
	mu         sync.RWMutex
	symbol     string
	balances   map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
}

// NewMemoryERC20 创建进程内代币
func NewMemoryERC20(symbol string) *MemoryERC20 {
	return &MemoryERC20{
		symbol:     symbol,
		balances:   make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
	}
}

var _ token.ERC20 = (*MemoryERC20)(nil)

// Mint 向地址发行代币（测试与演示用）
func (t *MemoryERC20) Mint(to common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[to] = new(big.Int).Add(t.balanceLocked(to), amount)
}

// Approve 设置owner对spender的授权额度
func (t *MemoryERC20) Approve(owner, spender common.Address, amount *big.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[common.Address]*big.Int)
	}
	t.allowances[owner][spender] = new(big.Int).Set(amount)
}

// BalanceOf 查询地址余额
func (t *MemoryERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.balanceLocked(owner)), nil
}

// Allowance 查询授权额度
func (t *MemoryERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return new(big.Int).Set(t.allowanceLocked(owner, spender)), nil
}

// TransferFrom 在授权额度内从from向to转账
func (t *MemoryERC20) TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (bool, error) {
	if amount == nil || amount.Sign() <= 0 {
		return true, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// 余额不足按合约语义返回false而非错误
	if t.balanceLocked(from).Cmp(amount) < 0 {
		return false, nil
	}

	t.balances[from] = new(big.Int).Sub(t.balanceLocked(from), amount)
	t.balances[to] = new(big.Int).Add(t.balanceLocked(to), amount)
	return true, nil
}

func (t *MemoryERC20) balanceLocked(addr common.Address) *big.Int {
	if b, ok := t.balances[addr]; ok {
		return b
	}
	return new(big.Int)
}

func (t *MemoryERC20) allowanceLocked(owner, spender common.Address) *big.Int {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return new(big.Int)
}

// MapResolver 按货币地址解析代币实例
type MapResolver struct {
	mu     sync.RWMutex
	tokens map[common.Address]token.ERC20
}

// NewMapResolver 创建代币解析器
func NewMapResolver() *MapResolver {
	return &MapResolver{tokens: make(map[common.Address]token.ERC20)}
}

var _ token.Resolver = (*MapResolver)(nil)

// Register 注册货币地址到代币实例的映射
func (r *MapResolver) Register(currency common.Address, erc20 token.ERC20) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[currency] = erc20
}

// Resolve 返回货币地址对应的代币端口
func (r *MapResolver) Resolve(currency common.Address) (token.ERC20, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	erc20, ok := r.tokens[currency]
	if !ok {
		return nil, fmt.Errorf("未注册的支付货币: %s", currency.Hex())
	}
	return erc20, nil
}
