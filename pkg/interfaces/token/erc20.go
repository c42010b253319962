// Package token 提供ERC-20代币合约的端口接口
//
// 🎯 **核心职责**：
// 抽象作为备选支付货币的ERC-20代币合约。
//
// ⚠️ **核心约束**：
// - 所有转账必须检查返回值，不得依赖隐式revert语义
//   （部分代币实现失败时返回false而非revert）
package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ERC20 标准ERC-20代币端口
type ERC20 interface {
	// BalanceOf 查询地址余额
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)

	// Allowance 查询owner对spender的授权额度
	Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error)

	// TransferFrom 在授权额度内从from向to转账
	//
	// 返回代币合约的成功标志；调用方必须同时检查ok与err。
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) (ok bool, err error)
}

// Resolver 按货币合约地址解析ERC-20端口实例
type Resolver interface {
	// Resolve 返回指定货币地址的ERC20端口
	Resolve(currency common.Address) (ERC20, error)
}
