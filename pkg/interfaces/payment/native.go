// Package payment 提供原生货币转账的端口接口
//
// 🎯 **核心职责**：
// 抽象原生货币（ETH等价物）的直接转账能力。
//
// 💡 **设计理念**：
// 接收方可能是会拒绝入账的合约账户。直接转账失败不视为
// 系统错误——强制入账原语（payout.Engine.ForceCredit）会
// 降级为内部拉取式账本记账，收款人事后自行提取。
//
// ⚠️ **核心约束**：
// - Transfer失败必须无副作用（要么全额到账要么分文未动）
// - gasStipend语义：限制接收方回调可消耗的执行预算，
//   防止恶意接收方拖垮付款路径
package payment

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// NativeTransferrer 原生货币转账端口
type NativeTransferrer interface {
	// Transfer 向to直接转账amount（最小货币单位）
	//
	// gasStipend限制接收方回调的执行预算。
	// 接收方拒绝入账时返回错误且保证无副作用。
	Transfer(ctx context.Context, to common.Address, amount *big.Int, gasStipend uint64) error
}
