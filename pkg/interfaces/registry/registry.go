// Package registry 提供核心令牌注册表的端口接口
//
// 🎯 **核心职责**：
// 抽象外部核心注册表合约（项目元数据、艺术家地址、权威铸造计数、
// 一级销售收益拆分）的只读查询能力。
//
// 💡 **设计理念**：
// 铸造引擎不拥有项目的权威状态，所有权威数据经由该端口获取。
// 符合六边形架构的"端口/适配器"模式：生产部署由RPC适配器实现，
// 单元测试由Mock实现。
//
// ⚠️ **核心约束**：
// - 权威铸造上限只降不升（本地缓存的假阴性因此是安全的）
// - 收益拆分元组的项数是engine/flagship形态的判别依据
//
// 📞 **调用方**：
// - 荷兰拍卖铸造门面（购买前置检查、艺术家鉴权）
// - 资金拆分器（收益分配）
// - 调用上限跟踪器（权威同步）
package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mintforge/v1/pkg/types"
)

// 收益拆分元组项数，engine形态比flagship多出平台提供方两项
const (
	// SplitArityFlagship flagship形态：provider/artist/additional payee 三组六项
	SplitArityFlagship = 6
	// SplitArityEngine engine形态：额外携带platform provider两项，共八项
	SplitArityEngine = 8
)

// CoreRegistry 核心注册表端口
type CoreRegistry interface {
	// GetPrimaryRevenueSplits 查询将amount按项目配置拆分后的收益元组
	//
	// 返回的各项金额之和必须等于amount；拆分器会对此做防御性校验。
	// flagship形态下Platform两项为零值。
	GetPrimaryRevenueSplits(ctx context.Context, key types.ProjectKey, amount *big.Int) (*types.RevenueSplits, error)

	// RevenueSplitArity 查询核心合约收益拆分元组的项数（能力协商）
	//
	// 返回 SplitArityFlagship 或 SplitArityEngine。
	// 结果对单个核心合约地址终身稳定，调用方可永久缓存。
	RevenueSplitArity(ctx context.Context, coreContract common.Address) (int, error)

	// ProjectStateData 查询项目的权威状态（当前铸造数、上限等）
	ProjectStateData(ctx context.Context, key types.ProjectKey) (*types.ProjectStateData, error)

	// ProjectIDToArtistAddress 查询项目的艺术家地址
	ProjectIDToArtistAddress(ctx context.Context, key types.ProjectKey) (common.Address, error)
}
