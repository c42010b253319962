// Package minterfilter 提供铸造过滤器的端口接口
//
// 🎯 **核心职责**：
// 抽象外部铸造过滤器合约——唯一有权向核心注册表发起实际铸造的分发者。
// 过滤器维护"哪个铸造器被授权为哪个项目铸造"的绑定关系。
//
// ⚠️ **核心约束**：
// - 仅注册在案的铸造器可以为对应项目调用Mint
// - 返回的令牌ID低位（mod 1e6）编码项目内调用序号
//
// 📞 **调用方**：
// - 荷兰拍卖铸造门面（购买路径的实际铸造委托）
package minterfilter

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mintforge/v1/pkg/types"
)

// Dispatcher 铸造过滤器端口
type Dispatcher interface {
	// Mint 委托过滤器为项目铸造一枚令牌
	//
	// 参数：
	//   - to: 令牌接收地址
	//   - key: 项目键
	//   - sender: 原始购买发起者（过滤器用于授权判定）
	//
	// 返回：
	//   - tokenID: 铸造出的令牌ID
	//   - error: 未授权、已达上限或注册表拒绝时返回错误
	Mint(ctx context.Context, to common.Address, key types.ProjectKey, sender common.Address) (uint64, error)
}
