// Package acl 提供管理员权限预言机的端口接口
//
// 🎯 **核心职责**：
// 抽象外部Admin-ACL合约，对管理员门控的入口做统一授权判定。
//
// 💡 **设计理念**：
// 铸造引擎自身不维护管理员名单，所有管理操作的授权交由外部
// 预言机判定，selector以操作名字符串表达（类型化环境下的
// 函数选择器等价物）。
package acl

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// AdminACL 管理员权限预言机端口
type AdminACL interface {
	// AllowedCall 判定caller是否被允许对target合约调用selector所指操作
	AllowedCall(ctx context.Context, caller common.Address, target common.Address, selector string) bool
}
