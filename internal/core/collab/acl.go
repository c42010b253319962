package collab

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/pkg/interfaces/acl"
)

// AllowlistACL 基于许可名单的Admin-ACL预言机
//
// 名单内的地址对任意target/selector放行。粒度比链上ACL合约粗，
// 单机部署够用；selector仍会进入判定日志便于审计。
type AllowlistACL struct {
	mu     sync.RWMutex
	admins map[common.Address]struct{}
}

// NewAllowlistACL 创建许可名单ACL
func NewAllowlistACL(admins []common.Address) *AllowlistACL {
	set := make(map[common.Address]struct{}, len(admins))
	for _, a := range admins {
		set[a] = struct{}{}
	}
	return &AllowlistACL{admins: set}
}

var _ acl.AdminACL = (*AllowlistACL)(nil)

// AllowedCall 判定caller是否在许可名单内
func (a *AllowlistACL) AllowedCall(ctx context.Context, caller common.Address, target common.Address, selector string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.admins[caller]
	return ok
}

// Grant 将地址加入许可名单
func (a *AllowlistACL) Grant(admin common.Address) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.admins[admin] = struct{}{}
}
