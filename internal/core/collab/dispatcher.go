package collab

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	infraClock "github.com/mintforge/v1/pkg/interfaces/infrastructure/clock"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/minterfilter"
	"github.com/mintforge/v1/pkg/types"
)

// LocalDispatcher 进程内铸造过滤器
//
// 维护「铸造器被授权为哪些项目铸造」的绑定关系，实际铸造
// 委托给本地注册表的权威计数。
type LocalDispatcher struct {
	mu       sync.RWMutex
	registry *LocalRegistry
	clock    infraClock.Clock
	self     common.Address
	approved map[types.ProjectKey]common.Address
	logger   log.Logger
}

// NewLocalDispatcher 创建进程内铸造过滤器
// self为本节点铸造引擎的身份地址
func NewLocalDispatcher(reg *LocalRegistry, clock infraClock.Clock, self common.Address, logger log.Logger) *LocalDispatcher {
	return &LocalDispatcher{
		registry: reg,
		clock:    clock,
		self:     self,
		approved: make(map[types.ProjectKey]common.Address),
		logger:   logger,
	}
}

var _ minterfilter.Dispatcher = (*LocalDispatcher)(nil)

// ApproveMinter 将minter绑定为项目的授权铸造器
func (d *LocalDispatcher) ApproveMinter(key types.ProjectKey, minter common.Address) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.approved[key] = minter
	d.logger.Infof("铸造器已绑定: key=%s minter=%s", key, minter.Hex())
}

// Mint 为项目铸造一枚令牌
//
// 未绑定铸造器的项目视为对任意调用放行（单机部署的默认形态）；
// 绑定后仅对应铸造器可铸。
func (d *LocalDispatcher) Mint(ctx context.Context, to common.Address, key types.ProjectKey, sender common.Address) (uint64, error) {
	if to == (common.Address{}) {
		return 0, &types.ZeroAddressError{Param: "to"}
	}

	d.mu.RLock()
	bound, hasBinding := d.approved[key]
	d.mu.RUnlock()
	if hasBinding && bound != d.self {
		return 0, fmt.Errorf("项目 %s 未授权本铸造器", key)
	}

	tokenID, err := d.registry.recordMint(key, uint64(d.clock.Unix()))
	if err != nil {
		return 0, err
	}
	d.logger.Debugf("令牌已铸造: key=%s token=%d to=%s", key, tokenID, to.Hex())
	return tokenID, nil
}
