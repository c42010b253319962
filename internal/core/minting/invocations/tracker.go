// Package invocations 项目铸造上限的本地缓存跟踪
//
// 🎯 **调用上限跟踪器 (Max Invocations Tracker)**
//
// 权威的铸造计数与上限永远在核心注册表一侧，每次购买都去权威侧
// 查询代价高昂。本包维护一份本地缓存：
// - maxInvocations：缓存的上限
// - maxHasBeenInvoked：已达上限的短路标志
//
// ⚠️ **核心约束**
// - 权威上限在初次同步后只降不升，因此缓存的false可能滞后
//   （假阴性，安全：只是多做一次权威校验），但绝不产生假阳性
// - 收紧操作幂等且单调，绝不放松到权威值之上
package invocations

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/internal/core/minting/authz"
	"github.com/mintforge/v1/internal/core/minting/state"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/types"
)

// Tracker 调用上限跟踪器
type Tracker struct {
	store    *state.Store
	registry registry.CoreRegistry
	logger   log.Logger
}

// New 创建调用上限跟踪器
func New(store *state.Store, coreRegistry registry.CoreRegistry, logger log.Logger) *Tracker {
	return &Tracker{store: store, registry: coreRegistry, logger: logger}
}

// SyncFromAuthoritative 从核心注册表同步上限缓存
//
// 复制权威上限，并根据权威的当前铸造计数重算短路标志。
func (t *Tracker) SyncFromAuthoritative(ctx context.Context, key types.ProjectKey) (*types.MaxInvocationsProjectConfig, error) {
	data, err := t.registry.ProjectStateData(ctx, key)
	if err != nil {
		return nil, &types.ExternalCallError{Op: "projectStateData", Err: err}
	}

	cfg := &types.MaxInvocationsProjectConfig{
		MaxInvocations:    data.MaxInvocations,
		MaxHasBeenInvoked: data.Invocations >= data.MaxInvocations,
	}
	if err := t.store.PutMaxInvocations(ctx, key, cfg); err != nil {
		return nil, err
	}

	t.logger.Debugf("同步调用上限缓存: key=%s max=%d invoked=%v", key, cfg.MaxInvocations, cfg.MaxHasBeenInvoked)
	return cfg, nil
}

// Gate 购买前置检查：返回当前上限缓存，已达上限则拒绝
//
// 缓存不存在时先做一次权威同步。检查基于缓存而非权威值，
// 假阴性由下游铸造分发者的权威校验兜底。
func (t *Tracker) Gate(ctx context.Context, key types.ProjectKey) (*types.MaxInvocationsProjectConfig, error) {
	cached, err := t.store.HasMaxInvocations(ctx, key)
	if err != nil {
		return nil, err
	}

	var cfg *types.MaxInvocationsProjectConfig
	if !cached {
		if cfg, err = t.SyncFromAuthoritative(ctx, key); err != nil {
			return nil, err
		}
	} else if cfg, err = t.store.GetMaxInvocations(ctx, key); err != nil {
		return nil, err
	}

	if cfg.MaxHasBeenInvoked {
		return nil, &types.StateConflictError{Reason: types.StateConflictMaximumInvocationsReached, Key: key}
	}
	return cfg, nil
}

// ManuallyLimit 人为收紧项目的铸造上限（仅艺术家）
//
// newMax不得超过权威上限、不得低于权威的当前铸造计数；
// newMax==0 仅在尚无任何铸造时允许。
func (t *Tracker) ManuallyLimit(ctx context.Context, key types.ProjectKey, caller common.Address, newMax uint64) error {
	if err := authz.RequireArtist(ctx, t.registry, key, caller, "manuallyLimitProjectMaxInvocations"); err != nil {
		return err
	}

	data, err := t.registry.ProjectStateData(ctx, key)
	if err != nil {
		return &types.ExternalCallError{Op: "projectStateData", Err: err}
	}

	if newMax > data.MaxInvocations {
		return &types.ValueError{
			Reason: types.ValueErrorMaxInvocationsExceedsRegistry,
			Detail: "上限不得超过权威注册表的上限",
		}
	}
	if newMax < data.Invocations {
		return &types.ValueError{
			Reason: types.ValueErrorMaxInvocationsBelowInvocations,
			Detail: "上限不得低于已铸造次数",
		}
	}

	cfg := &types.MaxInvocationsProjectConfig{
		MaxInvocations:    newMax,
		MaxHasBeenInvoked: data.Invocations >= newMax,
	}
	return t.store.PutMaxInvocations(ctx, key, cfg)
}

// MarkMinted 根据新铸令牌的项目内序号更新短路标志
//
// 令牌ID低位编码项目内调用序号（从0开始），序号达到上限-1
// 说明这是本项目的最后一次铸造。返回标志是否被翻转。
func (t *Tracker) MarkMinted(cfg *types.MaxInvocationsProjectConfig, tokenID uint64) bool {
	if cfg.MaxHasBeenInvoked || cfg.MaxInvocations == 0 {
		return false
	}
	if types.TokenInvocation(tokenID) == cfg.MaxInvocations-1 {
		cfg.MaxHasBeenInvoked = true
		return true
	}
	return false
}
