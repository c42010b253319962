// Package collab 外部协作方端口的进程内参考实现
//
// 🎯 **本地协作方套件 (Local Collaborator Suite)**
//
// 核心注册表、铸造过滤器、Admin-ACL、原生转账与ERC20在生产部署
// 中都是外部系统（链上合约），铸造引擎只依赖它们的端口。本包
// 提供一套进程内的参考实现，用于单机运行与端到端验证：
// - 项目经由管理API注册，收益拆分按基点配置
// - 铸造计数与令牌ID编码遵循注册表的权威语义
// - 原生货币以内部余额账本模拟，可配置拒收地址
//
// ⚠️ 生产部署应以RPC适配器替换本套件，端口不变。
package collab

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/types"
)

// 基点总数，拆分百分比的分母
const basisPoints = 10_000

// ProjectParams 注册项目时的参数
type ProjectParams struct {
	Artist             common.Address `json:"artist"`
	MaxInvocations     uint64         `json:"max_invocations"`
	ProviderAddress    common.Address `json:"provider_address"`
	ProviderBPS        uint64         `json:"provider_bps"`
	PlatformAddress    common.Address `json:"platform_address"`
	PlatformBPS        uint64         `json:"platform_bps"`
	AdditionalPayee    common.Address `json:"additional_payee"`
	AdditionalPayeeBPS uint64         `json:"additional_payee_bps"`
}

type projectRecord struct {
	params      ProjectParams
	invocations uint64
	paused      bool
	completedAt uint64
}

// LocalRegistry 进程内核心注册表
//
// engine形态携带平台提供方拆分项；flagship形态下注册时
// 给出的平台项会被拒绝。
type LocalRegistry struct {
	mu       sync.RWMutex
	projects map[types.ProjectKey]*projectRecord
	engine   map[common.Address]bool
	logger   log.Logger
}

// NewLocalRegistry 创建进程内核心注册表
func NewLocalRegistry(logger log.Logger) *LocalRegistry {
	return &LocalRegistry{
		projects: make(map[types.ProjectKey]*projectRecord),
		engine:   make(map[common.Address]bool),
		logger:   logger,
	}
}

var _ registry.CoreRegistry = (*LocalRegistry)(nil)

// SetCoreForm 声明核心合约的形态（engine=true携带平台拆分项）
// 形态一经声明不可变更，与链上部署的不可变性对齐。
func (r *LocalRegistry) SetCoreForm(coreContract common.Address, isEngine bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.engine[coreContract]; ok && existing != isEngine {
		return fmt.Errorf("核心合约 %s 的形态不可变更", coreContract.Hex())
	}
	r.engine[coreContract] = isEngine
	return nil
}

// RegisterProject 注册新项目
func (r *LocalRegistry) RegisterProject(key types.ProjectKey, params ProjectParams) error {
	if params.Artist == (common.Address{}) {
		return &types.ZeroAddressError{Param: "artist"}
	}
	if params.MaxInvocations == 0 || params.MaxInvocations > types.OneMillion {
		return fmt.Errorf("铸造上限必须落在 (0, %d] 区间", types.OneMillion)
	}
	totalBPS := params.ProviderBPS + params.PlatformBPS + params.AdditionalPayeeBPS
	if totalBPS > basisPoints {
		return fmt.Errorf("拆分基点之和 %d 超过 %d", totalBPS, basisPoints)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.engine[key.CoreContract] && (params.PlatformBPS != 0 || params.PlatformAddress != (common.Address{})) {
		return fmt.Errorf("flagship核心不支持平台拆分项")
	}
	if _, ok := r.projects[key]; ok {
		return fmt.Errorf("项目 %s 已注册", key)
	}
	r.projects[key] = &projectRecord{params: params}
	r.logger.Infof("项目已注册: key=%s artist=%s max=%d", key, params.Artist.Hex(), params.MaxInvocations)
	return nil
}

// ReduceMaxInvocations 下调项目的权威铸造上限（只降不升）
func (r *LocalRegistry) ReduceMaxInvocations(key types.ProjectKey, newMax uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.projects[key]
	if !ok {
		return fmt.Errorf("项目 %s 未注册", key)
	}
	if newMax > rec.params.MaxInvocations {
		return fmt.Errorf("权威铸造上限只降不升")
	}
	if newMax < rec.invocations {
		return fmt.Errorf("上限不得低于已铸造次数")
	}
	rec.params.MaxInvocations = newMax
	return nil
}

// GetPrimaryRevenueSplits 按基点配置拆分amount，余数归艺术家
// 各项之和恒等于amount，满足拆分器的防御校验
func (r *LocalRegistry) GetPrimaryRevenueSplits(ctx context.Context, key types.ProjectKey, amount *big.Int) (*types.RevenueSplits, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.projects[key]
	if !ok {
		return nil, fmt.Errorf("项目 %s 未注册", key)
	}
	if amount == nil {
		amount = new(big.Int)
	}

	p := rec.params
	providerAmt := bpsShare(amount, p.ProviderBPS)
	platformAmt := bpsShare(amount, p.PlatformBPS)
	payeeAmt := bpsShare(amount, p.AdditionalPayeeBPS)

	artistAmt := new(big.Int).Set(amount)
	artistAmt.Sub(artistAmt, providerAmt)
	artistAmt.Sub(artistAmt, platformAmt)
	artistAmt.Sub(artistAmt, payeeAmt)

	return &types.RevenueSplits{
		ProviderAmount:        providerAmt,
		ProviderAddress:       p.ProviderAddress,
		PlatformAmount:        platformAmt,
		PlatformAddress:       p.PlatformAddress,
		ArtistAmount:          artistAmt,
		ArtistAddress:         p.Artist,
		AdditionalPayeeAmount: payeeAmt,
		AdditionalPayee:       p.AdditionalPayee,
	}, nil
}

// RevenueSplitArity 返回核心形态对应的拆分元组项数
func (r *LocalRegistry) RevenueSplitArity(ctx context.Context, coreContract common.Address) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.engine[coreContract] {
		return registry.SplitArityEngine, nil
	}
	return registry.SplitArityFlagship, nil
}

// ProjectStateData 返回项目的权威状态
func (r *LocalRegistry) ProjectStateData(ctx context.Context, key types.ProjectKey) (*types.ProjectStateData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.projects[key]
	if !ok {
		return nil, fmt.Errorf("项目 %s 未注册", key)
	}
	return &types.ProjectStateData{
		Invocations:    rec.invocations,
		MaxInvocations: rec.params.MaxInvocations,
		Paused:         rec.paused,
		CompletedAt:    rec.completedAt,
	}, nil
}

// ProjectIDToArtistAddress 返回项目的艺术家地址
func (r *LocalRegistry) ProjectIDToArtistAddress(ctx context.Context, key types.ProjectKey) (common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.projects[key]
	if !ok {
		return common.Address{}, fmt.Errorf("项目 %s 未注册", key)
	}
	return rec.params.Artist, nil
}

// recordMint 铸造一枚令牌并返回令牌ID，供本地分发器调用
func (r *LocalRegistry) recordMint(key types.ProjectKey, completedAt uint64) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.projects[key]
	if !ok {
		return 0, fmt.Errorf("项目 %s 未注册", key)
	}
	if rec.paused {
		return 0, fmt.Errorf("项目 %s 已暂停", key)
	}
	if rec.invocations >= rec.params.MaxInvocations {
		return 0, fmt.Errorf("项目 %s 已达铸造上限", key)
	}

	tokenID := key.ProjectID*types.OneMillion + rec.invocations
	rec.invocations++
	if rec.invocations == rec.params.MaxInvocations {
		rec.completedAt = completedAt
	}
	return tokenID, nil
}

func bpsShare(amount *big.Int, bps uint64) *big.Int {
	share := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	return share.Div(share, big.NewInt(basisPoints))
}
