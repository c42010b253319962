// Package state 提供铸造平台的共享状态存储
//
// 🎯 **共享状态表 (Shared Minting State)**
//
// 多个铸造相关服务（拍卖引擎、结算服务、资金拆分、调用上限跟踪）
// 共享同一份按项目键索引的持久化状态。本包将这份状态收敛为一个
// 显式的键值表模块，所有读写经由访问器方法完成，专注于：
// - 键编码：以 ProjectKey.String() 为稳定前缀的命名空间布局
// - 编解码：JSON序列化，金额字段反序列化后统一Normalize
// - 原子提交：跨表的多项变更通过Batch在单事务内落盘
//
// ⚠️ **核心约束**
// - 项目状态的写路径由门面的共享变更闩锁串行化，待领账本
//   由payout引擎自带的互斥保护，本包不做额外并发控制
// - 缺失的记录一律返回规范化的零值结构，不返回not-found错误
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/storage"
	"github.com/mintforge/v1/pkg/types"
)

// 存储键命名空间
// 编码一经采用不可变更，变更意味着在役数据失联。
const (
	prefixAuction  = "minting/auction/"  // + 项目键
	prefixReceipt  = "minting/receipt/"  // + 项目键 + "/" + 购买者地址
	prefixSplitCfg = "minting/splitcfg/" // + 项目键
	prefixMaxInv   = "minting/maxinv/"   // + 项目键
	prefixCustody  = "minting/custody/"  // + 项目键
	prefixCredit   = "minting/credit/"   // + 收款地址
	keyHalfLife    = "minting/halflife"  // 全局半衰期区间
)

// Store 铸造共享状态存储
type Store struct {
	kv     storage.KVStore
	logger log.Logger
}

// New 创建共享状态存储
func New(kv storage.KVStore, logger log.Logger) *Store {
	return &Store{kv: kv, logger: logger}
}

func auctionKey(key types.ProjectKey) string {
	return prefixAuction + key.String()
}

func receiptKey(key types.ProjectKey, purchaser common.Address) string {
	return prefixReceipt + key.String() + "/" + strings.ToLower(purchaser.Hex())
}

func splitCfgKey(key types.ProjectKey) string {
	return prefixSplitCfg + key.String()
}

func maxInvKey(key types.ProjectKey) string {
	return prefixMaxInv + key.String()
}

func custodyKey(key types.ProjectKey) string {
	return prefixCustody + key.String()
}

func creditKey(to common.Address) string {
	return prefixCredit + strings.ToLower(to.Hex())
}

// GetAuctionConfig 读取项目的拍卖配置
// 记录缺失时返回规范化的零值配置（Configured()==false）
func (s *Store) GetAuctionConfig(ctx context.Context, key types.ProjectKey) (*types.AuctionConfig, error) {
	cfg := &types.AuctionConfig{}
	if err := s.getJSON(ctx, auctionKey(key), cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// PutAuctionConfig 写入项目的拍卖配置
func (s *Store) PutAuctionConfig(ctx context.Context, key types.ProjectKey, cfg *types.AuctionConfig) error {
	return s.putJSON(ctx, auctionKey(key), cfg)
}

// GetReceipt 读取购买者在项目的结算凭据
// 记录缺失时返回规范化的零值凭据（NumPurchases==0）
func (s *Store) GetReceipt(ctx context.Context, key types.ProjectKey, purchaser common.Address) (*types.SettlementReceipt, error) {
	receipt := &types.SettlementReceipt{}
	if err := s.getJSON(ctx, receiptKey(key, purchaser), receipt); err != nil {
		return nil, err
	}
	receipt.Normalize()
	return receipt, nil
}

// GetSplitConfig 读取项目的支付货币配置
func (s *Store) GetSplitConfig(ctx context.Context, key types.ProjectKey) (*types.SplitFundsProjectConfig, error) {
	cfg := &types.SplitFundsProjectConfig{}
	if err := s.getJSON(ctx, splitCfgKey(key), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PutSplitConfig 写入项目的支付货币配置
func (s *Store) PutSplitConfig(ctx context.Context, key types.ProjectKey, cfg *types.SplitFundsProjectConfig) error {
	return s.putJSON(ctx, splitCfgKey(key), cfg)
}

// GetMaxInvocations 读取项目的调用上限缓存
func (s *Store) GetMaxInvocations(ctx context.Context, key types.ProjectKey) (*types.MaxInvocationsProjectConfig, error) {
	cfg := &types.MaxInvocationsProjectConfig{}
	if err := s.getJSON(ctx, maxInvKey(key), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PutMaxInvocations 写入项目的调用上限缓存
func (s *Store) PutMaxInvocations(ctx context.Context, key types.ProjectKey, cfg *types.MaxInvocationsProjectConfig) error {
	return s.putJSON(ctx, maxInvKey(key), cfg)
}

// HasMaxInvocations 判断项目是否已有调用上限缓存
func (s *Store) HasMaxInvocations(ctx context.Context, key types.ProjectKey) (bool, error) {
	return s.kv.Exists(ctx, []byte(maxInvKey(key)))
}

// GetHalfLifeRange 读取管理员设定的半衰期区间
// 未设定时返回(nil, nil)，调用方回退到配置文件的初始区间
func (s *Store) GetHalfLifeRange(ctx context.Context) (*types.HalfLifeRange, error) {
	raw, err := s.kv.Get(ctx, []byte(keyHalfLife))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	r := &types.HalfLifeRange{}
	if err := json.Unmarshal(raw, r); err != nil {
		return nil, fmt.Errorf("解码半衰期区间失败: %w", err)
	}
	return r, nil
}

// PutHalfLifeRange 写入管理员设定的半衰期区间
func (s *Store) PutHalfLifeRange(ctx context.Context, r types.HalfLifeRange) error {
	return s.putJSON(ctx, keyHalfLife, r)
}

// GetCustody 读取项目的托管资金总额
func (s *Store) GetCustody(ctx context.Context, key types.ProjectKey) (*big.Int, error) {
	return s.getAmount(ctx, custodyKey(key))
}

// GetPendingCredit 读取地址的待提取入账余额
func (s *Store) GetPendingCredit(ctx context.Context, to common.Address) (*big.Int, error) {
	return s.getAmount(ctx, creditKey(to))
}

// Batch 跨表原子变更集
//
// 购买路径的「拍卖簿记 + 结算凭据 + 托管入账」，结算路径的
// 「凭据核销 + 托管出账」都必须在同一事务内生效。
type Batch struct {
	puts    map[string][]byte
	deletes [][]byte
	err     error
}

// NewBatch 创建空的变更集
func (s *Store) NewBatch() *Batch {
	return &Batch{puts: make(map[string][]byte)}
}

// PutAuctionConfig 暂存拍卖配置写入
func (b *Batch) PutAuctionConfig(key types.ProjectKey, cfg *types.AuctionConfig) *Batch {
	return b.stageJSON(auctionKey(key), cfg)
}

// PutReceipt 暂存结算凭据写入
func (b *Batch) PutReceipt(key types.ProjectKey, purchaser common.Address, receipt *types.SettlementReceipt) *Batch {
	return b.stageJSON(receiptKey(key, purchaser), receipt)
}

// PutMaxInvocations 暂存调用上限缓存写入
func (b *Batch) PutMaxInvocations(key types.ProjectKey, cfg *types.MaxInvocationsProjectConfig) *Batch {
	return b.stageJSON(maxInvKey(key), cfg)
}

// PutCustody 暂存托管总额写入
func (b *Batch) PutCustody(key types.ProjectKey, amount *big.Int) *Batch {
	return b.stageAmount(custodyKey(key), amount)
}

// PutPendingCredit 暂存待提取入账余额写入
func (b *Batch) PutPendingCredit(to common.Address, amount *big.Int) *Batch {
	return b.stageAmount(creditKey(to), amount)
}

// DeletePendingCredit 暂存待提取入账余额删除
func (b *Batch) DeletePendingCredit(to common.Address) *Batch {
	b.deletes = append(b.deletes, []byte(creditKey(to)))
	return b
}

func (b *Batch) stageJSON(key string, v interface{}) *Batch {
	if b.err != nil {
		return b
	}
	raw, err := json.Marshal(v)
	if err != nil {
		b.err = fmt.Errorf("编码状态记录失败 key=%s: %w", key, err)
		return b
	}
	b.puts[key] = raw
	return b
}

func (b *Batch) stageAmount(key string, amount *big.Int) *Batch {
	if b.err != nil {
		return b
	}
	if amount == nil {
		amount = new(big.Int)
	}
	if amount.Sign() < 0 {
		b.err = fmt.Errorf("金额不允许为负 key=%s amount=%s", key, amount)
		return b
	}
	b.puts[key] = []byte(amount.String())
	return b
}

// Commit 将变更集原子落盘
func (s *Store) Commit(ctx context.Context, b *Batch) error {
	if b.err != nil {
		return b.err
	}
	if len(b.puts) == 0 && len(b.deletes) == 0 {
		return nil
	}
	return s.kv.WriteBatch(ctx, b.puts, b.deletes)
}

func (s *Store) getJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := s.kv.Get(ctx, []byte(key))
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("解码状态记录失败 key=%s: %w", key, err)
	}
	return nil
}

func (s *Store) putJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("编码状态记录失败 key=%s: %w", key, err)
	}
	return s.kv.Set(ctx, []byte(key), raw)
}

func (s *Store) getAmount(ctx context.Context, key string) (*big.Int, error) {
	raw, err := s.kv.Get(ctx, []byte(key))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return new(big.Int), nil
	}
	amount, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("解码金额失败 key=%s raw=%q", key, raw)
	}
	return amount, nil
}
