// Package types 提供MintForge系统共享的业务数据结构
//
// 🎯 **项目键与通用常量 (Project Key & Common Constants)**
//
// 本文件定义铸造平台的核心键类型，专注于：
// - 项目定位：以(核心合约地址, 项目ID)二元组唯一定位一个项目
// - 令牌序号：从令牌ID还原项目内调用序号的规则
// - 键编码：为持久化层提供稳定的字符串编码
//
// 🏗️ **设计原则**
// - 值语义：ProjectKey为纯值类型，可安全作为map键
// - 稳定编码：String()输出格式固定，作为存储键前缀使用
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// OneMillion 每个项目的令牌ID编码基数
//
// 核心注册表将令牌ID编码为 projectID*OneMillion + invocation序号，
// 因此 tokenID % OneMillion 即为项目内的调用序号（从0开始）。
const OneMillion = 1_000_000

// ProjectKey 项目键
//
// 以(核心合约地址, 项目ID)二元组唯一定位一个生成艺术项目。
// 同一个铸造引擎可以同时服务多个核心合约部署，所有按项目
// 维度持久化的状态均以该键为索引。
type ProjectKey struct {
	CoreContract common.Address `json:"core_contract"` // 核心注册表合约地址
	ProjectID    uint64         `json:"project_id"`    // 项目ID
}

// NewProjectKey 创建项目键
func NewProjectKey(coreContract common.Address, projectID uint64) ProjectKey {
	return ProjectKey{CoreContract: coreContract, ProjectID: projectID}
}

// String 返回稳定的字符串编码，格式: <地址小写hex>/<项目ID十进制>
// 该编码被持久化层用作存储键的一部分，不可变更。
func (k ProjectKey) String() string {
	return strings.ToLower(k.CoreContract.Hex()) + "/" + strconv.FormatUint(k.ProjectID, 10)
}

// ParseProjectKey 从字符串编码还原项目键
func ParseProjectKey(s string) (ProjectKey, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return ProjectKey{}, fmt.Errorf("非法的项目键编码: %s", s)
	}
	if !common.IsHexAddress(parts[0]) {
		return ProjectKey{}, fmt.Errorf("非法的核心合约地址: %s", parts[0])
	}
	projectID, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return ProjectKey{}, fmt.Errorf("非法的项目ID: %s", parts[1])
	}
	return ProjectKey{CoreContract: common.HexToAddress(parts[0]), ProjectID: projectID}, nil
}

// TokenInvocation 从令牌ID还原项目内调用序号（从0开始）
func TokenInvocation(tokenID uint64) uint64 {
	return tokenID % OneMillion
}
