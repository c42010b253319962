// Package types 定义铸造平台的错误类型
//
// 所有失败均为同步的、整体中止的错误：调用要么完整生效、要么毫无痕迹。
// 错误分类遵循固定的五元分类法，便于API层映射为稳定的错误码。
package types

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// ==================== 授权错误 ====================

// AuthzError 授权错误：调用者角色不满足入口要求
type AuthzError struct {
	Caller   common.Address // 实际调用者
	Required string         // 要求的角色描述（如 "artist"、"admin"）
	Op       string         // 被拒绝的操作名
}

// Error 实现 error 接口
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authz: %s 要求 %s 角色, 调用者 %s 不满足", e.Op, e.Required, e.Caller.Hex())
}

// IsAuthzError 检查错误是否为授权错误
func IsAuthzError(err error) bool {
	var target *AuthzError
	return errors.As(err, &target)
}

// ==================== 状态冲突错误 ====================

// StateConflictReason 状态冲突原因枚举
type StateConflictReason int32

const (
	StateConflictUnknown StateConflictReason = iota
	StateConflictAuctionNotConfigured                 // 拍卖未配置
	StateConflictAuctionNotStarted                    // 拍卖尚未开始
	StateConflictConfigurationLocked                  // 拍卖已开始，配置冻结（ConfigurationConflict）
	StateConflictRevenuesAlreadyCollected             // 收益已提取
	StateConflictAuctionNotYetSoldOut                 // 未售罄且未衰减至底价
	StateConflictMaximumInvocationsReached            // 已达铸造上限
	StateConflictNoPriorPurchases                     // 该地址无购买记录
	StateConflictReentrantCall                        // 重入调用被闩锁拒绝
)

// StateConflictError 状态冲突错误：操作对当前拍卖生命周期状态非法
type StateConflictError struct {
	Reason StateConflictReason
	Key    ProjectKey
}

// Error 实现 error 接口
func (e *StateConflictError) Error() string {
	switch e.Reason {
	case StateConflictAuctionNotConfigured:
		return fmt.Sprintf("state conflict: 项目 %s 拍卖未配置", e.Key)
	case StateConflictAuctionNotStarted:
		return fmt.Sprintf("state conflict: 项目 %s 拍卖尚未开始", e.Key)
	case StateConflictConfigurationLocked:
		return fmt.Sprintf("state conflict: 项目 %s 拍卖已开始，配置冻结直至reset", e.Key)
	case StateConflictRevenuesAlreadyCollected:
		return fmt.Sprintf("state conflict: 项目 %s 本周期收益已提取", e.Key)
	case StateConflictAuctionNotYetSoldOut:
		return fmt.Sprintf("state conflict: 项目 %s 未售罄且价格未达底价", e.Key)
	case StateConflictMaximumInvocationsReached:
		return fmt.Sprintf("state conflict: 项目 %s 已达铸造上限", e.Key)
	case StateConflictNoPriorPurchases:
		return fmt.Sprintf("state conflict: 项目 %s 无购买记录可结算", e.Key)
	case StateConflictReentrantCall:
		return "state conflict: 重入调用被拒绝"
	default:
		return fmt.Sprintf("state conflict: 项目 %s 未知状态冲突", e.Key)
	}
}

// IsStateConflictError 检查错误是否为状态冲突错误，并返回具体原因
func IsStateConflictError(err error) (*StateConflictError, bool) {
	var target *StateConflictError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// ==================== 参数错误 ====================

// ValueErrorReason 参数错误原因枚举
type ValueErrorReason int32

const (
	ValueErrorUnknown ValueErrorReason = iota
	ValueErrorHalfLifeOutOfRange             // 半衰期越界
	ValueErrorStartPriceNotAboveBase         // 起拍价未高于底价
	ValueErrorStartTimeInPast                // 起拍时间已过
	ValueErrorStartPriceAboveLatestPurchase  // 起拍价高于上周期最后成交价
	ValueErrorPaymentBelowPrice              // 付款低于当前价格
	ValueErrorPriceAboveLatestPurchase       // 新价格高于最近成交价
	ValueErrorPriceBelowBase                 // 新价格低于底价
	ValueErrorMaxInvocationsExceedsRegistry  // 上限超过权威注册表
	ValueErrorMaxInvocationsBelowInvocations // 上限低于当前已铸造次数
	ValueErrorNoPurchasesToAdjust            // 无成交价可调整
	ValueErrorBasePriceZero                  // 底价为零
	ValueErrorDuplicateProjectKey            // 批量操作中项目重复
)

// ValueError 参数错误：入参对业务规则非法
type ValueError struct {
	Reason ValueErrorReason
	Detail string
}

// Error 实现 error 接口
func (e *ValueError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("value error(%d): %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("value error(%d)", e.Reason)
}

// IsValueError 检查错误是否为参数错误
func IsValueError(err error) (*ValueError, bool) {
	var target *ValueError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// ==================== 外部调用错误 ====================

// PaymentLeg 支付分支枚举，用于区分资金拆分中哪一条腿失败
type PaymentLeg int32

const (
	PaymentLegNone PaymentLeg = iota
	PaymentLegProvider
	PaymentLegPlatform
	PaymentLegArtist
	PaymentLegAdditionalPayee
)

// legName 支付分支名称
func (l PaymentLeg) legName() string {
	switch l {
	case PaymentLegProvider:
		return "provider"
	case PaymentLegPlatform:
		return "platform"
	case PaymentLegArtist:
		return "artist"
	case PaymentLegAdditionalPayee:
		return "additional payee"
	default:
		return "none"
	}
}

// ExternalCallError 外部协作方调用失败（铸造分发、支付腿、注册表形态异常等）
type ExternalCallError struct {
	Op            string     // 失败的外部操作
	Leg           PaymentLeg // 支付分支（仅支付失败时非零）
	SplitMismatch bool       // 收益拆分总额校验失败
	Err           error      // 底层错误
}

// Error 实现 error 接口
func (e *ExternalCallError) Error() string {
	if e.SplitMismatch {
		return fmt.Sprintf("external call: %s 收益拆分总额与应付金额不一致", e.Op)
	}
	if e.Leg != PaymentLegNone {
		return fmt.Sprintf("external call: %s %s 支付腿失败: %v", e.Op, e.Leg.legName(), e.Err)
	}
	return fmt.Sprintf("external call: %s 失败: %v", e.Op, e.Err)
}

// Unwrap 支持 errors.Is/As 链式匹配
func (e *ExternalCallError) Unwrap() error { return e.Err }

// IsExternalCallError 检查错误是否为外部调用错误
func IsExternalCallError(err error) (*ExternalCallError, bool) {
	var target *ExternalCallError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// ==================== 零地址错误 ====================

// ZeroAddressError 零地址错误：禁止向零地址付款或以零地址作为关键参数
type ZeroAddressError struct {
	Param string // 出错的参数名
}

// Error 实现 error 接口
func (e *ZeroAddressError) Error() string {
	return fmt.Sprintf("zero address: 参数 %s 不允许为零地址", e.Param)
}

// IsZeroAddressError 检查错误是否为零地址错误
func IsZeroAddressError(err error) bool {
	var target *ZeroAddressError
	return errors.As(err, &target)
}
