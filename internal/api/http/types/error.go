// Package types provides HTTP error type definitions.
package types

import (
	"net/http"

	domaintypes "github.com/mintforge/v1/pkg/types"
)

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code      string      `json:"code"`                // 错误码
	Message   string      `json:"message"`             // 错误消息
	Details   interface{} `json:"details,omitempty"`   // 详细信息
	RequestID string      `json:"requestId,omitempty"` // 请求ID
}

// 铸造平台错误码常量
const (
	// 通用错误码
	ErrInvalidArgument  = "INVALID_ARGUMENT"
	ErrPermissionDenied = "PERMISSION_DENIED"
	ErrZeroAddress      = "ZERO_ADDRESS"

	// 拍卖生命周期错误码
	ErrAuctionNotConfigured  = "AUCTION_NOT_CONFIGURED"
	ErrAuctionNotStarted     = "AUCTION_NOT_STARTED"
	ErrConfigurationLocked   = "CONFIGURATION_LOCKED"
	ErrRevenuesCollected     = "REVENUES_ALREADY_COLLECTED"
	ErrAuctionNotYetSoldOut  = "AUCTION_NOT_YET_SOLD_OUT"
	ErrMaxInvocationsReached = "MAXIMUM_INVOCATIONS_REACHED"
	ErrNoPriorPurchases      = "NO_PRIOR_PURCHASES"
	ErrReentrantCall         = "REENTRANT_CALL"
	ErrStateConflict         = "STATE_CONFLICT"

	// 外部协作方错误码
	ErrExternalCall  = "EXTERNAL_CALL_FAILED"
	ErrSplitMismatch = "REVENUE_SPLIT_MISMATCH"

	// 服务器错误码
	ErrInternal = "INTERNAL"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string, details interface{}) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// MapDomainError 将领域错误映射为HTTP状态码与错误响应
//
// 五元错误分类到状态码的映射是API契约的一部分：
// 授权→403、参数/零地址→400、状态冲突→409、外部调用→502、其余→500。
func MapDomainError(err error) (int, *ErrorResponse) {
	if domaintypes.IsAuthzError(err) {
		return http.StatusForbidden, NewErrorResponse(ErrPermissionDenied, err.Error(), nil)
	}
	if domaintypes.IsZeroAddressError(err) {
		return http.StatusBadRequest, NewErrorResponse(ErrZeroAddress, err.Error(), nil)
	}
	if _, ok := domaintypes.IsValueError(err); ok {
		return http.StatusBadRequest, NewErrorResponse(ErrInvalidArgument, err.Error(), nil)
	}
	if stateErr, ok := domaintypes.IsStateConflictError(err); ok {
		return http.StatusConflict, NewErrorResponse(stateConflictCode(stateErr.Reason), err.Error(), nil)
	}
	if extErr, ok := domaintypes.IsExternalCallError(err); ok {
		code := ErrExternalCall
		if extErr.SplitMismatch {
			code = ErrSplitMismatch
		}
		return http.StatusBadGateway, NewErrorResponse(code, err.Error(), nil)
	}
	return http.StatusInternalServerError, NewErrorResponse(ErrInternal, err.Error(), nil)
}

func stateConflictCode(reason domaintypes.StateConflictReason) string {
	switch reason {
	case domaintypes.StateConflictAuctionNotConfigured:
		return ErrAuctionNotConfigured
	case domaintypes.StateConflictAuctionNotStarted:
		return ErrAuctionNotStarted
	case domaintypes.StateConflictConfigurationLocked:
		return ErrConfigurationLocked
	case domaintypes.StateConflictRevenuesAlreadyCollected:
		return ErrRevenuesCollected
	case domaintypes.StateConflictAuctionNotYetSoldOut:
		return ErrAuctionNotYetSoldOut
	case domaintypes.StateConflictMaximumInvocationsReached:
		return ErrMaxInvocationsReached
	case domaintypes.StateConflictNoPriorPurchases:
		return ErrNoPriorPurchases
	case domaintypes.StateConflictReentrantCall:
		return ErrReentrantCall
	default:
		return ErrStateConflict
	}
}
