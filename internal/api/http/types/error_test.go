package types

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domaintypes "github.com/mintforge/v1/pkg/types"
)

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"授权错误映射403",
			&domaintypes.AuthzError{Op: "setAuctionDetails"},
			http.StatusForbidden, ErrPermissionDenied,
		},
		{
			"零地址映射400",
			&domaintypes.ZeroAddressError{Param: "to"},
			http.StatusBadRequest, ErrZeroAddress,
		},
		{
			"参数错误映射400",
			&domaintypes.ValueError{Reason: domaintypes.ValueErrorPaymentBelowPrice},
			http.StatusBadRequest, ErrInvalidArgument,
		},
		{
			"状态冲突映射409并携带细分错误码",
			&domaintypes.StateConflictError{Reason: domaintypes.StateConflictAuctionNotYetSoldOut},
			http.StatusConflict, ErrAuctionNotYetSoldOut,
		},
		{
			"重入拒绝映射409",
			&domaintypes.StateConflictError{Reason: domaintypes.StateConflictReentrantCall},
			http.StatusConflict, ErrReentrantCall,
		},
		{
			"外部调用失败映射502",
			&domaintypes.ExternalCallError{Op: "mint", Err: errors.New("boom")},
			http.StatusBadGateway, ErrExternalCall,
		},
		{
			"拆分总额不符携带专用错误码",
			&domaintypes.ExternalCallError{Op: "split", SplitMismatch: true},
			http.StatusBadGateway, ErrSplitMismatch,
		},
		{
			"未分类错误映射500",
			errors.New("出乎意料"),
			http.StatusInternalServerError, ErrInternal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, resp := MapDomainError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}
