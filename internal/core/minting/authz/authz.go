// Package authz 铸造入口的调用者角色判定
//
// 艺术家身份以核心注册表的项目记录为准，管理员身份交由外部
// Admin-ACL预言机判定。判定失败统一返回types.AuthzError。
package authz

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/pkg/interfaces/acl"
	"github.com/mintforge/v1/pkg/interfaces/registry"
	"github.com/mintforge/v1/pkg/types"
)

// RequireArtist 要求caller是项目的艺术家
func RequireArtist(ctx context.Context, coreRegistry registry.CoreRegistry, key types.ProjectKey, caller common.Address, op string) error {
	artist, err := coreRegistry.ProjectIDToArtistAddress(ctx, key)
	if err != nil {
		return &types.ExternalCallError{Op: "projectIdToArtistAddress", Err: err}
	}
	if caller != artist {
		return &types.AuthzError{Caller: caller, Required: "artist", Op: op}
	}
	return nil
}

// RequireAdmin 要求caller通过Admin-ACL预言机对target/op的授权判定
func RequireAdmin(ctx context.Context, oracle acl.AdminACL, caller, target common.Address, op string) error {
	if !oracle.AllowedCall(ctx, caller, target, op) {
		return &types.AuthzError{Caller: caller, Required: "admin", Op: op}
	}
	return nil
}

// RequireArtistOrAdmin 要求caller是项目艺术家或通过管理员授权判定
func RequireArtistOrAdmin(ctx context.Context, coreRegistry registry.CoreRegistry, oracle acl.AdminACL,
	key types.ProjectKey, caller, target common.Address, op string) error {
	artist, err := coreRegistry.ProjectIDToArtistAddress(ctx, key)
	if err != nil {
		return &types.ExternalCallError{Op: "projectIdToArtistAddress", Err: err}
	}
	if caller == artist {
		return nil
	}
	if oracle.AllowedCall(ctx, caller, target, op) {
		return nil
	}
	return &types.AuthzError{Caller: caller, Required: "artist or admin", Op: op}
}
