// Package minter 铸造引擎配置
package minter

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/mintforge/v1/pkg/types"
)

// MinterOptions 铸造引擎配置选项
//
// 半衰期区间是管理员可在运行时调整的参数，这里给出的是
// 引擎启动时的初始值；运行时调整通过
// SetAllowablePriceDecayHalfLifeRangeSeconds 持久化。
type MinterOptions struct {
	// MinHalfLifeSeconds 允许的最小价格半衰期（秒）
	MinHalfLifeSeconds uint64 `json:"min_half_life_seconds"`

	// MaxHalfLifeSeconds 允许的最大价格半衰期（秒）
	MaxHalfLifeSeconds uint64 `json:"max_half_life_seconds"`

	// TransferGasStipend 原生转账给接收方回调的执行预算
	TransferGasStipend uint64 `json:"transfer_gas_stipend"`

	// MinterAddress 铸造引擎自身地址（hex编码）
	// 作为Admin-ACL判定的target，也是ERC20支付腿的托管方地址。
	MinterAddress string `json:"minter_address"`

	// AdminAddresses 管理员地址清单（hex编码）
	// 本地ACL预言机的许可名单；生产部署应替换为外部预言机适配器。
	AdminAddresses []string `json:"admin_addresses"`
}

// GetAdminAddresses 返回解析后的管理员地址清单，非法项被静默丢弃
func (o *MinterOptions) GetAdminAddresses() []common.Address {
	admins := make([]common.Address, 0, len(o.AdminAddresses))
	for _, raw := range o.AdminAddresses {
		if common.IsHexAddress(raw) {
			admins = append(admins, common.HexToAddress(raw))
		}
	}
	return admins
}

// GetMinterAddress 返回解析后的引擎自身地址
func (o *MinterOptions) GetMinterAddress() common.Address {
	if !common.IsHexAddress(o.MinterAddress) {
		return common.Address{}
	}
	return common.HexToAddress(o.MinterAddress)
}

// New 创建铸造引擎配置选项，合并默认值与用户配置
func New(userConfig *types.UserMinterConfig) *MinterOptions {
	options := &MinterOptions{
		MinHalfLifeSeconds: 45,
		MaxHalfLifeSeconds: 3600,
		TransferGasStipend: 2300,
	}

	if userConfig == nil {
		return options
	}

	if userConfig.MinHalfLifeSeconds != nil {
		options.MinHalfLifeSeconds = *userConfig.MinHalfLifeSeconds
	}
	if userConfig.MaxHalfLifeSeconds != nil {
		options.MaxHalfLifeSeconds = *userConfig.MaxHalfLifeSeconds
	}
	if userConfig.TransferGasStipend != nil {
		options.TransferGasStipend = *userConfig.TransferGasStipend
	}
	if userConfig.MinterAddress != nil {
		options.MinterAddress = *userConfig.MinterAddress
	}
	if len(userConfig.AdminAddresses) > 0 {
		options.AdminAddresses = append([]string(nil), userConfig.AdminAddresses...)
	}

	return options
}
