// Package api HTTP API服务配置
package api

import "github.com/mintforge/v1/pkg/types"

// APIOptions API服务配置选项
type APIOptions struct {
	Enabled bool   `json:"enabled"` // 是否启用HTTP API
	Host    string `json:"host"`    // 监听地址
	Port    int    `json:"port"`    // 监听端口
}

// New 创建API配置选项，合并默认值与用户配置
func New(userConfig *types.UserAPIConfig) *APIOptions {
	options := &APIOptions{
		Enabled: true,
		Host:    "0.0.0.0",
		Port:    8545,
	}

	if userConfig == nil {
		return options
	}

	if userConfig.Enabled != nil {
		options.Enabled = *userConfig.Enabled
	}
	if userConfig.Host != nil {
		options.Host = *userConfig.Host
	}
	if userConfig.Port != nil {
		options.Port = *userConfig.Port
	}

	return options
}
