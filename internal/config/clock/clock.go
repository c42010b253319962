// Package clock 时钟源配置
package clock

import "github.com/mintforge/v1/pkg/types"

// 时间源类型
const (
	SourceSystem = "system"
	SourceNTP    = "ntp"
)

// ClockOptions 时钟源配置选项
type ClockOptions struct {
	Source    string `json:"source"`     // 时间源: system / ntp
	NTPServer string `json:"ntp_server"` // NTP服务器地址
}

// New 创建时钟配置选项，合并默认值与用户配置
func New(userConfig *types.UserClockConfig) *ClockOptions {
	options := &ClockOptions{
		Source:    SourceSystem,
		NTPServer: "pool.ntp.org",
	}

	if userConfig == nil {
		return options
	}

	if userConfig.Source != nil {
		options.Source = *userConfig.Source
	}
	if userConfig.NTPServer != nil {
		options.NTPServer = *userConfig.NTPServer
	}

	return options
}
