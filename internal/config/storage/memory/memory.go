// Package memory BigCache内存缓存配置
package memory

import (
	"time"

	"github.com/mintforge/v1/pkg/types"
)

// MemoryOptions 内存缓存配置选项
type MemoryOptions struct {
	LifeWindow  string `json:"life_window"`  // 条目生存窗口（time.Duration字符串）
	CleanWindow string `json:"clean_window"` // 清理窗口
	Shards      int    `json:"shards"`       // 分片数（2的幂）
}

// GetLifeWindow 返回解析后的生存窗口，解析失败回退10分钟
func (o *MemoryOptions) GetLifeWindow() time.Duration {
	d, err := time.ParseDuration(o.LifeWindow)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// GetCleanWindow 返回解析后的清理窗口，解析失败回退5分钟
func (o *MemoryOptions) GetCleanWindow() time.Duration {
	d, err := time.ParseDuration(o.CleanWindow)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// GetShards 返回分片数
func (o *MemoryOptions) GetShards() int { return o.Shards }

// New 创建内存缓存配置选项，合并默认值与用户配置
func New(userConfig *types.UserMemoryConfig) *MemoryOptions {
	options := &MemoryOptions{
		LifeWindow:  "10m",
		CleanWindow: "5m",
		Shards:      1024,
	}

	if userConfig == nil {
		return options
	}

	if userConfig.LifeWindow != nil {
		options.LifeWindow = *userConfig.LifeWindow
	}
	if userConfig.CleanWindow != nil {
		options.CleanWindow = *userConfig.CleanWindow
	}
	if userConfig.Shards != nil {
		options.Shards = *userConfig.Shards
	}

	return options
}
