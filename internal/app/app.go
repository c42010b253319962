// Package app 应用组装与引导
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/mintforge/v1/pkg/interfaces/config"
	"github.com/mintforge/v1/pkg/types"
)

// defaultConfigPath 默认配置文件路径
const defaultConfigPath = "config.json"

// App 应用实例
type App interface {
	// Start 启动应用
	Start(ctx context.Context) error
	// Stop 停止应用
	Stop(ctx context.Context) error
	// Run 启动应用并阻塞至收到终止信号
	Run() error
}

// provideAppOptions 将引导期解析的选项接入依赖注入
func (b *Bootstrap) provideAppOptions() config.AppOptions {
	return b.opts
}

// loadConfigFile 从JSON配置文件加载用户配置
//
// 文件不存在不是错误：所有配置字段都有系统默认值，
// 仅当文件存在但无法解析时才失败。
func loadConfigFile(opts *options) error {
	configPath := opts.configFilePath
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && opts.configFilePath == "" {
			return nil
		}
		return fmt.Errorf("读取配置文件 %s 失败: %w", configPath, err)
	}

	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return fmt.Errorf("解析配置文件 %s 失败: %w", configPath, err)
	}

	// 显式配置文件优先于编码设置的选项
	opts.appConfig = &appConfig
	return nil
}

// AppModule 应用核心模块
func (b *Bootstrap) appModule() fx.Option {
	return fx.Provide(b.provideAppOptions)
}
