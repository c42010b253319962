package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	httpapi "github.com/mintforge/v1/internal/api/http"
	"github.com/mintforge/v1/internal/config"
	"github.com/mintforge/v1/internal/core/collab"
	"github.com/mintforge/v1/internal/core/infrastructure/clock"
	"github.com/mintforge/v1/internal/core/infrastructure/event"
	"github.com/mintforge/v1/internal/core/infrastructure/log"
	"github.com/mintforge/v1/internal/core/infrastructure/storage"
	"github.com/mintforge/v1/internal/core/minting"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(),  // 1. 配置（不依赖其他）
		log.Module(),     // 2. 日志（依赖配置）
		clock.Module(),   // 3. 时钟源（依赖配置和日志）
		event.Module(),   // 4. 事件总线（依赖日志）
		storage.Module(), // 5. 存储（依赖配置和日志）
	}
}

// SetupBusinessLayer 设置业务逻辑层模块
//
// 加载顺序遵循依赖关系：协作方套件先于铸造引擎。
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		collab.Module(),  // 1. 进程内协作方（核心注册表、过滤器、ACL、账本）
		minting.Module(), // 2. 铸造引擎（依赖协作方端口与存储）
	}
}

// SetupApplicationLayer 设置应用层模块
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	modules := []fx.Option{
		b.appModule(),
	}

	if b.opts.enableAPI {
		modules = append(modules, httpapi.Module())
	}

	return modules
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	if err := loadConfigFile(b.opts); err != nil {
		return err
	}

	var allModules []fx.Option
	allModules = append(allModules, b.SetupInfrastructureLayer()...)
	allModules = append(allModules, b.SetupBusinessLayer()...)
	allModules = append(allModules, b.SetupApplicationLayer()...)

	b.fxApp = fx.New(
		fx.Options(allModules...),
		fx.NopLogger,
	)
	return b.fxApp.Err()
}

// Start 启动应用程序
func (b *Bootstrap) Start(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// Stop 停止应用程序
func (b *Bootstrap) Stop(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// Run 启动应用并阻塞至收到SIGINT/SIGTERM
func (b *Bootstrap) Run() error {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.Start(startCtx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return b.Stop(stopCtx)
}

// BootstrapApp 执行完整的引导过程并返回应用实例
func BootstrapApp(opts ...Option) (App, error) {
	bootstrap := NewBootstrap(newOptions(opts...))
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, err
	}
	return bootstrap, nil
}
