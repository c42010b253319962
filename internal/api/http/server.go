// Package http 提供铸造引擎的HTTP API服务
//
// 🎯 **核心职责**：
// 将铸造门面的购买、配置、结算入口与只读视图暴露为REST端点，
// 外加健康检查、Prometheus指标与开发网运维端点。
//
// ⚠️ **核心约束**：
// - API层不承载业务逻辑，所有校验与状态变更都在领域层完成
// - 领域错误经统一映射转换为HTTP状态码，映射是API契约的一部分
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/mintforge/v1/internal/api/http/handlers"
	"github.com/mintforge/v1/internal/api/http/middleware"
	apitypes "github.com/mintforge/v1/internal/api/http/types"
	"github.com/mintforge/v1/internal/core/collab"
	"github.com/mintforge/v1/internal/core/minting/payout"
	"github.com/mintforge/v1/pkg/interfaces/config"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/minting"
)

// Version 服务版本号，构建时通过ldflags注入
var Version = "dev"

// Server HTTP服务器
//
// 负责路由管理、服务启动和停止。
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     config.Provider
	logger     log.Logger

	minter minting.Minter
	payout *payout.Engine

	registry    *collab.LocalRegistry
	dispatcher  *collab.LocalDispatcher
	transferrer *collab.LedgerTransferrer
	resolver    *collab.MapResolver
}

// NewServer 创建HTTP服务器并注册生命周期钩子
func NewServer(
	lifecycle fx.Lifecycle,
	provider config.Provider,
	logger log.Logger,
	minter minting.Minter,
	payoutEngine *payout.Engine,
	registry *collab.LocalRegistry,
	dispatcher *collab.LocalDispatcher,
	transferrer *collab.LedgerTransferrer,
	resolver *collab.MapResolver,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		router:      router,
		config:      provider,
		logger:      logger,
		minter:      minter,
		payout:      payoutEngine,
		registry:    registry,
		dispatcher:  dispatcher,
		transferrer: transferrer,
		resolver:    resolver,
	}

	server.setupMiddleware()
	server.setupRoutes()

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})

	return server
}

// setupMiddleware 安装请求ID、访问日志与恢复中间件
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.NewRequestID().Middleware())
	s.router.Use(middleware.NewLogger(s.logger).Middleware())
	s.router.Use(gin.Recovery())
}

// setupRoutes 设置HTTP路由
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")

	auctionHandlers := handlers.NewAuctionHandlers(s.minter, s.logger)
	auctionHandlers.RegisterRoutes(v1)

	purchaseHandlers := handlers.NewPurchaseHandlers(s.minter, s.logger)
	purchaseHandlers.RegisterRoutes(v1)

	settlementHandlers := handlers.NewSettlementHandlers(s.minter, s.payout, s.logger)
	settlementHandlers.RegisterRoutes(v1)

	minterAddr := s.config.GetMinter().GetMinterAddress()
	adminHandlers := handlers.NewAdminHandlers(
		s.registry, s.dispatcher, s.transferrer, s.resolver, s.minter, minterAddr, s.logger)
	adminHandlers.RegisterRoutes(v1)
}

// handleHealth 健康检查端点
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, &apitypes.HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Start 启动HTTP服务
func (s *Server) Start() error {
	apiOptions := s.config.GetAPI()
	if apiOptions != nil && !apiOptions.Enabled {
		s.logger.Info("HTTP API在配置中被禁用，跳过启动")
		return nil
	}

	host := "0.0.0.0"
	port := 8545
	if apiOptions != nil {
		if apiOptions.Host != "" {
			host = apiOptions.Host
		}
		if apiOptions.Port != 0 {
			port = apiOptions.Port
		}
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Infof("HTTP服务器启动: %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("HTTP服务器运行失败: %v", err)
		}
	}()

	return nil
}

// Stop 停止HTTP服务
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("正在关闭HTTP服务器")

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}

	s.logger.Info("HTTP服务器已关闭")
	return nil
}
