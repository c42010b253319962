// Package handlers 实现HTTP API处理器
//
// admin.go - 开发网运维处理器
//
// 🚨 **重要**：本处理器操作进程内协作方套件（核心注册表、铸造
// 过滤器、原生账本、代币解析器），仅在开发网部署中有意义。
// 生产部署中协作方为链上合约，这些端点应当被禁用。
package handlers

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	apitypes "github.com/mintforge/v1/internal/api/http/types"
	"github.com/mintforge/v1/internal/core/collab"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/minting"
)

// AdminHandlers 开发网运维处理器
type AdminHandlers struct {
	registry    *collab.LocalRegistry
	dispatcher  *collab.LocalDispatcher
	transferrer *collab.LedgerTransferrer
	resolver    *collab.MapResolver
	minter      minting.Minter
	minterAddr  common.Address
	logger      log.Logger
}

// NewAdminHandlers 创建开发网运维处理器
func NewAdminHandlers(
	registry *collab.LocalRegistry,
	dispatcher *collab.LocalDispatcher,
	transferrer *collab.LedgerTransferrer,
	resolver *collab.MapResolver,
	minter minting.Minter,
	minterAddr common.Address,
	logger log.Logger,
) *AdminHandlers {
	return &AdminHandlers{
		registry:    registry,
		dispatcher:  dispatcher,
		transferrer: transferrer,
		resolver:    resolver,
		minter:      minter,
		minterAddr:  minterAddr,
		logger:      logger,
	}
}

// setCoreFormRequest 核心合约形态声明请求体
type setCoreFormRequest struct {
	CoreContract string `json:"coreContract" binding:"required"`
	IsEngine     bool   `json:"isEngine"`
}

// SetCoreForm 声明核心合约的形态（engine或flagship）
// POST /api/v1/admin/core
func (h *AdminHandlers) SetCoreForm(c *gin.Context) {
	var req setCoreFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	coreContract, err := parseAddress(req.CoreContract, "coreContract")
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.registry.SetCoreForm(coreContract, req.IsEngine); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{
		"coreContract": coreContract.Hex(),
		"isEngine":     req.IsEngine,
	}))
}

// registerProjectRequest 项目登记请求体
type registerProjectRequest struct {
	Artist             string `json:"artist" binding:"required"`
	MaxInvocations     uint64 `json:"maxInvocations"`
	ProviderAddress    string `json:"providerAddress"`
	ProviderBPS        uint64 `json:"providerBps"`
	PlatformAddress    string `json:"platformAddress"`
	PlatformBPS        uint64 `json:"platformBps"`
	AdditionalPayee    string `json:"additionalPayee"`
	AdditionalPayeeBPS uint64 `json:"additionalPayeeBps"`
}

// RegisterProject 登记项目并授权本铸造引擎
// POST /api/v1/admin/projects/:contract/:project
func (h *AdminHandlers) RegisterProject(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req registerProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	artist, err := parseAddress(req.Artist, "artist")
	if err != nil {
		badRequest(c, err)
		return
	}

	params := collab.ProjectParams{
		Artist:             artist,
		MaxInvocations:     req.MaxInvocations,
		ProviderBPS:        req.ProviderBPS,
		PlatformBPS:        req.PlatformBPS,
		AdditionalPayeeBPS: req.AdditionalPayeeBPS,
	}
	if req.ProviderAddress != "" {
		if params.ProviderAddress, err = parseAddress(req.ProviderAddress, "providerAddress"); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.PlatformAddress != "" {
		if params.PlatformAddress, err = parseAddress(req.PlatformAddress, "platformAddress"); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.AdditionalPayee != "" {
		if params.AdditionalPayee, err = parseAddress(req.AdditionalPayee, "additionalPayee"); err != nil {
			badRequest(c, err)
			return
		}
	}

	if err := h.registry.RegisterProject(key, params); err != nil {
		badRequest(c, err)
		return
	}

	// 登记即授权：开发网上项目默认绑定本引擎为铸造方
	h.dispatcher.ApproveMinter(key, h.minterAddr)

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{"projectKey": key.String()}))
}

// reduceMaxRequest 权威上限下调请求体
type reduceMaxRequest struct {
	NewMax uint64 `json:"newMax"`
}

// ReduceCoreMaxInvocations 下调权威注册表侧的铸造上限
// POST /api/v1/admin/projects/:contract/:project/max-invocations
func (h *AdminHandlers) ReduceCoreMaxInvocations(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req reduceMaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.registry.ReduceMaxInvocations(key, req.NewMax); err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{"newMax": req.NewMax}))
}

// SyncMaxInvocations 将权威上限同步进本地缓存
// POST /api/v1/projects/:contract/:project/max-invocations/sync
func (h *AdminHandlers) SyncMaxInvocations(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	cfg, err := h.minter.SyncProjectMaxInvocationsToCore(c.Request.Context(), key)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{
		"maxInvocations":    cfg.MaxInvocations,
		"maxHasBeenInvoked": cfg.MaxHasBeenInvoked,
	}))
}

// manualLimitRequest 本地上限收紧请求体
type manualLimitRequest struct {
	Caller string `json:"caller" binding:"required"`
	NewMax uint64 `json:"newMax"`
}

// ManuallyLimitMaxInvocations 艺术家收紧本地铸造上限
// PUT /api/v1/projects/:contract/:project/max-invocations
func (h *AdminHandlers) ManuallyLimitMaxInvocations(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req manualLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.minter.ManuallyLimitProjectMaxInvocations(c.Request.Context(), key, caller, req.NewMax); err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{"newMax": req.NewMax}))
}

// fundLedgerRequest 原生账本注资请求体
type fundLedgerRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  string `json:"amount" binding:"required"`
}

// FundLedger 向进程内原生账本注资（开发网专用）
// POST /api/v1/admin/ledger/fund
func (h *AdminHandlers) FundLedger(c *gin.Context) {
	var req fundLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	addr, err := parseAddress(req.Address, "address")
	if err != nil {
		badRequest(c, err)
		return
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		badRequest(c, err)
		return
	}

	h.transferrer.Fund(addr, amount)
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{
		"address": addr.Hex(),
		"balance": h.transferrer.BalanceOf(addr).String(),
	}))
}

// GetLedgerBalance 查询进程内原生账本余额
// GET /api/v1/admin/ledger/:address
func (h *AdminHandlers) GetLedgerBalance(c *gin.Context) {
	addr, err := parseAddress(c.Param("address"), "address")
	if err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AmountResponse{
		Amount: h.transferrer.BalanceOf(addr).String(),
	}))
}

// registerTokenRequest ERC-20代币登记请求体
type registerTokenRequest struct {
	Address string `json:"address" binding:"required"`
	Symbol  string `json:"symbol" binding:"required"`
}

// RegisterToken 登记ERC-20支付货币（开发网专用）
// POST /api/v1/admin/tokens
func (h *AdminHandlers) RegisterToken(c *gin.Context) {
	var req registerTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	addr, err := parseAddress(req.Address, "address")
	if err != nil {
		badRequest(c, err)
		return
	}

	h.resolver.Register(addr, collab.NewMemoryERC20(req.Symbol))
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{
		"address": addr.Hex(),
		"symbol":  req.Symbol,
	}))
}

// RegisterRoutes 注册开发网运维路由
func (h *AdminHandlers) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.POST("/core", h.SetCoreForm)
	admin.POST("/projects/:contract/:project", h.RegisterProject)
	admin.POST("/projects/:contract/:project/max-invocations", h.ReduceCoreMaxInvocations)
	admin.POST("/ledger/fund", h.FundLedger)
	admin.GET("/ledger/:address", h.GetLedgerBalance)
	admin.POST("/tokens", h.RegisterToken)

	projects := router.Group("/projects/:contract/:project")
	projects.POST("/max-invocations/sync", h.SyncMaxInvocations)
	projects.PUT("/max-invocations", h.ManuallyLimitMaxInvocations)
}
