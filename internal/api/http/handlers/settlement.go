// Package handlers 实现HTTP API处理器
//
// settlement.go - 延迟结算处理器
//
// 接口映射关系：
// - WithdrawRevenues -> Minter.WithdrawArtistAndAdminRevenues   // 结算收益
// - ReduceSelloutPrice -> Minter.AdminEmergencyReduceSelloutPrice
// - Reclaim -> Minter.ReclaimProject(s)ExcessSettlementFunds(To)
// - 只读视图 -> Minter.Views
// - Credits -> payout.Engine 待领账本
package handlers

import (
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	apitypes "github.com/mintforge/v1/internal/api/http/types"
	"github.com/mintforge/v1/internal/core/minting/payout"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/minting"
	"github.com/mintforge/v1/pkg/types"
)

// SettlementHandlers 延迟结算处理器
type SettlementHandlers struct {
	minter minting.Minter
	payout *payout.Engine
	logger log.Logger
}

// NewSettlementHandlers 创建延迟结算处理器
func NewSettlementHandlers(minter minting.Minter, payoutEngine *payout.Engine, logger log.Logger) *SettlementHandlers {
	return &SettlementHandlers{minter: minter, payout: payoutEngine, logger: logger}
}

// WithdrawRevenues 提取本周期艺术家与平台收益
// POST /api/v1/projects/:contract/:project/revenues/withdraw
func (h *SettlementHandlers) WithdrawRevenues(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req callerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}

	total, err := h.minter.WithdrawArtistAndAdminRevenues(c.Request.Context(), key, caller)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AmountResponse{Amount: total.String()}))
}

// reduceSelloutPriceRequest 紧急下调清算价请求体
type reduceSelloutPriceRequest struct {
	Caller   string `json:"caller" binding:"required"`
	NewPrice string `json:"newPrice" binding:"required"`
}

// ReduceSelloutPrice 管理员紧急下调清算价
// POST /api/v1/projects/:contract/:project/sellout-price
func (h *SettlementHandlers) ReduceSelloutPrice(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req reduceSelloutPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}
	newPrice, err := parseAmount(req.NewPrice, "newPrice")
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.minter.AdminEmergencyReduceSelloutPrice(c.Request.Context(), key, caller, newPrice); err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{"newPrice": newPrice.String()}))
}

// reclaimRequest 超额结算资金取回请求体
type reclaimRequest struct {
	Caller    string `json:"caller" binding:"required"`
	Recipient string `json:"recipient"`
}

// Reclaim 取回调用者在单个项目的超额结算资金
// POST /api/v1/projects/:contract/:project/reclaim
func (h *SettlementHandlers) Reclaim(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req reclaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}

	var owed *big.Int
	if req.Recipient != "" {
		recipient, err := parseAddress(req.Recipient, "recipient")
		if err != nil {
			badRequest(c, err)
			return
		}
		owed, err = h.minter.ReclaimProjectExcessSettlementFundsTo(c.Request.Context(), recipient, key, caller)
		if err != nil {
			domainError(c, err)
			return
		}
	} else {
		owed, err = h.minter.ReclaimProjectExcessSettlementFunds(c.Request.Context(), key, caller)
		if err != nil {
			domainError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AmountResponse{Amount: owed.String()}))
}

// reclaimBatchRequest 批量取回请求体
type reclaimBatchRequest struct {
	Caller    string              `json:"caller" binding:"required"`
	Recipient string              `json:"recipient"`
	Projects  []reclaimProjectRef `json:"projects" binding:"required"`
}

// reclaimProjectRef 批量取回中的单个项目引用
type reclaimProjectRef struct {
	Contract string `json:"contract" binding:"required"`
	Project  uint64 `json:"project"`
}

// ReclaimBatch 批量取回多个项目的超额结算资金
// POST /api/v1/settlement/reclaim
func (h *SettlementHandlers) ReclaimBatch(c *gin.Context) {
	var req reclaimBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}

	keys := make([]types.ProjectKey, 0, len(req.Projects))
	for _, ref := range req.Projects {
		contract, err := parseAddress(ref.Contract, "contract")
		if err != nil {
			badRequest(c, err)
			return
		}
		keys = append(keys, types.NewProjectKey(contract, ref.Project))
	}

	var owed *big.Int
	if req.Recipient != "" {
		recipient, err := parseAddress(req.Recipient, "recipient")
		if err != nil {
			badRequest(c, err)
			return
		}
		owed, err = h.minter.ReclaimProjectsExcessSettlementFundsTo(c.Request.Context(), recipient, keys, caller)
		if err != nil {
			domainError(c, err)
			return
		}
	} else {
		owed, err = h.minter.ReclaimProjectsExcessSettlementFunds(c.Request.Context(), keys, caller)
		if err != nil {
			domainError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AmountResponse{Amount: owed.String()}))
}

// GetExcessSettlementFunds 查询地址在项目内当前可取回的超额结算资金
// GET /api/v1/projects/:contract/:project/excess-funds/:address
func (h *SettlementHandlers) GetExcessSettlementFunds(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	purchaser, err := parseAddress(c.Param("address"), "address")
	if err != nil {
		badRequest(c, err)
		return
	}

	owed, err := h.minter.GetProjectExcessSettlementFunds(c.Request.Context(), key, purchaser)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AmountResponse{Amount: owed.String()}))
}

// GetNumSettleableInvocations 查询项目当前可结算铸造次数
// GET /api/v1/projects/:contract/:project/settleable-invocations
func (h *SettlementHandlers) GetNumSettleableInvocations(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	num, err := h.minter.GetNumSettleableInvocations(c.Request.Context(), key)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{"numSettleableInvocations": num}))
}

// GetLatestPurchasePrice 查询项目最近成交价
// GET /api/v1/projects/:contract/:project/latest-purchase-price
func (h *SettlementHandlers) GetLatestPurchasePrice(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	price, err := h.minter.GetProjectLatestPurchasePrice(c.Request.Context(), key)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AmountResponse{Amount: price.String()}))
}

// GetPendingCredit 查询地址的待领退款余额
// GET /api/v1/credits/:address
func (h *SettlementHandlers) GetPendingCredit(c *gin.Context) {
	addr, err := parseAddress(c.Param("address"), "address")
	if err != nil {
		badRequest(c, err)
		return
	}

	credit, err := h.payout.PendingCredit(c.Request.Context(), addr)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AmountResponse{Amount: credit.String()}))
}

// WithdrawCredits 提取调用者的全部待领退款
// POST /api/v1/credits/withdraw
func (h *SettlementHandlers) WithdrawCredits(c *gin.Context) {
	var req callerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}

	amount, err := h.payout.WithdrawCredits(c.Request.Context(), caller)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AmountResponse{Amount: amount.String()}))
}

// RegisterRoutes 注册结算相关路由
func (h *SettlementHandlers) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects/:contract/:project")
	projects.POST("/revenues/withdraw", h.WithdrawRevenues)
	projects.POST("/sellout-price", h.ReduceSelloutPrice)
	projects.POST("/reclaim", h.Reclaim)
	projects.GET("/excess-funds/:address", h.GetExcessSettlementFunds)
	projects.GET("/settleable-invocations", h.GetNumSettleableInvocations)
	projects.GET("/latest-purchase-price", h.GetLatestPurchasePrice)

	router.POST("/settlement/reclaim", h.ReclaimBatch)
	router.GET("/credits/:address", h.GetPendingCredit)
	router.POST("/credits/withdraw", h.WithdrawCredits)
}
