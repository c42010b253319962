// Package handlers 实现HTTP API处理器
//
// purchase.go - 令牌购买处理器
//
// 接口映射关系：
// - Purchase -> Minter.Purchase / Minter.PurchaseTo  // 购买并托管付款
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apitypes "github.com/mintforge/v1/internal/api/http/types"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/minting"
)

// PurchaseHandlers 令牌购买处理器
type PurchaseHandlers struct {
	minter minting.Minter
	logger log.Logger
}

// NewPurchaseHandlers 创建令牌购买处理器
func NewPurchaseHandlers(minter minting.Minter, logger log.Logger) *PurchaseHandlers {
	return &PurchaseHandlers{minter: minter, logger: logger}
}

// purchaseRequest 购买请求体
//
// payment为随购买托管的金额（wei，十进制字符串）；
// to为空时令牌铸造给payer本人。
type purchaseRequest struct {
	Payer   string `json:"payer" binding:"required"`
	To      string `json:"to"`
	Payment string `json:"payment" binding:"required"`
}

// Purchase 购买一枚令牌
// POST /api/v1/projects/:contract/:project/purchases
func (h *PurchaseHandlers) Purchase(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	payer, err := parseAddress(req.Payer, "payer")
	if err != nil {
		badRequest(c, err)
		return
	}
	payment, err := parseAmount(req.Payment, "payment")
	if err != nil {
		badRequest(c, err)
		return
	}

	recipient := payer
	if req.To != "" {
		if recipient, err = parseAddress(req.To, "to"); err != nil {
			badRequest(c, err)
			return
		}
	}

	tokenID, err := h.minter.PurchaseTo(c.Request.Context(), key, payer, recipient, payment)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.PurchaseResponse{
		TokenID:    tokenID,
		ProjectKey: key.String(),
		Recipient:  recipient.Hex(),
	}))
}

// RegisterRoutes 注册购买相关路由
func (h *PurchaseHandlers) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/projects/:contract/:project/purchases", h.Purchase)
}
