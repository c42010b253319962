// Package handlers 实现HTTP API处理器
//
// auction.go - 拍卖配置与价格查询处理器
//
// 接口映射关系：
// - ConfigureAuction -> Minter.SetAuctionDetails            // 艺术家：写入拍卖参数
// - ResetAuction -> Minter.ResetAuctionDetails              // 管理员：重置拍卖
// - SetHalfLifeRange -> Minter.SetAllowable...RangeSeconds  // 管理员：半衰期区间
// - UpdateCurrency -> Minter.UpdateProjectCurrencyInfo      // 艺术家：支付货币
// - GetPriceInfo / GetAuctionParameters -> Views            // 只读查询
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apitypes "github.com/mintforge/v1/internal/api/http/types"
	"github.com/mintforge/v1/pkg/interfaces/infrastructure/log"
	"github.com/mintforge/v1/pkg/interfaces/minting"
)

// AuctionHandlers 拍卖配置处理器
type AuctionHandlers struct {
	minter minting.Minter
	logger log.Logger
}

// NewAuctionHandlers 创建拍卖配置处理器
func NewAuctionHandlers(minter minting.Minter, logger log.Logger) *AuctionHandlers {
	return &AuctionHandlers{minter: minter, logger: logger}
}

// configureAuctionRequest 拍卖配置请求体
type configureAuctionRequest struct {
	Caller                    string `json:"caller" binding:"required"`
	TimestampStart            uint64 `json:"timestampStart"`
	PriceDecayHalfLifeSeconds uint64 `json:"priceDecayHalfLifeSeconds"`
	StartPrice                string `json:"startPrice" binding:"required"`
	BasePrice                 string `json:"basePrice" binding:"required"`
}

// ConfigureAuction 写入项目的拍卖参数
// PUT /api/v1/projects/:contract/:project/auction
func (h *AuctionHandlers) ConfigureAuction(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req configureAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}
	startPrice, err := parseAmount(req.StartPrice, "startPrice")
	if err != nil {
		badRequest(c, err)
		return
	}
	basePrice, err := parseAmount(req.BasePrice, "basePrice")
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.minter.SetAuctionDetails(c.Request.Context(), key, caller,
		req.TimestampStart, req.PriceDecayHalfLifeSeconds, startPrice, basePrice); err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{"projectKey": key.String()}))
}

// callerRequest 仅携带调用者地址的请求体
type callerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// ResetAuction 重置项目的拍卖配置
// POST /api/v1/projects/:contract/:project/auction/reset
func (h *AuctionHandlers) ResetAuction(c *gin.Context) {
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

	if err := h.minter.ResetAuctionDetails(c.Request.Context(), key, caller); err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{"projectKey": key.String()}))
}

// halfLifeRangeRequest 半衰期区间请求体
type halfLifeRangeRequest struct {
	Caller     string `json:"caller" binding:"required"`
	MinSeconds uint64 `json:"minSeconds"`
	MaxSeconds uint64 `json:"maxSeconds"`
}

// SetHalfLifeRange 设置全局合法半衰期区间
// PUT /api/v1/minter/half-life-range
func (h *AuctionHandlers) SetHalfLifeRange(c *gin.Context) {
	var req halfLifeRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.minter.SetAllowablePriceDecayHalfLifeRangeSeconds(
		c.Request.Context(), caller, req.MinSeconds, req.MaxSeconds); err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{
		"minSeconds": req.MinSeconds,
		"maxSeconds": req.MaxSeconds,
	}))
}

// updateCurrencyRequest 支付货币更新请求体
type updateCurrencyRequest struct {
	Caller          string `json:"caller" binding:"required"`
	CurrencySymbol  string `json:"currencySymbol" binding:"required"`
	CurrencyAddress string `json:"currencyAddress"`
}

// UpdateCurrency 更新项目的支付货币配置
// PUT /api/v1/projects/:contract/:project/currency
func (h *AuctionHandlers) UpdateCurrency(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req updateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	caller, err := parseAddress(req.Caller, "caller")
	if err != nil {
		badRequest(c, err)
		return
	}

	// 原生货币以空地址表示
	currencyAddress := zeroAddress
	if req.CurrencyAddress != "" {
		if currencyAddress, err = parseAddress(req.CurrencyAddress, "currencyAddress"); err != nil {
			badRequest(c, err)
			return
		}
	}

	if err := h.minter.UpdateProjectCurrencyInfo(
		c.Request.Context(), key, caller, req.CurrencySymbol, currencyAddress); err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(gin.H{
		"currencySymbol":  req.CurrencySymbol,
		"currencyAddress": currencyAddress.Hex(),
	}))
}

// GetPriceInfo 查询项目当前价格与支付货币信息
// GET /api/v1/projects/:contract/:project/price
func (h *AuctionHandlers) GetPriceInfo(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	info, err := h.minter.GetPriceInfo(c.Request.Context(), key)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.PriceInfoResponse{
		IsConfigured:    info.IsConfigured,
		TokenPriceInWei: info.TokenPrice.String(),
		CurrencySymbol:  info.CurrencySymbol,
		CurrencyAddress: info.CurrencyAddress.Hex(),
	}))
}

// GetAuctionParameters 查询项目的拍卖参数
// GET /api/v1/projects/:contract/:project/auction
func (h *AuctionHandlers) GetAuctionParameters(c *gin.Context) {
	key, err := projectKeyFromPath(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	params, err := h.minter.ProjectAuctionParameters(c.Request.Context(), key)
	if err != nil {
		domainError(c, err)
		return
	}

	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(&apitypes.AuctionParametersResponse{
		TimestampStart:            params.TimestampStart,
		PriceDecayHalfLifeSeconds: params.PriceDecayHalfLifeSeconds,
		StartPrice:                params.StartPrice.String(),
		BasePrice:                 params.BasePrice.String(),
	}))
}

// RegisterRoutes 注册拍卖配置相关路由
func (h *AuctionHandlers) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects/:contract/:project")
	projects.PUT("/auction", h.ConfigureAuction)
	projects.GET("/auction", h.GetAuctionParameters)
	projects.POST("/auction/reset", h.ResetAuction)
	projects.PUT("/currency", h.UpdateCurrency)
	projects.GET("/price", h.GetPriceInfo)

	router.PUT("/minter/half-life-range", h.SetHalfLifeRange)
}
