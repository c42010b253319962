// Package types provides HTTP response type definitions.
package types

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{Data: data}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// PriceInfoResponse 价格查询响应
type PriceInfoResponse struct {
	IsConfigured    bool   `json:"isConfigured"`
	TokenPriceInWei string `json:"tokenPriceInWei"`
	CurrencySymbol  string `json:"currencySymbol"`
	CurrencyAddress string `json:"currencyAddress"`
}

// AuctionParametersResponse 拍卖参数查询响应
type AuctionParametersResponse struct {
	TimestampStart            uint64 `json:"timestampStart"`
	PriceDecayHalfLifeSeconds uint64 `json:"priceDecayHalfLifeSeconds"`
	StartPrice                string `json:"startPrice"`
	BasePrice                 string `json:"basePrice"`
}

// PurchaseResponse 购买响应
type PurchaseResponse struct {
	TokenID    uint64 `json:"tokenId"`
	PricePaid  string `json:"pricePaid,omitempty"`
	ProjectKey string `json:"projectKey"`
	Recipient  string `json:"recipient"`
}

// AmountResponse 带金额的操作响应
type AmountResponse struct {
	Amount string `json:"amount"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}
