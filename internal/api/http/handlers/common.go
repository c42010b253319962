// Package handlers 实现HTTP API处理器
//
// common.go - 处理器共享的参数解析辅助
//
// 设计原则：
// 1. 最薄API层：只处理HTTP请求/响应，不包含业务逻辑
// 2. 统一错误格式：领域错误经 types.MapDomainError 映射后返回
// 3. 地址与金额一律以字符串承载，避免JSON数值精度问题
package handlers

import (
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	apitypes "github.com/mintforge/v1/internal/api/http/types"
	"github.com/mintforge/v1/pkg/types"
)

// zeroAddress 原生货币的地址表示
var zeroAddress common.Address

// projectKeyFromPath 从路径参数解析项目键
//
// 路由约定: /projects/:contract/:project
func projectKeyFromPath(c *gin.Context) (types.ProjectKey, error) {
	contract := c.Param("contract")
	if !common.IsHexAddress(contract) {
		return types.ProjectKey{}, fmt.Errorf("非法的核心合约地址: %s", contract)
	}
	projectID, err := strconv.ParseUint(c.Param("project"), 10, 64)
	if err != nil {
		return types.ProjectKey{}, fmt.Errorf("非法的项目ID: %s", c.Param("project"))
	}
	return types.NewProjectKey(common.HexToAddress(contract), projectID), nil
}

// parseAddress 解析hex地址参数
func parseAddress(raw, param string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("参数 %s 不是合法的hex地址: %s", param, raw)
	}
	return common.HexToAddress(raw), nil
}

// parseAmount 解析十进制wei金额
func parseAmount(raw, param string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		return nil, fmt.Errorf("参数 %s 不是合法的非负十进制金额: %s", param, raw)
	}
	return amount, nil
}

// badRequest 写入参数错误响应
func badRequest(c *gin.Context, err error) {
	resp := apitypes.NewErrorResponse(apitypes.ErrInvalidArgument, err.Error(), nil)
	c.JSON(http.StatusBadRequest, resp)
}

// domainError 写入领域错误响应
func domainError(c *gin.Context, err error) {
	status, resp := apitypes.MapDomainError(err)
	c.JSON(status, resp)
}
