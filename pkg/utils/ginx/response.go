package ginx

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Error string `json:"error"`
}

// SetResp 为指定的 gin.Context 设置成功响应数据（建议 200 <= statusCode < 300）
func SetResp(c *gin.Context, statusCode int, data any) {
	// 204 状态码特殊处理
	if statusCode == http.StatusNoContent {
		c.Status(statusCode)
		return
	}
	c.JSON(statusCode, data)
}

// SetErrResp 为指定的 gin.Context 设置错误响应数据，同时记录错误供访问日志使用
func SetErrResp(c *gin.Context, statusCode int, message string) {
	SetError(c, errors.New(message))
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Error: message})
}
