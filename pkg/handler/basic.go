package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/narasux/vidvote/pkg/middleware"
	"github.com/narasux/vidvote/pkg/utils/ginx"
	"github.com/narasux/vidvote/pkg/vote"
)

// Preflight CORS 预检请求（带 Origin 的预检已由 cors 中间件处理）
func Preflight(c *gin.Context) {
	middleware.SetPreflightHeaders(c)
	ginx.SetResp(c, http.StatusNoContent, nil)
}

// Healthz 存活检查
func Healthz(c *gin.Context) {
	ginx.SetResp(c, http.StatusOK, gin.H{"status": "ok"})
}

// NotFound ...
func NotFound(c *gin.Context) {
	ginx.SetErrResp(c, http.StatusNotFound, "not found")
}

// MethodNotAllowed ...
func MethodNotAllowed(c *gin.Context) {
	ginx.SetErrResp(c, http.StatusMethodNotAllowed, "method not allowed")
}

// 投票服务错误到 HTTP 状态码的映射，存储层错误原样返回最底层的错误信息
func setVoteErrResp(c *gin.Context, err error) {
	switch {
	case errors.Is(err, vote.ErrInvalidArgument):
		ginx.SetErrResp(c, http.StatusBadRequest, vote.ErrInvalidArgument.Error())
	case errors.Is(err, vote.ErrStoreNotBound):
		ginx.SetErrResp(c, http.StatusInternalServerError, vote.ErrStoreNotBound.Error())
	default:
		ginx.SetErrResp(c, http.StatusInternalServerError, errors.Cause(err).Error())
	}
	ginx.SetError(c, err)
}
