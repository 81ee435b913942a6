package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/narasux/vidvote/pkg/utils/ginx"
	"github.com/narasux/vidvote/pkg/utils/uuid"
)

// RequestID 透传上游的 Request ID，缺失或非 uuid 格式时重新生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(ginx.RequestIDHeaderKey)
		if !uuid.IsUUID(requestID) {
			requestID = uuid.GenUUID4()
		}
		ginx.SetRequestID(c, requestID)
		c.Writer.Header().Set(ginx.RequestIDHeaderKey, requestID)

		c.Next()
	}
}
