package ginx

import "github.com/gin-gonic/gin"

const (
	// RequestIDKey ...
	RequestIDKey = "requestID"
	// ClientIDKey 请求方身份（由网络来源信息推导）
	ClientIDKey = "clientID"
	// ErrorKey ...
	ErrorKey = "error"
)

// GetRequestID ...
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// SetRequestID ...
func SetRequestID(c *gin.Context, requestID string) {
	c.Set(RequestIDKey, requestID)
}

// GetClientID 获取请求方身份，首次获取时根据请求头推导并缓存在上下文中
func GetClientID(c *gin.Context) string {
	if clientID := c.GetString(ClientIDKey); clientID != "" {
		return clientID
	}
	clientID := GetClientIP(c)
	SetClientID(c, clientID)
	return clientID
}

// SetClientID ...
func SetClientID(c *gin.Context, clientID string) {
	c.Set(ClientIDKey, clientID)
}

// GetError ...
func GetError(c *gin.Context) (any, bool) {
	return c.Get(ErrorKey)
}

// SetError ...
func SetError(c *gin.Context, err error) {
	c.Set(ErrorKey, err)
}
