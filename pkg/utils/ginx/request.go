package ginx

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/narasux/vidvote/pkg/envs"
)

const (
	// RequestIDHeaderKey ...
	RequestIDHeaderKey = "X-Request-ID"
	// ForwardedForHeaderKey 代理链请求头
	ForwardedForHeaderKey = "X-Forwarded-For"
	// UnknownClientIP 无法识别客户端地址时的占位值
	UnknownClientIP = "0.0.0.0"
	// MaxClientIPLength 客户端地址的最大长度
	MaxClientIPLength = 255
)

// ErrNilRequestBody ...
var ErrNilRequestBody = errors.New("request Body is nil")

// ReadRequestBody will return the body in []byte, without change the origin body
func ReadRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, ErrNilRequestBody
	}

	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, err
}

// GetClientIP 获取客户端地址：依次尝试真实 IP 请求头，代理链请求头，都没有则返回占位值
//
// NOTE: 请求头可被伪造，结果只能作为粗粒度的身份标识，不能用于鉴权
func GetClientIP(c *gin.Context) string {
	for _, key := range []string{envs.RealClientIPHeaderKey, ForwardedForHeaderKey} {
		if key == "" {
			continue
		}
		if ip := strings.TrimSpace(c.GetHeader(key)); ip != "" {
			// 代理链可能很长，超出存储字段长度的部分丢弃
			if len(ip) > MaxClientIPLength {
				ip = ip[:MaxClientIPLength]
			}
			return ip
		}
	}
	return UnknownClientIP
}
