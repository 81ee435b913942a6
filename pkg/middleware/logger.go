package middleware

import (
	"bytes"
	"time"

	"github.com/TencentBlueKing/gopkg/stringx"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/narasux/vidvote/pkg/logging"
	"github.com/narasux/vidvote/pkg/utils/ginx"
)

// 日志中请求体，响应体，参数的最大长度
const maxLogBodySize = 1024

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 只保留响应体的前 maxLogBodySize 字节（代理的静态资源可能很大）
func (w bodyLogWriter) Write(b []byte) (int, error) {
	if remain := maxLogBodySize - w.body.Len(); remain > 0 {
		w.body.Write(b[:min(remain, len(b))])
	}
	return w.ResponseWriter.Write(b)
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqBody, respBody := "", ""
		if requestBody, err := ginx.ReadRequestBody(c.Request); err == nil {
			reqBody = stringx.Truncate(string(requestBody), maxLogBodySize)
		}

		writer := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = writer

		c.Next()

		// 检查错误信息，以手动设置的为主，否则检查 c.Errors
		errStr, hasErr := ginx.GetError(c)
		if !hasErr && len(c.Errors) > 0 {
			errStr = c.Errors.String()
			hasErr = true
		}

		// 统计请求耗时，单位为 ms，限制最小 1ms
		duration := time.Since(start)
		latency := float64(duration/time.Millisecond) + 1

		// 请求参数
		params := stringx.Truncate(c.Request.URL.RawQuery, maxLogBodySize)

		// 如果没有错误信息，则不关注 respBody
		if hasErr {
			respBody = writer.body.String()
		}

		fields := logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"params":    params,
			"reqBody":   reqBody,
			"respBody":  respBody,
			"status":    c.Writer.Status(),
			"latency":   latency,
			"requestID": ginx.GetRequestID(c),
			"clientIP":  ginx.GetClientID(c),
			"error":     errStr,
		}

		logger := logging.GetAccessLogger()
		if hasErr {
			logger.WithFields(fields).Error("-")
		} else {
			logger.WithFields(fields).Info("-")
		}
	}
}
