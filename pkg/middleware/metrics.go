package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/narasux/vidvote/pkg/metrics"
)

// Metrics 按路由模板统计请求数，未匹配路由的请求归入 "-"，避免标签基数膨胀
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "-"
		}
		metrics.IncRequest(c.Request.Method, route, c.Writer.Status())
	}
}
