package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	// CorsAllowMethods 允许的跨域请求方法
	CorsAllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	// CorsAllowHeaders 允许的跨域请求头
	CorsAllowHeaders = []string{"Content-Type"}
)

// Cors 允许任意来源跨域访问：所有响应都带 Access-Control-Allow-Origin: *，
// 带 Origin 的预检请求由 cors 中间件直接返回 204
func Cors() gin.HandlerFunc {
	handler := cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              CorsAllowMethods,
		AllowHeaders:              CorsAllowHeaders,
		ExposeHeaders:             []string{"X-Request-ID"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusNoContent,
	})

	return func(c *gin.Context) {
		// cors 中间件只处理带 Origin 的请求
		c.Header("Access-Control-Allow-Origin", "*")
		handler(c)
	}
}

// SetPreflightHeaders 写入预检响应头（不带 Origin 的 OPTIONS 请求同样返回）
func SetPreflightHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Methods", strings.Join(CorsAllowMethods, ", "))
	c.Header("Access-Control-Allow-Headers", strings.Join(CorsAllowHeaders, ", "))
}
