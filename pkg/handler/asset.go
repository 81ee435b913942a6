package handler

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/narasux/vidvote/pkg/assetcache"
	"github.com/narasux/vidvote/pkg/logging"
)

// NewAssetProxy 将非 API 路径代理到静态资源源站，经由 worker 的 cache-first 策略
func NewAssetProxy(origin *url.URL, worker *assetcache.Worker) gin.HandlerFunc {
	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(origin)
			r.SetXForwarded()
			// worker 通过 http.Client 发起请求，客户端请求不允许设置 RequestURI
			r.Out.RequestURI = ""
		},
		Transport: worker,
		// 跨域头统一由 Cors 中间件写入
		ModifyResponse: func(resp *http.Response) error {
			resp.Header.Del("Access-Control-Allow-Origin")
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logging.GetWebLogger().Errorf("asset proxy %s failed: %s", r.URL, err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			NotFound(c)
			return
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}
