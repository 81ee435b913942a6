package router

import (
	"fmt"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/narasux/vidvote/pkg/assetcache"
	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/handler"
	"github.com/narasux/vidvote/pkg/middleware"
)

// New 创建路由，worker 非空时其余路径代理到静态资源源站
func New(assetOrigin *url.URL, worker *assetcache.Worker) *gin.Engine {
	router := gin.New()
	_ = router.SetTrustedProxies(nil)
	router.HandleMethodNotAllowed = true

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())
	router.Use(middleware.Cors())
	router.Use(gin.Recovery())

	router.NoMethod(handler.MethodNotAllowed)
	if worker != nil {
		router.NoRoute(handler.NewAssetProxy(assetOrigin, worker))
	} else {
		router.NoRoute(handler.NotFound)
	}

	// 运维
	router.GET("healthz", handler.Healthz)
	router.GET("metrics", gin.WrapH(promhttp.Handler()))

	// api 路由
	{
		apiRg := router.Group("api")
		// 计票与自己的投票
		apiRg.GET("vote", handler.GetVote)
		// 投票 / 撤销 / 切换
		apiRg.POST("vote", handler.CastVote)
		apiRg.OPTIONS("vote", handler.Preflight)
		// 黑名单
		apiRg.GET("blacklist", handler.ListBlacklist)
		apiRg.OPTIONS("blacklist", handler.Preflight)
		// 黑名单 Atom 订阅
		apiRg.GET("blacklist/feed", handler.BlacklistFeed)
	}

	return router
}

// InitRouter 启动 web 服务
func InitRouter(assetOrigin *url.URL, worker *assetcache.Worker) {
	gin.SetMode(envs.GinRunMode)
	router := New(assetOrigin, worker)

	if err := router.Run(":" + envs.ServerPort); err != nil {
		panic(fmt.Sprintf("failed to start server: %s", err.Error()))
	}
}
