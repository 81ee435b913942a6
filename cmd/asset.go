package cmd

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/narasux/vidvote/pkg/assetcache"
	"github.com/narasux/vidvote/pkg/envs"
	"github.com/narasux/vidvote/pkg/infras/redis"
	"github.com/narasux/vidvote/pkg/logging"
)

const (
	// AssetCacheBackendRedis 多实例共享的缓存
	AssetCacheBackendRedis = "redis"
	// 源站响应头超时时间（不限制响应体，视频可能很大）
	assetResponseHeaderTimeout = 30 * time.Second
)

// 按配置创建静态资源缓存 worker，未配置源站时返回 nil
func newAssetWorker(ctx context.Context) (*url.URL, *assetcache.Worker, error) {
	if envs.AssetOrigin == "" {
		return nil, nil, nil
	}
	origin, err := url.Parse(envs.AssetOrigin)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parse ASSET_ORIGIN %s", envs.AssetOrigin)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = assetResponseHeaderTimeout
	fetcher := &http.Client{
		Transport: transport,
		// 重定向原样返回给调用方
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	worker, err := assetcache.NewWorker(assetcache.Options{
		Origin:        envs.AssetOrigin,
		CacheName:     envs.AssetCacheName,
		PrecachePaths: envs.AssetPrecachePaths,
		ExcludedExts:  envs.AssetExcludedExts,
	}, newAssetStorage(ctx), fetcher)
	if err != nil {
		return nil, nil, err
	}
	return origin, worker, nil
}

// Redis 不可用时退化为进程内缓存
func newAssetStorage(ctx context.Context) assetcache.Storage {
	if envs.AssetCacheBackend == AssetCacheBackendRedis {
		client, err := redis.NewClient(ctx)
		if err == nil {
			return assetcache.NewRedisStorage(client)
		}
		logging.GetSystemLogger().Warnf("redis unavailable, falling back to in-memory asset cache: %s", err)
	}
	return assetcache.NewMemoryStorage()
}
