package assetcache

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/narasux/vidvote/pkg/logging"
	"github.com/narasux/vidvote/pkg/metrics"
)

const (
	resultHit    = "hit"
	resultMiss   = "miss"
	resultBypass = "bypass"
)

// Options Worker 配置
type Options struct {
	// Origin 源站地址，只有同源的成功响应会被缓存
	Origin string
	// CacheName 当前版本的分区名称
	CacheName string
	// PrecachePaths 安装时预缓存的路径
	PrecachePaths []string
	// ExcludedExts 不拦截的文件扩展名（如 .mp4）
	ExcludedExts []string
}

// Worker 静态资源缓存：安装，激活，然后以 cache-first 策略拦截请求
type Worker struct {
	origin        *url.URL
	cacheName     string
	precachePaths []string
	excludedExts  []string

	storage Storage
	fetcher Fetcher

	controlling atomic.Bool
	pending     sync.WaitGroup
}

var _ http.RoundTripper = (*Worker)(nil)

// NewWorker ...
func NewWorker(opts Options, storage Storage, fetcher Fetcher) (*Worker, error) {
	origin, err := url.Parse(opts.Origin)
	if err != nil {
		return nil, errors.Wrapf(err, "parse origin %s", opts.Origin)
	}
	if origin.Scheme == "" || origin.Host == "" {
		return nil, errors.Errorf("origin %q must be an absolute url", opts.Origin)
	}
	if opts.CacheName == "" {
		return nil, errors.New("cache name is required")
	}

	return &Worker{
		origin:        origin,
		cacheName:     opts.CacheName,
		precachePaths: opts.PrecachePaths,
		excludedExts:  lo.Map(opts.ExcludedExts, func(ext string, _ int) string { return strings.ToLower(ext) }),
		storage:       storage,
		fetcher:       fetcher,
	}, nil
}

// Install 预缓存：任一路径获取失败则安装失败，此时不写入任何条目
func (w *Worker) Install(ctx context.Context) error {
	store, err := w.storage.Open(ctx, w.cacheName)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(w.precachePaths))
	snapshots := make([]*Response, 0, len(w.precachePaths))
	for _, path := range w.precachePaths {
		target, err := w.resolve(path)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return errors.Wrapf(err, "precache %s", path)
		}

		resp, err := w.fetcher.Do(req)
		if err != nil {
			return errors.Wrapf(err, "precache %s", path)
		}
		if !isSuccess(resp) {
			_ = resp.Body.Close()
			return errors.Errorf("precache %s: unexpected status %d", path, resp.StatusCode)
		}

		snapshot, err := Snapshot(resp)
		if err != nil {
			return errors.Wrapf(err, "precache %s", path)
		}
		keys = append(keys, Key(req))
		snapshots = append(snapshots, snapshot)
	}

	for i, key := range keys {
		if err = store.Put(ctx, key, snapshots[i]); err != nil {
			return err
		}
	}

	logging.GetSystemLogger().Infof("asset cache %s installed, %d entries precached", w.cacheName, len(keys))
	return nil
}

// Activate 删除其他版本的分区，之后立即开始拦截请求
func (w *Worker) Activate(ctx context.Context) error {
	names, err := w.storage.Keys(ctx)
	if err != nil {
		return err
	}

	stale := lo.Filter(names, func(name string, _ int) bool { return name != w.cacheName })
	for _, name := range stale {
		if _, err = w.storage.Delete(ctx, name); err != nil {
			return err
		}
	}
	w.controlling.Store(true)

	logging.GetSystemLogger().Infof("asset cache %s activated, %d stale partitions deleted", w.cacheName, len(stale))
	return nil
}

// Controlling 是否已激活
func (w *Worker) Controlling() bool {
	return w.controlling.Load()
}

// RoundTrip 使 Worker 可作为 http.Transport 使用（如反向代理）
func (w *Worker) RoundTrip(req *http.Request) (*http.Response, error) {
	return w.Intercept(req)
}

// Intercept 拦截策略：未激活，排除的扩展名，非 GET 请求直接走网络；
// 其余先查缓存，未命中再走网络，同源且可共享的成功响应在后台写入缓存
func (w *Worker) Intercept(req *http.Request) (*http.Response, error) {
	if !w.controlling.Load() || w.isExcluded(req.URL.Path) || req.Method != http.MethodGet {
		metrics.IncAssetCache(resultBypass)
		return w.fetcher.Do(req)
	}

	ctx := req.Context()
	key := Key(req)
	store, err := w.storage.Open(ctx, w.cacheName)
	if err != nil {
		// 缓存不可用时降级为直接请求网络
		logging.GetWebLogger().Warnf("asset cache: open %s failed: %s", w.cacheName, err)
		metrics.IncAssetCache(resultBypass)
		return w.fetcher.Do(req)
	}

	cached, err := store.Match(ctx, key)
	if err != nil {
		logging.GetWebLogger().Warnf("asset cache: match %s failed: %s", key, err)
	} else if cached != nil {
		metrics.IncAssetCache(resultHit)
		return cached.ToHTTP(req), nil
	}

	metrics.IncAssetCache(resultMiss)
	resp, err := w.fetcher.Do(req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp) || !w.sameOrigin(req.URL) || !Shareable(resp) {
		return resp, nil
	}

	snapshot, err := Snapshot(resp)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", key)
	}

	w.pending.Add(1)
	go func() {
		defer w.pending.Done()
		// 请求结束后上下文会被取消，写缓存不能依赖它
		if err := store.Put(context.WithoutCancel(ctx), key, snapshot); err != nil {
			logging.GetWebLogger().Warnf("asset cache: put %s failed: %s", key, err)
		}
	}()
	return resp, nil
}

// Wait 等待后台的缓存写入完成
func (w *Worker) Wait() {
	w.pending.Wait()
}

func (w *Worker) isExcluded(path string) bool {
	path = strings.ToLower(path)
	return lo.SomeBy(w.excludedExts, func(ext string) bool { return strings.HasSuffix(path, ext) })
}

func (w *Worker) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, w.origin.Scheme) && strings.EqualFold(u.Host, w.origin.Host)
}

func (w *Worker) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", errors.Wrapf(err, "parse path %s", path)
	}
	return w.origin.ResolveReference(ref).String(), nil
}

func isSuccess(resp *http.Response) bool {
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}
