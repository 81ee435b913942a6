package assetcache

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 源站：记录每个路径的访问次数
type origin struct {
	*httptest.Server
	hits map[string]*atomic.Int32
}

func newOrigin(t *testing.T) *origin {
	o := &origin{hits: map[string]*atomic.Int32{}}
	for _, p := range []string{"/", "/index.html", "/manifest.json", "/videos.json", "/app.js", "/clip.mp4", "/broken", "/upload", "/localized.js", "/session.js"} {
		o.hits[p] = &atomic.Int32{}
	}

	o.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if counter, ok := o.hits[r.URL.Path]; ok {
			counter.Add(1)
		}
		switch r.URL.Path {
		case "/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "/localized.js":
			w.Header().Set("Vary", "Accept-Language")
			if r.Header.Get("Accept-Language") == "zh" {
				w.Header().Set("Content-Language", "zh")
				_, _ = io.WriteString(w, "你好")
				return
			}
			_, _ = io.WriteString(w, "hello")
		case "/session.js":
			http.SetCookie(w, &http.Cookie{Name: "sid", Value: r.Header.Get("X-User")})
			_, _ = io.WriteString(w, "content of "+r.URL.Path)
		default:
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "content of "+r.URL.Path)
		}
	}))
	t.Cleanup(o.Close)
	return o
}

func (o *origin) count(path string) int32 {
	return o.hits[path].Load()
}

func newTestWorker(t *testing.T, o *origin, storage Storage, precache ...string) *Worker {
	w, err := NewWorker(Options{
		Origin:        o.URL,
		CacheName:     "sv-v1",
		PrecachePaths: precache,
		ExcludedExts:  []string{".mp4"},
	}, storage, o.Client())
	require.NoError(t, err)
	return w
}

func get(t *testing.T, w *Worker, url string) (int, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := w.Intercept(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewWorkerValidation(t *testing.T) {
	_, err := NewWorker(Options{Origin: "/relative", CacheName: "sv-v1"}, NewMemoryStorage(), http.DefaultClient)
	assert.Error(t, err)

	_, err = NewWorker(Options{Origin: "https://cdn.test"}, NewMemoryStorage(), http.DefaultClient)
	assert.Error(t, err)
}

func TestWorkerInstallAndActivate(t *testing.T) {
	ctx := context.Background()
	o := newOrigin(t)
	storage := NewMemoryStorage()

	// 旧版本分区
	old, err := storage.Open(ctx, "sv-v0")
	require.NoError(t, err)
	require.NoError(t, old.Put(ctx, "GET "+o.URL+"/", &Response{StatusCode: 200, Body: []byte("stale")}))

	w := newTestWorker(t, o, storage, "/", "/index.html", "/manifest.json", "/videos.json")
	require.NoError(t, w.Install(ctx))
	assert.False(t, w.Controlling())

	// 激活前不拦截
	_, body := get(t, w, o.URL+"/app.js")
	assert.Equal(t, "content of /app.js", body)
	_, _ = get(t, w, o.URL+"/app.js")
	w.Wait()
	assert.Equal(t, int32(2), o.count("/app.js"))

	require.NoError(t, w.Activate(ctx))
	assert.True(t, w.Controlling())

	names, err := storage.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sv-v1"}, names)

	// 预缓存的路径直接命中，不再访问源站
	status, body := get(t, w, o.URL+"/index.html")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "content of /index.html", body)
	assert.Equal(t, int32(1), o.count("/index.html"))
}

func TestWorkerInstallFailsOnBadPath(t *testing.T) {
	ctx := context.Background()
	o := newOrigin(t)
	storage := NewMemoryStorage()

	w := newTestWorker(t, o, storage, "/index.html", "/broken")
	assert.Error(t, w.Install(ctx))

	store, err := storage.Open(ctx, "sv-v1")
	require.NoError(t, err)
	cached, err := store.Match(ctx, "GET "+o.URL+"/index.html")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestWorkerCacheFirst(t *testing.T) {
	ctx := context.Background()
	o := newOrigin(t)
	w := newTestWorker(t, o, NewMemoryStorage())
	require.NoError(t, w.Activate(ctx))

	_, body := get(t, w, o.URL+"/app.js")
	assert.Equal(t, "content of /app.js", body)
	w.Wait()

	for i := 0; i < 3; i++ {
		status, body := get(t, w, o.URL+"/app.js")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "content of /app.js", body)
	}
	assert.Equal(t, int32(1), o.count("/app.js"))

	// 查询参数不同视为不同的缓存键
	_, _ = get(t, w, o.URL+"/app.js?v=2")
	w.Wait()
	assert.Equal(t, int32(2), o.count("/app.js"))
}

func TestWorkerBypassesExcludedExtension(t *testing.T) {
	o := newOrigin(t)
	w := newTestWorker(t, o, NewMemoryStorage())
	require.NoError(t, w.Activate(context.Background()))

	for i := 0; i < 3; i++ {
		_, body := get(t, w, o.URL+"/clip.mp4")
		assert.Equal(t, "content of /clip.mp4", body)
	}
	w.Wait()
	assert.Equal(t, int32(3), o.count("/clip.mp4"))
}

func TestWorkerDoesNotCacheFailures(t *testing.T) {
	o := newOrigin(t)
	w := newTestWorker(t, o, NewMemoryStorage())
	require.NoError(t, w.Activate(context.Background()))

	for i := 0; i < 2; i++ {
		status, _ := get(t, w, o.URL+"/broken")
		assert.Equal(t, http.StatusInternalServerError, status)
	}
	w.Wait()
	assert.Equal(t, int32(2), o.count("/broken"))
}

func TestWorkerDoesNotCacheCrossOrigin(t *testing.T) {
	ctx := context.Background()
	o := newOrigin(t)
	other := newOrigin(t)
	storage := NewMemoryStorage()
	w := newTestWorker(t, o, storage)
	require.NoError(t, w.Activate(ctx))

	for i := 0; i < 2; i++ {
		_, body := get(t, w, other.URL+"/app.js")
		assert.Equal(t, "content of /app.js", body)
	}
	w.Wait()
	assert.Equal(t, int32(2), other.count("/app.js"))
}

func TestWorkerOnlyCachesGet(t *testing.T) {
	o := newOrigin(t)
	w := newTestWorker(t, o, NewMemoryStorage())
	require.NoError(t, w.Activate(context.Background()))

	for i := 0; i < 2; i++ {
		req, err := http.NewRequest(http.MethodPost, o.URL+"/upload", nil)
		require.NoError(t, err)
		resp, err := w.RoundTrip(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	w.Wait()
	assert.Equal(t, int32(2), o.count("/upload"))
}

func TestWorkerDoesNotShareVariedResponses(t *testing.T) {
	o := newOrigin(t)
	w := newTestWorker(t, o, NewMemoryStorage())
	require.NoError(t, w.Activate(context.Background()))

	fetch := func(headers map[string]string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, o.URL+"/localized.js", nil)
		require.NoError(t, err)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := w.Intercept(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := fetch(map[string]string{"Accept-Language": "zh"})
	assert.Equal(t, "zh", resp.Header.Get("Content-Language"))
	w.Wait()

	// 其他客户端拿到的是按自己请求头生成的内容
	resp = fetch(nil)
	w.Wait()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Content-Language"))
	assert.Equal(t, "hello", string(body))
	assert.Equal(t, int32(2), o.count("/localized.js"))
}

func TestWorkerDoesNotShareCookies(t *testing.T) {
	o := newOrigin(t)
	w := newTestWorker(t, o, NewMemoryStorage())
	require.NoError(t, w.Activate(context.Background()))

	for _, user := range []string{"alice", "bob"} {
		req, err := http.NewRequest(http.MethodGet, o.URL+"/session.js", nil)
		require.NoError(t, err)
		req.Header.Set("X-User", user)
		resp, err := w.Intercept(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		w.Wait()

		cookies := resp.Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, user, cookies[0].Value)
	}
	assert.Equal(t, int32(2), o.count("/session.js"))
}

func TestShareable(t *testing.T) {
	testCases := []struct {
		name     string
		header   http.Header
		expected bool
	}{
		{"plain", http.Header{"Content-Type": {"text/css"}}, true},
		{"empty vary", http.Header{"Vary": {" "}}, true},
		{"vary", http.Header{"Vary": {"Accept-Encoding"}}, false},
		{"vary star", http.Header{"Vary": {"*"}}, false},
		{"set cookie", http.Header{"Set-Cookie": {"sid=1"}}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Shareable(&http.Response{Header: tc.header}))
		})
	}
}
