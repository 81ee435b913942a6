// Package assetcache 静态资源的 cache-first 缓存：按版本号分区存储响应快照，
// 安装时预缓存，激活时清理旧版本分区
package assetcache

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Response 响应快照
type Response struct {
	StatusCode int         `json:"statusCode"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
}

// CacheStore 单个缓存分区
type CacheStore interface {
	// Match 未命中时返回 nil, nil
	Match(ctx context.Context, key string) (*Response, error)
	Put(ctx context.Context, key string, resp *Response) error
}

// Storage 缓存分区的集合
type Storage interface {
	// Open 打开分区，不存在则创建
	Open(ctx context.Context, name string) (CacheStore, error)
	// Keys 所有分区名称
	Keys(ctx context.Context) ([]string, error)
	// Delete 删除分区，返回分区是否存在
	Delete(ctx context.Context, name string) (bool, error)
}

// Fetcher 发起网络请求，*http.Client 即满足
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// Key 缓存键：请求方法 + 完整 URL
func Key(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

// Shareable 响应能否存入多个客户端共享的缓存：
// 缓存键不含请求头，带 Vary 的响应（如按 Accept-Encoding 压缩）与带 Set-Cookie 的响应都不能共享
func Shareable(resp *http.Response) bool {
	if resp.Header.Get("Set-Cookie") != "" {
		return false
	}
	for _, v := range resp.Header.Values("Vary") {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Snapshot 读取响应体并生成快照，原响应的 Body 被替换为可重复读取的副本
func Snapshot(resp *http.Response) (*Response, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
}

// ToHTTP 由快照构造响应，每次调用返回独立的 Body
func (r *Response) ToHTTP(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", r.StatusCode, http.StatusText(r.StatusCode)),
		StatusCode:    r.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        r.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}
