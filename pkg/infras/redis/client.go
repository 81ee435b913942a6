package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/narasux/vidvote/pkg/envs"
)

// 连接检查超时时间
const pingTimeout = 3 * time.Second

// NewClient 按配置创建 Redis 客户端并检查连通性
func NewClient(ctx context.Context) (*goredis.Client, error) {
	return Open(ctx, &goredis.Options{
		Addr:     envs.RedisAddr,
		Password: envs.RedisPassword,
		DB:       envs.RedisDB,
	})
}

// Open 创建 Redis 客户端，连不上时关闭客户端并返回错误
func Open(ctx context.Context, opts *goredis.Options) (*goredis.Client, error) {
	client := goredis.NewClient(opts)

	cCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(cCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", opts.Addr)
	}
	return client, nil
}
