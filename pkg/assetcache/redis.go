package assetcache

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	// 分区名称集合
	redisPartitionsKey = "assetcache:partitions"
	// 分区数据（hash，field 为缓存键）
	redisPartitionPrefix = "assetcache:partition:"
)

// RedisStorage 基于 Redis 的存储，多个实例可共享缓存
type RedisStorage struct {
	client redis.UniversalClient
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage ...
func NewRedisStorage(client redis.UniversalClient) *RedisStorage {
	return &RedisStorage{client: client}
}

// Open ...
func (s *RedisStorage) Open(ctx context.Context, name string) (CacheStore, error) {
	if err := s.client.SAdd(ctx, redisPartitionsKey, name).Err(); err != nil {
		return nil, errors.Wrapf(err, "open partition %s", name)
	}
	return &redisCacheStore{client: s.client, key: redisPartitionPrefix + name}, nil
}

// Keys ...
func (s *RedisStorage) Keys(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, redisPartitionsKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list partitions")
	}
	return names, nil
}

// Delete ...
func (s *RedisStorage) Delete(ctx context.Context, name string) (bool, error) {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.SRem(ctx, redisPartitionsKey, name)
		pipe.Del(ctx, redisPartitionPrefix+name)
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "delete partition %s", name)
	}
	return removed.Val() > 0, nil
}

type redisCacheStore struct {
	client redis.UniversalClient
	key    string
}

func (c *redisCacheStore) Match(ctx context.Context, key string) (*Response, error) {
	raw, err := c.client.HGet(ctx, c.key, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "match %s", key)
	}

	var resp Response
	if err = json.Unmarshal(raw, &resp); err != nil {
		return nil, errors.Wrapf(err, "decode %s", key)
	}
	return &resp, nil
}

func (c *redisCacheStore) Put(ctx context.Context, key string, resp *Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return errors.Wrapf(c.client.HSet(ctx, c.key, key, raw).Err(), "put %s", key)
}
