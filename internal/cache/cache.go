// 包 cache：已渲染快照的输出缓存；Redis 优先，未配置时使用进程内 LRU
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"territory-api/internal/logger"
	"territory-api/internal/territory"
)

// Cache：失败一律视为未命中，缓存不可用时不得影响查询结果
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
}

// Key：快照缓存键
// 约束：包含语料版本，重载语料后旧键自然失效，无需主动清理；值格式变更时递增前缀。
func Key(version string, date territory.Date, scope string, dedup bool) string {
	k := "snap2:" + version + ":" + date.String() + ":" + scope
	if dedup {
		k += ":dedup"
	}
	return k
}

// Redis：基于 go-redis 的共享缓存，适合多实例部署
type Redis struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRedis(rc *redis.Client, ttl time.Duration) *Redis { return &Redis{rc: rc, ttl: ttl} }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.rc.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("cache_redis_get_error", "key", key, "err", err)
		}
		return nil, false
	}
	return b, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) {
	if err := r.rc.Set(ctx, key, val, r.ttl).Err(); err != nil {
		logger.L().Warn("cache_redis_set_error", "key", key, "err", err)
	}
}

// New：rc 非空时使用 Redis，否则使用容量为 lruSize 的进程内缓存
func New(rc *redis.Client, ttl time.Duration, lruSize int) Cache {
	if rc != nil {
		logger.L().Info("snapshot_cache", "backend", "redis", "ttl", ttl.String())
		return NewRedis(rc, ttl)
	}
	logger.L().Info("snapshot_cache", "backend", "lru", "size", strconv.Itoa(lruSize), "ttl", ttl.String())
	return NewLRU(lruSize, ttl)
}
