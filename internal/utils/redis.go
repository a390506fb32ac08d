// 包 utils：外部连接工具，统一由配置构造 PostgreSQL 与 Redis 客户端
package utils

import (
	"github.com/redis/go-redis/v9"

	"territory-api/internal/config"
	"territory-api/internal/logger"
)

// OpenRedis：未启用时返回 nil，调用方据此回退到进程内缓存
func OpenRedis(o config.RedisOptions) *redis.Client {
	if !o.Enabled {
		return nil
	}
	logger.L().Debug("redis_env", "addr", o.Addr(), "db", o.DB)
	return redis.NewClient(&redis.Options{Addr: o.Addr(), Password: o.Password, DB: o.DB})
}
