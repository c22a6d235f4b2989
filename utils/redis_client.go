package utils

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"cleanblog/config"
)

var redisClient *redis.Client

// InitRedis connects the package-level Redis client used by the session
// store. Redis is optional: when it is unreachable the session store keeps
// working from process memory (single-instance only), so a ping failure is
// logged and the client discarded rather than treated as fatal.
func InitRedis(cfg *config.AppConfig) {
	client := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if Sugar != nil {
			Sugar.Warnf("redis unavailable, sessions fall back to memory: %v", err)
		}
		_ = client.Close()
		return
	}
	redisClient = client
}

// Redis returns the connected client, or nil when Redis is unavailable.
func Redis() *redis.Client {
	return redisClient
}
