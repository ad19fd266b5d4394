package redis

import (
	"context"
	"fmt"
	"time"

	"vidshare/internal/config"
	"vidshare/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var client *redis.Client

// Init 初始化 Redis 客户端并在 ctx 内完成 ping。
// 读写超时取 redis.op_timeout_ms，单次命令不会超过限流中间件的预算；不做重试。
func Init(ctx context.Context, cfg *config.RedisConfig) error {
	c := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout(),
		ReadTimeout:  cfg.OpTimeout(),
		WriteTimeout: cfg.OpTimeout(),
		MaxRetries:   -1,
	})

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr(), err)
	}
	client = c

	logger.Info("Redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
		zap.Duration("op_timeout", cfg.OpTimeout()),
	)
	return nil
}

// Close 关闭Redis连接
func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Redis connection closed")
	return client.Close()
}

// Get 获取Redis客户端实例
func Get() *redis.Client {
	return client
}

// Counter 固定窗口计数器：INCR 后在窗口第一次命中时设置过期
type Counter struct {
	client *redis.Client
}

func NewCounter(c *redis.Client) *Counter {
	return &Counter{client: c}
}

// Hit 返回 key 在当前窗口内的累计次数
func (r *Counter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}
