package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"vidshare/internal/api/response"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateCounter 固定窗口计数器，返回本窗口内的累计次数
type RateCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit 按客户端 IP 限流。计数器在 budget 内没有返回时放行
func RateLimit(counter RateCounter, scope string, limit int, window, budget time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), budget)
		defer cancel()

		key := fmt.Sprintf("ratelimit:%s:%s", scope, c.ClientIP())
		count, err := counter.Hit(ctx, key, window)
		if err != nil {
			logger.Warn("Rate limiter unavailable, allowing request",
				zap.String("scope", scope),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.TooManyRequests(c, "Too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
