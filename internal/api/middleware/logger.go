package middleware

import (
	"time"

	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID = "X-Request-ID"

	ContextKeyRequestID = "requestID"
	// ContextKeyUploadID 由上传接口写入，请求日志据此关联上传状态日志
	ContextKeyUploadID = "uploadID"
)

// Logger 请求日志中间件。
// 每个请求分配 request_id（客户端传了 X-Request-ID 则沿用）并回写到响应头；
// 结束时记录登录用户、请求体大小和上传 ID，4xx 记 Warn，5xx 记 Error。
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.String("ip", c.ClientIP()),
			zap.Duration("duration", time.Since(start)),
			zap.Int64("request_size", c.Request.ContentLength),
			zap.Int("response_size", c.Writer.Size()),
		}
		if c.Request.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", c.Request.URL.RawQuery))
		}
		if userID, ok := GetCurrentUserID(c); ok {
			fields = append(fields, zap.Int64("user_id", userID))
		}
		if uploadID := c.GetString(ContextKeyUploadID); uploadID != "" {
			fields = append(fields, zap.String("upload_id", uploadID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= 500:
			logger.Error("HTTP Request", fields...)
		case status >= 400:
			logger.Warn("HTTP Request", fields...)
		default:
			logger.Info("HTTP Request", fields...)
		}
	}
}

// GetRequestID 当前请求的 request_id，未经过 Logger 时为空
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}
