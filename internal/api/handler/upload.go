package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vidshare/internal/api/response"
	"vidshare/internal/storage"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartSlack 表单字段和分隔符的额外开销
const multipartSlack = 1 << 20

// limitBody Content-Length 已超出上限时直接拒绝，否则限制后续读取的字节数
func limitBody(c *gin.Context, ceiling int64) bool {
	if c.Request.ContentLength > ceiling+multipartSlack {
		payloadTooLarge(c, ceiling)
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ceiling+multipartSlack)
	return true
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func payloadTooLarge(c *gin.Context, ceiling int64) {
	response.Fail(c, http.StatusBadRequest, "PayloadTooLarge",
		fmt.Sprintf("File size exceeds limit (%s)", storage.HumanSize(ceiling)))
}

// writeStorageError 处理对象存储层的错误，已处理时返回 true
func writeStorageError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, storage.ErrPayloadTooLarge):
		response.Fail(c, http.StatusBadRequest, "PayloadTooLarge", capitalize(err.Error()))
	case errors.Is(err, storage.ErrUnsupportedFormat):
		response.Fail(c, http.StatusBadRequest, "UnsupportedFormat", capitalize(err.Error()))
	case errors.Is(err, storage.ErrEmptyFile):
		response.BadRequest(c, "Uploaded file is empty")
	case errors.Is(err, storage.ErrObjectNotFound):
		response.NotFound(c, "File not found")
	case errors.Is(err, storage.ErrStorageUnavailable):
		logger.Error("Object storage unavailable", zap.Error(err))
		response.ServiceUnavailable(c, "Storage service unavailable, please try again")
	default:
		return false
	}
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// baseURL 请求方的 scheme://host，用于补全相对地址
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + c.Request.Host
}
