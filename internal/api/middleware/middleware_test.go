package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidshare/pkg/logger"
	"vidshare/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens(t *testing.T) *utils.TokenManager {
	t.Helper()
	m, err := utils.NewTokenManager("mw-secret", time.Hour, "test")
	require.NoError(t, err)
	return m
}

func perform(r http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func TestAuthRequired(t *testing.T) {
	tokens := newTokens(t)
	r := gin.New()
	r.GET("/me", AuthRequired(tokens), func(c *gin.Context) {
		id, _ := GetCurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": GetCurrentUserRole(c)})
	})

	w := perform(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", message(t, w))

	w = perform(r, http.MethodGet, "/me", bearer("garbage"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid token", message(t, w))

	w = perform(r, http.MethodGet, "/me", http.Header{"Authorization": []string{"Token abc"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 头存在但 token 为空
	w = perform(r, http.MethodGet, "/me", bearer(""))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Invalid token", message(t, w))

	token, err := tokens.Issue(5, "admin")
	require.NoError(t, err)
	w = perform(r, http.MethodGet, "/me", bearer(token))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5,"role":"admin"}`, w.Body.String())
}

func TestRoleRequired_TokenRole(t *testing.T) {
	tokens := newTokens(t)
	r := gin.New()
	r.GET("/admin", AuthRequired(tokens), RoleRequired("admin", nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	userToken, _ := tokens.Issue(1, "user")
	w := perform(r, http.MethodGet, "/admin", bearer(userToken))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Unauthorized", message(t, w))

	adminToken, _ := tokens.Issue(2, "admin")
	w = perform(r, http.MethodGet, "/admin", bearer(adminToken))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRoleRequired_RefreshedRole(t *testing.T) {
	tokens := newTokens(t)
	roles := map[int64]string{1: "admin", 2: "user"}
	fetcher := func(id int64) (string, error) {
		role, ok := roles[id]
		if !ok {
			return "", errors.New("missing")
		}
		return role, nil
	}

	r := gin.New()
	r.GET("/admin", AuthRequired(tokens), RoleRequired("admin", fetcher), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// token 里是 user，数据库中已提升为 admin
	promoted, _ := tokens.Issue(1, "user")
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/admin", bearer(promoted)).Code)

	// token 里是 admin，数据库中已降级
	demoted, _ := tokens.Issue(2, "admin")
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", bearer(demoted)).Code)

	gone, _ := tokens.Issue(3, "admin")
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin", bearer(gone)).Code)
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f *fakeCounter) Hit(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	return f.counts[key], nil
}

func TestRateLimit(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{}}
	r := gin.New()
	r.POST("/login", RateLimit(counter, "auth", 2, time.Minute, time.Second), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", nil).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", nil).Code)

	w := perform(r, http.MethodPost, "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(&fakeCounter{err: errors.New("down")}, "auth", 1, time.Minute, time.Second), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", nil).Code)
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := perform(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error","type":"InternalServerError"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodGet, "/x", http.Header{"Origin": []string{"http://spa.example"}})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = perform(r, http.MethodOptions, "/x", http.Header{
		"Origin":                        []string{"http://spa.example"},
		"Access-Control-Request-Method": []string{"POST"},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = prev })
	return logs
}

func TestLogger(t *testing.T) {
	logs := observeLogs(t)
	tokens := newTokens(t)

	r := gin.New()
	r.Use(Logger())
	r.POST("/upload", AuthRequired(tokens), func(c *gin.Context) {
		c.Set(ContextKeyUploadID, "up-1")
		c.Status(http.StatusBadRequest)
	})
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	token, err := tokens.Issue(9, "admin")
	require.NoError(t, err)
	header := bearer(token)
	header.Set(HeaderRequestID, "req-42")
	w := perform(r, http.MethodPost, "/upload", header)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))

	entries := logs.FilterMessage("HTTP Request").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, int64(9), fields["user_id"])
	assert.Equal(t, "up-1", fields["upload_id"])
	assert.Equal(t, int64(http.StatusBadRequest), fields["status"])

	// 未传 X-Request-ID 时生成新的
	w = perform(r, http.MethodGet, "/ping", nil)
	generated := w.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	last := logs.FilterMessage("HTTP Request").AllUntimed()[1]
	assert.Equal(t, zapcore.InfoLevel, last.Level)
	assert.NotContains(t, last.ContextMap(), "user_id")
}
