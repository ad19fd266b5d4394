package middleware

import (
	"strings"

	"vidshare/internal/api/response"
	"vidshare/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextKeyUserID   = "currentUserID"
	ContextKeyUserRole = "currentUserRole"
)

// AuthRequired JWT 认证中间件：没有 Authorization 头返回 401，
// 有头但 token 为空或无效一律返回 403
func AuthRequired(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.TrimSpace(header) == "" {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		claims, err := tokens.Verify(bearerToken(header))
		if err != nil {
			response.Forbidden(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUserRole, claims.Role)
		c.Next()
	}
}

// GetCurrentUserID 从 Gin Context 中获取当前登录用户 ID
func GetCurrentUserID(c *gin.Context) (int64, bool) {
	val, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := val.(int64)
	return userID, ok
}

// GetCurrentUserRole 从 Gin Context 中获取当前用户角色
func GetCurrentUserRole(c *gin.Context) string {
	return c.GetString(ContextKeyUserRole)
}

// UserRoleFetcher 用于获取用户角色的函数类型
type UserRoleFetcher func(userID int64) (string, error)

// RoleRequired 角色校验中间件（必须在 AuthRequired 之后使用）。
// roleFetcher 为 nil 时信任 token 中的角色，否则每次请求从数据库重新读取。
func RoleRequired(role string, roleFetcher UserRoleFetcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetCurrentUserID(c)
		if !ok {
			response.Unauthorized(c, "Unauthorized")
			c.Abort()
			return
		}

		current := GetCurrentUserRole(c)
		if roleFetcher != nil {
			fresh, err := roleFetcher(userID)
			if err != nil {
				response.Forbidden(c, "Unauthorized")
				c.Abort()
				return
			}
			current = fresh
			c.Set(ContextKeyUserRole, fresh)
		}

		if current != role {
			response.Forbidden(c, "Unauthorized")
			c.Abort()
			return
		}

		c.Next()
	}
}

// bearerToken 从 Authorization 头中提取 Bearer Token
func bearerToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		// 有头但格式不对，按无效 token 处理
		return authHeader
	}

	return strings.TrimSpace(parts[1])
}
