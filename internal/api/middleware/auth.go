package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stustanet/sprechstundensystem-ng/pkg/jwt"
	"github.com/stustanet/sprechstundensystem-ng/pkg/redis"
	"github.com/stustanet/sprechstundensystem-ng/pkg/response"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 命中黑名单（已登出）的 Token 同样拒绝。rdb 可为 nil。
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, jwtMgr, rdb)
		if !ok {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("claims", claims)

		c.Next()
	}
}

// OptionalAuth 可选认证中间件
// 带合法 Token 时注入用户信息，不带或带非法 Token 时作为访客继续。
// 用于排班视图这类登录与否行为不同的公开端点。
func OptionalAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, jwtMgr, rdb); ok {
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
			c.Set("claims", claims)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, jwtMgr *jwt.Manager, rdb *redis.Client) (*jwt.Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := jwtMgr.ParseToken(parts[1])
	if err != nil || claims.TokenType != "access" {
		return nil, false
	}

	if rdb != nil {
		// 黑名单查询失败时放行，登出只是尽力而为
		if blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && blacklisted {
			return nil, false
		}
	}

	return claims, true
}
