package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stustanet/sprechstundensystem-ng/pkg/jwt"
	"github.com/stustanet/sprechstundensystem-ng/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetClaims 从 Gin 上下文中安全提取完整的 JWT Claims。
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return claims, true
}

// IsAuthenticated 判断当前请求是否带合法登录态（供可选认证端点使用）
func IsAuthenticated(c *gin.Context) bool {
	v, exists := c.Get("user_id")
	if !exists {
		return false
	}
	s, ok := v.(string)
	return ok && s != ""
}
