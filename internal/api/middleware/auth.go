package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/unmask/pkg/response"
)

const userIDKey = "auth.user_id"

func parseToken(c *gin.Context, secret []byte) (string, bool) {
	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", false
	}
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// RequireAuth 无有效令牌直接 401
func RequireAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		userID, ok := parseToken(c, key)
		if !ok {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// OptionalAuth 匿名可访问；令牌有效时注入 viewer
func OptionalAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if userID, ok := parseToken(c, key); ok {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}

// UserID 取当前登录用户；匿名返回空串
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
