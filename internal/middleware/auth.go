package middleware

import (
	"net/http"
	"strings"

	"legal-nav-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// ServiceAuth 创建一个 Gin 中间件，用于破坏性管理接口的 JWT 认证。
// 它从 Authorization 请求头中提取服务令牌并验证签名与有效期。
func ServiceAuth(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		// 将客户端标识存入上下文，供后续处理函数使用
		c.Set("client_id", claims.ClientID)
		c.Next()
	}
}
