package api

import (
	"net/http"
	"strings"

	"ecofix/backend/go/internal/tracker_service/service"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxClaims = "claims"
)

// AuthMiddleware 创建一个 Gin 中间件，用于验证 JWT 并拒绝已注销的令牌。
func AuthMiddleware(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}

		// 我们期望的格式是 "Bearer <token>"
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed Authorization header"})
			return
		}

		claims, err := svc.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

func currentUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

func currentClaims(c *gin.Context) *service.Claims {
	claims, _ := c.Get(ctxClaims)
	cl, _ := claims.(*service.Claims)
	return cl
}
