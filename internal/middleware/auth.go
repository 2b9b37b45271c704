package middleware

import (
	"errors"
	"net/http"
	"strings"

	"Community_Graph/internal/pkg"
	"Community_Graph/internal/repository/redis"

	"github.com/gin-gonic/gin"
)

const ContextUserIDKey = "user_id"

// AuthMiddleware 校验 Bearer access token。tokens 不为 nil 时还要求与 redis 中最后一次登录的 token 一致
func AuthMiddleware(tokens *redis.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, tokenStr, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || scheme != "Bearer" || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing or malformed authorization header"})
			return
		}

		claims, err := pkg.ParseAccess(tokenStr)
		if errors.Is(err, pkg.ErrTokenExpired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "token expired, refresh it"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
			return
		}

		if tokens != nil {
			ctx := c.Request.Context()
			origin, err := tokens.GetUserToken(ctx, claims.UserID)
			switch {
			case errors.Is(err, redis.ErrRedisUnavailable):
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"msg": err.Error()})
				return
			case err != nil || origin != tokenStr:
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "account has been logged in elsewhere"})
				return
			}
			// 滑动过期
			if err := tokens.ExtendUserToken(ctx, claims.UserID); err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"msg": err.Error()})
				return
			}
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
