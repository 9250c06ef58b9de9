package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/microblog-app/microblog-back/internal/utils"
)

// OptionalAuthMiddleware identifies the viewer when a valid session is present
// and lets anonymous requests through otherwise.
func OptionalAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := sessionToken(c)
		if tokenStr == "" {
			c.Next()
			return
		}

		if claims, err := utils.ParseSessionToken(tokenStr, jwtSecret); err == nil {
			c.Set("user_id", claims.UserID)
			c.Set("username", claims.Username)
		}
		c.Next()
	}
}
