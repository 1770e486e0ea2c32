package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-order-app/utils"
)

// WebSocketAuthMiddleware membaca token dari query string karena
// browser tidak bisa menyetel header Authorization saat handshake ws.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Set("role", claims.Role)
		c.Set("token_type", claims.TokenType)

		c.Next()
	}
}
