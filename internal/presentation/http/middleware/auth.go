package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kmarube/eventquote-api/internal/presentation/http/dto/response"
	"github.com/kmarube/eventquote-api/pkg/utils"
)

// AuthMiddleware creates a JWT authentication middleware. The token
// subject becomes the owning scope for every store query downstream.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("owner_id", claims.UserID)
		c.Set("owner_email", claims.Email)

		c.Next()
	}
}
