package middleware

import (
	"net/http"

	"github.com/ShowRoomzs/back-end-sub001/auth"
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// ValidateToken requires a valid bearer token and stores the caller's id under
// "user_id" as a uint.
func ValidateToken(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}

		claims, err := auth.ParseToken(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// UserID returns the id set by ValidateToken.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
