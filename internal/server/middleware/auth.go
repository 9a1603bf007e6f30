package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/techsolutionsutrecht/offerte/internal/auth"
)

const operatorEmailKey = "operator_email"

// TokenValidator verifies operator bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// RequireOperator rejects requests without a valid operator bearer token.
func RequireOperator(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		claims, err := validator.Validate(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(operatorEmailKey, claims.Email)
		c.Next()
	}
}

// OperatorEmail returns the email of the authenticated operator.
func OperatorEmail(c *gin.Context) string {
	return c.GetString(operatorEmailKey)
}
