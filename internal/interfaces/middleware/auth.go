package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/auth"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/pkg/constants"
)

// RequireAuth is a middleware that validates JWT tokens and stores the
// session identity for audit stamping and ownership checks.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			abortUnauthorized(c, "No authorization token provided")
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(constants.ContextKeyUser, claims.User)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"message": message,
		"code":    "UNAUTHORIZED",
		"data":    nil,
	})
	c.Abort()
}

// Cors allows cross-origin requests from the app frontend.
func Cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
