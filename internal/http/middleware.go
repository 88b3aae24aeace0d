package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/itgelzam/portal/internal/messages"
)

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// AuthRequired validates the bearer token and stashes the identity on the
// context for handlers downstream.
func (e *Env) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": messages.ErrLoginRequired})
			return
		}
		claims, err := e.Tokens.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": messages.ErrLoginRequired})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// AdminAuthMiddleware checks the X-Admin-Token header against the configured
// console password. This mirrors the original portal's client-held password
// gate: a UX convenience, not a security boundary.
func (e *Env) AdminAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		suppliedToken := c.GetHeader("X-Admin-Token")

		if suppliedToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": messages.ErrWrongAdminPassword})
			return
		}
		if suppliedToken != e.AdminPassword {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": messages.ErrWrongAdminPassword})
			return
		}
		c.Next()
	}
}

// SecurityHeadersMiddleware adds basic, sensible security headers.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevents clickjacking
		c.Header("X-Frame-Options", "DENY")
		// Prevents MIME-type sniffing
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
