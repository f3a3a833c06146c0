package middleware

import (
	"net/http"
	"strings"

	"github.com/goalchallenge/weekly-goals-engine/internal/core/services"
	"github.com/gin-gonic/gin"
)

const (
	authorizationHeader = "Authorization"
	authorizationType   = "Bearer"

	ContextProfileIDKey = "profileID"
	ContextAnonymousKey = "anonymousSession"
)

// AuthMiddleware accepts both registered-user and anonymous-session tokens;
// the resolved profile id and the anonymity flag land in the gin context.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || fields[0] != authorizationType {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		subject, err := tokenService.ValidateToken(fields[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextProfileIDKey, subject.ProfileID)
		c.Set(ContextAnonymousKey, subject.Anonymous)

		c.Next()
	}
}

func GetProfileID(c *gin.Context) (string, bool) {
	id, exists := c.Get(ContextProfileIDKey)
	if !exists {
		return "", false
	}
	idStr, ok := id.(string)
	return idStr, ok
}

// IsAnonymous reports whether the request carries an anonymous-session token.
func IsAnonymous(c *gin.Context) bool {
	v, exists := c.Get(ContextAnonymousKey)
	if !exists {
		return false
	}
	anon, ok := v.(bool)
	return ok && anon
}
