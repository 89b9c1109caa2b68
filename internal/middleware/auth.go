package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vayhout/notesphere/pkg/auth"
	"github.com/vayhout/notesphere/pkg/blacklist"
	"github.com/vayhout/notesphere/pkg/response"
)

const (
	AuthUserKey  = "auth_user"
	UserIDKey    = "user_id"
	AuthTokenKey = "auth_token"
)

// AuthMiddleware validates the bearer token and, when a blacklist is
// configured, rejects revoked tokens. A nil blacklist skips the check.
func AuthMiddleware(jwtManager *auth.JWTManager, revoked *blacklist.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		token := parts[1]
		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if revoked.IsRevoked(c.Request.Context(), token) {
			response.Unauthorized(c, "Token has been revoked")
			c.Abort()
			return
		}

		c.Set(AuthUserKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(AuthTokenKey, token)
		c.Next()
	}
}

// GetCurrentUser returns the validated claims from the request context.
func GetCurrentUser(c *gin.Context) (*auth.JWTClaims, bool) {
	user, exists := c.Get(AuthUserKey)
	if !exists {
		return nil, false
	}

	claims, ok := user.(*auth.JWTClaims)
	return claims, ok
}

// GetCurrentUserID returns the authenticated user's id.
func GetCurrentUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}

	id, ok := userID.(int)
	return id, ok
}
