package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	AuthUserKey = "authUser"
	UserIDKey   = "userID"
)

// Authenticator resolves a bearer token to the calling user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AuthUser, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

func isWebSocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

// JWTAuth requires a valid token for an existing, active user. Browsers cannot set headers
// on WebSocket upgrades, so those requests may pass the token as ?token=.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		switch {
		case authHeader != "":
			token, err := auth.ExtractBearerToken(authHeader)
			if err != nil {
				HandleAPIError(c, err)
				return
			}
			tokenString = token
		case isWebSocketUpgrade(c) && c.Query("token") != "":
			tokenString = c.Query("token")
		default:
			AbortUnauthorized(c, "Authorization header missing")
			return
		}

		user, err := m.authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(AuthUserKey, user)
		c.Set(UserIDKey, user.ID)
		c.Next()
	}
}

// RoleRequired rejects authenticated callers without the given role. It must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired(role models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			AbortUnauthorized(c, "User information not found")
			return
		}
		if user.Role != role {
			AbortForbidden(c, "You don't have sufficient permissions for this operation")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the caller attached by JWTAuth
func CurrentUser(c *gin.Context) (*models.AuthUser, bool) {
	value, exists := c.Get(AuthUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.AuthUser)
	return user, ok && user != nil
}
