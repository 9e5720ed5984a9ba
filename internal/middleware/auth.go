// Package middleware holds the gin middleware shared by every route group.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/scooter-rental/internal/auth"
	"github.com/ukydev/scooter-rental/internal/models"
)

// ClaimsKey is the gin context key holding *models.Claims.
const ClaimsKey = "claims"

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate validates the bearer token and stores its claims on the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := m.authService.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", "authorization header required")
			return
		}
		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token expired"
			}
			abort(c, http.StatusUnauthorized, "unauthorized", msg)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole lets the given role and admins through.
func (m *AuthMiddleware) RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "user context not found")
			return
		}
		if claims.Role != role && claims.Role != models.RoleAdmin {
			abort(c, http.StatusForbidden, "forbidden", "insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequirePermission checks the caller's role against an action.
func (m *AuthMiddleware) RequirePermission(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "user context not found")
			return
		}
		user := &models.User{Role: claims.Role}
		if !user.HasPermission(action) {
			abort(c, http.StatusForbidden, "forbidden", "insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetClaims returns the authenticated caller, if any.
func GetClaims(c *gin.Context) (*models.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.Claims)
	return claims, ok
}

func abort(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"kind": kind, "message": message}})
}
