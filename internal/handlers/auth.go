package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/scooter-rental/internal/auth"
	"github.com/ukydev/scooter-rental/internal/middleware"
	"github.com/ukydev/scooter-rental/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	auth *auth.Service
}

// Login handles staff login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Register creates a staff account. Admin only.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errorBody{Kind: "unauthorized", Message: "authentication required"}})
		return
	}
	user, err := h.auth.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser removes a staff account. Admin only.
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errorBody{Kind: "unauthorized", Message: "authentication required"}})
		return
	}
	if err := h.auth.DeleteUser(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
