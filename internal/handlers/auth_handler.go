package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hackcampus/apply-backend/internal/dtos"
	"github.com/hackcampus/apply-backend/internal/middleware"
	"github.com/hackcampus/apply-backend/internal/services"
)

type AuthHandler struct {
	Users    *services.UserService
	Sessions *middleware.Sessions
}

func NewAuthHandler(users *services.UserService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{Users: users, Sessions: sessions}
}

// Register is POST /users.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	user, err := h.Users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login is POST /sessions. A successful login sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Sessions.Issue(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout is DELETE /sessions.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

// Me is GET /me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
