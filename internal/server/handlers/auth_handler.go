package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/auth"
)

// Authenticator checks operator credentials.
type Authenticator interface {
	Login(email, password string) (auth.Token, error)
}

// AuthHandler handles operator login.
type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthHandler(authenticator Authenticator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: authenticator, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		h.logger.Warn("operator login failed", zap.String("client_ip", c.ClientIP()))
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("operator logged in")
	c.JSON(http.StatusOK, token)
}
