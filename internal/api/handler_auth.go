package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"improvehub/internal/service/auth"
	"improvehub/pkg/logger"
)

type AuthHandler struct {
	auth   *auth.Service
	logger *zap.Logger
}

func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: svc, logger: logger}
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}

	token, profile, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status := statusOf(err)
		if status == http.StatusInternalServerError {
			logger.WithTrace(c.Request.Context(), h.logger).Error("Login failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "profile store unavailable"})
			return
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"profile": profile,
	})
}
