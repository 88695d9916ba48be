package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"journal-backend/internal/repository"
)

// TokenHandler manages the caller's push-notification devices.
type TokenHandler struct {
	Tokens *repository.TokenRepository
}

func (h *TokenHandler) Register(r gin.IRouter) {
	r.POST("/devices", h.register)
	r.DELETE("/devices", h.unregister)
}

type registerTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"`
}

type unregisterTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type tokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (h *TokenHandler) register(c *gin.Context) {
	var req registerTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if platform == "" {
		platform = "android"
	}

	uid := userID(c)
	h.Tokens.RegisterToken(uid, strings.TrimSpace(req.Token), platform, time.Now().Unix())

	c.JSON(http.StatusOK, tokenResponse{
		Success: true,
		Message: "Token registered successfully",
		Count:   h.Tokens.GetTokenCount(uid),
	})
}

func (h *TokenHandler) unregister(c *gin.Context) {
	var req unregisterTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	uid := userID(c)
	h.Tokens.UnregisterToken(uid, strings.TrimSpace(req.Token))

	c.JSON(http.StatusOK, tokenResponse{
		Success: true,
		Message: "Token unregistered successfully",
		Count:   h.Tokens.GetTokenCount(uid),
	})
}
