package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-backend/internal/usecase"
)

type AuthHandler struct {
	Accounts *usecase.AccountService
}

// RegisterPublic mounts the endpoints that issue tokens.
func (h *AuthHandler) RegisterPublic(r gin.IRouter) {
	g := r.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
}

func (h *AuthHandler) Register(r gin.IRouter) {
	g := r.Group("/auth")
	g.GET("/me", h.me)
	g.PATCH("/me", h.updateMe)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

func (h *AuthHandler) register(c *gin.Context) {
	var req usecase.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Accounts.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	pair, err := h.Accounts.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": pair.Access, "access_expires_at": pair.AccessExpiresAt})
}

func (h *AuthHandler) me(c *gin.Context) {
	user, err := h.Accounts.Profile(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) updateMe(c *gin.Context) {
	var patch usecase.ProfilePatch
	if !bindJSON(c, &patch) {
		return
	}
	user, err := h.Accounts.UpdateProfile(c.Request.Context(), userID(c), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
