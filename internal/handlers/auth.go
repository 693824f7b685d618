package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hackdir/internal/middleware"
	"hackdir/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.ObserveLogin("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.metrics.ObserveLogin("invalid")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.metrics.ObserveLogin("error")
		h.log.Error().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during login"})
		return
	}

	h.metrics.ObserveLogin("success")
	h.log.Info().Str("user_id", result.User.ID).Msg("participant logged in")

	middleware.SetSessionCookie(c, h.cookie(), result.Session.Token)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h HandlerSet) Logout(c *gin.Context) {
	current, ok, err := middleware.CurrentSessionErr(c)
	if err == nil && ok {
		err = h.auth.Logout(c.Request.Context(), current.Session.ID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("request_id", middleware.RequestIDFrom(c)).Msg("logout failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred during logout"})
		return
	}

	middleware.ClearSessionCookie(c, h.cookie())
	c.JSON(http.StatusOK, gin.H{"success": true})
}
