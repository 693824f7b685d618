package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hackdir/internal/middleware"
	"hackdir/internal/repository"
	"hackdir/internal/service"
)

func (h HandlerSet) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":   "login",
		"action": "/api/auth/login",
	})
}

func (h HandlerSet) Directory(c *gin.Context) {
	cards, err := h.directory.ListCards(c.Request.Context(), service.DirectoryFilter{
		Profile: c.Query("profile"),
		Team:    c.Query("team"),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("list directory failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while loading participants"})
		return
	}

	resp := gin.H{
		"page":         "directory",
		"participants": cards,
	}
	if current, ok := middleware.CurrentSession(c); ok {
		resp["currentUserId"] = current.User.ID
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) ParticipantDetail(c *gin.Context) {
	participant, err := h.lookup.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Participant not found"})
			return
		}
		h.log.Error().Err(err).Msg("load participant failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while loading participant"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":        "participant",
		"participant": newParticipantResponse(participant),
	})
}

func (h HandlerSet) ProfilePage(c *gin.Context) {
	current, ok := middleware.CurrentSession(c)
	if !ok {
		c.Redirect(http.StatusTemporaryRedirect, h.cfg.Session.LoginPath)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":        "profile",
		"action":      "/api/profile",
		"participant": newParticipantResponse(current.User),
	})
}
