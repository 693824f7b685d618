package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hackdir/internal/middleware"
	"hackdir/internal/service"
)

type profileRequest struct {
	Name           string  `json:"name" binding:"required,max=120"`
	PhoneNumber    *string `json:"phoneNumber" binding:"omitempty,max=40"`
	Profile        string  `json:"profile" binding:"required,max=60"`
	WantsToBuild   *string `json:"wantsToBuild" binding:"omitempty,max=2000"`
	HasBuilt       string  `json:"hasBuilt" binding:"max=4000"`
	Website        string  `json:"website" binding:"max=300"`
	LinkedInHandle string  `json:"linkedInHandle" binding:"max=100"`
	GithubHandle   string  `json:"githubHandle" binding:"max=100"`
	XHandle        string  `json:"xHandle" binding:"max=100"`
	Organization   string  `json:"organization" binding:"max=200"`
	AvatarSeed     string  `json:"avatarSeed" binding:"max=100"`
	TeamName       *string `json:"teamName"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	current, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updated, err := h.participants.UpdateProfile(c.Request.Context(), current.User.ID, service.ProfileInput{
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		Profile:        req.Profile,
		WantsToBuild:   req.WantsToBuild,
		HasBuilt:       req.HasBuilt,
		Website:        req.Website,
		LinkedInHandle: req.LinkedInHandle,
		GithubHandle:   req.GithubHandle,
		XHandle:        req.XHandle,
		Organization:   req.Organization,
		AvatarSeed:     req.AvatarSeed,
		TeamName:       req.TeamName,
	})
	if err != nil {
		if errors.Is(err, service.ErrReservedTeamName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": h.reservedTeamMessage()})
			return
		}
		h.log.Error().Err(err).Str("user_id", current.User.ID).Msg("profile update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while updating profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"participant": newParticipantResponse(updated),
	})
}
