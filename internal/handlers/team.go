package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hackdir/internal/middleware"
	"hackdir/internal/repository"
	"hackdir/internal/service"
)

// teamErrors maps service errors to responses. Messages with a verb are
// formatted with the reserved team name.
var teamErrors = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrParticipantIDRequired, http.StatusBadRequest, "Participant ID is required"},
	{service.ErrSelfTeamChange, http.StatusBadRequest, "Use profile update to change your own team"},
	{repository.ErrParticipantNotFound, http.StatusNotFound, "Participant not found"},
	{service.ErrRemoveFromOtherTeam, http.StatusForbidden, "Cannot remove participant from a different team"},
	{service.ErrOnOtherTeam, http.StatusForbidden, "Participant already belongs to a different team"},
	{service.ErrReservedTeamMember, http.StatusForbidden, "Cannot modify participants in the %s team"},
	{service.ErrTeamNameLength, http.StatusBadRequest, "Team name must be between 1 and 50 characters"},
	{service.ErrReservedTeamName, http.StatusBadRequest, reservedTeamFormat},
	{service.ErrTeamFull, http.StatusConflict, "Team is full"},
}

const reservedTeamFormat = "Team name '%s' is reserved and cannot be used"

func (h HandlerSet) reservedTeamName() string {
	return strings.ToUpper(h.cfg.Teams.ReservedName)
}

func (h HandlerSet) reservedTeamMessage() string {
	return fmt.Sprintf(reservedTeamFormat, h.reservedTeamName())
}

type teamRequest struct {
	ParticipantID string  `json:"participantId"`
	TeamName      *string `json:"teamName"`
}

func (h HandlerSet) ManageTeam(c *gin.Context) {
	current, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.participants.ManageTeam(c.Request.Context(), current.User, service.TeamInput{
		ParticipantID: req.ParticipantID,
		TeamName:      req.TeamName,
	})
	if err != nil {
		for _, te := range teamErrors {
			if errors.Is(err, te.err) {
				msg := te.message
				if strings.Contains(msg, "%s") {
					msg = fmt.Sprintf(msg, h.reservedTeamName())
				}
				c.JSON(te.status, gin.H{"error": msg})
				return
			}
		}
		h.log.Error().Err(err).Str("user_id", current.User.ID).Msg("team management failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while managing team"})
		return
	}

	h.log.Info().
		Str("user_id", current.User.ID).
		Str("participant_id", result.Participant.ID).
		Str("action", result.Action).
		Msg("team updated")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"participant": newParticipantResponse(result.Participant),
		"action":      result.Action,
	})
}
