package handlers

import (
	"errors"

	"hackdir/internal/models"
	"hackdir/internal/service"
)

type participantResponse struct {
	ID             string                 `json:"id"`
	Email          string                 `json:"email"`
	Name           string                 `json:"name"`
	PhoneNumber    string                 `json:"phoneNumber"`
	Profile        string                 `json:"profile"`
	WantsToBuild   string                 `json:"wantsToBuild"`
	HasBuilt       *string                `json:"hasBuilt"`
	Website        *string                `json:"website"`
	LinkedInHandle *string                `json:"linkedInHandle"`
	GithubHandle   *string                `json:"githubHandle"`
	XHandle        *string                `json:"xHandle"`
	Organization   *string                `json:"organization"`
	AvatarSeed     *string                `json:"avatarSeed"`
	AvatarURL      string                 `json:"avatarUrl"`
	TeamName       models.TeamAffiliation `json:"teamName"`
	HasTeam        bool                   `json:"hasTeam"`
}

func newParticipantResponse(p models.Participant) participantResponse {
	return participantResponse{
		ID:             p.ID,
		Email:          p.Email,
		Name:           p.Name,
		PhoneNumber:    p.PhoneNumber,
		Profile:        p.Profile,
		WantsToBuild:   p.WantsToBuild,
		HasBuilt:       p.HasBuilt,
		Website:        p.Website,
		LinkedInHandle: p.LinkedInHandle,
		GithubHandle:   p.GithubHandle,
		XHandle:        p.XHandle,
		Organization:   p.Organization,
		AvatarSeed:     p.AvatarSeed,
		AvatarURL:      p.AvatarURL(),
		TeamName:       p.Team,
		HasTeam:        !p.Team.IsNone(),
	}
}

func errorsIsUnauthenticated(err error) bool {
	return errors.Is(err, service.ErrUnauthenticated)
}
