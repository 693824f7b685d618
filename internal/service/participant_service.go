package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"hackdir/internal/config"
	"hackdir/internal/models"
)

var (
	ErrParticipantIDRequired = errors.New("participant id required")
	ErrSelfTeamChange        = errors.New("own team must be changed through the profile")
	ErrRemoveFromOtherTeam   = errors.New("participant is on a different team")
	ErrOnOtherTeam           = errors.New("participant already belongs to a different team")
	ErrReservedTeamMember    = errors.New("participant is on the reserved team")
	ErrTeamNameLength        = errors.New("team name length out of range")
	ErrReservedTeamName      = errors.New("team name is reserved")
	ErrTeamFull              = errors.New("team is full")
)

const (
	TeamActionAssigned = "assigned"
	TeamActionRemoved  = "removed"
)

type ParticipantStore interface {
	GetByID(ctx context.Context, id string) (models.Participant, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.Participant, error)
	UpdateTeam(ctx context.Context, id string, team models.TeamAffiliation) (models.Participant, error)
	CountByTeam(ctx context.Context, team string, excludeID string) (int, error)
}

// Invalidator drops derived views after a participant changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type ParticipantService struct {
	participants ParticipantStore
	directory    Invalidator
	teams        config.TeamsConfig
	log          zerolog.Logger
}

func NewParticipantService(participants ParticipantStore, directory Invalidator, teams config.TeamsConfig, log zerolog.Logger) *ParticipantService {
	return &ParticipantService{
		participants: participants,
		directory:    directory,
		teams:        teams,
		log:          log,
	}
}

// ProfileInput replaces the editable profile. PhoneNumber and WantsToBuild
// keep their stored value when nil.
type ProfileInput struct {
	Name           string
	PhoneNumber    *string
	Profile        string
	WantsToBuild   *string
	HasBuilt       string
	Website        string
	LinkedInHandle string
	GithubHandle   string
	XHandle        string
	Organization   string
	AvatarSeed     string
	TeamName       *string
}

func (s *ParticipantService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (models.Participant, error) {
	team := models.NoTeam()
	if input.TeamName != nil {
		name := strings.TrimSpace(*input.TeamName)
		if s.isReserved(name) {
			return models.Participant{}, ErrReservedTeamName
		}
		// out-of-range names are dropped rather than rejected
		if n := utf8.RuneCountInString(name); n > 0 && n <= s.teams.MaxNameLength {
			team = models.Team(name)
		}
	}

	phone, wants, err := s.keptFields(ctx, userID, input)
	if err != nil {
		return models.Participant{}, err
	}

	updated, err := s.participants.UpdateProfile(ctx, userID, models.ProfileUpdate{
		Name:           input.Name,
		PhoneNumber:    phone,
		Profile:        input.Profile,
		WantsToBuild:   wants,
		HasBuilt:       optional(input.HasBuilt),
		Website:        optional(input.Website),
		LinkedInHandle: optional(input.LinkedInHandle),
		GithubHandle:   optional(input.GithubHandle),
		XHandle:        optional(input.XHandle),
		Organization:   optional(input.Organization),
		AvatarSeed:     optional(input.AvatarSeed),
		Team:           team,
	})
	if err != nil {
		return models.Participant{}, fmt.Errorf("update profile: %w", err)
	}

	s.invalidate(ctx)
	return updated, nil
}

func (s *ParticipantService) keptFields(ctx context.Context, userID string, input ProfileInput) (string, string, error) {
	if input.PhoneNumber != nil && input.WantsToBuild != nil {
		return *input.PhoneNumber, *input.WantsToBuild, nil
	}
	current, err := s.participants.GetByID(ctx, userID)
	if err != nil {
		return "", "", fmt.Errorf("load participant: %w", err)
	}
	phone, wants := current.PhoneNumber, current.WantsToBuild
	if input.PhoneNumber != nil {
		phone = *input.PhoneNumber
	}
	if input.WantsToBuild != nil {
		wants = *input.WantsToBuild
	}
	return phone, wants, nil
}

type TeamInput struct {
	ParticipantID string
	// TeamName nil or blank removes the participant from their team.
	TeamName *string
}

type TeamResult struct {
	Participant models.Participant
	Action      string
}

// ManageTeam lets actor assign another participant to a team or remove them
// from one. Reads and writes are not transactional, so the capacity check can
// race with a concurrent assignment.
func (s *ParticipantService) ManageTeam(ctx context.Context, actor models.Participant, input TeamInput) (TeamResult, error) {
	if input.ParticipantID == "" {
		return TeamResult{}, ErrParticipantIDRequired
	}
	if input.ParticipantID == actor.ID {
		return TeamResult{}, ErrSelfTeamChange
	}

	target, err := s.participants.GetByID(ctx, input.ParticipantID)
	if err != nil {
		return TeamResult{}, err
	}

	onOtherTeam := !target.Team.IsNone() && !target.Team.SameTeam(actor.Team)

	if input.TeamName == nil || *input.TeamName == "" {
		if onOtherTeam {
			return TeamResult{}, ErrRemoveFromOtherTeam
		}
		updated, err := s.participants.UpdateTeam(ctx, target.ID, models.NoTeam())
		if err != nil {
			return TeamResult{}, fmt.Errorf("remove from team: %w", err)
		}
		s.invalidate(ctx)
		return TeamResult{Participant: updated, Action: TeamActionRemoved}, nil
	}

	if onOtherTeam {
		return TeamResult{}, ErrOnOtherTeam
	}
	if target.Team.Is(s.teams.ReservedName) {
		return TeamResult{}, ErrReservedTeamMember
	}

	name := strings.TrimSpace(*input.TeamName)
	if n := utf8.RuneCountInString(name); n == 0 || n > s.teams.MaxNameLength {
		return TeamResult{}, ErrTeamNameLength
	}
	if s.isReserved(name) {
		return TeamResult{}, ErrReservedTeamName
	}

	members, err := s.participants.CountByTeam(ctx, name, target.ID)
	if err != nil {
		return TeamResult{}, err
	}
	if members >= s.teams.MaxSize {
		return TeamResult{}, ErrTeamFull
	}

	updated, err := s.participants.UpdateTeam(ctx, target.ID, models.Team(name))
	if err != nil {
		return TeamResult{}, fmt.Errorf("assign team: %w", err)
	}
	s.invalidate(ctx)
	return TeamResult{Participant: updated, Action: TeamActionAssigned}, nil
}

func (s *ParticipantService) isReserved(name string) bool {
	return s.teams.ReservedName != "" && strings.EqualFold(name, s.teams.ReservedName)
}

func (s *ParticipantService) invalidate(ctx context.Context) {
	if s.directory == nil {
		return
	}
	if err := s.directory.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("directory cache invalidation failed")
	}
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
