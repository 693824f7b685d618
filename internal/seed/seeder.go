package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"hackdir/internal/ids"
	"hackdir/internal/models"
	"hackdir/internal/repository"
	"hackdir/internal/security"
)

type ParticipantCreator interface {
	Create(ctx context.Context, p models.Participant) error
}

type Credential struct {
	Email    string
	Password string
}

type Seeder struct {
	participants ParticipantCreator
	log          zerolog.Logger
	hash         func(password string) (string, error)
	password     func() (string, error)
	newID        func() string
}

func NewSeeder(participants ParticipantCreator, log zerolog.Logger) *Seeder {
	return &Seeder{
		participants: participants,
		log:          log,
		hash:         security.HashPassword,
		password:     security.GenerateSecureRandomString,
		newID:        ids.New,
	}
}

// Seed creates a participant per record with a fresh random password and
// returns the credentials to hand out. Emails already registered are skipped.
func (s *Seeder) Seed(ctx context.Context, records []Record) ([]Credential, error) {
	creds := make([]Credential, 0, len(records))
	for _, rec := range records {
		password, err := s.password()
		if err != nil {
			return creds, err
		}
		hash, err := s.hash(password)
		if err != nil {
			return creds, fmt.Errorf("hash password for %s: %w", rec.Email, err)
		}

		err = s.participants.Create(ctx, models.Participant{
			ID:             rec.ID,
			Email:          strings.TrimSpace(rec.Email),
			HashedPassword: hash,
			Name:           rec.Name,
			PhoneNumber:    rec.PhoneNumber,
			Profile:        rec.Profile,
			WantsToBuild:   rec.WantsToBuild,
			HasBuilt:       optional(rec.HasBuilt),
			Website:        optional(rec.Website),
			LinkedInHandle: optional(rec.LinkedInHandle),
			GithubHandle:   optional(rec.GithubHandle),
			XHandle:        optional(rec.XHandle),
			Organization:   optional(rec.Organization),
			Team:           models.NoTeam(),
		})
		if errors.Is(err, repository.ErrEmailTaken) {
			s.log.Warn().Str("email", rec.Email).Msg("participant already registered, skipped")
			continue
		}
		if err != nil {
			return creds, fmt.Errorf("create participant %s: %w", rec.ID, err)
		}

		creds = append(creds, Credential{Email: rec.Email, Password: password})
		s.log.Info().Str("id", rec.ID).Str("name", rec.Name).Msg("participant seeded")
	}
	return creds, nil
}

// CreateAdmin inserts the organizer account.
func (s *Seeder) CreateAdmin(ctx context.Context, email, password string) (models.Participant, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.Participant{}, errors.New("admin email and password are required")
	}

	hash, err := s.hash(password)
	if err != nil {
		return models.Participant{}, fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.Participant{
		ID:             s.newID(),
		Email:          email,
		HashedPassword: hash,
		Name:           "Admin",
		PhoneNumber:    "+51000000000",
		Profile:        "Admin",
		WantsToBuild:   "Admin account",
		Organization:   optional("Hackathon PE"),
		Team:           models.NoTeam(),
	}
	if err := s.participants.Create(ctx, admin); err != nil {
		return models.Participant{}, err
	}
	return admin, nil
}

func WriteCredentials(w io.Writer, creds []Credential) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"email", "password"}); err != nil {
		return err
	}
	for _, c := range creds {
		if err := cw.Write([]string{c.Email, c.Password}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
