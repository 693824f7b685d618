package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"hackdir/internal/models"
	"hackdir/internal/repository"
	"hackdir/internal/security"
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type ParticipantAccounts interface {
	FindByEmail(ctx context.Context, email string) (models.Participant, error)
	UpdatePasswordHash(ctx context.Context, id string, hash string) error
}

type SessionIssuer interface {
	Create(ctx context.Context, userID string) (SessionWithToken, error)
	Delete(ctx context.Context, id string) error
}

type AuthService struct {
	participants        ParticipantAccounts
	sessions            SessionIssuer
	upgradeLegacyHashes bool
	log                 zerolog.Logger
}

func NewAuthService(participants ParticipantAccounts, sessions SessionIssuer, upgradeLegacyHashes bool, log zerolog.Logger) *AuthService {
	return &AuthService{
		participants:        participants,
		sessions:            sessions,
		upgradeLegacyHashes: upgradeLegacyHashes,
		log:                 log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Session SessionWithToken
	User    models.Participant
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	email := strings.TrimSpace(input.Email)

	user, err := s.participants.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find participant: %w", err)
	}

	ok, err := security.VerifyPassword(input.Password, user.HashedPassword)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("stored password hash unreadable")
		return LoginResult{}, ErrInvalidCredentials
	}
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	if security.IsLegacyHash(user.HashedPassword) {
		s.upgradeLegacyHash(ctx, user.ID, input.Password)
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Session: session, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// upgradeLegacyHash replaces an unsalted SHA-256 password hash with argon2id.
// Failures are logged; the login itself already succeeded.
func (s *AuthService) upgradeLegacyHash(ctx context.Context, userID string, password string) {
	s.log.Warn().Str("user_id", userID).Msg("legacy password hash verified")
	if !s.upgradeLegacyHashes {
		return
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("rehash password failed")
		return
	}
	if err := s.participants.UpdatePasswordHash(ctx, userID, hash); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("store upgraded password hash failed")
	}
}
