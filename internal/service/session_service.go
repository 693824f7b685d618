package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hackdir/internal/models"
	"hackdir/internal/repository"
	"hackdir/internal/security"
)

// SessionTTL is the hard server-side lifetime of a session, counted from
// creation. Cookie refreshes do not extend it.
const SessionTTL = 24 * time.Hour

// ErrUnauthenticated covers every reason a token is rejected: malformed,
// unknown, expired, wrong secret, or owned by a missing participant.
var ErrUnauthenticated = errors.New("unauthenticated")

type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type ParticipantLookup interface {
	GetByID(ctx context.Context, id string) (models.Participant, error)
}

type SessionWithToken struct {
	models.Session
	// Token is "<id>.<secret>". It is the only place the raw secret exists.
	Token string
}

type ValidatedSession struct {
	Session models.Session
	User    models.Participant
}

type SessionService struct {
	sessions     SessionStore
	participants ParticipantLookup
	log          zerolog.Logger
	now          func() time.Time
	randomString func() (string, error)
}

type SessionOption func(*SessionService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionService) {
		s.now = now
	}
}

func NewSessionService(sessions SessionStore, participants ParticipantLookup, log zerolog.Logger, opts ...SessionOption) *SessionService {
	s := &SessionService{
		sessions:     sessions,
		participants: participants,
		log:          log,
		now:          time.Now,
		randomString: security.GenerateSecureRandomString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionService) Create(ctx context.Context, userID string) (SessionWithToken, error) {
	id, err := s.randomString()
	if err != nil {
		return SessionWithToken{}, err
	}
	secret, err := s.randomString()
	if err != nil {
		return SessionWithToken{}, err
	}

	session := models.Session{
		ID:         id,
		SecretHash: security.HashSecret(secret),
		UserID:     userID,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return SessionWithToken{}, fmt.Errorf("create session: %w", err)
	}

	return SessionWithToken{
		Session: session,
		Token:   id + "." + secret,
	}, nil
}

// Get returns the live session for id. Expired rows are deleted on sight and
// reported as repository.ErrSessionNotFound.
func (s *SessionService) Get(ctx context.Context, id string) (models.Session, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return models.Session{}, err
	}

	if s.now().Sub(session.CreatedAt) >= SessionTTL {
		if err := s.sessions.DeleteByID(ctx, id); err != nil {
			return models.Session{}, fmt.Errorf("delete expired session: %w", err)
		}
		return models.Session{}, repository.ErrSessionNotFound
	}

	return session, nil
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.sessions.DeleteByID(ctx, id)
}

// ValidateSessionToken resolves a token to its session and owner. Rejections
// are ErrUnauthenticated; any other error comes from the store.
func (s *SessionService) ValidateSessionToken(ctx context.Context, token string) (ValidatedSession, error) {
	id, secret, ok := splitToken(token)
	if !ok {
		return ValidatedSession{}, ErrUnauthenticated
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ValidatedSession{}, ErrUnauthenticated
		}
		return ValidatedSession{}, fmt.Errorf("get session: %w", err)
	}

	if !security.ConstantTimeEqual(security.HashSecret(secret), session.SecretHash) {
		return ValidatedSession{}, ErrUnauthenticated
	}

	user, err := s.participants.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			s.log.Warn().Str("user_id", session.UserID).Msg("session owner missing")
			return ValidatedSession{}, ErrUnauthenticated
		}
		return ValidatedSession{}, fmt.Errorf("get participant: %w", err)
	}

	return ValidatedSession{Session: session, User: user}, nil
}

// ValidateSessionTokenInMiddleware runs the same checks and reports only
// validity. Errors and panics both count as invalid.
func (s *SessionService) ValidateSessionTokenInMiddleware(ctx context.Context, token string) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("session validation panicked")
			valid = false
		}
	}()

	if _, err := s.ValidateSessionToken(ctx, token); err != nil {
		if !errors.Is(err, ErrUnauthenticated) {
			s.log.Error().Err(err).Msg("session validation error")
		}
		return false
	}
	return true
}

func splitToken(token string) (id string, secret string, ok bool) {
	id, secret, found := strings.Cut(token, ".")
	if !found || id == "" || secret == "" || strings.Contains(secret, ".") {
		return "", "", false
	}
	return id, secret, true
}
