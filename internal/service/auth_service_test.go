package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackdir/internal/models"
	"hackdir/internal/security"
)

func newAuthFixture(t *testing.T, hash string, upgrade bool) (*AuthService, *memoryParticipants, *memorySessions) {
	t.Helper()
	participants := newMemoryParticipants(models.Participant{
		ID:             "user-1",
		Email:          "ada@example.com",
		HashedPassword: hash,
		Name:           "Ada",
	})
	sessions := newMemorySessions()
	clock := &fixedClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	sessionSvc := NewSessionService(sessions, participants, zerolog.Nop(), WithClock(clock.Now))
	return NewAuthService(participants, sessionSvc, upgrade, zerolog.Nop()), participants, sessions
}

func TestAuthService_Login(t *testing.T) {
	hash, err := security.HashPassword("correct horse")
	require.NoError(t, err)
	svc, _, sessions := newAuthFixture(t, hash, true)

	res, err := svc.Login(context.Background(), LoginInput{Email: "  ada@example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "user-1", res.User.ID)
	assert.NotEmpty(t, res.Session.Token)
	assert.True(t, sessions.has(res.Session.ID))
}

func TestAuthService_InvalidCredentials(t *testing.T) {
	hash, err := security.HashPassword("correct horse")
	require.NoError(t, err)
	svc, _, _ := newAuthFixture(t, hash, true)

	_, err = svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_MalformedStoredHash(t *testing.T) {
	svc, _, _ := newAuthFixture(t, "$argon2id$broken", true)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ada@example.com", Password: "anything"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_UpgradesLegacyHash(t *testing.T) {
	svc, participants, _ := newAuthFixture(t, security.HashLegacyPassword("hunter2"), true)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "hunter2"})
	require.NoError(t, err)

	stored, err := participants.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, security.IsLegacyHash(stored.HashedPassword))

	ok, err := security.VerifyPassword("hunter2", stored.HashedPassword)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "hunter2"})
	require.NoError(t, err)
}

func TestAuthService_LegacyUpgradeDisabled(t *testing.T) {
	legacy := security.HashLegacyPassword("hunter2")
	svc, participants, _ := newAuthFixture(t, legacy, false)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "hunter2"})
	require.NoError(t, err)

	stored, err := participants.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, legacy, stored.HashedPassword)
}

func TestAuthService_Logout(t *testing.T) {
	hash, err := security.HashPassword("pw")
	require.NoError(t, err)
	svc, _, sessions := newAuthFixture(t, hash, true)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Session.ID))
	assert.False(t, sessions.has(res.Session.ID))
}
