package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"hackdir/internal/cache"
	"hackdir/internal/config"
	"hackdir/internal/models"
	"hackdir/internal/repository"
	"hackdir/internal/security"
	"hackdir/internal/service"
)

const testHost = "hack.example"

type memStore struct {
	mu           sync.Mutex
	participants map[string]models.Participant
	sessions     map[string]models.Session
	sessionErr   error
}

func (m *memStore) Create(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[id]
	if !ok {
		return models.Participant{}, repository.ErrParticipantNotFound
	}
	return p, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.Email == email {
			return p, nil
		}
	}
	return models.Participant{}, repository.ErrParticipantNotFound
}

func (m *memStore) UpdatePasswordHash(_ context.Context, id string, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.participants[id]
	p.HashedPassword = hash
	m.participants[id] = p
	return nil
}

func (m *memStore) List(_ context.Context) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Participant, 0, len(m.participants))
	for _, p := range m.participants {
		out = append(out, p)
	}
	return out, nil
}

func (m *memStore) UpdateProfile(_ context.Context, id string, u models.ProfileUpdate) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[id]
	if !ok {
		return models.Participant{}, repository.ErrParticipantNotFound
	}
	p.Name, p.PhoneNumber, p.Profile, p.WantsToBuild = u.Name, u.PhoneNumber, u.Profile, u.WantsToBuild
	p.HasBuilt, p.Website, p.Organization, p.AvatarSeed = u.HasBuilt, u.Website, u.Organization, u.AvatarSeed
	p.LinkedInHandle, p.GithubHandle, p.XHandle = u.LinkedInHandle, u.GithubHandle, u.XHandle
	p.Team = u.Team
	m.participants[id] = p
	return p, nil
}

func (m *memStore) UpdateTeam(_ context.Context, id string, team models.TeamAffiliation) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[id]
	if !ok {
		return models.Participant{}, repository.ErrParticipantNotFound
	}
	p.Team = team
	m.participants[id] = p
	return p, nil
}

func (m *memStore) CountByTeam(_ context.Context, team string, excludeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.participants {
		if name, ok := p.Team.Name(); ok && name == team && p.ID != excludeID {
			n++
		}
	}
	return n, nil
}

// memSessions adapts memStore to the session store shape.
type memSessions struct{ *memStore }

func (s memSessions) GetByID(_ context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessionErr != nil {
		return models.Session{}, s.sessionErr
	}
	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return sess, nil
}

func (s memSessions) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s memSessions) failLookups(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionErr = err
}

func (s memSessions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

type testApp struct {
	router   *gin.Engine
	store    *memStore
	sessions memSessions
}

var fastHash = security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

var testTeams = config.TeamsConfig{MaxSize: 2, ReservedName: "admin", MaxNameLength: 50}

func newTestApp(t *testing.T, people ...models.Participant) *testApp {
	t.Helper()
	return newTestAppWithTeams(t, testTeams, people...)
}

func newTestAppWithTeams(t *testing.T, teams config.TeamsConfig, people ...models.Participant) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memStore{participants: map[string]models.Participant{}, sessions: map[string]models.Session{}}
	for _, p := range people {
		store.participants[p.ID] = p
	}
	sessions := memSessions{store}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	directoryCache := cache.NewDirectoryCache(client)

	cfg := &config.AppConfig{
		Environment: "test",
		Session:     config.SessionConfig{CookieName: "session", LoginPath: "/login", HomePath: "/"},
		Teams:       teams,
	}

	log := zerolog.Nop()
	sessionSvc := service.NewSessionService(sessions, store, log)
	svc := Services{
		Auth:         service.NewAuthService(store, sessionSvc, true, log),
		Sessions:     sessionSvc,
		Participants: service.NewParticipantService(store, directoryCache, cfg.Teams, log),
		Directory:    service.NewDirectoryService(store, directoryCache, time.Minute, log),
		Lookup:       store,
	}
	health := HealthChecks{
		Database: func(context.Context) error { return nil },
		Cache:    func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}

	router := gin.New()
	NewHandlerSet(log, cfg, svc, health, nil).Register(router.Group(""))

	return &testApp{router: router, store: store, sessions: sessions}
}

func participant(t *testing.T, id, email, password string, team models.TeamAffiliation) models.Participant {
	t.Helper()
	hash, err := security.HashPasswordWithParams(password, fastHash)
	require.NoError(t, err)
	return models.Participant{ID: id, Email: email, HashedPassword: hash, Name: id, Profile: "Engineer", Team: team}
}

type request struct {
	method string
	path   string
	body   any
	token  string
	origin string
}

func (a *testApp) do(t *testing.T, r request) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &body)
	req.Host = testHost
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.AddCookie(&http.Cookie{Name: "session", Value: r.token})
	}
	if r.origin != "" {
		req.Header.Set("Origin", r.origin)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	w := a.do(t, request{
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   map[string]string{"email": email, "password": password},
		origin: "http://" + testHost,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c := responseCookie(w)
	require.NotNil(t, c)
	return c.Value
}

func responseCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
