package service

import (
	"context"
	"sync"
	"time"

	"hackdir/internal/models"
	"hackdir/internal/repository"
)

type memorySessions struct {
	mu      sync.Mutex
	rows    map[string]models.Session
	getErr  error
	panicOn string
}

func newMemorySessions() *memorySessions {
	return &memorySessions{rows: map[string]models.Session{}}
}

func (m *memorySessions) Create(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = s
	return nil
}

func (m *memorySessions) GetByID(_ context.Context, id string) (models.Session, error) {
	if m.panicOn != "" && id == m.panicOn {
		panic("store exploded")
	}
	if m.getErr != nil {
		return models.Session{}, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return s, nil
}

func (m *memorySessions) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memorySessions) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[id]
	return ok
}

type memoryParticipants struct {
	mu      sync.Mutex
	rows    map[string]models.Participant
	listErr error
	lists   int
}

func newMemoryParticipants(ps ...models.Participant) *memoryParticipants {
	m := &memoryParticipants{rows: map[string]models.Participant{}}
	for _, p := range ps {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memoryParticipants) GetByID(_ context.Context, id string) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return models.Participant{}, repository.ErrParticipantNotFound
	}
	return p, nil
}

func (m *memoryParticipants) FindByEmail(_ context.Context, email string) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.Email == email {
			return p, nil
		}
	}
	return models.Participant{}, repository.ErrParticipantNotFound
}

func (m *memoryParticipants) UpdatePasswordHash(_ context.Context, id string, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.rows[id]
	p.HashedPassword = hash
	m.rows[id] = p
	return nil
}

func (m *memoryParticipants) List(_ context.Context) ([]models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Participant, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryParticipants) UpdateProfile(_ context.Context, id string, u models.ProfileUpdate) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return models.Participant{}, repository.ErrParticipantNotFound
	}
	p.Name = u.Name
	p.PhoneNumber = u.PhoneNumber
	p.Profile = u.Profile
	p.WantsToBuild = u.WantsToBuild
	p.HasBuilt = u.HasBuilt
	p.Website = u.Website
	p.LinkedInHandle = u.LinkedInHandle
	p.GithubHandle = u.GithubHandle
	p.XHandle = u.XHandle
	p.Organization = u.Organization
	p.AvatarSeed = u.AvatarSeed
	p.Team = u.Team
	m.rows[id] = p
	return p, nil
}

func (m *memoryParticipants) UpdateTeam(_ context.Context, id string, team models.TeamAffiliation) (models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return models.Participant{}, repository.ErrParticipantNotFound
	}
	p.Team = team
	m.rows[id] = p
	return p, nil
}

func (m *memoryParticipants) CountByTeam(_ context.Context, team string, excludeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, p := range m.rows {
		if p.ID == excludeID {
			continue
		}
		if name, ok := p.Team.Name(); ok && name == team {
			n++
		}
	}
	return n, nil
}

type countingInvalidator struct {
	calls int
	err   error
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return c.err
}

type memoryDirectoryCache struct {
	payload  []byte
	cached   bool
	seed     int64
	seedErr  error
	cardsErr error
	stored   int
}

func (m *memoryDirectoryCache) Cards(context.Context) ([]byte, bool, error) {
	if m.cardsErr != nil {
		return nil, false, m.cardsErr
	}
	return m.payload, m.cached, nil
}

func (m *memoryDirectoryCache) StoreCards(_ context.Context, payload []byte, _ time.Duration) error {
	m.payload = payload
	m.cached = true
	m.stored++
	return nil
}

func (m *memoryDirectoryCache) ShuffleSeed(context.Context) (int64, error) {
	return m.seed, m.seedErr
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func strPtr(s string) *string { return &s }
