package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hackdir/internal/models"
)

// shuffleWindow matches the default seed rotation and is used when the
// shared seed cannot be read.
const shuffleWindow = 20 * time.Second

type ParticipantLister interface {
	List(ctx context.Context) ([]models.Participant, error)
}

type DirectoryCache interface {
	Cards(ctx context.Context) ([]byte, bool, error)
	StoreCards(ctx context.Context, payload []byte, ttl time.Duration) error
	ShuffleSeed(ctx context.Context) (int64, error)
}

// ParticipantCard is the public summary shown in the directory grid.
type ParticipantCard struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Profile      string                 `json:"profile"`
	WantsToBuild string                 `json:"wantsToBuild"`
	Organization *string                `json:"organization"`
	TeamName     models.TeamAffiliation `json:"teamName"`
	HasTeam      bool                   `json:"hasTeam"`
	AvatarURL    string                 `json:"avatarUrl"`
}

func NewParticipantCard(p models.Participant) ParticipantCard {
	return ParticipantCard{
		ID:           p.ID,
		Name:         p.Name,
		Profile:      p.Profile,
		WantsToBuild: p.WantsToBuild,
		Organization: p.Organization,
		TeamName:     p.Team,
		HasTeam:      !p.Team.IsNone(),
		AvatarURL:    p.AvatarURL(),
	}
}

type cachedCard struct {
	ParticipantCard
	TeamName *string `json:"teamName"`
}

// DirectoryFilter narrows the listing. Team is "" for everyone, "none",
// "any", or an exact team name.
type DirectoryFilter struct {
	Profile string
	Team    string
}

type DirectoryService struct {
	participants ParticipantLister
	cache        DirectoryCache
	ttl          time.Duration
	log          zerolog.Logger
	now          func() time.Time
}

func NewDirectoryService(participants ParticipantLister, cache DirectoryCache, ttl time.Duration, log zerolog.Logger) *DirectoryService {
	return &DirectoryService{
		participants: participants,
		cache:        cache,
		ttl:          ttl,
		log:          log,
		now:          time.Now,
	}
}

// ListCards returns the directory in the current shuffle order. Cache
// failures fall back to the store.
func (s *DirectoryService) ListCards(ctx context.Context, filter DirectoryFilter) ([]ParticipantCard, error) {
	cards, err := s.loadCards(ctx)
	if err != nil {
		return nil, err
	}

	seed, err := s.cache.ShuffleSeed(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("read shuffle seed failed")
		seed = s.now().Unix() / int64(shuffleWindow/time.Second)
	}
	shuffle(cards, seed)

	return applyFilter(cards, filter), nil
}

func (s *DirectoryService) loadCards(ctx context.Context) ([]ParticipantCard, error) {
	payload, ok, err := s.cache.Cards(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("read directory cache failed")
	}
	if ok {
		cards, err := decodeCards(payload)
		if err == nil {
			return cards, nil
		}
		s.log.Warn().Err(err).Msg("decode directory cache failed")
	}

	participants, err := s.participants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	cards := make([]ParticipantCard, 0, len(participants))
	for _, p := range participants {
		cards = append(cards, NewParticipantCard(p))
	}

	if payload, err := json.Marshal(cards); err == nil {
		if err := s.cache.StoreCards(ctx, payload, s.ttl); err != nil {
			s.log.Warn().Err(err).Msg("write directory cache failed")
		}
	}

	return cards, nil
}

func decodeCards(payload []byte) ([]ParticipantCard, error) {
	var raw []cachedCard
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	cards := make([]ParticipantCard, 0, len(raw))
	for _, c := range raw {
		card := c.ParticipantCard
		card.TeamName = models.TeamFromNullable(c.TeamName)
		cards = append(cards, card)
	}
	return cards, nil
}

func shuffle(cards []ParticipantCard, seed int64) {
	r := rand.New(rand.NewSource(seed))
	r.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

func applyFilter(cards []ParticipantCard, filter DirectoryFilter) []ParticipantCard {
	if filter.Profile == "" && filter.Team == "" {
		return cards
	}

	out := cards[:0]
	for _, c := range cards {
		if filter.Profile != "" && !strings.EqualFold(c.Profile, filter.Profile) {
			continue
		}
		switch filter.Team {
		case "":
		case "none":
			if c.HasTeam {
				continue
			}
		case "any":
			if !c.HasTeam {
				continue
			}
		default:
			if name, ok := c.TeamName.Name(); !ok || name != filter.Team {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
