package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"hackdir/internal/metrics"
)

type SeedRotator interface {
	RotateShuffleSeed(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron    *cron.Cron
	seeds   SeedRotator
	spec    string
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewScheduler rotates the directory shuffle seed on spec, a six-field cron
// expression with seconds.
func NewScheduler(seeds SeedRotator, spec string, m *metrics.Metrics, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:    c,
		seeds:   seeds,
		spec:    spec,
		metrics: m,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if s.seeds == nil || s.spec == "" {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.rotateSeed); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for an in-flight rotation or ctx.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) rotateSeed() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	seed, err := s.seeds.RotateShuffleSeed(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("rotate shuffle seed failed")
		return
	}
	s.metrics.ObserveSeedRotation()
	s.log.Debug().Int64("seed", seed).Msg("shuffle seed rotated")
}
