package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/domain/shared"
	"go.uber.org/zap"
)

// SeedOutcome describes what a seeding run did
type SeedOutcome string

// Seed outcomes
const (
	SeedSkipped SeedOutcome = "skipped" // store already had items
	SeedRemote  SeedOutcome = "remote"  // inserted the fetched remote menu
	SeedDefault SeedOutcome = "default" // remote was empty, inserted the built-in list
	SeedLocked  SeedOutcome = "locked"  // another process holds the seed guard
)

const (
	seedGuardKey       = "menu_items"
	defaultSeedLockTTL = 2 * time.Minute
)

// SeedResult is the outcome of one seeding run
type SeedResult struct {
	Outcome  SeedOutcome `json:"outcome"`
	Inserted int         `json:"inserted"`
	Err      error       `json:"-"`
}

// Seeder populates an empty store on first launch
type Seeder struct {
	repo    menu.MenuItemRepository
	source  menu.RemoteMenuSource
	guard   shared.SeedGuard
	lockTTL time.Duration
	logger  *zap.Logger
}

// SeederOption is a functional option for configuring the seeder
type SeederOption func(*Seeder)

// WithSeedGuard makes runs claim guard for ttl before touching the store
func WithSeedGuard(guard shared.SeedGuard, ttl time.Duration) SeederOption {
	return func(s *Seeder) {
		s.guard = guard
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithSeederLogger sets the logger
func WithSeederLogger(logger *zap.Logger) SeederOption {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSeeder creates a new Seeder
func NewSeeder(repo menu.MenuItemRepository, source menu.RemoteMenuSource, opts ...SeederOption) *Seeder {
	s := &Seeder{
		repo:    repo,
		source:  source,
		lockTTL: defaultSeedLockTTL,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("seeder")
	return s
}

// Seed fills the store if it is empty: the remote menu when it has entries,
// the built-in default list otherwise. It is idempotent because a non-empty
// store is never touched.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	if s.guard != nil {
		acquired, err := s.guard.Acquire(ctx, seedGuardKey, s.lockTTL)
		switch {
		case err != nil:
			s.logger.Warn("seed guard unavailable, seeding without it", zap.Error(err))
		case !acquired:
			s.logger.Info("seeding already in progress elsewhere")
			return SeedResult{Outcome: SeedLocked}, nil
		default:
			defer s.release()
		}
	}

	empty, err := s.repo.IsEmpty(ctx)
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to check store: %w", err)
	}
	if !empty {
		s.logger.Debug("store already seeded")
		return SeedResult{Outcome: SeedSkipped}, nil
	}

	outcome := SeedRemote
	remote := s.source.FetchMenu(ctx)
	if len(remote) == 0 {
		outcome = SeedDefault
		remote = menu.DefaultRemoteMenu()
	}

	items := make([]menu.MenuItem, 0, len(remote))
	for _, r := range remote {
		items = append(items, r.ToMenuItem())
	}

	if err := s.repo.InsertMany(ctx, items); err != nil {
		return SeedResult{}, fmt.Errorf("failed to store seed items: %w", err)
	}

	s.logger.Info("menu seeded",
		zap.String("outcome", string(outcome)),
		zap.Int("inserted", len(items)),
	)
	return SeedResult{Outcome: outcome, Inserted: len(items)}, nil
}

// Start runs Seed on a background goroutine. The returned channel receives
// the result, with Err set on failure, and is then closed.
func (s *Seeder) Start(ctx context.Context) <-chan SeedResult {
	done := make(chan SeedResult, 1)
	go func() {
		defer close(done)
		result, err := s.Seed(ctx)
		if err != nil {
			s.logger.Error("seeding failed", zap.Error(err))
			result.Err = err
		}
		done <- result
	}()
	return done
}

func (s *Seeder) release() {
	if err := s.guard.Release(context.Background(), seedGuardKey); err != nil {
		s.logger.Warn("failed to release seed guard", zap.Error(err))
	}
}
