// Package records holds the current solicitation snapshot. The scheduler
// refreshes it once per due batch; everything else only reads.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Source retrieves the current solicitations of one upstream portal.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Solicitation, error)
}

// Store is a single-writer multi-reader snapshot of the retrieved
// solicitations. Readers always see a complete snapshot: Refresh swaps the
// slice in one step and only after every source succeeded.
type Store struct {
	sources []Source

	mu          sync.RWMutex
	snapshot    []domain.Solicitation
	refreshedAt time.Time
}

func NewStore(sources ...Source) *Store {
	return &Store{
		sources:  sources,
		snapshot: make([]domain.Solicitation, 0),
	}
}

// Refresh fetches all sources in parallel and replaces the snapshot. If any
// source fails the previous snapshot stays in place, so a partially updated
// store is never observable.
func (s *Store) Refresh(ctx context.Context) error {
	results := make([][]domain.Solicitation, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range s.sources {
		i, source := i, source
		g.Go(func() error {
			fetched, err := source.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("source %s: %w", source.Name(), err)
			}
			results[i] = fetched
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fresh := make([]domain.Solicitation, 0)
	for _, result := range results {
		fresh = append(fresh, result...)
	}

	s.mu.Lock()
	s.snapshot = fresh
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	slog.Info("record store refreshed", "sources", len(s.sources), "records", len(fresh))

	return nil
}

// ListAll returns a copy of the current snapshot.
func (s *Store) ListAll() []domain.Solicitation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Solicitation, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// RefreshedAt returns when the snapshot was last replaced, zero if never.
func (s *Store) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}
