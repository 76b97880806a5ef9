package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumiere-video/lumiere/internal/domain/model"
	"github.com/lumiere-video/lumiere/internal/domain/payout"
)

// CatalogStore tracks catalog entries, their monthly view counters and
// closed payout runs.
type CatalogStore interface {
	// Register adds or updates a catalog entry's revenue share.
	Register(ctx context.Context, entityID string, revenueSharePct float64) error

	// AddViews accumulates monthly views for an entity.
	// Returns ErrUnknownEntity for unregistered entities.
	AddViews(ctx context.Context, entityID string, views int64) error

	// CloseMonth computes the payout allocations for month, records the
	// run and resets every view counter. The whole step is atomic: a
	// failure (e.g. month already closed) leaves counters untouched.
	CloseMonth(ctx context.Context, month string, pool float64) (model.PayoutRun, error)

	// Run returns the recorded payout run for a closed month.
	// Returns ErrNotFound when the month was never closed.
	Run(ctx context.Context, month string) (model.PayoutRun, error)
}

type catalogEntry struct {
	revenueSharePct float64
	monthlyViews    int64
}

// InMemoryCatalogStore implements CatalogStore with one mutex guarding
// both counters and runs, which is what makes CloseMonth transactional.
type InMemoryCatalogStore struct {
	mu      sync.Mutex
	entries map[string]*catalogEntry
	runs    map[string]model.PayoutRun
	nowFn   func() time.Time
}

// NewInMemoryCatalogStore creates an empty catalog store.
func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		entries: make(map[string]*catalogEntry),
		runs:    make(map[string]model.PayoutRun),
		nowFn:   time.Now,
	}
}

// Register adds or updates a catalog entry.
func (s *InMemoryCatalogStore) Register(_ context.Context, entityID string, revenueSharePct float64) error {
	if revenueSharePct < 0 || revenueSharePct > 100 {
		return fmt.Errorf("entity %s share %.2f: %w", entityID, revenueSharePct, ErrInvalidShare)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[entityID]; ok {
		e.revenueSharePct = revenueSharePct
		return nil
	}
	s.entries[entityID] = &catalogEntry{revenueSharePct: revenueSharePct}
	return nil
}

// AddViews accumulates monthly views for entityID.
func (s *InMemoryCatalogStore) AddViews(_ context.Context, entityID string, views int64) error {
	if views <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[entityID]
	if !ok {
		return fmt.Errorf("entity %s: %w", entityID, ErrUnknownEntity)
	}
	e.monthlyViews += views
	return nil
}

// CloseMonth computes allocations for month, records the run and resets
// counters, all under one lock. An already-closed month fails before
// any counter is touched.
func (s *InMemoryCatalogStore) CloseMonth(_ context.Context, month string, pool float64) (model.PayoutRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[month]; exists {
		return model.PayoutRun{}, fmt.Errorf("month %s: %w", month, ErrMonthClosed)
	}

	entries := make([]payout.Entry, 0, len(s.entries))
	for id, e := range s.entries {
		entries = append(entries, payout.Entry{
			EntityID:        id,
			MonthlyViews:    e.monthlyViews,
			RevenueSharePct: e.revenueSharePct,
		})
	}

	run := model.PayoutRun{
		RunID:       uuid.NewString(),
		Month:       month,
		Pool:        pool,
		Allocations: payout.Calculate(pool, entries),
		ClosedAt:    s.nowFn(),
	}

	// Counters reset only once the run is recorded; both happen under
	// the same lock so readers never observe one without the other.
	s.runs[month] = run
	for _, e := range s.entries {
		e.monthlyViews = 0
	}

	return run, nil
}

// Run returns the recorded payout run for month.
func (s *InMemoryCatalogStore) Run(_ context.Context, month string) (model.PayoutRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[month]
	if !ok {
		return model.PayoutRun{}, fmt.Errorf("month %s: %w", month, ErrNotFound)
	}
	return run, nil
}
