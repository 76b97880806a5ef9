package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lumiere-video/lumiere/internal/domain/reputation"
	"github.com/lumiere-video/lumiere/internal/domain/types"
)

// ReputationStore holds per-user metric snapshots and exposes a ranked
// view over the computed reputation scores.
type ReputationStore interface {
	// UpsertMetrics replaces a user's metric snapshot and returns the
	// recomputed leaderboard entry.
	UpsertMetrics(ctx context.Context, userID string, m reputation.Metrics) (types.Entry, error)

	// CreditTask increments a user's completed-task counter. Unknown
	// users start from an otherwise-zero snapshot.
	CreditTask(ctx context.Context, userID string) error

	// Get returns the entry (score, badge, rank) for a user.
	// Returns ErrNotFound for unknown users.
	Get(ctx context.Context, userID string) (types.Entry, error)

	// TopN returns the top-N entries ordered by score descending.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of tracked users.
	Count(ctx context.Context) int
}

// InMemoryReputationStore implements ReputationStore. Ranked reads go
// through a sorted snapshot that is rebuilt lazily after writes; score
// ties rank in user-ID order so ranking stays stable across rebuilds.
type InMemoryReputationStore struct {
	mu       sync.RWMutex
	metrics  map[string]reputation.Metrics
	scores   map[string]float64
	snapshot []types.Entry // sorted by score desc, valid when !dirty
	dirty    bool
}

// NewInMemoryReputationStore creates an empty reputation store.
func NewInMemoryReputationStore() *InMemoryReputationStore {
	return &InMemoryReputationStore{
		metrics: make(map[string]reputation.Metrics),
		scores:  make(map[string]float64),
	}
}

// UpsertMetrics replaces the metric snapshot for userID.
func (s *InMemoryReputationStore) UpsertMetrics(_ context.Context, userID string, m reputation.Metrics) (types.Entry, error) {
	s.mu.Lock()
	score := reputation.Score(m)
	s.metrics[userID] = m
	s.scores[userID] = score
	s.dirty = true
	s.mu.Unlock()

	return s.entryFor(userID, score)
}

// CreditTask increments the completed-task counter for userID.
func (s *InMemoryReputationStore) CreditTask(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.metrics[userID]
	m.TasksCompleted++
	s.metrics[userID] = m
	s.scores[userID] = reputation.Score(m)
	s.dirty = true
	return nil
}

// Get returns the ranked entry for userID.
func (s *InMemoryReputationStore) Get(_ context.Context, userID string) (types.Entry, error) {
	s.mu.RLock()
	score, ok := s.scores[userID]
	s.mu.RUnlock()
	if !ok {
		return types.Entry{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return s.entryFor(userID, score)
}

// TopN returns the top-N entries by score descending.
func (s *InMemoryReputationStore) TopN(_ context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		return nil, fmt.Errorf("limit %d: %w", n, ErrNotFound)
	}
	snap := s.ranked()
	if n > len(snap) {
		n = len(snap)
	}
	out := make([]types.Entry, n)
	copy(out, snap[:n])
	return out, nil
}

// Count returns the number of tracked users.
func (s *InMemoryReputationStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scores)
}

// entryFor resolves the rank of userID from the current snapshot.
func (s *InMemoryReputationStore) entryFor(userID string, score float64) (types.Entry, error) {
	for _, e := range s.ranked() {
		if e.UserID == userID {
			return e, nil
		}
	}
	// Unreachable while the caller holds a live score, but kept as a
	// guard against snapshot races.
	return types.Entry{
		UserID: userID,
		Score:  score,
		Badge:  string(reputation.BadgeFor(score)),
	}, nil
}

// ranked returns the sorted snapshot, rebuilding it when stale.
func (s *InMemoryReputationStore) ranked() []types.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.dirty && s.snapshot != nil {
		return s.snapshot
	}

	snap := make([]types.Entry, 0, len(s.scores))
	for userID, score := range s.scores {
		snap = append(snap, types.Entry{
			UserID: userID,
			Score:  score,
			Badge:  string(reputation.BadgeFor(score)),
		})
	}
	sort.Slice(snap, func(i, j int) bool {
		if snap[i].Score != snap[j].Score {
			return snap[i].Score > snap[j].Score
		}
		return snap[i].UserID < snap[j].UserID
	})
	for i := range snap {
		snap[i].Rank = i + 1
	}

	s.snapshot = snap
	s.dirty = false
	return snap
}
