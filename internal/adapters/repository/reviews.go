// Package repository provides in-memory stores standing in for the
// platform's relational database. Each store owns its own lock; the
// catalog store's month close is the one multi-step operation that
// needs transactional grouping, and it runs entirely under one lock.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/lumiere-video/lumiere/internal/domain/model"
)

// ReviewStore holds recorded reviews keyed by submission ID.
type ReviewStore interface {
	// Put records a review, overwriting any previous one.
	Put(ctx context.Context, rev model.Review) error

	// Get returns the recorded review for a submission.
	// Returns ErrNotFound when the submission is unknown or still pending.
	Get(ctx context.Context, submissionID string) (model.Review, error)

	// Count returns the number of recorded reviews.
	Count(ctx context.Context) int
}

// InMemoryReviewStore implements ReviewStore with a mutex-guarded map.
type InMemoryReviewStore struct {
	mu      sync.RWMutex
	reviews map[string]model.Review
}

// NewInMemoryReviewStore creates an empty review store.
func NewInMemoryReviewStore() *InMemoryReviewStore {
	return &InMemoryReviewStore{
		reviews: make(map[string]model.Review),
	}
}

// Put records a review.
func (s *InMemoryReviewStore) Put(_ context.Context, rev model.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[rev.SubmissionID] = rev
	return nil
}

// Get returns the recorded review for submissionID.
func (s *InMemoryReviewStore) Get(_ context.Context, submissionID string) (model.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rev, ok := s.reviews[submissionID]
	if !ok {
		return model.Review{}, fmt.Errorf("review for %s: %w", submissionID, ErrNotFound)
	}
	return rev, nil
}

// Count returns the number of recorded reviews.
func (s *InMemoryReviewStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}
