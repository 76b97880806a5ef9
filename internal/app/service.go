// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	submissionqueue "github.com/lumiere-video/lumiere/internal/adapters/mq/queue"
	workerpool "github.com/lumiere-video/lumiere/internal/adapters/mq/worker"
	"github.com/lumiere-video/lumiere/internal/adapters/repository"
	"github.com/lumiere-video/lumiere/internal/domain/dedupe"
	"github.com/lumiere-video/lumiere/internal/domain/model"
	"github.com/lumiere-video/lumiere/internal/domain/reputation"
	"github.com/lumiere-video/lumiere/internal/domain/review"
	"github.com/lumiere-video/lumiere/internal/domain/schedule"
	"github.com/lumiere-video/lumiere/internal/domain/types"
	"github.com/lumiere-video/lumiere/pkg/logger"
	"github.com/lumiere-video/lumiere/pkg/metrics"
)

// reviewScorer adapts the review.Scorer interface to worker.Scorer.
type reviewScorer struct {
	scorer    review.Scorer
	threshold int
}

func (a *reviewScorer) Score(ctx context.Context, sub model.Submission) (model.Review, error) {
	res, err := a.scorer.Score(ctx, review.Input{
		SubmissionID: sub.SubmissionID,
		Notes:        sub.Notes,
		FileURL:      sub.FileURL,
		Threshold:    a.threshold,
	})
	if err != nil {
		return model.Review{}, err
	}
	return model.Review{
		SubmissionID: res.SubmissionID,
		UserID:       sub.UserID,
		Score:        res.Score,
		Feedback:     res.Feedback,
		Verdict:      res.Verdict,
		ReviewedAt:   time.Now().UTC(),
	}, nil
}

// reviewRecorder persists a review and, for approved work, credits the
// submitter's completed-task counter. Both stores are in-process, so
// the two writes are the recorder's transactional unit; a store error
// aborts before the reputation credit.
type reviewRecorder struct {
	reviews    repository.ReviewStore
	reputation repository.ReputationStore
}

func (r *reviewRecorder) RecordReview(ctx context.Context, rev model.Review) error {
	if err := r.reviews.Put(ctx, rev); err != nil {
		return fmt.Errorf("store review: %w", err)
	}
	if rev.Verdict == model.VerdictApproved && rev.UserID != "" {
		if err := r.reputation.CreditTask(ctx, rev.UserID); err != nil {
			return fmt.Errorf("credit task: %w", err)
		}
		metrics.RecordReputationUpdate()
	}
	return nil
}

// Service implements the API dependencies for the review platform.
type Service struct {
	mu sync.RWMutex

	// Core components
	reviews    repository.ReviewStore
	reputation repository.ReputationStore
	catalog    repository.CatalogStore
	deduper    dedupe.Deduper
	queue      submissionqueue.Queue
	scorer     review.Scorer
	planner    *schedule.Planner
	pool       *workerpool.Pool
	cron       *cron.Cron

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	reviewThreshold int
	payoutPool      float64
	payoutCron      string
	platformHours   map[string][]int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of review workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithReviewThreshold sets the approval cutoff for automated review.
func WithReviewThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 100 {
			s.reviewThreshold = threshold
		}
	}
}

// WithPayoutPool sets the monthly payout pool amount.
func WithPayoutPool(pool float64) Option {
	return func(s *Service) {
		if pool >= 0 {
			s.payoutPool = pool
		}
	}
}

// WithPayoutCron sets the cron spec for the automatic monthly payout
// close. Empty disables the job.
func WithPayoutCron(spec string) Option {
	return func(s *Service) {
		s.payoutCron = spec
	}
}

// WithPlatformHours overrides the scheduler's optimal-hour tables.
func WithPlatformHours(hours map[string][]int) Option {
	return func(s *Service) {
		if len(hours) > 0 {
			s.platformHours = hours
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2,
		queueSize:       100000,
		dedupeSize:      50000,
		reviewThreshold: review.DefaultThreshold,
		payoutPool:      50000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting review service...")

	s.reviews = repository.NewInMemoryReviewStore()
	s.reputation = repository.NewInMemoryReputationStore()
	s.catalog = repository.NewInMemoryCatalogStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)
	s.scorer = review.NewHashScorer(
		review.WithDefaultThreshold(s.reviewThreshold),
	)

	plannerOpts := []schedule.Option{}
	if s.platformHours != nil {
		plannerOpts = append(plannerOpts, schedule.WithPlatformHours(s.platformHours))
	}
	s.planner = schedule.NewPlanner(plannerOpts...)

	recorder := &reviewRecorder{reviews: s.reviews, reputation: s.reputation}
	s.pool = workerpool.NewPool(
		s.workerCount,
		s.queue,
		&reviewScorer{scorer: s.scorer, threshold: s.reviewThreshold},
		recorder,
	)
	s.pool.Start(ctx)

	if s.payoutCron != "" {
		if err := s.startPayoutJob(ctx); err != nil {
			return fmt.Errorf("start payout job: %w", err)
		}
	}

	s.started = true
	s.logger.Info(ctx, "review service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("reviewThreshold", s.reviewThreshold),
	)

	return nil
}

// startPayoutJob schedules the automatic monthly payout close. The job
// closes the month that just ended, so running on the 1st settles the
// previous calendar month.
func (s *Service) startPayoutJob(ctx context.Context) error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.payoutCron, func() {
		month := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01")
		run, err := s.RunPayouts(context.Background(), month)
		if err != nil {
			s.logger.Error(context.Background(), "scheduled payout run failed",
				logger.String("month", month),
				logger.Error(err),
			)
			return
		}
		s.logger.Info(context.Background(), "scheduled payout run completed",
			logger.String("month", month),
			logger.String("runID", run.RunID),
			logger.Int("allocations", len(run.Allocations)),
		)
	})
	if err != nil {
		return fmt.Errorf("invalid payout cron %q: %w", s.payoutCron, err)
	}
	s.cron.Start()
	s.logger.Info(ctx, "payout job scheduled", logger.String("cron", s.payoutCron))
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping review service...")

	if s.cron != nil {
		s.cron.Stop()
	}
	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}

	s.started = false
	s.logger.Info(ctx, "review service stopped")
}

// SeenAndRecord atomically checks if a submission id was seen and records
// it if not. Returns true if the submission was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a submission for asynchronous review.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool {
	ok := s.queue.Enqueue(ctx, sub)
	if ok {
		metrics.RecordSubmissionAccepted()
	}
	return ok
}

// Review returns the recorded review for a submission.
func (s *Service) Review(ctx context.Context, submissionID string) (model.Review, error) {
	return s.reviews.Get(ctx, submissionID)
}

// UpsertReputation replaces a user's metric snapshot.
func (s *Service) UpsertReputation(ctx context.Context, userID string, m reputation.Metrics) (types.Entry, error) {
	entry, err := s.reputation.UpsertMetrics(ctx, userID, m)
	if err != nil {
		return types.Entry{}, err
	}
	metrics.RecordReputationUpdate()
	metrics.UpdateTotalCreators(s.reputation.Count(ctx))
	return entry, nil
}

// Reputation returns the ranked entry for a user.
func (s *Service) Reputation(ctx context.Context, userID string) (types.Entry, error) {
	return s.reputation.Get(ctx, userID)
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.reputation.TopN(ctx, n)
}

// RegisterEntity adds or updates a catalog entry.
func (s *Service) RegisterEntity(ctx context.Context, entityID string, revenueSharePct float64) error {
	return s.catalog.Register(ctx, entityID, revenueSharePct)
}

// AddViews accumulates monthly views for a catalog entity.
func (s *Service) AddViews(ctx context.Context, entityID string, views int64) error {
	return s.catalog.AddViews(ctx, entityID, views)
}

// RunPayouts closes a payout month: allocations are computed, recorded
// and view counters reset in one atomic step.
func (s *Service) RunPayouts(ctx context.Context, month string) (model.PayoutRun, error) {
	run, err := s.catalog.CloseMonth(ctx, month, s.payoutPool)
	if err != nil {
		metrics.RecordPayoutRunError()
		return model.PayoutRun{}, err
	}

	var distributed float64
	for _, a := range run.Allocations {
		distributed += a.GrossAmount
	}
	metrics.RecordPayoutRun(distributed)

	s.logger.Info(ctx, "payout month closed",
		logger.String("month", month),
		logger.String("runID", run.RunID),
		logger.Int("allocations", len(run.Allocations)),
		logger.Float64("distributed", distributed),
	)
	return run, nil
}

// PayoutRun returns the recorded run for a closed month.
func (s *Service) PayoutRun(ctx context.Context, month string) (model.PayoutRun, error) {
	return s.catalog.Run(ctx, month)
}

// GenerateSchedule produces publish slots for the request.
func (s *Service) GenerateSchedule(_ context.Context, req schedule.Request) []model.ScheduleSlot {
	return s.planner.Generate(req)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["reviewsRecorded"] = s.reviews.Count(ctx)
		stats["totalCreators"] = s.reputation.Count(ctx)

		metrics.UpdateQueueSize(s.queue.Len(ctx))
		metrics.UpdateTotalCreators(s.reputation.Count(ctx))
	}

	return stats
}
