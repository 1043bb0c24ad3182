package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"obi-site/pkg/errors"
	"obi-site/pkg/logger"
	"obi-site/pkg/redis"
)

// SubmissionGuard keeps at most one submission per form instance in flight and
// refuses a form instance whose enquiry was already stored.
type SubmissionGuard interface {
	// Acquire claims the form instance. The returned release func must be
	// called once the submission finishes, whatever the outcome.
	Acquire(ctx context.Context, formID string) (release func(), err error)

	// MarkSubmitted records that the form instance's enquiry was stored
	MarkSubmitted(ctx context.Context, formID string) error
}

// IsAlreadySubmitted reports whether err refuses a form instance whose enquiry
// was already stored
func IsAlreadySubmitted(err error) bool {
	return stderrors.Is(err, errAlreadySubmitted)
}

var (
	errAlreadySubmitted = errors.NewConflictError("This enquiry was already submitted")
	errSubmitInFlight   = errors.NewConflictError("This enquiry is already being submitted")
)

// redisSubmissionGuard shares the in-flight state across instances
type redisSubmissionGuard struct {
	redis     *redis.Client
	lockTTL   time.Duration
	doneTTL   time.Duration
	logger    *logger.Logger
	releaseTO time.Duration
}

// NewRedisSubmissionGuard creates a guard backed by Redis SETNX locks
func NewRedisSubmissionGuard(client *redis.Client, lockTTL time.Duration, logger *logger.Logger) SubmissionGuard {
	if lockTTL <= 0 {
		lockTTL = redis.TTLSubmitLock
	}
	return &redisSubmissionGuard{
		redis:     client,
		lockTTL:   lockTTL,
		doneTTL:   redis.TTLSubmitted,
		logger:    logger.Named("submission_guard"),
		releaseTO: 2 * time.Second,
	}
}

// Acquire fails open when Redis is unreachable: the per-form flag in the
// handler still blocks double clicks, and an enquiry should not be lost to a
// cache outage.
func (g *redisSubmissionGuard) Acquire(ctx context.Context, formID string) (func(), error) {
	lockKey := g.redis.KeyBuilder.KeySubmitLock(formID)
	doneKey := g.redis.KeyBuilder.KeySubmitted(formID)
	owner := uuid.NewString()

	result, err := g.redis.AcquireUnlessDone(ctx, lockKey, doneKey, owner, g.lockTTL)
	if err != nil {
		g.logger.WithError(err).Warn("Submission guard unavailable, continuing without lock")
		return func() {}, nil
	}
	switch result {
	case redis.LockDone:
		return nil, errAlreadySubmitted
	case redis.LockHeld:
		return nil, errSubmitInFlight
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// The request context may already be cancelled here
			rctx, cancel := context.WithTimeout(context.Background(), g.releaseTO)
			defer cancel()
			if _, err := g.redis.ReleaseIfOwner(rctx, lockKey, owner); err != nil {
				g.logger.WithError(err).Warn("Failed to release submission lock")
			}
		})
	}
	return release, nil
}

func (g *redisSubmissionGuard) MarkSubmitted(ctx context.Context, formID string) error {
	return g.redis.Set(ctx, g.redis.KeyBuilder.KeySubmitted(formID), "1", g.doneTTL)
}

// memorySubmissionGuard is used when no Redis is configured
type memorySubmissionGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
	done     map[string]time.Time
	doneTTL  time.Duration
	now      func() time.Time
}

// NewMemorySubmissionGuard creates a process-local guard
func NewMemorySubmissionGuard() SubmissionGuard {
	return &memorySubmissionGuard{
		inFlight: make(map[string]struct{}),
		done:     make(map[string]time.Time),
		doneTTL:  redis.TTLSubmitted,
		now:      time.Now,
	}
}

func (g *memorySubmissionGuard) Acquire(ctx context.Context, formID string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pruneLocked()
	if _, ok := g.done[formID]; ok {
		return nil, errAlreadySubmitted
	}
	if _, ok := g.inFlight[formID]; ok {
		return nil, errSubmitInFlight
	}
	g.inFlight[formID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, formID)
			g.mu.Unlock()
		})
	}, nil
}

func (g *memorySubmissionGuard) MarkSubmitted(ctx context.Context, formID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.done[formID] = g.now().Add(g.doneTTL)
	return nil
}

func (g *memorySubmissionGuard) pruneLocked() {
	now := g.now()
	for id, expires := range g.done {
		if now.After(expires) {
			delete(g.done, id)
		}
	}
}
