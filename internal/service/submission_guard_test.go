package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"obi-site/pkg/errors"
	"obi-site/pkg/logger"
	"obi-site/pkg/redis"
)

func newRedisGuard(t *testing.T) (*miniredis.Miniredis, *redis.Client, SubmissionGuard) {
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client, NewRedisSubmissionGuard(client, 30*time.Second, logger.NewNop())
}

func TestRedisSubmissionGuard_InFlight(t *testing.T) {
	mr, client, guard := newRedisGuard(t)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "form-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists(client.KeyBuilder.KeySubmitLock("form-1")))

	_, err = guard.Acquire(ctx, "form-1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	other, err := guard.Acquire(ctx, "form-2")
	require.NoError(t, err, "other forms are independent")
	other()

	release()
	release()
	assert.False(t, mr.Exists(client.KeyBuilder.KeySubmitLock("form-1")))

	again, err := guard.Acquire(ctx, "form-1")
	require.NoError(t, err, "a failed submission can be retried")
	again()
}

func TestRedisSubmissionGuard_Submitted(t *testing.T) {
	mr, client, guard := newRedisGuard(t)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "form-1")
	require.NoError(t, err)
	require.NoError(t, guard.MarkSubmitted(ctx, "form-1"))
	release()

	doneKey := client.KeyBuilder.KeySubmitted("form-1")
	assert.True(t, mr.Exists(doneKey))
	assert.Equal(t, redis.TTLSubmitted, mr.TTL(doneKey))

	_, err = guard.Acquire(ctx, "form-1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	assert.True(t, IsAlreadySubmitted(err))
}

// pauseHook holds the first command issued after it is armed until resume is
// closed. The command has already run on the server when it pauses.
type pauseHook struct {
	armed  atomic.Bool
	paused chan struct{}
	resume chan struct{}
}

func newPauseHook() *pauseHook {
	return &pauseHook{paused: make(chan struct{}), resume: make(chan struct{})}
}

func (h *pauseHook) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (h *pauseHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		err := next(ctx, cmd)
		if h.armed.CompareAndSwap(true, false) {
			close(h.paused)
			<-h.resume
		}
		return err
	}
}

func (h *pauseHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return next
}

// A replay that reaches Redis while the first submission is finishing must
// never end up holding the lock once that submission is marked done.
func TestRedisSubmissionGuard_ReplayDuringCompletion(t *testing.T) {
	mr, client, guard := newRedisGuard(t)
	ctx := context.Background()
	lockKey := client.KeyBuilder.KeySubmitLock("form-1")

	hook := newPauseHook()
	client.AddHook(hook)

	releaseA, err := guard.Acquire(ctx, "form-1")
	require.NoError(t, err)

	hook.armed.Store(true)
	replay := make(chan error, 1)
	go func() {
		release, err := guard.Acquire(ctx, "form-1")
		if err == nil {
			release()
		}
		replay <- err
	}()

	<-hook.paused
	require.NoError(t, guard.MarkSubmitted(ctx, "form-1"))
	releaseA()
	require.False(t, mr.Exists(lockKey))
	close(hook.resume)

	err = <-replay
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
	assert.False(t, mr.Exists(lockKey))

	_, err = guard.Acquire(ctx, "form-1")
	assert.True(t, IsAlreadySubmitted(err))
	assert.False(t, mr.Exists(lockKey), "a stored form is never locked again")
}

func TestRedisSubmissionGuard_ExpiredLockNotReleasedByOldOwner(t *testing.T) {
	mr, client, guard := newRedisGuard(t)
	ctx := context.Background()
	lockKey := client.KeyBuilder.KeySubmitLock("form-1")

	release, err := guard.Acquire(ctx, "form-1")
	require.NoError(t, err)

	mr.FastForward(31 * time.Second)
	require.False(t, mr.Exists(lockKey))

	second, err := guard.Acquire(ctx, "form-1")
	require.NoError(t, err)

	release()
	assert.True(t, mr.Exists(lockKey), "stale release must not drop the new owner's lock")
	second()
	assert.False(t, mr.Exists(lockKey))
}

func TestRedisSubmissionGuard_FailsOpen(t *testing.T) {
	mr, _, guard := newRedisGuard(t)
	mr.Close()

	release, err := guard.Acquire(context.Background(), "form-1")
	require.NoError(t, err)
	require.NotNil(t, release)
	release()
}

func TestMemorySubmissionGuard(t *testing.T) {
	guard := NewMemorySubmissionGuard().(*memorySubmissionGuard)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "form-1")
	require.NoError(t, err)

	_, err = guard.Acquire(ctx, "form-1")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	release()
	release()

	release, err = guard.Acquire(ctx, "form-1")
	require.NoError(t, err)
	require.NoError(t, guard.MarkSubmitted(ctx, "form-1"))
	release()

	_, err = guard.Acquire(ctx, "form-1")
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))

	later := time.Now().Add(25 * time.Hour)
	guard.now = func() time.Time { return later }
	release, err = guard.Acquire(ctx, "form-1")
	require.NoError(t, err, "done markers expire")
	release()
	assert.Empty(t, guard.done)
}
