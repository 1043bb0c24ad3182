package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Nil is returned by Get for a missing key
const Nil = redis.Nil

type Client struct {
	rdb        *redis.Client
	KeyBuilder *KeyBuilder
	log        *zap.Logger
}

// Key patterns
const (
	KeySubmitLock = "enquiry:form:%s:lock" // enquiry:form:{formID}:lock
	KeySubmitted  = "enquiry:form:%s:done" // enquiry:form:{formID}:done
)

// TTL constants
const (
	TTLSubmitLock = 30 * time.Second
	TTLSubmitted  = 24 * time.Hour
)

// Deletes KEYS[1] only if it still holds ARGV[1], so a lock that expired and
// was re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Sets KEYS[1] to ARGV[1] with a TTL of ARGV[2] milliseconds unless KEYS[2]
// exists (-1) or KEYS[1] is already held (0).
var acquireScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return -1
end
if redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2]) then
	return 1
end
return 0
`)

// LockResult is the outcome of AcquireUnlessDone
type LockResult int64

const (
	LockDone     LockResult = -1
	LockHeld     LockResult = 0
	LockAcquired LockResult = 1
)

// NewClient creates a new Redis client and checks the connection
func NewClient(redisURL string, environment string, log *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}

	return &Client{rdb: rdb, KeyBuilder: NewKeyBuilder(environment), log: log}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Health pings the server
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	val, err := c.rdb.Get(ctx, key).Result()
	c.logOp("redis_get", key, time.Since(start), ignoreNil(err))
	return val, err
}

// Set stores a value in Redis with TTL
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	start := time.Now()
	err := c.rdb.Set(ctx, key, value, ttl).Err()
	c.logOp("redis_set", key, time.Since(start), err)
	return err
}

// SetNX sets a value only if the key does not exist
func (c *Client) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	start := time.Now()
	ok, err := c.rdb.SetNX(ctx, key, value, ttl).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_setnx",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_setnx",
			zap.String("key_prefix", prefixForLog(key)),
			zap.Bool("result", ok),
			zap.Duration("duration", dur))
	}
	return ok, err
}

// ReleaseIfOwner deletes key only when it still holds value
func (c *Client) ReleaseIfOwner(ctx context.Context, key string, value string) (bool, error) {
	start := time.Now()
	n, err := releaseScript.Run(ctx, c.rdb, []string{key}, value).Int64()
	c.logOp("redis_release", key, time.Since(start), err)
	return n == 1, err
}

// AcquireUnlessDone takes lockKey for owner unless doneKey is set, in a single
// round trip, so a marker written between the check and the lock is never missed.
func (c *Client) AcquireUnlessDone(ctx context.Context, lockKey, doneKey, owner string, ttl time.Duration) (LockResult, error) {
	start := time.Now()
	n, err := acquireScript.Run(ctx, c.rdb, []string{lockKey, doneKey}, owner, ttl.Milliseconds()).Int64()
	c.logOp("redis_acquire", lockKey, time.Since(start), err)
	if err != nil {
		return LockHeld, err
	}
	return LockResult(n), nil
}

// AddHook installs a go-redis hook on the underlying client
func (c *Client) AddHook(hook redis.Hook) {
	c.rdb.AddHook(hook)
}

// Delete removes keys from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	start := time.Now()
	err := c.rdb.Del(ctx, keys...).Err()
	c.log.Debug("redis_del",
		zap.Int("keys", len(keys)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err))
	return err
}

// Exists counts how many of the keys exist
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	start := time.Now()
	n, err := c.rdb.Exists(ctx, keys...).Result()
	dur := time.Since(start)
	if err != nil {
		c.log.Info("redis_exists",
			zap.Int("keys", len(keys)),
			zap.Duration("duration", dur),
			zap.Error(err))
	} else {
		c.log.Debug("redis_exists",
			zap.Int64("result", n),
			zap.Int("keys", len(keys)),
			zap.Duration("duration", dur))
	}
	return n, err
}

func (c *Client) logOp(op, key string, dur time.Duration, err error) {
	if err != nil {
		c.log.Info(op,
			zap.String("key_prefix", prefixForLog(key)),
			zap.Duration("duration", dur),
			zap.Error(err))
		return
	}
	c.log.Debug(op,
		zap.String("key_prefix", prefixForLog(key)),
		zap.Duration("duration", dur))
}

func ignoreNil(err error) error {
	if err == redis.Nil {
		return nil
	}
	return err
}

// prefixForLog returns a safe prefix of a key to avoid logging PII
func prefixForLog(key string) string {
	if len(key) <= 24 {
		return key
	}
	return key[:24] + "…"
}
