package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/config"
	"github.com/go-redis/redis/v8"
)

var (
	// ErrNotFound is returned when a key is missing or has expired.
	ErrNotFound = errors.New("redis: key not found")
	// ErrLocked is returned when another caller holds the lock.
	ErrLocked = errors.New("redis: already locked")
	// ErrLockLost is returned on unlock when the lock expired or was taken
	// over by another caller.
	ErrLockLost = errors.New("redis: lock no longer held")
)

// unlockScript deletes the lock only while it still carries the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Client struct {
	rdb *redis.Client
}

func NewClient(cfg *config.Config) *Client {
	return New(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func New(opts *redis.Options) *Client {
	return &Client{rdb: redis.NewClient(opts)}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func sessionKey(id string) string { return fmt.Sprintf("booking_session:%s", id) }
func lockKey(id string) string    { return fmt.Sprintf("booking_lock:%s", id) }

// PutBookingSession stores an encoded session, resetting its expiry.
func (c *Client) PutBookingSession(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, sessionKey(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	return nil
}

func (c *Client) GetBookingSession(ctx context.Context, id string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	return data, nil
}

func (c *Client) DeleteBookingSession(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, sessionKey(id)).Err()
}

// LockBookingSession reserves a session for one in-flight transition. token
// must be unique per acquisition; it is needed again to unlock.
func (c *Client) LockBookingSession(ctx context.Context, id, token string, ttl time.Duration) error {
	result := c.rdb.SetNX(ctx, lockKey(id), token, ttl)
	if result.Err() != nil {
		return fmt.Errorf("failed to lock booking session: %w", result.Err())
	}
	if !result.Val() {
		return fmt.Errorf("booking session %s: %w", id, ErrLocked)
	}
	return nil
}

// UnlockBookingSession releases a session lock if token still holds it.
func (c *Client) UnlockBookingSession(ctx context.Context, id, token string) error {
	n, err := unlockScript.Run(ctx, c.rdb, []string{lockKey(id)}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to unlock booking session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("booking session %s: %w", id, ErrLockLost)
	}
	return nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
