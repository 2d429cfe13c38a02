package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/redis"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("booking session not found")
	ErrSessionBusy     = errors.New("booking session is being processed")
)

const lockTTL = 30 * time.Second

// Store keeps booking sessions for a limited time.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// Lock serializes transitions on one session. The returned func releases
	// it, and only if this acquisition still holds it.
	Lock(ctx context.Context, id, owner string) (func(), error)
}

// SessionClient is the subset of the redis client the store needs.
type SessionClient interface {
	PutBookingSession(ctx context.Context, id string, data []byte, ttl time.Duration) error
	GetBookingSession(ctx context.Context, id string) ([]byte, error)
	DeleteBookingSession(ctx context.Context, id string) error
	LockBookingSession(ctx context.Context, id, token string, ttl time.Duration) error
	UnlockBookingSession(ctx context.Context, id, token string) error
}

type RedisStore struct {
	client SessionClient
	ttl    time.Duration
}

func NewRedisStore(client SessionClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.GetBookingSession(ctx, id)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode booking session %s: %w", id, err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode booking session %s: %w", s.ID, err)
	}
	return r.client.PutBookingSession(ctx, s.ID, data, r.ttl)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.client.DeleteBookingSession(ctx, id)
}

func (r *RedisStore) Lock(ctx context.Context, id, owner string) (func(), error) {
	token := lockToken(owner)
	err := r.client.LockBookingSession(ctx, id, token, lockTTL)
	if errors.Is(err, redis.ErrLocked) {
		return nil, ErrSessionBusy
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// The lock expires on its own if this fails.
		_ = r.client.UnlockBookingSession(context.WithoutCancel(ctx), id, token)
	}, nil
}

// MemoryStore is an in-process Store for tests and for running without redis.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
	locks    map[string]string
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
		locks:    make(map[string]string),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Lock(_ context.Context, id, owner string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[id]; held {
		return nil, ErrSessionBusy
	}
	token := lockToken(owner)
	m.locks[id] = token
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.locks[id] == token {
			delete(m.locks, id)
		}
	}, nil
}

// lockToken tags one lock acquisition, so concurrent requests by the same
// owner never release each other's lock.
func lockToken(owner string) string {
	return owner + ":" + uuid.NewString()
}
