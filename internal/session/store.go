package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a token is unknown or has expired
var ErrNoSession = errors.New("no such session")

const keyPrefix = "session:"

// Store keeps opaque server-side sessions in redis: a random token maps
// to the authenticated user id and expires after the configured TTL.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a session store on the given redis client
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Create opens a session for a user and returns the opaque token
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	err := s.client.Set(ctx, keyPrefix+token, userID, s.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// UserID resolves a token back to the user it identifies
func (s *Store) UserID(ctx context.Context, token string) (int64, error) {
	value, err := s.client.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNoSession
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read session: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value %q: %w", value, err)
	}
	return userID, nil
}

// Destroy forgets a session token
func (s *Store) Destroy(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
