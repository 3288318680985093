// Package sessionstore keeps dialogue session state in Redis between turns.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"student-agent/internal/domain"
)

const (
	keyPrefix  = "session:"
	defaultTTL = 30 * time.Minute
)

// Store is a Redis-backed session store. Each session lives under its own
// key and expires after ttl of inactivity.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
}

func New(client redis.Cmdable, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, errors.New("sessionstore: client must not be nil")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{client: client, ttl: ttl}, nil
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// Load returns the saved session, or nil when none exists or it expired.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("sessionstore: session id is required")
	}
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sessionstore: Load: %w", err)
	}
	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("sessionstore: Load decode: %w", err)
	}
	return &state, nil
}

// Save writes the session and refreshes its expiry.
func (s *Store) Save(ctx context.Context, state *domain.SessionState) error {
	if state == nil || strings.TrimSpace(state.SessionID) == "" {
		return errors.New("sessionstore: session id is required")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("sessionstore: Save encode: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(state.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("sessionstore: Save: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("sessionstore: Delete: %w", err)
	}
	return nil
}
