package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lesson-byte/internal/cache"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/util"
)

// Store persists sessions as JSON in the cache with a sliding TTL.
type Store struct {
	cache domain.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewStore creates a Store. ttl of 0 keeps sessions indefinitely.
func NewStore(c domain.Cache, ttl time.Duration) *Store {
	return &Store{cache: c, ttl: ttl, now: time.Now}
}

func key(id string) string {
	return cache.GenerateCacheKey("session", "state", id)
}

// Create stores and returns a new empty session.
func (s *Store) Create(ctx context.Context) (*Session, error) {
	sess := New(util.NewULID(), s.now().UTC())
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a session, returning SESSION_NOT_FOUND when it is unknown or has
// expired.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.cache.Get(ctx, key(id))
	if errors.Is(err, domain.ErrCacheMiss) {
		return nil, domain.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, domain.NewInternalError("failed to load session", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("session %s is corrupt", id), err)
	}
	return &sess, nil
}

// Save writes sess and refreshes its TTL.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(sess)
	if err != nil {
		return domain.NewInternalError("failed to encode session", err)
	}
	if err := s.cache.Set(ctx, key(sess.ID), string(raw), s.ttl); err != nil {
		return domain.NewInternalError("failed to save session", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.cache.Delete(ctx, key(id)); err != nil {
		return domain.NewInternalError("failed to delete session", err)
	}
	return nil
}
