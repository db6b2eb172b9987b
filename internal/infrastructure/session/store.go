// Package session keeps browser login sessions in memory. Sessions expire a
// fixed time after creation and the least recently used ones are evicted
// once the store is full.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

const (
	DefaultTTL        = 30 * time.Minute
	DefaultMaxEntries = 10000
)

// Session is the server-side state behind a SESSION cookie.
type Session struct {
	ID          string
	Identity    domain.Identity
	DisplayName string
	CreatedAt   time.Time
}

type Store struct {
	cache *expirable.LRU[string, Session]
}

// NewStore creates a store holding at most maxEntries sessions for ttl each.
// Zero values fall back to the defaults.
func NewStore(maxEntries int, ttl time.Duration) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: expirable.NewLRU[string, Session](maxEntries, nil, ttl)}
}

// Create starts a new session for id under a fresh random identifier.
func (s *Store) Create(id domain.Identity, displayName string) (Session, error) {
	sid, err := uuid.NewRandom()
	if err != nil {
		return Session{}, fmt.Errorf("session id: %w", err)
	}
	sess := Session{
		ID:          sid.String(),
		Identity:    id,
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	s.cache.Add(sess.ID, sess)
	return sess, nil
}

// Get returns the live session for sid.
func (s *Store) Get(sid string) (Session, bool) {
	if sid == "" {
		return Session{}, false
	}
	return s.cache.Get(sid)
}

func (s *Store) Delete(sid string) {
	s.cache.Remove(sid)
}

func (s *Store) Len() int {
	return s.cache.Len()
}
