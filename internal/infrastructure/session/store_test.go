package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

var ana = domain.Identity{LoginID: "ana@empresa.com", Role: domain.RoleAdmin}

func TestStore_CreateGetDelete(t *testing.T) {
	s := NewStore(0, 0)

	sess, err := s.Create(ana, "Ana")
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID)
	require.NoError(t, err, "session id must be a uuid")

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, ana, got.Identity)
	assert.Equal(t, "Ana", got.DisplayName)

	s.Delete(sess.ID)
	_, ok = s.Get(sess.ID)
	assert.False(t, ok)
}

func TestStore_IDsAreUnique(t *testing.T) {
	s := NewStore(0, 0)
	a, err := s.Create(ana, "")
	require.NoError(t, err)
	b, err := s.Create(ana, "")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, s.Len())
}

func TestStore_UnknownAndEmptyIDs(t *testing.T) {
	s := NewStore(0, 0)
	_, ok := s.Get("")
	assert.False(t, ok)
	_, ok = s.Get(uuid.NewString())
	assert.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	s := NewStore(10, 50*time.Millisecond)
	sess, err := s.Create(ana, "Ana")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := s.Get(sess.ID)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s := NewStore(2, time.Minute)
	first, _ := s.Create(ana, "1")
	second, _ := s.Create(ana, "2")

	// Touch the first so the second becomes the eviction candidate.
	_, _ = s.Get(first.ID)
	_, _ = s.Create(ana, "3")

	_, ok := s.Get(first.ID)
	assert.True(t, ok)
	_, ok = s.Get(second.ID)
	assert.False(t, ok)
}
