package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/montroyal/quote-service/internal/types"
)

func TestManagerCreateIsolatesState(t *testing.T) {
	m := NewManager()

	a := m.Create()
	b := m.Create()
	require.NotEqual(t, a.ID, b.ID)

	a.Catalog.Load([]types.Article{{BusinessKey: "EDI-1", Category: "Montures"}})
	added, _ := a.Cart.Add([]types.Article{{BusinessKey: "EDI-1"}})
	require.Equal(t, 1, added)

	assert.Equal(t, 0, b.Catalog.Len())
	assert.True(t, b.Cart.IsEmpty())
}

func TestManagerGetRefreshesLastActive(t *testing.T) {
	m := NewManager()
	clock := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	s := m.Create()
	assert.Equal(t, clock, s.LastActive)

	clock = clock.Add(5 * time.Minute)
	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, clock, got.LastActive)

	_, ok = m.Get("unknown")
	assert.False(t, ok)
}

func TestManagerGetOrCreate(t *testing.T) {
	m := NewManager()

	s := m.GetOrCreate("")
	require.NotNil(t, s)

	same := m.GetOrCreate(s.ID)
	assert.Equal(t, s.ID, same.ID)

	fresh := m.GetOrCreate("no-such-session")
	assert.NotEqual(t, s.ID, fresh.ID)
	assert.Equal(t, 2, m.Len())
}

func TestManagerSweepRemovesIdleSessions(t *testing.T) {
	m := NewManager()
	clock := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	stale := m.Create()
	clock = clock.Add(30 * time.Minute)
	active := m.Create()

	removed := m.Sweep(15 * time.Minute)
	assert.Equal(t, 1, removed)

	_, ok := m.Get(stale.ID)
	assert.False(t, ok)
	_, ok = m.Get(active.ID)
	assert.True(t, ok)
}

func TestManagerDelete(t *testing.T) {
	m := NewManager()
	s := m.Create()

	m.Delete(s.ID)
	_, ok := m.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}
