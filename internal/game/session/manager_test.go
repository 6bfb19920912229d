package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tavern/internal/game/session"
)

func TestManager_AddRemove(t *testing.T) {
	m := session.NewManager()
	s := newState(t, seq(1))

	p, err := m.Add("aria", s)
	require.NoError(t, err)
	assert.Equal(t, "aria", p.Account)
	assert.Equal(t, 1, m.Count())

	_, err = m.Add("aria", s)
	assert.Error(t, err, "duplicate login")

	require.NoError(t, m.Remove("aria"))
	assert.Equal(t, 0, m.Count())
	assert.Error(t, m.Remove("aria"))

	_, open := <-p.Entity.Events()
	assert.False(t, open, "entity closed on remove")
}

func TestManager_BroadcastSameLocationOnly(t *testing.T) {
	m := session.NewManager()
	a := newState(t, seq(1))
	b := newState(t, seq(1))
	c := newState(t, seq(1))
	c.Location = "market"

	pa, err := m.Add("a", a)
	require.NoError(t, err)
	pb, err := m.Add("b", b)
	require.NoError(t, err)
	pc, err := m.Add("c", c)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, m.At("tavern"))
	assert.Equal(t, 1, m.Broadcast("tavern", "a", "a says hello"))
	assert.Equal(t, "a says hello", <-pb.Entity.Events())
	assert.Empty(t, pa.Entity.Events())
	assert.Empty(t, pc.Entity.Events())

	b.Location = "market"
	m.Sync("b")
	assert.Equal(t, []string{"b", "c"}, m.At("market"))
	assert.Equal(t, []string{"a"}, m.At("tavern"))
}

func TestEntity_PushAfterClose(t *testing.T) {
	e := session.NewEntity("x", 1)
	require.NoError(t, e.Push("one"))
	assert.Error(t, e.Push("two"), "buffer full")
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.Error(t, e.Push("three"))
}
