package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/warfront-relay/internal/entity"
)

func TestRegistry(t *testing.T) {
	t.Run("Register creates a participant once", func(t *testing.T) {
		// Given: an empty registry
		registry := NewRegistry()

		// When: the same connection registers twice
		first := registry.Register("conn-1")
		second := registry.Register("conn-1")

		// Then: the same record is returned and counted once
		assert.Same(t, first, second)
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("Rename on unknown participant is a no-op", func(t *testing.T) {
		registry := NewRegistry()

		assert.False(t, registry.Rename("ghost", "alice"))
		assert.Equal(t, 0, registry.Count())
	})

	t.Run("Rename truncates and keeps the old name on empty input", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register("conn-1")

		require.True(t, registry.Rename("conn-1", "Commander Shepard"))
		require.True(t, registry.Rename("conn-1", ""))

		participant, ok := registry.Lookup("conn-1")
		require.True(t, ok)
		assert.Equal(t, "Commander ", participant.Name)
	})

	t.Run("Remove deletes the record", func(t *testing.T) {
		registry := NewRegistry()
		registry.Register("conn-1")

		registry.Remove("conn-1")
		registry.Remove("conn-1")

		_, ok := registry.Lookup("conn-1")
		assert.False(t, ok)
		assert.Equal(t, 0, registry.Count())
	})
}

func TestMatchQueue(t *testing.T) {
	t.Run("First request waits, second request is matched", func(t *testing.T) {
		// Given: an empty slot
		queue := NewMatchQueue()

		// When: two different participants request a match
		_, matchedFirst := queue.Match("p1")
		opponent, matchedSecond := queue.Match("p2")

		// Then: the second is paired with the first and the slot is emptied
		assert.False(t, matchedFirst)
		assert.True(t, matchedSecond)
		assert.Equal(t, "p1", opponent)

		_, waiting := queue.Waiting()
		assert.False(t, waiting)
	})

	t.Run("Repeated request never matches a participant with itself", func(t *testing.T) {
		queue := NewMatchQueue()

		queue.Match("p1")
		_, matched := queue.Match("p1")

		assert.False(t, matched)
		waiting, ok := queue.Waiting()
		assert.True(t, ok)
		assert.Equal(t, "p1", waiting)
	})

	t.Run("Cancel only clears the slot for its holder", func(t *testing.T) {
		queue := NewMatchQueue()
		queue.Match("p1")

		assert.False(t, queue.Cancel("p2"))
		assert.True(t, queue.Cancel("p1"))
		assert.False(t, queue.Cancel("p1"))
	})
}

func TestRoomDirectory(t *testing.T) {
	t.Run("Lookups are case-insensitive", func(t *testing.T) {
		directory := NewRoomDirectory()
		directory.Put(&entity.RoomEntry{Code: "ab12", HostID: "host"})

		entry, ok := directory.Get("Ab12")

		require.True(t, ok)
		assert.Equal(t, "AB12", entry.Code)
		assert.True(t, directory.Exists("AB12"))
	})

	t.Run("Put reports overwrites", func(t *testing.T) {
		directory := NewRoomDirectory()

		assert.False(t, directory.Put(&entity.RoomEntry{Code: "AB12", HostID: "h1"}))
		assert.True(t, directory.Put(&entity.RoomEntry{Code: "AB12", HostID: "h2"}))

		entry, ok := directory.Get("AB12")
		require.True(t, ok)
		assert.Equal(t, "h2", entry.HostID)
	})

	t.Run("RemoveByHost drops every room of the host", func(t *testing.T) {
		// Given: a host with two rooms and another host with one
		directory := NewRoomDirectory()
		directory.Put(&entity.RoomEntry{Code: "AAAA", HostID: "h1"})
		directory.Put(&entity.RoomEntry{Code: "BBBB", HostID: "h1"})
		directory.Put(&entity.RoomEntry{Code: "CCCC", HostID: "h2"})

		// When: the first host is cleaned up
		removed := directory.RemoveByHost("h1")

		// Then: only the other host's room survives
		assert.Equal(t, 2, removed)
		assert.Equal(t, 1, directory.Count())
		assert.True(t, directory.Exists("CCCC"))
	})
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	base := time.Unix(100, 0)

	older, err := entity.NewSession("s-old", "p1", "p2", base)
	require.NoError(t, err)
	newer, err := entity.NewSession("s-new", "p3", "p4", base.Add(time.Second))
	require.NoError(t, err)

	store.Save(newer)
	store.Save(older)

	all := store.All()
	require.Len(t, all, 2)
	assert.Equal(t, "s-old", all[0].ID)
	assert.Equal(t, "s-new", all[1].ID)

	_, ok := store.Get("")
	assert.False(t, ok)

	store.Delete("s-old")
	assert.Equal(t, 1, store.Count())
}
