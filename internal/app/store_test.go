package app

import (
	"testing"
	"time"

	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(ids ...domain.RoomID) IDGenerator {
	i := 0
	return func() domain.RoomID {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func TestRoomStoreLifecycle(t *testing.T) {
	s := NewRoomStore(sequence("r1", "r2"))
	now := time.Now()

	a := s.Create(2, now)
	b := s.Create(3, now)
	assert.Equal(t, domain.RoomID("r1"), a.ID)
	assert.Equal(t, domain.RoomID("r2"), b.ID)
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get("r1")
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, now, got.CreatedAt)

	s.Delete("r1")
	_, ok = s.Get("r1")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestRoomStoreRegeneratesCollidingIDs(t *testing.T) {
	s := NewRoomStore(sequence("dup", "dup", "fresh"))
	s.Create(2, time.Now())

	room := s.Create(2, time.Now())
	assert.Equal(t, domain.RoomID("fresh"), room.ID)
}

func TestRoomStoreForEachStops(t *testing.T) {
	s := NewRoomStore(sequence("a", "b", "c"))
	for i := 0; i < 3; i++ {
		s.Create(1, time.Now())
	}

	visited := 0
	s.ForEach(func(*domain.Room) bool {
		visited++
		return visited < 2
	})
	assert.Equal(t, 2, visited)
}

func TestRandomRoomID(t *testing.T) {
	gen := RandomRoomID(12)
	seen := make(map[domain.RoomID]bool)
	for i := 0; i < 200; i++ {
		id := gen()
		require.Len(t, string(id), 12)
		for _, ch := range string(id) {
			assert.Contains(t, roomIDAlphabet, string(ch))
		}
		seen[id] = true
	}
	assert.Len(t, seen, 200)
}
