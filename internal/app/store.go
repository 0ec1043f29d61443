package app

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

const roomIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// IDGenerator produces candidate room identifiers.
type IDGenerator func() domain.RoomID

// RandomRoomID returns a generator of crypto-random alphanumeric ids of length n.
func RandomRoomID(n int) IDGenerator {
	n62 := big.NewInt(int64(len(roomIDAlphabet)))
	return func() domain.RoomID {
		b := make([]byte, n)
		for i := range b {
			idx, err := rand.Int(rand.Reader, n62)
			if err != nil {
				log.Panic().Err(err).Str("module", "app.store").Msg("failed to read random index")
			}
			b[i] = roomIDAlphabet[idx.Int64()]
		}
		return domain.RoomID(b)
	}
}

// RoomStore owns every live room. It is not safe for concurrent use;
// the Coordinator serialises all access.
type RoomStore struct {
	rooms map[domain.RoomID]*domain.Room
	newID IDGenerator
}

func NewRoomStore(gen IDGenerator) *RoomStore {
	return &RoomStore{
		rooms: make(map[domain.RoomID]*domain.Room),
		newID: gen,
	}
}

// Create allocates an empty room under an id not used by any live room.
func (s *RoomStore) Create(capacity int, now time.Time) *domain.Room {
	id := s.newID()
	for {
		if _, taken := s.rooms[id]; !taken {
			break
		}
		log.Warn().Str("module", "app.store").Str("room", string(id)).Msg("room id collision, regenerating")
		id = s.newID()
	}
	room := domain.NewRoom(id, capacity, now)
	s.rooms[id] = room
	return room
}

func (s *RoomStore) Get(id domain.RoomID) (*domain.Room, bool) {
	room, ok := s.rooms[id]
	return room, ok
}

func (s *RoomStore) Delete(id domain.RoomID) {
	delete(s.rooms, id)
}

// ForEach visits every room until fn returns false. fn may delete the visited room.
func (s *RoomStore) ForEach(fn func(room *domain.Room) bool) {
	for _, room := range s.rooms {
		if !fn(room) {
			return
		}
	}
}

func (s *RoomStore) Len() int {
	return len(s.rooms)
}
