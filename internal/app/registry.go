package app

import (
	"github.com/dkeye/Rendezvous/internal/domain"
)

// Registry indexes which room each connection currently belongs to.
// A connection is a member of at most one room; the index is kept in
// lockstep with room contents by the Coordinator, which guards it.
type Registry struct {
	rooms map[domain.ConnID]domain.RoomID
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.ConnID]domain.RoomID)}
}

func (r *Registry) Bind(conn domain.ConnID, room domain.RoomID) {
	r.rooms[conn] = room
}

func (r *Registry) Unbind(conn domain.ConnID) {
	delete(r.rooms, conn)
}

func (r *Registry) RoomOf(conn domain.ConnID) (domain.RoomID, bool) {
	room, ok := r.rooms[conn]
	return room, ok
}
