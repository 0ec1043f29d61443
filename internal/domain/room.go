package domain

import "time"

type RoomID string

// RosterEntry is the public view of one member.
type RosterEntry struct {
	ID   ConnID  `json:"id"`
	Name *string `json:"name"`
}

// Room is a bounded group of connections exchanging signaling payloads.
// Mutated only by the coordinator that owns the store.
type Room struct {
	ID        RoomID
	HostID    ConnID
	Members   *MemberList
	Capacity  int
	CreatedAt time.Time
}

func NewRoom(id RoomID, capacity int, createdAt time.Time) *Room {
	return &Room{
		ID:        id,
		Members:   NewMemberList(),
		Capacity:  capacity,
		CreatedAt: createdAt,
	}
}

func (r *Room) Full() bool  { return r.Members.Len() >= r.Capacity }
func (r *Room) Empty() bool { return r.Members.Len() == 0 }

func (r *Room) IsHost(id ConnID) bool {
	return id != "" && r.HostID == id
}

// Roster returns members and their display names in join order.
func (r *Room) Roster() []RosterEntry {
	out := make([]RosterEntry, 0, r.Members.Len())
	r.Members.Each(func(m *Member) {
		e := RosterEntry{ID: m.ID}
		if m.DisplayName != nil {
			name := *m.DisplayName
			e.Name = &name
		}
		out = append(out, e)
	})
	return out
}

// PeerIDs lists every member except the given one, in join order.
func (r *Room) PeerIDs(except ConnID) []ConnID {
	out := make([]ConnID, 0, r.Members.Len())
	r.Members.Each(func(m *Member) {
		if m.ID != except {
			out = append(out, m.ID)
		}
	})
	return out
}
