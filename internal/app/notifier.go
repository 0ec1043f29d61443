package app

import (
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
)

// Notifier fans presence events out to room members. It never mutates rooms
// and is only called after a transition has been committed.
type Notifier struct {
	emit core.Emitter
}

func NewNotifier(emit core.Emitter) *Notifier {
	return &Notifier{emit: emit}
}

func (n *Notifier) RosterUpdated(room *domain.Room) {
	n.toRoom(room, "", core.RosterUpdated{
		RoomID: room.ID,
		HostID: room.HostID,
		Roster: room.Roster(),
	})
}

func (n *Notifier) PeerJoined(room *domain.Room, peer domain.ConnID) {
	n.toRoom(room, peer, core.PeerJoined{RoomID: room.ID, PeerID: peer})
}

func (n *Notifier) PeerLeft(room *domain.Room, peer domain.ConnID) {
	n.toRoom(room, peer, core.PeerLeft{RoomID: room.ID, PeerID: peer})
}

func (n *Notifier) HostChanged(room *domain.Room) {
	n.toRoom(room, "", core.HostChanged{RoomID: room.ID, NewHostID: room.HostID})
}

// toRoom emits ev to every member except exclude.
func (n *Notifier) toRoom(room *domain.Room, exclude domain.ConnID, ev core.Event) {
	room.Members.Each(func(m *domain.Member) {
		if m.ID == exclude {
			return
		}
		n.emit.Emit(m.ID, ev)
	})
}
