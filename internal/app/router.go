package app

import (
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

// Route relays an opaque payload from sender to target, or to every other
// member of the room when target is empty. It returns how many connections
// the signal was handed to; a non-nil error means the signal was dropped.
func (c *Coordinator) Route(sender domain.ConnID, id domain.RoomID, target domain.ConnID, payload core.Payload) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.store.Get(id)
	if !ok {
		return 0, ErrRoomNotFound
	}
	if !room.Members.Has(sender) {
		return 0, ErrNotAMember
	}

	ev := core.SignalDelivered{RoomID: id, SenderID: sender, Payload: payload}

	if target != "" {
		if !room.Members.Has(target) {
			return 0, ErrInvalidTarget
		}
		c.emit.Emit(target, ev)
		log.Debug().Str("module", "app.router").Str("room", string(id)).Str("from", string(sender)).
			Str("to", string(target)).Msg("signal relayed")
		return 1, nil
	}

	sent := 0
	room.Members.Each(func(m *domain.Member) {
		if m.ID == sender {
			return
		}
		c.emit.Emit(m.ID, ev)
		sent++
	})
	log.Debug().Str("module", "app.router").Str("room", string(id)).Str("from", string(sender)).
		Int("sent_to", sent).Msg("signal broadcast")
	return sent, nil
}
