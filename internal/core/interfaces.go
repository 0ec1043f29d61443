package core

import (
	"encoding/json"

	"github.com/dkeye/Rendezvous/internal/domain"
)

// Frame is an encoded outbound message.
type Frame []byte

// Payload is an opaque negotiation blob (offer, answer, candidate).
// It is relayed verbatim and never inspected by the coordinator.
type Payload = json.RawMessage

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Emitter delivers one event to one live connection.
// Implementations must not block: a slow or gone connection loses the event.
type Emitter interface {
	Emit(to domain.ConnID, ev Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(to domain.ConnID, ev Event)

func (f EmitterFunc) Emit(to domain.ConnID, ev Event) { f(to, ev) }
