package app

import (
	"sync"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
)

type sentEvent struct {
	To    domain.ConnID
	Event core.Event
}

// recorder is an Emitter that remembers everything it was asked to deliver.
type recorder struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recorder) Emit(to domain.ConnID, ev core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{To: to, Event: ev})
}

func (r *recorder) For(id domain.ConnID) []core.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []core.Event
	for _, e := range r.events {
		if e.To == id {
			out = append(out, e.Event)
		}
	}
	return out
}

func (r *recorder) OfKind(id domain.ConnID, kind core.EventKind) []core.Event {
	var out []core.Event
	for _, ev := range r.For(id) {
		if ev.Kind() == kind {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) All() []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sentEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func newTestCoordinator(opts Options) (*Coordinator, *recorder) {
	rec := &recorder{}
	if opts.IDGenerator == nil {
		opts.IDGenerator = RandomRoomID(8)
	}
	return NewCoordinator(rec, opts), rec
}
