package signal

import (
	"errors"
	"sync"

	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

// Hub maps live connection ids to sockets and implements core.Emitter.
type Hub struct {
	mu     sync.RWMutex
	conns  map[domain.ConnID]*WsSignalConn
	policy app.Policy
}

func NewHub(policy app.Policy) *Hub {
	if policy == nil {
		policy = app.SimplePolicy{Action: app.KickConnection}
	}
	return &Hub{
		conns:  make(map[domain.ConnID]*WsSignalConn),
		policy: policy,
	}
}

func (h *Hub) Register(c *WsSignalConn) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) Unregister(id domain.ConnID) {
	h.mu.Lock()
	delete(h.conns, id)
	h.mu.Unlock()
}

// Active reports how many sockets are currently connected.
func (h *Hub) Active() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) Emit(to domain.ConnID, ev core.Event) {
	h.send(to, "", ev)
}

// Reply sends a direct answer that echoes the request id.
func (h *Hub) Reply(to domain.ConnID, requestID string, ev core.Event) {
	h.send(to, requestID, ev)
}

func (h *Hub) send(to domain.ConnID, requestID string, ev core.Event) {
	h.mu.RLock()
	c, ok := h.conns[to]
	h.mu.RUnlock()
	if !ok {
		log.Debug().Str("module", "signal.hub").Str("conn", string(to)).Str("type", string(ev.Kind())).Msg("emit to unknown connection")
		return
	}

	frame, err := c.codec.Encode(outbound{Type: ev.Kind(), ID: requestID, Data: ev})
	if err != nil {
		log.Error().Err(err).Str("module", "signal.hub").Str("type", string(ev.Kind())).Msg("encode")
		return
	}

	err = c.TrySend(frame)
	switch {
	case err == nil:
	case errors.Is(err, ErrBackpressure):
		action := h.policy.OnBackPressure(to)
		log.Warn().Str("module", "signal.hub").Str("conn", string(to)).Str("action", action.String()).Msg("send queue full")
		if action == app.KickConnection {
			c.Close()
		}
	default:
		log.Debug().Err(err).Str("module", "signal.hub").Str("conn", string(to)).Msg("send dropped")
	}
}
