package signal

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

// Settings tune a signalling socket.
type Settings struct {
	ReadLimit       int64
	PingPeriod      time.Duration
	PongWait        time.Duration
	WriteWait       time.Duration
	SendBuffer      int
	SignalRate      float64
	SignalBurst     int
	MaxPayloadBytes int
	// AllowedOrigins lists accepted Origin headers. "*" accepts any origin;
	// an empty list accepts same-host requests only.
	AllowedOrigins []string
}

func DefaultSettings() Settings {
	return Settings{
		ReadLimit:       64 * 1024,
		PingPeriod:      54 * time.Second,
		PongWait:        60 * time.Second,
		WriteWait:       10 * time.Second,
		SendBuffer:      64,
		SignalRate:      50,
		SignalBurst:     100,
		MaxPayloadBytes: 48 * 1024,
		AllowedOrigins:  []string{"*"},
	}
}

type SignalWSController struct {
	Coord *app.Coordinator
	Hub   *Hub

	cfg      Settings
	limiter  *ConnRateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(coord *app.Coordinator, hub *Hub, cfg Settings) *SignalWSController {
	ctl := &SignalWSController{
		Coord:   coord,
		Hub:     hub,
		cfg:     cfg,
		limiter: NewConnRateLimiter(cfg.SignalRate, cfg.SignalBurst),
	}
	ctl.upgrader = websocket.Upgrader{
		Subprotocols: []string{MsgpackSubprotocol},
		CheckOrigin:  func(r *http.Request) bool { return originAllowed(r, cfg.AllowedOrigins) },
	}
	return ctl
}

type WsSignalConn struct {
	id    domain.ConnID
	conn  *websocket.Conn
	codec Codec
	send  chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var _ core.SignalConnection = (*WsSignalConn)(nil)

// HandleSignal upgrades the request, greets the client with its connection
// id and starts the read and write pumps. ctx bounds the socket's lifetime.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		id:    domain.NewConnID(),
		conn:  ws,
		codec: codecFor(ws.Subprotocol()),
		send:  make(chan core.Frame, ctl.cfg.SendBuffer),
	}
	log.Info().Str("module", "signal").Str("conn", string(conn.id)).Str("codec", conn.codec.Name()).
		Str("remote", c.ClientIP()).Msg("new WS connection")

	ctl.Hub.Register(conn)
	ctl.Hub.Emit(conn.id, core.Welcome{ConnectionID: conn.id})

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(cancel, conn)
}

func originAllowed(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(strings.TrimRight(a, "/"), origin) {
			return true
		}
	}
	if len(allowed) > 0 {
		return false
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}
