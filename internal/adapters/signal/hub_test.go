package signal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upgradedConn returns the server side of a live socket whose client never reads.
func upgradedConn(t *testing.T) *websocket.Conn {
	t.Helper()
	ch := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ch <- ws
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case ws := <-ch:
		t.Cleanup(func() { _ = ws.Close() })
		return ws
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade did not complete")
		return nil
	}
}

// queuedConn has no socket; frames stay in its send queue for inspection.
func queuedConn(id domain.ConnID, buffer int) *WsSignalConn {
	return &WsSignalConn{id: id, codec: jsonCodec{}, send: make(chan core.Frame, buffer)}
}

func drain(t *testing.T, c *WsSignalConn) []wireMessage {
	t.Helper()
	var out []wireMessage
	for {
		select {
		case f := <-c.send:
			var m wireMessage
			require.NoError(t, json.Unmarshal(f, &m))
			out = append(out, m)
		default:
			return out
		}
	}
}

func kinds(msgs []wireMessage) []core.EventKind {
	out := make([]core.EventKind, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Type)
	}
	return out
}

type backpressureFixture struct {
	coord *app.Coordinator
	hub   *Hub
	slow  *WsSignalConn
	peer  *WsSignalConn
	room  domain.RoomID
}

// newBackpressureFixture puts a slow host with a one-slot queue and no
// writer in a room, then lets a peer join so the host's queue overflows.
func newBackpressureFixture(t *testing.T, action app.BackpressureAction) *backpressureFixture {
	t.Helper()
	hub := NewHub(app.SimplePolicy{Action: action})
	coord := app.NewCoordinator(hub, app.Options{HostReassignment: true})
	cfg := DefaultSettings()
	cfg.SendBuffer = 1
	ctl := NewSignalWSController(coord, hub, cfg)

	slow := &WsSignalConn{id: "slow", conn: upgradedConn(t), codec: jsonCodec{}, send: make(chan core.Frame, cfg.SendBuffer)}
	peer := queuedConn("peer", 16)
	hub.Register(slow)
	hub.Register(peer)
	go ctl.readPump(func() {}, slow)

	room := coord.CreateRoom(slow.id, 4).RoomID
	_, err := coord.JoinRoom(peer.id, room)
	require.NoError(t, err)

	return &backpressureFixture{coord: coord, hub: hub, slow: slow, peer: peer, room: room}
}

func (f *backpressureFixture) slowClosed() bool {
	f.slow.mu.RLock()
	defer f.slow.mu.RUnlock()
	return f.slow.closed
}

func TestHubKicksSlowConnection(t *testing.T) {
	f := newBackpressureFixture(t, app.KickConnection)

	assert.True(t, f.slowClosed(), "overflowing connection is closed at once")

	require.Eventually(t, func() bool {
		_, in := f.coord.RoomOf(f.slow.id)
		return !in
	}, 2*time.Second, 10*time.Millisecond, "read pump exit runs the disconnect path")
	assert.Equal(t, 1, f.hub.Active())

	var got []wireMessage
	require.Eventually(t, func() bool {
		got = append(got, drain(t, f.peer)...)
		return len(got) >= 4
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []core.EventKind{core.KindRosterUpdated, core.KindHostChanged, core.KindRosterUpdated, core.KindPeerLeft}, kinds(got))

	var left core.PeerLeft
	require.NoError(t, json.Unmarshal(got[3].Data, &left))
	assert.Equal(t, f.slow.id, left.PeerID)

	info, ok := f.coord.RoomInfo(f.room)
	require.True(t, ok)
	assert.Equal(t, 1, info.Members)
}

func TestHubDropsFrameAndKeepsConnection(t *testing.T) {
	f := newBackpressureFixture(t, app.DropFrame)

	assert.False(t, f.slowClosed())
	assert.Equal(t, 2, f.hub.Active())

	room, in := f.coord.RoomOf(f.slow.id)
	require.True(t, in)
	assert.Equal(t, f.room, room)

	// roster-updated took the only slot; peer-joined was discarded
	queued := drain(t, f.slow)
	assert.Equal(t, []core.EventKind{core.KindRosterUpdated}, kinds(queued))

	// once the queue has room again the connection keeps receiving
	_, err := f.coord.Route(f.peer.id, f.room, f.slow.id, core.Payload(`{"x":1}`))
	require.NoError(t, err)
	assert.Equal(t, []core.EventKind{core.KindSignal}, kinds(drain(t, f.slow)))
	assert.False(t, f.slowClosed())
}

func TestDispatchUnknownCommandIsNotAPong(t *testing.T) {
	hub := NewHub(nil)
	coord := app.NewCoordinator(hub, app.Options{})
	ctl := NewSignalWSController(coord, hub, DefaultSettings())
	c := queuedConn("a", 4)
	hub.Register(c)

	ctl.dispatch(c, command{Type: "teleport", ID: "1", Body: struct{}{}})
	msgs := drain(t, c)
	require.Len(t, msgs, 1)
	assert.Equal(t, core.KindRoomError, msgs[0].Type)
	assert.Equal(t, "1", msgs[0].ID)
	var e core.RoomError
	require.NoError(t, json.Unmarshal(msgs[0].Data, &e))
	assert.Equal(t, core.CodeBadRequest, e.Code)

	ctl.dispatch(c, command{Type: cmdPing, ID: "2"})
	msgs = drain(t, c)
	require.Len(t, msgs, 1)
	assert.Equal(t, core.KindPong, msgs[0].Type)
}
