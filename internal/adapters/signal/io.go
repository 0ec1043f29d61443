package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(ctl.cfg.WriteWait))
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(c.codec.MessageType(), data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.cfg.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(cancel context.CancelFunc, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
		cancel()
		ctl.Hub.Unregister(c.id)
		ctl.Coord.Disconnect(c.id)
		ctl.limiter.Forget(c.id)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
		ctl.handleFrame(c, data)
	}
}

func (ctl *SignalWSController) handleFrame(c *WsSignalConn, data []byte) {
	if !ctl.limiter.Allow(c.id) {
		log.Debug().Str("module", "signal").Str("conn", string(c.id)).Msg("rate limited, frame dropped")
		return
	}

	raw, err := c.codec.Decode(data)
	if err != nil {
		ctl.badRequest(c, "", err)
		return
	}
	cmd, err := parseCommand(raw, ctl.cfg.MaxPayloadBytes)
	if err != nil {
		ctl.badRequest(c, cmd.ID, err)
		return
	}
	ctl.dispatch(c, cmd)
}

func (ctl *SignalWSController) dispatch(c *WsSignalConn, cmd command) {
	switch d := cmd.Body.(type) {
	case createRoomData:
		ctl.handleCreate(c, cmd.ID, d)
	case joinRoomData:
		ctl.handleJoin(c, cmd.ID, d)
	case leaveRoomData:
		ctl.handleLeave(c, cmd.ID, d)
	case signalData:
		ctl.handleRelay(c, d)
	case setDisplayNameData:
		ctl.handleRename(c, cmd.ID, d)
	case nil:
		ctl.handlePing(c, cmd.ID)
	default:
		log.Error().Str("module", "signal").Str("type", string(cmd.Type)).Msg("no handler for command")
		ctl.badRequest(c, cmd.ID, fmt.Errorf("%s: unsupported", cmd.Type))
	}
}
