package signal

import (
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handlePing(conn *WsSignalConn, requestID string) {
	ctl.Hub.Reply(conn.id, requestID, core.Pong{})
}

func (ctl *SignalWSController) badRequest(conn *WsSignalConn, requestID string, err error) {
	log.Debug().Err(err).Str("module", "signal").Str("conn", string(conn.id)).Msg("bad request")
	ctl.Hub.Reply(conn.id, requestID, core.RoomError{Code: core.CodeBadRequest, Reason: err.Error()})
}
