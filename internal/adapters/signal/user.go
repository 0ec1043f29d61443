package signal

import (
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/rs/zerolog/log"
)

// handleRename is fire-and-forget; only an unusable name is answered.
func (ctl *SignalWSController) handleRename(conn *WsSignalConn, requestID string, d setDisplayNameData) {
	name, err := domain.NormalizeDisplayName(d.Name)
	if err != nil {
		ctl.Hub.Reply(conn.id, requestID, core.RoomError{
			RoomID: d.RoomID,
			Code:   core.CodeInvalidName,
			Reason: err.Error(),
		})
		return
	}
	if err := ctl.Coord.Rename(conn.id, d.RoomID, name); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(conn.id)).Str("room", string(d.RoomID)).Msg("rename dropped")
	}
}
