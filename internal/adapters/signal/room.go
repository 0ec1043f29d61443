package signal

import (
	"errors"

	"github.com/dkeye/Rendezvous/internal/app"
	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleCreate(conn *WsSignalConn, requestID string, d createRoomData) {
	capacity := 0
	if d.Capacity != nil {
		capacity = *d.Capacity
	}
	res := ctl.Coord.CreateRoom(conn.id, capacity)
	ctl.Hub.Reply(conn.id, requestID, core.RoomCreated{
		RoomID:   res.RoomID,
		Capacity: res.Capacity,
		IsHost:   true,
	})
}

func (ctl *SignalWSController) handleJoin(conn *WsSignalConn, requestID string, d joinRoomData) {
	res, err := ctl.Coord.JoinRoom(conn.id, d.RoomID)
	if err != nil {
		log.Info().Err(err).Str("module", "signal").Str("conn", string(conn.id)).Str("room", string(d.RoomID)).Msg("join refused")
		ctl.Hub.Reply(conn.id, requestID, core.RoomError{
			RoomID: d.RoomID,
			Code:   admissionCode(err),
			Reason: err.Error(),
		})
		return
	}
	ctl.Hub.Reply(conn.id, requestID, core.RoomJoined{
		OK:      true,
		RoomID:  res.RoomID,
		IsHost:  res.IsHost,
		HostID:  res.HostID,
		PeerIDs: res.PeerIDs,
		Roster:  res.Roster,
	})
}

// handleLeave answers room-left even when the connection was not a member.
func (ctl *SignalWSController) handleLeave(conn *WsSignalConn, requestID string, d leaveRoomData) {
	if err := ctl.Coord.Leave(conn.id, d.RoomID); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(conn.id)).Str("room", string(d.RoomID)).Msg("leave ignored")
	}
	ctl.Hub.Reply(conn.id, requestID, core.RoomLeft{RoomID: d.RoomID})
}

func (ctl *SignalWSController) handleRelay(conn *WsSignalConn, d signalData) {
	if _, err := ctl.Coord.Route(conn.id, d.RoomID, d.TargetID, core.Payload(d.Payload)); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("conn", string(conn.id)).Str("room", string(d.RoomID)).Msg("signal dropped")
	}
}

func admissionCode(err error) string {
	switch {
	case errors.Is(err, app.ErrRoomNotFound):
		return core.CodeRoomNotFound
	case errors.Is(err, app.ErrRoomFull):
		return core.CodeRoomFull
	default:
		return core.CodeBadRequest
	}
}
