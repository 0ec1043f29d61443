package signal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dkeye/Rendezvous/internal/core"
	"github.com/dkeye/Rendezvous/internal/domain"
)

type commandType string

const (
	cmdCreateRoom     commandType = "create-room"
	cmdJoinRoom       commandType = "join-room"
	cmdSignal         commandType = "signal"
	cmdSetDisplayName commandType = "set-display-name"
	cmdLeaveRoom      commandType = "leave-room"
	cmdPing           commandType = "ping"
)

const maxRoomIDLen = 64

type envelope struct {
	Type commandType     `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// outbound is the wire shape of every server message.
type outbound struct {
	Type core.EventKind `json:"type"`
	ID   string         `json:"id,omitempty"`
	Data core.Event     `json:"data"`
}

type createRoomData struct {
	Capacity *int `json:"capacity,omitempty"`
}

type joinRoomData struct {
	RoomID domain.RoomID `json:"roomId"`
}

type signalData struct {
	RoomID   domain.RoomID   `json:"roomId"`
	TargetID domain.ConnID   `json:"targetId,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

type setDisplayNameData struct {
	RoomID domain.RoomID `json:"roomId"`
	Name   string        `json:"name"`
}

type leaveRoomData struct {
	RoomID domain.RoomID `json:"roomId"`
}

// command is a validated inbound message. Body holds one of the *Data types,
// or nil for ping.
type command struct {
	Type commandType
	ID   string
	Body any
}

var errEmptyData = errors.New("missing data")

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("unexpected trailing data")
	}
	return nil
}

func parseCommand(data []byte, maxPayload int) (command, error) {
	var env envelope
	if err := decodeStrict(data, &env); err != nil {
		return command{}, err
	}
	cmd := command{Type: env.Type, ID: env.ID}

	var err error
	switch env.Type {
	case cmdCreateRoom:
		var d createRoomData
		if len(env.Data) > 0 {
			err = decodeStrict(env.Data, &d)
		}
		if err == nil {
			err = d.validate()
		}
		cmd.Body = d
	case cmdJoinRoom:
		var d joinRoomData
		if err = decodeData(env.Data, &d); err == nil {
			err = validRoomID(d.RoomID)
		}
		cmd.Body = d
	case cmdSignal:
		var d signalData
		if err = decodeData(env.Data, &d); err == nil {
			err = d.validate(maxPayload)
		}
		cmd.Body = d
	case cmdSetDisplayName:
		var d setDisplayNameData
		if err = decodeData(env.Data, &d); err == nil {
			err = validRoomID(d.RoomID)
		}
		cmd.Body = d
	case cmdLeaveRoom:
		var d leaveRoomData
		if err = decodeData(env.Data, &d); err == nil {
			err = validRoomID(d.RoomID)
		}
		cmd.Body = d
	case cmdPing:
		if len(env.Data) > 0 && !bytes.Equal(bytes.TrimSpace(env.Data), []byte("{}")) && !bytes.Equal(env.Data, []byte("null")) {
			err = fmt.Errorf("ping takes no data")
		}
	case "":
		err = fmt.Errorf("missing type")
	default:
		err = fmt.Errorf("unknown message type %q", env.Type)
	}
	if err != nil {
		return command{Type: env.Type, ID: env.ID}, fmt.Errorf("%s: %w", env.Type, err)
	}
	return cmd, nil
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return errEmptyData
	}
	return decodeStrict(raw, v)
}

func validRoomID(id domain.RoomID) error {
	if id == "" {
		return fmt.Errorf("missing roomId")
	}
	if len(id) > maxRoomIDLen {
		return fmt.Errorf("roomId too long")
	}
	return nil
}

func (d createRoomData) validate() error {
	if d.Capacity != nil && *d.Capacity < 1 {
		return fmt.Errorf("capacity must be at least 1")
	}
	return nil
}

func (d signalData) validate(maxPayload int) error {
	if err := validRoomID(d.RoomID); err != nil {
		return err
	}
	p := bytes.TrimSpace(d.Payload)
	if len(p) == 0 || bytes.Equal(p, []byte("null")) {
		return fmt.Errorf("missing payload")
	}
	if maxPayload > 0 && len(p) > maxPayload {
		return fmt.Errorf("payload exceeds %d bytes", maxPayload)
	}
	return nil
}
