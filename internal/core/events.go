package core

import "github.com/dkeye/Rendezvous/internal/domain"

type EventKind string

const (
	KindWelcome       EventKind = "welcome"
	KindPong          EventKind = "pong"
	KindRoomCreated   EventKind = "room-created"
	KindRoomJoined    EventKind = "room-joined"
	KindRoomLeft      EventKind = "room-left"
	KindRoomError     EventKind = "room-error"
	KindRosterUpdated EventKind = "roster-updated"
	KindPeerJoined    EventKind = "peer-joined"
	KindPeerLeft      EventKind = "peer-left"
	KindHostChanged   EventKind = "host-changed"
	KindSignal        EventKind = "signal"
)

// Event is the closed set of outbound messages. Each kind has exactly one payload type.
type Event interface {
	Kind() EventKind
}

// Error codes carried by RoomError.
const (
	CodeRoomNotFound = "room_not_found"
	CodeRoomFull     = "room_full"
	CodeBadRequest   = "bad_request"
	CodeInvalidName  = "invalid_name"
)

type Welcome struct {
	ConnectionID domain.ConnID `json:"connectionId"`
}

type Pong struct{}

type RoomCreated struct {
	RoomID   domain.RoomID `json:"roomId"`
	Capacity int           `json:"capacity"`
	IsHost   bool          `json:"isHost"`
}

type RoomJoined struct {
	OK      bool                 `json:"ok"`
	RoomID  domain.RoomID        `json:"roomId"`
	IsHost  bool                 `json:"isHost"`
	HostID  domain.ConnID        `json:"hostId,omitempty"`
	PeerIDs []domain.ConnID      `json:"peerIds"`
	Roster  []domain.RosterEntry `json:"roster"`
}

type RoomLeft struct {
	RoomID domain.RoomID `json:"roomId"`
}

type RoomError struct {
	RoomID domain.RoomID `json:"roomId,omitempty"`
	Code   string        `json:"code"`
	Reason string        `json:"reason"`
}

type RosterUpdated struct {
	RoomID domain.RoomID        `json:"roomId"`
	HostID domain.ConnID        `json:"hostId,omitempty"`
	Roster []domain.RosterEntry `json:"roster"`
}

type PeerJoined struct {
	RoomID domain.RoomID `json:"roomId"`
	PeerID domain.ConnID `json:"peerId"`
}

type PeerLeft struct {
	RoomID domain.RoomID `json:"roomId"`
	PeerID domain.ConnID `json:"peerId"`
}

type HostChanged struct {
	RoomID    domain.RoomID `json:"roomId"`
	NewHostID domain.ConnID `json:"newHostId"`
}

// SignalDelivered carries a relayed payload to its recipient.
type SignalDelivered struct {
	RoomID   domain.RoomID `json:"roomId"`
	SenderID domain.ConnID `json:"senderId"`
	Payload  Payload       `json:"payload"`
}

func (Welcome) Kind() EventKind         { return KindWelcome }
func (Pong) Kind() EventKind            { return KindPong }
func (RoomCreated) Kind() EventKind     { return KindRoomCreated }
func (RoomJoined) Kind() EventKind      { return KindRoomJoined }
func (RoomLeft) Kind() EventKind        { return KindRoomLeft }
func (RoomError) Kind() EventKind       { return KindRoomError }
func (RosterUpdated) Kind() EventKind   { return KindRosterUpdated }
func (PeerJoined) Kind() EventKind      { return KindPeerJoined }
func (PeerLeft) Kind() EventKind        { return KindPeerLeft }
func (HostChanged) Kind() EventKind     { return KindHostChanged }
func (SignalDelivered) Kind() EventKind { return KindSignal }
