package signal

import (
	"strings"
	"testing"

	"github.com/dkeye/Rendezvous/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandValid(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{"create without data", `{"type":"create-room"}`, createRoomData{}},
		{"join", `{"type":"join-room","id":"7","data":{"roomId":"abc"}}`, joinRoomData{RoomID: "abc"}},
		{"leave", `{"type":"leave-room","data":{"roomId":"abc"}}`, leaveRoomData{RoomID: "abc"}},
		{"rename", `{"type":"set-display-name","data":{"roomId":"abc","name":"Ann"}}`, setDisplayNameData{RoomID: "abc", Name: "Ann"}},
		{"ping", `{"type":"ping"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := parseCommand([]byte(tt.in), 1024)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.Body)
		})
	}
}

func TestParseCommandKeepsRequestID(t *testing.T) {
	cmd, err := parseCommand([]byte(`{"type":"create-room","id":"req-1","data":{"capacity":4}}`), 1024)
	require.NoError(t, err)
	assert.Equal(t, "req-1", cmd.ID)
	d := cmd.Body.(createRoomData)
	require.NotNil(t, d.Capacity)
	assert.Equal(t, 4, *d.Capacity)
}

func TestParseSignalKeepsPayloadVerbatim(t *testing.T) {
	in := `{"type":"signal","data":{"roomId":"r","targetId":"p","payload":{"sdp":"v=0","type":"offer"}}}`
	cmd, err := parseCommand([]byte(in), 1024)
	require.NoError(t, err)

	d := cmd.Body.(signalData)
	assert.Equal(t, domain.RoomID("r"), d.RoomID)
	assert.Equal(t, domain.ConnID("p"), d.TargetID)
	assert.JSONEq(t, `{"sdp":"v=0","type":"offer"}`, string(d.Payload))
}

func TestParseSignalAcceptsAnyJSONValue(t *testing.T) {
	for _, payload := range []string{`"v=0\r\no=- 1 2 IN IP4 0.0.0.0"`, `42`, `true`, `[1,2]`} {
		t.Run(payload, func(t *testing.T) {
			in := `{"type":"signal","data":{"roomId":"r","payload":` + payload + `}}`
			cmd, err := parseCommand([]byte(in), 1024)
			require.NoError(t, err)
			assert.JSONEq(t, payload, string(cmd.Body.(signalData).Payload))
		})
	}
}

func TestParseCommandRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		msg  string
	}{
		{"not json", `nope`, "invalid"},
		{"missing type", `{}`, "missing type"},
		{"unknown type", `{"type":"offer"}`, "unknown message type"},
		{"unknown envelope field", `{"type":"ping","extra":1}`, "unknown field"},
		{"unknown data field", `{"type":"join-room","data":{"roomId":"a","name":"x"}}`, "unknown field"},
		{"join without data", `{"type":"join-room"}`, "missing data"},
		{"join empty room", `{"type":"join-room","data":{"roomId":""}}`, "missing roomId"},
		{"zero capacity", `{"type":"create-room","data":{"capacity":0}}`, "capacity"},
		{"null payload", `{"type":"signal","data":{"roomId":"r","payload":null}}`, "missing payload"},
		{"missing payload", `{"type":"signal","data":{"roomId":"r"}}`, "missing payload"},
		{"oversized payload", `{"type":"signal","data":{"roomId":"r","payload":["` + strings.Repeat("x", 40) + `"]}}`, "exceeds"},
		{"ping with data", `{"type":"ping","data":[1]}`, "no data"},
		{"trailing data", `{"type":"ping"}{"type":"ping"}`, "trailing"},
		{"long room id", `{"type":"leave-room","data":{"roomId":"` + strings.Repeat("a", 65) + `"}}`, "too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCommand([]byte(tt.in), 32)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
