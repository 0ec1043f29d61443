package signal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackSubprotocol selects binary MessagePack frames during the upgrade.
const MsgpackSubprotocol = "rendezvous.msgpack"

// Codec converts between wire frames and the canonical JSON form the
// protocol parser understands.
type Codec interface {
	Name() string
	MessageType() int
	Decode(frame []byte) ([]byte, error)
	Encode(v any) ([]byte, error)
}

func codecFor(subprotocol string) Codec {
	if subprotocol == MsgpackSubprotocol {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Name() string                   { return "json" }
func (jsonCodec) MessageType() int               { return websocket.TextMessage }
func (jsonCodec) Decode(b []byte) ([]byte, error) { return b, nil }
func (jsonCodec) Encode(v any) ([]byte, error)   { return json.Marshal(v) }

type msgpackCodec struct{}

func (msgpackCodec) Name() string     { return "msgpack" }
func (msgpackCodec) MessageType() int { return websocket.BinaryMessage }

func (msgpackCodec) Decode(b []byte) ([]byte, error) {
	var v any
	if err := msgpack.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("msgpack decode: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("msgpack to json: %w", err)
	}
	return out, nil
}

func (msgpackCodec) Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return msgpack.Marshal(fromJSONNumbers(generic))
}

// fromJSONNumbers keeps integers integral when a JSON value is re-encoded.
func fromJSONNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, e := range t {
			t[k] = fromJSONNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = fromJSONNumbers(e)
		}
		return t
	default:
		return v
	}
}
