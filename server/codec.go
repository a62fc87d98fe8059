package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec frames messages for one connection. JSON travels as text frames,
// MessagePack as binary frames; both share the json struct tags.
type Codec interface {
	Name() string
	FrameType() int
	Encode(msgType string, payload any) ([]byte, error)
	DecodeEnvelope(b []byte) (Envelope, error)
	DecodePayload(env Envelope, v any) error
}

// CodecByName resolves the ?codec= query value. Empty means JSON.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return jsonCodec{}, nil
	case "msgpack":
		return msgpackCodec{}, nil
	}
	return nil, fmt.Errorf("unsupported codec %q", name)
}

var errEmptyFrame = errors.New("empty frame")

type jsonEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type jsonCodec struct{}

func (jsonCodec) Name() string   { return "json" }
func (jsonCodec) FrameType() int { return websocket.TextMessage }

func (jsonCodec) Encode(msgType string, payload any) ([]byte, error) {
	if msgType == "" {
		return nil, errors.New("encode: empty message type")
	}
	env := jsonEnvelope{Type: msgType}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = b
	}
	return json.Marshal(env)
}

func (jsonCodec) DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errEmptyFrame
	}
	var env jsonEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: env.Type, Data: env.Data}, nil
}

func (jsonCodec) DecodePayload(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("empty payload for type %q", env.Type)
	}
	return json.Unmarshal(env.Data, v)
}

type msgpackEnvelope struct {
	Type string             `json:"type"`
	Data msgpack.RawMessage `json:"data,omitempty"`
}

type msgpackCodec struct{}

func (msgpackCodec) Name() string   { return "msgpack" }
func (msgpackCodec) FrameType() int { return websocket.BinaryMessage }

func (msgpackCodec) Encode(msgType string, payload any) ([]byte, error) {
	if msgType == "" {
		return nil, errors.New("encode: empty message type")
	}
	env := msgpackEnvelope{Type: msgType}
	if payload != nil {
		b, err := msgpackMarshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = b
	}
	return msgpackMarshal(&env)
}

func (msgpackCodec) DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, errEmptyFrame
	}
	var env msgpackEnvelope
	if err := msgpackUnmarshal(b, &env); err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: env.Type, Data: env.Data}, nil
}

func (msgpackCodec) DecodePayload(env Envelope, v any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("empty payload for type %q", env.Type)
	}
	return msgpackUnmarshal(env.Data, v)
}

func msgpackMarshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func msgpackUnmarshal(b []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
