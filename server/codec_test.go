package server

import (
	"encoding/json"
	"testing"
)

func TestDecodeInboundJSON(t *testing.T) {
	c, err := CodecByName("")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		frame string
		want  any
	}{
		{`{"type":"ready","data":{"ready":true}}`, ReadyMessage{Ready: true}},
		{`{"type":"ready","data":{"ready":false}}`, ReadyMessage{Ready: false}},
		{`{"type":"playerReady"}`, ReadyMessage{Ready: true}},
		{`{"type":"playerCancelReady"}`, ReadyMessage{Ready: false}},
		{`{"type":"move","data":{"direction":"left","speed":3}}`, MoveMessage{Direction: "left", Speed: 3}},
		{`{"type":"flap"}`, FlapMessage{}},
		{`{"type":"shoot","data":{}}`, ShootMessage{}},
	}
	for _, tc := range cases {
		got, err := DecodeInbound(c, []byte(tc.frame))
		if err != nil {
			t.Errorf("%s: %v", tc.frame, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %#v, want %#v", tc.frame, got, tc.want)
		}
	}
}

func TestDecodeInboundRejects(t *testing.T) {
	c, _ := CodecByName("json")
	for _, frame := range []string{
		``,
		`not json`,
		`{"type":"teleport"}`,
		`{"type":"ready"}`,
		`{"type":"move","data":"left"}`,
	} {
		if msg, err := DecodeInbound(c, []byte(frame)); err == nil {
			t.Errorf("%q decoded to %#v, want error", frame, msg)
		}
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	c, err := CodecByName("msgpack")
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Encode(MsgMove, MoveMessage{Direction: "right"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeInbound(c, b)
	if err != nil {
		t.Fatal(err)
	}
	if got != (MoveMessage{Direction: "right"}) {
		t.Fatalf("got %#v", got)
	}

	b, err = c.Encode(MsgFlap, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := DecodeInbound(c, b); err != nil || got != (FlapMessage{}) {
		t.Fatalf("flap decoded to %#v, %v", got, err)
	}
}

func TestUnknownCodec(t *testing.T) {
	if _, err := CodecByName("xml"); err == nil {
		t.Fatal("xml codec accepted")
	}
}

func TestStateWireShape(t *testing.T) {
	c, _ := CodecByName("json")
	snap := WorldSnapshot{
		Tick:        7,
		LeftPlayer:  PlayerSnapshot{X: 100, Y: 300, Velocity: -10},
		RightPlayer: PlayerSnapshot{X: 500, Y: 300},
		Bullets:     []ProjectileSnapshot{{X: 450, Y: 300, Direction: "left", Owner: "right"}},
	}
	b, err := c.Encode(MsgState, snap)
	if err != nil {
		t.Fatal(err)
	}

	var frame struct {
		Type string `json:"type"`
		Data struct {
			Tick        int                `json:"tick"`
			LeftPlayer  map[string]float64 `json:"leftPlayer"`
			RightPlayer map[string]float64 `json:"rightPlayer"`
			Bullets     []map[string]any   `json:"bullets"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &frame); err != nil {
		t.Fatal(err)
	}
	if frame.Type != MsgState || frame.Data.Tick != 7 {
		t.Fatalf("frame = %s", b)
	}
	if frame.Data.LeftPlayer["velocity"] != -10 || frame.Data.RightPlayer["x"] != 500 {
		t.Fatalf("players = %s", b)
	}
	if len(frame.Data.Bullets) != 1 || frame.Data.Bullets[0]["direction"] != "left" {
		t.Fatalf("bullets = %s", b)
	}
}
