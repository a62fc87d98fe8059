package server

import (
	"fmt"

	"flapduel/server/game"
)

// Inbound message types.
const (
	MsgReady       = "ready"
	MsgMove        = "move"
	MsgFlap        = "flap"
	MsgShoot       = "shoot"
	MsgPlayerReady = "playerReady"       // legacy alias for ready{true}
	MsgCancelReady = "playerCancelReady" // legacy alias for ready{false}
)

// Outbound message types.
const (
	MsgWelcome              = "welcome"
	MsgQueued               = "queued"
	MsgPaired               = "paired"
	MsgReadyUpdate          = "ready"
	MsgCountdown            = "countdown"
	MsgCountdownAborted     = "countdown_aborted"
	MsgStart                = "start"
	MsgState                = "state"
	MsgGameOver             = "game_over"
	MsgOpponentDisconnected = "opponent_disconnected"
)

// Envelope is a decoded frame: its type and the still-encoded payload.
type Envelope struct {
	Type string
	Data []byte
}

// ReadyMessage toggles a participant's ready flag.
type ReadyMessage struct {
	Ready bool `json:"ready"`
}

// MoveMessage shifts the sender horizontally for one tick.
// Direction is "left" or "right"; a zero speed uses the configured move speed.
type MoveMessage struct {
	Direction string  `json:"direction"`
	Speed     float64 `json:"speed,omitempty"`
}

// FlapMessage sets the sender's vertical velocity to the flap impulse.
type FlapMessage struct{}

// ShootMessage fires a projectile outward from the sender.
type ShootMessage struct{}

// Welcome is the first message on every connection.
type Welcome struct {
	ConnectionID string `json:"connectionId"`
}

// Queued tells a waiting client its 1-based place in the queue.
type Queued struct {
	Position int `json:"position"`
}

// Paired announces the session and the side the receiver plays.
type Paired struct {
	SessionID string `json:"sessionId"`
	Side      string `json:"side"`
	Opponent  string `json:"opponent"`
	TickRate  int    `json:"tickRate"`
}

// ReadyStatus carries both ready flags after any toggle.
type ReadyStatus struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// Countdown is one countdown step.
type Countdown struct {
	Remaining int `json:"remaining"`
}

// CountdownAborted names the side that withdrew during the countdown.
type CountdownAborted struct {
	By string `json:"by"`
}

// GameOver ends a match. Winner is empty unless the match was decided.
type GameOver struct {
	Reason string `json:"reason"`
	Winner string `json:"winner,omitempty"`
	Scores Scores `json:"scores"`
}

// OpponentDisconnected goes to the surviving participant only.
type OpponentDisconnected struct {
	Side string `json:"side"`
}

// Scores are hits landed per side.
type Scores struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// PlayerSnapshot is one side's position and vertical velocity.
type PlayerSnapshot struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Velocity float64 `json:"velocity"`
}

// ProjectileSnapshot is a projectile in flight.
type ProjectileSnapshot struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction string  `json:"direction"`
	Owner     string  `json:"owner"`
}

// WorldSnapshot is the broadcast form of game.World. Field names follow the
// browser client: leftPlayer, rightPlayer, bullets.
type WorldSnapshot struct {
	Tick        int                  `json:"tick"`
	LeftPlayer  PlayerSnapshot       `json:"leftPlayer"`
	RightPlayer PlayerSnapshot       `json:"rightPlayer"`
	Bullets     []ProjectileSnapshot `json:"bullets"`
	Scores      Scores               `json:"scores"`
}

func snapshotOf(w game.World, scores Scores) WorldSnapshot {
	snap := WorldSnapshot{
		Tick:        w.Tick,
		LeftPlayer:  playerSnapshot(w.Player(game.Left)),
		RightPlayer: playerSnapshot(w.Player(game.Right)),
		Bullets:     make([]ProjectileSnapshot, 0, len(w.Projectiles)),
		Scores:      scores,
	}
	for _, pr := range w.Projectiles {
		dir := "right"
		if pr.Direction < 0 {
			dir = "left"
		}
		snap.Bullets = append(snap.Bullets, ProjectileSnapshot{
			X:         pr.X,
			Y:         pr.Y,
			Direction: dir,
			Owner:     pr.Owner.String(),
		})
	}
	return snap
}

func playerSnapshot(p game.Player) PlayerSnapshot {
	return PlayerSnapshot{X: p.X, Y: p.Y, Velocity: p.Velocity}
}

// DecodeInbound turns a raw client frame into one of the typed inbound
// messages. Unknown types and malformed payloads are errors.
func DecodeInbound(c Codec, b []byte) (any, error) {
	env, err := c.DecodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	switch env.Type {
	case MsgReady:
		var m ReadyMessage
		if err := c.DecodePayload(env, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case MsgPlayerReady:
		return ReadyMessage{Ready: true}, nil
	case MsgCancelReady:
		return ReadyMessage{Ready: false}, nil
	case MsgMove:
		var m MoveMessage
		if err := c.DecodePayload(env, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", env.Type, err)
		}
		return m, nil
	case MsgFlap:
		return FlapMessage{}, nil
	case MsgShoot:
		return ShootMessage{}, nil
	}
	return nil, fmt.Errorf("unknown message type %q", env.Type)
}

// moveDirection maps the wire direction onto the simulation's axis.
func moveDirection(v string) (float64, bool) {
	switch v {
	case "left":
		return -1, true
	case "right":
		return 1, true
	}
	return 0, false
}
