package server

import (
	"go.uber.org/zap"

	"flapduel/server/game"
)

// Broadcaster fans messages out to exactly the two participants of a session.
// Failed sends are logged and counted but never retried: the peer is gone or
// too slow, and the next tick carries fresher state anyway.
type Broadcaster struct {
	targets [2]Conn
	log     *zap.SugaredLogger
	metrics *SessionMetrics
}

// NewBroadcaster targets left and right, counting into metrics.
func NewBroadcaster(left, right Conn, log *zap.SugaredLogger, metrics *SessionMetrics) *Broadcaster {
	return &Broadcaster{
		targets: [2]Conn{game.Left: left, game.Right: right},
		log:     log,
		metrics: metrics,
	}
}

// All sends to both participants.
func (b *Broadcaster) All(msgType string, payload any) {
	b.metrics.IncBroadcasts()
	for _, side := range game.Sides {
		b.To(side, msgType, payload)
	}
}

// To sends to one participant.
func (b *Broadcaster) To(side game.Side, msgType string, payload any) {
	c := b.targets[side]
	if err := c.Send(msgType, payload); err != nil {
		b.metrics.IncSendFailures()
		b.log.Warnw("send failed", "side", side, "conn", c.ID(), "type", msgType, "err", err)
	}
}
