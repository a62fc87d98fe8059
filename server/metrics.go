package server

import (
	"sync/atomic"
)

// SessionMetrics are the runtime counters of one session.
type SessionMetrics struct {
	TickCount       int64 // gameplay ticks run
	InputsAccepted  int64 // inputs queued for the next tick
	InputsDiscarded int64 // inputs received outside the Active phase
	InputsRejected  int64 // inputs from a connection outside the session
	Broadcasts      int64 // messages fanned out to both participants
	SendFailures    int64 // per-connection sends that failed
	TotalTickNs     int64 // accumulated tick duration
}

func (m *SessionMetrics) IncAccepted()     { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *SessionMetrics) IncDiscarded()    { atomic.AddInt64(&m.InputsDiscarded, 1) }
func (m *SessionMetrics) IncRejected()     { atomic.AddInt64(&m.InputsRejected, 1) }
func (m *SessionMetrics) IncBroadcasts()   { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *SessionMetrics) IncSendFailures() { atomic.AddInt64(&m.SendFailures, 1) }
// AddTick records one tick that took ns nanoseconds.
func (m *SessionMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot returns a read-only copy for the HTTP surface.
func (m *SessionMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":       tick,
		"inputs_accepted":  atomic.LoadInt64(&m.InputsAccepted),
		"inputs_discarded": atomic.LoadInt64(&m.InputsDiscarded),
		"inputs_rejected":  atomic.LoadInt64(&m.InputsRejected),
		"broadcasts":       atomic.LoadInt64(&m.Broadcasts),
		"send_failures":    atomic.LoadInt64(&m.SendFailures),
		"avg_tick_ms":      avgMs,
	}
}

// ServerMetrics are process-wide counters.
type ServerMetrics struct {
	ConnectionsOpened int64
	ConnectionsClosed int64
	SessionsCreated   int64
	SessionsEnded     int64
}

func (m *ServerMetrics) IncOpened()         { atomic.AddInt64(&m.ConnectionsOpened, 1) }
func (m *ServerMetrics) IncClosed()         { atomic.AddInt64(&m.ConnectionsClosed, 1) }
func (m *ServerMetrics) IncSessionCreated() { atomic.AddInt64(&m.SessionsCreated, 1) }
func (m *ServerMetrics) IncSessionEnded()   { atomic.AddInt64(&m.SessionsEnded, 1) }

// Snapshot returns a read-only copy for the HTTP surface.
func (m *ServerMetrics) Snapshot() map[string]any {
	return map[string]any{
		"connections_opened": atomic.LoadInt64(&m.ConnectionsOpened),
		"connections_closed": atomic.LoadInt64(&m.ConnectionsClosed),
		"sessions_created":   atomic.LoadInt64(&m.SessionsCreated),
		"sessions_ended":     atomic.LoadInt64(&m.SessionsEnded),
	}
}
