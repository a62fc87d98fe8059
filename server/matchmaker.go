package server

import (
	"sync"

	"go.uber.org/zap"
)

// PairFunc receives a freshly matched pair; left arrived first.
type PairFunc func(left, right Conn)

// Matchmaker pairs waiting connections strictly first-come-first-served.
type Matchmaker struct {
	mu      sync.Mutex
	waiting *Registry
	onPair  PairFunc
	log     *zap.SugaredLogger
}

// NewMatchmaker returns an empty queue that hands pairs to onPair.
func NewMatchmaker(onPair PairFunc, log *zap.SugaredLogger) *Matchmaker {
	return &Matchmaker{
		waiting: NewRegistry(),
		onPair:  onPair,
		log:     log,
	}
}

// Enqueue adds c to the back of the queue and pairs whoever can be paired.
func (m *Matchmaker) Enqueue(c Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !c.Connected() {
		return
	}
	if !m.waiting.Enqueue(c) {
		return
	}
	m.log.Debugw("queued", "conn", c.ID(), "waiting", m.waiting.Len())
	m.drainLocked()

	if pos := m.waiting.Position(c.ID()); pos > 0 {
		if err := c.Send(MsgQueued, Queued{Position: pos}); err != nil {
			m.log.Warnw("queue notice failed", "conn", c.ID(), "err", err)
		}
	}
}

// Remove evicts c if it is still waiting. A false result means c was never
// queued or has already been handed to a session.
func (m *Matchmaker) Remove(c Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.waiting.Remove(c.ID()) {
		return false
	}
	m.log.Debugw("left queue", "conn", c.ID(), "waiting", m.waiting.Len())
	m.drainLocked()
	return true
}

// Waiting returns how many connections are queued.
func (m *Matchmaker) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waiting.Len()
}

// Queue returns the ids of waiting connections, longest-waiting first.
func (m *Matchmaker) Queue() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	waiting := m.waiting.Waiting()
	out := make([]string, len(waiting))
	for i, c := range waiting {
		out[i] = c.ID()
	}
	return out
}

// drainLocked pops pairs while two live connections wait. onPair runs under
// the lock so a disconnect racing the pairing either still finds its
// connection queued or finds the session already routed.
func (m *Matchmaker) drainLocked() {
	if n := m.waiting.Prune(); n > 0 {
		m.log.Debugw("pruned dead connections", "count", n)
	}
	for {
		left, right, ok := m.waiting.PopPair()
		if !ok {
			return
		}
		m.log.Infow("paired", "left", left.ID(), "right", right.ID(), "waiting", m.waiting.Len())
		m.onPair(left, right)
	}
}
