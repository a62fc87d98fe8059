package server

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"flapduel/server/game"
)

// Hub connects the transport to matchmaking and sessions. It owns the
// process-wide state: the matchmaker queue, the session directory and the
// connection-to-session routing table.
type Hub struct {
	log        *zap.SugaredLogger
	metrics    *ServerMetrics
	directory  *Directory
	matchmaker *Matchmaker

	mu     sync.RWMutex
	cfg    Config
	routes map[string]*Session // connection id -> session
	closed bool
	wg     sync.WaitGroup
}

// NewHub builds a hub whose sessions start with cfg.
func NewHub(cfg Config, log *zap.SugaredLogger) *Hub {
	h := &Hub{
		log:       log,
		metrics:   &ServerMetrics{},
		directory: NewDirectory(),
		cfg:       cfg,
		routes:    make(map[string]*Session),
	}
	h.matchmaker = NewMatchmaker(h.startSession, log.Named("matchmaker"))
	return h
}

// Directory, Matchmaker and Metrics expose the hub's parts to the admin surface.
func (h *Hub) Directory() *Directory { return h.directory }
func (h *Hub) Matchmaker() *Matchmaker { return h.matchmaker }
func (h *Hub) Metrics() *ServerMetrics { return h.metrics }

// Config returns the configuration new sessions are created with.
func (h *Hub) Config() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// SetConfig replaces the configuration for sessions created from now on.
func (h *Hub) SetConfig(c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	h.mu.Lock()
	h.cfg = c
	h.mu.Unlock()
	return nil
}

// OnConnect greets a new client and queues it for a match.
func (h *Hub) OnConnect(c Conn) {
	if err := c.Send(MsgWelcome, Welcome{ConnectionID: c.ID()}); err != nil {
		h.log.Warnw("welcome failed", "conn", c.ID(), "err", err)
	}
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return
	}
	h.matchmaker.Enqueue(c)
}

// OnMessage routes a decoded client message to the sender's session.
// Messages from clients not yet in a session are dropped.
func (h *Hub) OnMessage(c Conn, msg any) {
	s := h.sessionOf(c.ID())
	if s == nil {
		h.log.Debugw("message outside a session dropped", "conn", c.ID(), "msg", fmt.Sprintf("%T", msg))
		return
	}

	switch m := msg.(type) {
	case ReadyMessage:
		s.Ready(c.ID(), m.Ready)
	case MoveMessage:
		dir, ok := moveDirection(m.Direction)
		if !ok {
			h.log.Debugw("move with unknown direction dropped", "conn", c.ID(), "direction", m.Direction)
			return
		}
		s.Input(c.ID(), game.Input{Kind: game.InputMove, Direction: dir, Speed: m.Speed})
	case FlapMessage:
		s.Input(c.ID(), game.Input{Kind: game.InputFlap})
	case ShootMessage:
		s.Input(c.ID(), game.Input{Kind: game.InputShoot})
	default:
		h.log.Debugw("unhandled message dropped", "conn", c.ID(), "msg", fmt.Sprintf("%T", msg))
	}
}

// OnDisconnect removes c from the queue or tears down its session. Repeated
// calls for the same connection are harmless.
func (h *Hub) OnDisconnect(c Conn) {
	if h.matchmaker.Remove(c) {
		return
	}
	if s := h.sessionOf(c.ID()); s != nil {
		s.Leave(c.ID())
	}
}

// Close ends every live session and waits for their goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	for _, s := range h.directory.Sessions() {
		s.End(ReasonShutdown)
	}
	h.wg.Wait()
}

// startSession is the matchmaker's pair callback. It runs under the
// matchmaker lock, so routing is in place before either connection can be
// seen as unqueued.
func (h *Hub) startSession(left, right Conn) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		for _, c := range []Conn{left, right} {
			_ = c.Send(MsgGameOver, GameOver{Reason: ReasonShutdown})
		}
		return
	}
	s := NewSession(newSessionID(), left, right, h.cfg, h.log)
	s.OnEnd = h.sessionEnded
	h.routes[left.ID()] = s
	h.routes[right.ID()] = s
	if err := h.directory.Add(s); err != nil {
		h.log.Errorw("directory insert failed", "session", s.ID, "err", err)
	}
	h.wg.Add(1)
	h.mu.Unlock()

	h.metrics.IncSessionCreated()
	h.log.Infow("session created", "session", s.ID, "left", left.ID(), "right", right.ID())

	go func() {
		defer h.wg.Done()
		s.Run()
	}()
}

// sessionEnded runs on the ending session's goroutine.
func (h *Hub) sessionEnded(s *Session, o Outcome) {
	left, right := s.Participants()

	h.mu.Lock()
	for _, c := range []Conn{left, right} {
		if h.routes[c.ID()] == s {
			delete(h.routes, c.ID())
		}
	}
	requeue := s.cfg.RequeueAfterMatch && !h.closed
	h.mu.Unlock()

	h.directory.Remove(s.ID)
	h.metrics.IncSessionEnded()
	h.log.Debugw("session removed", "session", s.ID, "reason", o.Reason, "requeue", requeue)

	if !requeue {
		return
	}
	for _, c := range []Conn{left, right} {
		if c.Connected() {
			h.matchmaker.Enqueue(c)
		}
	}
}

func (h *Hub) sessionOf(connID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.routes[connID]
}
