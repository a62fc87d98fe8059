package server

import (
	"sync/atomic"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"flapduel/server/game"
)

const inboxSize = 256

type participant struct {
	conn  Conn
	side  game.Side
	ready bool
	score int
}

// Outcome describes how a session ended.
type Outcome struct {
	Reason  string
	Winner  game.Side // valid when Decided
	Decided bool
	Leaver  game.Side // valid when Reason is ReasonDisconnect
	Scores  Scores
}

// Commands posted to the session goroutine.
type (
	readyCmd struct {
		connID string
		ready  bool
	}
	inputCmd struct {
		connID string
		input  game.Input
	}
	leaveCmd struct {
		connID string
	}
	endCmd struct {
		reason string
	}
)

// Session is one match between two connections. All of its state is owned by
// the goroutine running Run; other goroutines talk to it through Ready, Input,
// Leave and End, which post to its inbox. Timers are selected in the same
// loop, so a tick and an input never interleave.
type Session struct {
	ID string
	// OnEnd runs once, on the session goroutine, right after termination.
	OnEnd func(s *Session, o Outcome)

	cfg     Config
	log     *zap.SugaredLogger
	metrics *SessionMetrics
	out     *Broadcaster
	created time.Time

	players   [2]*participant
	phase     Phase
	sim       *game.Sim
	pending   []game.Input
	remaining int

	countdown *time.Ticker
	ticker    *time.Ticker

	inbox chan any
	done  chan struct{}

	// read-only mirrors for other goroutines
	phaseView atomic.Int32
	tickView  atomic.Int64
	scoreView [2]atomic.Int32
}

func newSessionID() string {
	return ksuid.New().String()
}

// NewSession pairs left and right. Call Run to start it.
func NewSession(id string, left, right Conn, cfg Config, log *zap.SugaredLogger) *Session {
	metrics := &SessionMetrics{}
	log = log.With("session", id)
	return &Session{
		ID:      id,
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		out:     NewBroadcaster(left, right, log, metrics),
		created: time.Now(),
		players: [2]*participant{
			game.Left:  {conn: left, side: game.Left},
			game.Right: {conn: right, side: game.Right},
		},
		phase: PhasePairing,
		inbox: make(chan any, inboxSize),
		done:  make(chan struct{}),
	}
}

// Run drives the session until it terminates.
func (s *Session) Run() {
	s.begin()
	for s.phase != PhaseTerminated {
		select {
		case cmd := <-s.inbox:
			s.handle(cmd)
		case <-tickerC(s.countdown):
			s.countdownStep()
		case <-tickerC(s.ticker):
			s.tick()
		}
	}
}

// Ready toggles connID's ready flag.
func (s *Session) Ready(connID string, ready bool) bool {
	return s.post(readyCmd{connID: connID, ready: ready})
}

// Input queues a gameplay action from connID for the next tick.
func (s *Session) Input(connID string, in game.Input) bool {
	return s.post(inputCmd{connID: connID, input: in})
}

// Leave reports that connID's transport went away.
func (s *Session) Leave(connID string) bool {
	return s.post(leaveCmd{connID: connID})
}

// End terminates the session for reason, notifying both participants.
func (s *Session) End(reason string) bool {
	return s.post(endCmd{reason: reason})
}

// Done is closed once the session has terminated.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Phase is safe to call from any goroutine.
func (s *Session) Phase() Phase {
	return Phase(s.phaseView.Load())
}

// Metrics returns the session's counters.
func (s *Session) Metrics() *SessionMetrics {
	return s.metrics
}

// Participants returns the connections in side order.
func (s *Session) Participants() (left, right Conn) {
	return s.players[game.Left].conn, s.players[game.Right].conn
}

// SideOf reports which side connID plays.
func (s *Session) SideOf(connID string) (game.Side, bool) {
	if p := s.participant(connID); p != nil {
		return p.side, true
	}
	return game.Left, false
}

// SessionInfo is the admin view of a session.
type SessionInfo struct {
	ID      string    `json:"id"`
	Phase   string    `json:"phase"`
	Left    string    `json:"left"`
	Right   string    `json:"right"`
	Scores  Scores    `json:"scores"`
	Tick    int64     `json:"tick"`
	Created time.Time `json:"created"`
}

// Info is safe to call from any goroutine.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:    s.ID,
		Phase: s.Phase().String(),
		Left:  s.players[game.Left].conn.ID(),
		Right: s.players[game.Right].conn.ID(),
		Scores: Scores{
			Left:  int(s.scoreView[game.Left].Load()),
			Right: int(s.scoreView[game.Right].Load()),
		},
		Tick:    s.tickView.Load(),
		Created: s.created,
	}
}

func (s *Session) post(cmd any) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.inbox <- cmd:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) handle(cmd any) {
	switch c := cmd.(type) {
	case readyCmd:
		s.setReady(c.connID, c.ready)
	case inputCmd:
		s.queueInput(c.connID, c.input)
	case leaveCmd:
		s.leave(c.connID)
	case endCmd:
		s.end(c.reason)
	}
}

// begin tells both participants who they are and opens the ready handshake.
func (s *Session) begin() {
	if s.phase != PhasePairing {
		return
	}
	for _, p := range s.players {
		opp := s.players[p.side.Opponent()]
		s.out.To(p.side, MsgPaired, Paired{
			SessionID: s.ID,
			Side:      p.side.String(),
			Opponent:  opp.conn.ID(),
			TickRate:  s.cfg.TickRate,
		})
	}
	for _, p := range s.players {
		if !p.conn.Connected() {
			s.leave(p.conn.ID())
			return
		}
	}
	s.setPhase(PhaseReadyWait)
}

func (s *Session) setReady(connID string, ready bool) {
	p := s.participant(connID)
	if p == nil {
		s.metrics.IncRejected()
		s.log.Warnw("ready from a connection outside the session", "conn", connID)
		return
	}
	if s.phase != PhaseReadyWait && s.phase != PhaseCountdown {
		s.log.Debugw("ready toggle ignored", "side", p.side, "phase", s.phase)
		return
	}

	p.ready = ready
	if s.phase == PhaseCountdown && !ready {
		s.abortCountdown(p.side)
	}
	s.out.All(MsgReadyUpdate, ReadyStatus{
		Left:  s.players[game.Left].ready,
		Right: s.players[game.Right].ready,
	})
	if s.phase == PhaseReadyWait && s.players[game.Left].ready && s.players[game.Right].ready {
		s.startCountdown()
	}
}

func (s *Session) queueInput(connID string, in game.Input) {
	p := s.participant(connID)
	if p == nil {
		s.metrics.IncRejected()
		s.log.Warnw("input from a connection outside the session", "conn", connID, "kind", in.Kind)
		return
	}
	if s.phase != PhaseActive {
		s.metrics.IncDiscarded()
		return
	}
	// The side always comes from the connection, never from the payload.
	in.Side = p.side
	s.pending = append(s.pending, in)
	s.metrics.IncAccepted()
}

func (s *Session) startCountdown() {
	if s.cfg.CountdownSteps <= 0 {
		s.activate()
		return
	}
	s.setPhase(PhaseCountdown)
	s.remaining = s.cfg.CountdownSteps
	s.out.All(MsgCountdown, Countdown{Remaining: s.remaining})
	s.countdown = time.NewTicker(s.cfg.CountdownInterval)
}

func (s *Session) countdownStep() {
	if s.phase != PhaseCountdown {
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.out.All(MsgCountdown, Countdown{Remaining: s.remaining})
		return
	}
	s.stopCountdown()
	s.activate()
}

// abortCountdown returns to ReadyWait because side withdrew.
func (s *Session) abortCountdown(side game.Side) {
	s.stopCountdown()
	s.remaining = 0
	s.setPhase(PhaseReadyWait)
	s.out.All(MsgCountdownAborted, CountdownAborted{By: side.String()})
	s.log.Infow("countdown aborted", "by", side)
}

func (s *Session) activate() {
	s.setPhase(PhaseActive)
	s.sim = game.NewSim(s.cfg.Rules())
	s.pending = s.pending[:0]
	s.out.All(MsgStart, snapshotOf(s.sim.World(), s.scores()))
	s.ticker = time.NewTicker(s.cfg.TickInterval())
	s.log.Infow("match started", "tickRate", s.cfg.TickRate)
}

// tick runs the gameplay pipeline once and always broadcasts the result.
func (s *Session) tick() {
	if s.phase != PhaseActive {
		return
	}
	start := time.Now()

	hits := s.sim.Step(s.pending)
	s.pending = s.pending[:0]
	for _, h := range hits {
		p := s.players[h.Shooter]
		p.score++
		s.scoreView[h.Shooter].Store(int32(p.score))
		s.log.Debugw("hit", "shooter", h.Shooter, "score", p.score)
	}

	world := s.sim.World()
	s.tickView.Store(int64(world.Tick))
	s.out.All(MsgState, snapshotOf(world, s.scores()))
	s.metrics.AddTick(time.Since(start).Nanoseconds())

	if winner, ok := s.winner(); ok {
		s.out.All(MsgGameOver, GameOver{Reason: ReasonScore, Winner: winner.String(), Scores: s.scores()})
		s.terminate(Outcome{Reason: ReasonScore, Winner: winner, Decided: true})
	}
}

// winner is the first side to reach ScoreToWin. Equal scores at or past the
// threshold keep the match going until one side leads.
func (s *Session) winner() (game.Side, bool) {
	l, r := s.players[game.Left].score, s.players[game.Right].score
	if l == r || (l < s.cfg.ScoreToWin && r < s.cfg.ScoreToWin) {
		return game.Left, false
	}
	if l > r {
		return game.Left, true
	}
	return game.Right, true
}

func (s *Session) leave(connID string) {
	p := s.participant(connID)
	if p == nil {
		s.log.Warnw("leave from a connection outside the session", "conn", connID)
		return
	}
	if s.phase == PhaseTerminated {
		return
	}
	survivor := s.players[p.side.Opponent()]
	if survivor.conn.Connected() {
		s.out.To(survivor.side, MsgOpponentDisconnected, OpponentDisconnected{Side: p.side.String()})
	}
	s.terminate(Outcome{Reason: ReasonDisconnect, Leaver: p.side})
}

func (s *Session) end(reason string) {
	if s.phase == PhaseTerminated {
		return
	}
	s.out.All(MsgGameOver, GameOver{Reason: reason, Scores: s.scores()})
	s.terminate(Outcome{Reason: reason})
}

// terminate stops every timer and fires OnEnd. Only the first call has any
// effect.
func (s *Session) terminate(o Outcome) {
	if s.phase == PhaseTerminated {
		return
	}
	s.stopCountdown()
	s.stopTicker()
	s.setPhase(PhaseTerminated)
	close(s.done)

	o.Scores = s.scores()
	s.log.Infow("session ended", "reason", o.Reason, "left", o.Scores.Left, "right", o.Scores.Right)
	if s.OnEnd != nil {
		s.OnEnd(s, o)
	}
}

func (s *Session) stopCountdown() {
	if s.countdown != nil {
		s.countdown.Stop()
		s.countdown = nil
	}
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

func (s *Session) setPhase(p Phase) {
	s.phase = p
	s.phaseView.Store(int32(p))
}

func (s *Session) participant(connID string) *participant {
	for _, p := range s.players {
		if p.conn.ID() == connID {
			return p
		}
	}
	return nil
}

func (s *Session) scores() Scores {
	return Scores{Left: s.players[game.Left].score, Right: s.players[game.Right].score}
}

// tickerC yields nil for a stopped ticker, which blocks forever in a select.
func tickerC(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}
