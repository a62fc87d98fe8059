package server

// Phase is the lifecycle state of a session.
//
//	Pairing -> ReadyWait <-> Countdown -> Active -> Terminated
//
// Any phase may jump to Terminated. Countdown falls back to ReadyWait when a
// participant withdraws their ready flag.
type Phase int32

const (
	PhasePairing Phase = iota
	PhaseReadyWait
	PhaseCountdown
	PhaseActive
	PhaseTerminated
)

func (p Phase) String() string {
	switch p {
	case PhasePairing:
		return "pairing"
	case PhaseReadyWait:
		return "ready_wait"
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhaseTerminated:
		return "terminated"
	}
	return "unknown"
}

// End reasons carried by Outcome and the game_over message.
const (
	ReasonDisconnect = "disconnect"
	ReasonScore      = "score"
	ReasonShutdown   = "shutdown"
)
