package game

// InputKind enumerates what a participant can do during play.
type InputKind int

const (
	InputMove InputKind = iota
	InputFlap
	InputShoot
)

func (k InputKind) String() string {
	switch k {
	case InputMove:
		return "move"
	case InputFlap:
		return "flap"
	case InputShoot:
		return "shoot"
	}
	return "unknown"
}

// Input is one accepted player action, applied exactly once on the next tick.
type Input struct {
	Kind      InputKind
	Side      Side
	Direction float64 // move only: -1 left, +1 right
	Speed     float64 // move only: zero means Rules.MoveSpeed
}
