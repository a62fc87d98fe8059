package game

// Side is the role a participant plays for the lifetime of a session.
type Side int

// Left is given to whichever connection of a pair queued first.
const (
	Left Side = iota
	Right
)

// Sides lists both sides in a stable order.
var Sides = [2]Side{Left, Right}

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Left {
		return Right
	}
	return Left
}

// Outward is the horizontal direction a side shoots in: +1 for left, -1 for right.
func (s Side) Outward() float64 {
	if s == Left {
		return 1
	}
	return -1
}

// Player is the authoritative physical state of one side.
type Player struct {
	X, Y     float64
	Velocity float64 // vertical only; horizontal motion has no inertia
}

// Projectile is an in-flight shot.
type Projectile struct {
	X, Y      float64
	Direction float64 // +1 travels right, -1 travels left
	Owner     Side
}

// World is the authoritative snapshot of one match.
type World struct {
	Tick        int
	Players     [2]Player
	Projectiles []Projectile
}

// NewWorld returns the world at game start.
func NewWorld() World {
	return World{
		Players: [2]Player{
			Left:  {X: LeftSpawnX, Y: SpawnY},
			Right: {X: RightSpawnX, Y: SpawnY},
		},
	}
}

// Player returns a copy of the given side's state.
func (w World) Player(s Side) Player {
	return w.Players[s]
}

// Clone returns a deep copy safe to hand to another goroutine.
func (w World) Clone() World {
	out := w
	out.Projectiles = make([]Projectile, len(w.Projectiles))
	copy(out.Projectiles, w.Projectiles)
	return out
}
