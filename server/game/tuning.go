package game

// Spawn points for a fresh world.
const (
	LeftSpawnX  = 100.0
	RightSpawnX = 500.0
	SpawnY      = 300.0
)

// Rules are the physical constants a world is simulated with.
type Rules struct {
	Gravity          float64 // added to vertical velocity every tick
	FlapImpulse      float64 // vertical velocity set by a flap (negative is up)
	MoveSpeed        float64 // horizontal displacement of a move without an explicit speed
	ProjectileSpeed  float64 // horizontal distance a projectile covers per tick
	ProjectileOffset float64 // horizontal spawn distance from the shooter
	ProjectileSize   float64

	FieldWidth   float64
	FieldHeight  float64
	PlayerWidth  float64
	PlayerHeight float64
}

// DefaultRules mirror the reference prototype running at 60 ticks per second.
func DefaultRules() Rules {
	return Rules{
		Gravity:          0.5,
		FlapImpulse:      -10,
		MoveSpeed:        5,
		ProjectileSpeed:  10,
		ProjectileOffset: 50,
		ProjectileSize:   8,
		FieldWidth:       600,
		FieldHeight:      600,
		PlayerWidth:      40,
		PlayerHeight:     40,
	}
}
