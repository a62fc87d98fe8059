package game

import "github.com/solarlune/resolv"

// Sim owns a World and advances it one tick at a time. It is not safe for
// concurrent use; the owning session serialises every call.
type Sim struct {
	rules  Rules
	world  World
	space  *resolv.Space
	bodies [2]*resolv.Object
	shots  []*resolv.Object // parallel to world.Projectiles
}

// NewSim builds a simulation at its start position.
func NewSim(r Rules) *Sim {
	s := &Sim{
		rules: r,
		world: NewWorld(),
		space: resolv.NewSpace(spaceSpan(r.FieldWidth), spaceSpan(r.FieldHeight), cellSize, cellSize),
	}
	for _, side := range Sides {
		p := s.world.Players[side]
		body := resolv.NewObject(p.X, p.Y, r.PlayerWidth, r.PlayerHeight, tagPlayer, side.String())
		body.Data = side
		s.space.Add(body)
		s.bodies[side] = body
	}
	return s
}

// World returns a deep copy of the current state.
func (s *Sim) World() World {
	return s.world.Clone()
}

// Step runs one tick: inputs in arrival order, gravity, projectile travel,
// then collisions. It returns the hits scored during the tick.
//
// A side that flapped this tick keeps the impulse as its velocity for the
// tick, and projectiles fired this tick start travelling on the next one, so
// the tick's snapshot shows every input exactly as it was applied.
func (s *Sim) Step(inputs []Input) []Hit {
	s.world.Tick++
	fired := len(s.world.Projectiles)

	var flapped [2]bool
	for _, in := range inputs {
		switch in.Kind {
		case InputMove:
			s.move(in)
		case InputFlap:
			s.world.Players[in.Side].Velocity = s.rules.FlapImpulse
			flapped[in.Side] = true
		case InputShoot:
			s.shoot(in.Side)
		}
	}

	for _, side := range Sides {
		p := &s.world.Players[side]
		if !flapped[side] {
			p.Velocity += s.rules.Gravity
		}
		p.Y = clamp(p.Y+p.Velocity, 0, s.rules.FieldHeight-s.rules.PlayerHeight)
	}

	for i := 0; i < fired; i++ {
		pr := &s.world.Projectiles[i]
		pr.X += pr.Direction * s.rules.ProjectileSpeed
	}

	return s.resolve()
}

func (s *Sim) move(in Input) {
	if in.Direction == 0 {
		return
	}
	speed := in.Speed
	if speed <= 0 {
		speed = s.rules.MoveSpeed
	}
	dir := 1.0
	if in.Direction < 0 {
		dir = -1
	}
	p := &s.world.Players[in.Side]
	p.X = clamp(p.X+dir*speed, 0, s.rules.FieldWidth-s.rules.PlayerWidth)
}

func (s *Sim) shoot(side Side) {
	p := s.world.Players[side]
	pr := Projectile{
		X:         p.X + side.Outward()*s.rules.ProjectileOffset,
		Y:         p.Y,
		Direction: side.Outward(),
		Owner:     side,
	}
	body := resolv.NewObject(pr.X, pr.Y, s.rules.ProjectileSize, s.rules.ProjectileSize, tagProjectile)
	body.Data = side
	s.space.Add(body)

	s.world.Projectiles = append(s.world.Projectiles, pr)
	s.shots = append(s.shots, body)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
