package game

import (
	"math"

	"github.com/solarlune/resolv"
)

const (
	cellSize      = 16
	tagPlayer     = "player"
	tagProjectile = "projectile"
)

// Hit records a projectile striking the opponent. The shooter scores.
type Hit struct {
	Shooter Side
	Target  Side
}

// resolve syncs physics bodies with the world, then removes projectiles that
// struck the opponent or left the playfield.
//
// Players are axis-aligned boxes of PlayerWidth x PlayerHeight anchored at
// their top-left corner; projectiles are ProjectileSize squares. The spatial
// hash only narrows candidates, overlap is decided by an exact box test.
func (s *Sim) resolve() []Hit {
	for _, side := range Sides {
		p := s.world.Players[side]
		body := s.bodies[side]
		body.X, body.Y = p.X, p.Y
		body.Update()
	}

	var hits []Hit
	kept := s.world.Projectiles[:0]
	keptShots := s.shots[:0]
	for i, pr := range s.world.Projectiles {
		body := s.shots[i]
		if s.outOfBounds(pr) {
			s.space.Remove(body)
			continue
		}
		body.X, body.Y = pr.X, pr.Y
		body.Update()

		if target, ok := s.struck(body, pr.Owner); ok {
			hits = append(hits, Hit{Shooter: pr.Owner, Target: target})
			s.space.Remove(body)
			continue
		}
		kept = append(kept, pr)
		keptShots = append(keptShots, body)
	}
	s.world.Projectiles = kept
	s.shots = keptShots
	return hits
}

// spaceSpan sizes the spatial hash so whole cells cover the field, plus one
// spare cell for shapes sticking out past the far edge.
func spaceSpan(field float64) int {
	return (int(math.Ceil(field/cellSize)) + 1) * cellSize
}

func (s *Sim) outOfBounds(pr Projectile) bool {
	return pr.X+s.rules.ProjectileSize < 0 || pr.X > s.rules.FieldWidth
}

// struck reports which opponent, if any, the projectile body overlaps.
// A projectile never hits its owner.
func (s *Sim) struck(body *resolv.Object, owner Side) (Side, bool) {
	check := body.Check(0, 0, tagPlayer)
	if check == nil {
		return owner, false
	}
	for _, obj := range check.Objects {
		side, ok := obj.Data.(Side)
		if !ok || side == owner {
			continue
		}
		if overlaps(body, obj) {
			return side, true
		}
	}
	return owner, false
}

func overlaps(a, b *resolv.Object) bool {
	return a.X < b.X+b.W && b.X < a.X+a.W &&
		a.Y < b.Y+b.H && b.Y < a.Y+a.H
}
