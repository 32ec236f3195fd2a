package system

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/world"
)

// DefaultImpactThreshold is the distance at which a projectile hits.
const DefaultImpactThreshold = 4.0

// ProjectileSystem steers live projectiles at their targets, reports impacts
// and re-targets chained deliveries. Projectiles do not slide on map
// geometry. Phase 3 (Move).
type ProjectileSystem struct {
	state  *world.State
	bus    *event.Bus
	impact float64
	rng    *rand.Rand
	log    *zap.Logger
}

func NewProjectileSystem(state *world.State, bus *event.Bus, cfg config.SimulationConfig, rng *rand.Rand, log *zap.Logger) *ProjectileSystem {
	return &ProjectileSystem{
		state:  state,
		bus:    bus,
		impact: orDefault(cfg.ImpactThreshold, DefaultImpactThreshold),
		rng:    rng,
		log:    log,
	}
}

func (s *ProjectileSystem) Kind() coresys.Kind   { return "projectile" }
func (s *ProjectileSystem) Phase() coresys.Phase { return coresys.PhaseMove }

type flight struct {
	id ecs.EntityID
	p  component.LiveProjectile
}

func (s *ProjectileSystem) Update(f *ecs.Frame) {
	// Collect first: impacts remove entries from the table being walked.
	var live []flight
	s.state.Projectiles.Each(func(id ecs.EntityID, p component.LiveProjectile) {
		live = append(live, flight{id: id, p: p})
	})
	for _, fl := range live {
		s.advance(f, fl.id, fl.p)
	}
}

func (s *ProjectileSystem) advance(f *ecs.Frame, id ecs.EntityID, p component.LiveProjectile) {
	stored, ok := s.state.Positions.Get(id)
	if !ok {
		s.remove(id)
		return
	}
	snap := s.state.ComputeMovementSnapshot(f, stored.Scenario)
	self, okSelf := snap.Position(id)
	target, okTarget := snap.Position(p.Target)
	if !okSelf || !okTarget {
		s.log.Debug("projectile lost its target", zap.Stringer("projectile", id), zap.Stringer("target", p.Target))
		s.remove(id)
		return
	}

	if geom.DistanceSq(self.Point, target.Point) < s.impact*s.impact {
		s.bus.Comms.Publish(event.Comms{
			Case:      event.CommsImpact,
			Source:    p.Caster,
			Target:    p.Target,
			Skill:     p.Skill,
			Point:     target.Point,
			JumpsLeft: p.Delivery.JumpsLeft,
		})
		s.remove(id)
		if p.Delivery.Chained && p.Delivery.JumpsLeft >= 0 {
			s.chain(snap, id, p, target)
		}
		return
	}

	s.bus.StateChange.Publish(event.StateChange{
		Case:     event.StateVelocity,
		Entity:   id,
		Velocity: geom.Toward3(self.Point, target.Point, p.Delivery.Speed),
	})
}

// chain picks the next target uniformly among live entities within the
// chain range of the impact point, excluding the caster and the entity just
// hit, and spawns a follow-up projectile with one jump fewer.
func (s *ProjectileSystem) chain(snap world.MovementSnapshot, self ecs.EntityID, p component.LiveProjectile, from component.Position) {
	rangeSq := p.Delivery.ChainRange * p.Delivery.ChainRange
	var candidates []ecs.EntityID
	for _, id := range snap.IDs() {
		if id == self || id == p.Caster || id == p.Target || !s.state.World.Live(id) {
			continue
		}
		if k, _ := s.state.Kinds.Get(id); k == component.KindProjectile || k == component.KindVisual {
			continue
		}
		if geom.DistanceSq(from.Point, snap.Positions[id].Point) <= rangeSq {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return
	}
	next := p
	next.Target = candidates[s.rng.Intn(len(candidates))]
	next.Delivery.JumpsLeft--
	s.bus.Lifecycle.Publish(event.Lifecycle{
		Case:       event.LifecycleSpawnProjectile,
		Kind:       component.KindProjectile,
		Position:   from,
		Projectile: next,
	})
}

func (s *ProjectileSystem) remove(id ecs.EntityID) {
	s.bus.Lifecycle.Publish(event.Lifecycle{Case: event.LifecycleRemove, Entity: id})
}
