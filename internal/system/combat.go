package system

import (
	"math/rand"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/combat"
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/data"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/world"
)

// CombatSystem resolves queued ability, item, impact and charge-completion
// requests into damage, restoration and effect application.
// Requests arrive on the comms channel at any point of the frame and are
// processed in arrival order. Phase 5 (Combat).
type CombatSystem struct {
	state    *world.State
	bus      *event.Bus
	defs     *data.Definitions
	resolver *combat.Resolver
	log      *zap.Logger
	sub      event.Subscription

	requests []event.Comms
}

func NewCombatSystem(state *world.State, bus *event.Bus, defs *data.Definitions, rng *rand.Rand, log *zap.Logger) *CombatSystem {
	s := &CombatSystem{
		state:    state,
		bus:      bus,
		defs:     defs,
		resolver: combat.NewResolver(rng),
		log:      log,
	}
	s.sub = bus.Comms.Subscribe(s.queue)
	return s
}

func (s *CombatSystem) Kind() coresys.Kind   { return "combat" }
func (s *CombatSystem) Phase() coresys.Phase { return coresys.PhaseCombat }

// Close detaches the comms subscription.
func (s *CombatSystem) Close() { s.sub.Unsubscribe() }

func (s *CombatSystem) queue(ev event.Comms) {
	switch ev.Case {
	case event.CommsUseAbility, event.CommsUseItem, event.CommsImpact, event.CommsChargeCompleted:
		s.requests = append(s.requests, ev)
	}
}

// Pending returns the number of requests waiting for the next Update.
func (s *CombatSystem) Pending() int { return len(s.requests) }

func (s *CombatSystem) Update(f *ecs.Frame) {
	reqs := s.requests
	s.requests = nil
	for _, req := range reqs {
		switch req.Case {
		case event.CommsUseAbility:
			s.cast(f, req.Source, req.Target, req.Skill, false)
		case event.CommsUseItem:
			s.useItem(f, req.Source, req.Target, req.Item)
		case event.CommsImpact:
			s.impact(f, req)
		case event.CommsChargeCompleted:
			s.chargeCompleted(f, req)
		}
	}
}

// cast applies skill id from caster. free skips the MP cost, used for item
// and charge follow-up casts.
func (s *CombatSystem) cast(f *ecs.Frame, caster, target ecs.EntityID, id int32, free bool) {
	if !s.state.World.Live(caster) {
		return
	}
	sk, ok := s.defs.Skill(id)
	if !ok {
		s.log.Debug("unknown skill", zap.Int32("skill", id), zap.Stringer("caster", caster))
		return
	}
	if needsTarget(sk.Kind) {
		if !s.state.World.Live(target) || !s.inRange(caster, target, sk.Range) {
			return
		}
	}
	if !free && !s.payMP(caster, sk.MPCost) {
		s.log.Debug("not enough mp", zap.Int32("skill", id), zap.Stringer("caster", caster))
		return
	}

	now := s.state.TotalElapsedTime()
	switch sk.Kind {
	case data.SkillProjectile:
		from, _ := s.state.Positions.Get(caster)
		s.bus.Lifecycle.Publish(event.Lifecycle{
			Case:     event.LifecycleSpawnProjectile,
			Kind:     component.KindProjectile,
			Position: from,
			Projectile: component.LiveProjectile{
				Caster:   caster,
				Target:   target,
				Skill:    sk.ID,
				Delivery: sk.Projectile,
			},
		})
	case data.SkillInstant:
		res := s.resolver.Resolve(sk.Attack(), s.state.Stats(f, caster), s.state.Stats(f, target))
		s.damage(caster, target, sk.ID, res)
	case data.SkillSelf:
		st := s.state.Stats(f, caster)
		s.damage(caster, caster, sk.ID, combat.RawDamage(sk.Attack(), st, st))
	case data.SkillRestore:
		s.restore(caster, orSelf(target, caster), sk.ID, 0, "hp", combat.Restore(sk.Restore, s.state.Stats(f, caster)))
	case data.SkillOrbital:
		s.applyOrbital(caster, sk, now)
	case data.SkillCharge:
		s.bus.StateChange.Publish(event.StateChange{
			Case:   event.StateChargeApplied,
			Entity: caster,
			Charge: component.ActiveCharge{Skill: sk.ID, Target: target, Start: now, Duration: sk.Duration},
		})
		if sk.Orbital.Count > 0 {
			s.applyOrbital(caster, sk, now)
		}
	case data.SkillBuff:
		m := sk.Modifier
		m.Source = sk.ID
		m.Until = now + sk.Duration
		s.bus.StateChange.Publish(event.StateChange{Case: event.StateModifierApplied, Entity: orSelf(target, caster), Modifier: m})
	}
}

func needsTarget(k data.SkillKind) bool {
	return k == data.SkillProjectile || k == data.SkillInstant
}

func orSelf(target, self ecs.EntityID) ecs.EntityID {
	if target.IsZero() {
		return self
	}
	return target
}

func (s *CombatSystem) inRange(caster, target ecs.EntityID, r float64) bool {
	if r <= 0 {
		return true
	}
	a, okA := s.state.Positions.Get(caster)
	b, okB := s.state.Positions.Get(target)
	if !okA || !okB || a.Scenario != b.Scenario {
		return false
	}
	return geom.PlaneDistance(a.Point, b.Point, s.state.Dim(a.Scenario)) <= r
}

func (s *CombatSystem) payMP(caster ecs.EntityID, cost float64) bool {
	if cost <= 0 {
		return true
	}
	res, ok := s.state.Resources.Get(caster)
	if !ok || res.MP < cost {
		return false
	}
	res.MP -= cost
	s.bus.StateChange.Publish(event.StateChange{Case: event.StateResources, Entity: caster, Res: res})
	return true
}

func (s *CombatSystem) applyOrbital(caster ecs.EntityID, sk *data.Skill, now time.Duration) {
	s.bus.StateChange.Publish(event.StateChange{
		Case:   event.StateOrbitalApplied,
		Entity: caster,
		Orbital: component.ActiveOrbital{
			Skill:    sk.ID,
			Start:    now,
			Duration: sk.Duration,
			Config:   sk.Orbital,
		},
	})
}

func (s *CombatSystem) impact(f *ecs.Frame, ev event.Comms) {
	if !s.state.World.Live(ev.Target) {
		return
	}
	sk, ok := s.defs.Skill(ev.Skill)
	if !ok {
		return
	}
	res := s.resolver.Resolve(sk.Attack(), s.state.Stats(f, ev.Source), s.state.Stats(f, ev.Target))
	s.damage(ev.Source, ev.Target, sk.ID, res)
}

func (s *CombatSystem) chargeCompleted(f *ecs.Frame, ev event.Comms) {
	sk, ok := s.defs.Skill(ev.Skill)
	if !ok || sk.Then == 0 {
		return
	}
	s.cast(f, ev.Source, ev.Target, sk.Then, true)
}

func (s *CombatSystem) useItem(f *ecs.Frame, user, target ecs.EntityID, id int32) {
	if !s.state.World.Live(user) {
		return
	}
	it, ok := s.defs.Item(id)
	if !ok {
		s.log.Debug("unknown item", zap.Int32("item", id), zap.Stringer("user", user))
		return
	}
	if it.Category == data.CategoryEquipment {
		s.toggleEquip(user, id)
		return
	}
	if it.Skill != 0 {
		s.cast(f, user, target, it.Skill, true)
	}
	if it.Restore != nil {
		s.restore(user, user, 0, id, it.Pool, combat.Restore(it.Restore, s.state.Stats(f, user)))
	}
}

func (s *CombatSystem) toggleEquip(user ecs.EntityID, id int32) {
	eq, _ := s.state.Equipment.Get(user)
	items := slices.Clone(eq.Items)
	if i := slices.Index(items, id); i >= 0 {
		items = slices.Delete(items, i, i+1)
	} else {
		items = append(items, id)
	}
	s.bus.StateChange.Publish(event.StateChange{Case: event.StateEquipment, Entity: user, Equip: component.Equipment{Items: items}})
}

// damage reports the result and applies it to the target's HP. A target at
// zero HP dies and is removed.
func (s *CombatSystem) damage(source, target ecs.EntityID, skill int32, r combat.Result) {
	s.bus.Comms.Publish(event.Comms{
		Case:     event.CommsDamaged,
		Source:   source,
		Target:   target,
		Skill:    skill,
		Amount:   r.Amount,
		Critical: r.Critical,
		Evaded:   r.Evaded,
	})
	if r.Evaded || r.Amount <= 0 {
		return
	}
	res, ok := s.state.Resources.Get(target)
	if !ok {
		return
	}
	res.HP = max(res.HP-float64(r.Amount), 0)
	s.bus.StateChange.Publish(event.StateChange{Case: event.StateResources, Entity: target, Res: res})
	if res.HP > 0 {
		return
	}
	s.log.Debug("entity died", zap.Stringer("entity", target), zap.Stringer("killer", source))
	s.bus.Comms.Publish(event.Comms{Case: event.CommsDied, Source: source, Target: target, Skill: skill})
	s.bus.Lifecycle.Publish(event.Lifecycle{Case: event.LifecycleRemove, Entity: target})
}

// restore adds amount to the pool ("hp" or "mp"), capped at its maximum.
func (s *CombatSystem) restore(source, target ecs.EntityID, skill, item int32, pool string, amount int) {
	res, ok := s.state.Resources.Get(target)
	if !ok || amount <= 0 || !s.state.World.Live(target) {
		return
	}
	before := res
	if pool == "mp" {
		res.MP = min(res.MP+float64(amount), res.MaxMP)
	} else {
		res.HP = min(res.HP+float64(amount), res.MaxHP)
	}
	gained := int(res.HP - before.HP + res.MP - before.MP)
	s.bus.StateChange.Publish(event.StateChange{Case: event.StateResources, Entity: target, Res: res})
	s.bus.Comms.Publish(event.Comms{
		Case:   event.CommsRestored,
		Source: source,
		Target: target,
		Skill:  skill,
		Item:   item,
		Amount: gained,
	})
}
