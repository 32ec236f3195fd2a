package world

import (
	"slices"

	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/movement"
)

// Writer is the only code path that mutates State. Systems publish events;
// Writer's handlers turn them into table writes, so a write triggered during
// a system's Update is visible to every later system in the frame.
type Writer struct {
	state *State
	bus   *event.Bus
	log   *zap.Logger
	subs  []event.Subscription
}

func NewWriter(state *State, bus *event.Bus, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{state: state, bus: bus, log: log}
}

// Attach subscribes the writer to every domain it applies. Calling it twice
// is a no-op.
func (w *Writer) Attach() {
	if len(w.subs) > 0 {
		return
	}
	w.subs = append(w.subs,
		w.bus.StateChange.Subscribe(w.onStateChange),
		w.bus.Lifecycle.Subscribe(w.onLifecycle),
		w.bus.Input.Subscribe(w.onInput),
		w.bus.Comms.Subscribe(w.onComms),
	)
}

// Detach removes all writer subscriptions.
func (w *Writer) Detach() {
	for _, s := range w.subs {
		s.Unsubscribe()
	}
	w.subs = nil
}

func (w *Writer) onStateChange(ev event.StateChange) {
	switch ev.Case {
	case event.StateVelocity:
		w.UpdateVelocity(ev.Entity, ev.Velocity)
	case event.StateMovement:
		w.UpdateMovementState(ev.Entity, ev.Movement)
	case event.StateArrived:
		w.advance(ev.Entity, movement.EventArrive, component.IdleMovement())
	case event.StateWaypointReached:
		if len(ev.Path) == 0 {
			w.advance(ev.Entity, movement.EventArrive, component.IdleMovement())
		} else {
			w.advance(ev.Entity, movement.EventWaypoint, component.FollowPath(ev.Path))
		}
	case event.StatePosition:
		w.SetPosition(ev.Entity, ev.Position)
	case event.StateResources:
		w.SetResources(ev.Entity, ev.Res)
	case event.StateOrbitalApplied:
		w.ApplyOrbital(ev.Entity, ev.Orbital)
	case event.StateOrbitalRemoved:
		w.RemoveActiveOrbital(ev.Entity)
	case event.StateChargeApplied:
		w.ApplyCharge(ev.Entity, ev.Charge)
	case event.StateChargeRemoved:
		w.RemoveActiveCharge(ev.Entity)
	case event.StateEquipment:
		w.SetEquipment(ev.Entity, ev.Equip)
	case event.StateModifierApplied:
		w.AddModifier(ev.Entity, ev.Modifier)
	case event.StateModifierRemoved:
		w.RemoveModifier(ev.Entity, ev.Modifier)
	case event.StateOrbitPoints:
		w.live(ev.Entity, func() { w.state.OrbitPoints.Set(ev.Entity, slices.Clone(ev.Points)) })
	}
}

func (w *Writer) onLifecycle(ev event.Lifecycle) {
	switch ev.Case {
	case event.LifecycleSpawnProjectile:
		w.SpawnProjectile(ev.Position, ev.Projectile)
	case event.LifecycleRemove:
		w.Remove(ev.Entity)
	}
}

func (w *Writer) onInput(ev event.Input) {
	switch ev.Case {
	case event.InputRaw:
		w.live(ev.Entity, func() { w.state.RawInput.Set(ev.Entity, ev.Raw) })
	case event.InputActions:
		w.live(ev.Entity, func() { w.state.Actions.Set(ev.Entity, ev.Actions) })
	}
}

func (w *Writer) onComms(ev event.Comms) {
	if ev.Case == event.CommsMoveIntent {
		w.advance(ev.Source, movement.EventFor(ev.Movement), ev.Movement)
	}
}

// advance applies a movement event to id's current phase. Events the phase
// does not accept, such as an arrival reported after a new order replaced
// the old one, are dropped.
func (w *Writer) advance(id ecs.EntityID, ev string, next component.Movement) {
	cur := w.state.Movement(id)
	phase, err := movement.Transition(cur.Phase, ev)
	if err != nil {
		w.log.Debug("drop movement event", zap.Stringer("entity", id), zap.Error(err))
		return
	}
	next.Phase = phase
	w.UpdateMovementState(id, next)
}

// live runs fn only when id is alive and not queued for removal. Writes for
// stale entities are dropped silently.
func (w *Writer) live(id ecs.EntityID, fn func()) bool {
	if !w.state.World.Live(id) {
		w.log.Debug("drop write for stale entity", zap.Stringer("entity", id))
		return false
	}
	fn()
	return true
}

// UpdateVelocity stores v. Writing the current value again is a no-op.
func (w *Writer) UpdateVelocity(id ecs.EntityID, v geom.Vec3) {
	w.live(id, func() { w.state.Velocities.Set(id, v) })
}

func (w *Writer) UpdateMovementState(id ecs.EntityID, m component.Movement) {
	w.live(id, func() { w.state.Movements.Set(id, m) })
}

// SetPosition moves an entity, possibly across scenarios.
func (w *Writer) SetPosition(id ecs.EntityID, p component.Position) {
	w.live(id, func() { w.state.Positions.Set(id, p) })
}

// Teleport places id at p and cancels any movement in progress.
func (w *Writer) Teleport(id ecs.EntityID, p component.Position) {
	w.live(id, func() {
		w.state.Positions.Set(id, p)
		w.state.Velocities.Set(id, geom.Vec3{})
		w.state.Movements.Set(id, component.IdleMovement())
	})
}

func (w *Writer) SetResources(id ecs.EntityID, r component.Resources) {
	w.live(id, func() { w.state.Resources.Set(id, r) })
}

func (w *Writer) SetEquipment(id ecs.EntityID, eq component.Equipment) {
	w.live(id, func() {
		w.state.Equipment.Set(id, component.Equipment{Items: slices.Clone(eq.Items)})
	})
}

// AddModifier appends m, replacing an earlier modifier with the same stat
// and source.
func (w *Writer) AddModifier(id ecs.EntityID, m component.Modifier) {
	w.live(id, func() {
		mods, _ := w.state.Modifiers.Get(id)
		next := slices.DeleteFunc(slices.Clone(mods), func(o component.Modifier) bool {
			return o.Stat == m.Stat && o.Source == m.Source
		})
		w.state.Modifiers.Set(id, append(next, m))
	})
}

// RemoveModifier drops the modifier with m's stat and source.
func (w *Writer) RemoveModifier(id ecs.EntityID, m component.Modifier) {
	mods, ok := w.state.Modifiers.Get(id)
	if !ok {
		return
	}
	keep := slices.DeleteFunc(slices.Clone(mods), func(o component.Modifier) bool {
		return o.Stat == m.Stat && o.Source == m.Source
	})
	switch {
	case len(keep) == len(mods):
	case len(keep) == 0:
		w.state.Modifiers.Remove(id)
	default:
		w.state.Modifiers.Set(id, keep)
	}
}

// ApplyOrbital starts (or re-triggers) an orbital on a caster.
func (w *Writer) ApplyOrbital(id ecs.EntityID, o component.ActiveOrbital) {
	w.live(id, func() { w.state.Orbitals.Set(id, o) })
}

func (w *Writer) RemoveActiveOrbital(id ecs.EntityID) {
	w.state.Orbitals.Remove(id)
	w.state.OrbitPoints.Remove(id)
}

// ApplyCharge starts (or re-triggers) a charge on a caster.
func (w *Writer) ApplyCharge(id ecs.EntityID, c component.ActiveCharge) {
	w.live(id, func() { w.state.Charges.Set(id, c) })
}

func (w *Writer) RemoveActiveCharge(id ecs.EntityID) {
	w.state.Charges.Remove(id)
}

// SpawnSpec describes a new non-projectile entity.
type SpawnSpec struct {
	Kind       component.Kind
	Position   component.Position
	Stats      component.StatBlock
	Resources  *component.Resources
	Equipment  []int32
	Collider   *component.Collider
	Controlled *component.Controlled
}

// Spawn creates an entity and publishes LifecycleSpawned.
func (w *Writer) Spawn(spec SpawnSpec) ecs.EntityID {
	s := w.state
	id := s.World.CreateEntity()
	s.Kinds.Set(id, spec.Kind)
	s.Positions.Set(id, spec.Position)
	s.Velocities.Set(id, geom.Vec3{})
	s.Movements.Set(id, component.IdleMovement())
	if spec.Stats != nil {
		s.BaseStats.Set(id, spec.Stats.Clone())
	}
	if spec.Resources != nil {
		s.Resources.Set(id, *spec.Resources)
	}
	if len(spec.Equipment) > 0 {
		s.Equipment.Set(id, component.Equipment{Items: slices.Clone(spec.Equipment)})
	}
	if spec.Collider != nil {
		s.Colliders.Set(id, *spec.Collider)
	}
	if spec.Controlled != nil {
		s.Controlled.Set(id, *spec.Controlled)
	}
	w.log.Debug("spawned", zap.Stringer("entity", id), zap.Stringer("kind", spec.Kind))
	w.bus.Lifecycle.Publish(event.Lifecycle{
		Case:     event.LifecycleSpawned,
		Entity:   id,
		Kind:     spec.Kind,
		Position: spec.Position,
	})
	return id
}

// SpawnProjectile creates a projectile entity at pos. A projectile whose
// target is already gone is not spawned.
func (w *Writer) SpawnProjectile(pos component.Position, p component.LiveProjectile) ecs.EntityID {
	if !w.state.World.Live(p.Target) {
		w.log.Debug("projectile target gone", zap.Stringer("target", p.Target))
		return 0
	}
	s := w.state
	id := s.World.CreateEntity()
	s.Kinds.Set(id, component.KindProjectile)
	s.Positions.Set(id, pos)
	s.Velocities.Set(id, geom.Vec3{})
	s.Projectiles.Set(id, p)
	w.bus.Lifecycle.Publish(event.Lifecycle{
		Case:       event.LifecycleSpawned,
		Entity:     id,
		Kind:       component.KindProjectile,
		Position:   pos,
		Projectile: p,
	})
	return id
}

// Remove queues id for destruction at cleanup. A projectile stops being a
// projectile immediately so nothing moves it again this frame.
func (w *Writer) Remove(id ecs.EntityID) bool {
	if !w.state.World.MarkForDestruction(id) {
		return false
	}
	w.state.Projectiles.Remove(id)
	w.state.Velocities.Remove(id)
	return true
}
