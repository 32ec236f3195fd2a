// Package world owns the authoritative component tables, the derived queries
// built on them, and the Writer that applies published events to them.
package world

import (
	"slices"
	"time"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/geom"
)

// ItemCatalog resolves the stat bonuses of an equipped item.
type ItemCatalog interface {
	ItemStats(id int32) (component.StatBlock, bool)
}

// Scenario is one isolated simulation sub-region and its static geometry.
type Scenario struct {
	ID      component.ScenarioID
	Name    string
	Dim     geom.Dim
	Objects []component.MapObject
}

// MovementSnapshot is the position set of one scenario as observed by every
// system in a frame.
type MovementSnapshot struct {
	Scenario  component.ScenarioID
	Positions map[ecs.EntityID]component.Position
}

// Position looks up id in the snapshot.
func (s MovementSnapshot) Position(id ecs.EntityID) (component.Position, bool) {
	p, ok := s.Positions[id]
	return p, ok
}

// IDs returns the snapshot's entities in ascending order.
func (s MovementSnapshot) IDs() []ecs.EntityID {
	ids := make([]ecs.EntityID, 0, len(s.Positions))
	for id := range s.Positions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// State holds all component tables. Accessed only from the simulation
// goroutine, no locks.
type State struct {
	World *ecs.World
	Clock *ecs.Clock

	Kinds       *ecs.Table[component.Kind]
	Positions   *ecs.Table[component.Position]
	Velocities  *ecs.Table[geom.Vec3]
	Movements   *ecs.Table[component.Movement]
	Colliders   *ecs.Table[component.Collider]
	Controlled  *ecs.Table[component.Controlled]
	BaseStats   *ecs.Table[component.StatBlock]
	Equipment   *ecs.Table[component.Equipment]
	Modifiers   *ecs.Table[[]component.Modifier]
	Resources   *ecs.Table[component.Resources]
	Orbitals    *ecs.Table[component.ActiveOrbital]
	Charges     *ecs.Table[component.ActiveCharge]
	Projectiles *ecs.Table[component.LiveProjectile]
	OrbitPoints *ecs.Table[[]geom.Vec3]
	RawInput    *ecs.Table[component.RawFrame]
	Actions     *ecs.Table[component.ActionStates]

	scenarios map[component.ScenarioID]*Scenario
	items     ItemCatalog

	stats     *ecs.Derived[map[ecs.EntityID]component.StatBlock]
	snapshots *ecs.Family[component.ScenarioID, MovementSnapshot]
}

// NewState builds the tables and derived queries. items may be nil, in which
// case equipment contributes nothing.
func NewState(clock *ecs.Clock, items ItemCatalog) *State {
	if clock == nil {
		clock = ecs.NewClock()
	}
	s := &State{
		World: ecs.NewWorld(),
		Clock: clock,

		Kinds:       ecs.NewComparableTable[component.Kind]("kind"),
		Positions:   ecs.NewComparableTable[component.Position]("position"),
		Velocities:  ecs.NewComparableTable[geom.Vec3]("velocity"),
		Movements:   ecs.NewTable[component.Movement]("movement").WithEqual(component.EqualMovement),
		Colliders:   ecs.NewComparableTable[component.Collider]("collider"),
		Controlled:  ecs.NewComparableTable[component.Controlled]("controlled"),
		BaseStats:   ecs.NewTable[component.StatBlock]("base_stats"),
		Equipment:   ecs.NewTable[component.Equipment]("equipment"),
		Modifiers:   ecs.NewTable[[]component.Modifier]("modifiers"),
		Resources:   ecs.NewComparableTable[component.Resources]("resources"),
		Orbitals:    ecs.NewComparableTable[component.ActiveOrbital]("orbital"),
		Charges:     ecs.NewComparableTable[component.ActiveCharge]("charge"),
		Projectiles: ecs.NewComparableTable[component.LiveProjectile]("projectile"),
		OrbitPoints: ecs.NewTable[[]geom.Vec3]("orbit_points"),
		RawInput:    ecs.NewTable[component.RawFrame]("raw_input"),
		Actions:     ecs.NewTable[component.ActionStates]("actions"),

		scenarios: make(map[component.ScenarioID]*Scenario),
		items:     items,
	}

	reg := s.World.Registry()
	reg.Register(s.Kinds.Name(), s.Kinds)
	reg.Register(s.Positions.Name(), s.Positions)
	reg.Register(s.Velocities.Name(), s.Velocities)
	reg.Register(s.Movements.Name(), s.Movements)
	reg.Register(s.Colliders.Name(), s.Colliders)
	reg.Register(s.Controlled.Name(), s.Controlled)
	reg.Register(s.BaseStats.Name(), s.BaseStats)
	reg.Register(s.Equipment.Name(), s.Equipment)
	reg.Register(s.Modifiers.Name(), s.Modifiers)
	reg.Register(s.Resources.Name(), s.Resources)
	reg.Register(s.Orbitals.Name(), s.Orbitals)
	reg.Register(s.Charges.Name(), s.Charges)
	reg.Register(s.Projectiles.Name(), s.Projectiles)
	reg.Register(s.OrbitPoints.Name(), s.OrbitPoints)
	reg.Register(s.RawInput.Name(), s.RawInput)
	reg.Register(s.Actions.Name(), s.Actions)

	s.stats = ecs.NewDerived("derived_stats", s.computeStats,
		s.World, s.BaseStats, s.Equipment, s.Modifiers, s.Resources)
	s.snapshots = ecs.NewFamily(func(id component.ScenarioID) *ecs.Derived[MovementSnapshot] {
		return ecs.NewDerived("movement_snapshot", func(*ecs.Frame) MovementSnapshot {
			return s.computeSnapshot(id)
		}, s.World, s.Positions)
	})
	return s
}

// TotalElapsedTime returns world time.
func (s *State) TotalElapsedTime() time.Duration { return s.Clock.TotalElapsedTime() }

// AddScenario registers a scenario; re-adding an ID replaces it.
func (s *State) AddScenario(sc *Scenario) { s.scenarios[sc.ID] = sc }

// Scenario looks up a registered scenario.
func (s *State) Scenario(id component.ScenarioID) (*Scenario, bool) {
	sc, ok := s.scenarios[id]
	return sc, ok
}

// ScenarioIDs lists registered scenarios in ascending order.
func (s *State) ScenarioIDs() []component.ScenarioID {
	ids := make([]component.ScenarioID, 0, len(s.scenarios))
	for id := range s.scenarios {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Dim returns the scenario's dimensionality; unknown scenarios are 2D.
func (s *State) Dim(id component.ScenarioID) geom.Dim {
	if sc, ok := s.scenarios[id]; ok {
		return sc.Dim
	}
	return geom.Dim2
}

// ComputeMovementSnapshot returns the live positions of one scenario. The
// result is shared by every caller within frame f.
func (s *State) ComputeMovementSnapshot(f *ecs.Frame, scenario component.ScenarioID) MovementSnapshot {
	return s.snapshots.Get(f, scenario)
}

func (s *State) computeSnapshot(scenario component.ScenarioID) MovementSnapshot {
	snap := MovementSnapshot{Scenario: scenario, Positions: make(map[ecs.EntityID]component.Position)}
	s.Positions.Each(func(id ecs.EntityID, p component.Position) {
		if p.Scenario == scenario && s.World.Live(id) {
			snap.Positions[id] = p
		}
	})
	return snap
}

// Stats returns the derived stat block of id within frame f. Unknown
// entities get an empty block.
func (s *State) Stats(f *ecs.Frame, id ecs.EntityID) component.StatBlock {
	if b, ok := s.stats.Get(f)[id]; ok {
		return b
	}
	return component.StatBlock{}
}

// AllStats returns every derived stat block for frame f. Callers must not
// mutate the result.
func (s *State) AllStats(f *ecs.Frame) map[ecs.EntityID]component.StatBlock {
	return s.stats.Get(f)
}

// StatsRecomputes reports how often the stat query has been recomputed.
func (s *State) StatsRecomputes() int { return s.stats.Recomputes() }

// computeStats folds base stats, equipped items and active modifiers, then
// overlays the current resource pools.
func (s *State) computeStats(*ecs.Frame) map[ecs.EntityID]component.StatBlock {
	out := make(map[ecs.EntityID]component.StatBlock, s.BaseStats.Len())
	block := func(id ecs.EntityID) component.StatBlock {
		b, ok := out[id]
		if !ok {
			b = component.StatBlock{}
			out[id] = b
		}
		return b
	}

	s.BaseStats.Each(func(id ecs.EntityID, base component.StatBlock) {
		if !s.World.Alive(id) {
			return
		}
		b := block(id)
		for k, v := range base {
			b[k] = v
		}
	})
	if s.items != nil {
		s.Equipment.Each(func(id ecs.EntityID, eq component.Equipment) {
			if !s.World.Alive(id) {
				return
			}
			b := block(id)
			for _, item := range eq.Items {
				bonus, ok := s.items.ItemStats(item)
				if !ok {
					continue
				}
				for k, v := range bonus {
					b[k] += v
				}
			}
		})
	}
	s.Modifiers.Each(func(id ecs.EntityID, mods []component.Modifier) {
		if !s.World.Alive(id) {
			return
		}
		b := block(id)
		for _, m := range mods {
			b[m.Stat] += m.Add
		}
	})
	s.Resources.Each(func(id ecs.EntityID, r component.Resources) {
		if !s.World.Alive(id) {
			return
		}
		b := block(id)
		b[component.StatHP] = r.HP
		b[component.StatMaxHP] = r.MaxHP
		b[component.StatMP] = r.MP
		b[component.StatMaxMP] = r.MaxMP
	})
	return out
}

// MoveSpeed returns the entity's SPD stat or fallback when absent.
func (s *State) MoveSpeed(f *ecs.Frame, id ecs.EntityID, fallback float64) float64 {
	b := s.Stats(f, id)
	if b.Has(component.StatMoveSpeed) {
		return b.Stat(component.StatMoveSpeed)
	}
	return fallback
}

// IsControlled reports whether id is driven by local input.
func (s *State) IsControlled(id ecs.EntityID) bool { return s.Controlled.Has(id) }

// Velocity returns the last written velocity, zero when none.
func (s *State) Velocity(id ecs.EntityID) geom.Vec3 {
	v, _ := s.Velocities.Get(id)
	return v
}

// Movement returns the entity's movement intent, Idle when none.
func (s *State) Movement(id ecs.EntityID) component.Movement {
	m, ok := s.Movements.Get(id)
	if !ok {
		return component.IdleMovement()
	}
	return m
}
