package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/world"
)

// CollisionSystem rebuilds each scenario's grid from the frame snapshot and
// publishes entity-entity and entity-map-object contacts. Contacts repeat
// every frame for as long as they persist, and both ordered pairs fire.
// Map-object contacts of non-controlled entities are also queued for the
// movement resolver. Phase 2 (Detect).
type CollisionSystem struct {
	state      *world.State
	bus        *event.Bus
	queue      *event.Queue[event.Collision]
	radius     float64
	halfExtent float64
	cellSize   float64
	grids      map[component.ScenarioID]*world.Grid
	log        *zap.Logger

	lastDropped uint64
}

func NewCollisionSystem(state *world.State, bus *event.Bus, queue *event.Queue[event.Collision], cfg config.SimulationConfig, log *zap.Logger) *CollisionSystem {
	return &CollisionSystem{
		state:      state,
		bus:        bus,
		queue:      queue,
		radius:     orDefault(cfg.CollisionRadius, world.DefaultCellSize),
		halfExtent: orDefault(cfg.EntityHalfExtent, 16),
		cellSize:   orDefault(cfg.CellSize, world.DefaultCellSize),
		grids:      make(map[component.ScenarioID]*world.Grid),
		log:        log,
	}
}

func (s *CollisionSystem) Kind() coresys.Kind   { return "collision" }
func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseDetect }

// Grid returns the grid built for scenario during the last Update.
func (s *CollisionSystem) Grid(scenario component.ScenarioID) (*world.Grid, bool) {
	g, ok := s.grids[scenario]
	return g, ok
}

func (s *CollisionSystem) Update(f *ecs.Frame) {
	for _, id := range s.state.ScenarioIDs() {
		sc, _ := s.state.Scenario(id)
		s.detect(f, sc)
	}
	if d := s.queue.Dropped(); d != s.lastDropped {
		s.log.Warn("collision queue full, contacts dropped", zap.Uint64("total_dropped", d))
		s.lastDropped = d
	}
}

func (s *CollisionSystem) detect(f *ecs.Frame, sc *world.Scenario) {
	snap := s.state.ComputeMovementSnapshot(f, sc.ID)
	grid, ok := s.grids[sc.ID]
	if !ok {
		grid = world.NewGrid(s.cellSize, sc.Dim)
		s.grids[sc.ID] = grid
	}
	grid.Rebuild(snap.Positions)

	for _, id := range snap.IDs() {
		pos := snap.Positions[id].Point
		shape := s.shapeOf(id)

		for _, other := range grid.Within(pos, shape.Radius) {
			if other == id {
				continue
			}
			if geom.PlaneDistance(pos, snap.Positions[other].Point, sc.Dim) < shape.Radius {
				s.bus.Collision.Publish(event.Collision{
					Case:     event.CollisionEntity,
					Scenario: sc.ID,
					Entity:   id,
					Other:    other,
				})
			}
		}

		if len(sc.Objects) == 0 {
			continue
		}
		box := geom.Box(geom.Ground(pos, sc.Dim), shape.HalfExtent)
		for _, obj := range sc.Objects {
			mtv, hit := geom.Intersect(box, obj.Shape)
			if !hit {
				continue
			}
			ev := event.Collision{
				Case:     event.CollisionMapObject,
				Scenario: sc.ID,
				Entity:   id,
				Object:   event.MapObjectRef{Group: obj.Group, ID: obj.ID},
				MTV:      geom.Lift(mtv, sc.Dim),
				HasMTV:   true,
			}
			s.bus.Collision.Publish(ev)
			if !s.state.IsControlled(id) {
				s.queue.Push(ev)
			}
		}
	}
}

// shapeOf merges the entity's Collider override with the defaults.
func (s *CollisionSystem) shapeOf(id ecs.EntityID) component.Collider {
	c, _ := s.state.Colliders.Get(id)
	return component.Collider{
		Radius:     orDefault(c.Radius, s.radius),
		HalfExtent: orDefault(c.HalfExtent, s.halfExtent),
	}
}

func orDefault(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
