package system

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/l1jgo/simcore/internal/combat"
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/data"
	"github.com/l1jgo/simcore/internal/geom"
	"github.com/l1jgo/simcore/internal/input"
	"github.com/l1jgo/simcore/internal/world"
)

const tick = 100 * time.Millisecond

type harness struct {
	state  *world.State
	bus    *event.Bus
	writer *world.Writer
	runner *coresys.Runner
	queue  *event.Queue[event.Collision]
	sim    config.SimulationConfig
}

func newHarness(t *testing.T, defs *data.Definitions) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	clock := ecs.NewClock()
	if defs == nil {
		defs = data.NewDefinitions(nil, nil)
	}
	h := &harness{
		state: world.NewState(clock, defs),
		bus:   event.NewBus(),
		queue: event.NewQueue[event.Collision](64),
		sim:   config.Default().Simulation,
	}
	h.writer = world.NewWriter(h.state, h.bus, log)
	h.writer.Attach()
	h.state.AddScenario(&world.Scenario{ID: 1, Name: "test", Dim: geom.Dim2})
	h.runner = coresys.NewRunner(clock, log)
	player := RegisterAll(h.runner, Deps{
		State:      h.state,
		Bus:        h.bus,
		Defs:       defs,
		Sim:        h.sim,
		Input:      config.Default().Input,
		Collisions: h.queue,
		Rand:       rand.New(rand.NewSource(7)),
		Log:        log,
	})
	t.Cleanup(player.Close)
	return h
}

func (h *harness) spawn(x, y, hp float64) ecs.EntityID {
	return h.writer.Spawn(world.SpawnSpec{
		Kind:      component.KindUnit,
		Position:  component.Position{Scenario: 1, Point: geom.Vec3{x, y, 0}},
		Resources: &component.Resources{HP: hp, MaxHP: hp, MP: 10, MaxMP: 10},
	})
}

func collect[T any](topic *event.Topic[T]) *[]T {
	var out []T
	topic.Subscribe(func(ev T) { out = append(out, ev) })
	return &out
}

func TestRegisterAll_Order(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, []string{
		"intent/intent",
		"detect/collision",
		"move/movement",
		"move/player_path",
		"move/projectile",
		"integrate/integrate",
		"combat/combat",
		"effects/effects",
		"cleanup/cleanup",
	}, h.runner.Describe())
}

func TestRegisterAll_PollerAddsInput(t *testing.T) {
	clock := ecs.NewClock()
	state := world.NewState(clock, data.NewDefinitions(nil, nil))
	runner := coresys.NewRunner(clock, zaptest.NewLogger(t))
	player := RegisterAll(runner, Deps{
		State:      state,
		Bus:        event.NewBus(),
		Defs:       data.NewDefinitions(nil, nil),
		Input:      config.Default().Input,
		Poller:     input.NewScript(),
		Collisions: event.NewQueue[event.Collision](8),
		Rand:       rand.New(rand.NewSource(1)),
	})
	defer player.Close()
	assert.Equal(t, "input/input", runner.Describe()[0])
}

func TestCollision_OrderedPairsBelowRadius(t *testing.T) {
	tests := []struct {
		name string
		gap  float64
		want int
	}{
		{"just inside", 63.9, 2},
		{"at radius", 64, 0},
		{"far apart", 500, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)
			a := h.spawn(0, 0, 10)
			b := h.spawn(tt.gap, 0, 10)
			hits := collect(h.bus.Collision)

			sys := NewCollisionSystem(h.state, h.bus, h.queue, h.sim, zaptest.NewLogger(t))
			sys.Update(h.state.Clock.Advance(tick))

			require.Len(t, *hits, tt.want)
			if tt.want == 2 {
				assert.Equal(t, a, (*hits)[0].Entity)
				assert.Equal(t, b, (*hits)[0].Other)
				assert.Equal(t, b, (*hits)[1].Entity)
				assert.Equal(t, a, (*hits)[1].Other)
			}
		})
	}
}

func TestCollision_LargeColliderReachesPastNeighbourCells(t *testing.T) {
	h := newHarness(t, nil)
	big := h.writer.Spawn(world.SpawnSpec{
		Kind:     component.KindUnit,
		Position: component.Position{Scenario: 1, Point: geom.Vec3{0, 0, 0}},
		Collider: &component.Collider{Radius: 200},
	})
	small := h.spawn(150, 0, 10)
	hits := collect(h.bus.Collision)

	sys := NewCollisionSystem(h.state, h.bus, h.queue, h.sim, zaptest.NewLogger(t))
	sys.Update(h.state.Clock.Advance(tick))

	require.Len(t, *hits, 1, "only the wide collider reaches the other entity")
	assert.Equal(t, big, (*hits)[0].Entity)
	assert.Equal(t, small, (*hits)[0].Other)
}

func TestCollision_GridMatchesSnapshot(t *testing.T) {
	h := newHarness(t, nil)
	h.spawn(10, 10, 10)
	gone := h.spawn(20, 20, 10)
	h.writer.Remove(gone)

	sys := NewCollisionSystem(h.state, h.bus, h.queue, h.sim, zaptest.NewLogger(t))
	sys.Update(h.state.Clock.Advance(tick))
	g, ok := sys.Grid(1)
	require.True(t, ok)
	assert.Equal(t, 1, g.Len(), "entities pending removal are not indexed")
}

func TestCollision_MapObjectQueuedOnlyForUncontrolled(t *testing.T) {
	h := newHarness(t, nil)
	h.state.AddScenario(&world.Scenario{
		ID:  2,
		Dim: geom.Dim2,
		Objects: []component.MapObject{
			{Group: "walls", ID: 1, Shape: geom.Box(geom.Vec2{0, 0}, 10)},
		},
	})
	npc := h.writer.Spawn(world.SpawnSpec{Position: component.Position{Scenario: 2, Point: geom.Vec3{24, 0, 0}}})
	h.writer.Spawn(world.SpawnSpec{
		Kind:       component.KindPlayer,
		Position:   component.Position{Scenario: 2, Point: geom.Vec3{-24, 0, 0}},
		Controlled: &component.Controlled{Source: "local"},
	})
	hits := collect(h.bus.Collision)

	sys := NewCollisionSystem(h.state, h.bus, h.queue, h.sim, zaptest.NewLogger(t))
	sys.Update(h.state.Clock.Advance(tick))

	var objects []event.Collision
	for _, c := range *hits {
		if c.Case == event.CollisionMapObject {
			objects = append(objects, c)
		}
	}
	require.Len(t, objects, 2)
	assert.Equal(t, 1, h.queue.Len())

	var queued []event.Collision
	h.queue.Drain(func(c event.Collision) { queued = append(queued, c) })
	assert.Equal(t, npc, queued[0].Entity)
	assert.True(t, queued[0].HasMTV)
	assert.InDelta(t, 2.0, queued[0].MTV[0], 1e-9, "pushed out along +X")
}

func TestMovement_EndToEndArrives(t *testing.T) {
	h := newHarness(t, nil)
	id := h.spawn(0, 0, 10)
	h.bus.Comms.Publish(event.Comms{
		Case:     event.CommsMoveIntent,
		Source:   id,
		Movement: component.MoveTo(geom.Vec3{30, 0, 0}),
	})
	arrived := 0
	h.bus.StateChange.Subscribe(func(ev event.StateChange) {
		if ev.Case == event.StateArrived {
			arrived++
		}
	})

	for i := 0; i < 10; i++ {
		h.runner.Tick(tick)
	}
	pos, ok := h.state.Positions.Get(id)
	require.True(t, ok)
	assert.InDelta(t, 30.0, pos.Point[0], 2.0)
	assert.Equal(t, component.Idle, h.state.Movement(id).Phase)
	assert.Equal(t, 1, arrived)
	assert.Equal(t, geom.Vec3{}, h.state.Velocity(id))
}

func TestMovement_DrainsStaleCollisions(t *testing.T) {
	h := newHarness(t, nil)
	gone := h.spawn(0, 0, 10)
	h.writer.Remove(gone)
	h.queue.Push(event.Collision{Case: event.CollisionMapObject, Scenario: 1, Entity: gone, MTV: geom.Vec3{1, 0, 0}, HasMTV: true})

	sys := NewMovementSystem(h.state, h.bus, h.queue, h.sim, zaptest.NewLogger(t))
	sys.Update(h.state.Clock.Advance(tick))
	assert.Zero(t, h.queue.Len())
	assert.Empty(t, sys.mtv)
}

func chainSetup(t *testing.T, jumps int) (*harness, ecs.EntityID, *[]event.Lifecycle) {
	t.Helper()
	h := newHarness(t, nil)
	caster := h.spawn(110, 0, 10)
	target := h.spawn(100, 0, 10)
	h.spawn(130, 0, 10) // the only eligible candidate
	h.spawn(400, 0, 10) // out of chain range
	h.writer.SpawnProjectile(component.Position{Scenario: 1, Point: geom.Vec3{98, 0, 0}}, component.LiveProjectile{
		Caster: caster,
		Target: target,
		Skill:  1,
		Delivery: component.Delivery{
			Speed:      200,
			Chained:    true,
			JumpsLeft:  jumps,
			ChainRange: 50,
		},
	})
	return h, target, collect(h.bus.Lifecycle)
}

func TestProjectile_ChainLastJump(t *testing.T) {
	h, target, life := chainSetup(t, 0)
	impacts := collect(h.bus.Comms)

	sys := NewProjectileSystem(h.state, h.bus, h.sim, rand.New(rand.NewSource(1)), zaptest.NewLogger(t))
	sys.Update(h.state.Clock.Advance(tick))

	require.Len(t, *impacts, 1)
	assert.Equal(t, event.CommsImpact, (*impacts)[0].Case)
	assert.Equal(t, target, (*impacts)[0].Target)

	var spawns, removes int
	for _, ev := range *life {
		switch ev.Case {
		case event.LifecycleSpawnProjectile:
			spawns++
			assert.Equal(t, -1, ev.Projectile.Delivery.JumpsLeft)
			assert.NotEqual(t, target, ev.Projectile.Target)
			assert.Equal(t, geom.Vec3{100, 0, 0}, ev.Position.Point, "launched from the impact point")
		case event.LifecycleRemove:
			removes++
		}
	}
	assert.Equal(t, 1, spawns)
	assert.Equal(t, 1, removes)
	assert.Equal(t, 1, h.state.Projectiles.Len(), "only the follow-up remains in flight")
}

func TestProjectile_ChainExhausted(t *testing.T) {
	h, _, life := chainSetup(t, -1)
	sys := NewProjectileSystem(h.state, h.bus, h.sim, rand.New(rand.NewSource(1)), zaptest.NewLogger(t))
	sys.Update(h.state.Clock.Advance(tick))

	for _, ev := range *life {
		assert.NotEqual(t, event.LifecycleSpawnProjectile, ev.Case)
	}
	assert.Zero(t, h.state.Projectiles.Len())
}

func TestProjectile_TargetLostRemoves(t *testing.T) {
	h := newHarness(t, nil)
	caster := h.spawn(0, 0, 10)
	target := h.spawn(300, 0, 10)
	p := h.writer.SpawnProjectile(component.Position{Scenario: 1, Point: geom.Vec3{0, 0, 0}},
		component.LiveProjectile{Caster: caster, Target: target, Delivery: component.Delivery{Speed: 50}})
	require.False(t, p.IsZero())

	sys := NewProjectileSystem(h.state, h.bus, h.sim, rand.New(rand.NewSource(1)), zaptest.NewLogger(t))
	sys.Update(h.state.Clock.Advance(tick))
	assert.Equal(t, geom.Vec3{50, 0, 0}, h.state.Velocity(p), "steers at configured speed")

	h.writer.Remove(target)
	sys.Update(h.state.Clock.Advance(tick))
	assert.False(t, h.state.World.Live(p))
	assert.False(t, h.state.Projectiles.Has(p))
}

func testDefs() *data.Definitions {
	return data.NewDefinitions(map[int32]*data.Skill{
		1: {ID: 1, Kind: data.SkillInstant, Base: combat.Const(50)},
		2: {ID: 2, Kind: data.SkillRestore, MPCost: 4, Restore: combat.Const(25)},
		3: {
			ID:       3,
			Kind:     data.SkillCharge,
			Duration: time.Second,
			Then:     1,
			Orbital:  component.OrbitalConfig{StartSpeed: 1, EndSpeed: 1, Count: 2, Radius: 10},
		},
		4: {ID: 4, Kind: data.SkillBuff, Duration: time.Second, Modifier: component.Modifier{Stat: component.StatAP, Add: 3}},
	}, map[int32]*data.Item{
		100: {ID: 100, Category: data.CategoryConsumable, Restore: combat.Const(5), Pool: "mp"},
	})
}

func TestCombat_LethalInstant(t *testing.T) {
	h := newHarness(t, testDefs())
	caster := h.spawn(0, 0, 100)
	target := h.spawn(10, 0, 30)
	comms := collect(h.bus.Comms)
	life := collect(h.bus.Lifecycle)

	h.bus.Comms.Publish(event.Comms{Case: event.CommsUseAbility, Source: caster, Target: target, Skill: 1})
	h.runner.Tick(tick)

	var damaged, died bool
	for _, c := range *comms {
		switch c.Case {
		case event.CommsDamaged:
			damaged = true
			assert.Equal(t, 50, c.Amount)
		case event.CommsDied:
			died = true
			assert.Equal(t, target, c.Target)
		}
	}
	assert.True(t, damaged)
	assert.True(t, died)
	assert.False(t, h.state.World.Alive(target), "destroyed at cleanup")
	assert.Equal(t, event.LifecycleDespawned, (*life)[len(*life)-1].Case)
}

func TestCombat_RestoreCostsMPAndCaps(t *testing.T) {
	h := newHarness(t, testDefs())
	caster := h.spawn(0, 0, 100)
	h.writer.SetResources(caster, component.Resources{HP: 90, MaxHP: 100, MP: 6, MaxMP: 10})

	h.bus.Comms.Publish(event.Comms{Case: event.CommsUseAbility, Source: caster, Skill: 2})
	h.runner.Tick(tick)
	res, _ := h.state.Resources.Get(caster)
	assert.Equal(t, 100.0, res.HP)
	assert.Equal(t, 2.0, res.MP)

	// not enough MP for a second cast
	h.writer.SetResources(caster, component.Resources{HP: 50, MaxHP: 100, MP: 2, MaxMP: 10})
	h.bus.Comms.Publish(event.Comms{Case: event.CommsUseAbility, Source: caster, Skill: 2})
	h.runner.Tick(tick)
	res, _ = h.state.Resources.Get(caster)
	assert.Equal(t, 50.0, res.HP)

	h.bus.Comms.Publish(event.Comms{Case: event.CommsUseItem, Source: caster, Item: 100})
	h.runner.Tick(tick)
	res, _ = h.state.Resources.Get(caster)
	assert.Equal(t, 7.0, res.MP)
}

func TestEffects_ChargeCompletesAndFiresFollowUp(t *testing.T) {
	h := newHarness(t, testDefs())
	caster := h.spawn(0, 0, 100)
	target := h.spawn(10, 0, 200)
	comms := collect(h.bus.Comms)

	h.bus.Comms.Publish(event.Comms{Case: event.CommsUseAbility, Source: caster, Target: target, Skill: 3})
	h.runner.Tick(tick)
	require.True(t, h.state.Charges.Has(caster))
	require.True(t, h.state.Orbitals.Has(caster))
	pts, ok := h.state.OrbitPoints.Get(caster)
	require.True(t, ok)
	assert.Len(t, pts, 2)

	// expires on frame 11, the follow-up resolves on frame 12
	for i := 0; i < 12; i++ {
		h.runner.Tick(tick)
	}
	assert.False(t, h.state.Charges.Has(caster))
	assert.False(t, h.state.Orbitals.Has(caster), "attached orbital goes with the charge")

	var completed, orbitalsDone, damaged int
	for _, c := range *comms {
		switch c.Case {
		case event.CommsChargeCompleted:
			completed++
		case event.CommsOrbitalCompleted:
			orbitalsDone++
		case event.CommsDamaged:
			damaged++
			assert.Equal(t, target, c.Target)
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, orbitalsDone, "attached orbital reports its end")
	assert.Equal(t, 1, damaged, "follow-up skill fired once")
	res, _ := h.state.Resources.Get(target)
	assert.Equal(t, 150.0, res.HP)
}

func TestEffects_OrbitalExpiryCompletes(t *testing.T) {
	h := newHarness(t, nil)
	caster := h.spawn(0, 0, 100)
	h.writer.ApplyOrbital(caster, component.ActiveOrbital{
		Skill:    9,
		Start:    h.state.TotalElapsedTime(),
		Duration: 2 * tick,
		Config:   component.OrbitalConfig{Count: 1, Radius: 5},
	})
	comms := collect(h.bus.Comms)
	sys := NewEffectsSystem(h.state, h.bus)

	for i := 0; i < 3; i++ {
		sys.Update(h.state.Clock.Advance(tick))
	}
	assert.False(t, h.state.Orbitals.Has(caster))
	assert.False(t, h.state.OrbitPoints.Has(caster))
	require.Len(t, *comms, 1)
	assert.Equal(t, event.CommsOrbitalCompleted, (*comms)[0].Case)
	assert.Equal(t, caster, (*comms)[0].Source)
	assert.Equal(t, int32(9), (*comms)[0].Skill)
}

func TestEffects_BuffLapses(t *testing.T) {
	h := newHarness(t, testDefs())
	caster := h.spawn(0, 0, 100)

	h.bus.Comms.Publish(event.Comms{Case: event.CommsUseAbility, Source: caster, Skill: 4})
	h.runner.Tick(tick)
	// nil frame: this frame's stats were pinned before the buff landed
	assert.Equal(t, 3.0, h.state.Stats(nil, caster).Stat(component.StatAP))

	for i := 0; i < 12; i++ {
		h.runner.Tick(tick)
	}
	assert.False(t, h.state.Modifiers.Has(caster))
	assert.Zero(t, h.state.Stats(nil, caster).Stat(component.StatAP))
}

func TestInputIntent_AbilityThenMove(t *testing.T) {
	h := newHarness(t, testDefs())
	h.runner.Register(NewInputSystem(h.state, h.bus, input.NewScript(
		component.RawInput{Down: map[string]bool{"key:1": true}, Pointer: [2]float64{42, 0}},
		component.RawInput{Down: map[string]bool{"mouse:right": true}, Pointer: [2]float64{20, 5}},
	), input.NewMapper(bindings(config.Default().Input))))

	player := h.writer.Spawn(world.SpawnSpec{
		Kind:       component.KindPlayer,
		Position:   component.Position{Scenario: 1},
		Resources:  &component.Resources{HP: 100, MaxHP: 100},
		Controlled: &component.Controlled{Source: "local"},
	})
	enemy := h.spawn(40, 0, 100)
	comms := collect(h.bus.Comms)

	h.runner.Tick(tick)
	require.NotEmpty(t, *comms)
	use := (*comms)[0]
	assert.Equal(t, event.CommsUseAbility, use.Case)
	assert.Equal(t, player, use.Source)
	assert.Equal(t, enemy, use.Target, "nearest entity under the cursor")
	res, _ := h.state.Resources.Get(enemy)
	assert.Equal(t, 50.0, res.HP)

	h.runner.Tick(tick)
	m := h.state.Movement(player)
	assert.Equal(t, component.MovingTo, m.Phase)
	assert.Equal(t, geom.Vec3{20, 5, 0}, m.Target)
	pos, _ := h.state.Positions.Get(player)
	assert.Greater(t, pos.Point[0], 0.0, "player path system moved the player")
}
