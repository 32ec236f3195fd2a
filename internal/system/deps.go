// Package system holds the per-frame simulation systems. Systems never call
// each other: they read world snapshots and publish events, and the world
// Writer applies those events.
package system

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/config"
	"github.com/l1jgo/simcore/internal/core/event"
	coresys "github.com/l1jgo/simcore/internal/core/system"
	"github.com/l1jgo/simcore/internal/data"
	"github.com/l1jgo/simcore/internal/input"
	"github.com/l1jgo/simcore/internal/world"
)

// Deps bundles what systems are constructed from. Each system keeps only the
// fields it needs.
type Deps struct {
	State      *world.State
	Bus        *event.Bus
	Defs       *data.Definitions
	Sim        config.SimulationConfig
	Input      config.InputConfig
	Poller     input.Poller // nil disables device input
	Collisions *event.Queue[event.Collision]
	Rand       *rand.Rand
	Log        *zap.Logger
}

func (d *Deps) defaults() {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Rand == nil {
		d.Rand = rand.New(rand.NewSource(1))
	}
	if d.Collisions == nil {
		size := d.Sim.CollisionQueueSize
		if size <= 0 {
			size = 4096
		}
		d.Collisions = event.NewQueue[event.Collision](size)
	}
	if d.Defs == nil {
		d.Defs = data.NewDefinitions(nil, nil)
	}
}

// RegisterAll constructs every system in frame order and registers it.
// It returns the player path system so callers can detach its collision
// subscription on shutdown.
func RegisterAll(r *coresys.Runner, d Deps) *PlayerPathSystem {
	d.defaults()
	if d.Poller != nil {
		r.Register(NewInputSystem(d.State, d.Bus, d.Poller, input.NewMapper(bindings(d.Input))))
	}
	r.Register(NewIntentSystem(d.State, d.Bus, d.Input, d.Log))
	r.Register(NewCollisionSystem(d.State, d.Bus, d.Collisions, d.Sim, d.Log))
	r.Register(NewMovementSystem(d.State, d.Bus, d.Collisions, d.Sim, d.Log))
	player := NewPlayerPathSystem(d.State, d.Bus, d.Sim)
	r.Register(player)
	r.Register(NewProjectileSystem(d.State, d.Bus, d.Sim, d.Rand, d.Log))
	r.Register(NewIntegrateSystem(d.State, d.Bus))
	r.Register(NewCombatSystem(d.State, d.Bus, d.Defs, d.Rand, d.Log))
	r.Register(NewEffectsSystem(d.State, d.Bus))
	r.Register(NewCleanupSystem(d.State, d.Bus, d.Log))
	return player
}

func bindings(cfg config.InputConfig) input.Bindings {
	b := make(input.Bindings, len(cfg.Bindings))
	for act, ctrls := range cfg.Bindings {
		b[component.Action(act)] = ctrls
	}
	return b
}
