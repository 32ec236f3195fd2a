package component

import (
	"time"

	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/geom"
)

// OrbitalConfig describes a ring of orbiting instances around a caster.
type OrbitalConfig struct {
	StartSpeed float64   // rad/s at t=0
	EndSpeed   float64   // rad/s at t=duration
	Count      int       // instances, evenly spaced
	Radius     float64
	Scale      geom.Vec2 // non-uniform path scale; zero means (1,1)
	Axis       geom.Vec3 // plane normal; zero means geom.DefaultAxis
	Offset     geom.Vec3 // centre offset from the caster
	Element    string    // visual hint only
}

// ActiveOrbital is a time-bounded orbital effect attached to a caster.
type ActiveOrbital struct {
	Skill    int32
	Start    time.Duration
	Duration time.Duration
	Config   OrbitalConfig
}

// ActiveCharge is a time-bounded wind-up attached to a caster. Its
// completion fires an event and removes any orbital it carries.
type ActiveCharge struct {
	Skill    int32
	Target   ecs.EntityID // zero when the charge has no target
	Start    time.Duration
	Duration time.Duration
}
