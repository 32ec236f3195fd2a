// Package effect computes orbital positions and effect expiry. Everything
// here is a function of configuration and elapsed time.
package effect

import (
	"math"
	"time"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/geom"
)

// Angle integrates a constant angular acceleration from StartSpeed to
// EndSpeed over duration: s0*t + a*t^2/2. A zero duration means no
// acceleration.
func Angle(cfg component.OrbitalConfig, duration, t time.Duration) float64 {
	ts := t.Seconds()
	var accel float64
	if d := duration.Seconds(); d > 0 {
		accel = (cfg.EndSpeed - cfg.StartSpeed) / d
	}
	return cfg.StartSpeed*ts + 0.5*accel*ts*ts
}

// Offsets returns the local offset of every orbital instance at time t since
// the orbital started, relative to the caster.
func Offsets(cfg component.OrbitalConfig, duration, t time.Duration) []geom.Vec3 {
	if cfg.Count <= 0 {
		return nil
	}
	scale := cfg.Scale
	if scale == (geom.Vec2{}) {
		scale = geom.Vec2{1, 1}
	}
	axis := cfg.Axis
	if geom.IsZero3(axis) {
		axis = geom.DefaultAxis
	}
	rot := geom.ShortestArc(geom.DefaultAxis, axis)

	base := Angle(cfg, duration, t)
	out := make([]geom.Vec3, cfg.Count)
	for i := range out {
		a := base + 2*math.Pi*float64(i)/float64(cfg.Count)
		x := math.Cos(a) * cfg.Radius * scale[0]
		z := math.Sin(a) * cfg.Radius * scale[1]
		out[i] = rot.Rotate(geom.Vec3{x, 0, z}).Add(cfg.Offset)
	}
	return out
}

// Positions places the orbital's instances around center at world time now.
func Positions(o component.ActiveOrbital, center geom.Vec3, now time.Duration) []geom.Vec3 {
	offs := Offsets(o.Config, o.Duration, Since(o.Start, now))
	for i := range offs {
		offs[i] = offs[i].Add(center)
	}
	return offs
}

// Since is the non-negative time elapsed from start to now.
func Since(start, now time.Duration) time.Duration {
	if now < start {
		return 0
	}
	return now - start
}

// Expired reports whether an effect that began at start with the given
// duration is over at now.
func Expired(start, duration, now time.Duration) bool {
	return Since(start, now) >= duration
}

// Progress is the completed fraction in [0,1].
func Progress(start, duration, now time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	return math.Min(float64(Since(start, now))/float64(duration), 1)
}
