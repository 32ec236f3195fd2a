// Package movement turns a movement intent plus this frame's collision
// response into a velocity. It is pure: callers publish the result.
package movement

import (
	"slices"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/geom"
)

// Thresholds are the arrival distances measured in the movement plane.
type Thresholds struct {
	Arrive   float64 // MovingTo target
	Waypoint float64 // head of a path
}

var (
	Planar  = Thresholds{Arrive: 2.0, Waypoint: 2.0}
	Spatial = Thresholds{Arrive: 0.5, Waypoint: 0.8}
)

// DefaultThresholds returns Planar for 2D and Spatial for 3D scenarios.
func DefaultThresholds(d geom.Dim) Thresholds {
	if d == geom.Dim3 {
		return Spatial
	}
	return Planar
}

// Input is everything one resolver step reads.
type Input struct {
	Dim          geom.Dim
	Thresholds   Thresholds
	Position     geom.Vec3
	Movement     component.Movement
	Speed        float64
	MTV          geom.Vec3 // sum of this frame's map-object MTVs
	LastVelocity geom.Vec3 // last value written to the store
}

// Output describes what the step wants published.
type Output struct {
	Next            component.Movement
	Velocity        geom.Vec3
	PublishVelocity bool
	Arrived         bool
	WaypointReached bool
	Remaining       []geom.Vec3 // valid when WaypointReached
}

// Step advances the state machine one frame.
func Step(in Input) Output {
	switch in.Movement.Phase {
	case component.MovingTo:
		return stepTo(in)
	case component.MovingAlongPath:
		return stepPath(in)
	default:
		out := Output{Next: component.IdleMovement()}
		if !geom.IsZero3(in.LastVelocity) {
			out.PublishVelocity = true
		}
		return out
	}
}

func stepTo(in Input) Output {
	if geom.PlaneDistance(in.Position, in.Movement.Target, in.Dim) < in.Thresholds.Arrive {
		return arrive(in.Movement.Phase)
	}
	return steer(in, in.Movement.Target, in.Movement)
}

func stepPath(in Input) Output {
	if len(in.Movement.Path) == 0 {
		return arrive(in.Movement.Phase)
	}
	head := in.Movement.Path[0]
	if geom.PlaneDistance(in.Position, head, in.Dim) < in.Thresholds.Waypoint {
		rest := slices.Clone(in.Movement.Path[1:])
		out := Output{WaypointReached: true, Remaining: rest, Velocity: in.LastVelocity}
		if len(rest) == 0 {
			out.Next = component.IdleMovement()
		} else {
			phase, err := Transition(in.Movement.Phase, EventWaypoint)
			if err != nil {
				return arrive(in.Movement.Phase)
			}
			out.Next = component.Movement{Phase: phase, Path: rest}
		}
		return out
	}
	return steer(in, head, in.Movement)
}

func arrive(from component.MovementPhase) Output {
	phase, err := Transition(from, EventArrive)
	if err != nil {
		phase = component.Idle
	}
	return Output{
		Next:            component.Movement{Phase: phase},
		PublishVelocity: true,
		Arrived:         true,
	}
}

// steer heads toward target at speed, slid along the accumulated MTV.
// The velocity is only flagged for publishing when it changed.
func steer(in Input, target geom.Vec3, m component.Movement) Output {
	v := SlidingVelocity(in.Position, target, in.Dim, in.Speed, in.MTV)
	return Output{
		Next:            m,
		Velocity:        v,
		PublishVelocity: v != in.LastVelocity,
	}
}

// SlidingVelocity is the velocity toward target with the component along mtv
// removed. Shared by the resolver and the player path follower.
func SlidingVelocity(from, target geom.Vec3, d geom.Dim, speed float64, mtv geom.Vec3) geom.Vec3 {
	return geom.Slide(geom.Toward(from, target, d, speed), mtv)
}
