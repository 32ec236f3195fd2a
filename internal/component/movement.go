package component

import (
	"slices"

	"github.com/l1jgo/simcore/internal/geom"
)

// MovementPhase is the tag of a Movement value.
type MovementPhase uint8

const (
	Idle MovementPhase = iota
	MovingTo
	MovingAlongPath
)

func (p MovementPhase) String() string {
	switch p {
	case MovingTo:
		return "moving_to"
	case MovingAlongPath:
		return "moving_along_path"
	default:
		return "idle"
	}
}

// Movement is the per-entity movement intent. Target is meaningful for
// MovingTo, Path (head first) for MovingAlongPath.
type Movement struct {
	Phase  MovementPhase
	Target geom.Vec3
	Path   []geom.Vec3
}

func IdleMovement() Movement { return Movement{Phase: Idle} }

func MoveTo(target geom.Vec3) Movement {
	return Movement{Phase: MovingTo, Target: target}
}

// FollowPath copies waypoints so later edits by the caller do not leak in.
func FollowPath(waypoints []geom.Vec3) Movement {
	return Movement{Phase: MovingAlongPath, Path: slices.Clone(waypoints)}
}

// EqualMovement compares two movement values including their paths.
func EqualMovement(a, b Movement) bool {
	return a.Phase == b.Phase && a.Target == b.Target && slices.Equal(a.Path, b.Path)
}
