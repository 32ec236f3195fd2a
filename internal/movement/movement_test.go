package movement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/geom"
)

func TestTransition(t *testing.T) {
	next, err := Transition(component.Idle, EventMove)
	require.NoError(t, err)
	assert.Equal(t, component.MovingTo, next)

	next, err = Transition(component.MovingAlongPath, EventWaypoint)
	require.NoError(t, err, "self transition is fine")
	assert.Equal(t, component.MovingAlongPath, next)

	_, err = Transition(component.Idle, EventArrive)
	assert.Error(t, err)
	assert.False(t, Can(component.Idle, EventWaypoint))
	assert.True(t, Can(component.MovingTo, EventStop))
	assert.False(t, Can(component.MovingTo, EventWaypoint))
}

func TestEventFor(t *testing.T) {
	assert.Equal(t, EventMove, EventFor(component.MoveTo(geom.Vec3{1, 0, 0})))
	assert.Equal(t, EventFollow, EventFor(component.FollowPath([]geom.Vec3{{1, 0, 0}})))
	assert.Equal(t, EventStop, EventFor(component.IdleMovement()))
	for _, m := range []component.Movement{component.MoveTo(geom.Vec3{}), component.FollowPath(nil), component.IdleMovement()} {
		for _, from := range []component.MovementPhase{component.Idle, component.MovingTo, component.MovingAlongPath} {
			next, err := Transition(from, EventFor(m))
			require.NoError(t, err)
			assert.Equal(t, m.Phase, next)
		}
	}
}

func TestStep_Arrival(t *testing.T) {
	tests := []struct {
		name    string
		dist    float64
		arrived bool
	}{
		{"inside threshold", 1.9, true},
		{"outside threshold", 2.1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Step(Input{
				Dim:          geom.Dim2,
				Thresholds:   Planar,
				Position:     geom.Vec3{0, 0, 0},
				Movement:     component.MoveTo(geom.Vec3{tt.dist, 0, 0}),
				Speed:        3,
				LastVelocity: geom.Vec3{3, 0, 0},
			})
			assert.Equal(t, tt.arrived, out.Arrived)
			if tt.arrived {
				assert.Equal(t, component.Idle, out.Next.Phase)
				assert.True(t, out.PublishVelocity)
				assert.Equal(t, geom.Vec3{}, out.Velocity)
				return
			}
			assert.Equal(t, component.MovingTo, out.Next.Phase)
			assert.InDelta(t, 3.0, out.Velocity[0], 1e-9)
			assert.False(t, out.PublishVelocity, "unchanged velocity is not republished")
		})
	}
}

func TestStep_SlidesAlongMTV(t *testing.T) {
	in := Input{
		Dim:        geom.Dim2,
		Thresholds: Planar,
		Movement:   component.MoveTo(geom.Vec3{10, 10, 0}),
		Speed:      1,
		MTV:        geom.Vec3{0, -0.5, 0},
	}
	out := Step(in)
	require.True(t, out.PublishVelocity)
	assert.InDelta(t, 0.0, out.Velocity[1], 1e-9, "component into the wall removed")
	assert.Greater(t, out.Velocity[0], 0.0, "tangential motion kept")

	in.MTV = geom.Vec3{1, 1, 0}
	out = Step(in)
	assert.InDelta(t, 0.0, out.Velocity.Len(), 1e-9, "head-on obstacle stops the entity")
}

func TestStep_Spatial(t *testing.T) {
	out := Step(Input{
		Dim:        geom.Dim3,
		Thresholds: Spatial,
		Position:   geom.Vec3{0, 50, 0},
		Movement:   component.MoveTo(geom.Vec3{0.4, 0, 0}),
		Speed:      1,
	})
	assert.True(t, out.Arrived, "height difference is ignored")

	out = Step(Input{
		Dim:        geom.Dim3,
		Thresholds: Spatial,
		Movement:   component.MoveTo(geom.Vec3{0, 9, 5}),
		Speed:      2,
	})
	assert.InDelta(t, 0.0, out.Velocity[1], 1e-9)
	assert.InDelta(t, 2.0, out.Velocity[2], 1e-9)
}

func TestStep_Path(t *testing.T) {
	path := []geom.Vec3{{1, 0, 0}, {20, 0, 0}}
	out := Step(Input{Dim: geom.Dim2, Thresholds: Planar, Movement: component.FollowPath(path), Speed: 1})
	require.True(t, out.WaypointReached)
	assert.Equal(t, []geom.Vec3{{20, 0, 0}}, out.Remaining)
	assert.Equal(t, component.MovingAlongPath, out.Next.Phase)
	assert.False(t, out.PublishVelocity)

	out = Step(Input{Dim: geom.Dim2, Thresholds: Planar, Movement: out.Next, Speed: 1})
	assert.False(t, out.WaypointReached)
	assert.InDelta(t, 1.0, out.Velocity[0], 1e-9)

	out = Step(Input{Dim: geom.Dim2, Thresholds: Planar, Movement: component.FollowPath([]geom.Vec3{{0.5, 0, 0}})})
	assert.True(t, out.WaypointReached)
	assert.Empty(t, out.Remaining)
	assert.Equal(t, component.Idle, out.Next.Phase)

	out = Step(Input{Dim: geom.Dim2, Thresholds: Planar, Movement: component.FollowPath(nil)})
	assert.True(t, out.Arrived)
}

func TestStep_IdleZeroesOnce(t *testing.T) {
	out := Step(Input{Movement: component.IdleMovement(), LastVelocity: geom.Vec3{1, 0, 0}})
	assert.True(t, out.PublishVelocity)
	assert.Equal(t, geom.Vec3{}, out.Velocity)

	out = Step(Input{Movement: component.IdleMovement()})
	assert.False(t, out.PublishVelocity)
}
