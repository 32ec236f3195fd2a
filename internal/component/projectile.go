package component

import "github.com/l1jgo/simcore/internal/core/ecs"

// Delivery configures how a projectile travels and whether it chains.
type Delivery struct {
	Speed      float64
	Chained    bool
	JumpsLeft  int
	ChainRange float64
}

// LiveProjectile is an in-flight projectile heading for Target.
type LiveProjectile struct {
	Caster   ecs.EntityID
	Target   ecs.EntityID
	Skill    int32
	Delivery Delivery
}
