package component

import "github.com/l1jgo/simcore/internal/geom"

// Position places an entity inside a scenario.
type Position struct {
	Scenario ScenarioID
	Point    geom.Vec3
}

// Collider overrides the default collision shape for one entity.
// Zero fields fall back to the configured defaults.
type Collider struct {
	Radius     float64 // entity-entity proximity radius
	HalfExtent float64 // half side of the bounding square tested against map geometry
}

// MapObject is one polygon of a scene's object groups, in ground-plane
// coordinates.
type MapObject struct {
	Group string
	ID    int
	Shape geom.Polygon
}
