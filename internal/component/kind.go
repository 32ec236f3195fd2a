// Package component holds the pure-data records stored in the world tables.
// No behaviour lives here; systems and the world writer own all mutation.
package component

// ScenarioID names an isolated simulation sub-region (one map instance).
type ScenarioID uint32

// Kind is the archetype an entity was spawned as.
type Kind uint8

const (
	KindUnit Kind = iota
	KindPlayer
	KindProjectile
	KindVisual
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindProjectile:
		return "projectile"
	case KindVisual:
		return "visual"
	default:
		return "unit"
	}
}

// ParseKind is the inverse of String; unknown names are units.
func ParseKind(s string) Kind {
	switch s {
	case "player":
		return KindPlayer
	case "projectile":
		return KindProjectile
	case "visual":
		return KindVisual
	default:
		return KindUnit
	}
}

// Controlled marks the entity driven by local input rather than the
// automatic movement resolver.
type Controlled struct {
	Source string // input source name, e.g. "local"
}
