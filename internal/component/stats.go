package component

import (
	"maps"
	"strings"
	"time"
)

// Well-known stat names. Formulas may reference any other name as well.
const (
	StatAP        = "AP"  // physical attack power
	StatAC        = "AC"  // accuracy
	StatHV        = "HV"  // evasion
	StatMAP       = "MAP" // magic attack power
	StatMD        = "MD"  // magic defence
	StatDP        = "DP"  // physical defence
	StatLK        = "LK"  // luck
	StatHP        = "HP"
	StatMaxHP     = "MAXHP"
	StatMP        = "MP"
	StatMaxMP     = "MAXMP"
	StatMoveSpeed = "SPD"
)

// StatKey normalises a stat name as written in a definition file.
func StatKey(name string) string { return strings.ToUpper(name) }

// AttrKey is the stat name of the caster's attribute for element.
func AttrKey(element string) string { return "ATTR_" + strings.ToUpper(element) }

// ResKey is the stat name of the resistance to element.
func ResKey(element string) string { return "RES_" + strings.ToUpper(element) }

// StatBlock maps stat names to values. Absent stats read as 0.
type StatBlock map[string]float64

// Stat implements combat.Stats.
func (s StatBlock) Stat(name string) float64 { return s[name] }

// Has reports whether name is present, even with a zero value.
func (s StatBlock) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s StatBlock) Clone() StatBlock { return maps.Clone(s) }

// Equipment lists the item IDs an entity has equipped.
type Equipment struct {
	Items []int32
}

// Modifier is an additive stat change from an active effect. Until is the
// world time at which it lapses; zero means it never lapses.
type Modifier struct {
	Stat   string
	Add    float64
	Source int32 // skill that applied it
	Until  time.Duration
}

// Resources are the mutable pools combat draws on.
type Resources struct {
	HP    float64
	MaxHP float64
	MP    float64
	MaxMP float64
}
