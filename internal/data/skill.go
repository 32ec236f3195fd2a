package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/simcore/internal/combat"
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/geom"
)

// SkillKind selects how a skill is delivered.
type SkillKind string

const (
	SkillProjectile SkillKind = "projectile" // travels to the target, may chain
	SkillInstant    SkillKind = "instant"    // resolves on the target immediately
	SkillSelf       SkillKind = "self"       // raw damage to the caster
	SkillRestore    SkillKind = "restore"    // heals the target (or caster)
	SkillOrbital    SkillKind = "orbital"    // ring of instances around the caster
	SkillCharge     SkillKind = "charge"     // wind-up, fires Then on completion
	SkillBuff       SkillKind = "buff"       // timed stat modifier
)

// Skill is a fully built skill definition.
type Skill struct {
	ID       int32
	Name     string
	Kind     SkillKind
	Delivery combat.Delivery
	Element  string
	MPCost   float64
	Range    float64

	Base      *combat.Expr
	Elemental *combat.Expr
	Restore   *combat.Expr

	Projectile component.Delivery
	Orbital    component.OrbitalConfig
	Duration   time.Duration // orbital, charge and buff lifetime
	Then       int32         // skill fired when a charge completes

	Modifier component.Modifier // buff; Until is filled in at cast time
}

// Attack returns the combat side of the skill.
func (s *Skill) Attack() combat.Attack {
	return combat.Attack{Delivery: s.Delivery, Base: s.Base, Elemental: s.Elemental, Element: s.Element}
}

// --- YAML loading ---

type skillEntry struct {
	ID        int32    `yaml:"id"`
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	Delivery  string   `yaml:"delivery"`
	Element   string   `yaml:"element"`
	MPCost    float64  `yaml:"mp_cost"`
	Range     float64  `yaml:"range"`
	Base      Formula  `yaml:"base"`
	Elemental Formula  `yaml:"elemental"`
	Restore   Formula  `yaml:"restore"`
	Duration  float64  `yaml:"duration"` // seconds
	Then      int32    `yaml:"then"`
	Speed     float64  `yaml:"speed"`
	Chain     *struct {
		Jumps int     `yaml:"jumps"`
		Range float64 `yaml:"range"`
	} `yaml:"chain"`
	Orbital *struct {
		StartSpeed float64    `yaml:"start_speed"`
		EndSpeed   float64    `yaml:"end_speed"`
		Count      int        `yaml:"count"`
		Radius     float64    `yaml:"radius"`
		Scale      [2]float64 `yaml:"scale"`
		Axis       [3]float64 `yaml:"axis"`
		Offset     [3]float64 `yaml:"offset"`
	} `yaml:"orbital"`
	Modifier *struct {
		Stat string  `yaml:"stat"`
		Add  float64 `yaml:"add"`
	} `yaml:"modifier"`
}

type skillListFile struct {
	Skills []skillEntry `yaml:"skills"`
}

// LoadSkills reads skill definitions from YAML and builds their formulas.
func LoadSkills(path string, lib Formulas) (map[int32]*Skill, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skills: %w", err)
	}
	return parseSkills(raw, lib)
}

func parseSkills(raw []byte, lib Formulas) (map[int32]*Skill, error) {
	var f skillListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse skills: %w", err)
	}
	out := make(map[int32]*Skill, len(f.Skills))
	for i := range f.Skills {
		s, err := f.Skills[i].build(lib)
		if err != nil {
			return nil, fmt.Errorf("skill %d (%s): %w", f.Skills[i].ID, f.Skills[i].Name, err)
		}
		if _, dup := out[s.ID]; dup {
			return nil, fmt.Errorf("skill %d: duplicate id", s.ID)
		}
		out[s.ID] = s
	}
	return out, nil
}

func (e *skillEntry) build(lib Formulas) (*Skill, error) {
	s := &Skill{
		ID:       e.ID,
		Name:     e.Name,
		Kind:     SkillKind(e.Kind),
		Delivery: combat.ParseDelivery(e.Delivery),
		Element:  e.Element,
		MPCost:   e.MPCost,
		Range:    e.Range,
		Duration: time.Duration(e.Duration * float64(time.Second)),
		Then:     e.Then,
		Projectile: component.Delivery{
			Speed: e.Speed,
		},
	}
	if s.Kind == "" {
		s.Kind = SkillInstant
	}
	var err error
	if s.Base, err = e.Base.Build(lib); err != nil {
		return nil, fmt.Errorf("base: %w", err)
	}
	if s.Elemental, err = e.Elemental.Build(lib); err != nil {
		return nil, fmt.Errorf("elemental: %w", err)
	}
	if s.Restore, err = e.Restore.Build(lib); err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	if e.Chain != nil {
		s.Projectile.Chained = true
		s.Projectile.JumpsLeft = e.Chain.Jumps
		s.Projectile.ChainRange = e.Chain.Range
	}
	if o := e.Orbital; o != nil {
		s.Orbital = component.OrbitalConfig{
			StartSpeed: o.StartSpeed,
			EndSpeed:   o.EndSpeed,
			Count:      o.Count,
			Radius:     o.Radius,
			Scale:      geom.Vec2(o.Scale),
			Axis:       geom.Vec3(o.Axis),
			Offset:     geom.Vec3(o.Offset),
			Element:    e.Element,
		}
	}
	if m := e.Modifier; m != nil {
		s.Modifier = component.Modifier{Stat: component.StatKey(m.Stat), Add: m.Add, Source: e.ID}
	}
	return s, nil
}
