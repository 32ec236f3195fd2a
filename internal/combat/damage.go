package combat

import (
	"math"

	"github.com/l1jgo/simcore/internal/component"
)

// Delivery selects which stats drive hit chance and mitigation.
type Delivery uint8

const (
	Physical Delivery = iota // AC vs HV, mitigated by DP
	Magical                  // LK vs LK, mitigated by MD
)

func (d Delivery) String() string {
	if d == Magical {
		return "magical"
	}
	return "physical"
}

// ParseDelivery accepts "physical"/"magical"; anything else is Physical.
func ParseDelivery(s string) Delivery {
	if s == "magical" || s == "magic" {
		return Magical
	}
	return Physical
}

const (
	baseHitChance = 0.5
	hitChanceDiv  = 200.0
	minHitChance  = 0.20
	maxHitChance  = 0.80
	critPerLuck   = 0.01
	critBonus     = 0.5
)

// Attack is the formula side of a skill.
type Attack struct {
	Delivery  Delivery
	Base      *Expr
	Elemental *Expr  // optional
	Element   string // resistance looked up as RES_<ELEMENT>
}

// Result is the outcome of one resolution.
type Result struct {
	Amount   int
	Critical bool
	Evaded   bool
}

// Roller produces uniform values in [0,1). *math/rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Resolver runs the attack pipeline. Rolls come from Roll so tests can force
// outcomes.
type Resolver struct {
	Roll Roller
}

func NewResolver(r Roller) *Resolver { return &Resolver{Roll: r} }

// HitChance is 0.5 + (atk - def)/200 clamped to [0.2, 0.8], where atk/def are
// AC/HV (physical) or LK/LK (magical), each floored at 0. Two exact zeros
// always hit.
func HitChance(d Delivery, attacker, defender Stats) float64 {
	atkStat, defStat := component.StatAC, component.StatHV
	if d == Magical {
		atkStat, defStat = component.StatLK, component.StatLK
	}
	atk := attacker.Stat(atkStat)
	def := defender.Stat(defStat)
	if atk == 0 && def == 0 {
		return 1.0
	}
	chance := baseHitChance + (math.Max(atk, 0)-math.Max(def, 0))/hitChanceDiv
	return math.Min(math.Max(chance, minHitChance), maxHitChance)
}

// Resolve runs hit, formula, crit, resistance and mitigation in that order.
// The first roll decides the hit; the second, taken only on a hit, decides
// the critical. Truncation happens once, at the end.
func (r *Resolver) Resolve(a Attack, attacker, defender Stats) Result {
	chance := HitChance(a.Delivery, attacker, defender)
	if r.Roll.Float64() > chance {
		return Result{Evaded: true}
	}

	base, elemental, res := magnitudes(a, attacker, defender)

	var bonus float64
	crit := r.Roll.Float64() < attacker.Stat(component.StatLK)*critPerLuck
	if crit {
		bonus = critBonus * (base + elemental)
	}

	total := base + elemental*(1-res) + bonus
	total -= mitigation(a.Delivery, defender)
	return Result{Amount: floorAmount(total), Critical: crit}
}

// RawDamage is the self-inflicted variant: it always lands, never crits and
// skips the defender's flat mitigation, but still honours resistance.
func RawDamage(a Attack, source, target Stats) Result {
	base, elemental, res := magnitudes(a, source, target)
	return Result{Amount: floorAmount(base + elemental*(1-res))}
}

// Restore evaluates a restoration formula against the caster's stats.
func Restore(formula *Expr, caster Stats) int {
	return floorAmount(Eval(formula, caster))
}

func magnitudes(a Attack, attacker, defender Stats) (base, elemental, res float64) {
	base = Eval(a.Base, attacker)
	if a.Elemental != nil {
		elemental = Eval(a.Elemental, attacker)
		if a.Element != "" {
			res = defender.Stat(component.ResKey(a.Element))
		}
	}
	return base, elemental, res
}

func mitigation(d Delivery, defender Stats) float64 {
	if d == Magical {
		return defender.Stat(component.StatMD)
	}
	return defender.Stat(component.StatDP)
}

func floorAmount(v float64) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if math.IsInf(v, 1) {
		return math.MaxInt32
	}
	return int(math.Floor(v))
}
