package combat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fixedRolls struct {
	rolls []float64
	i     int
}

func (f *fixedRolls) Float64() float64 {
	v := f.rolls[f.i%len(f.rolls)]
	f.i++
	return v
}

func TestEval(t *testing.T) {
	stats := StatMap{"AP": 20, "RES_FIRE": 0.25}
	tests := []struct {
		name string
		expr *Expr
		want float64
	}{
		{"nil", nil, 0},
		{"const", Const(7), 7},
		{"var", Var("AP"), 20},
		{"var lower case", Var("ap"), 20},
		{"missing var", Var("NOPE"), 0},
		{"add", Add(Var("AP"), Const(5)), 25},
		{"sub", Sub(Const(1), Var("RES_FIRE")), 0.75},
		{"mul", Mul(Const(3), Const(4)), 12},
		{"div", Div(Var("AP"), Const(4)), 5},
		{"div by zero", Div(Const(10), Const(0)), 0},
		{"pow", Pow(Const(2), Const(3)), 8},
		{"ln", Ln(Const(math.E)), 1},
		{"log10", Log10(Const(1000)), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Eval(tt.expr, stats), 1e-9)
		})
	}
}

func TestExprString(t *testing.T) {
	e := Add(Var("AP"), Ln(Const(2)))
	assert.Equal(t, "add(var(AP), ln(const(2)))", e.String())

	op, ok := ParseOp("log10")
	assert.True(t, ok)
	assert.Equal(t, OpLog10, op)
	_, ok = ParseOp("sqrt")
	assert.False(t, ok)
}

func TestHitChance(t *testing.T) {
	assert.Equal(t, 1.0, HitChance(Physical, StatMap{}, StatMap{}))
	assert.InDelta(t, 0.5, HitChance(Physical, StatMap{"AC": 50}, StatMap{"HV": 50}), 1e-9)
	assert.InDelta(t, 0.8, HitChance(Physical, StatMap{"AC": 500}, StatMap{}), 1e-9)
	assert.InDelta(t, 0.2, HitChance(Physical, StatMap{"AC": 1}, StatMap{"HV": 500}), 1e-9)
	assert.InDelta(t, 0.55, HitChance(Magical, StatMap{"LK": 10}, StatMap{"LK": 0}), 1e-9)
	// negative stats are floored before subtraction
	assert.InDelta(t, 0.5, HitChance(Physical, StatMap{"AC": -40}, StatMap{"HV": 0.0001}), 1e-3)
}

func TestResolve_Deterministic(t *testing.T) {
	atk := StatMap{"AC": 50, "LK": 10}
	def := StatMap{"HV": 50, "DP": 5}
	attack := Attack{Delivery: Physical, Base: Const(100)}

	normal := NewResolver(&fixedRolls{rolls: []float64{0.1, 0.10}}).Resolve(attack, atk, def)
	assert.Equal(t, Result{Amount: 95}, normal)

	crit := NewResolver(&fixedRolls{rolls: []float64{0.1, 0.05}}).Resolve(attack, atk, def)
	assert.Equal(t, Result{Amount: 145, Critical: true}, crit)
}

func TestResolve_Evaded(t *testing.T) {
	r := NewResolver(&fixedRolls{rolls: []float64{0.9}})
	got := r.Resolve(Attack{Base: Const(100)}, StatMap{"AC": 50}, StatMap{"HV": 50})
	assert.Equal(t, Result{Evaded: true}, got)
}

func TestResolve_ElementalAndMitigationFloor(t *testing.T) {
	atk := StatMap{"LK": 0}
	def := StatMap{"RES_FIRE": 0.5, "MD": 3}
	attack := Attack{Delivery: Magical, Base: Const(10), Elemental: Const(9), Element: "fire"}

	got := NewResolver(&fixedRolls{rolls: []float64{0, 0.99}}).Resolve(attack, atk, def)
	// 10 + 9*0.5 - 3 = 11.5
	assert.Equal(t, 11, got.Amount)

	weak := Attack{Delivery: Magical, Base: Const(1)}
	got = NewResolver(&fixedRolls{rolls: []float64{0, 0.99}}).Resolve(weak, atk, def)
	assert.Zero(t, got.Amount, "mitigation never drives damage negative")
}

func TestRawDamageAndRestore(t *testing.T) {
	attack := Attack{Base: Const(10), Elemental: Const(10), Element: "water"}
	got := RawDamage(attack, StatMap{}, StatMap{"RES_WATER": 0.5, "DP": 100})
	assert.Equal(t, Result{Amount: 15}, got)

	assert.Equal(t, 12, Restore(Mul(Var("MAP"), Const(1.5)), StatMap{"MAP": 8.4}))
	assert.Zero(t, Restore(Const(-4), StatMap{}))
	assert.Zero(t, Restore(Ln(Const(0)), StatMap{}), "-Inf floors to zero")
}
