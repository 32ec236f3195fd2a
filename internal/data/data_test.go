package data

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/simcore/internal/combat"
	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/geom"
)

type formulaLib map[string]*combat.Expr

func (l formulaLib) Formula(name string) (*combat.Expr, bool) {
	e, ok := l[name]
	return e, ok
}

func TestParseFormula(t *testing.T) {
	lib := formulaLib{"double_ap": combat.Mul(combat.Var("AP"), combat.Const(2))}
	stats := combat.StatMap{"AP": 10, "MAP": 100}

	tests := []struct {
		src  string
		want float64
	}{
		{"42", 42},
		{"ap", 10},
		{"{add: [AP, 5]}", 15},
		{"{div: [AP, 0]}", 0},
		{"{pow: [2, 3]}", 8},
		{"{log10: MAP}", 2},
		{"{sub: [{formula: double_ap}, 1]}", 19},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := ParseFormula(tt.src, lib)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, combat.Eval(e, stats), 1e-9)
		})
	}
}

func TestParseFormula_Errors(t *testing.T) {
	for _, src := range []string{
		"{sqrt: AP}",
		"{add: [1]}",
		"{add: 1, sub: 2}",
		"{formula: missing}",
		"[1, 2]",
	} {
		_, err := ParseFormula(src, formulaLib{})
		assert.Error(t, err, src)
	}
	_, err := ParseFormula("{formula: x}", nil)
	assert.Error(t, err)
}

const skillsYAML = `
skills:
  - id: 1
    name: fire bolt
    kind: projectile
    delivery: magical
    element: fire
    speed: 120
    base: {mul: [MAP, 2]}
    elemental: {formula: fire}
    chain: {jumps: 2, range: 150}
  - id: 2
    name: halo
    kind: orbital
    duration: 3
    orbital: {start_speed: 1, end_speed: 4, count: 3, radius: 20, axis: [1, 0, 0]}
  - id: 3
    name: haste
    kind: buff
    duration: 10
    modifier: {stat: spd, add: 40}
`

func TestParseSkills(t *testing.T) {
	skills, err := parseSkills([]byte(skillsYAML), formulaLib{"fire": combat.Var("ATTR_FIRE")})
	require.NoError(t, err)
	require.Len(t, skills, 3)

	bolt := skills[1]
	assert.Equal(t, SkillProjectile, bolt.Kind)
	assert.Equal(t, combat.Magical, bolt.Delivery)
	assert.Equal(t, component.Delivery{Speed: 120, Chained: true, JumpsLeft: 2, ChainRange: 150}, bolt.Projectile)
	assert.Equal(t, 40.0, combat.Eval(bolt.Attack().Base, combat.StatMap{"MAP": 20}))
	assert.Equal(t, "fire", bolt.Attack().Element)

	halo := skills[2]
	assert.Equal(t, 3*time.Second, halo.Duration)
	assert.Equal(t, 3, halo.Orbital.Count)
	assert.Equal(t, geom.Vec3{1, 0, 0}, halo.Orbital.Axis)
	assert.Nil(t, halo.Base)

	assert.Equal(t, component.Modifier{Stat: "SPD", Add: 40, Source: 3}, skills[3].Modifier)

	_, err = parseSkills([]byte("skills: [{id: 1}, {id: 1}]"), nil)
	assert.ErrorContains(t, err, "duplicate")
	_, err = parseSkills([]byte("skills: [{id: 9, base: {formula: nope}}]"), formulaLib{})
	assert.ErrorContains(t, err, "skill 9")
}

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	skills := filepath.Join(dir, "skills.yaml")
	items := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(skills, []byte(skillsYAML), 0o644))
	require.NoError(t, os.WriteFile(items, []byte(`
items:
  - id: 10
    name: ring
    category: equipment
    stats: {ap: 3}
  - id: 11
    name: potion
    restore: {add: [20, {mul: [MAXHP, 0.1]}]}
  - id: 12
    name: scroll
    skill: 1
`), 0o644))

	defs, err := Load(skills, items, formulaLib{"fire": combat.Const(1)})
	require.NoError(t, err)

	s, ok := defs.Skill(1)
	require.True(t, ok)
	assert.Equal(t, "fire bolt", s.Name)
	_, ok = defs.Skill(404)
	assert.False(t, ok)

	bonus, ok := defs.ItemStats(10)
	require.True(t, ok)
	assert.Equal(t, component.StatBlock{"AP": 3}, bonus)
	_, ok = defs.ItemStats(11)
	assert.False(t, ok, "consumables grant no equipment bonus")

	potion, ok := defs.Item(11)
	require.True(t, ok)
	assert.Equal(t, "hp", potion.Pool)
	assert.Equal(t, 30, combat.Restore(potion.Restore, combat.StatMap{"MAXHP": 100}))

	n, m := defs.Counts()
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, m)

	_, err = Load(filepath.Join(dir, "nope.yaml"), items, nil)
	assert.ErrorContains(t, err, "read skills")
}

func TestParseScenes(t *testing.T) {
	scenes, err := parseScenes([]byte(`
scenes:
  - id: 2
    name: crypt
    dim: 3d
    object_groups:
      - name: walls
        objects:
          - {id: 1, rect: {x: 0, y: 0, w: 10, h: 5}}
          - {id: 2, polygon: [[0, 0], [4, 0], [0, 4]]}
    spawns:
      - {kind: player, at: [1, 0, 2], hp: 50, stats: {spd: 60}}
      - {at: [9, 0, 9], path: [[9, 0, 20], [20, 0, 20]]}
`), "")
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	sc := scenes[0]
	assert.Equal(t, component.ScenarioID(2), sc.ID)
	assert.Equal(t, geom.Dim3, sc.Dim)

	objs := sc.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "walls", objs[0].Group)
	assert.Equal(t, geom.Vec2{10, 5}, objs[0].Shape[2])

	require.Len(t, sc.Spawns, 2)
	assert.Equal(t, component.KindPlayer, sc.Spawns[0].Kind)
	assert.Equal(t, 60.0, sc.Spawns[0].Stats.Stat("SPD"))
	assert.Len(t, sc.Spawns[1].Path, 2)

	_, err = parseScenes([]byte(`scenes: [{name: bad, object_groups: [{name: g, objects: [{id: 1, polygon: [[0, 0]]}]}]}]`), "")
	assert.ErrorContains(t, err, "at least 3 points")

	_, err = parseScenes([]byte(`scenes: [{name: bad, object_groups: [{name: g, objects: [{id: 1, polygon: [[0, 0], [100, 0], [100, 40], [40, 40], [40, 100], [0, 100]]}]}]}]`), "")
	assert.ErrorContains(t, err, "not convex")
}

func TestTileGrid_Obstacles(t *testing.T) {
	// 3 passable, 0 blocked, 0x83 blocked by the impassable bit
	grid, err := parseTileGrid(strings.NewReader(`# 4x2
3,0,0,3
131,3,3,0
`), 4, 2)
	require.NoError(t, err)
	assert.True(t, grid.Blocked(1, 0))
	assert.True(t, grid.Blocked(0, 1))
	assert.False(t, grid.Blocked(3, 0))
	assert.True(t, grid.Blocked(-1, 0), "outside the grid")

	obs := grid.Obstacles(geom.Vec2{100, 0}, 10, 5)
	require.Len(t, obs, 3, "row 0 run merged into one rectangle")
	assert.Equal(t, 5, obs[0].ID)
	assert.Equal(t, geom.Polygon{{110, 0}, {130, 0}, {130, 10}, {110, 10}}, obs[0].Shape)
	assert.Equal(t, geom.Vec2{100, 10}, obs[1].Shape[0])
	assert.Equal(t, geom.Vec2{140, 20}, obs[2].Shape[2])
}

func TestLoadScenes_TileGroup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yard.txt"), []byte("0,3\n3,3\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenes.yaml"), []byte(`
scenes:
  - id: 1
    name: yard
    object_groups:
      - name: terrain
        objects:
          - {id: 1, rect: {x: -5, y: -5, w: 1, h: 1}}
        tiles: {file: yard.txt, width: 2, height: 2, tile_size: 32}
`), 0o644))

	scenes, err := LoadScenes(filepath.Join(dir, "scenes.yaml"))
	require.NoError(t, err)
	objs := scenes[0].Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, 2, objs[1].ID)
	assert.Equal(t, geom.Vec2{32, 32}, objs[1].Shape[2])

	_, err = parseScenes([]byte(`scenes: [{name: x, object_groups: [{name: g, tiles: {file: missing.txt, width: 1, height: 1}}]}]`), dir)
	assert.ErrorContains(t, err, "read tiles")
}
