package world

import (
	"math"
	"sort"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/core/ecs"
	"github.com/l1jgo/simcore/internal/geom"
)

// DefaultCellSize is chosen so that a 3x3 neighbourhood of cells fully covers
// the default collision radius.
const DefaultCellSize = 64.0

// maxCell bounds cell coordinates to the range where float64 still holds
// every integer exactly.
const maxCell = 1 << 53

// Cell is an integer grid coordinate on the ground plane.
type Cell struct {
	X, Y int64
}

// GetGridCell floor-divides the ground coordinates of pos by cellSize.
// Negative coordinates round toward negative infinity. Coordinates past
// ±maxCell cells clamp to the edge; NaN maps to 0.
func GetGridCell(cellSize float64, pos geom.Vec3, dim geom.Dim) Cell {
	g := geom.Ground(pos, dim)
	return Cell{X: cellIndex(g[0], cellSize), Y: cellIndex(g[1], cellSize)}
}

func cellIndex(v, cellSize float64) int64 {
	f := math.Floor(v / cellSize)
	switch {
	case math.IsNaN(f):
		return 0
	case f >= maxCell:
		return maxCell
	case f <= -maxCell:
		return -maxCell
	}
	return int64(f)
}

// Bounds returns the half-open ground rectangle [min, max) covered by c.
func (c Cell) Bounds(cellSize float64) (min, max geom.Vec2) {
	min = geom.Vec2{float64(c.X) * cellSize, float64(c.Y) * cellSize}
	max = geom.Vec2{min[0] + cellSize, min[1] + cellSize}
	return min, max
}

// Grid is a uniform-cell index over one scenario's positions. It is rebuilt
// from the snapshot every frame and never updated incrementally.
// Accessed only from the simulation goroutine, no locks.
type Grid struct {
	cellSize float64
	dim      geom.Dim
	cells    map[Cell][]ecs.EntityID
	members  int
}

func NewGrid(cellSize float64, dim geom.Dim) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{cellSize: cellSize, dim: dim, cells: make(map[Cell][]ecs.EntityID)}
}

// Rebuild clears the grid and inserts every position in the snapshot.
// Cell contents are kept in ascending entity order.
func (g *Grid) Rebuild(positions map[ecs.EntityID]component.Position) {
	for k := range g.cells {
		delete(g.cells, k)
	}
	g.members = 0
	for id, p := range positions {
		c := GetGridCell(g.cellSize, p.Point, g.dim)
		g.cells[c] = append(g.cells[c], id)
		g.members++
	}
	for _, ids := range g.cells {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
}

// CellOf returns the cell pos falls in.
func (g *Grid) CellOf(pos geom.Vec3) Cell {
	return GetGridCell(g.cellSize, pos, g.dim)
}

// Nearby returns all entities in the 3x3 neighbourhood of cells around pos.
// Caller does fine-grained distance filtering.
func (g *Grid) Nearby(pos geom.Vec3) []ecs.EntityID {
	return g.ring(g.CellOf(pos), 1)
}

// Within returns every entity whose cell could hold a point closer than
// radius to pos: the square of ceil(radius/cellSize) rings around pos's
// cell, never less than the 3x3 neighbourhood. Caller does fine-grained
// distance filtering.
func (g *Grid) Within(pos geom.Vec3, radius float64) []ecs.EntityID {
	r := int64(1)
	if n := math.Ceil(radius / g.cellSize); n > 1 {
		r = int64(min(n, maxCell))
	}
	return g.ring(g.CellOf(pos), r)
}

func (g *Grid) ring(c Cell, r int64) []ecs.EntityID {
	var result []ecs.EntityID
	// A ring wider than the occupied cells is cheaper to answer by scanning
	// the occupied cells.
	if side := 2*r + 1; r > 1 && (r >= 1<<15 || side*side > int64(len(g.cells))) {
		for cell, ids := range g.cells {
			if abs64(cell.X-c.X) <= r && abs64(cell.Y-c.Y) <= r {
				result = append(result, ids...)
			}
		}
		sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
		return result
	}
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			result = append(result, g.cells[Cell{X: c.X + dx, Y: c.Y + dy}]...)
		}
	}
	return result
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// In returns the entities in exactly cell c.
func (g *Grid) In(c Cell) []ecs.EntityID { return g.cells[c] }

// Len returns how many entities the last Rebuild inserted.
func (g *Grid) Len() int { return g.members }

// CellSize returns the cell edge length.
func (g *Grid) CellSize() float64 { return g.cellSize }
