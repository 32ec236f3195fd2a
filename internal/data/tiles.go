package data

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/l1jgo/simcore/internal/geom"
)

// Tile flag bits. A tile with neither passable bit, or with the impassable
// bit, blocks movement.
const (
	tilePassableEast  byte = 0x01
	tilePassableNorth byte = 0x02
	tileImpassable    byte = 0x80
)

// TileGrid is a passability grid read from a CSV tile file: each line is a
// row (Y), each comma-separated byte a column (X).
type TileGrid struct {
	Width  int
	Height int
	tiles  []byte // flat array [x * Height + y], row-major by X
}

// LoadTileGrid reads a width×height tile file. Missing cells read as 0.
func LoadTileGrid(path string, width, height int) (*TileGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read tiles %s: %w", path, err)
	}
	defer f.Close()
	return parseTileGrid(f, width, height)
}

func parseTileGrid(r io.Reader, width, height int) (*TileGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("tile grid size %dx%d", width, height)
	}
	g := &TileGrid{Width: width, Height: height, tiles: make([]byte, width*height)}

	scanner := bufio.NewScanner(r)
	// wide maps exceed the default token size
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	y := 0
	for scanner.Scan() && y < height {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		x := 0
		for _, tok := range strings.Split(line, ",") {
			if x >= width {
				break
			}
			val, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 16)
			if err != nil {
				val = 0
			}
			g.tiles[x*height+y] = byte(val)
			x++
		}
		y++
	}
	return g, scanner.Err()
}

// At returns the tile byte at (x, y), or 0 if out of bounds.
func (g *TileGrid) At(x, y int) byte {
	if x < 0 || x >= g.Width || y < 0 || y >= g.Height {
		return 0
	}
	return g.tiles[x*g.Height+y]
}

// Blocked reports whether the tile stops movement. Out of bounds is blocked.
func (g *TileGrid) Blocked(x, y int) bool {
	t := g.At(x, y)
	return t&tileImpassable != 0 || t&(tilePassableEast|tilePassableNorth) == 0
}

// Obstacles turns blocked tiles into rectangles in world units, merging each
// row's horizontal runs. IDs count up from firstID.
func (g *TileGrid) Obstacles(origin geom.Vec2, tileSize float64, firstID int) []SceneObject {
	var out []SceneObject
	id := firstID
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; {
			if !g.Blocked(x, y) {
				x++
				continue
			}
			start := x
			for x < g.Width && g.Blocked(x, y) {
				x++
			}
			lo := geom.Vec2{origin[0] + float64(start)*tileSize, origin[1] + float64(y)*tileSize}
			hi := geom.Vec2{origin[0] + float64(x)*tileSize, lo[1] + tileSize}
			out = append(out, SceneObject{
				ID:    id,
				Shape: geom.Polygon{lo, {hi[0], lo[1]}, hi, {lo[0], hi[1]}},
			})
			id++
		}
	}
	return out
}
