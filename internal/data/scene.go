package data

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/simcore/internal/component"
	"github.com/l1jgo/simcore/internal/geom"
)

// Scene is one scenario's static geometry and its initial population.
type Scene struct {
	ID     component.ScenarioID
	Name   string
	Dim    geom.Dim
	Groups []ObjectGroup
	Spawns []Spawn
}

// ObjectGroup is a named layer of obstacle polygons.
type ObjectGroup struct {
	Name    string
	Objects []SceneObject
}

// SceneObject is one obstacle polygon in ground-plane coordinates.
type SceneObject struct {
	ID    int
	Shape geom.Polygon
}

// Spawn places one entity when the scene is loaded.
type Spawn struct {
	Kind      component.Kind
	At        geom.Vec3
	Stats     component.StatBlock
	HP, MP    float64
	Equipment []int32
	Path      []geom.Vec3 // initial waypoints, empty means idle
	Radius    float64     // collider override, 0 uses the default
}

// Objects flattens every group into map objects for the collision detector.
func (s *Scene) Objects() []component.MapObject {
	var out []component.MapObject
	for _, g := range s.Groups {
		for _, o := range g.Objects {
			out = append(out, component.MapObject{Group: g.Name, ID: o.ID, Shape: o.Shape})
		}
	}
	return out
}

// --- YAML loading ---

type sceneObjectEntry struct {
	ID      int          `yaml:"id"`
	Polygon [][2]float64 `yaml:"polygon"`
	Rect    *struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
		W float64 `yaml:"w"`
		H float64 `yaml:"h"`
	} `yaml:"rect"`
}

// tileEntry imports a tile passability file as obstacle rectangles. File is
// relative to the scenes file.
type tileEntry struct {
	File     string     `yaml:"file"`
	Width    int        `yaml:"width"`
	Height   int        `yaml:"height"`
	TileSize float64    `yaml:"tile_size"`
	Origin   [2]float64 `yaml:"origin"`
}

type spawnEntry struct {
	Kind      string             `yaml:"kind"`
	At        [3]float64         `yaml:"at"`
	Stats     map[string]float64 `yaml:"stats"`
	HP        float64            `yaml:"hp"`
	MP        float64            `yaml:"mp"`
	Equipment []int32            `yaml:"equipment"`
	Path      [][3]float64       `yaml:"path"`
	Radius    float64            `yaml:"radius"`
}

type sceneEntry struct {
	ID           uint32 `yaml:"id"`
	Name         string `yaml:"name"`
	Dim          string `yaml:"dim"`
	ObjectGroups []struct {
		Name    string             `yaml:"name"`
		Objects []sceneObjectEntry `yaml:"objects"`
		Tiles   *tileEntry         `yaml:"tiles"`
	} `yaml:"object_groups"`
	Spawns []spawnEntry `yaml:"spawns"`
}

type sceneListFile struct {
	Scenes []sceneEntry `yaml:"scenes"`
}

// LoadScenes reads scene definitions from YAML.
func LoadScenes(path string) ([]*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenes %s: %w", path, err)
	}
	return parseScenes(raw, filepath.Dir(path))
}

func parseScenes(raw []byte, dir string) ([]*Scene, error) {
	var f sceneListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scenes: %w", err)
	}
	out := make([]*Scene, 0, len(f.Scenes))
	for _, e := range f.Scenes {
		sc := &Scene{ID: component.ScenarioID(e.ID), Name: e.Name, Dim: geom.ParseDim(e.Dim)}
		for _, g := range e.ObjectGroups {
			group := ObjectGroup{Name: g.Name}
			for _, o := range g.Objects {
				shape, err := o.shape()
				if err != nil {
					return nil, fmt.Errorf("scene %s group %s object %d: %w", e.Name, g.Name, o.ID, err)
				}
				group.Objects = append(group.Objects, SceneObject{ID: o.ID, Shape: shape})
			}
			if t := g.Tiles; t != nil {
				grid, err := LoadTileGrid(filepath.Join(dir, t.File), t.Width, t.Height)
				if err != nil {
					return nil, fmt.Errorf("scene %s group %s: %w", e.Name, g.Name, err)
				}
				size := t.TileSize
				if size <= 0 {
					size = 1
				}
				group.Objects = append(group.Objects, grid.Obstacles(geom.Vec2(t.Origin), size, len(group.Objects)+1)...)
			}
			sc.Groups = append(sc.Groups, group)
		}
		for _, s := range e.Spawns {
			sc.Spawns = append(sc.Spawns, s.build())
		}
		out = append(out, sc)
	}
	return out, nil
}

func (o sceneObjectEntry) shape() (geom.Polygon, error) {
	if r := o.Rect; r != nil {
		return geom.Polygon{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H}}, nil
	}
	if len(o.Polygon) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 points, got %d", len(o.Polygon))
	}
	poly := make(geom.Polygon, len(o.Polygon))
	for i, p := range o.Polygon {
		poly[i] = geom.Vec2(p)
	}
	if !poly.Convex() {
		return nil, fmt.Errorf("polygon %v is not convex; split it into convex objects", o.Polygon)
	}
	return poly, nil
}

func (s spawnEntry) build() Spawn {
	sp := Spawn{
		Kind:      component.ParseKind(s.Kind),
		At:        geom.Vec3(s.At),
		HP:        s.HP,
		MP:        s.MP,
		Equipment: s.Equipment,
		Radius:    s.Radius,
	}
	if len(s.Stats) > 0 {
		sp.Stats = make(component.StatBlock, len(s.Stats))
		for k, v := range s.Stats {
			sp.Stats[component.StatKey(k)] = v
		}
	}
	for _, p := range s.Path {
		sp.Path = append(sp.Path, geom.Vec3(p))
	}
	return sp
}
