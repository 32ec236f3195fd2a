package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/simcore/internal/combat"
	"github.com/l1jgo/simcore/internal/component"
)

// ItemCategory distinguishes equipment from consumables.
type ItemCategory string

const (
	CategoryEquipment  ItemCategory = "equipment"
	CategoryConsumable ItemCategory = "consumable"
)

// Item is a built item definition.
type Item struct {
	ID       int32
	Name     string
	Category ItemCategory
	Stats    component.StatBlock // equipment bonuses
	Restore  *combat.Expr        // consumable restoration, evaluated on the user
	Pool     string              // "hp" or "mp"
	Skill    int32               // consumable that casts a skill instead
}

type itemEntry struct {
	ID       int32              `yaml:"id"`
	Name     string             `yaml:"name"`
	Category string             `yaml:"category"`
	Stats    map[string]float64 `yaml:"stats"`
	Restore  Formula            `yaml:"restore"`
	Pool     string             `yaml:"pool"`
	Skill    int32              `yaml:"skill"`
}

type itemListFile struct {
	Items []itemEntry `yaml:"items"`
}

// LoadItems reads item definitions from YAML.
func LoadItems(path string, lib Formulas) (map[int32]*Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	return parseItems(raw, lib)
}

func parseItems(raw []byte, lib Formulas) (map[int32]*Item, error) {
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	out := make(map[int32]*Item, len(f.Items))
	for i := range f.Items {
		e := &f.Items[i]
		it := &Item{
			ID:       e.ID,
			Name:     e.Name,
			Category: ItemCategory(e.Category),
			Pool:     e.Pool,
			Skill:    e.Skill,
		}
		if it.Category == "" {
			it.Category = CategoryConsumable
		}
		if it.Pool == "" {
			it.Pool = "hp"
		}
		if len(e.Stats) > 0 {
			it.Stats = make(component.StatBlock, len(e.Stats))
			for k, v := range e.Stats {
				it.Stats[component.StatKey(k)] = v
			}
		}
		restore, err := e.Restore.Build(lib)
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): restore: %w", e.ID, e.Name, err)
		}
		it.Restore = restore
		out[it.ID] = it
	}
	return out, nil
}
