// Package data loads the static definition tables (skills, items, scenes)
// the simulation looks up by identifier.
package data

import (
	"fmt"

	"github.com/l1jgo/simcore/internal/component"
)

// Definitions is the read-only lookup surface for skills and items.
// Lookups return (nil, false) for unknown IDs and never fail.
type Definitions struct {
	skills map[int32]*Skill
	items  map[int32]*Item
}

// NewDefinitions wraps already built tables. Either map may be nil.
func NewDefinitions(skills map[int32]*Skill, items map[int32]*Item) *Definitions {
	if skills == nil {
		skills = map[int32]*Skill{}
	}
	if items == nil {
		items = map[int32]*Item{}
	}
	return &Definitions{skills: skills, items: items}
}

// Load reads the skill and item tables, building formulas against lib.
func Load(skillsPath, itemsPath string, lib Formulas) (*Definitions, error) {
	skills, err := LoadSkills(skillsPath, lib)
	if err != nil {
		return nil, err
	}
	items, err := LoadItems(itemsPath, lib)
	if err != nil {
		return nil, err
	}
	for id, it := range items {
		if it.Skill != 0 {
			if _, ok := skills[it.Skill]; !ok {
				return nil, fmt.Errorf("item %d: unknown skill %d", id, it.Skill)
			}
		}
	}
	return NewDefinitions(skills, items), nil
}

func (d *Definitions) Skill(id int32) (*Skill, bool) {
	s, ok := d.skills[id]
	return s, ok
}

func (d *Definitions) Item(id int32) (*Item, bool) {
	it, ok := d.items[id]
	return it, ok
}

// ItemStats returns an equipment item's bonuses.
func (d *Definitions) ItemStats(id int32) (component.StatBlock, bool) {
	it, ok := d.items[id]
	if !ok || it.Category != CategoryEquipment {
		return nil, false
	}
	return it.Stats, true
}

// Counts returns the table sizes, for the startup log.
func (d *Definitions) Counts() (skills, items int) { return len(d.skills), len(d.items) }
