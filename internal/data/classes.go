package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Curve is a quadratic growth curve evaluated at character level.
type Curve struct {
	Base     float64 `yaml:"base"`
	PerLevel float64 `yaml:"per_level"`
	PerLvlSq float64 `yaml:"per_level_sq"`
}

// At evaluates the curve at the given level.
func (c Curve) At(level int) int {
	l := float64(level)
	return int(c.Base + c.PerLevel*l + c.PerLvlSq*l*l)
}

// ClassInfo holds the base growth curves for one character class.
// Derived stats are curve(level) plus summed equipment bonuses.
type ClassInfo struct {
	ID     byte   `yaml:"id"`
	Name   string `yaml:"name"`
	HP     Curve  `yaml:"hp"`
	MP     Curve  `yaml:"mp"`
	BagWt  Curve  `yaml:"bag_weight"`
	WearWt Curve  `yaml:"wear_weight"`
	HandWt Curve  `yaml:"hand_weight"`
}

// ClassTable maps class IDs to their growth data.
type ClassTable struct {
	classes map[byte]*ClassInfo
}

type classFile struct {
	Classes []*ClassInfo `yaml:"classes"`
}

// LoadClasses reads class growth curves from YAML.
func LoadClasses(path string) (*ClassTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class table %s: %w", path, err)
	}
	var file classFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse class table: %w", err)
	}
	t := &ClassTable{classes: make(map[byte]*ClassInfo, len(file.Classes))}
	for _, ci := range file.Classes {
		t.classes[ci.ID] = ci
	}
	return t, nil
}

// NewClassTable builds a table from in-memory entries (tests, defaults).
func NewClassTable(classes ...*ClassInfo) *ClassTable {
	t := &ClassTable{classes: make(map[byte]*ClassInfo, len(classes))}
	for _, ci := range classes {
		t.classes[ci.ID] = ci
	}
	return t
}

// Get returns the class info for an ID, or nil.
func (t *ClassTable) Get(id byte) *ClassInfo {
	return t.classes[id]
}
