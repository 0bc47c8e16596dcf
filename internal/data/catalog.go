package data

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Item categories used for NPC probe bookkeeping and equipment scans.
// Category is the unit an NPC accepts or refuses as a whole: once a
// merchant refuses one potion it refuses all potions.
const (
	CategoryWeapon   = "weapon"
	CategoryArmour   = "armour"
	CategoryHelmet   = "helmet"
	CategoryNecklace = "necklace"
	CategoryBracelet = "bracelet"
	CategoryRing     = "ring"
	CategoryAmulet   = "amulet"
	CategoryBelt     = "belt"
	CategoryBoots    = "boots"
	CategoryCharm    = "charm"
	CategoryTorch    = "torch"
	CategoryPotion   = "potion"
	CategoryScroll   = "scroll"
	CategoryOre      = "ore"
	CategoryMisc     = "misc"
)

// ItemStats are the bonus figures an item contributes while equipped.
// They appear twice per item instance: intrinsic (catalog) and rolled
// (added bonus carried on the instance).
type ItemStats struct {
	HP        int `yaml:"hp"`
	MP        int `yaml:"mp"`
	HPPercent int `yaml:"hp_percent"`
	MPPercent int `yaml:"mp_percent"`
	HandWt    int `yaml:"hand_weight"`
	WearWt    int `yaml:"wear_weight"`
	BagWt     int `yaml:"bag_weight"`
	MinDC     int `yaml:"min_dc"`
	MaxDC     int `yaml:"max_dc"`
	AC        int `yaml:"ac"`
}

// ItemDef is one catalog entry: the immutable template an item instance
// references. The server can push new entries at runtime (catalog-entry
// message), so the table is safe for concurrent read/write.
type ItemDef struct {
	ID         int32     `yaml:"id"`
	Name       string    `yaml:"name"`
	Category   string    `yaml:"category"`
	StackCap   uint16    `yaml:"stack_cap"` // 1 = not stackable
	Weight     int       `yaml:"weight"`    // per unit
	Price      int       `yaml:"price"`
	Durability uint16    `yaml:"durability"`
	Stats      ItemStats `yaml:"stats"`
}

// Stackable reports whether instances of this definition merge into stacks.
func (d *ItemDef) Stackable() bool {
	return d.StackCap > 1
}

// Catalog is the item definition table, keyed by template ID.
type Catalog struct {
	mu   sync.RWMutex
	defs map[int32]*ItemDef
}

func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[int32]*ItemDef)}
}

type catalogFile struct {
	Items []*ItemDef `yaml:"items"`
}

// LoadCatalog reads the item table from YAML.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item catalog %s: %w", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse item catalog: %w", err)
	}
	cat := NewCatalog()
	for _, def := range file.Items {
		if def.StackCap == 0 {
			def.StackCap = 1
		}
		cat.defs[def.ID] = def
	}
	return cat, nil
}

// Get returns the definition for a template ID, or nil.
func (c *Catalog) Get(id int32) *ItemDef {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defs[id]
}

// Put inserts or replaces a definition (new-item-catalog-entry message).
func (c *Catalog) Put(def *ItemDef) {
	if def.StackCap == 0 {
		def.StackCap = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defs[def.ID] = def
}

// Len returns the number of known definitions.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.defs)
}
