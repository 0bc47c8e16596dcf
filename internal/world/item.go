package world

import "github.com/m2bot/client/internal/data"

// Item is one item instance as mirrored from the server: identity, catalog
// reference, stack count, durability, and the rolled bonus stats bound to
// this instance.
type Item struct {
	UID        int32 // server-assigned unique id
	DefID      int32
	Def        *data.ItemDef // resolved catalog entry (nil until catalog knows it)
	Count      uint16
	Durability uint16
	MaxDura    uint16
	Bonus      data.ItemStats // rolled bonus on top of the catalog intrinsics
}

// Category returns the probe category, or "" when the catalog entry is
// still unknown.
func (it *Item) Category() string {
	if it.Def == nil {
		return ""
	}
	return it.Def.Category
}

// Stackable reports whether this instance can merge into stacks.
func (it *Item) Stackable() bool {
	return it.Def != nil && it.Def.Stackable()
}

// UnitWeight returns the per-unit carry weight.
func (it *Item) UnitWeight() int {
	if it.Def == nil {
		return 0
	}
	return it.Def.Weight
}

// Weight returns the carried weight of the whole stack.
func (it *Item) Weight() int {
	return it.UnitWeight() * int(it.Count)
}
