package world

import "github.com/m2bot/client/internal/data"

// EquipSlot identifies a worn equipment slot.
type EquipSlot int

const (
	SlotWeapon EquipSlot = iota
	SlotArmour
	SlotHelmet
	SlotNecklace
	SlotBraceletL
	SlotBraceletR
	SlotRingL
	SlotRingR
	SlotAmulet
	SlotBelt
	SlotBoots
	SlotCharm
	SlotTorch // light source; excluded from best-item scans, day/night rule only
	SlotMax
)

func (s EquipSlot) String() string {
	switch s {
	case SlotWeapon:
		return "weapon"
	case SlotArmour:
		return "armour"
	case SlotHelmet:
		return "helmet"
	case SlotNecklace:
		return "necklace"
	case SlotBraceletL, SlotBraceletR:
		return "bracelet"
	case SlotRingL, SlotRingR:
		return "ring"
	case SlotAmulet:
		return "amulet"
	case SlotBelt:
		return "belt"
	case SlotBoots:
		return "boots"
	case SlotCharm:
		return "charm"
	case SlotTorch:
		return "torch"
	}
	return "none"
}

// SlotsForCategory maps a catalog category to the equipment slots it can
// occupy. Categories with no wearable slot return nil.
func SlotsForCategory(cat string) []EquipSlot {
	switch cat {
	case data.CategoryWeapon:
		return []EquipSlot{SlotWeapon}
	case data.CategoryArmour:
		return []EquipSlot{SlotArmour}
	case data.CategoryHelmet:
		return []EquipSlot{SlotHelmet}
	case data.CategoryNecklace:
		return []EquipSlot{SlotNecklace}
	case data.CategoryBracelet:
		return []EquipSlot{SlotBraceletL, SlotBraceletR}
	case data.CategoryRing:
		return []EquipSlot{SlotRingL, SlotRingR}
	case data.CategoryAmulet:
		return []EquipSlot{SlotAmulet}
	case data.CategoryBelt:
		return []EquipSlot{SlotBelt}
	case data.CategoryBoots:
		return []EquipSlot{SlotBoots}
	case data.CategoryCharm:
		return []EquipSlot{SlotCharm}
	case data.CategoryTorch:
		return []EquipSlot{SlotTorch}
	}
	return nil
}

// Equipment is the fixed worn-slot array. SlotMax equals the number of
// slot kinds; the torch slot is handled by the day/night rule, not by
// general replacement scanning.
type Equipment struct {
	Slots [SlotMax]*Item
}

// Get returns the item in a slot, or nil.
func (e *Equipment) Get(slot EquipSlot) *Item {
	if slot < 0 || slot >= SlotMax {
		return nil
	}
	return e.Slots[slot]
}

// Set places an item in a slot (nil clears) and returns the previous
// occupant.
func (e *Equipment) Set(slot EquipSlot, it *Item) *Item {
	if slot < 0 || slot >= SlotMax {
		return nil
	}
	old := e.Slots[slot]
	e.Slots[slot] = it
	return old
}

// FindUID returns the slot holding the item with the given uid, or -1.
func (e *Equipment) FindUID(uid int32) EquipSlot {
	for i, it := range e.Slots {
		if it != nil && it.UID == uid {
			return EquipSlot(i)
		}
	}
	return -1
}

// ScanSlots returns the slots subject to best-item replacement: every
// slot kind except the light source.
func (e *Equipment) ScanSlots() []EquipSlot {
	slots := make([]EquipSlot, 0, SlotMax-1)
	for s := EquipSlot(0); s < SlotMax; s++ {
		if s != SlotTorch {
			slots = append(slots, s)
		}
	}
	return slots
}

// HandWeight sums carried weight over the hand slots (weapon + light).
func (e *Equipment) HandWeight() int {
	total := 0
	for _, s := range []EquipSlot{SlotWeapon, SlotTorch} {
		if it := e.Slots[s]; it != nil {
			total += it.Weight()
		}
	}
	return total
}

// WearWeight sums carried weight over the worn slots (all but the hands).
func (e *Equipment) WearWeight() int {
	total := 0
	for s := EquipSlot(0); s < SlotMax; s++ {
		if s == SlotWeapon || s == SlotTorch {
			continue
		}
		if it := e.Slots[s]; it != nil {
			total += it.Weight()
		}
	}
	return total
}

// Categories returns the distinct catalog categories currently worn.
func (e *Equipment) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, it := range e.Slots {
		if it == nil || it.Category() == "" {
			continue
		}
		if !seen[it.Category()] {
			seen[it.Category()] = true
			cats = append(cats, it.Category())
		}
	}
	return cats
}
