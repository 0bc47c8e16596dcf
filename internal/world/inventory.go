package world

// BagSize is the fixed number of inventory slots.
const BagSize = 40

// Inventory is the fixed-length bag slot array. Mutated only by message
// handlers on the receive path; reads from the decision loop go through
// the owning Player's lock.
type Inventory struct {
	Slots [BagSize]*Item
}

// FindUID returns the slot index and item for a unique id, or (-1, nil).
func (inv *Inventory) FindUID(uid int32) (int, *Item) {
	for i, it := range inv.Slots {
		if it != nil && it.UID == uid {
			return i, it
		}
	}
	return -1, nil
}

// FreeSlot returns the first empty slot index, or -1.
func (inv *Inventory) FreeSlot() int {
	for i, it := range inv.Slots {
		if it == nil {
			return i
		}
	}
	return -1
}

// FreeSlots counts empty slots.
func (inv *Inventory) FreeSlots() int {
	n := 0
	for _, it := range inv.Slots {
		if it == nil {
			n++
		}
	}
	return n
}

// Add places an item into the bag. Stackable items merge into an existing
// compatible, non-full stack first (up to the catalog cap); only the
// remainder occupies a new slot. Returns the slot index the item ended up
// in and whether insertion succeeded. A full bag with no stacking room
// returns (-1, false) and the item is not inserted.
func (inv *Inventory) Add(it *Item) (int, bool) {
	if it == nil {
		return -1, false
	}
	if it.Stackable() {
		cap := it.Def.StackCap
		for i, existing := range inv.Slots {
			if existing == nil || existing.DefID != it.DefID || !existing.Stackable() {
				continue
			}
			if existing.Count >= cap {
				continue
			}
			room := cap - existing.Count
			if it.Count <= room {
				existing.Count += it.Count
				return i, true
			}
			existing.Count = cap
			it.Count -= room
			// remainder falls through to slot placement
		}
	}
	slot := inv.FreeSlot()
	if slot < 0 {
		return -1, false
	}
	inv.Slots[slot] = it
	return slot, true
}

// Remove deducts count units from the item with the given uid, freeing the
// slot when the stack is exhausted. Returns true when the slot was freed.
func (inv *Inventory) Remove(uid int32, count uint16) bool {
	i, it := inv.FindUID(uid)
	if it == nil {
		return false
	}
	if it.Stackable() && it.Count > count {
		it.Count -= count
		return false
	}
	inv.Slots[i] = nil
	return true
}

// Take removes and returns the whole item with the given uid, or nil.
func (inv *Inventory) Take(uid int32) *Item {
	i, it := inv.FindUID(uid)
	if it == nil {
		return nil
	}
	inv.Slots[i] = nil
	return it
}

// FirstOfCategory returns an item of the given catalog category, or nil.
func (inv *Inventory) FirstOfCategory(cat string) *Item {
	for _, it := range inv.Slots {
		if it != nil && it.Category() == cat {
			return it
		}
	}
	return nil
}

// Categories returns the distinct catalog categories currently carried.
func (inv *Inventory) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, it := range inv.Slots {
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

// TotalWeight sums the carried weight over all bag slots.
func (inv *Inventory) TotalWeight() int {
	total := 0
	for _, it := range inv.Slots {
		if it != nil {
			total += it.Weight()
		}
	}
	return total
}
