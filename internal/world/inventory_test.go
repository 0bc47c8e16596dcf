package world

import (
	"testing"

	"github.com/m2bot/client/internal/data"
)

func potionDef() *data.ItemDef {
	return &data.ItemDef{ID: 1, Name: "Healing Potion", Category: data.CategoryPotion, StackCap: 50, Weight: 2}
}

func swordDef() *data.ItemDef {
	return &data.ItemDef{ID: 10, Name: "Short Sword", Category: data.CategoryWeapon, StackCap: 1, Weight: 30}
}

func newItem(uid int32, def *data.ItemDef, count uint16) *Item {
	return &Item{UID: uid, DefID: def.ID, Def: def, Count: count}
}

func TestAddMergesIntoExistingStack(t *testing.T) {
	var inv Inventory
	def := potionDef()
	inv.Add(newItem(1, def, 10))
	slot, ok := inv.Add(newItem(2, def, 5))
	if !ok || slot != 0 {
		t.Fatalf("Add = (%d, %v), want (0, true)", slot, ok)
	}
	if inv.Slots[0].Count != 15 {
		t.Fatalf("stack count = %d, want 15", inv.Slots[0].Count)
	}
	if inv.Slots[1] != nil {
		t.Fatalf("merge must not occupy a second slot")
	}
}

func TestAddOverflowsToNewSlotAtCap(t *testing.T) {
	var inv Inventory
	def := potionDef()
	inv.Add(newItem(1, def, 48))
	slot, ok := inv.Add(newItem(2, def, 5))
	if !ok || slot != 1 {
		t.Fatalf("Add = (%d, %v), want (1, true)", slot, ok)
	}
	if inv.Slots[0].Count != 50 {
		t.Fatalf("first stack = %d, want cap 50", inv.Slots[0].Count)
	}
	if inv.Slots[1].Count != 3 {
		t.Fatalf("overflow stack = %d, want 3", inv.Slots[1].Count)
	}
}

func TestAddFailsWhenBagFull(t *testing.T) {
	var inv Inventory
	def := swordDef()
	for i := 0; i < BagSize; i++ {
		if _, ok := inv.Add(newItem(int32(i+1), def, 1)); !ok {
			t.Fatalf("slot %d should accept", i)
		}
	}
	if slot, ok := inv.Add(newItem(999, def, 1)); ok {
		t.Fatalf("full bag accepted into slot %d", slot)
	}
	if inv.FreeSlots() != 0 {
		t.Fatalf("FreeSlots = %d, want 0", inv.FreeSlots())
	}
}

func TestRemovePartialAndExhaust(t *testing.T) {
	var inv Inventory
	def := potionDef()
	inv.Add(newItem(1, def, 10))
	if freed := inv.Remove(1, 4); freed {
		t.Fatalf("partial removal must not free the slot")
	}
	if inv.Slots[0].Count != 6 {
		t.Fatalf("count = %d, want 6", inv.Slots[0].Count)
	}
	if freed := inv.Remove(1, 6); !freed {
		t.Fatalf("exhausting removal must free the slot")
	}
	if inv.Slots[0] != nil {
		t.Fatalf("slot not cleared")
	}
}

func TestCategoriesAndWeight(t *testing.T) {
	var inv Inventory
	inv.Add(newItem(1, potionDef(), 10))
	inv.Add(newItem(2, swordDef(), 1))
	inv.Add(newItem(3, potionDef(), 5))

	cats := inv.Categories()
	if len(cats) != 2 {
		t.Fatalf("Categories = %v, want 2 distinct", cats)
	}
	// 15 potions × 2 + 1 sword × 30
	if got := inv.TotalWeight(); got != 60 {
		t.Fatalf("TotalWeight = %d, want 60", got)
	}
	if it := inv.FirstOfCategory(data.CategoryWeapon); it == nil || it.UID != 2 {
		t.Fatalf("FirstOfCategory(weapon) = %v", it)
	}
}
