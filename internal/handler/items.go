package handler

import (
	"github.com/m2bot/client/internal/data"
	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/world"
	"go.uber.org/zap"
)

// readItem decodes one item instance blob and resolves its catalog entry.
// The definition stays nil until the server has pushed the catalog entry;
// the refreshed/catalog messages backfill it.
func readItem(r *packet.Reader, catalog *data.Catalog) *world.Item {
	it := &world.Item{
		UID:        r.ReadD(),
		DefID:      r.ReadD(),
		Count:      r.ReadH(),
		Durability: r.ReadH(),
		MaxDura:    r.ReadH(),
	}
	it.Bonus = data.ItemStats{
		HP:    int(int16(r.ReadH())),
		MP:    int(int16(r.ReadH())),
		AC:    int(int16(r.ReadH())),
		MinDC: int(int16(r.ReadH())),
		MaxDC: int(int16(r.ReadH())),
	}
	it.Def = catalog.Get(it.DefID)
	return it
}

// HandleItemGained inserts a new bag item, stacking where the catalog
// allows. The server never grants past a full bag, so a failed insert is
// a desync worth shouting about.
func HandleItemGained(r *packet.Reader, d *Deps) {
	it := readItem(r, d.Catalog)
	p := d.Model.Player
	p.Lock()
	slot, ok := p.Inv.Add(it)
	p.Unlock()
	if !ok {
		d.Log.Warn("item gained with no bag room, dropped from mirror",
			zap.Int32("uid", it.UID), zap.Int32("def", it.DefID))
		return
	}
	p.SetLastPicked(it)
	d.Log.Debug("item gained",
		zap.Int32("uid", it.UID), zap.Int32("def", it.DefID),
		zap.Uint16("count", it.Count), zap.Int("slot", slot))
}

// HandleItemUsed deducts consumed units, freeing the slot on exhaustion.
func HandleItemUsed(r *packet.Reader, d *Deps) {
	uid := r.ReadD()
	count := r.ReadH()
	p := d.Model.Player
	p.Lock()
	freed := p.Inv.Remove(uid, count)
	p.Unlock()
	d.Log.Debug("item used",
		zap.Int32("uid", uid), zap.Uint16("count", count), zap.Bool("freed", freed))
}

// HandleItemMoved applies a server-side bag reorder.
func HandleItemMoved(r *packet.Reader, d *Deps) {
	uid := r.ReadD()
	toSlot := int(r.ReadC())
	if toSlot >= world.BagSize {
		return
	}
	p := d.Model.Player
	p.Lock()
	defer p.Unlock()
	it := p.Inv.Take(uid)
	if it == nil {
		return
	}
	if p.Inv.Slots[toSlot] != nil {
		// Occupied target: fall back to any free slot rather than lose it.
		p.Inv.Add(it)
		return
	}
	p.Inv.Slots[toSlot] = it
}

// HandleItemEquipped moves a bag item into its worn slot. A previous
// occupant swaps back to the bag. Derived stats go dirty exactly once.
func HandleItemEquipped(r *packet.Reader, d *Deps) {
	uid := r.ReadD()
	slot := world.EquipSlot(r.ReadC())
	p := d.Model.Player
	p.Lock()
	defer p.Unlock()
	it := p.Inv.Take(uid)
	if it == nil {
		return
	}
	if prev := p.Equip.Set(slot, it); prev != nil {
		p.Inv.Add(prev)
	}
	p.MarkStatsDirty()
}

// HandleItemRemoved moves a worn item back to the bag.
func HandleItemRemoved(r *packet.Reader, d *Deps) {
	uid := r.ReadD()
	p := d.Model.Player
	p.Lock()
	defer p.Unlock()
	slot := p.Equip.FindUID(uid)
	if slot < 0 {
		return
	}
	it := p.Equip.Set(slot, nil)
	p.MarkStatsDirty()
	if _, ok := p.Inv.Add(it); !ok {
		d.Log.Warn("unequipped into a full bag", zap.Int32("uid", uid))
	}
}

// HandleItemConsumed removes dropped or destroyed units from wherever the
// item lives.
func HandleItemConsumed(r *packet.Reader, d *Deps) {
	uid := r.ReadD()
	count := r.ReadH()
	p := d.Model.Player
	p.Lock()
	defer p.Unlock()
	if _, it := p.Inv.FindUID(uid); it != nil {
		p.Inv.Remove(uid, count)
		return
	}
	if slot := p.Equip.FindUID(uid); slot >= 0 {
		p.Equip.Set(slot, nil)
		p.MarkStatsDirty()
	}
}

// HandleItemRefreshed replaces an item's full state in place (durability
// drops, bonus re-rolls, stack corrections).
func HandleItemRefreshed(r *packet.Reader, d *Deps) {
	fresh := readItem(r, d.Catalog)
	p := d.Model.Player
	p.Lock()
	defer p.Unlock()
	if i, it := p.Inv.FindUID(fresh.UID); it != nil {
		p.Inv.Slots[i] = fresh
		return
	}
	if slot := p.Equip.FindUID(fresh.UID); slot >= 0 {
		p.Equip.Set(slot, fresh)
		p.MarkStatsDirty()
	}
}

// HandleItemCatalog installs a pushed catalog entry and backfills any
// carried instances that were waiting for it.
func HandleItemCatalog(r *packet.Reader, d *Deps) {
	def := &data.ItemDef{
		ID:         r.ReadD(),
		Name:       r.ReadS(),
		Category:   r.ReadS(),
		StackCap:   r.ReadH(),
		Weight:     int(r.ReadH()),
		Price:      int(r.ReadD()),
		Durability: r.ReadH(),
	}
	def.Stats = data.ItemStats{
		HP:    int(int16(r.ReadH())),
		MP:    int(int16(r.ReadH())),
		AC:    int(int16(r.ReadH())),
		MinDC: int(int16(r.ReadH())),
		MaxDC: int(int16(r.ReadH())),
	}
	d.Catalog.Put(def)

	p := d.Model.Player
	p.Lock()
	touched := false
	for _, it := range p.Inv.Slots {
		if it != nil && it.DefID == def.ID {
			it.Def = def
		}
	}
	for _, it := range p.Equip.Slots {
		if it != nil && it.DefID == def.ID {
			it.Def = def
			touched = true
		}
	}
	if touched {
		p.MarkStatsDirty()
	}
	p.Unlock()
	d.Log.Debug("catalog entry pushed",
		zap.Int32("id", def.ID), zap.String("name", def.Name))
}

// HandleGold applies a gold delta (sign +1 gained, -1 lost).
func HandleGold(r *packet.Reader, d *Deps, sign int) {
	amount := int(r.ReadD())
	p := d.Model.Player
	p.Lock()
	p.Gold += sign * amount
	if p.Gold < 0 {
		p.Gold = 0
	}
	gold := p.Gold
	p.Unlock()
	d.Log.Debug("gold changed", zap.Int("delta", sign*amount), zap.Int("gold", gold))
}

// HandleExp applies the authoritative experience total.
func HandleExp(r *packet.Reader, d *Deps) {
	exp := r.ReadQ()
	p := d.Model.Player
	p.Lock()
	p.Exp = exp
	p.Unlock()
}

// HandleLevel applies a level change; the growth curves shift, so derived
// stats go dirty.
func HandleLevel(r *packet.Reader, d *Deps) {
	level := int(r.ReadH())
	p := d.Model.Player
	p.Lock()
	p.Level = level
	p.MarkStatsDirty()
	p.Unlock()
	d.Log.Info("level changed", zap.Int("level", level))
}
