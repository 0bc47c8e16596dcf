package npc

import (
	"github.com/m2bot/client/internal/data"
	"github.com/m2bot/client/internal/world"
	"go.uber.org/zap"
)

// evaluatePurchases applies the standing desired-item rules and the
// best-equipment-improvement rule to a freshly received goods list.
// Purchases are bounded by gold (minus the reserve), free bag slots, and
// carry-weight headroom; each order deducts from those budgets before the
// next is considered.
func (e *Engine) evaluatePurchases(s *session, list *GoodsList) {
	p := e.model.Player

	weightRoom := p.BagWeightLimit() - p.BagWeight()
	p.Lock()
	gold := p.Gold
	freeSlots := p.Inv.FreeSlots()
	p.Unlock()
	budget := gold - e.cfg.GoldReserve

	for _, want := range e.advisor.DesiredItems() {
		g, ok := findGoods(list, want.Name)
		if !ok {
			continue
		}
		def := e.catalog.Get(g.DefID)
		if def == nil {
			continue
		}
		need := e.desiredShortfall(want, def)
		if need <= 0 {
			continue
		}
		qty := clampOrder(need, g.Price, def.Weight, budget, weightRoom)
		if qty <= 0 {
			continue
		}
		newSlots := slotsNeeded(def, qty)
		if newSlots > freeSlots {
			continue
		}
		e.conn.Send(buyItem(s.npc.objID, g.Index, uint16(qty)))
		budget -= qty * g.Price
		weightRoom -= qty * def.Weight
		freeSlots -= newSlots
		e.log.Info("buying desired item",
			zap.String("npc", s.npc.name),
			zap.String("item", g.Name),
			zap.Int("qty", qty))
	}

	// Equipment upgrades: one unit of anything scoring above the current
	// occupant of its slot. The light-source slot is excluded — torches
	// follow the day/night rule, not the upgrade scan.
	for _, g := range list.Items {
		def := e.catalog.Get(g.DefID)
		if def == nil || def.Category == data.CategoryTorch {
			continue
		}
		slots := world.SlotsForCategory(def.Category)
		if slots == nil {
			continue
		}
		score := e.advisor.ScoreItem(def)
		if score <= 0 || !e.improvesSomeSlot(slots, score) {
			continue
		}
		if g.Price > budget || def.Weight > weightRoom || freeSlots < 1 {
			continue
		}
		e.conn.Send(buyItem(s.npc.objID, g.Index, 1))
		budget -= g.Price
		weightRoom -= def.Weight
		freeSlots--
		e.log.Info("buying equipment upgrade",
			zap.String("npc", s.npc.name),
			zap.String("item", g.Name),
			zap.Float64("score", score))
	}
}

// desiredShortfall computes how many more units a rule calls for, from
// either its count target or its weight-fraction target.
func (e *Engine) desiredShortfall(want DesiredItem, def *data.ItemDef) int {
	p := e.model.Player
	bagLimit := p.BagWeightLimit()

	p.Lock()
	have, haveWeight := 0, 0
	for _, it := range p.Inv.Slots {
		if it != nil && it.DefID == def.ID {
			have += int(it.Count)
			haveWeight += it.Weight()
		}
	}
	p.Unlock()

	if want.Count > 0 {
		return want.Count - have
	}
	if want.WeightFrac > 0 {
		if def.Weight <= 0 {
			return 0
		}
		target := int(want.WeightFrac * float64(bagLimit))
		return (target - haveWeight) / def.Weight
	}
	return 0
}

func findGoods(list *GoodsList, name string) (GoodsItem, bool) {
	for _, g := range list.Items {
		if g.Name == name {
			return g, true
		}
	}
	return GoodsItem{}, false
}

func clampOrder(need, price, weight, budget, weightRoom int) int {
	qty := need
	if price > 0 && qty > budget/price {
		qty = budget / price
	}
	if weight > 0 && qty > weightRoom/weight {
		qty = weightRoom / weight
	}
	return qty
}

// slotsNeeded estimates the new bag slots an order occupies: a stackable
// order lands in at most one fresh slot.
func slotsNeeded(def *data.ItemDef, qty int) int {
	if !def.Stackable() {
		return qty
	}
	return 1
}

// improvesSomeSlot reports whether score beats the current occupant of at
// least one candidate slot (an empty slot is always an improvement).
func (e *Engine) improvesSomeSlot(slots []world.EquipSlot, score float64) bool {
	p := e.model.Player
	p.Lock()
	defer p.Unlock()
	for _, slot := range slots {
		cur := p.Equip.Get(slot)
		if cur == nil || cur.Def == nil {
			return true
		}
		if e.advisor.ScoreItem(cur.Def) < score {
			return true
		}
	}
	return false
}
