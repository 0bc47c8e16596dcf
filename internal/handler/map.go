package handler

import (
	"time"

	"github.com/m2bot/client/internal/data"
	"github.com/m2bot/client/internal/memory"
	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/world"
	"go.uber.org/zap"
)

// HandleMapInfo updates the map descriptor without a world reset. The
// server sends it at entry, before the first user-info snapshot.
func HandleMapInfo(r *packet.Reader, d *Deps) {
	file := r.ReadS()
	title := r.ReadS()
	p := d.Model.Player
	p.Lock()
	p.MapFile = file
	p.MapTitle = title
	p.Unlock()
	d.Log.Info("map info", zap.String("file", file), zap.String("title", title))
	d.Grid.Reload(d.Ctx, file)
}

// HandleMapChanged is the bulk world reset: every tracked object vanishes,
// the occupancy index clears, and the per-map learning rolls over. The
// transition itself is recorded as a movement-graph edge, and the exp-rate
// measurement for the old map is finalized before a new one starts.
func HandleMapChanged(r *packet.Reader, d *Deps) {
	file := r.ReadS()
	title := r.ReadS()
	x := r.ReadH()
	y := r.ReadH()

	now := time.Now()
	p := d.Model.Player
	p.Lock()
	prevMap := p.MapFile
	prevX, prevY := p.X, p.Y
	p.Unlock()

	if prevMap != "" && prevMap != file {
		d.Banks.Moves.Record(memory.Edge{
			SrcMap: prevMap, SrcX: prevX, SrcY: prevY,
			DstMap: file, DstX: x, DstY: y,
		})
	}
	d.finalizeTracking(now)

	d.Model.MapChanged(file, title, x, y)
	d.Log.Info("map changed",
		zap.String("from", prevMap), zap.String("to", file),
		zap.Uint16("x", x), zap.Uint16("y", y))

	d.startTracking(now)
	d.Grid.Reload(d.Ctx, file)
	d.SetPhase(PhaseInWorld)
}

// HandleTeleportOut clears the visible world while the transfer is in
// flight; the follow-up map-changed message rebuilds it.
func HandleTeleportOut(r *packet.Reader, d *Deps) {
	d.Model.Objects.Clear()
	d.Log.Debug("teleport out")
}

func HandleTeleportIn(r *packet.Reader, d *Deps) {
	d.Log.Debug("teleport in")
}

// HandleUserInfo applies the full self snapshot: identity, stats,
// position, bag, and worn equipment. It arrives at world entry and after
// major state resets, replacing whatever the mirror held.
func HandleUserInfo(r *packet.Reader, d *Deps) {
	id := r.ReadD()
	name := r.ReadS()
	class := r.ReadC()
	level := int(r.ReadH())
	exp := r.ReadQ()
	gold := int(r.ReadD())
	x := r.ReadH()
	y := r.ReadH()
	dir := r.ReadC()
	hp := int(r.ReadH())
	mp := int(r.ReadH())

	d.CharID.Store(id)

	p := d.Model.Player
	p.Lock()
	p.Name = name
	p.Class = class
	p.Level = level
	p.Exp = exp
	p.Gold = gold
	p.X, p.Y, p.Dir = x, y, dir
	p.HP, p.MP = hp, mp

	p.Inv = world.Inventory{}
	bagCount := int(r.ReadC())
	for i := 0; i < bagCount; i++ {
		it := readItem(r, d.Catalog)
		p.Inv.Add(it)
	}

	p.Equip = world.Equipment{}
	wornCount := int(r.ReadC())
	for i := 0; i < wornCount; i++ {
		slot := world.EquipSlot(r.ReadC())
		p.Equip.Set(slot, readItem(r, d.Catalog))
	}
	p.MarkStatsDirty()
	p.Unlock()

	d.Log.Info("self snapshot",
		zap.Int32("id", id), zap.String("name", name),
		zap.Uint8("class", class), zap.Int("level", level),
		zap.Int("bag", bagCount), zap.Int("worn", wornCount))

	d.SetPhase(PhaseInWorld)
	d.startTracking(time.Now())
}

// HandleUserLocation applies a server position correction verbatim.
func HandleUserLocation(r *packet.Reader, d *Deps) {
	x := r.ReadH()
	y := r.ReadH()
	p := d.Model.Player
	p.Lock()
	p.X, p.Y = x, y
	p.Unlock()
	d.Log.Debug("position corrected", zap.Uint16("x", x), zap.Uint16("y", y))
}

// HandleTimeOfDay applies the day/night flag and the torch rule: a torch
// is worn at night and stowed by day. Equip traffic is only generated
// when the worn state disagrees with the clock.
func HandleTimeOfDay(r *packet.Reader, d *Deps) {
	night := r.ReadC() != 0
	p := d.Model.Player
	p.Lock()
	p.Night = night
	worn := p.Equip.Get(world.SlotTorch)
	var bagTorch *world.Item
	if night && worn == nil {
		bagTorch = p.Inv.FirstOfCategory(data.CategoryTorch)
	}
	p.Unlock()

	switch {
	case night && worn == nil && bagTorch != nil:
		d.Log.Debug("night fell, lighting torch", zap.Int32("uid", bagTorch.UID))
		d.Conn.Send(equipCmd(bagTorch.UID))
	case !night && worn != nil:
		d.Log.Debug("day broke, stowing torch", zap.Int32("uid", worn.UID))
		d.Conn.Send(removeCmd(worn.UID))
	}
}

// finalizeTracking closes the current exp-rate measurement, feeding the
// result into the persistent bank.
func (d *Deps) finalizeTracking(now time.Time) {
	d.trackMu.Lock()
	t := d.tracker
	d.tracker = nil
	d.trackMu.Unlock()
	if t == nil {
		return
	}
	p := d.Model.Player
	p.Lock()
	exp := p.Exp
	p.Unlock()
	t.Finalize(d.Banks.Rates, exp, now)
}

// startTracking begins an exp-rate measurement for the current map.
func (d *Deps) startTracking(now time.Time) {
	p := d.Model.Player
	p.Lock()
	mapFile, class, level, exp := p.MapFile, p.Class, p.Level, p.Exp
	p.Unlock()
	if mapFile == "" {
		return
	}
	d.trackMu.Lock()
	d.tracker = memory.StartTracking(mapFile, class, level, exp, now)
	d.trackMu.Unlock()
}
