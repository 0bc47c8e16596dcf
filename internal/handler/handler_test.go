package handler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m2bot/client/internal/data"
	"github.com/m2bot/client/internal/memory"
	"github.com/m2bot/client/internal/nav"
	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/world"
	"go.uber.org/zap"
)

func testDeps(t *testing.T) *Deps {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "walk"), 0o755); err != nil {
		t.Fatalf("mkdir walk: %v", err)
	}
	log := zap.NewNop()
	banks, err := memory.OpenBanks(dir, log)
	if err != nil {
		t.Fatalf("open banks: %v", err)
	}
	classes := data.NewClassTable(&data.ClassInfo{
		ID:    0,
		Name:  "warrior",
		HP:    data.Curve{Base: 30, PerLevel: 8},
		MP:    data.Curve{Base: 10, PerLevel: 2},
		BagWt: data.Curve{Base: 600, PerLevel: 40},
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		// An in-flight background grid reload can recreate lock files
		// under dir; settle and clear them before TempDir's RemoveAll
		// so cleanup does not race with the goroutine.
		for i := 0; i < 100; i++ {
			time.Sleep(2 * time.Millisecond)
			if os.RemoveAll(filepath.Join(dir, "walk")) == nil {
				return
			}
		}
	})
	return &Deps{
		Log:     log,
		Model:   world.NewModel(classes),
		Catalog: data.NewCatalog(),
		Classes: classes,
		Banks:   banks,
		Grid:    nav.NewCacheGrid(banks.Walk, log),
		Ctx:     ctx,
	}
}

// message builds a decoded server message for direct handler calls.
func message(opcode byte, build func(w *packet.Writer)) *packet.Reader {
	w := packet.NewWriter(opcode)
	if build != nil {
		build(w)
	}
	return packet.NewReader(w.Bytes())
}

func writeItemBlob(w *packet.Writer, uid, defID int32, count uint16) {
	w.WriteD(uid)
	w.WriteD(defID)
	w.WriteH(count)
	w.WriteH(10) // durability
	w.WriteH(10)
	for i := 0; i < 5; i++ {
		w.WriteH(0) // bonus stats
	}
}

func placePlayer(d *Deps, mapFile string, x, y uint16) {
	p := d.Model.Player
	p.Lock()
	p.MapFile = mapFile
	p.X, p.Y = x, y
	p.Unlock()
}

func TestMapChangedRecordsTransitionEdge(t *testing.T) {
	d := testDeps(t)
	placePlayer(d, "town.map", 10, 20)
	d.Model.Objects.Put(&world.TrackedObject{ID: 1, Kind: world.KindMonster, X: 5, Y: 5})

	r := message(packet.S_OPCODE_MAP_CHANGED, func(w *packet.Writer) {
		w.WriteS("cave.map")
		w.WriteS("Spider Cave")
		w.WriteH(3)
		w.WriteH(4)
	})
	HandleMapChanged(r, d)

	e, ok := d.Banks.Moves.Lookup("town.map", 10, 20)
	if !ok || e.DstMap != "cave.map" || e.DstX != 3 || e.DstY != 4 {
		t.Fatalf("transition edge = (%+v, %v)", e, ok)
	}
	if d.Model.Objects.Len() != 0 {
		t.Fatalf("tracked objects survived the map change")
	}
	p := d.Model.Player
	p.Lock()
	mapFile, x, y := p.MapFile, p.X, p.Y
	p.Unlock()
	if mapFile != "cave.map" || x != 3 || y != 4 {
		t.Fatalf("player = (%s, %d, %d)", mapFile, x, y)
	}
	if d.Phase() != PhaseInWorld {
		t.Fatalf("phase = %v", d.Phase())
	}
}

func TestMapChangedFirstEntryRecordsNoEdge(t *testing.T) {
	d := testDeps(t)
	r := message(packet.S_OPCODE_MAP_CHANGED, func(w *packet.Writer) {
		w.WriteS("town.map")
		w.WriteS("Town")
		w.WriteH(100)
		w.WriteH(100)
	})
	HandleMapChanged(r, d)
	if d.Banks.Moves.Len() != 0 {
		t.Fatalf("world entry must not record a transition edge")
	}
}

func TestMoveAckAcceptedUpdatesPositionAndCache(t *testing.T) {
	d := testDeps(t)
	placePlayer(d, "town.map", 10, 10)

	// Step north: the echo carries the landed cell.
	r := message(packet.S_OPCODE_WALK_ACK, func(w *packet.Writer) {
		w.WriteH(10)
		w.WriteH(9)
		w.WriteC(0)
	})
	HandleMoveAck(r, d, false)

	p := d.Model.Player
	x, y := p.Position()
	if x != 10 || y != 9 {
		t.Fatalf("position = (%d, %d)", x, y)
	}
	if !d.Banks.Walk.Known("town.map", 10, 9) {
		t.Fatalf("landed cell not cached as walkable")
	}
	if !p.CanRun(time.Now()) {
		t.Fatalf("accepted move must open the run window")
	}
}

func TestMoveAckDenialDisprovesCell(t *testing.T) {
	d := testDeps(t)
	placePlayer(d, "town.map", 10, 10)
	d.Banks.Walk.Mark("town.map", 10, 9)

	// The echo equals the current position: the step north was denied.
	r := message(packet.S_OPCODE_WALK_ACK, func(w *packet.Writer) {
		w.WriteH(10)
		w.WriteH(10)
		w.WriteC(0)
	})
	HandleMoveAck(r, d, false)

	p := d.Model.Player
	if x, y := p.Position(); x != 10 || y != 10 {
		t.Fatalf("denied move changed position to (%d, %d)", x, y)
	}
	if d.Banks.Walk.Known("town.map", 10, 9) {
		t.Fatalf("denied target still cached as walkable")
	}
	if p.CanRun(time.Now()) {
		t.Fatalf("denial must close the run window")
	}
}

func TestRunAckMarksIntermediateCell(t *testing.T) {
	d := testDeps(t)
	placePlayer(d, "town.map", 10, 10)

	r := message(packet.S_OPCODE_RUN_ACK, func(w *packet.Writer) {
		w.WriteH(10)
		w.WriteH(8)
		w.WriteC(0)
	})
	HandleMoveAck(r, d, true)

	if !d.Banks.Walk.Known("town.map", 10, 8) || !d.Banks.Walk.Known("town.map", 10, 9) {
		t.Fatalf("run must prove both the landed and the intermediate cell")
	}
}

func TestItemGainedStacksByDefinition(t *testing.T) {
	d := testDeps(t)
	d.Catalog.Put(&data.ItemDef{ID: 1, Name: "Healing Potion", Category: data.CategoryPotion, StackCap: 50, Weight: 1})

	HandleItemGained(message(packet.S_OPCODE_ITEM_GAINED, func(w *packet.Writer) {
		writeItemBlob(w, 100, 1, 10)
	}), d)
	HandleItemGained(message(packet.S_OPCODE_ITEM_GAINED, func(w *packet.Writer) {
		writeItemBlob(w, 101, 1, 5)
	}), d)

	p := d.Model.Player
	p.Lock()
	defer p.Unlock()
	occupied := 0
	var total uint16
	for _, it := range p.Inv.Slots {
		if it != nil {
			occupied++
			total += it.Count
		}
	}
	if occupied != 1 || total != 15 {
		t.Fatalf("bag = %d slots / %d units, want one stack of 15", occupied, total)
	}
}

func TestItemCatalogBackfillsCarriedInstances(t *testing.T) {
	d := testDeps(t)

	// The item arrives before its catalog entry.
	HandleItemGained(message(packet.S_OPCODE_ITEM_GAINED, func(w *packet.Writer) {
		writeItemBlob(w, 200, 7, 1)
	}), d)
	p := d.Model.Player
	p.Lock()
	_, it := p.Inv.FindUID(200)
	p.Unlock()
	if it == nil || it.Def != nil {
		t.Fatalf("pre-catalog item must carry a nil definition")
	}

	HandleItemCatalog(message(packet.S_OPCODE_ITEM_CATALOG, func(w *packet.Writer) {
		w.WriteD(7)
		w.WriteS("Short Sword")
		w.WriteS(data.CategoryWeapon)
		w.WriteH(1)
		w.WriteH(30)
		w.WriteD(500)
		w.WriteH(20)
		for i := 0; i < 5; i++ {
			w.WriteH(0)
		}
	}), d)

	p.Lock()
	_, it = p.Inv.FindUID(200)
	p.Unlock()
	if it == nil || it.Def == nil || it.Def.Name != "Short Sword" {
		t.Fatalf("catalog push did not backfill the carried instance: %+v", it)
	}
}

func TestUserInfoSnapshot(t *testing.T) {
	d := testDeps(t)
	placePlayer(d, "town.map", 0, 0)

	r := message(packet.S_OPCODE_USER_INFO, func(w *packet.Writer) {
		w.WriteD(4242)
		w.WriteS("Tester")
		w.WriteC(0)     // class
		w.WriteH(12)    // level
		w.WriteQ(99000) // exp
		w.WriteD(1500)  // gold
		w.WriteH(33)
		w.WriteH(44)
		w.WriteC(2) // dir
		w.WriteH(80)
		w.WriteH(20)
		w.WriteC(2) // bag count
		writeItemBlob(w, 300, 1, 3)
		writeItemBlob(w, 301, 7, 1)
		w.WriteC(1) // worn count
		w.WriteC(byte(world.SlotWeapon))
		writeItemBlob(w, 302, 7, 1)
	})
	HandleUserInfo(r, d)

	if d.CharID.Load() != 4242 {
		t.Fatalf("CharID = %d", d.CharID.Load())
	}
	p := d.Model.Player
	p.Lock()
	defer p.Unlock()
	if p.Name != "Tester" || p.Level != 12 || p.Exp != 99000 || p.Gold != 1500 {
		t.Fatalf("identity = %q lvl %d exp %d gold %d", p.Name, p.Level, p.Exp, p.Gold)
	}
	if p.X != 33 || p.Y != 44 || p.HP != 80 || p.MP != 20 {
		t.Fatalf("vitals = (%d,%d) hp %d mp %d", p.X, p.Y, p.HP, p.MP)
	}
	if _, it := p.Inv.FindUID(300); it == nil {
		t.Fatalf("bag item missing after snapshot")
	}
	worn := p.Equip.Get(world.SlotWeapon)
	if worn == nil || worn.UID != 302 {
		t.Fatalf("worn weapon = %+v", worn)
	}
	if d.Phase() != PhaseInWorld {
		t.Fatalf("phase = %v", d.Phase())
	}
}

func TestGoldDeltaClampsAtZero(t *testing.T) {
	d := testDeps(t)
	p := d.Model.Player
	p.Lock()
	p.Gold = 100
	p.Unlock()

	HandleGold(message(packet.S_OPCODE_GOLD_LOST, func(w *packet.Writer) {
		w.WriteD(250)
	}), d, -1)

	p.Lock()
	gold := p.Gold
	p.Unlock()
	if gold != 0 {
		t.Fatalf("gold = %d, want clamp at 0", gold)
	}
}

func TestItemConsumedFromWornSlot(t *testing.T) {
	d := testDeps(t)
	p := d.Model.Player
	p.Lock()
	p.Equip.Set(world.SlotTorch, &world.Item{UID: 500, DefID: 3, Count: 1})
	p.Unlock()
	p.MaxHP() // settle the dirty flag before the mutation under test

	HandleItemConsumed(message(packet.S_OPCODE_ITEM_DELETED, func(w *packet.Writer) {
		w.WriteD(500)
		w.WriteH(1)
	}), d)

	p.Lock()
	worn := p.Equip.Get(world.SlotTorch)
	p.Unlock()
	if worn != nil {
		t.Fatalf("burnt-out worn item still present")
	}
	if !p.StatsDirty() {
		t.Fatalf("losing worn gear must dirty derived stats")
	}
}
