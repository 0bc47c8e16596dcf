package world

import (
	"sync"
	"time"

	"github.com/m2bot/client/internal/data"
)

// runWindow is how recent the last accepted move must be for running to
// be allowed.
const runWindow = 3 * time.Second

// Player is the authoritative client-side mirror of the local character.
// Message handlers (receive path) are the only writers; the decision loop
// reads concurrently, so everything goes through the lock. Derived figures
// (max HP/MP, weight ceilings) are recomputed lazily: any equipment-
// affecting mutation flips the dirty flag and the next read recomputes.
type Player struct {
	mu sync.Mutex

	Name  string
	Class byte
	Level int
	Exp   int64
	Gold  int

	HP, MP int

	X, Y     uint16
	Dir      byte
	MapFile  string
	MapTitle string

	Inv   Inventory
	Equip Equipment

	// Day/night as last pushed by the server: true = night.
	Night bool

	// Round-trip latency from the last keepalive echo.
	RTT time.Duration

	// Last item whose insertion into the bag succeeded.
	lastPicked *Item

	lastMoveOK time.Time

	classes *data.ClassTable

	statsDirty  bool
	maxHP       int
	maxMP       int
	bagWtLimit  int
	wearWtLimit int
	handWtLimit int
}

func NewPlayer(classes *data.ClassTable) *Player {
	return &Player{
		classes:    classes,
		statsDirty: true,
	}
}

// Lock/Unlock expose the player lock for handlers performing compound
// mutations.
func (p *Player) Lock()   { p.mu.Lock() }
func (p *Player) Unlock() { p.mu.Unlock() }

// MarkStatsDirty flags the derived aggregates for recomputation. Call it
// (under the lock) after any equipment-affecting mutation.
func (p *Player) MarkStatsDirty() {
	p.statsDirty = true
}

// StatsDirty reports the flag without recomputing (tests).
func (p *Player) StatsDirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statsDirty
}

// recompute rebuilds the derived aggregates from the class base curves
// plus summed equipped-item bonuses. HP/MP additionally scale by the
// percentage-bonus term after the flat sum. Caller holds the lock.
func (p *Player) recompute() {
	var flat data.ItemStats
	hpPct, mpPct := 0, 0
	for _, it := range p.Equip.Slots {
		if it == nil {
			continue
		}
		for _, st := range []data.ItemStats{itemIntrinsics(it), it.Bonus} {
			flat.HP += st.HP
			flat.MP += st.MP
			flat.HandWt += st.HandWt
			flat.WearWt += st.WearWt
			flat.BagWt += st.BagWt
			hpPct += st.HPPercent
			mpPct += st.MPPercent
		}
	}

	var hp, mp, bag, wear, hand int
	if ci := p.classes.Get(p.Class); ci != nil {
		hp = ci.HP.At(p.Level)
		mp = ci.MP.At(p.Level)
		bag = ci.BagWt.At(p.Level)
		wear = ci.WearWt.At(p.Level)
		hand = ci.HandWt.At(p.Level)
	}
	p.maxHP = (hp + flat.HP) * (100 + hpPct) / 100
	p.maxMP = (mp + flat.MP) * (100 + mpPct) / 100
	p.bagWtLimit = bag + flat.BagWt
	p.wearWtLimit = wear + flat.WearWt
	p.handWtLimit = hand + flat.HandWt
	p.statsDirty = false
}

func itemIntrinsics(it *Item) data.ItemStats {
	if it.Def == nil {
		return data.ItemStats{}
	}
	return it.Def.Stats
}

func (p *Player) derived() {
	if p.statsDirty {
		p.recompute()
	}
}

// MaxHP returns the derived maximum HP, recomputing if dirty.
func (p *Player) MaxHP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.derived()
	return p.maxHP
}

// MaxMP returns the derived maximum MP, recomputing if dirty.
func (p *Player) MaxMP() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.derived()
	return p.maxMP
}

// BagWeightLimit returns the derived bag-weight ceiling.
func (p *Player) BagWeightLimit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.derived()
	return p.bagWtLimit
}

// WearWeightLimit returns the derived wear-weight ceiling.
func (p *Player) WearWeightLimit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.derived()
	return p.wearWtLimit
}

// HandWeightLimit returns the derived hand-weight ceiling.
func (p *Player) HandWeightLimit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.derived()
	return p.handWtLimit
}

// BagWeight is the live sum over the inventory array.
func (p *Player) BagWeight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Inv.TotalWeight()
}

// WearWeight is the live sum over the worn slots.
func (p *Player) WearWeight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Equip.WearWeight()
}

// HandWeight is the live sum over the weapon and light-source slots.
func (p *Player) HandWeight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Equip.HandWeight()
}

// Position returns the current authoritative position.
func (p *Player) Position() (uint16, uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.X, p.Y
}

// MoveAccepted records a server-confirmed move: position updates and the
// run-eligibility window restarts.
func (p *Player) MoveAccepted(x, y uint16, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.X, p.Y = x, y
	p.lastMoveOK = at
}

// MoveDenied downgrades run eligibility (a movement echo whose target
// equals the current position is a denied move).
func (p *Player) MoveDenied() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastMoveOK = time.Time{}
}

// CanRun reports whether running is currently allowed: it requires a
// recent successful move.
func (p *Player) CanRun(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.lastMoveOK.IsZero() && now.Sub(p.lastMoveOK) < runWindow
}

// SetLastPicked records the last item whose bag insertion succeeded.
func (p *Player) SetLastPicked(it *Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastPicked = it
}

// LastPicked returns the last successfully inserted item, or nil.
func (p *Player) LastPicked() *Item {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPicked
}
