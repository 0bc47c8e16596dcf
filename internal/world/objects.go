package world

import (
	"sync"
	"time"
)

// ObjectKind classifies a tracked object.
type ObjectKind byte

const (
	KindPlayer ObjectKind = iota
	KindMonster
	KindMerchant
	KindItem
	KindGold
)

func (k ObjectKind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMonster:
		return "monster"
	case KindMerchant:
		return "merchant"
	case KindItem:
		return "item"
	case KindGold:
		return "gold"
	}
	return "unknown"
}

// Blocks reports whether a living object of this kind occupies its cell.
func (k ObjectKind) Blocks() bool {
	switch k {
	case KindPlayer, KindMonster, KindMerchant:
		return true
	}
	return false
}

// TrackedObject is one currently-visible object. The id is unique for the
// lifetime of the current map session. Engagement fields record which
// actor a monster last traded blows with, so the decision loop can avoid
// monsters another actor is actively fighting.
type TrackedObject struct {
	ID        int32
	Kind      ObjectKind
	Name      string
	X, Y      uint16
	Dir       byte
	Dead      bool
	EngagedBy int32
	EngagedAt time.Time
}

// Objects is the tracked-object table. It is mutated by the receive path
// and read concurrently by the decision loop, so access is lock-guarded.
type Objects struct {
	mu   sync.RWMutex
	byID map[int32]*TrackedObject
	occ  *Occupancy
}

func NewObjects() *Objects {
	return &Objects{
		byID: make(map[int32]*TrackedObject),
		occ:  NewOccupancy(),
	}
}

// Occ exposes the occupancy index derived from this table.
func (o *Objects) Occ() *Occupancy {
	return o.occ
}

// Put registers a newly-sighted object, maintaining occupancy for blocking
// kinds. Re-sighting an existing id refreshes it in place.
func (o *Objects) Put(obj *TrackedObject) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if prev, ok := o.byID[obj.ID]; ok {
		if prev.Kind.Blocks() && !prev.Dead {
			o.occ.Dec(prev.X, prev.Y)
		}
	}
	o.byID[obj.ID] = obj
	if obj.Kind.Blocks() && !obj.Dead {
		o.occ.Inc(obj.X, obj.Y)
	}
}

// Get returns the object with the given id, or nil.
func (o *Objects) Get(id int32) *TrackedObject {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.byID[id]
}

// Move updates an object's position and facing in place.
func (o *Objects) Move(id int32, x, y uint16, dir byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.byID[id]
	if !ok {
		return
	}
	if obj.Kind.Blocks() && !obj.Dead {
		o.occ.Dec(obj.X, obj.Y)
		o.occ.Inc(x, y)
	}
	obj.X, obj.Y, obj.Dir = x, y, dir
}

// Turn updates facing only.
func (o *Objects) Turn(id int32, dir byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if obj, ok := o.byID[id]; ok {
		obj.Dir = dir
	}
}

// MarkDead flags an object dead and releases its cell.
func (o *Objects) MarkDead(id int32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.byID[id]
	if !ok || obj.Dead {
		return
	}
	obj.Dead = true
	if obj.Kind.Blocks() {
		o.occ.Dec(obj.X, obj.Y)
	}
}

// Revive clears the dead flag and re-occupies the cell.
func (o *Objects) Revive(id int32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.byID[id]
	if !ok || !obj.Dead {
		return
	}
	obj.Dead = false
	if obj.Kind.Blocks() {
		o.occ.Inc(obj.X, obj.Y)
	}
}

// Engage records that an actor last traded blows with this object.
func (o *Objects) Engage(id, actor int32, at time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if obj, ok := o.byID[id]; ok {
		obj.EngagedBy = actor
		obj.EngagedAt = at
	}
}

// Remove drops an object on disappearance.
func (o *Objects) Remove(id int32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.byID[id]
	if !ok {
		return
	}
	delete(o.byID, id)
	if obj.Kind.Blocks() && !obj.Dead {
		o.occ.Dec(obj.X, obj.Y)
	}
}

// Clear bulk-drops everything (map change) and resets occupancy.
func (o *Objects) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byID = make(map[int32]*TrackedObject)
	o.occ.Reset()
}

// ForEach visits every tracked object under the read lock. The callback
// must not call back into the table.
func (o *Objects) ForEach(fn func(*TrackedObject)) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, obj := range o.byID {
		fn(obj)
	}
}

// Len returns the number of tracked objects.
func (o *Objects) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.byID)
}

// Cell is one map coordinate.
type Cell struct {
	X, Y uint16
}

// Occupancy is a refcounted multiset of blocked cells. Two entities on the
// same cell, or one passing through, must not clear the cell under them;
// counts never go negative and a zero-count cell is removed from the map.
type Occupancy struct {
	mu    sync.Mutex
	cells map[Cell]int
}

func NewOccupancy() *Occupancy {
	return &Occupancy{cells: make(map[Cell]int)}
}

// Inc adds one occupant to a cell.
func (oc *Occupancy) Inc(x, y uint16) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.cells[Cell{x, y}]++
}

// Dec removes one occupant, deleting the key at zero. Decrementing an
// absent cell is a no-op rather than an underflow.
func (oc *Occupancy) Dec(x, y uint16) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	c := Cell{x, y}
	n, ok := oc.cells[c]
	if !ok {
		return
	}
	if n <= 1 {
		delete(oc.cells, c)
		return
	}
	oc.cells[c] = n - 1
}

// Blocked reports whether a cell has at least one occupant.
func (oc *Occupancy) Blocked(x, y uint16) bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.cells[Cell{x, y}] > 0
}

// Count returns a cell's occupant count.
func (oc *Occupancy) Count(x, y uint16) int {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.cells[Cell{x, y}]
}

// Len returns the number of occupied cells.
func (oc *Occupancy) Len() int {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return len(oc.cells)
}

// Reset drops all cells (map change).
func (oc *Occupancy) Reset() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.cells = make(map[Cell]int)
}
