package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// NpcEntry is the learned capability record for one NPC, identified by
// name + map + coordinate. Capability and category knowledge accumulates
// by probing; the entry is shared across client processes via the cache
// file. One live entry is read by the receive path (re-sightings) while
// the dialog goroutine writes it, so every access goes through the
// entry's own lock.
type NpcEntry struct {
	mu sync.Mutex

	Name string `json:"name"`
	Map  string `json:"map"`
	X    uint16 `json:"x"`
	Y    uint16 `json:"y"`

	CanBuy    bool `json:"can_buy"`
	CanSell   bool `json:"can_sell"`
	CanRepair bool `json:"can_repair"`

	// MenuProbed is set once the main menu has been fetched and
	// classified at least once.
	MenuProbed bool `json:"menu_probed"`
	// GoodsSeen is set once the goods list has been fetched.
	GoodsSeen bool `json:"goods_seen"`

	// Category → accepted(true)/refused(false). Absence means unprobed.
	SellOutcome   map[string]bool `json:"sell_outcome,omitempty"`
	RepairOutcome map[string]bool `json:"repair_outcome,omitempty"`
}

func (e *NpcEntry) key() string {
	return npcKey(e.Name, e.Map, e.X, e.Y)
}

func npcKey(name, mapFile string, x, y uint16) string {
	return fmt.Sprintf("%s|%s|%d,%d", name, mapFile, x, y)
}

// Classify records the main-menu capability flags and reports whether
// anything changed against the stored classification.
func (e *NpcEntry) Classify(canBuy, canSell, canRepair bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := !e.MenuProbed ||
		e.CanBuy != canBuy || e.CanSell != canSell || e.CanRepair != canRepair
	e.CanBuy, e.CanSell, e.CanRepair = canBuy, canSell, canRepair
	e.MenuProbed = true
	return changed
}

// Capabilities returns the classified capability flags.
func (e *NpcEntry) Capabilities() (buy, sell, repair bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.CanBuy, e.CanSell, e.CanRepair
}

// NeedsGoods reports whether the goods listing is still unfetched.
func (e *NpcEntry) NeedsGoods() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.CanBuy && !e.GoodsSeen
}

// MarkGoodsSeen flags the goods list as fetched. Returns true when this
// was new knowledge.
func (e *NpcEntry) MarkGoodsSeen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.GoodsSeen {
		return false
	}
	e.GoodsSeen = true
	return true
}

// RecordSell stores a sell classification for a category. Returns true
// when this was new knowledge.
func (e *NpcEntry) RecordSell(category string, accepted bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.SellOutcome == nil {
		e.SellOutcome = make(map[string]bool)
	}
	if v, ok := e.SellOutcome[category]; ok && v == accepted {
		return false
	}
	e.SellOutcome[category] = accepted
	return true
}

// RecordRepair stores a repair classification for a category. Returns true
// when this was new knowledge.
func (e *NpcEntry) RecordRepair(category string, accepted bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.RepairOutcome == nil {
		e.RepairOutcome = make(map[string]bool)
	}
	if v, ok := e.RepairOutcome[category]; ok && v == accepted {
		return false
	}
	e.RepairOutcome[category] = accepted
	return true
}

// UnseenSell returns the categories from the given set with no sell
// classification yet.
func (e *NpcEntry) UnseenSell(categories []string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unseenSell(categories)
}

// UnseenRepair returns the categories from the given set with no repair
// classification yet.
func (e *NpcEntry) UnseenRepair(categories []string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unseenRepair(categories)
}

func (e *NpcEntry) unseenSell(categories []string) []string {
	var out []string
	for _, c := range categories {
		if _, ok := e.SellOutcome[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

func (e *NpcEntry) unseenRepair(categories []string) []string {
	var out []string
	for _, c := range categories {
		if _, ok := e.RepairOutcome[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// NeedsInteraction reports whether a dialog with this NPC can still teach
// us anything, given the item categories currently carried: an unprobed
// menu, an unfetched goods list, or any unseen sell/repair category.
func (e *NpcEntry) NeedsInteraction(categories []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.MenuProbed {
		return true
	}
	if e.CanBuy && !e.GoodsSeen {
		return true
	}
	if e.CanSell && len(e.unseenSell(categories)) > 0 {
		return true
	}
	if e.CanRepair && len(e.unseenRepair(categories)) > 0 {
		return true
	}
	return false
}

// clone takes a consistent deep copy for marshaling, so a flush never
// reads the outcome maps while a dialog is still writing them.
func (e *NpcEntry) clone() *NpcEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := &NpcEntry{
		Name: e.Name, Map: e.Map, X: e.X, Y: e.Y,
		CanBuy: e.CanBuy, CanSell: e.CanSell, CanRepair: e.CanRepair,
		MenuProbed: e.MenuProbed, GoodsSeen: e.GoodsSeen,
	}
	if len(e.SellOutcome) > 0 {
		cp.SellOutcome = make(map[string]bool, len(e.SellOutcome))
		for k, v := range e.SellOutcome {
			cp.SellOutcome[k] = v
		}
	}
	if len(e.RepairOutcome) > 0 {
		cp.RepairOutcome = make(map[string]bool, len(e.RepairOutcome))
		for k, v := range e.RepairOutcome {
			cp.RepairOutcome[k] = v
		}
	}
	return cp
}

// absorb folds state loaded from disk into the live entry. Knowledge
// learned locally since the file was written wins on conflict; the
// entry pointer never changes, so an open dialog keeps writing into the
// record that will be flushed.
func (e *NpcEntry) absorb(in *NpcEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if in.MenuProbed && !e.MenuProbed {
		e.CanBuy, e.CanSell, e.CanRepair = in.CanBuy, in.CanSell, in.CanRepair
		e.MenuProbed = true
	}
	e.GoodsSeen = e.GoodsSeen || in.GoodsSeen
	for k, v := range in.SellOutcome {
		if _, ok := e.SellOutcome[k]; !ok {
			if e.SellOutcome == nil {
				e.SellOutcome = make(map[string]bool)
			}
			e.SellOutcome[k] = v
		}
	}
	for k, v := range in.RepairOutcome {
		if _, ok := e.RepairOutcome[k]; !ok {
			if e.RepairOutcome == nil {
				e.RepairOutcome = make(map[string]bool)
			}
			e.RepairOutcome[k] = v
		}
	}
}

// NpcCache is the persistent NPC capability bank.
type NpcCache struct {
	mu       sync.Mutex
	path     string
	entries  map[string]*NpcEntry
	lastSeen time.Time // on-disk mtime last observed by this process
	dirty    bool
	log      *zap.Logger
}

func NewNpcCache(path string, log *zap.Logger) *NpcCache {
	return &NpcCache{
		path:    path,
		entries: make(map[string]*NpcEntry),
		log:     log.Named("npccache"),
	}
}

// Load folds the on-disk state into memory. Live entry pointers are
// never replaced: an open dialog keeps mutating the same record, and
// local knowledge the file does not have yet survives the reload (the
// dirty flag is left alone so it still gets flushed).
func (c *NpcCache) Load() error {
	data, mtime, err := readLocked(c.path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(data) > 0 {
		var list []*NpcEntry
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("parse npc cache: %w", err)
		}
		for _, in := range list {
			if cur, ok := c.entries[in.key()]; ok {
				cur.absorb(in)
			} else {
				c.entries[in.key()] = in
			}
		}
	}
	c.lastSeen = mtime
	return nil
}

// Get returns the entry for an NPC sighting, creating it on first sight.
func (c *NpcCache) Get(name, mapFile string, x, y uint16) *NpcEntry {
	c.maybeReload()
	c.mu.Lock()
	defer c.mu.Unlock()
	key := npcKey(name, mapFile, x, y)
	if e, ok := c.entries[key]; ok {
		return e
	}
	e := &NpcEntry{Name: name, Map: mapFile, X: x, Y: y}
	c.entries[key] = e
	c.dirty = true
	return e
}

// MarkDirty flags the bank for the next flush after an entry mutation.
func (c *NpcCache) MarkDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

// Flush writes the bank when dirty.
func (c *NpcCache) Flush() error {
	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	list := make([]*NpcEntry, 0, len(c.entries))
	for _, e := range c.entries {
		list = append(list, e.clone())
	}
	c.dirty = false
	c.mu.Unlock()

	data, err := json.MarshalIndent(list, "", " ")
	if err != nil {
		return fmt.Errorf("encode npc cache: %w", err)
	}
	if err := writeAtomic(c.path, data); err != nil {
		return err
	}
	c.mu.Lock()
	c.lastSeen = modTime(c.path)
	c.mu.Unlock()
	return nil
}

// maybeReload re-reads the file when another process advanced its mtime.
func (c *NpcCache) maybeReload() {
	c.mu.Lock()
	seen := c.lastSeen
	c.mu.Unlock()
	if mt := modTime(c.path); mt.After(seen) {
		if err := c.Load(); err != nil {
			c.log.Warn("npc cache reload failed", zap.Error(err))
		}
	}
}

// Len returns the number of known NPCs.
func (c *NpcCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
