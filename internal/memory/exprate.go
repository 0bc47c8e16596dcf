package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ExpRate is the persistent experience-per-hour bank, keyed by
// (map, class, level). Only the best observed rate for a key survives.
type ExpRate struct {
	mu       sync.Mutex
	path     string
	rates    map[string]float64
	lastSeen time.Time
	dirty    bool
	log      *zap.Logger
}

func expKey(mapFile string, class byte, level int) string {
	return fmt.Sprintf("%s|%d|%d", mapFile, class, level)
}

func NewExpRate(path string, log *zap.Logger) *ExpRate {
	return &ExpRate{
		path:  path,
		rates: make(map[string]float64),
		log:   log.Named("exprate"),
	}
}

// Load reads the bank from disk, replacing in-memory state.
func (r *ExpRate) Load() error {
	data, mtime, err := readLocked(r.path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates = make(map[string]float64)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &r.rates); err != nil {
			return fmt.Errorf("parse exp rates: %w", err)
		}
	}
	r.lastSeen = mtime
	r.dirty = false
	return nil
}

// Observe records a measured rate, keeping only the best per key.
// Returns true when the observation improved the stored rate.
func (r *ExpRate) Observe(mapFile string, class byte, level int, perHour float64) bool {
	if perHour <= 0 {
		return false
	}
	r.maybeReload()
	r.mu.Lock()
	defer r.mu.Unlock()
	key := expKey(mapFile, class, level)
	if best, ok := r.rates[key]; ok && best >= perHour {
		return false
	}
	r.rates[key] = perHour
	r.dirty = true
	return true
}

// Best returns the best known rate for a key.
func (r *ExpRate) Best(mapFile string, class byte, level int) (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.rates[expKey(mapFile, class, level)]
	return v, ok
}

// Flush writes the bank when dirty.
func (r *ExpRate) Flush() error {
	r.mu.Lock()
	if !r.dirty {
		r.mu.Unlock()
		return nil
	}
	snapshot := make(map[string]float64, len(r.rates))
	for k, v := range r.rates {
		snapshot[k] = v
	}
	r.dirty = false
	r.mu.Unlock()

	data, err := json.MarshalIndent(snapshot, "", " ")
	if err != nil {
		return fmt.Errorf("encode exp rates: %w", err)
	}
	if err := writeAtomic(r.path, data); err != nil {
		return err
	}
	r.mu.Lock()
	r.lastSeen = modTime(r.path)
	r.mu.Unlock()
	return nil
}

func (r *ExpRate) maybeReload() {
	r.mu.Lock()
	seen := r.lastSeen
	r.mu.Unlock()
	if mt := modTime(r.path); mt.After(seen) {
		if err := r.Load(); err != nil {
			r.log.Warn("exp rate reload failed", zap.Error(err))
		}
	}
}

// Tracker measures the exp rate for one stay on one map. Started on map
// entry, finalized on map change; the result feeds Observe.
type Tracker struct {
	MapFile  string
	Class    byte
	Level    int
	StartExp int64
	StartAt  time.Time
}

// StartTracking begins a measurement for the current map.
func StartTracking(mapFile string, class byte, level int, exp int64, now time.Time) *Tracker {
	return &Tracker{MapFile: mapFile, Class: class, Level: level, StartExp: exp, StartAt: now}
}

// Finalize computes the per-hour rate for the stay and records it.
// Stays shorter than a minute are discarded as noise.
func (t *Tracker) Finalize(bank *ExpRate, exp int64, now time.Time) {
	if t == nil || bank == nil {
		return
	}
	dur := now.Sub(t.StartAt)
	if dur < time.Minute {
		return
	}
	gained := exp - t.StartExp
	if gained <= 0 {
		return
	}
	perHour := float64(gained) / dur.Hours()
	bank.Observe(t.MapFile, t.Class, t.Level, perHour)
}
