package memory

import (
	"bufio"
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WalkCache is the per-map navigation aid: a set of coordinates known to
// be walkable, persisted one per line as "x,y". Cells are added as moves
// succeed and lazily trimmed as they are disproven (a denied move, an
// observed permanent blocker). One file per map under the cache dir.
type WalkCache struct {
	mu       sync.Mutex
	dir      string
	maps     map[string]map[Cell]bool
	lastSeen map[string]time.Time
	dirty    map[string]bool
	log      *zap.Logger
}

// Cell mirrors a map coordinate for the walk cache.
type Cell struct {
	X, Y uint16
}

func NewWalkCache(dir string, log *zap.Logger) *WalkCache {
	return &WalkCache{
		dir:      dir,
		maps:     make(map[string]map[Cell]bool),
		lastSeen: make(map[string]time.Time),
		dirty:    make(map[string]bool),
		log:      log.Named("walkcache"),
	}
}

func (w *WalkCache) filePath(mapFile string) string {
	return filepath.Join(w.dir, mapFile+".walk")
}

// LoadMap reads one map's cells from disk, replacing in-memory state.
func (w *WalkCache) LoadMap(mapFile string) error {
	path := w.filePath(mapFile)
	data, mtime, err := readLocked(path)
	if err != nil {
		return err
	}
	cells := make(map[Cell]bool)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		x, errX := strconv.ParseUint(parts[0], 10, 16)
		y, errY := strconv.ParseUint(parts[1], 10, 16)
		if errX != nil || errY != nil {
			continue
		}
		cells[Cell{uint16(x), uint16(y)}] = true
	}
	w.mu.Lock()
	w.maps[mapFile] = cells
	w.lastSeen[mapFile] = mtime
	w.dirty[mapFile] = false
	w.mu.Unlock()
	return nil
}

// Mark records a coordinate as known-walkable.
func (w *WalkCache) Mark(mapFile string, x, y uint16) {
	w.maybeReload(mapFile)
	w.mu.Lock()
	defer w.mu.Unlock()
	cells := w.maps[mapFile]
	if cells == nil {
		cells = make(map[Cell]bool)
		w.maps[mapFile] = cells
	}
	c := Cell{x, y}
	if !cells[c] {
		cells[c] = true
		w.dirty[mapFile] = true
	}
}

// Disprove trims a coordinate the world has shown to be unwalkable.
func (w *WalkCache) Disprove(mapFile string, x, y uint16) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cells := w.maps[mapFile]
	if cells == nil {
		return
	}
	c := Cell{x, y}
	if cells[c] {
		delete(cells, c)
		w.dirty[mapFile] = true
	}
}

// Known reports whether a coordinate is cached as walkable.
func (w *WalkCache) Known(mapFile string, x, y uint16) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.maps[mapFile][Cell{x, y}]
}

// CountMap returns the number of cached cells for a map.
func (w *WalkCache) CountMap(mapFile string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.maps[mapFile])
}

// Flush writes every dirty map file.
func (w *WalkCache) Flush() error {
	w.mu.Lock()
	var pending []string
	for mapFile, d := range w.dirty {
		if d {
			pending = append(pending, mapFile)
		}
	}
	w.mu.Unlock()

	for _, mapFile := range pending {
		if err := w.flushMap(mapFile); err != nil {
			return err
		}
	}
	return nil
}

func (w *WalkCache) flushMap(mapFile string) error {
	w.mu.Lock()
	cells := make([]Cell, 0, len(w.maps[mapFile]))
	for c := range w.maps[mapFile] {
		cells = append(cells, c)
	}
	w.dirty[mapFile] = false
	w.mu.Unlock()

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].X != cells[j].X {
			return cells[i].X < cells[j].X
		}
		return cells[i].Y < cells[j].Y
	})
	var buf bytes.Buffer
	for _, c := range cells {
		fmt.Fprintf(&buf, "%d,%d\n", c.X, c.Y)
	}
	path := w.filePath(mapFile)
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	w.mu.Lock()
	w.lastSeen[mapFile] = modTime(path)
	w.mu.Unlock()
	return nil
}

func (w *WalkCache) maybeReload(mapFile string) {
	w.mu.Lock()
	seen := w.lastSeen[mapFile]
	w.mu.Unlock()
	if mt := modTime(w.filePath(mapFile)); mt.After(seen) {
		if err := w.LoadMap(mapFile); err != nil {
			w.log.Warn("walk cache reload failed",
				zap.String("map", mapFile), zap.Error(err))
		}
	}
}
