package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Edge is one observed inter-map transition: stepping on (SrcMap, SrcX,
// SrcY) moved us to (DstMap, DstX, DstY).
type Edge struct {
	SrcMap string `json:"src_map"`
	SrcX   uint16 `json:"src_x"`
	SrcY   uint16 `json:"src_y"`
	DstMap string `json:"dst_map"`
	DstX   uint16 `json:"dst_x"`
	DstY   uint16 `json:"dst_y"`
}

func (e Edge) key() string {
	return fmt.Sprintf("%s:%d,%d", e.SrcMap, e.SrcX, e.SrcY)
}

// MoveGraph is the persistent inter-map movement graph bank. One edge per
// source cell: a later observation from the same cell overwrites.
type MoveGraph struct {
	mu       sync.Mutex
	path     string
	edges    map[string]Edge
	lastSeen time.Time
	dirty    bool
	log      *zap.Logger
}

func NewMoveGraph(path string, log *zap.Logger) *MoveGraph {
	return &MoveGraph{
		path:  path,
		edges: make(map[string]Edge),
		log:   log.Named("movegraph"),
	}
}

// Load reads the bank from disk, replacing in-memory state.
func (g *MoveGraph) Load() error {
	data, mtime, err := readLocked(g.path)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.edges = make(map[string]Edge)
	if len(data) > 0 {
		var list []Edge
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("parse move graph: %w", err)
		}
		for _, e := range list {
			g.edges[e.key()] = e
		}
	}
	g.lastSeen = mtime
	g.dirty = false
	return nil
}

// Record stores an observed transition.
func (g *MoveGraph) Record(e Edge) {
	g.maybeReload()
	g.mu.Lock()
	defer g.mu.Unlock()
	if old, ok := g.edges[e.key()]; ok && old == e {
		return
	}
	g.edges[e.key()] = e
	g.dirty = true
}

// Lookup returns the known destination for a source cell.
func (g *MoveGraph) Lookup(srcMap string, x, y uint16) (Edge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.edges[Edge{SrcMap: srcMap, SrcX: x, SrcY: y}.key()]
	return e, ok
}

// EdgesFrom returns every known edge leaving a map.
func (g *MoveGraph) EdgesFrom(srcMap string) []Edge {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Edge
	for _, e := range g.edges {
		if e.SrcMap == srcMap {
			out = append(out, e)
		}
	}
	return out
}

// Flush writes the bank when dirty.
func (g *MoveGraph) Flush() error {
	g.mu.Lock()
	if !g.dirty {
		g.mu.Unlock()
		return nil
	}
	list := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		list = append(list, e)
	}
	g.dirty = false
	g.mu.Unlock()

	data, err := json.MarshalIndent(list, "", " ")
	if err != nil {
		return fmt.Errorf("encode move graph: %w", err)
	}
	if err := writeAtomic(g.path, data); err != nil {
		return err
	}
	g.mu.Lock()
	g.lastSeen = modTime(g.path)
	g.mu.Unlock()
	return nil
}

func (g *MoveGraph) maybeReload() {
	g.mu.Lock()
	seen := g.lastSeen
	g.mu.Unlock()
	if mt := modTime(g.path); mt.After(seen) {
		if err := g.Load(); err != nil {
			g.log.Warn("move graph reload failed", zap.Error(err))
		}
	}
}

// Len returns the number of edges.
func (g *MoveGraph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}
