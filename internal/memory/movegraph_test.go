package memory

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestMoveGraph(t *testing.T) *MoveGraph {
	t.Helper()
	g := NewMoveGraph(filepath.Join(t.TempDir(), "movegraph.json"), zap.NewNop())
	if err := g.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return g
}

func TestRecordAndLookup(t *testing.T) {
	g := newTestMoveGraph(t)
	g.Record(Edge{SrcMap: "town.map", SrcX: 10, SrcY: 20, DstMap: "cave.map", DstX: 3, DstY: 4})

	e, ok := g.Lookup("town.map", 10, 20)
	if !ok || e.DstMap != "cave.map" || e.DstX != 3 || e.DstY != 4 {
		t.Fatalf("Lookup = (%+v, %v)", e, ok)
	}
	if _, ok := g.Lookup("town.map", 11, 20); ok {
		t.Fatalf("unknown source cell reported an edge")
	}
}

func TestRecordOverwritesSameSource(t *testing.T) {
	g := newTestMoveGraph(t)
	g.Record(Edge{SrcMap: "town.map", SrcX: 1, SrcY: 1, DstMap: "a.map", DstX: 1, DstY: 1})
	g.Record(Edge{SrcMap: "town.map", SrcX: 1, SrcY: 1, DstMap: "b.map", DstX: 2, DstY: 2})
	if g.Len() != 1 {
		t.Fatalf("Len = %d, want one edge per source cell", g.Len())
	}
	e, _ := g.Lookup("town.map", 1, 1)
	if e.DstMap != "b.map" {
		t.Fatalf("later observation must win: %+v", e)
	}
}

func TestEdgesFromFiltersByMap(t *testing.T) {
	g := newTestMoveGraph(t)
	g.Record(Edge{SrcMap: "town.map", SrcX: 1, SrcY: 1, DstMap: "a.map"})
	g.Record(Edge{SrcMap: "town.map", SrcX: 2, SrcY: 2, DstMap: "b.map"})
	g.Record(Edge{SrcMap: "cave.map", SrcX: 3, SrcY: 3, DstMap: "c.map"})

	if got := len(g.EdgesFrom("town.map")); got != 2 {
		t.Fatalf("EdgesFrom(town) = %d, want 2", got)
	}
	if got := len(g.EdgesFrom("nowhere.map")); got != 0 {
		t.Fatalf("EdgesFrom(nowhere) = %d, want 0", got)
	}
}

func TestMoveGraphFlushRoundTrip(t *testing.T) {
	g := newTestMoveGraph(t)
	g.Record(Edge{SrcMap: "town.map", SrcX: 10, SrcY: 20, DstMap: "cave.map", DstX: 3, DstY: 4})
	if err := g.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	fresh := NewMoveGraph(g.path, zap.NewNop())
	if err := fresh.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if e, ok := fresh.Lookup("town.map", 10, 20); !ok || e.DstMap != "cave.map" {
		t.Fatalf("reloaded Lookup = (%+v, %v)", e, ok)
	}
}
