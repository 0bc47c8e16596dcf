package memory

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestExpRate(t *testing.T) *ExpRate {
	t.Helper()
	r := NewExpRate(filepath.Join(t.TempDir(), "exprates.json"), zap.NewNop())
	if err := r.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return r
}

func TestObserveKeepsBestOnly(t *testing.T) {
	r := newTestExpRate(t)
	if !r.Observe("cave.map", 0, 10, 5000) {
		t.Fatalf("first observation must improve")
	}
	if r.Observe("cave.map", 0, 10, 3000) {
		t.Fatalf("worse observation must not overwrite")
	}
	if !r.Observe("cave.map", 0, 10, 8000) {
		t.Fatalf("better observation must overwrite")
	}
	best, ok := r.Best("cave.map", 0, 10)
	if !ok || best != 8000 {
		t.Fatalf("Best = (%v, %v), want (8000, true)", best, ok)
	}
}

func TestObserveKeysByMapClassLevel(t *testing.T) {
	r := newTestExpRate(t)
	r.Observe("cave.map", 0, 10, 5000)
	r.Observe("cave.map", 1, 10, 100)
	r.Observe("cave.map", 0, 11, 200)

	if best, _ := r.Best("cave.map", 0, 10); best != 5000 {
		t.Fatalf("keys bleed into each other: %v", best)
	}
	if _, ok := r.Best("other.map", 0, 10); ok {
		t.Fatalf("unknown key reported a rate")
	}
}

func TestObserveRejectsNonPositive(t *testing.T) {
	r := newTestExpRate(t)
	if r.Observe("cave.map", 0, 10, 0) || r.Observe("cave.map", 0, 10, -5) {
		t.Fatalf("non-positive rates must be ignored")
	}
}

func TestFlushAndReload(t *testing.T) {
	r := newTestExpRate(t)
	r.Observe("cave.map", 0, 10, 5000)
	if err := r.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	fresh := NewExpRate(r.path, zap.NewNop())
	if err := fresh.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if best, ok := fresh.Best("cave.map", 0, 10); !ok || best != 5000 {
		t.Fatalf("reloaded Best = (%v, %v), want (5000, true)", best, ok)
	}
}

func TestTrackerDiscardsShortStays(t *testing.T) {
	r := newTestExpRate(t)
	start := time.Now()
	tr := StartTracking("cave.map", 0, 10, 1000, start)
	tr.Finalize(r, 9000, start.Add(30*time.Second))
	if _, ok := r.Best("cave.map", 0, 10); ok {
		t.Fatalf("sub-minute stay must be discarded as noise")
	}
}

func TestTrackerComputesPerHourRate(t *testing.T) {
	r := newTestExpRate(t)
	start := time.Now()
	tr := StartTracking("cave.map", 0, 10, 1000, start)
	// 500 exp in 30 minutes = 1000/hour.
	tr.Finalize(r, 1500, start.Add(30*time.Minute))
	best, ok := r.Best("cave.map", 0, 10)
	if !ok || best < 999 || best > 1001 {
		t.Fatalf("Best = (%v, %v), want ~1000", best, ok)
	}
}

func TestTrackerIgnoresExpLoss(t *testing.T) {
	r := newTestExpRate(t)
	start := time.Now()
	tr := StartTracking("cave.map", 0, 10, 1000, start)
	tr.Finalize(r, 500, start.Add(10*time.Minute))
	if _, ok := r.Best("cave.map", 0, 10); ok {
		t.Fatalf("a stay with net exp loss must record nothing")
	}
}
