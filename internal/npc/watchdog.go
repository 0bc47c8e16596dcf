package npc

import (
	"time"

	"go.uber.org/zap"
)

// SweepStale force-closes a dialog that has been open past the ceiling
// without completing. The session's context is cancelled so any parked
// probe returns promptly, stranded keyed checks are cleared, and the run
// loop moves on to the next queued NPC. Called periodically by the
// maintenance scheduler.
func (e *Engine) SweepStale(now time.Time) {
	e.mu.Lock()
	cur := e.cur
	e.mu.Unlock()
	if cur == nil {
		return
	}
	age := now.Sub(cur.openedAt)
	if age <= e.cfg.DialogCeiling {
		return
	}
	e.log.Warn("stale dialog force-closed",
		zap.String("npc", cur.npc.name),
		zap.Int32("obj", cur.npc.objID),
		zap.Duration("age", age))
	e.checks.Clear()
	cur.cancel()
}
