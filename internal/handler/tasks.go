package handler

import (
	"time"

	"go.uber.org/zap"
)

// spawn runs fn on its own goroutine with panic containment. Handlers use
// it for follow-up work that must not block the receive path.
func (d *Deps) spawn(name string, fn func()) {
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				d.Log.Error("background task panic",
					zap.String("task", name), zap.Any("panic", rec))
			}
		}()
		fn()
	}()
}

// sleepCtx sleeps for dur unless the session context ends first. Reports
// whether the full duration elapsed.
func (d *Deps) sleepCtx(dur time.Duration) bool {
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-d.Ctx.Done():
		return false
	}
}
