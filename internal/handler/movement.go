package handler

import (
	"time"

	"github.com/m2bot/client/internal/net/packet"
	"go.uber.org/zap"
)

// stepFrom returns the cell one step from (x, y) in the given compass
// direction (0=N clockwise through 7=NW).
func stepFrom(x, y uint16, dir byte) (uint16, uint16) {
	switch dir {
	case 0:
		return x, y - 1
	case 1:
		return x + 1, y - 1
	case 2:
		return x + 1, y
	case 3:
		return x + 1, y + 1
	case 4:
		return x, y + 1
	case 5:
		return x - 1, y + 1
	case 6:
		return x - 1, y
	case 7:
		return x - 1, y - 1
	}
	return x, y
}

// HandleMoveAck resolves a movement echo. The echo carries the position
// after the move; an echo equal to the current position is a denial. An
// accepted move proves the landed cell walkable and restarts the run
// window; a denial downgrades to walking and disproves the attempted cell
// in the shared navigation aid.
func HandleMoveAck(r *packet.Reader, d *Deps, running bool) {
	x := r.ReadH()
	y := r.ReadH()
	dir := r.ReadC()

	p := d.Model.Player
	p.Lock()
	curX, curY := p.X, p.Y
	mapFile := p.MapFile
	p.Dir = dir
	p.Unlock()

	if x == curX && y == curY {
		p.MoveDenied()
		tx, ty := stepFrom(x, y, dir)
		d.Banks.Walk.Disprove(mapFile, tx, ty)
		d.Log.Debug("move denied",
			zap.Bool("running", running),
			zap.Uint16("x", tx), zap.Uint16("y", ty))
		return
	}

	p.MoveAccepted(x, y, time.Now())
	d.Banks.Walk.Mark(mapFile, x, y)
	if running {
		// A run covers the intermediate cell as well.
		mx, my := stepFrom(curX, curY, dir)
		if mx != x || my != y {
			d.Banks.Walk.Mark(mapFile, mx, my)
		}
	}
}
