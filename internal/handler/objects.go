package handler

import (
	"time"

	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/world"
	"go.uber.org/zap"
)

// harvestDelay is how long after a kill the corpse is left before the
// harvest attempt; the server rejects instant harvests.
const harvestDelay = 500 * time.Millisecond

// HandleObjectAppear registers a sighted actor. Merchants additionally
// feed the interaction engine, which decides from the capability cache
// whether a dialog is worth opening.
func HandleObjectAppear(r *packet.Reader, d *Deps, kind world.ObjectKind) {
	obj := &world.TrackedObject{
		ID:   r.ReadD(),
		Kind: kind,
		Name: r.ReadS(),
		X:    r.ReadH(),
		Y:    r.ReadH(),
		Dir:  r.ReadC(),
		Dead: r.ReadC() != 0,
	}
	if obj.ID == d.CharID.Load() {
		return
	}
	d.Model.Objects.Put(obj)

	if kind == world.KindMerchant && !obj.Dead {
		p := d.Model.Player
		p.Lock()
		mapFile := p.MapFile
		p.Unlock()
		d.Engine.Sighted(obj.ID, obj.Name, mapFile, obj.X, obj.Y)
	}
}

// HandleGroundAppear registers a non-blocking ground object (loose item
// or gold pile).
func HandleGroundAppear(r *packet.Reader, d *Deps, kind world.ObjectKind) {
	obj := &world.TrackedObject{
		ID:   r.ReadD(),
		Kind: kind,
		Name: r.ReadS(),
		X:    r.ReadH(),
		Y:    r.ReadH(),
	}
	d.Model.Objects.Put(obj)
}

func HandleObjectTurn(r *packet.Reader, d *Deps) {
	id := r.ReadD()
	dir := r.ReadC()
	d.Model.Objects.Turn(id, dir)
}

func HandleObjectMove(r *packet.Reader, d *Deps) {
	id := r.ReadD()
	x := r.ReadH()
	y := r.ReadH()
	dir := r.ReadC()
	d.Model.Objects.Move(id, x, y, dir)
}

func HandleObjectRemove(r *packet.Reader, d *Deps) {
	d.Model.Objects.Remove(r.ReadD())
}

// HandleObjectDied marks the corpse and frees its cell. A monster this
// character was last engaged with gets a delayed harvest attempt.
func HandleObjectDied(r *packet.Reader, d *Deps) {
	id := r.ReadD()
	obj := d.Model.Objects.Get(id)
	d.Model.Objects.MarkDead(id)
	if obj == nil || obj.Kind != world.KindMonster {
		return
	}
	if obj.EngagedBy != d.CharID.Load() {
		return
	}
	d.Log.Debug("kill confirmed, harvesting",
		zap.Int32("obj", id), zap.String("name", obj.Name))
	d.spawn("harvest", func() {
		if !d.sleepCtx(harvestDelay) {
			return
		}
		d.Conn.Send(harvestCmd(id))
	})
}

func HandleObjectRevived(r *packet.Reader, d *Deps) {
	d.Model.Objects.Revive(r.ReadD())
}

// HandleObjectHarvested drops the spent corpse.
func HandleObjectHarvested(r *packet.Reader, d *Deps) {
	id := r.ReadD()
	d.Model.Objects.Remove(id)
	d.Log.Debug("corpse harvested", zap.Int32("obj", id))
}
