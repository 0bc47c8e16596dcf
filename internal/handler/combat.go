package handler

import (
	"time"

	"github.com/m2bot/client/internal/net/packet"
	"go.uber.org/zap"
)

// HandleStruck applies an incoming hit on the local character and records
// the attacker as engaged with us.
func HandleStruck(r *packet.Reader, d *Deps) {
	attacker := r.ReadD()
	damage := int(r.ReadH())

	p := d.Model.Player
	p.Lock()
	p.HP -= damage
	if p.HP < 0 {
		p.HP = 0
	}
	hp := p.HP
	p.Unlock()

	d.Model.Objects.Engage(attacker, d.CharID.Load(), time.Now())
	d.Log.Debug("struck",
		zap.Int32("attacker", attacker), zap.Int("damage", damage), zap.Int("hp", hp))
}

// HandleObjectStruck records third-party blows, keeping the engagement
// bookkeeping honest so the decision loop avoids contested monsters.
// Hits and misses both count as engagement; only a hit is a trade of
// damage.
func HandleObjectStruck(r *packet.Reader, d *Deps) {
	attacker := r.ReadD()
	target := r.ReadD()
	damage := int(r.ReadH())
	miss := r.ReadC() != 0

	d.Model.Objects.Engage(target, attacker, time.Now())
	if miss {
		d.Log.Debug("blow missed",
			zap.Int32("attacker", attacker), zap.Int32("target", target))
		return
	}
	d.Log.Debug("blow landed",
		zap.Int32("attacker", attacker), zap.Int32("target", target),
		zap.Int("damage", damage))
}

// HandleDamageIndicator is the feedback for this character's own attacks.
func HandleDamageIndicator(r *packet.Reader, d *Deps) {
	target := r.ReadD()
	damage := int(r.ReadH())
	miss := r.ReadC() != 0

	d.Model.Objects.Engage(target, d.CharID.Load(), time.Now())
	if miss {
		d.Log.Debug("attack missed", zap.Int32("target", target))
		return
	}
	d.Log.Debug("attack landed", zap.Int32("target", target), zap.Int("damage", damage))
}

// HandleDeath is the local character dying.
func HandleDeath(r *packet.Reader, d *Deps) {
	p := d.Model.Player
	p.Lock()
	p.HP = 0
	p.Unlock()
	d.Log.Warn("character died")
}
