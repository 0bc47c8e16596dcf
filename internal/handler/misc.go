package handler

import (
	"time"

	"github.com/m2bot/client/internal/net/packet"
	"go.uber.org/zap"
)

// HandleKeepalive resolves the round trip: the server echoes the
// timestamp the maintenance ticker sent.
func HandleKeepalive(r *packet.Reader, d *Deps) {
	sent := r.ReadQ()
	if sent <= 0 {
		return
	}
	rtt := time.Since(time.Unix(0, sent))
	if rtt < 0 {
		return
	}
	p := d.Model.Player
	p.Lock()
	p.RTT = rtt
	p.Unlock()
	d.Log.Debug("keepalive echo", zap.Duration("rtt", rtt))
}
