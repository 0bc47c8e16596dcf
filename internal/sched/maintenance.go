// Package sched runs the periodic maintenance the session needs to stay
// healthy: keepalives, memory-bank flushes, and the stale-dialog sweep.
package sched

import (
	"context"
	"time"

	"github.com/m2bot/client/internal/memory"
	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/npc"
	"go.uber.org/zap"
)

// Sender sends one outbound command.
type Sender interface {
	Send(w *packet.Writer)
}

// Config holds the ticker intervals.
type Config struct {
	Keepalive     time.Duration
	FlushInterval time.Duration
	SweepInterval time.Duration
}

// Scheduler owns the maintenance tickers.
type Scheduler struct {
	conn   Sender
	banks  *memory.Banks
	engine *npc.Engine
	cfg    Config
	log    *zap.Logger
}

func New(conn Sender, banks *memory.Banks, engine *npc.Engine, cfg Config, log *zap.Logger) *Scheduler {
	return &Scheduler{
		conn:   conn,
		banks:  banks,
		engine: engine,
		cfg:    cfg,
		log:    log.Named("sched"),
	}
}

// Run drives the tickers until ctx ends, then takes a final flush so
// nothing learned in the last interval is lost.
func (s *Scheduler) Run(ctx context.Context) {
	keepalive := time.NewTicker(s.cfg.Keepalive)
	defer keepalive.Stop()
	flush := time.NewTicker(s.cfg.FlushInterval)
	defer flush.Stop()
	sweep := time.NewTicker(s.cfg.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := s.banks.FlushAll(); err != nil {
				s.log.Warn("final flush failed", zap.Error(err))
			}
			return
		case <-keepalive.C:
			s.sendKeepalive()
		case <-flush.C:
			if err := s.banks.FlushAll(); err != nil {
				s.log.Warn("bank flush failed", zap.Error(err))
			}
		case <-sweep.C:
			s.engine.SweepStale(time.Now())
		}
	}
}

// sendKeepalive carries the send timestamp; the server echoes it back and
// the handler derives the round trip.
func (s *Scheduler) sendKeepalive() {
	w := packet.NewWriter(packet.C_OPCODE_KEEPALIVE)
	w.WriteQ(time.Now().UnixNano())
	s.conn.Send(w)
}
