package net

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m2bot/client/internal/net/packet"
	"go.uber.org/zap"
)

// Conn owns the single TCP connection to the game server.
//
// Sends may come from any goroutine (the receive path, the interaction
// engine, the maintenance tickers) and are serialized by a mutex. Receiving
// is single-goroutine: ReceiveLoop frames the byte stream and hands each
// message to the dispatcher synchronously, in arrival order.
type Conn struct {
	conn net.Conn

	writeMu      sync.Mutex
	writeTimeout time.Duration

	closed    atomic.Bool
	closeOnce sync.Once

	log *zap.Logger
}

// Dial connects to the game server.
func Dial(ctx context.Context, addr string, writeTimeout time.Duration, log *zap.Logger) (*Conn, error) {
	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Conn{
		conn:         c,
		writeTimeout: writeTimeout,
		log:          log.Named("net"),
	}, nil
}

// Send frames and writes one command. Effects are best-effort once the
// connection is gone: a send on a closed or failed connection is logged
// and swallowed, never surfaced to the caller.
func (c *Conn) Send(w *packet.Writer) {
	if c.closed.Load() {
		c.log.Debug("send dropped, connection closed", zap.Uint8("opcode", w.Bytes()[0]))
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	if err := WriteFrame(c.conn, w.Bytes()); err != nil {
		if !c.closed.Load() {
			c.log.Debug("write error", zap.Error(err))
		}
		c.Close()
	}
}

// ReceiveLoop reads until the remote closes or an I/O error occurs,
// extracting complete frames and dispatching each in arrival order.
// The dispatcher runs on this goroutine; handler return ordering is the
// message ordering.
func (c *Conn) ReceiveLoop(dispatch func(frame []byte)) {
	defer c.Close()

	var buf []byte
	chunk := make([]byte, 4096)
	for {
		n, err := c.conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			for {
				frame, rest, ok, ferr := ExtractFrame(buf)
				if ferr != nil {
					c.log.Error("bad frame, dropping connection", zap.Error(ferr))
					return
				}
				buf = rest
				if !ok {
					break
				}
				dispatch(frame)
			}
		}
		if err != nil {
			if !c.closed.Load() {
				c.log.Info("connection closed", zap.Error(err))
			}
			return
		}
		if n == 0 {
			c.log.Info("remote closed connection")
			return
		}
	}
}

// Close shuts the connection down. Idempotent.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.conn.Close()
	})
}

// IsClosed reports whether the connection has been shut down.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}
