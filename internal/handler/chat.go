package handler

import (
	"strings"
	"sync"

	gonet "github.com/m2bot/client/internal/net"
	"github.com/m2bot/client/internal/net/packet"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Debug whisper commands another player can send us.
const (
	debugOn  = "=>debug"
	debugOff = "=>enddebug"
)

// Mirror forwards log lines as in-game whispers to whoever asked for
// them. It plugs into the logger as a zap hook; the target is set and
// cleared by whisper commands at runtime.
type Mirror struct {
	mu     sync.Mutex
	conn   *gonet.Conn
	target string
}

func NewMirror() *Mirror {
	return &Mirror{}
}

// Bind attaches the live connection once it exists. Until then the hook
// drops everything.
func (m *Mirror) Bind(conn *gonet.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.mu.Unlock()
}

// SetTarget starts mirroring to a player; empty clears.
func (m *Mirror) SetTarget(name string) {
	m.mu.Lock()
	m.target = name
	m.mu.Unlock()
}

func (m *Mirror) Target() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// Hook is the zap hook. Only info and above go out, and the transport's
// own logger is skipped so a mirrored send can never feed back into
// another mirrored send.
func (m *Mirror) Hook(e zapcore.Entry) error {
	if e.Level < zapcore.InfoLevel {
		return nil
	}
	if strings.HasPrefix(e.LoggerName, "net") {
		return nil
	}
	m.mu.Lock()
	conn, target := m.conn, m.target
	m.mu.Unlock()
	if conn == nil || target == "" {
		return nil
	}
	conn.Send(whisperCmd(target, "["+e.Level.String()+"] "+e.Message))
	return nil
}

// HandleChat feeds local chat to the refusal scanner: a merchant refusing
// in free text is the only chat the client acts on.
func HandleChat(r *packet.Reader, d *Deps) {
	objID := r.ReadD()
	text := r.ReadS()
	d.Engine.NoteChatLine(text)
	d.Log.Debug("chat", zap.Int32("obj", objID), zap.String("text", text))
}

// HandleWhisper watches for the debug mirror commands; anything else is
// just logged.
func HandleWhisper(r *packet.Reader, d *Deps) {
	sender := r.ReadS()
	text := r.ReadS()

	switch strings.TrimSpace(text) {
	case debugOn:
		d.Mirror.SetTarget(sender)
		d.Log.Info("debug mirror enabled", zap.String("target", sender))
		d.Conn.Send(whisperCmd(sender, "debug mirror on"))
	case debugOff:
		if d.Mirror.Target() == sender {
			d.Mirror.SetTarget("")
			d.Conn.Send(whisperCmd(sender, "debug mirror off"))
			d.Log.Info("debug mirror disabled", zap.String("target", sender))
		}
	default:
		d.Log.Info("whisper received",
			zap.String("from", sender), zap.String("text", text))
	}
}
