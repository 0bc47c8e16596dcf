package handler

import (
	"time"

	"github.com/m2bot/client/internal/net/packet"
	"go.uber.org/zap"
)

// Login result codes as sent by the server.
const (
	loginOK               byte = 0
	loginUnknownAccount   byte = 1
	loginBadPassword      byte = 2
	loginAlreadyConnected byte = 3
)

// StartHandshake opens the session: the version announcement followed by
// the login attempt. Called once after the connection is up.
func StartHandshake(d *Deps) {
	d.SetPhase(PhaseHandshake)
	d.Conn.Send(versionCmd(d.Cfg.Server.Version))
	d.Conn.Send(loginCmd(d.Cfg.Account.Name, d.Cfg.Account.Password))
	d.SetPhase(PhaseLoginSent)
}

// HandleLoginResult branches the auth flow: an unknown account triggers
// account creation, a success waits for the character list.
func HandleLoginResult(r *packet.Reader, d *Deps) {
	result := r.ReadC()
	switch result {
	case loginOK:
		d.Log.Info("login accepted")
		d.SetPhase(PhaseCharSelect)
	case loginUnknownAccount:
		d.Log.Info("account unknown, creating it",
			zap.String("account", d.Cfg.Account.Name))
		d.Conn.Send(newAccountCmd(d.Cfg.Account.Name, d.Cfg.Account.Password))
	default:
		d.Log.Error("login rejected", zap.Uint8("result", result))
		d.Conn.Close()
	}
}

// HandleNewAccountResult retries the login once the account exists.
func HandleNewAccountResult(r *packet.Reader, d *Deps) {
	result := r.ReadC()
	if result != 0 {
		d.Log.Error("account creation rejected", zap.Uint8("result", result))
		d.Conn.Close()
		return
	}
	d.Log.Info("account created")
	d.Conn.Send(loginCmd(d.Cfg.Account.Name, d.Cfg.Account.Password))
}

// HandleCharList picks the configured character, creating it when absent.
func HandleCharList(r *packet.Reader, d *Deps) {
	count := int(r.ReadC())
	found := false
	for i := 0; i < count; i++ {
		name := r.ReadS()
		class := r.ReadC()
		level := r.ReadH()
		d.Log.Debug("character listed",
			zap.String("name", name), zap.Uint8("class", class), zap.Uint16("level", level))
		if name == d.Cfg.Account.Character {
			found = true
		}
	}
	if !found {
		d.Log.Info("character missing, creating it",
			zap.String("name", d.Cfg.Account.Character))
		d.Conn.Send(newCharacterCmd(d.Cfg.Account.Character,
			byte(d.Cfg.Account.Class), byte(d.Cfg.Account.Gender)))
		return
	}
	d.SetPhase(PhaseStarting)
	d.Conn.Send(startGameCmd(d.Cfg.Account.Character))
}

// HandleCharCreateResult enters the world with the fresh character.
func HandleCharCreateResult(r *packet.Reader, d *Deps) {
	result := r.ReadC()
	if result != 0 {
		d.Log.Error("character creation rejected", zap.Uint8("result", result))
		d.Conn.Close()
		return
	}
	d.Log.Info("character created", zap.String("name", d.Cfg.Account.Character))
	d.SetPhase(PhaseStarting)
	d.Conn.Send(startGameCmd(d.Cfg.Account.Character))
}

// HandleStartGame acknowledges world entry; the full state arrives with
// the user-info snapshot.
func HandleStartGame(r *packet.Reader, d *Deps) {
	result := r.ReadC()
	if result != 0 {
		d.Log.Error("world entry rejected", zap.Uint8("result", result))
		d.Conn.Close()
		return
	}
	d.Log.Info("entering world", zap.String("character", d.Cfg.Account.Character))
}

// HandleStartGameBanned is terminal: the account is not coming back.
func HandleStartGameBanned(r *packet.Reader, d *Deps) {
	reason := r.ReadS()
	d.Log.Error("account banned", zap.String("reason", reason))
	d.Conn.Close()
}

// HandleStartGameDelay waits out the server-imposed delay and retries.
func HandleStartGameDelay(r *packet.Reader, d *Deps) {
	seconds := r.ReadD()
	if seconds < 0 {
		seconds = 0
	}
	d.Log.Info("world entry delayed", zap.Int32("seconds", seconds))
	d.spawn("start-game-retry", func() {
		if !d.sleepCtx(time.Duration(seconds) * time.Second) {
			return
		}
		d.Conn.Send(startGameCmd(d.Cfg.Account.Character))
	})
}
