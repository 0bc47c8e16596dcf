package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/m2bot/client/internal/config"
	"github.com/m2bot/client/internal/data"
	"github.com/m2bot/client/internal/handler"
	"github.com/m2bot/client/internal/memory"
	"github.com/m2bot/client/internal/nav"
	gonet "github.com/m2bot/client/internal/net"
	"github.com/m2bot/client/internal/net/packet"
	"github.com/m2bot/client/internal/npc"
	"github.com/m2bot/client/internal/sched"
	"github.com/m2bot/client/internal/scripting"
	"github.com/m2bot/client/internal/world"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/client.toml"
	if p := os.Getenv("M2BOT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger, with the whisper mirror hooked in
	mirror := handler.NewMirror()
	log, err := newLogger(cfg.Logging, mirror)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load static data tables
	catalog, err := data.LoadCatalog(filepath.Join(cfg.Paths.DataDir, "items.yaml"))
	if err != nil {
		return fmt.Errorf("load item catalog: %w", err)
	}
	classes, err := data.LoadClasses(filepath.Join(cfg.Paths.DataDir, "classes.yaml"))
	if err != nil {
		return fmt.Errorf("load class table: %w", err)
	}
	log.Info("data tables loaded", zap.Int("items", catalog.Len()))

	// 4. Open the shared memory banks
	if err := os.MkdirAll(filepath.Join(cfg.Paths.CacheDir, "walk"), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	banks, err := memory.OpenBanks(cfg.Paths.CacheDir, log)
	if err != nil {
		return fmt.Errorf("open memory banks: %w", err)
	}

	// 5. Load the standing rules
	rules, err := scripting.LoadRules(cfg.Paths.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	defer rules.Close()

	// 6. Connect
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := gonet.Dial(ctx, cfg.Server.Address, cfg.Timing.WriteTimeout, log)
	if err != nil {
		return fmt.Errorf("dial %s: %w", cfg.Server.Address, err)
	}
	defer conn.Close()
	mirror.Bind(conn)
	log.Info("connected", zap.String("server", cfg.Server.Address))

	// 7. Assemble the world mirror and the interaction engine
	model := world.NewModel(classes)
	grid := nav.NewCacheGrid(banks.Walk, log)

	engineCfg := npc.Config{
		OpenTimeout:   cfg.Timing.OpenTimeout,
		Debounce:      cfg.Timing.Debounce,
		ProbeTimeout:  cfg.Timing.ProbeTimeout,
		DialogCeiling: cfg.Timing.DialogCeiling,
		GoldReserve:   cfg.Npc.GoldReserve,
	}
	engine := npc.NewEngine(conn, model, catalog, banks.Npcs, rules, engineCfg, log)
	engine.SetSuppressed(!cfg.Npc.Interact)

	deps := &handler.Deps{
		Cfg:     cfg,
		Log:     log,
		Conn:    conn,
		Model:   model,
		Catalog: catalog,
		Classes: classes,
		Engine:  engine,
		Banks:   banks,
		Grid:    grid,
		Mirror:  mirror,
		Ctx:     ctx,
	}
	reg := packet.NewRegistry(log)
	handler.RegisterAll(reg, deps)

	// 8. Start the loops
	go engine.Run(ctx)

	maint := sched.New(conn, banks, engine, sched.Config{
		Keepalive:     cfg.Timing.Keepalive,
		FlushInterval: cfg.Timing.FlushInterval,
		SweepInterval: cfg.Timing.SweepInterval,
	}, log)
	go maint.Run(ctx)

	recvDone := make(chan struct{})
	go func() {
		defer close(recvDone)
		conn.ReceiveLoop(func(frame []byte) {
			reg.Dispatch(frame)
		})
	}()

	handler.StartHandshake(deps)

	// 9. Run until the connection drops or we are told to stop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdownCh:
		log.Info("shutdown signal", zap.String("signal", sig.String()))
		conn.Send(disconnectCmd())
	case <-recvDone:
		log.Info("connection lost")
	}

	cancel()
	if err := banks.FlushAll(); err != nil {
		log.Warn("final flush failed", zap.Error(err))
	}
	log.Info("client stopped")
	return nil
}

func disconnectCmd() *packet.Writer {
	return packet.NewWriter(packet.C_OPCODE_DISCONNECT)
}

func newLogger(cfg config.LoggingConfig, mirror *handler.Mirror) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build(zap.Hooks(mirror.Hook))
}
