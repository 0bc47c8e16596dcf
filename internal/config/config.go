package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Account AccountConfig `toml:"account"`
	Timing  TimingConfig  `toml:"timing"`
	Paths   PathsConfig   `toml:"paths"`
	Npc     NpcConfig     `toml:"npc"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Address string `toml:"address"`
	Version int32  `toml:"version"` // client version sent in the handshake
}

type AccountConfig struct {
	Name      string `toml:"name"`
	Password  string `toml:"password"`
	Character string `toml:"character"`
	Class     int    `toml:"class"`  // used when the character must be created
	Gender    int    `toml:"gender"` // 0=male, 1=female
}

type TimingConfig struct {
	WriteTimeout  time.Duration `toml:"write_timeout"`
	Keepalive     time.Duration `toml:"keepalive"`
	FlushInterval time.Duration `toml:"flush_interval"`
	SweepInterval time.Duration `toml:"sweep_interval"`
	OpenTimeout   time.Duration `toml:"open_timeout"`
	Debounce      time.Duration `toml:"debounce"`
	ProbeTimeout  time.Duration `toml:"probe_timeout"`
	DialogCeiling time.Duration `toml:"dialog_ceiling"`
}

type PathsConfig struct {
	DataDir    string `toml:"data_dir"`
	CacheDir   string `toml:"cache_dir"`
	ScriptsDir string `toml:"scripts_dir"`
}

type NpcConfig struct {
	Interact    bool `toml:"interact"`
	GoldReserve int  `toml:"gold_reserve"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Address: "127.0.0.1:7000",
			Version: 380,
		},
		Timing: TimingConfig{
			WriteTimeout:  10 * time.Second,
			Keepalive:     20 * time.Second,
			FlushInterval: 30 * time.Second,
			SweepInterval: time.Second,
			OpenTimeout:   4 * time.Second,
			Debounce:      300 * time.Millisecond,
			ProbeTimeout:  5 * time.Second,
			DialogCeiling: 10 * time.Second,
		},
		Paths: PathsConfig{
			DataDir:    "data",
			CacheDir:   "cache",
			ScriptsDir: "scripts",
		},
		Npc: NpcConfig{
			Interact:    true,
			GoldReserve: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
