// Package config loads todo settings from defaults, a TOML file, the
// environment and command-line flags, in that order.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const (
	BackendSQLite = "sqlite"
	BackendNone   = "none"

	DefaultTheme    = "classic"
	DefaultLogLevel = "info"
	EnvPrefix       = "TODO"
)

type Storage struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type UI struct {
	Theme   string `toml:"theme"`
	Group   bool   `toml:"group"`
	NoColor bool   `toml:"no_color"`
}

// Config holds everything the CLI and the TUI need at startup.
type Config struct {
	Env     string  `toml:"env"` // "development" or "production"
	Storage Storage `toml:"storage"`
	Log     Log     `toml:"log"`
	UI      UI      `toml:"ui"`
}

func (c *Config) IsDevelopment() bool { return c.Env != "production" }

// Load builds a Config from:
// 1. Defaults
// 2. Config file (-config flag, else $XDG_CONFIG_HOME/todo/config.toml when present)
// 3. Environment variables (TODO_*)
// 4. CLI flags
//
// The returned args are the positional arguments left after flag parsing.
func Load(fs *flag.FlagSet, args []string) (*Config, []string, error) {
	cfg := &Config{}
	setDefaults(cfg)

	configFile := fs.String("config", "", "path to a TOML config file")
	dbPath := fs.String("db", "", "path to the SQLite database file")
	theme := fs.String("theme", "", "output theme: classic, neon or mono")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	group := fs.Bool("group", cfg.UI.Group, "group `ls` output by pending/done")
	noColor := fs.Bool("no-color", false, "disable colored output")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parsing flags: %w", err)
	}

	path := *configFile
	if path == "" {
		path = findUserConfigFile()
	}
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			return nil, nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	// Flags override everything, but only the ones actually set.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.Storage.Path = *dbPath
		case "theme":
			cfg.UI.Theme = *theme
		case "log-level":
			cfg.Log.Level = *logLevel
		case "group":
			cfg.UI.Group = *group
		case "no-color":
			cfg.UI.NoColor = *noColor
		}
	})

	if err := finalize(cfg); err != nil {
		return nil, nil, err
	}
	return cfg, fs.Args(), nil
}

func setDefaults(cfg *Config) {
	cfg.Env = "production"
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.Path = filepath.Join(dataDir(), "todo.db")
	cfg.Log.Level = DefaultLogLevel
	cfg.UI.Theme = DefaultTheme
	cfg.UI.Group = true
}

func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	return nil
}

// loadFromEnv applies TODO_* variables through viper. Keys use dots
// internally and underscores in the environment (storage.path -> TODO_STORAGE_PATH).
func loadFromEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("env"); s != "" {
		cfg.Env = s
	}
	if s := v.GetString("storage.backend"); s != "" {
		cfg.Storage.Backend = s
	}
	// TODO_DB_PATH is the short spelling; TODO_STORAGE_PATH also works.
	if s := v.GetString("storage.path"); s != "" {
		cfg.Storage.Path = s
	}
	if s := v.GetString("db.path"); s != "" {
		cfg.Storage.Path = s
	}
	if s := v.GetString("log.level"); s != "" {
		cfg.Log.Level = s
	}
	if s := v.GetString("log.file"); s != "" {
		cfg.Log.File = s
	}
	if s := v.GetString("theme"); s != "" {
		cfg.UI.Theme = s
	}
	if v.IsSet("no_color") {
		cfg.UI.NoColor = v.GetBool("no_color")
	}
}

func finalize(cfg *Config) error {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	switch cfg.Storage.Backend {
	case BackendSQLite, BackendNone:
	default:
		return fmt.Errorf("unknown storage backend %q (want %q or %q)",
			cfg.Storage.Backend, BackendSQLite, BackendNone)
	}
	if strings.TrimSpace(cfg.Storage.Path) == "" {
		return errors.New("storage path is empty")
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(filepath.Dir(cfg.Storage.Path), "todo.log")
	}
	cfg.Log.File = expandHome(cfg.Log.File)
	return nil
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "todo")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "todo")
}

func findUserConfigFile() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	p := filepath.Join(dir, "todo", "config.toml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
