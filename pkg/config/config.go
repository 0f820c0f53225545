// Package config loads meshrules settings from a TOML file and the
// environment.
//
// Settings are resolved in order: built-in defaults, then the config file
// ($XDG_CONFIG_HOME/meshrules/config.toml unless a path is given), then
// MESHRULES_* environment variables. A missing file is not an error.
//
//	[log]
//	level = "info"
//
//	[cache]
//	dir = "~/.cache/meshrules"
//	ttl = "168h"
//	redis_url = ""
//
//	[store]
//	backend = "file"          # or "mongo"
//	dir = ""                  # empty: next to each scene file
//	mongo_uri = "mongodb://localhost:27017"
//	database = "meshrules"
//	collection = "manifests"
//
//	[server]
//	addr = ":8080"
//
//	[import]
//	game_root = ""
//	drop_root = ""            # empty: the server refuses import checks
package config

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshrules/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "meshrules"

// Store backends.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Config is the full settings tree.
type Config struct {
	Log    LogConfig    `toml:"log"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
	Import ImportConfig `toml:"import"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type CacheConfig struct {
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

type StoreConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type ImportConfig struct {
	GameRoot string `toml:"game_root"`
	// DropRoot bounds the paths the server will inspect for import checks.
	DropRoot string `toml:"drop_root"`
}

// Duration is a time.Duration written as a Go duration string ("36h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Cache:  CacheConfig{Dir: defaultCacheDir(), TTL: Duration{7 * 24 * time.Hour}},
		Store:  StoreConfig{Backend: BackendFile, Database: AppName, Collection: "manifests"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/meshrules/config.toml, falling back to
// ~/.config.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", AppName, "config.toml")
}

func defaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", AppName)
}

// Load resolves the configuration. An empty path means [DefaultPath].
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case os.IsNotExist(err) && !explicit:
			// Defaults only.
		case os.IsNotExist(err):
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		case err != nil:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		default:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Store.Dir = expandHome(cfg.Store.Dir)
	cfg.Import.GameRoot = expandHome(cfg.Import.GameRoot)
	cfg.Import.DropRoot = expandHome(cfg.Import.DropRoot)
	return cfg, cfg.Validate()
}

// Parse decodes TOML text on top of the defaults. Environment variables are
// not consulted.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"MESHRULES_LOG_LEVEL":        &c.Log.Level,
		"MESHRULES_CACHE_DIR":        &c.Cache.Dir,
		"MESHRULES_REDIS_URL":        &c.Cache.RedisURL,
		"MESHRULES_STORE_BACKEND":    &c.Store.Backend,
		"MESHRULES_STORE_DIR":        &c.Store.Dir,
		"MESHRULES_MONGO_URI":        &c.Store.MongoURI,
		"MESHRULES_MONGO_DATABASE":   &c.Store.Database,
		"MESHRULES_MONGO_COLLECTION": &c.Store.Collection,
		"MESHRULES_SERVER_ADDR":      &c.Server.Addr,
		"MESHRULES_GAME_ROOT":        &c.Import.GameRoot,
		"MESHRULES_DROP_ROOT":        &c.Import.DropRoot,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	if v, ok := lookup("MESHRULES_CACHE_TTL"); ok {
		if err := c.Cache.TTL.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "MESHRULES_CACHE_TTL")
		}
	}
	return nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	switch c.Store.Backend {
	case BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend must be %q or %q, got %q", BackendFile, BackendMongo, c.Store.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return nil
}

// LogLevel returns the parsed log level, or info if it is invalid.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
