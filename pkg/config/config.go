// Package config loads timeslice settings from a TOML file and the
// environment.
//
// Settings are resolved in increasing priority: built-in defaults, the
// config file ($XDG_CONFIG_HOME/timeslice/config.toml), TIMESLICE_*
// environment variables, and finally command-line flags applied by the
// caller.
//
//	[storage]
//	type = "bolt"            # file | bolt | redis | mongo
//	data_dir = "~/timeslice"
//
//	[chart]
//	fonts = ["Inter", "DejaVu Sans"]
//
//	[cache]
//	type = "memory"          # file | memory | redis | none
//	ttl = "24h"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	tserrors "github.com/matzehuels/timeslice/pkg/errors"
)

// AppName names the config, data and cache directories.
const AppName = "timeslice"

// Storage backends.
const (
	StorageFile  = "file"
	StorageBolt  = "bolt"
	StorageRedis = "redis"
	StorageMongo = "mongo"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// StorageTypes lists the supported storage backends.
var StorageTypes = []string{StorageFile, StorageBolt, StorageRedis, StorageMongo}

// CacheTypes lists the supported cache backends.
var CacheTypes = []string{CacheFile, CacheMemory, CacheRedis, CacheNone}

// Config is the full application configuration.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Chart   ChartConfig   `toml:"chart"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Type    string      `toml:"type"`
	DataDir string      `toml:"data_dir"`
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// RedisConfig holds connection settings shared by the redis store and cache.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password,omitempty"`
	DB       int    `toml:"db"`
}

// MongoConfig holds connection settings for the mongo store.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ChartConfig customizes chart annotations and fonts.
type ChartConfig struct {
	UnitLabel   string   `toml:"unit_label"`
	UnitSuffix  string   `toml:"unit_suffix"`
	LegendTitle string   `toml:"legend_title"`
	Fonts       []string `toml:"fonts"`
	Scale       float64  `toml:"scale"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// CacheConfig selects and sizes the artifact cache.
type CacheConfig struct {
	Type string        `toml:"type"`
	TTL  time.Duration `toml:"ttl"`
	Size int           `toml:"size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type:    StorageFile,
			DataDir: DataDir(),
			Redis:   RedisConfig{Addr: "localhost:6379"},
			Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: AppName},
		},
		Chart: ChartConfig{
			UnitLabel:   "hours",
			UnitSuffix:  "h",
			LegendTitle: "Breakdown",
			Scale:       1,
		},
		Server: ServerConfig{
			Addr:            "localhost:8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Type: CacheFile,
			TTL:  7 * 24 * time.Hour,
			Size: 256,
		},
	}
}

// Loaded is a configuration plus details about where it came from.
type Loaded struct {
	*Config
	Path      string   // file that was read; empty when none existed
	Undecoded []string // keys present in the file but unknown
}

// Load reads the config file at path (ConfigPath() when empty), layers it
// over the defaults, and applies environment overrides. A missing file is
// not an error.
func Load(path string) (*Loaded, error) {
	return load(path, os.Getenv)
}

func load(path string, getenv func(string) string) (*Loaded, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigPath()
	}

	out := &Loaded{Config: Default()}
	md, err := toml.DecodeFile(path, out.Config)
	switch {
	case err == nil:
		out.Path = path
		for _, k := range md.Undecoded() {
			out.Undecoded = append(out.Undecoded, k.String())
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return nil, tserrors.Wrap(tserrors.ErrCodeInvalidConfig, err, "config file %s not found", path)
	default:
		return nil, tserrors.Wrap(tserrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if err := out.applyEnv(getenv); err != nil {
		return nil, err
	}
	out.Storage.DataDir = expandHome(out.Storage.DataDir)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set("TIMESLICE_STORAGE", &c.Storage.Type)
	set("TIMESLICE_DATA_DIR", &c.Storage.DataDir)
	set("TIMESLICE_REDIS_ADDR", &c.Storage.Redis.Addr)
	set("TIMESLICE_REDIS_PASSWORD", &c.Storage.Redis.Password)
	set("TIMESLICE_MONGO_URI", &c.Storage.Mongo.URI)
	set("TIMESLICE_SERVER_ADDR", &c.Server.Addr)
	set("TIMESLICE_CACHE", &c.Cache.Type)

	if v := strings.TrimSpace(getenv("TIMESLICE_REDIS_DB")); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return tserrors.Wrap(tserrors.ErrCodeInvalidConfig, err, "TIMESLICE_REDIS_DB must be an integer")
		}
		c.Storage.Redis.DB = db
	}
	return nil
}

// Validate checks enumerated settings and ranges.
func (c *Config) Validate() error {
	if !slices.Contains(StorageTypes, c.Storage.Type) {
		return tserrors.New(tserrors.ErrCodeInvalidConfig, "unknown storage type %q (must be one of: %s)",
			c.Storage.Type, strings.Join(StorageTypes, ", "))
	}
	if !slices.Contains(CacheTypes, c.Cache.Type) {
		return tserrors.New(tserrors.ErrCodeInvalidConfig, "unknown cache type %q (must be one of: %s)",
			c.Cache.Type, strings.Join(CacheTypes, ", "))
	}
	if (c.Storage.Type == StorageFile || c.Storage.Type == StorageBolt) && c.Storage.DataDir == "" {
		return tserrors.New(tserrors.ErrCodeInvalidConfig, "storage.data_dir is required for %s storage", c.Storage.Type)
	}
	if c.Chart.Scale <= 0 {
		return tserrors.New(tserrors.ErrCodeInvalidConfig, "chart.scale must be positive")
	}
	if c.Cache.TTL < 0 {
		return tserrors.New(tserrors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	return nil
}

// Save writes c as TOML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// =============================================================================
// Paths
// =============================================================================

// ConfigPath returns the config file path using the XDG standard
// (~/.config/timeslice/config.toml).
func ConfigPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.toml")
}

// DataDir returns the default data directory (~/.local/share/timeslice).
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// CacheDir returns the cache directory (~/.cache/timeslice).
func CacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, fallback, AppName)
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
