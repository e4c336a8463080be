package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timeslice/pkg/buildinfo"
	"github.com/matzehuels/timeslice/pkg/cache"
	"github.com/matzehuels/timeslice/pkg/config"
	"github.com/matzehuels/timeslice/pkg/errors"
	"github.com/matzehuels/timeslice/pkg/fonts"
	"github.com/matzehuels/timeslice/pkg/pipeline"
	"github.com/matzehuels/timeslice/pkg/stats"
	"github.com/matzehuels/timeslice/pkg/store/open"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags
	configPath string
	storage    string
	dataDir    string
	noCache    bool

	now func() time.Time
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		now:    time.Now,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Timeslice tracks where your time goes",
		Long: `Timeslice records how many minutes you spend per category each day and
draws donut charts of any day, week, month or year.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	pf.StringVar(&c.storage, "storage", "", "storage backend: file, bolt, redis, mongo")
	pf.StringVar(&c.dataDir, "data-dir", "", "data directory for file and bolt storage")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable caching")

	// Register all subcommands
	root.AddCommand(c.logCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.categoriesCommand())
	root.AddCommand(c.chartCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.tasksCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies the global flags on top.
func (c *CLI) loadConfig() (*config.Loaded, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	for _, key := range cfg.Undecoded {
		c.Logger.Warn("unknown config key", "key", key, "file", cfg.Path)
	}
	if c.storage != "" {
		cfg.Storage.Type = c.storage
	}
	if c.dataDir != "" {
		cfg.Storage.DataDir = c.dataDir
	}
	if c.noCache {
		cfg.Cache.Type = config.CacheNone
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "file", cfg.Path, "storage", cfg.Storage.Type, "cache", cfg.Cache.Type)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner opens the configured store and cache and wraps them in a
// pipeline runner. The caller must Close it.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	st, err := open.Store(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(st, c.newCache(ctx, cfg), cache.NewVersionedKeyer(), c.Logger)
	runner.ArtifactTTL = cfg.Cache.TTL
	return runner, nil
}

// newCache builds the configured cache. Cache setup failures degrade to no
// caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config) cache.Cache {
	var (
		ch  cache.Cache
		err error
	)
	switch cfg.Cache.Type {
	case config.CacheNone:
		return cache.NewNullCache()
	case config.CacheMemory:
		ch, err = cache.NewMemoryCache(cfg.Cache.Size)
	case config.CacheRedis:
		ch, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
	default:
		ch, err = cache.NewFileCache(config.CacheDir())
	}
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "type", cfg.Cache.Type, "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// =============================================================================
// Options Helpers
// =============================================================================

// chartDefaults applies the configured annotations and the resolved font.
func chartDefaults(opts *pipeline.Options, cfg config.ChartConfig) {
	opts.UnitLabel = cfg.UnitLabel
	opts.UnitSuffix = cfg.UnitSuffix
	opts.LegendTitle = cfg.LegendTitle
	if opts.Scale == 0 {
		opts.Scale = cfg.Scale
	}
	font := fonts.Resolve(cfg.Fonts...)
	opts.Font = font.Family
	if font.Installed() {
		opts.FontFile = font.Path
		opts.BoldFontFile = font.Bold()
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseDay resolves a date argument relative to the CLI clock.
func (c *CLI) parseDay(s string) (time.Time, error) {
	day, err := stats.ParseDay(s, c.now())
	if err != nil {
		return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "invalid date %q (want YYYY.MM.DD, today or yesterday)", s)
	}
	return day, nil
}

// withRunner loads the configuration, opens a runner and closes it once fn
// returns.
func (c *CLI) withRunner(ctx context.Context, fn func(cfg *config.Loaded, r *pipeline.Runner) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg.Config)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			c.Logger.Warn("close", "err", err)
		}
	}()
	return fn(cfg, runner)
}
