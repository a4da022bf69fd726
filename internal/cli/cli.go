// Package cli implements the boxlayout command-line interface.
//
// # Commands
//
//   - compile: solve a layout description and print its frames
//   - render: write SVG, PNG, PDF, JSON or DOT artifacts
//   - explore: toggle flags interactively and watch the frames change
//   - serve: expose the pipeline over HTTP
//   - cache: manage the layout and artifact cache
//
// Defaults come from the TOML file at [config.Path], overridable with
// --config. All commands support --verbose (-v) for debug logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/pkg/buildinfo"
	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/config"
	"github.com/matzehuels/boxlayout/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "boxlayout"

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

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Boxlayout compiles declarative box layouts into solved frames",
		Long:         `Boxlayout reads nested stack descriptions, turns them into linear constraints and solves them for a given host size. Layouts can be inspected, rendered to SVG, PNG or PDF, or served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+defaultConfigHint()+")")

	root.AddCommand(c.compileCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func defaultConfigHint() string {
	if p, err := config.Path(); err == nil {
		return p
	}
	return "$XDG_CONFIG_HOME/" + appName + "/config.toml"
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			c.Logger.Debug("no config path", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, c.newKeyer(), c.Logger)
	if ttl, err := c.Config.Cache.TTLDuration(); err == nil {
		r.TTL = ttl
	}
	return r, nil
}

// newKeyer returns the cache keyer, scoped when the config sets a key prefix.
// A nil keyer lets the runner use the default one.
func (c *CLI) newKeyer() cache.Keyer {
	if c.Config.Cache.Prefix == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, c.Config.Cache.Prefix)
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, or
// XDG_CACHE_HOME/boxlayout, or the platform default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// solveOptions holds the flags shared by compile, render and explore.
type solveOptions struct {
	width  float64
	height float64
	set    []string
	strict bool
}

func (o *solveOptions) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&o.width, "width", 0, "host width (default from config, else 320)")
	cmd.Flags().Float64Var(&o.height, "height", 0, "host height (default from config, else 480)")
	cmd.Flags().StringArrayVar(&o.set, "set", nil, "set a flag: name or name=false (repeatable)")
	cmd.Flags().BoolVar(&o.strict, "strict", false, "fail instead of dropping unsatisfiable constraints")
}

// applySolveOptions fills the solve fields of opts from flags, then config.
func (c *CLI) applySolveOptions(o solveOptions, opts *pipeline.Options) error {
	flags, err := pipeline.ParseFlags(o.set)
	if err != nil {
		return err
	}
	opts.Flags = flags
	opts.Strict = o.strict
	opts.Width = firstNonZero(o.width, c.Config.Render.Width)
	opts.Height = firstNonZero(o.height, c.Config.Render.Height)
	return nil
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// readInput loads the description at path ("-" for stdin) into opts.
func readInput(path string, opts *pipeline.Options) error {
	src, err := pipeline.ReadSource(path, os.Stdin)
	if err != nil {
		return err
	}
	opts.Source = src
	opts.Filename = path
	if path == "-" {
		opts.Filename = "<stdin>"
	}
	return nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
