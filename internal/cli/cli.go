package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/meshrules/pkg/buildinfo"
	"github.com/matzehuels/meshrules/pkg/cache"
	"github.com/matzehuels/meshrules/pkg/config"
	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/pipeline"
	"github.com/matzehuels/meshrules/pkg/store"
)

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
	// Out receives command output.
	Out io.Writer
	// Err receives progress indicators. It shares the logger's writer.
	Err io.Writer

	configPath string
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
		Err:    w,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "meshrules keeps scene manifest rules in sync with their scene graphs",
		Long: `meshrules processes scene graphs and the manifests of groups and rules
authored against them. It picks the vertex-color stream for advanced mesh
rules and repairs stream names that no longer exist in the scene.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.Out)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.updateCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.LogLevel())
	}
	return nil
}

// FormatError renders err for the terminal. Input errors get a usage hint.
func FormatError(err error) string {
	msg := styleIconError.Render(iconError) + " " + err.Error()
	if errors.Is(err, errors.ErrCodeInvalidInput) {
		msg += "\n  " + StyleDim.Render("run with --help for usage")
	}
	return msg
}

// =============================================================================
// Runner Factory
// =============================================================================

// backendOpts selects the cache and store for a command.
type backendOpts struct {
	noCache bool
	// sceneDir hosts manifest sidecars when the file store has no directory.
	sceneDir string
}

// newRunner builds a pipeline runner from the loaded configuration.
func (c *CLI) newRunner(ctx context.Context, opts backendOpts) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return nil, err
	}
	st, err := c.newStore(ctx, opts.sceneDir)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, st, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case c.cfg.Cache.RedisURL != "":
		c.Logger.Debug("using redis cache")
		return cache.NewRedisCache(ctx, cache.RedisOptions{URL: c.cfg.Cache.RedisURL, Prefix: config.AppName + ":"})
	case c.cfg.Cache.Dir == "":
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(c.cfg.Cache.Dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", c.cfg.Cache.Dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

func (c *CLI) newStore(ctx context.Context, sceneDir string) (store.Store, error) {
	if c.cfg.Store.Backend == config.BackendMongo {
		c.Logger.Debug("using mongo store", "database", c.cfg.Store.Database, "collection", c.cfg.Store.Collection)
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.cfg.Store.MongoURI,
			Database:   c.cfg.Store.Database,
			Collection: c.cfg.Store.Collection,
		})
	}
	dir := c.cfg.Store.Dir
	if dir == "" {
		dir = sceneDir
	}
	if dir == "" {
		dir = "."
	}
	return store.NewFileStore(dir)
}

// =============================================================================
// Paths
// =============================================================================

// sceneDir returns the directory of a scene path, or "" for stdin.
func sceneDir(path string) string {
	if path == "" || path == "-" {
		return ""
	}
	return filepath.Dir(path)
}

// readInput reads a scene argument. "-" reads stdin.
func readInput(cmd *cobra.Command, path string) (pipeline.Options, error) {
	if path != "-" {
		return pipeline.Options{ScenePath: path}, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("read stdin: %w", err)
	}
	return pipeline.Options{SceneData: data}, nil
}

// outputPath returns the output path, defaulting to the scene's base name
// with ext.
func outputPath(output, input, ext string) string {
	if output != "" {
		return output
	}
	if input == "-" {
		return "scene" + ext
	}
	base := filepath.Base(input)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base + ext
}
