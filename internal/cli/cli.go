// Package cli implements the gatewalk command-line interface.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gatewalk/pkg/buildinfo"
	"github.com/matzehuels/gatewalk/pkg/cache"
	"github.com/matzehuels/gatewalk/pkg/config"
	"github.com/matzehuels/gatewalk/pkg/errors"
	gwio "github.com/matzehuels/gatewalk/pkg/io"
	"github.com/matzehuels/gatewalk/pkg/library"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/query"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "gatewalk"
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

	configPath  string
	libraryPath string
	verbose     bool

	cfg *config.Config
	lib *netlist.GateLibrary
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
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
		Use:          appName,
		Short:        "Gatewalk traverses gate-level netlists",
		Long:         `Gatewalk answers reachability questions over gate-level netlists: sequential successors, structural paths, gate chains, shortest paths and distances over a precomputed abstraction.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/gatewalk/config.toml)")
	flags.StringVar(&c.libraryPath, "library", "", "gate library file (.toml, .yaml); overrides the config")

	root.AddCommand(c.statsCommand())
	root.AddCommand(c.seqCommand())
	root.AddCommand(c.seqmapCommand())
	root.AddCommand(c.pathCommand())
	root.AddCommand(c.shortestCommand())
	root.AddCommand(c.chainCommand())
	root.AddCommand(c.subgraphCommand())
	root.AddCommand(c.abstractCommand())
	root.AddCommand(c.distanceCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup applies the log level, loads the configuration and attaches the
// logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.libraryPath == "" {
		c.libraryPath = cfg.Library
	}
	c.lib = nil
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Inputs
// =============================================================================

// library returns the gate library selected by --library or the config, and
// the built-in library otherwise.
func (c *CLI) library() (*netlist.GateLibrary, error) {
	if c.lib != nil {
		return c.lib, nil
	}
	if c.libraryPath == "" {
		c.lib = library.Default()
		return c.lib, nil
	}
	lib, err := library.Load(c.libraryPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded gate library", "path", c.libraryPath, "types", len(lib.GateTypes()))
	c.lib = lib
	return lib, nil
}

// design is a loaded netlist together with the fingerprint of its source.
type design struct {
	nl   *netlist.Netlist
	hash string
}

// loadNetlist reads a netlist interchange file. The fingerprint covers the
// file and the library name, so cache entries do not outlive either.
func (c *CLI) loadNetlist(ctx context.Context, path string) (*design, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	lib, err := c.library()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "netlist file not found: %s", path)
		}
		return nil, fmt.Errorf("read netlist: %w", err)
	}
	prog := newProgress(loggerFromContext(ctx))
	nl, err := gwio.ReadJSON(bytes.NewReader(data), lib)
	if err != nil {
		return nil, errors.Context(err, "%s", path)
	}
	prog.doneDebug(fmt.Sprintf("Loaded %s: %d gates, %d nets", filepath.Base(path), nl.NumGates(), nl.NumNets()))
	return &design{nl: nl, hash: cache.Hash(append(data, lib.Name()...))}, nil
}

// traversal returns a traversal that logs at debug level.
func (c *CLI) traversal(nl *netlist.Netlist) *traversal.Traversal {
	return traversal.New(nl, traversal.WithLogger(c.Logger))
}

// resolveGate finds a gate by name or by "#id".
func resolveGate(nl *netlist.Netlist, ref string) (*netlist.Gate, error) {
	if ref == "" {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "no gate given")
	}
	if rest, ok := strings.CutPrefix(ref, "#"); ok {
		id, err := strconv.ParseUint(rest, 10, 32)
		if err != nil {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "invalid gate id %q", ref)
		}
		g := nl.Gate(netlist.GateID(id))
		if g == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "no gate with id %d", id)
		}
		return g, nil
	}
	matches := nl.GatesWhere(func(g *netlist.Gate) bool { return g.Name() == ref })
	switch len(matches) {
	case 0:
		return nil, errors.New(errors.ErrCodeNotFound, "no gate named %q", ref)
	case 1:
		return matches[0], nil
	}
	return nil, errors.New(errors.ErrCodeInvalidArgument, "gate name %q is ambiguous (%d gates); use #id", ref, len(matches))
}

// selectGates resolves either a single gate reference or a filter expression.
func selectGates(nl *netlist.Netlist, ref, expr string) ([]*netlist.Gate, error) {
	switch {
	case ref != "" && expr != "":
		return nil, errors.New(errors.ErrCodeInvalidArgument, "--gate and --filter are mutually exclusive")
	case ref != "":
		g, err := resolveGate(nl, ref)
		if err != nil {
			return nil, err
		}
		return []*netlist.Gate{g}, nil
	case expr != "":
		f, err := query.Compile(expr, nl)
		if err != nil {
			return nil, err
		}
		return nl.GatesWhere(f), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidArgument, "select gates with --gate or --filter")
}

// parsePinTypes parses a comma-separated list of pin types.
func parsePinTypes(list []string) ([]netlist.PinType, error) {
	out := make([]netlist.PinType, 0, len(list))
	for _, s := range list {
		pt, err := netlist.ParsePinType(strings.ToLower(strings.TrimSpace(s)))
		if err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, nil
}

// parseProperties parses a comma-separated list of gate type properties.
func parseProperties(list []string) ([]netlist.Property, error) {
	out := make([]netlist.Property, 0, len(list))
	for _, s := range list {
		p, err := netlist.ParseProperty(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the result cache selected by the config.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.cfg.Cache.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:      c.cfg.Cache.RedisAddr,
			KeyPrefix: appName + ":",
		})
		if err != nil {
			return nil, err
		}
		return cache.Instrument(rc), nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return cache.Instrument(fc), nil
	}
}

// keyer scopes cache keys by build version so entries written by another
// release are never read back.
func keyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version)
}

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg != nil && c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gatewalk/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
