package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/peerpin/pkg/buildinfo"
	"github.com/matzehuels/peerpin/pkg/cache"
	"github.com/matzehuels/peerpin/pkg/observability"
)

// appName names the binary and the cache directory.
const appName = "peerpin"

// Levels for New and SetLogLevel, so main need not import the log package.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI carries what every command shares.
type CLI struct {
	Logger *log.Logger
}

// New returns a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand builds the peerpin command tree.
func (c *CLI) RootCommand() *cobra.Command {
	var flags workspaceFlags

	root := &cobra.Command{
		Use:   appName,
		Short: "peerpin keeps dependency ranges consistent across a workspace",
		Long: `peerpin enforces dependency-version constraints in a multi-package JavaScript workspace.

Peer requirements of every dependency are propagated to its consumers,
conflicting ranges are reconciled into the strictest admissible one, and
manifests are rewritten to match.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.registerHooks()
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	flags.register(root.PersistentFlags())

	root.AddCommand(c.checkCommand(&flags))
	root.AddCommand(c.fixCommand(&flags))
	root.AddCommand(c.explainCommand(&flags))
	root.AddCommand(c.graphCommand(&flags))
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// registerHooks forwards engine events to the debug log.
func (c *CLI) registerHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetEnforceHooks(h)
	observability.SetLoadHooks(h)
}

// newCache opens the check-result cache, pruning expired entries.
func newCache(noCache bool, logger *log.Logger) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		logger.Debug("caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	if n, err := fc.Prune(); err == nil && n > 0 {
		logger.Debug("pruned cache", "entries", n)
	}
	return fc, nil
}

// cacheDir is $XDG_CACHE_HOME/peerpin, falling back to ~/.cache/peerpin.
func cacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, appName), nil
}
