package cli

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/matzehuels/peerpin/pkg/buildinfo"
	"github.com/matzehuels/peerpin/pkg/cache"
	"github.com/matzehuels/peerpin/pkg/config"
	"github.com/matzehuels/peerpin/pkg/constraints"
	"github.com/matzehuels/peerpin/pkg/errors"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

// workspaceFlags are the persistent flags shared by every command that
// loads a workspace.
type workspaceFlags struct {
	dir        string
	version    string
	debug      bool
	maxPasses  int
	singlePass bool
}

func (f *workspaceFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.dir, "cwd", "C", ".", "workspace root")
	fs.StringVar(&f.version, "set-version", "", "set every public workspace to this version instead of enforcing constraints")
	fs.BoolVar(&f.debug, "debug", false, "dump aggregated peer requirements while enforcing")
	fs.IntVar(&f.maxPasses, "max-passes", constraints.DefaultMaxPasses, "maximum enforcement passes before giving up")
	fs.BoolVar(&f.singlePass, "single-pass", false, "run the rules once instead of until the workspace is stable")
}

// overrides returns the settings given explicitly on the command line.
func (f *workspaceFlags) overrides(fs *pflag.FlagSet) config.Overrides {
	var o config.Overrides
	if fs.Changed("set-version") {
		o.Version = &f.version
	}
	if fs.Changed("debug") {
		o.Debug = &f.debug
	}
	if fs.Changed("max-passes") {
		o.MaxPasses = &f.maxPasses
	}
	return o
}

// project is a loaded workspace plus the settings in effect for one run.
type project struct {
	root   string
	cfg    config.Config
	graph  *workspace.Graph
	runID  string
	logger *log.Logger

	singlePass bool
}

// openProject resolves settings and loads the workspace graph.
func openProject(ctx context.Context, flags *workspaceFlags, fs *pflag.FlagSet) (*project, error) {
	root, err := filepath.Abs(flags.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", flags.dir)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if err := cfg.Override(flags.overrides(fs)); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := loggerFromContext(ctx).With("run", runID[:8])
	logger.Debug("settings", "peerpin", buildinfo.Version, "root", root, "version", cfg.Version, "max_passes", cfg.MaxPasses, "config_dirs", cfg.ConfigDirs)

	prog := newProgress(logger)
	g, err := workspace.Load(ctx, root, workspace.LoadOptions{Logger: logger})
	if err != nil {
		return nil, err
	}
	prog.done("Loaded workspaces", "count", len(g.Workspaces()))

	return &project{
		root:       root,
		cfg:        cfg,
		graph:      g,
		runID:      runID,
		logger:     logger,
		singlePass: flags.singlePass,
	}, nil
}

func (p *project) enforcer() *constraints.Enforcer {
	opts := p.cfg.EnforceOptions()
	opts.Logger = p.logger
	return constraints.New(opts)
}

// enforce runs the rules and returns the pending mutations relative to the
// loaded graph.
func (p *project) enforce(ctx context.Context) (*constraints.Enforcer, *constraints.Result, error) {
	e := p.enforcer()
	prog := newProgress(p.logger)
	if p.singlePass {
		muts, err := e.Enforce(ctx, p.graph)
		if err != nil {
			return nil, nil, err
		}
		prog.done("Enforced constraints", "changes", len(muts), "passes", 1)
		return e, &constraints.Result{Mutations: muts, Passes: 1}, nil
	}
	res, err := e.EnforceUntilStable(ctx, p.graph, p.cfg.MaxPasses)
	if err != nil {
		return nil, nil, err
	}
	prog.done("Enforced constraints", "changes", len(res.Mutations), "passes", res.Passes)
	return e, res, nil
}

// checkKey identifies a check over the current manifests with the current
// settings.
func (p *project) checkKey() (string, error) {
	fp, err := p.graph.Fingerprint()
	if err != nil {
		return "", err
	}
	settings, err := json.Marshal(struct {
		Config     config.Config
		SinglePass bool
	}{p.cfg, p.singlePass})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode settings")
	}
	return cache.CheckKey(p.root, fp+":"+cache.Hash(settings)), nil
}
