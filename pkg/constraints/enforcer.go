package constraints

import (
	"context"
	"io"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peerpin/pkg/errors"
	"github.com/matzehuels/peerpin/pkg/observability"
	"github.com/matzehuels/peerpin/pkg/semverrange"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

// Defaults for Options.
const (
	DefaultConfigDir = "configs"
	DefaultMaxPasses = 5
)

// DefaultScripts are the scripts every public workspace must define.
var DefaultScripts = []string{"pack-package", "publish-packed-package"}

// Options configures an Enforcer.
type Options struct {
	// Oracle answers range questions (default: semverrange.Oracle).
	Oracle Oracle

	// Version switches the enforcer to version mode: only SetVersionsRule
	// runs.
	Version string

	// ConfigDirs are the directory prefixes of configuration workspaces
	// (default: "configs").
	ConfigDirs []string

	// RequiredScripts are the scripts every public workspace must define
	// (default: DefaultScripts).
	RequiredScripts []string

	// Debug dumps the aggregated requirements of every workspace to
	// DebugOutput (default: os.Stderr).
	Debug       bool
	DebugOutput io.Writer

	Logger *log.Logger // default: log.Default()
}

// WithDefaults returns a copy of Options with zero values replaced by
// defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Oracle == nil {
		opts.Oracle = semverrange.Oracle{}
	}
	if opts.ConfigDirs == nil {
		opts.ConfigDirs = []string{DefaultConfigDir}
	}
	if opts.RequiredScripts == nil {
		opts.RequiredScripts = slices.Clone(DefaultScripts)
	}
	if opts.DebugOutput == nil {
		opts.DebugOutput = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Result is the outcome of an enforcement run.
type Result struct {
	Mutations []Mutation // Pending writes relative to the input graph
	Passes    int        // Passes run
}

// Enforcer runs the constraint rules over a workspace graph.
type Enforcer struct {
	opts  Options
	rules []Rule
}

// New creates an Enforcer.
func New(opts Options) *Enforcer {
	opts = opts.WithDefaults()
	return &Enforcer{opts: opts, rules: rulesFor(opts)}
}

func rulesFor(opts Options) []Rule {
	if opts.Version != "" {
		return []Rule{SetVersionsRule{Version: opts.Version}}
	}
	return []Rule{
		PeerDependenciesRule{},
		DevDependenciesSatisfyPeersRule{},
		ConfigPeersRule{Prefixes: opts.ConfigDirs},
		PackScriptsRule{Scripts: opts.RequiredScripts},
	}
}

// Rules returns the rules in the order they run.
func (e *Enforcer) Rules() []Rule { return slices.Clone(e.rules) }

// Enforce runs every rule once over g and returns the writes that would make
// it consistent. g is not modified. On error no mutations are returned.
func (e *Enforcer) Enforce(ctx context.Context, g *workspace.Graph) ([]Mutation, error) {
	return e.pass(ctx, g, 1)
}

// EnforceUntilStable runs passes over a copy of g, applying each pass's
// writes, until a pass changes nothing. It fails with NOT_CONVERGED when
// maxPasses passes still produce changes. The returned mutations are
// relative to g, which is not modified.
func (e *Enforcer) EnforceUntilStable(ctx context.Context, g *workspace.Graph, maxPasses int) (*Result, error) {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	work := g.Clone()
	total := NewRecorder(g)
	for n := 1; n <= maxPasses; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		muts, err := e.pass(ctx, work, n)
		if err != nil {
			return nil, err
		}
		if len(muts) == 0 {
			return &Result{Mutations: total.Mutations(), Passes: n}, nil
		}
		for _, m := range muts {
			total.Set(m.Workspace, m.Path, m.Value)
		}
		if err := work.Apply(muts); err != nil {
			return nil, err
		}
	}
	return nil, errors.New(errors.ErrCodeNotConverged, "constraints still changing after %d passes", maxPasses)
}

func (e *Enforcer) pass(ctx context.Context, g *workspace.Graph, n int) ([]Mutation, error) {
	hooks := observability.Enforce()
	hooks.OnPassStart(ctx, n)
	logger := e.opts.Logger.With("pass", n)

	rec := NewRecorder(g)
	p := &Pass{Graph: g, Oracle: e.opts.Oracle, Options: e.opts, rec: rec}
	p.Options.Logger = logger
	for _, rule := range e.rules {
		p.rule = rule.Name()
		before := rec.Len()
		start := time.Now()
		err := rule.Apply(p)
		hooks.OnRuleComplete(ctx, rule.Name(), rec.Len()-before, time.Since(start), err)
		if err != nil {
			return nil, err
		}
		logger.Debug("rule complete", "rule", rule.Name(), "writes", rec.Len()-before)
	}

	muts := rec.Mutations()
	for _, m := range muts {
		hooks.OnMutation(ctx, m.Workspace, m.Path, m.Value)
	}
	return muts, nil
}
