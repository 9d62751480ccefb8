package workspace

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/peerpin/pkg/errors"
	"github.com/matzehuels/peerpin/pkg/observability"
)

const (
	manifestName     = "package.json"
	pnpmWorkspaceYML = "pnpm-workspace.yaml"
	nodeModules      = "node_modules"

	// DefaultConcurrency bounds how many manifests are read at once.
	DefaultConcurrency = 8
)

// LoadOptions configures Load.
type LoadOptions struct {
	Concurrency int         // Parallel manifest reads (default: 8)
	Logger      *log.Logger // Warnings about suspicious manifests (default: log.Default())
}

// WithDefaults returns a copy of LoadOptions with zero values replaced by
// defaults.
func (o LoadOptions) WithDefaults() LoadOptions {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return opts
}

// Load reads the workspace rooted at root and resolves its dependency graph.
//
// Workspaces are taken from the root package.json "workspaces" field, or from
// pnpm-workspace.yaml when the field is absent. The root package is always a
// workspace. External dependencies are resolved through node_modules, walking
// up from each workspace to the root; dependencies that are not installed
// stay unresolved.
func Load(ctx context.Context, root string, opts LoadOptions) (*Graph, error) {
	opts = opts.WithDefaults()
	start := time.Now()

	g, err := load(ctx, root, opts)
	n := 0
	if g != nil {
		n = len(g.Workspaces())
	}
	observability.Load().OnLoadComplete(ctx, root, n, time.Since(start), err)
	return g, err
}

func load(ctx context.Context, root string, opts LoadOptions) (*Graph, error) {

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}

	rootManifest, err := readManifest(filepath.Join(abs, manifestName))
	if err != nil {
		return nil, err
	}

	patterns := rootManifest.Workspaces
	if len(patterns) == 0 {
		if patterns, err = pnpmPatterns(abs); err != nil {
			return nil, err
		}
	}
	dirs, err := expandPatterns(abs, patterns)
	if err != nil {
		return nil, err
	}

	manifests := make([]*Manifest, len(dirs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)
	for i, dir := range dirs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := readManifest(filepath.Join(abs, filepath.FromSlash(dir), manifestName))
			if err != nil {
				return err
			}
			manifests[i] = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	g := NewGraph(abs)
	if _, err := g.AddWorkspace(".", rootManifest); err != nil {
		return nil, err
	}
	for i, dir := range dirs {
		if _, err := g.AddWorkspace(dir, manifests[i]); err != nil {
			return nil, err
		}
	}
	for _, w := range g.Workspaces() {
		if err := w.Manifest.Validate(); err != nil {
			opts.Logger.Warn("inconsistent manifest", "workspace", w.Ident(), "err", errors.UserMessage(err))
		}
	}

	lookup := newNodeModulesLookup(abs)
	if err := g.Link(lookup.find); err != nil {
		return nil, err
	}
	opts.Logger.Debug("loaded workspace", "root", abs, "workspaces", len(g.Workspaces()), "external", lookup.count())
	return g, nil
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "%s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", path)
	}
	return m, nil
}

func pnpmPatterns(root string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(root, pnpmWorkspaceYML))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", pnpmWorkspaceYML)
	}
	var f struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode %s", pnpmWorkspaceYML)
	}
	return f.Packages, nil
}

// expandPatterns turns workspace globs into sorted, slash-separated
// directories that contain a package.json. Patterns starting with "!"
// exclude matches; a trailing "/**" matches every nested directory.
func expandPatterns(root string, patterns []string) ([]string, error) {
	include := make(map[string]bool)
	var exclude []string
	for _, p := range patterns {
		p = strings.TrimPrefix(strings.TrimSpace(p), "./")
		if neg, ok := strings.CutPrefix(p, "!"); ok {
			exclude = append(exclude, strings.TrimPrefix(neg, "./"))
			continue
		}
		matches, err := globDirs(root, p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "workspace pattern %q", p)
		}
		for _, m := range matches {
			include[m] = true
		}
	}

	var dirs []string
	for dir := range include {
		if dir == "." || excluded(dir, exclude) {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(dir), manifestName)); err != nil {
			continue
		}
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)
	return dirs, nil
}

func globDirs(root, pattern string) ([]string, error) {
	if base, ok := strings.CutSuffix(pattern, "/**"); ok {
		var out []string
		err := filepath.WalkDir(filepath.Join(root, filepath.FromSlash(base)), func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if d.Name() == nodeModules || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
			return nil
		})
		return out, err
	}

	matches, err := filepath.Glob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range matches {
		rel, err := filepath.Rel(root, m)
		if err != nil {
			return nil, err
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out, nil
}

func excluded(dir string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, dir); ok {
			return true
		}
		if base, ok := strings.CutSuffix(p, "/**"); ok && (dir == base || strings.HasPrefix(dir, base+"/")) {
			return true
		}
	}
	return false
}

// nodeModulesLookup resolves external packages the way Node does: the
// nearest node_modules directory from the consumer up to the root wins.
type nodeModulesLookup struct {
	root string

	mu    sync.Mutex
	cache map[string]*Package // keyed by package.json path; nil if absent
}

func newNodeModulesLookup(root string) *nodeModulesLookup {
	return &nodeModulesLookup{root: root, cache: make(map[string]*Package)}
}

func (l *nodeModulesLookup) find(w *Workspace, name string) (*Package, error) {
	dir := filepath.Join(l.root, filepath.FromSlash(w.Dir))
	for {
		p, err := l.read(filepath.Join(dir, nodeModules, filepath.FromSlash(name), manifestName))
		if err != nil || p != nil {
			return p, err
		}
		if dir == l.root {
			return nil, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir || !strings.HasPrefix(parent, l.root) {
			return nil, nil
		}
		dir = parent
	}
}

func (l *nodeModulesLookup) read(path string) (*Package, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.cache[path]; ok {
		return p, nil
	}
	m, err := readManifest(path)
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		l.cache[path] = nil
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	peers, optional := m.peerView()
	p := &Package{
		Name:                     m.Name,
		Version:                  m.Version,
		PeerDependencies:         peers,
		OptionalPeerDependencies: optional,
	}
	l.cache[path] = p
	return p, nil
}

func (l *nodeModulesLookup) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, p := range l.cache {
		if p != nil {
			n++
		}
	}
	return n
}
