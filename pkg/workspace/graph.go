package workspace

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/peerpin/pkg/errors"
)

// Kind is the manifest category a dependency edge is declared in.
type Kind int

const (
	KindDependency Kind = iota
	KindDevDependency
	KindPeerDependency
	KindOptionalPeerDependency
)

// Field returns the manifest field name of the kind.
func (k Kind) Field() string {
	switch k {
	case KindDevDependency:
		return FieldDevDependencies
	case KindPeerDependency:
		return FieldPeerDependencies
	case KindOptionalPeerDependency:
		return FieldOptionalPeerDependencies
	default:
		return FieldDependencies
	}
}

func (k Kind) String() string {
	switch k {
	case KindDevDependency:
		return "devDependency"
	case KindPeerDependency:
		return "peerDependency"
	case KindOptionalPeerDependency:
		return "optionalPeerDependency"
	default:
		return "dependency"
	}
}

var kinds = []Kind{KindDependency, KindDevDependency, KindPeerDependency, KindOptionalPeerDependency}

// Edge is one declared dependency of a workspace.
type Edge struct {
	From  string // Identity of the consuming workspace
	Name  string // Dependency name
	Range string // Declared range
	Kind  Kind
}

// Mutation sets one manifest field of one workspace.
type Mutation struct {
	Workspace string   `json:"workspace"`
	Path      []string `json:"path"`
	Value     string   `json:"value"`
}

// Package is a resolved package: the thing a dependency name points at.
type Package struct {
	Name                     string
	Version                  string
	PeerDependencies         map[string]string
	OptionalPeerDependencies map[string]string

	// Workspace is set when the package is workspace-local.
	Workspace *Workspace
}

// Workspace is a workspace-local package.
type Workspace struct {
	Dir      string // Slash-separated, relative to the graph root ("." for the root)
	Manifest *Manifest
	Package  *Package

	deps map[string]*Package
}

// Ident returns the workspace identity: its package name, or its directory
// when the manifest has no name.
func (w *Workspace) Ident() string {
	if w.Manifest.Name != "" {
		return w.Manifest.Name
	}
	return w.Dir
}

// Dependency returns the package a declared dependency resolves to.
func (w *Workspace) Dependency(name string) (*Package, bool) {
	p, ok := w.deps[name]
	return p, ok
}

// Edges returns the workspace's declared dependencies ordered by kind, then
// name.
func (w *Workspace) Edges() []Edge {
	var edges []Edge
	for _, k := range kinds {
		field := w.Manifest.Field(k.Field())
		for _, name := range slices.Sorted(maps.Keys(field)) {
			edges = append(edges, Edge{From: w.Ident(), Name: name, Range: field[name], Kind: k})
		}
	}
	return edges
}

// refresh rebuilds the resolved view of the workspace's own package. Peers
// that are also held as a dependency or dev-dependency are left out of the
// view, as package managers do; the raw manifest still lists them.
func (w *Workspace) refresh() {
	peers, optional := w.Manifest.peerView()
	for _, field := range []map[string]string{w.Manifest.Dependencies, w.Manifest.DevDependencies} {
		for name := range field {
			delete(peers, name)
			delete(optional, name)
		}
	}
	if w.Package == nil {
		w.Package = &Package{Workspace: w}
	}
	w.Package.Name = w.Ident()
	w.Package.Version = w.Manifest.Version
	w.Package.PeerDependencies = peers
	w.Package.OptionalPeerDependencies = optional
}

// ExternalLookup resolves a dependency that is not workspace-local.
// It returns nil when the package cannot be found.
type ExternalLookup func(w *Workspace, name string) (*Package, error)

// Graph is the set of workspaces plus their resolved dependencies.
// A Graph is not safe for concurrent mutation.
type Graph struct {
	Root string // Absolute path of the workspace root

	workspaces []*Workspace
	byIdent    map[string]*Workspace
	externals  map[string]*Package
	lookup     ExternalLookup
}

// NewGraph creates an empty graph rooted at root.
func NewGraph(root string) *Graph {
	return &Graph{
		Root:      root,
		byIdent:   make(map[string]*Workspace),
		externals: make(map[string]*Package),
	}
}

// AddWorkspace registers the manifest found in dir.
func (g *Graph) AddWorkspace(dir string, m *Manifest) (*Workspace, error) {
	dir = filepath.ToSlash(filepath.Clean(dir))
	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}
	if m.Name != "" {
		if err := errors.ValidatePackageName(m.Name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "workspace %s", dir)
		}
	}
	w := &Workspace{Dir: dir, Manifest: m, deps: make(map[string]*Package)}
	if _, dup := g.byIdent[w.Ident()]; dup {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "duplicate workspace %q in %s", w.Ident(), dir)
	}
	w.refresh()
	g.byIdent[w.Ident()] = w
	g.workspaces = append(g.workspaces, w)
	slices.SortFunc(g.workspaces, func(a, b *Workspace) int { return strings.Compare(a.Ident(), b.Ident()) })
	return w, nil
}

// AddExternal registers a package that lives outside the workspace. It is
// used when Link is called without a lookup.
func (g *Graph) AddExternal(p *Package) {
	g.externals[p.Name] = p
}

// Workspaces returns all workspaces sorted by identity.
func (g *Graph) Workspaces() []*Workspace { return g.workspaces }

// Workspace returns the workspace with the given identity.
func (g *Graph) Workspace(ident string) (*Workspace, bool) {
	w, ok := g.byIdent[ident]
	return w, ok
}

// Link resolves every dependency and dev-dependency of every workspace.
// Names matching a workspace resolve to it; others go through lookup, or the
// packages registered with AddExternal when lookup is nil. Names that cannot
// be resolved stay unresolved.
func (g *Graph) Link(lookup ExternalLookup) error {
	g.lookup = lookup
	for _, w := range g.workspaces {
		w.deps = make(map[string]*Package)
		for _, field := range []map[string]string{w.Manifest.Dependencies, w.Manifest.DevDependencies} {
			for _, name := range slices.Sorted(maps.Keys(field)) {
				p, err := g.resolve(w, name)
				if err != nil {
					return err
				}
				if p != nil {
					w.deps[name] = p
				}
			}
		}
	}
	return nil
}

func (g *Graph) resolve(w *Workspace, name string) (*Package, error) {
	if local, ok := g.byIdent[name]; ok && local != w {
		return local.Package, nil
	}
	if g.lookup != nil {
		return g.lookup(w, name)
	}
	return g.externals[name], nil
}

// linkAdded resolves dependencies declared after Link. One that cannot be
// resolved is not installed yet and stands for a package without peers.
func (g *Graph) linkAdded(w *Workspace) error {
	for _, field := range []map[string]string{w.Manifest.Dependencies, w.Manifest.DevDependencies} {
		for _, name := range slices.Sorted(maps.Keys(field)) {
			if _, ok := w.deps[name]; ok {
				continue
			}
			p, err := g.resolve(w, name)
			if err != nil {
				return err
			}
			if p == nil {
				p = &Package{Name: name}
			}
			w.deps[name] = p
		}
	}
	return nil
}

// Edges returns the declared edges of every workspace.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, w := range g.workspaces {
		edges = append(edges, w.Edges()...)
	}
	return edges
}

// Clone returns a graph with deep-copied manifests. Workspace-local
// resolutions point into the copy; external packages are shared.
func (g *Graph) Clone() *Graph {
	c := NewGraph(g.Root)
	c.lookup = g.lookup
	maps.Copy(c.externals, g.externals)
	for _, w := range g.workspaces {
		cw := &Workspace{Dir: w.Dir, Manifest: w.Manifest.Clone(), deps: make(map[string]*Package)}
		cw.refresh()
		c.byIdent[cw.Ident()] = cw
		c.workspaces = append(c.workspaces, cw)
	}
	for i, w := range g.workspaces {
		cw := c.workspaces[i]
		for name, p := range w.deps {
			if p.Workspace != nil {
				cw.deps[name] = c.byIdent[p.Workspace.Ident()].Package
				continue
			}
			cw.deps[name] = p
		}
	}
	return c
}

// Apply sets every mutation on the in-memory manifests and resolves the
// dependencies it adds.
func (g *Graph) Apply(mutations []Mutation) error {
	touched := make(map[*Workspace]bool)
	for _, m := range mutations {
		w, ok := g.byIdent[m.Workspace]
		if !ok {
			return errors.New(errors.ErrCodeInvalidInput, "mutation for unknown workspace %q", m.Workspace)
		}
		if err := w.Manifest.Set(m.Path, m.Value); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "apply to %s", m.Workspace)
		}
		touched[w] = true
	}
	for w := range touched {
		w.refresh()
		if err := g.linkAdded(w); err != nil {
			return err
		}
	}
	return nil
}

// Changed returns the workspaces whose manifest was modified.
func (g *Graph) Changed() []*Workspace {
	var out []*Workspace
	for _, w := range g.workspaces {
		if w.Manifest.Dirty() {
			out = append(out, w)
		}
	}
	return out
}
