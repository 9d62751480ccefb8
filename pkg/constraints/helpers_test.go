package constraints

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/peerpin/pkg/semverrange"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

// ws is a workspace fixture: directory plus package.json content.
type ws struct {
	dir      string
	manifest string
}

func newGraph(t *testing.T, externals []*workspace.Package, workspaces ...ws) *workspace.Graph {
	t.Helper()
	g := workspace.NewGraph("/repo")
	for _, w := range workspaces {
		m, err := workspace.ParseManifest([]byte(w.manifest))
		require.NoError(t, err, "manifest of %s", w.dir)
		_, err = g.AddWorkspace(w.dir, m)
		require.NoError(t, err)
	}
	for _, p := range externals {
		g.AddExternal(p)
	}
	require.NoError(t, g.Link(nil))
	return g
}

func external(name string, peers, optional map[string]string) *workspace.Package {
	return &workspace.Package{Name: name, Version: "1.0.0", PeerDependencies: peers, OptionalPeerDependencies: optional}
}

func lookup(t *testing.T, g *workspace.Graph, ident string) *workspace.Workspace {
	t.Helper()
	w, ok := g.Workspace(ident)
	require.True(t, ok, "workspace %s", ident)
	return w
}

// noScripts disables the pack-scripts rule so tests see only the rule under
// test.
func noScripts() Options {
	return Options{RequiredScripts: []string{}}
}

func enforce(t *testing.T, g *workspace.Graph, opts Options) []Mutation {
	t.Helper()
	muts, err := New(opts).Enforce(context.Background(), g)
	require.NoError(t, err)
	return muts
}

func mutation(ident string, value string, path ...string) Mutation {
	return Mutation{Workspace: ident, Path: path, Value: value}
}

// fakeOracle answers subset questions from a fixed table. Identical ranges
// are always subsets; "*" contains everything.
type fakeOracle struct {
	subsets map[[2]string]bool
	err     error
}

func (f fakeOracle) Subset(a, b string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if a == b || b == "*" {
		return true, nil
	}
	return f.subsets[[2]string{a, b}], nil
}

func (fakeOracle) IsWildcard(r string) bool { return r == "*" }

var realOracle = semverrange.Oracle{}
