package constraints

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/peerpin/pkg/errors"
	"github.com/matzehuels/peerpin/pkg/observability"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

// chainGraph needs two passes: tool learns the react peer from lib in the
// first, app learns it from tool in the second.
func chainGraph(t *testing.T) *workspace.Graph {
	return newGraph(t,
		[]*workspace.Package{
			external("lib", map[string]string{"react": "^18.0.0"}, map[string]string{"react-dom": "^18.0.0"}),
			external("react", nil, nil),
		},
		ws{".", `{"name": "root", "private": true}`},
		ws{"packages/app", `{"name": "app", "private": true, "dependencies": {"tool": "workspace:^"}}`},
		ws{"packages/tool", `{"name": "tool", "version": "1.0.0", "dependencies": {"lib": "^1.0.0"}, "devDependencies": {"react": "^17.0.0"}, "scripts": {"pack-package": "pack", "publish-packed-package": "publish"}}`},
	)
}

func TestEnforceSinglePass(t *testing.T) {
	g := chainGraph(t)

	muts := enforce(t, g, Options{})
	assert.Equal(t, []Mutation{
		mutation("tool", "^18.0.0", "peerDependencies", "react"),
		mutation("tool", "^18.0.0", "optionalPeerDependencies", "react-dom"),
	}, muts)

	tool := lookup(t, g, "tool")
	assert.False(t, tool.Manifest.Dirty(), "Enforce must not modify the graph")
	assert.Empty(t, tool.Manifest.PeerDependencies)
}

func TestEnforceUntilStable(t *testing.T) {
	g := chainGraph(t)

	res, err := New(Options{}).EnforceUntilStable(context.Background(), g, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Passes)
	assert.Equal(t, []Mutation{
		mutation("tool", "^18.0.0", "peerDependencies", "react"),
		mutation("tool", "^18.0.0", "optionalPeerDependencies", "react-dom"),
		mutation("app", "^18.0.0", "dependencies", "react"),
		mutation("tool", "^18.0.0", "devDependencies", "react"),
	}, res.Mutations)
	assert.Empty(t, g.Changed(), "EnforceUntilStable must not modify the input graph")
}

func TestEnforceUntilStableNotConverged(t *testing.T) {
	_, err := New(Options{}).EnforceUntilStable(context.Background(), chainGraph(t), 2)
	assert.True(t, errors.Is(err, errors.ErrCodeNotConverged), "err = %v", err)
}

func TestEnforceUntilStableCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Options{}).EnforceUntilStable(ctx, chainGraph(t), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnforceIsIdempotent(t *testing.T) {
	g := chainGraph(t)
	e := New(Options{})

	res, err := e.EnforceUntilStable(context.Background(), g, 0)
	require.NoError(t, err)
	require.NoError(t, g.Apply(res.Mutations))

	again, err := e.Enforce(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestEnforceSubsetInvariant(t *testing.T) {
	g := newGraph(t,
		[]*workspace.Package{
			external("d1", map[string]string{"foo": "^2.0.0", "bar": ">=1.0.0"}, nil),
			external("d2", map[string]string{"foo": "^2.1.0", "bar": "^1.4.0"}, map[string]string{"baz": "~3.1.0"}),
			external("foo", nil, nil),
		},
		ws{"packages/x", `{"name": "x", "dependencies": {"d1": "1.0.0", "d2": "1.0.0", "foo": "^2.0.0"}, "peerDependencies": {"bar": "^1.0.0"}, "scripts": {"pack-package": "a", "publish-packed-package": "b"}}`},
		ws{"packages/y", `{"name": "y", "private": true, "dependencies": {"d2": "1.0.0"}}`},
	)

	res, err := New(Options{}).EnforceUntilStable(context.Background(), g, 0)
	require.NoError(t, err)
	require.NoError(t, g.Apply(res.Mutations))

	for _, w := range g.Workspaces() {
		reqs, err := Aggregate(realOracle, w)
		require.NoError(t, err)
		for _, name := range reqs.Names() {
			req := reqs[name]
			if !req.Required {
				continue
			}
			declared := w.Manifest.Dependencies[name]
			if declared == "" {
				declared = w.Manifest.PeerDependencies[name]
			}
			require.NotEmpty(t, declared, "%s does not declare required %s", w.Ident(), name)
			ok, err := realOracle.Subset(declared, req.Range)
			require.NoError(t, err)
			assert.True(t, ok, "%s declares %s@%s outside %s", w.Ident(), name, declared, req.Range)
		}
	}

	x := lookup(t, g, "x")
	assert.Equal(t, "^2.1.0", x.Manifest.Dependencies["foo"])
	assert.Equal(t, "^1.4.0", x.Manifest.PeerDependencies["bar"])
	assert.Equal(t, "~3.1.0", x.Manifest.OptionalPeerDependencies["baz"])
}

func TestEnforceUnresolvedAborts(t *testing.T) {
	g := newGraph(t, []*workspace.Package{libWithReactPeer},
		ws{"a", `{"name": "a", "private": true, "dependencies": {"lib": "1.0.0"}}`},
		ws{"b", `{"name": "b", "dependencies": {"not-installed": "1.0.0"}}`},
	)

	muts, err := New(Options{}).Enforce(context.Background(), g)
	require.Error(t, err)
	assert.Nil(t, muts, "no partial mutation list on fatal errors")
	assert.Contains(t, errors.UserMessage(err), `"not-installed"`)
	assert.Contains(t, errors.UserMessage(err), `"b"`)
}

func TestEnforceMalformedRangePropagates(t *testing.T) {
	g := newGraph(t, []*workspace.Package{libWithReactPeer},
		ws{"tool", `{"name": "tool", "dependencies": {"lib": "1.0.0"}, "peerDependencies": {"react": "github:facebook/react"}}`},
	)

	_, err := New(noScripts()).Enforce(context.Background(), g)
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedRange), "err = %v", err)
}

func TestEnforcerRuleOrder(t *testing.T) {
	var names []string
	for _, r := range New(Options{}).Rules() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{RulePeerDependencies, RuleDevSatisfiesPeer, RuleConfigPeers, RulePackScripts}, names)
}

type recordingHooks struct {
	observability.NoopEnforceHooks

	mu        sync.Mutex
	passes    []int
	rules     []string
	mutations int
}

func (h *recordingHooks) OnPassStart(_ context.Context, pass int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.passes = append(h.passes, pass)
}

func (h *recordingHooks) OnRuleComplete(_ context.Context, rule string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rules = append(h.rules, rule)
}

func (h *recordingHooks) OnMutation(context.Context, string, []string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mutations++
}

func TestEnforceHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetEnforceHooks(hooks)
	t.Cleanup(observability.Reset)

	_, err := New(Options{}).EnforceUntilStable(context.Background(), chainGraph(t), 5)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, hooks.passes)
	assert.Len(t, hooks.rules, 12)
	assert.Equal(t, 4, hooks.mutations)
}
