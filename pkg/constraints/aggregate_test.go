package constraints

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/peerpin/pkg/errors"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

func TestAggregateStrictestRangeWins(t *testing.T) {
	g := newGraph(t,
		[]*workspace.Package{
			external("d1", map[string]string{"foo": "^2.0.0"}, nil),
			external("d2", map[string]string{"foo": "^2.1.0"}, nil),
		},
		ws{"packages/x", `{"name": "x", "dependencies": {"d1": "^1.0.0", "d2": "^1.0.0"}}`},
	)

	reqs, err := Aggregate(realOracle, lookup(t, g, "x"))
	require.NoError(t, err)
	require.Contains(t, reqs, "foo")
	assert.Equal(t, &Requirement{
		Required:    true,
		Range:       "^2.1.0",
		RequestedBy: map[string]string{"d1": "^2.0.0", "d2": "^2.1.0"},
	}, reqs["foo"])
}

func TestAggregateWildcardKeepsRange(t *testing.T) {
	g := newGraph(t,
		[]*workspace.Package{
			external("d1", map[string]string{"foo": "^1.0.0"}, nil),
			external("d2", map[string]string{"foo": "*"}, nil),
		},
		ws{"x", `{"name": "x", "dependencies": {"d1": "1.0.0", "d2": "1.0.0"}}`},
	)

	reqs, err := Aggregate(realOracle, lookup(t, g, "x"))
	require.NoError(t, err)
	assert.Equal(t, "^1.0.0", reqs["foo"].Range)
	assert.Equal(t, map[string]string{"d1": "^1.0.0", "d2": "*"}, reqs["foo"].RequestedBy)
}

func TestAggregateOptional(t *testing.T) {
	g := newGraph(t,
		[]*workspace.Package{
			external("d1", map[string]string{"required-any": "*"}, map[string]string{"optional-any": "*", "optional": "^3.0.0", "both": "^1.2.0"}),
			external("d2", map[string]string{"both": "^1.0.0"}, nil),
		},
		ws{"x", `{"name": "x", "dependencies": {"d1": "1.0.0", "d2": "1.0.0"}}`},
	)

	reqs, err := Aggregate(realOracle, lookup(t, g, "x"))
	require.NoError(t, err)

	assert.NotContains(t, reqs, "optional-any", "optional wildcard requirements carry no constraint")
	require.Contains(t, reqs, "required-any")
	assert.True(t, reqs["required-any"].Required)
	assert.Equal(t, "*", reqs["required-any"].Range)

	require.Contains(t, reqs, "optional")
	assert.False(t, reqs["optional"].Required)

	// Optional in d1, required in d2.
	require.Contains(t, reqs, "both")
	assert.True(t, reqs["both"].Required)
	assert.Equal(t, "^1.2.0", reqs["both"].Range)
}

func TestAggregateReadsRawWorkspacePeers(t *testing.T) {
	g := newGraph(t,
		[]*workspace.Package{external("react", nil, nil)},
		ws{"packages/app", `{"name": "app", "private": true, "dependencies": {"ui": "workspace:^"}}`},
		ws{"packages/ui", `{"name": "ui", "dependencies": {"react": "^18.0.0"}, "peerDependencies": {"react": "^18.0.0"}}`},
	)

	ui, ok := lookup(t, g, "app").Dependency("ui")
	require.True(t, ok)
	require.NotContains(t, ui.PeerDependencies, "react", "resolved view drops peers held as dependencies")

	reqs, err := Aggregate(realOracle, lookup(t, g, "app"))
	require.NoError(t, err)
	require.Contains(t, reqs, "react")
	assert.Equal(t, "^18.0.0", reqs["react"].Range)
	assert.Equal(t, map[string]string{"ui": "^18.0.0"}, reqs["react"].RequestedBy)
}

func TestAggregateIgnoresDevDependencies(t *testing.T) {
	g := newGraph(t,
		[]*workspace.Package{external("d1", map[string]string{"foo": "^1.0.0"}, nil)},
		ws{"x", `{"name": "x", "devDependencies": {"d1": "1.0.0"}}`},
	)

	reqs, err := Aggregate(realOracle, lookup(t, g, "x"))
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestAggregateUnresolvedDependency(t *testing.T) {
	g := newGraph(t, nil,
		ws{"x", `{"name": "x", "dependencies": {"missing": "^1.0.0"}}`},
	)

	_, err := Aggregate(realOracle, lookup(t, g, "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvedDependency))

	var u *errors.UnresolvedDependencyError
	require.ErrorAs(t, err, &u)
	assert.Equal(t, "x", u.Workspace)
	assert.Equal(t, "missing", u.Dependency)
}

func TestRequirementsDump(t *testing.T) {
	reqs := Requirements{
		"react": {Required: true, Range: "^18.0.0", RequestedBy: map[string]string{"ui": "^18.0.0"}},
	}

	var buf bytes.Buffer
	require.NoError(t, reqs.Dump(&buf, "app"))
	assert.Equal(t, `Enforcing peer dependencies for app: {
  "react": {
    "required": true,
    "range": "^18.0.0",
    "requestedBy": {
      "ui": "^18.0.0"
    }
  }
}
`, buf.String())
}

func TestRequirementsNames(t *testing.T) {
	reqs := Requirements{"b": {}, "a": {}, "c": {}}
	assert.Equal(t, []string{"a", "b", "c"}, reqs.Names())
}
