package constraints

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/peerpin/pkg/semverrange"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

// Rule names.
const (
	RulePeerDependencies = "peer-dependencies"
	RuleDevSatisfiesPeer = "dev-satisfies-peer"
	RuleConfigPeers      = "config-peers"
	RulePackScripts      = "pack-scripts"
	RuleSetVersions      = "set-versions"
)

// Rule checks one constraint over the whole graph and records the writes
// needed to satisfy it.
type Rule interface {
	Name() string
	Apply(p *Pass) error
}

// Pass is the state shared by the rules of one enforcement pass. Rules read
// Graph and write through Set; writes are not visible to Graph.
type Pass struct {
	Graph   *workspace.Graph
	Oracle  Oracle
	Options Options

	rec  *Recorder
	rule string
}

// Set records value at path for w.
func (p *Pass) Set(w *workspace.Workspace, path []string, value string) {
	p.Options.Logger.Debug("set", "rule", p.rule, "workspace", w.Ident(), "path", strings.Join(path, "."), "value", value)
	p.rec.Set(w.Ident(), path, value)
}

// satisfies reports whether listed is declared and admits only versions of
// want.
func (p *Pass) satisfies(listed, want string) (bool, error) {
	if listed == "" {
		return false, nil
	}
	return p.Oracle.Subset(listed, want)
}

func isPatched(r string) bool {
	return strings.HasPrefix(r, semverrange.PatchProtocol)
}

// PeerDependenciesRule makes every workspace list the peer requirements of
// its dependencies.
//
// A requirement goes to "dependencies" when the name is already a dependency,
// or when it is required and the workspace is private. Patched dependencies
// are left alone. Private workspaces never declare peers. Public workspaces
// declare required peers under "peerDependencies" and optional ones under
// "optionalPeerDependencies" unless either category already satisfies them.
type PeerDependenciesRule struct{}

func (PeerDependenciesRule) Name() string { return RulePeerDependencies }

func (PeerDependenciesRule) Apply(p *Pass) error {
	for _, w := range p.Graph.Workspaces() {
		reqs, err := Aggregate(p.Oracle, w)
		if err != nil {
			return err
		}
		if p.Options.Debug {
			if err := reqs.Dump(p.Options.DebugOutput, w.Ident()); err != nil {
				return err
			}
		}
		for _, name := range reqs.Names() {
			if err := applyRequirement(p, w, name, reqs[name]); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyRequirement(p *Pass, w *workspace.Workspace, name string, req *Requirement) error {
	m := w.Manifest

	if listed, ok := m.Dependencies[name]; ok || (req.Required && m.Private) {
		if isPatched(listed) {
			return nil
		}
		ok, err := p.satisfies(listed, req.Range)
		if err != nil {
			return err
		}
		if !ok {
			p.Set(w, []string{workspace.FieldDependencies, name}, req.Range)
		}
		return nil
	}

	if m.Private {
		return nil
	}

	if req.Required {
		ok, err := p.satisfies(m.PeerDependencies[name], req.Range)
		if err != nil {
			return err
		}
		if !ok {
			p.Set(w, []string{workspace.FieldPeerDependencies, name}, req.Range)
		}
		return nil
	}

	if p.Oracle.IsWildcard(req.Range) {
		return nil
	}
	listed := m.PeerDependencies[name]
	if listed == "" {
		listed = m.OptionalPeerDependencies[name]
	}
	ok := false
	if !strings.HasPrefix(req.Range, semverrange.WorkspaceProtocol) {
		var err error
		if ok, err = p.satisfies(listed, req.Range); err != nil {
			return err
		}
	}
	if !ok {
		p.Set(w, []string{workspace.FieldOptionalPeerDependencies, name}, req.Range)
	}
	return nil
}

// DevDependenciesSatisfyPeersRule keeps a dev-dependency that is also a peer
// inside the peer range. Patched dev-dependencies are left alone.
type DevDependenciesSatisfyPeersRule struct{}

func (DevDependenciesSatisfyPeersRule) Name() string { return RuleDevSatisfiesPeer }

func (DevDependenciesSatisfyPeersRule) Apply(p *Pass) error {
	for _, w := range p.Graph.Workspaces() {
		m := w.Manifest
		for _, name := range slices.Sorted(maps.Keys(m.PeerDependencies)) {
			peer := m.PeerDependencies[name]
			dev, ok := m.DevDependencies[name]
			if !ok || isPatched(dev) {
				continue
			}
			ok, err := p.Oracle.Subset(dev, peer)
			if err != nil {
				return err
			}
			if !ok {
				p.Set(w, []string{workspace.FieldDevDependencies, name}, peer)
			}
		}
	}
	return nil
}

// ConfigPeersRule pins the consumers of configuration workspaces to the exact
// peer ranges those workspaces declare. A configuration workspace is one
// whose directory starts with one of Prefixes.
type ConfigPeersRule struct {
	Prefixes []string
}

func (ConfigPeersRule) Name() string { return RuleConfigPeers }

func (r ConfigPeersRule) Apply(p *Pass) error {
	var configs []*workspace.Workspace
	for _, w := range p.Graph.Workspaces() {
		if r.isConfig(w) {
			configs = append(configs, w)
		}
	}
	if len(configs) == 0 {
		return nil
	}

	for _, w := range p.Graph.Workspaces() {
		for _, field := range []string{workspace.FieldDependencies, workspace.FieldDevDependencies} {
			deps := w.Manifest.Field(field)
			if deps == nil {
				continue
			}
			for _, cfg := range configs {
				if cfg == w {
					continue
				}
				if _, ok := deps[cfg.Ident()]; !ok {
					continue
				}
				peers := cfg.Manifest.PeerDependencies
				for _, name := range slices.Sorted(maps.Keys(peers)) {
					p.Set(w, []string{field, name}, peers[name])
				}
			}
		}
	}
	return nil
}

func (r ConfigPeersRule) isConfig(w *workspace.Workspace) bool {
	for _, prefix := range r.Prefixes {
		if prefix != "" && strings.HasPrefix(w.Dir, prefix) {
			return true
		}
	}
	return false
}

// PackScriptsRule requires every public workspace to define Scripts. A
// missing script is set to a placeholder that fails.
type PackScriptsRule struct {
	Scripts []string
}

func (PackScriptsRule) Name() string { return RulePackScripts }

func (r PackScriptsRule) Apply(p *Pass) error {
	for _, w := range p.Graph.Workspaces() {
		if w.Manifest.Private {
			continue
		}
		for _, script := range r.Scripts {
			if w.Manifest.Scripts[script] != "" {
				continue
			}
			p.Set(w, []string{workspace.FieldScripts, script}, PlaceholderScript(script, w.Ident()))
		}
	}
	return nil
}

// PlaceholderScript returns the failing script set for a missing script.
func PlaceholderScript(script, ident string) string {
	return fmt.Sprintf("echo \"TODO: add %s script for the %s package\" && exit 1", script, ident)
}

// SetVersionsRule stamps Version onto every public workspace.
type SetVersionsRule struct {
	Version string
}

func (SetVersionsRule) Name() string { return RuleSetVersions }

func (r SetVersionsRule) Apply(p *Pass) error {
	if r.Version == "" {
		return nil
	}
	for _, w := range p.Graph.Workspaces() {
		if !w.Manifest.Private {
			p.Set(w, []string{workspace.FieldVersion}, r.Version)
		}
	}
	return nil
}
