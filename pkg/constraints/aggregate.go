package constraints

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/matzehuels/peerpin/pkg/errors"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

// Requirement is the reconciled peer requirement a workspace inherits for one
// dependency name.
type Requirement struct {
	// Required is true if any contributing dependency declared the peer as
	// non-optional.
	Required bool `json:"required"`

	// Range is the reconciled range of every contribution.
	Range string `json:"range"`

	// RequestedBy maps each contributing dependency to the range it asked for.
	RequestedBy map[string]string `json:"requestedBy"`
}

// Requirements maps dependency names to their reconciled requirement.
type Requirements map[string]*Requirement

// Names returns the dependency names in sorted order.
func (r Requirements) Names() []string {
	return slices.Sorted(maps.Keys(r))
}

// Dump writes the requirements of the workspace ident as indented JSON,
// prefixed by a header line.
func (r Requirements) Dump(w io.Writer, ident string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Enforcing peer dependencies for %s: %s\n", ident, data)
	return err
}

// peerSource is one of the manifest categories a dependency contributes
// requirements from.
type peerSource struct {
	field    string
	required bool
	resolved func(*workspace.Package) map[string]string
}

var peerSources = []peerSource{
	{
		field:    workspace.FieldPeerDependencies,
		required: true,
		resolved: func(p *workspace.Package) map[string]string { return p.PeerDependencies },
	},
	{
		field:    workspace.FieldOptionalPeerDependencies,
		required: false,
		resolved: func(p *workspace.Package) map[string]string { return p.OptionalPeerDependencies },
	},
}

// Aggregate collects the peer requirements of every direct dependency of ws.
//
// Each dependency contributes its resolved peer and optional peer
// requirements. Workspace-local dependencies also contribute the peers listed
// in their raw manifest, since a peer that is also held as a dependency is
// left out of the resolved view. Contributions for the same name are folded
// with [MostStrict]; a wildcard contribution never loosens an existing range,
// and optional requirements that end up as the wildcard are dropped.
//
// A dependency that does not resolve to any package is fatal and reported as
// an [errors.UnresolvedDependencyError].
func Aggregate(o Oracle, ws *workspace.Workspace) (Requirements, error) {
	reqs := make(Requirements)
	for _, dep := range slices.Sorted(maps.Keys(ws.Manifest.Dependencies)) {
		pkg, ok := ws.Dependency(dep)
		if !ok {
			return nil, &errors.UnresolvedDependencyError{Workspace: ws.Ident(), Dependency: dep}
		}
		for _, src := range peerSources {
			views := []map[string]string{src.resolved(pkg)}
			if pkg.Workspace != nil {
				views = append(views, pkg.Workspace.Manifest.Field(src.field))
			}
			for _, view := range views {
				for _, name := range slices.Sorted(maps.Keys(view)) {
					if err := reqs.fold(o, dep, name, view[name], src.required); err != nil {
						return nil, err
					}
				}
			}
		}
	}
	return reqs, nil
}

// fold merges one contribution of dep into the requirement for name.
func (r Requirements) fold(o Oracle, dep, name, rng string, required bool) error {
	existing := r[name]
	merged := rng
	if existing != nil && existing.Range != "" {
		if o.IsWildcard(rng) {
			merged = existing.Range
		} else {
			var err error
			if merged, err = MostStrict(o, existing.Range, rng); err != nil {
				return err
			}
		}
	}

	if !required && o.IsWildcard(merged) {
		return nil
	}

	if existing == nil {
		existing = &Requirement{RequestedBy: make(map[string]string)}
		r[name] = existing
	}
	existing.Required = existing.Required || required
	existing.Range = merged
	existing.RequestedBy[dep] = rng
	return nil
}
