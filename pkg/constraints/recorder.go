package constraints

import (
	"strings"

	"github.com/matzehuels/peerpin/pkg/workspace"
)

// Mutation sets one manifest field of one workspace.
type Mutation = workspace.Mutation

// Recorder collects the writes of a pass against the graph they were
// computed from. A later write to the same field replaces an earlier one, and
// writes that leave a field unchanged are not reported.
type Recorder struct {
	graph  *workspace.Graph
	order  []string
	writes map[string]Mutation
}

// NewRecorder returns a recorder comparing writes against g.
func NewRecorder(g *workspace.Graph) *Recorder {
	return &Recorder{graph: g, writes: make(map[string]Mutation)}
}

// Set records value at path for the workspace ident.
func (r *Recorder) Set(ident string, path []string, value string) {
	key := ident + "\x00" + strings.Join(path, "\x00")
	if _, ok := r.writes[key]; !ok {
		r.order = append(r.order, key)
	}
	r.writes[key] = Mutation{Workspace: ident, Path: append([]string(nil), path...), Value: value}
}

// Len returns the number of recorded writes, including no-op ones.
func (r *Recorder) Len() int { return len(r.order) }

// Mutations returns the recorded writes that change the graph, in the order
// their field was first written.
func (r *Recorder) Mutations() []Mutation {
	var out []Mutation
	for _, key := range r.order {
		m := r.writes[key]
		if cur, ok := r.current(m); ok && cur == m.Value {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (r *Recorder) current(m Mutation) (string, bool) {
	w, ok := r.graph.Workspace(m.Workspace)
	if !ok {
		return "", false
	}
	switch len(m.Path) {
	case 1:
		switch m.Path[0] {
		case workspace.FieldVersion:
			return w.Manifest.Version, w.Manifest.Version != ""
		case workspace.FieldName:
			return w.Manifest.Name, w.Manifest.Name != ""
		}
	case 2:
		v, ok := w.Manifest.Field(m.Path[0])[m.Path[1]]
		return v, ok
	}
	return "", false
}
