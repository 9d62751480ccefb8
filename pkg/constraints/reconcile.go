package constraints

import (
	"strings"

	"github.com/matzehuels/peerpin/pkg/semverrange"
)

// Oracle answers range questions for the engine.
type Oracle interface {
	// Subset reports whether every version admitted by a is admitted by b.
	Subset(a, b string) (bool, error)
	// IsWildcard reports whether r admits any version.
	IsWildcard(r string) bool
}

var _ Oracle = semverrange.Oracle{}

// MostStrict returns a range that admits only versions admitted by both a and
// b.
//
// A workspace reference in b always wins. Otherwise the narrower of the two
// is returned when one contains the other, and the conjunction of both when
// neither does. The conjunction is not simplified and may be unsatisfiable.
func MostStrict(o Oracle, a, b string) (string, error) {
	if strings.HasPrefix(b, semverrange.WorkspaceProtocol) {
		return b, nil
	}
	if ok, err := o.Subset(a, b); err != nil {
		return "", err
	} else if ok {
		return a, nil
	}
	if ok, err := o.Subset(b, a); err != nil {
		return "", err
	} else if ok {
		return b, nil
	}
	return conjoin(a, b), nil
}

// conjoin ANDs two ranges by distributing over their alternatives:
// (a1 || a2) AND (b1 || b2) = a1 b1 || a1 b2 || a2 b1 || a2 b2.
func conjoin(a, b string) string {
	var out []string
	for _, x := range alternatives(a) {
		for _, y := range alternatives(b) {
			out = append(out, x+" "+y)
		}
	}
	return strings.Join(out, " || ")
}

func alternatives(r string) []string {
	parts := strings.Split(r, "||")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
