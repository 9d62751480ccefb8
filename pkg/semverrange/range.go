package semverrange

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Range is a parsed version range.
type Range struct {
	raw string
	set []interval // normalized: sorted, disjoint, non-empty
}

// Parse parses an npm-style range expression.
func Parse(raw string) (*Range, error) {
	var set []interval
	for _, alt := range strings.Split(raw, "||") {
		iv, err := parseAlternative(strings.TrimSpace(alt))
		if err != nil {
			return nil, fmt.Errorf("semverrange: parse range %q: %w", raw, err)
		}
		set = append(set, iv)
	}
	return &Range{raw: raw, set: normalize(set)}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) *Range {
	r, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the expression the range was parsed from.
func (r *Range) String() string { return r.raw }

// Empty reports whether no version satisfies r.
func (r *Range) Empty() bool { return len(r.set) == 0 }

// Contains reports whether v satisfies r.
func (r *Range) Contains(v *semver.Version) bool {
	for _, iv := range r.set {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// Subset reports whether every version satisfying r also satisfies o.
// An empty range is a subset of every range.
func (r *Range) Subset(o *Range) bool {
	for _, iv := range r.set {
		covered := false
		for _, ov := range o.set {
			if ov.covers(iv) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}

// Equivalent reports whether r and o admit the same versions.
func (r *Range) Equivalent(o *Range) bool {
	return r.Subset(o) && o.Subset(r)
}

// zero is the lowest version; an alternative without a lower bound starts
// there, so "*" and ">=0.0.0" are the same range.
var zero = semver.New(0, 0, 0, "", "")

func parseAlternative(s string) (interval, error) {
	iv, err := parseBounds(s)
	if err != nil {
		return interval{}, err
	}
	if iv.lo == nil {
		iv.lo = atLeast(zero)
	}
	return iv, nil
}

func parseBounds(s string) (interval, error) {
	if s == "" {
		return interval{}, nil
	}
	if left, right, ok := strings.Cut(s, " - "); ok {
		return parseHyphen(strings.TrimSpace(left), strings.TrimSpace(right))
	}

	out := interval{}
	for _, tok := range comparatorTokens(s) {
		iv, err := parseComparator(tok)
		if err != nil {
			return interval{}, err
		}
		out = out.intersect(iv)
	}
	return out, nil
}

// comparatorTokens splits on whitespace and re-attaches operators written
// apart from their version (">= 1.2.0").
func comparatorTokens(s string) []string {
	var toks []string
	pending := ""
	for _, f := range strings.Fields(s) {
		if strings.Trim(f, "<>=~^") == "" {
			pending += f
			continue
		}
		toks = append(toks, pending+f)
		pending = ""
	}
	if pending != "" {
		toks = append(toks, pending)
	}
	return toks
}

func parseHyphen(left, right string) (interval, error) {
	lo, err := parsePartial(left)
	if err != nil {
		return interval{}, err
	}
	hi, err := parsePartial(right)
	if err != nil {
		return interval{}, err
	}

	var iv interval
	if lo.n > 0 {
		iv.lo = atLeast(lo.floor())
	}
	switch {
	case hi.n == 3:
		iv.hi = atMost(hi.floor())
	case hi.n > 0:
		iv.hi = below(hi.next())
	}
	return iv, nil
}

var operators = []string{">=", "<=", "~>", ">", "<", "=", "^", "~"}

func parseComparator(tok string) (interval, error) {
	op := ""
	for _, candidate := range operators {
		if strings.HasPrefix(tok, candidate) {
			op = candidate
			break
		}
	}
	p, err := parsePartial(strings.TrimSpace(tok[len(op):]))
	if err != nil {
		return interval{}, err
	}

	if p.n == 0 {
		if op == "<" || op == ">" {
			return interval{lo: above(zero), hi: below(zero)}, nil
		}
		return interval{}, nil
	}

	floor := p.floor()
	switch op {
	case "", "=":
		if p.n == 3 {
			return interval{lo: atLeast(floor), hi: atMost(floor)}, nil
		}
		return interval{lo: atLeast(floor), hi: below(p.next())}, nil
	case ">=":
		return interval{lo: atLeast(floor)}, nil
	case ">":
		if p.n == 3 {
			return interval{lo: above(floor)}, nil
		}
		return interval{lo: atLeast(p.next())}, nil
	case "<":
		return interval{hi: below(floor)}, nil
	case "<=":
		if p.n == 3 {
			return interval{hi: atMost(floor)}, nil
		}
		return interval{hi: below(p.next())}, nil
	case "~", "~>":
		if p.n == 1 {
			return interval{lo: atLeast(floor), hi: below(semver.New(p.major+1, 0, 0, "", ""))}, nil
		}
		return interval{lo: atLeast(floor), hi: below(semver.New(p.major, p.minor+1, 0, "", ""))}, nil
	case "^":
		return interval{lo: atLeast(floor), hi: below(p.caretCeiling())}, nil
	}
	return interval{}, fmt.Errorf("unknown operator %q", op)
}

// partial is a version with up to three specified components.
type partial struct {
	major, minor, patch uint64
	pre                 string
	n                   int // number of specified components
}

func parsePartial(s string) (partial, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "="), "v")
	s, _, _ = strings.Cut(s, "+")
	core, pre, _ := strings.Cut(s, "-")

	var p partial
	if core == "" {
		if pre != "" {
			return p, fmt.Errorf("invalid version %q", s)
		}
		return p, nil
	}
	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return p, fmt.Errorf("invalid version %q", s)
	}
	nums := [3]uint64{}
	for i, part := range parts {
		if part == "x" || part == "X" || part == "*" {
			break
		}
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return p, fmt.Errorf("invalid version %q", s)
		}
		nums[i] = n
		p.n = i + 1
	}
	p.major, p.minor, p.patch = nums[0], nums[1], nums[2]
	if p.n == 3 && pre != "" {
		if _, err := semver.StrictNewVersion(core + "-" + pre); err != nil {
			return p, fmt.Errorf("invalid prerelease %q: %w", pre, err)
		}
		p.pre = pre
	}
	return p, nil
}

// floor is the lowest version the partial denotes.
func (p partial) floor() *semver.Version {
	return semver.New(p.major, p.minor, p.patch, p.pre, "")
}

// next is the first version past a partial with fewer than three components.
func (p partial) next() *semver.Version {
	if p.n == 1 {
		return semver.New(p.major+1, 0, 0, "", "")
	}
	return semver.New(p.major, p.minor+1, 0, "", "")
}

// caretCeiling is the exclusive upper bound of ^p: the next change to the
// left-most non-zero specified component.
func (p partial) caretCeiling() *semver.Version {
	switch {
	case p.major > 0 || p.n == 1:
		return semver.New(p.major+1, 0, 0, "", "")
	case p.minor > 0 || p.n == 2:
		return semver.New(0, p.minor+1, 0, "", "")
	default:
		return semver.New(0, 0, p.patch+1, "", "")
	}
}
