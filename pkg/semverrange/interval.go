package semverrange

import (
	"slices"

	"github.com/Masterminds/semver/v3"
)

// bound is one end of an interval. A nil *bound is unbounded.
type bound struct {
	v         *semver.Version
	inclusive bool
}

// interval is the set of versions between lo and hi.
type interval struct {
	lo, hi *bound
}

func atLeast(v *semver.Version) *bound { return &bound{v: v, inclusive: true} }
func above(v *semver.Version) *bound   { return &bound{v: v} }
func atMost(v *semver.Version) *bound  { return &bound{v: v, inclusive: true} }
func below(v *semver.Version) *bound   { return &bound{v: v} }

// cmpLower orders lower bounds; nil is minus infinity.
func cmpLower(a, b *bound) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return -1
	default:
		return 1
	}
}

// cmpUpper orders upper bounds; nil is plus infinity.
func cmpUpper(a, b *bound) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if c := a.v.Compare(b.v); c != 0 {
		return c
	}
	switch {
	case a.inclusive == b.inclusive:
		return 0
	case a.inclusive:
		return 1
	default:
		return -1
	}
}

func (iv interval) empty() bool {
	if iv.lo == nil || iv.hi == nil {
		return false
	}
	c := iv.lo.v.Compare(iv.hi.v)
	if c != 0 {
		return c > 0
	}
	return !(iv.lo.inclusive && iv.hi.inclusive)
}

func (iv interval) intersect(o interval) interval {
	out := iv
	if cmpLower(o.lo, out.lo) > 0 {
		out.lo = o.lo
	}
	if cmpUpper(o.hi, out.hi) < 0 {
		out.hi = o.hi
	}
	return out
}

func (iv interval) covers(o interval) bool {
	return cmpLower(iv.lo, o.lo) <= 0 && cmpUpper(iv.hi, o.hi) >= 0
}

func (iv interval) contains(v *semver.Version) bool {
	if iv.lo != nil {
		c := v.Compare(iv.lo.v)
		if c < 0 || (c == 0 && !iv.lo.inclusive) {
			return false
		}
	}
	if iv.hi != nil {
		c := v.Compare(iv.hi.v)
		if c > 0 || (c == 0 && !iv.hi.inclusive) {
			return false
		}
	}
	return true
}

// normalize drops empty intervals and merges overlapping or touching ones.
// The result is sorted and pairwise disjoint.
func normalize(set []interval) []interval {
	var ivs []interval
	for _, iv := range set {
		if !iv.empty() {
			ivs = append(ivs, iv)
		}
	}
	if len(ivs) < 2 {
		return ivs
	}
	slices.SortFunc(ivs, func(a, b interval) int { return cmpLower(a.lo, b.lo) })

	merged := []interval{ivs[0]}
	for _, next := range ivs[1:] {
		cur := &merged[len(merged)-1]
		if connected(*cur, next) {
			if cmpUpper(next.hi, cur.hi) > 0 {
				cur.hi = next.hi
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// connected reports whether next starts inside or right at the end of cur.
// Both are non-empty and cur.lo <= next.lo.
func connected(cur, next interval) bool {
	if cur.hi == nil || next.lo == nil {
		return true
	}
	c := cur.hi.v.Compare(next.lo.v)
	return c > 0 || (c == 0 && (cur.hi.inclusive || next.lo.inclusive))
}
