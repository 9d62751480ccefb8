// Package semverrange implements the subset algebra over npm-style version
// ranges that the constraint engine consumes as an oracle.
//
// Ranges are parsed into a union of version intervals. Versions themselves are
// [github.com/Masterminds/semver/v3] values; only the range grammar and the
// interval arithmetic live here.
//
// # Grammar
//
// A range is a set of alternatives joined by "||". Each alternative is either
// a hyphen range ("1.2.3 - 2.x") or a whitespace-separated list of
// comparators that must all hold. Comparators accept the operators =, <, <=,
// >, >=, ~, ~> and ^ in front of a full or partial version; partial versions
// may use x, X or * wildcards.
//
// # Prereleases
//
// Prerelease tags only order versions. The npm rule that excludes
// prereleases of other tuples from a range is not modelled, so exclusive
// upper bounds are plain versions (<2.0.0 rather than <2.0.0-0).
//
// # Protocols
//
// [Oracle] understands the "npm:" and "workspace:" protocols used by Yarn
// manifests and rejects any other protocol with a MALFORMED_RANGE error,
// unless both sides of a subset check are the same literal string.
package semverrange
