package semverrange

import (
	"strings"

	"github.com/matzehuels/peerpin/pkg/errors"
)

// Protocol prefixes understood by [Oracle].
const (
	WorkspaceProtocol = "workspace:"
	NpmProtocol       = "npm:"
	PatchProtocol     = "patch:"
)

// Oracle answers subset and wildcard questions about raw range expressions.
// The zero value is ready to use.
type Oracle struct{}

// Subset reports whether every version admitted by a is admitted by b.
// Unparsable expressions yield an error with code MALFORMED_RANGE.
func (Oracle) Subset(a, b string) (bool, error) {
	if strings.TrimSpace(a) == strings.TrimSpace(b) {
		return true, nil
	}
	ra, err := parseExpr(a)
	if err != nil {
		return false, err
	}
	rb, err := parseExpr(b)
	if err != nil {
		return false, err
	}
	return ra.Subset(rb), nil
}

// IsWildcard reports whether r admits any version without further
// qualification ("*", "x", "X" or the empty string).
func (Oracle) IsWildcard(r string) bool {
	return IsWildcard(r)
}

// Validate reports a MALFORMED_RANGE error if r cannot be parsed.
func (Oracle) Validate(r string) error {
	_, err := parseExpr(r)
	return err
}

// IsWildcard reports whether r is a literal "any version" range.
func IsWildcard(r string) bool {
	switch strings.TrimSpace(r) {
	case "", "*", "x", "X":
		return true
	}
	return false
}

// parseExpr parses a manifest range, unwrapping the npm: and workspace:
// protocols. A bare workspace reference (workspace:*, workspace:^,
// workspace:~) admits any version of the local copy.
func parseExpr(raw string) (*Range, error) {
	expr := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(expr, WorkspaceProtocol):
		expr = strings.TrimPrefix(expr, WorkspaceProtocol)
		if expr == "^" || expr == "~" {
			expr = "*"
		}
	case strings.HasPrefix(expr, NpmProtocol):
		expr = strings.TrimPrefix(expr, NpmProtocol)
		if i := strings.LastIndex(expr, "@"); i > 0 {
			expr = expr[i+1:]
		}
	case strings.Contains(expr, ":"):
		return nil, errors.New(errors.ErrCodeMalformedRange, "unsupported range protocol in %q", raw)
	}

	r, err := Parse(expr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedRange, err, "invalid range %q", raw)
	}
	r.raw = raw
	return r, nil
}
