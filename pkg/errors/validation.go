package errors

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

const (
	maxNameLength = 214
	maxPathLength = 500
)

// packageName matches npm registry names, optionally scoped (@scope/name).
var packageName = regexp.MustCompile(`^(@[a-z0-9-~][a-z0-9-._~]*/)?[a-z0-9-~][a-z0-9-._~]*$`)

// rule returns a non-empty reason when s is rejected.
type rule func(s string) string

func hasControl(s string) bool {
	return strings.ContainsFunc(s, unicode.IsControl)
}

var nameRules = []rule{
	func(s string) string {
		if len(s) > maxNameLength {
			return "package name too long (max 214 characters)"
		}
		return ""
	},
	func(s string) string {
		if hasControl(s) {
			return "package name contains control characters"
		}
		return ""
	},
	func(s string) string {
		if strings.ToLower(s) != s {
			return "package name must be lowercase: " + strconv.Quote(s)
		}
		return ""
	},
	func(s string) string {
		if !packageName.MatchString(s) {
			return "invalid package name: " + strconv.Quote(s)
		}
		return ""
	},
}

var pathRules = []rule{
	func(s string) string {
		if len(s) > maxPathLength {
			return "path too long (max 500 characters)"
		}
		return ""
	},
	func(s string) string {
		if hasControl(s) {
			return "path contains control characters"
		}
		return ""
	},
	func(s string) string {
		if strings.HasPrefix(s, "/") {
			return "path must be relative to the workspace root"
		}
		return ""
	},
	func(s string) string {
		if slices.Contains(strings.Split(s, "/"), "..") {
			return "path escapes the workspace root"
		}
		return ""
	},
	func(s string) string {
		if strings.Contains(s, `\`) {
			return "path must use forward slashes"
		}
		return ""
	},
}

func apply(code Code, what, s string, rules []rule) error {
	if s == "" {
		return New(code, "%s cannot be empty", what)
	}
	for _, r := range rules {
		if reason := r(s); reason != "" {
			return New(code, "%s", reason)
		}
	}
	return nil
}

// ValidatePackageName checks a manifest "name" field against the npm
// registry rules.
func ValidatePackageName(name string) error {
	return apply(ErrCodeInvalidManifest, "package name", name, nameRules)
}

// ValidatePath checks a slash-separated workspace directory relative to the
// workspace root. Absolute paths and ".." segments are rejected.
func ValidatePath(path string) error {
	return apply(ErrCodeInvalidPath, "path", path, pathRules)
}
