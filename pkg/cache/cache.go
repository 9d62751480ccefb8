// Package cache stores enforcement results between CLI runs.
//
// A check over an unchanged workspace yields the same report, so the CLI keys
// the last clean report by a fingerprint of every manifest plus the options
// in effect and skips enforcement on a hit.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// DefaultTTL bounds how long a clean check result is trusted.
const DefaultTTL = 24 * time.Hour

// CheckKey returns the key of a check result for the workspace at root.
// fingerprint must change whenever a manifest or an option changes.
func CheckKey(root, fingerprint string) string {
	return hashKey("check", root, fingerprint)
}
