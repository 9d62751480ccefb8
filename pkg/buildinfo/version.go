// Package buildinfo holds the version information stamped into the peerpin
// binary at build time.
//
//	go build -ldflags "-X github.com/matzehuels/peerpin/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/peerpin/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/peerpin/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/peerpin
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v1.2.3"); "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the build information as key/value lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template for cobra's --version output.
func Template() string {
	return "{{.Name}} " + String() + "\n"
}
