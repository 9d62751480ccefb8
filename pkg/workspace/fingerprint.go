package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Fingerprint returns a digest of every manifest in the graph and of the
// version and peers of every resolved dependency. Two graphs with the same
// fingerprint yield the same enforcement result.
func (g *Graph) Fingerprint() (string, error) {
	h := sha256.New()
	for _, w := range g.workspaces {
		data, err := w.Manifest.Marshal()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "W%q %d\n", w.Dir, len(data))
		h.Write(data)

		for _, name := range slices.Sorted(maps.Keys(w.deps)) {
			p := w.deps[name]
			fmt.Fprintf(h, "D%q %q %q\n", name, p.Name, p.Version)
			writeRanges(h, "P", p.PeerDependencies)
			writeRanges(h, "O", p.OptionalPeerDependencies)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeRanges(w io.Writer, tag string, ranges map[string]string) {
	for _, name := range slices.Sorted(maps.Keys(ranges)) {
		fmt.Fprintf(w, "%s%q %q\n", tag, name, ranges[name])
	}
}
