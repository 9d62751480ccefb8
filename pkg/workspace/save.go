package workspace

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/peerpin/pkg/errors"
)

// Path returns the absolute path of the workspace's package.json.
func (g *Graph) Path(w *Workspace) string {
	return filepath.Join(g.Root, filepath.FromSlash(w.Dir), manifestName)
}

// Save writes the package.json of every changed workspace and returns the
// paths written. Unchanged manifests are not touched.
func (g *Graph) Save() ([]string, error) {
	var written []string
	for _, w := range g.Changed() {
		data, err := w.Manifest.Marshal()
		if err != nil {
			return written, errors.Wrap(errors.ErrCodeInternal, err, "encode %s", w.Ident())
		}
		path := g.Path(w)
		mode := os.FileMode(0o644)
		if info, err := os.Stat(path); err == nil {
			mode = info.Mode().Perm()
		}
		if err := os.WriteFile(path, data, mode); err != nil {
			return written, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		w.Manifest.dirty = false
		written = append(written, path)
	}
	return written, nil
}
