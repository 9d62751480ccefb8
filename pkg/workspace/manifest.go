package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/peerpin/pkg/errors"
)

// Manifest field names.
const (
	FieldName                     = "name"
	FieldVersion                  = "version"
	FieldDependencies             = "dependencies"
	FieldDevDependencies          = "devDependencies"
	FieldPeerDependencies         = "peerDependencies"
	FieldOptionalPeerDependencies = "optionalPeerDependencies"
	FieldScripts                  = "scripts"
)

// Manifest is the content of a package.json file.
//
// Only the fields the constraint engine reads are decoded into struct fields;
// everything else is kept verbatim so a rewrite leaves it untouched.
type Manifest struct {
	Name                     string
	Version                  string
	Private                  bool
	Dependencies             map[string]string
	DevDependencies          map[string]string
	PeerDependencies         map[string]string
	OptionalPeerDependencies map[string]string
	PeerDependenciesMeta     map[string]PeerMeta
	Scripts                  map[string]string
	Workspaces               []string

	doc   *document
	dirty bool
}

// PeerMeta is one entry of "peerDependenciesMeta".
type PeerMeta struct {
	Optional bool `json:"optional"`
}

type manifestFile struct {
	Name                     string              `json:"name"`
	Version                  string              `json:"version"`
	Private                  bool                `json:"private"`
	Dependencies             map[string]string   `json:"dependencies"`
	DevDependencies          map[string]string   `json:"devDependencies"`
	PeerDependencies         map[string]string   `json:"peerDependencies"`
	OptionalPeerDependencies map[string]string   `json:"optionalPeerDependencies"`
	PeerDependenciesMeta     map[string]PeerMeta `json:"peerDependenciesMeta"`
	Scripts                  map[string]string   `json:"scripts"`
	Workspaces               workspacesField     `json:"workspaces"`
}

// workspacesField accepts both ["packages/*"] and {"packages": ["packages/*"]}.
type workspacesField []string

func (w *workspacesField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*w = list
		return nil
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("workspaces: %w", err)
	}
	*w = obj.Packages
	return nil
}

// ParseManifest decodes a package.json document.
func ParseManifest(data []byte) (*Manifest, error) {
	var f manifestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode package.json")
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode package.json")
	}
	return &Manifest{
		Name:                     f.Name,
		Version:                  f.Version,
		Private:                  f.Private,
		Dependencies:             f.Dependencies,
		DevDependencies:          f.DevDependencies,
		PeerDependencies:         f.PeerDependencies,
		OptionalPeerDependencies: f.OptionalPeerDependencies,
		PeerDependenciesMeta:     f.PeerDependenciesMeta,
		Scripts:                  f.Scripts,
		Workspaces:               f.Workspaces,
		doc:                      doc,
	}, nil
}

// Field returns the mapping stored under a dependency or scripts field, or
// nil for any other name.
func (m *Manifest) Field(name string) map[string]string {
	if p := m.fieldPtr(name); p != nil {
		return *p
	}
	return nil
}

func (m *Manifest) fieldPtr(name string) *map[string]string {
	switch name {
	case FieldDependencies:
		return &m.Dependencies
	case FieldDevDependencies:
		return &m.DevDependencies
	case FieldPeerDependencies:
		return &m.PeerDependencies
	case FieldOptionalPeerDependencies:
		return &m.OptionalPeerDependencies
	case FieldScripts:
		return &m.Scripts
	}
	return nil
}

// Set assigns value at path: ["version"] or [field, key] where field is one
// of the dependency fields or "scripts".
func (m *Manifest) Set(path []string, value string) error {
	if m.doc == nil {
		m.doc = newDocument()
	}
	switch len(path) {
	case 1:
		switch path[0] {
		case FieldVersion:
			m.Version = value
		case FieldName:
			m.Name = value
		default:
			return errors.New(errors.ErrCodeInvalidInput, "cannot set manifest field %q", path[0])
		}
		return m.setRaw(path[0], value)
	case 2:
		field := m.fieldPtr(path[0])
		if field == nil {
			return errors.New(errors.ErrCodeInvalidInput, "cannot set manifest field %q", path[0])
		}
		if *field == nil {
			*field = make(map[string]string)
		}
		(*field)[path[1]] = value
		return m.setRaw(path[0], *field)
	}
	return errors.New(errors.ErrCodeInvalidInput, "invalid manifest path %q", path)
}

func (m *Manifest) setRaw(key string, v any) error {
	raw, err := marshalValue(v)
	if err != nil {
		return err
	}
	m.doc.set(key, raw)
	m.dirty = true
	return nil
}

// Dirty reports whether the manifest changed since it was loaded.
func (m *Manifest) Dirty() bool { return m.dirty }

// Validate checks that a dependency name appears in at most one of
// dependencies/devDependencies and at most one of
// peerDependencies/optionalPeerDependencies.
func (m *Manifest) Validate() error {
	pairs := [][2]string{
		{FieldDependencies, FieldDevDependencies},
		{FieldPeerDependencies, FieldOptionalPeerDependencies},
	}
	for _, pair := range pairs {
		a, b := m.Field(pair[0]), m.Field(pair[1])
		for _, name := range slices.Sorted(maps.Keys(a)) {
			if _, ok := b[name]; ok {
				return errors.New(errors.ErrCodeInvalidManifest, "%q is listed in both %s and %s", name, pair[0], pair[1])
			}
		}
	}
	return nil
}

// Marshal encodes the manifest as package.json content: original key order,
// two-space indentation, trailing newline.
func (m *Manifest) Marshal() ([]byte, error) {
	if m.doc == nil {
		m.doc = newDocument()
	}
	return m.doc.marshal()
}

// Clone returns a deep copy of m.
func (m *Manifest) Clone() *Manifest {
	c := *m
	c.Dependencies = maps.Clone(m.Dependencies)
	c.DevDependencies = maps.Clone(m.DevDependencies)
	c.PeerDependencies = maps.Clone(m.PeerDependencies)
	c.OptionalPeerDependencies = maps.Clone(m.OptionalPeerDependencies)
	c.PeerDependenciesMeta = maps.Clone(m.PeerDependenciesMeta)
	c.Scripts = maps.Clone(m.Scripts)
	c.Workspaces = slices.Clone(m.Workspaces)
	if m.doc != nil {
		c.doc = m.doc.clone()
	}
	return &c
}

// peerView splits declared peers into required and optional sets, honouring
// peerDependenciesMeta.
func (m *Manifest) peerView() (peers, optional map[string]string) {
	peers = make(map[string]string)
	optional = maps.Clone(m.OptionalPeerDependencies)
	if optional == nil {
		optional = make(map[string]string)
	}
	for name, r := range m.PeerDependencies {
		if m.PeerDependenciesMeta[name].Optional {
			optional[name] = r
			continue
		}
		peers[name] = r
	}
	return peers, optional
}

// marshalValue encodes v without HTML escaping so scripts like "a && b"
// survive a rewrite.
func marshalValue(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
