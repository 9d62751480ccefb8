package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// document is a JSON object that remembers the order of its keys.
type document struct {
	keys   []string
	values map[string]json.RawMessage
}

func newDocument() *document {
	return &document{values: make(map[string]json.RawMessage)}
}

func decodeDocument(data []byte) (*document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	doc := newDocument()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %q: %w", key, err)
		}
		doc.set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

// set stores raw under key. New keys are appended; existing keys keep their
// position.
func (d *document) set(key string, raw json.RawMessage) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = raw
}

func (d *document) clone() *document {
	return &document{keys: slices.Clone(d.keys), values: maps.Clone(d.values)}
}

func (d *document) marshal() ([]byte, error) {
	var buf bytes.Buffer
	if len(d.keys) == 0 {
		buf.WriteString("{}\n")
		return buf.Bytes(), nil
	}
	buf.WriteString("{\n")
	for i, key := range d.keys {
		k, err := marshalValue(key)
		if err != nil {
			return nil, err
		}
		buf.WriteString("  ")
		buf.Write(k)
		buf.WriteString(": ")
		if err := json.Indent(&buf, d.values[key], "  ", "  "); err != nil {
			return nil, fmt.Errorf("encode %q: %w", key, err)
		}
		if i < len(d.keys)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
