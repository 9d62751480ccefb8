package constraints

import (
	"bytes"
	"encoding/json"
)

// Enforcement modes.
const (
	ModeConstraints = "constraints"
	ModeVersion     = "version"
)

// Report is the machine-readable summary of an enforcement run.
type Report struct {
	RunID     string     `json:"runId"`
	Root      string     `json:"root"`
	Mode      string     `json:"mode"`
	Rules     []string   `json:"rules"`
	Passes    int        `json:"passes"`
	Mutations []Mutation `json:"mutations"`
}

// Report summarizes res as produced by e over the workspace at root.
func (e *Enforcer) Report(runID, root string, res *Result) *Report {
	r := &Report{
		RunID:     runID,
		Root:      root,
		Mode:      ModeConstraints,
		Passes:    res.Passes,
		Mutations: res.Mutations,
	}
	if e.opts.Version != "" {
		r.Mode = ModeVersion
	}
	for _, rule := range e.rules {
		r.Rules = append(r.Rules, rule.Name())
	}
	if r.Mutations == nil {
		r.Mutations = []Mutation{}
	}
	return r
}

// JSON encodes the report as indented JSON with a trailing newline. Scripts
// are written as-is, without HTML escaping.
func (r *Report) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseReport decodes a report written by JSON.
func ParseReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Mutations == nil {
		r.Mutations = []Mutation{}
	}
	return &r, nil
}
