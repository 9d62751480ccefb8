package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/peerpin/pkg/workspace"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the version and directory in node labels and the
	// declared range on edges. When false, only names are shown.
	Detailed bool

	// External includes dependencies that are not workspaces.
	External bool

	// DevDependencies includes devDependency edges.
	DevDependencies bool

	// Changed highlights workspaces with pending mutations, by identity.
	Changed map[string]bool
}

// ToDOT converts a workspace graph to Graphviz DOT format.
//
// Workspaces are boxes; private ones are dashed and changed ones are
// highlighted. External packages, when included, are grey ellipses. Edges
// point from consumer to dependency; devDependency edges are dashed.
func ToDOT(g *workspace.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	externals := make(map[string]string)
	for _, w := range g.Workspaces() {
		label := fmtLabel(w.Ident(), w.Manifest.Version, w.Dir, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [%s];\n", w.Ident(), strings.Join(workspaceAttrs(w, label, opts), ", "))
		for _, e := range edges(w, opts) {
			if p, ok := w.Dependency(e.Name); ok && p.Workspace == nil {
				externals[e.Name] = p.Version
			}
		}
	}
	if opts.External {
		for _, name := range slices.Sorted(maps.Keys(externals)) {
			label := fmtLabel(name, externals[name], "", opts.Detailed)
			fmt.Fprintf(&buf, "  %q [label=%q, shape=ellipse, fillcolor=lightgrey];\n", name, label)
		}
	}

	buf.WriteString("\n")
	for _, w := range g.Workspaces() {
		for _, e := range edges(w, opts) {
			p, ok := w.Dependency(e.Name)
			if !ok || (p.Workspace == nil && !opts.External) {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q%s;\n", e.From, e.Name, edgeAttrs(e, opts.Detailed))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edges(w *workspace.Workspace, opts Options) []workspace.Edge {
	var out []workspace.Edge
	for _, e := range w.Edges() {
		switch e.Kind {
		case workspace.KindDependency:
			out = append(out, e)
		case workspace.KindDevDependency:
			if opts.DevDependencies {
				out = append(out, e)
			}
		}
	}
	return out
}

func fmtLabel(name, version, dir string, detailed bool) string {
	if !detailed {
		return name
	}
	var parts []string
	if version != "" {
		parts = append(parts, "version: "+version)
	}
	if dir != "" {
		parts = append(parts, "dir: "+dir)
	}
	return strings.Join(append([]string{name}, parts...), "\n")
}

func workspaceAttrs(w *workspace.Workspace, label string, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if w.Manifest.Private {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if opts.Changed[w.Ident()] {
		attrs = append(attrs, "fillcolor=\"#fde68a\"", "penwidth=2")
	}
	return attrs
}

func edgeAttrs(e workspace.Edge, detailed bool) string {
	var attrs []string
	if e.Kind == workspace.KindDevDependency {
		attrs = append(attrs, "style=dashed")
	}
	if detailed {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Range))
	}
	if len(attrs) == 0 {
		return ""
	}
	return " [" + strings.Join(attrs, ", ") + "]"
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> tag with one whose
// viewBox starts at the origin, so the diagram scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
