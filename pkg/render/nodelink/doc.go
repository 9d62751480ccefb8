// Package nodelink renders a workspace graph as a node-link diagram.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{External: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: versions and directories on nodes, declared ranges on edges
//   - External: include packages resolved from node_modules
//   - DevDependencies: include devDependency edges (dashed)
//   - Changed: highlight workspaces that have pending mutations
//
// The DOT source can also be saved and processed with external Graphviz
// tools. SVG rendering runs in-process through
// [github.com/goccy/go-graphviz].
package nodelink
