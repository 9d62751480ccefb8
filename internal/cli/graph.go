package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peerpin/pkg/errors"
	"github.com/matzehuels/peerpin/pkg/render/nodelink"
)

// Graph output formats.
const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type graphOpts struct {
	format    string
	output    string
	external  bool
	dev       bool
	detailed  bool
	highlight bool
}

// graphCommand creates the graph command: render the workspace dependency
// graph.
func (c *CLI) graphCommand(flags *workspaceFlags) *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the workspace dependency graph",
		Long: `Graph renders workspaces and their dependencies as Graphviz DOT or SVG.

Private workspaces are dashed. With --highlight the rules run first and every
workspace with pending changes is filled.`,
		Example: `  peerpin graph > deps.dot
  peerpin graph --format svg --external --highlight -o deps.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			p, err := openProject(ctx, flags, cmd.Flags())
			if err != nil {
				return err
			}
			return runGraph(ctx, p, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatDOT, "output format (dot, svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.external, "external", false, "include external packages")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "include devDependency edges")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show versions and ranges")
	cmd.Flags().BoolVar(&opts.highlight, "highlight", false, "highlight workspaces with pending changes")

	return cmd
}

func runGraph(ctx context.Context, p *project, opts graphOpts, stdout io.Writer) error {
	if opts.format != formatDOT && opts.format != formatSVG {
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot or svg)", opts.format)
	}

	renderOpts := nodelink.Options{
		Detailed:        opts.detailed,
		External:        opts.external,
		DevDependencies: opts.dev,
	}
	if opts.highlight {
		_, res, err := p.enforce(ctx)
		if err != nil {
			return err
		}
		renderOpts.Changed = make(map[string]bool)
		for _, m := range res.Mutations {
			renderOpts.Changed[m.Workspace] = true
		}
	}

	data := []byte(nodelink.ToDOT(p.graph, renderOpts))
	if opts.format == formatSVG {
		prog := newProgress(p.logger)
		svg, err := nodelink.RenderSVG(ctx, string(data))
		if err != nil {
			return err
		}
		prog.done("Rendered SVG", "bytes", len(svg))
		data = svg
	}

	if opts.output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", opts.output)
	}
	printSuccess("Wrote %s graph", opts.format)
	printFile(opts.output)
	return nil
}
