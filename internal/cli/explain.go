package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peerpin/pkg/constraints"
	"github.com/matzehuels/peerpin/pkg/errors"
	"github.com/matzehuels/peerpin/pkg/semverrange"
	"github.com/matzehuels/peerpin/pkg/workspace"
)

// explainCommand creates the explain command: show the peer requirements a
// workspace inherits from its dependencies.
func (c *CLI) explainCommand(flags *workspaceFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "explain <workspace>",
		Short: "Show the peer requirements a workspace inherits",
		Long: `Explain aggregates the peer dependencies of every direct dependency of a
workspace and prints the reconciled range per peer, whether it is required,
and which dependency asked for which range.

<workspace> is a package name or a directory relative to the root.`,
		Example: `  peerpin explain @acme/app
  peerpin explain packages/app --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			p, err := openProject(ctx, flags, cmd.Flags())
			if err != nil {
				return err
			}
			w, err := findWorkspace(p.graph, args[0])
			if err != nil {
				return err
			}
			reqs, err := constraints.Aggregate(semverrange.Oracle{}, w)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reqs)
			}
			printExplain(cmd.OutOrStdout(), w, reqs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the requirements as JSON")

	return cmd
}

// findWorkspace looks a workspace up by identity, then by directory.
func findWorkspace(g *workspace.Graph, ref string) (*workspace.Workspace, error) {
	if w, ok := g.Workspace(ref); ok {
		return w, nil
	}
	for _, w := range g.Workspaces() {
		if w.Dir == ref {
			return w, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "no workspace %q", ref)
}

func printExplain(out io.Writer, w *workspace.Workspace, reqs constraints.Requirements) {
	printKeyValue("Workspace", w.Ident())
	printKeyValue("Directory", w.Dir)
	if w.Manifest.Private {
		printKeyValue("Private", "yes, peers are not propagated")
	}
	printNewline()
	if len(reqs) == 0 {
		printInfo("No peer requirements")
		return
	}
	fmt.Fprintln(out, requirementTable(reqs))
}
