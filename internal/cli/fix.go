package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peerpin/pkg/constraints"
	"github.com/matzehuels/peerpin/pkg/errors"
)

type fixOpts struct {
	dryRun      bool
	install     bool
	interactive bool
	json        bool
}

// fixCommand creates the fix command: apply pending changes to the
// manifests.
func (c *CLI) fixCommand(flags *workspaceFlags) *cobra.Command {
	var opts fixOpts

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Rewrite manifests so they satisfy the workspace constraints",
		Long: `Fix runs the constraint rules and writes every required change to the
affected package.json files. Key order and unrelated fields are preserved.

With --install the configured install command runs afterwards so node_modules
reflects the new ranges.`,
		Example: `  # Apply all pending changes
  peerpin fix

  # Pick the changes to apply
  peerpin fix --interactive

  # Bump every public workspace to 2.0.0 and re-install
  peerpin fix --set-version 2.0.0 --install`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			p, err := openProject(ctx, flags, cmd.Flags())
			if err != nil {
				return err
			}
			return runFix(ctx, p, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "show the changes without writing them")
	cmd.Flags().BoolVar(&opts.install, "install", false, "run the install command after writing")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "choose which changes to apply")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.MarkFlagsMutuallyExclusive("interactive", "json")

	return cmd
}

func runFix(ctx context.Context, p *project, opts fixOpts, out io.Writer) error {
	e, res, err := p.enforce(ctx)
	if err != nil {
		return err
	}

	muts := res.Mutations
	if opts.interactive && len(muts) > 0 {
		muts, err = selectMutations(muts)
		if err != nil {
			return err
		}
		if len(muts) == 0 {
			printInfo("Nothing applied")
			return nil
		}
	}

	if opts.json {
		data, err := e.Report(p.runID, p.root, &constraints.Result{Mutations: muts, Passes: res.Passes}).JSON()
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}

	if len(muts) == 0 {
		if !opts.json {
			printSuccess("All %d workspaces satisfy the constraints", len(p.graph.Workspaces()))
		}
		return nil
	}

	if opts.dryRun {
		if !opts.json {
			printInfo("%d changes would be written", len(muts))
			fmt.Println(mutationTable(muts))
		}
		return nil
	}

	if err := p.graph.Apply(muts); err != nil {
		return err
	}
	written, err := p.graph.Save()
	for _, path := range written {
		p.logger.Debug("wrote manifest", "path", path)
	}
	if err != nil {
		return err
	}

	if !opts.json {
		printSuccess("Applied %d changes to %d manifests", len(muts), len(written))
		for _, path := range written {
			printFile(relPath(p.root, path))
		}
	}

	if opts.install {
		return runInstall(ctx, p.root, p.cfg.InstallCommand)
	}
	if !opts.json {
		printNextStep("Re-sync node_modules with", "peerpin fix --install")
	}
	return nil
}
