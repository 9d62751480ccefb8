package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peerpin/pkg/cache"
	"github.com/matzehuels/peerpin/pkg/constraints"
	"github.com/matzehuels/peerpin/pkg/errors"
)

type checkOpts struct {
	json    bool
	noCache bool
}

// checkCommand creates the check command: report pending changes without
// writing them.
func (c *CLI) checkCommand(flags *workspaceFlags) *cobra.Command {
	var opts checkOpts

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report manifests that violate the workspace constraints",
		Long: `Check runs the constraint rules and lists every manifest change they require.

Nothing is written. The command exits with a non-zero status when changes are
pending, so it can gate CI. A clean result is cached per manifest fingerprint;
use --no-cache to force a full run.`,
		Example: `  # Check the workspace in the current directory
  peerpin check

  # Machine-readable report
  peerpin check --json

  # Check that every public workspace is at version 2.0.0
  peerpin check --set-version 2.0.0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			p, err := openProject(ctx, flags, cmd.Flags())
			if err != nil {
				return err
			}
			return runCheck(ctx, p, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "ignore cached results")

	return cmd
}

func runCheck(ctx context.Context, p *project, opts checkOpts, out io.Writer) error {
	store, err := newCache(opts.noCache, p.logger)
	if err != nil {
		return err
	}
	defer store.Close()

	key, err := p.checkKey()
	if err != nil {
		return err
	}
	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		if cached, err := restamp(data, p.runID); err == nil {
			p.logger.Debug("cache hit", "key", key[:12])
			if opts.json {
				_, err := out.Write(cached)
				return err
			}
			printSuccess("All %d workspaces satisfy the constraints %s", len(p.graph.Workspaces()), styleOK.Render(labelCached))
			return nil
		}
		p.logger.Debug("discarding unreadable cache entry", "key", key[:12])
		_ = store.Delete(ctx, key)
	}

	e, res, err := p.enforce(ctx)
	if err != nil {
		return err
	}
	report := e.Report(p.runID, p.root, res)
	data, err := report.JSON()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode report")
	}

	if len(res.Mutations) == 0 {
		if err := store.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			p.logger.Warn("could not cache result", "err", err)
		}
	}

	if opts.json {
		if _, err := out.Write(data); err != nil {
			return err
		}
	} else {
		printCheck(p, report)
	}

	if len(res.Mutations) > 0 {
		return errors.New(errors.ErrCodeViolations, "%d pending changes in %d workspaces", len(res.Mutations), countWorkspaces(res.Mutations))
	}
	return nil
}

// restamp rewrites a cached report with the current run ID.
func restamp(data []byte, runID string) ([]byte, error) {
	r, err := constraints.ParseReport(data)
	if err != nil {
		return nil, err
	}
	r.RunID = runID
	return r.JSON()
}

func printCheck(p *project, r *constraints.Report) {
	if len(r.Mutations) == 0 {
		printSuccess("All %d workspaces satisfy the constraints", len(p.graph.Workspaces()))
		printStats(len(p.graph.Workspaces()), r.Passes, false)
		return
	}

	printWarning("%d pending changes in %d workspaces", len(r.Mutations), countWorkspaces(r.Mutations))
	printNewline()
	fmt.Println(mutationTable(r.Mutations))
	printNewline()
	printNextStep("Apply them with", "peerpin fix")
}

func countWorkspaces(muts []constraints.Mutation) int {
	seen := make(map[string]bool)
	for _, m := range muts {
		seen[m.Workspace] = true
	}
	return len(seen)
}
