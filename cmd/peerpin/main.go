// Command peerpin enforces dependency-version constraints across a
// JavaScript workspace.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peerpin/internal/cli"
	perrors "github.com/matzehuels/peerpin/pkg/errors"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitCanceled = 130 // Standard shell convention for SIGINT
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	err := execute(ctx, args, stderr)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitCanceled
	default:
		fmt.Fprintln(stderr, perrors.UserMessage(err))
		return exitFailure
	}
}

func execute(ctx context.Context, args []string, stderr io.Writer) error {
	var verbose bool

	c := cli.New(stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The level is only known once flags are parsed.
	registerHooks := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if registerHooks != nil {
			return registerHooks(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
