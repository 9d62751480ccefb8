package cli

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/matzehuels/peerpin/pkg/errors"
)

// installTailLines is how much of a failed install's output is echoed.
const installTailLines = 20

// runInstall runs the install command in dir behind a spinner.
func runInstall(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "install command is empty")
	}
	logger := loggerFromContext(ctx)
	display := strings.Join(argv, " ")
	logger.Debug("running install command", "cmd", display, "dir", dir)

	spinner := newSpinnerWithContext(ctx, "Running "+display)
	spinner.Start()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if spinner.Stop(); spinner.Cancelled() {
			return ctx.Err()
		}
		spinner.StopWithError(display + " failed")
		for _, line := range tail(out, installTailLines) {
			printDetail("%s", line)
		}
		return errors.Wrap(errors.ErrCodeInstall, err, "%s", display)
	}
	spinner.StopWithSuccess("Dependencies installed")
	return nil
}

// tail returns the last n non-empty lines of out.
func tail(out []byte, n int) []string {
	var lines []string
	for _, line := range bytes.Split(bytes.TrimSpace(out), []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			lines = append(lines, string(line))
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// relPath shortens path for display; it falls back to path when it is not
// under root.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
