package cli

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks implements the observability hooks on top of the CLI logger.
type logHooks struct {
	logger *log.Logger
}

func (h logHooks) OnPassStart(_ context.Context, pass int) {
	h.logger.Debug("pass started", "pass", pass)
}

func (h logHooks) OnRuleComplete(_ context.Context, rule string, mutations int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("rule failed", "rule", rule, "err", err)
		return
	}
	h.logger.Debug("rule finished", "rule", rule, "writes", mutations, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnMutation(_ context.Context, workspace string, path []string, value string) {
	h.logger.Debug("pending change", "workspace", workspace, "path", strings.Join(path, "."), "value", value)
}

func (h logHooks) OnLoadComplete(_ context.Context, root string, workspaces int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("workspace load failed", "root", root, "err", err)
		return
	}
	h.logger.Debug("workspace loaded", "root", root, "workspaces", workspaces, "took", d.Round(time.Millisecond))
}
