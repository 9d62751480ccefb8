// Package observability lets a host program watch the engine without the
// engine depending on a logging or metrics backend.
//
// The engine packages report events to whatever hooks are registered here;
// until main registers some, every event goes to a no-op. The CLI forwards
// events to its debug log:
//
//	observability.SetEnforceHooks(logHooks{logger})
//	observability.SetLoadHooks(logHooks{logger})
//
// and the enforcer emits them as it runs:
//
//	observability.Enforce().OnPassStart(ctx, pass)
//	observability.Enforce().OnRuleComplete(ctx, rule, mutations, elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// EnforceHooks receives events from the constraint enforcer.
type EnforceHooks interface {
	// OnPassStart is called before every pass; pass is 1-based.
	OnPassStart(ctx context.Context, pass int)

	// OnRuleComplete is called after one rule ran within a pass.
	OnRuleComplete(ctx context.Context, rule string, mutations int, duration time.Duration, err error)

	// OnMutation is called for every pending manifest change.
	OnMutation(ctx context.Context, workspace string, path []string, value string)
}

// LoadHooks receives events from workspace discovery.
type LoadHooks interface {
	OnLoadComplete(ctx context.Context, root string, workspaces int, duration time.Duration, err error)
}

// NoopEnforceHooks discards every enforcement event.
type NoopEnforceHooks struct{}

func (NoopEnforceHooks) OnPassStart(context.Context, int)                                 {}
func (NoopEnforceHooks) OnRuleComplete(context.Context, string, int, time.Duration, error) {}
func (NoopEnforceHooks) OnMutation(context.Context, string, []string, string)             {}

// NoopLoadHooks discards every load event.
type NoopLoadHooks struct{}

func (NoopLoadHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}

type registry struct {
	mu      sync.RWMutex
	enforce EnforceHooks
	load    LoadHooks
}

var hooks = registry{enforce: NoopEnforceHooks{}, load: NoopLoadHooks{}}

// SetEnforceHooks installs h for all later enforcement runs. A nil h is
// ignored.
func SetEnforceHooks(h EnforceHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.enforce = h
	hooks.mu.Unlock()
}

// SetLoadHooks installs h for all later workspace loads. A nil h is ignored.
func SetLoadHooks(h LoadHooks) {
	if h == nil {
		return
	}
	hooks.mu.Lock()
	hooks.load = h
	hooks.mu.Unlock()
}

// Enforce returns the installed enforcement hooks.
func Enforce() EnforceHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.enforce
}

// Load returns the installed load hooks.
func Load() LoadHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.load
}

// Reset puts the no-op hooks back. Tests call it in cleanup.
func Reset() {
	hooks.mu.Lock()
	hooks.enforce = NoopEnforceHooks{}
	hooks.load = NoopLoadHooks{}
	hooks.mu.Unlock()
}
