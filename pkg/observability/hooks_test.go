package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingHooks struct {
	NoopEnforceHooks
	passes int
}

func (h *countingHooks) OnPassStart(context.Context, int) { h.passes++ }

type loadHooks struct{ NoopLoadHooks }

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	ctx := context.Background()

	assert.IsType(t, NoopEnforceHooks{}, Enforce())
	assert.IsType(t, NoopLoadHooks{}, Load())
	assert.NotPanics(t, func() {
		Enforce().OnPassStart(ctx, 1)
		Enforce().OnRuleComplete(ctx, "peer-dependencies", 3, time.Millisecond, nil)
		Enforce().OnMutation(ctx, "app", []string{"dependencies", "react"}, "^18.0.0")
		Load().OnLoadComplete(ctx, "/repo", 4, time.Second, nil)
	})
}

func TestSetAndReset(t *testing.T) {
	t.Cleanup(Reset)

	h := &countingHooks{}
	SetEnforceHooks(h)
	SetLoadHooks(&loadHooks{})

	Enforce().OnPassStart(context.Background(), 1)
	Enforce().OnPassStart(context.Background(), 2)
	assert.Equal(t, 2, h.passes)
	assert.IsType(t, &loadHooks{}, Load())

	SetEnforceHooks(nil)
	SetLoadHooks(nil)
	assert.Same(t, h, Enforce(), "nil hooks are ignored")
	assert.IsType(t, &loadHooks{}, Load())

	Reset()
	assert.IsType(t, NoopEnforceHooks{}, Enforce())
	assert.IsType(t, NoopLoadHooks{}, Load())
}
