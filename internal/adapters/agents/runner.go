// Package agents contains the adapter that executes pipeline stages.
//
// The agent set is fixed and known at compile time, so dispatch goes through
// a closed function table keyed by agent kind rather than open-ended
// subclassing. What each stage actually does (prompting a language-model
// backend, editing the workspace) lives behind the StageFunc; the runner
// only owns dispatch and timeout signalling.
package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/forge/internal/core/workflow"
	"github.com/example/forge/internal/ports/secondary"
)

// StageFunc executes one pipeline stage and returns its structured result.
type StageFunc func(ctx context.Context, input secondary.AgentInput) (*secondary.AgentResult, error)

// Registry maps each agent kind to its stage function.
type Registry map[workflow.AgentKind]StageFunc

// DispatchRunner implements secondary.AgentRunner over a fixed registry.
type DispatchRunner struct {
	registry Registry
}

// NewDispatchRunner creates a runner over the given registry.
func NewDispatchRunner(registry Registry) *DispatchRunner {
	return &DispatchRunner{registry: registry}
}

// Run dispatches one stage. A context deadline hit during the stage is
// reported as ErrStageTimeout, distinct from a logical stage failure.
func (r *DispatchRunner) Run(ctx context.Context, kind workflow.AgentKind, input secondary.AgentInput) (*secondary.AgentResult, error) {
	fn, ok := r.registry[kind]
	if !ok {
		return nil, fmt.Errorf("no agent registered for kind %q", kind)
	}

	result, err := fn(ctx, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", secondary.ErrStageTimeout, kind)
		}
		return nil, err
	}
	return result, nil
}
