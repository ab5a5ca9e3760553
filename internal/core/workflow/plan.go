// Package workflow contains the pure business logic for workflow orchestration.
// This is part of the Functional Core - no I/O, only pure functions.
package workflow

import (
	"fmt"
	"time"
)

// Default budgets applied when a PlanTable carries no override.
const (
	DefaultMaxRetries   = 3
	DefaultStageTimeout = 10 * time.Minute
)

// ExecutionPlan is the ordered stage list and retry/timeout budget derived
// from a workflow's type. It is rebuilt deterministically from the type every
// time it is needed and never persisted, so a resumed run always sees the
// same plan as the original run.
type ExecutionPlan struct {
	WorkflowID   int64
	AgentKinds   []AgentKind
	MaxRetries   int
	StageTimeout time.Duration
}

// Length returns the number of stages in the plan.
func (p ExecutionPlan) Length() int {
	return len(p.AgentKinds)
}

// PlanTable is the immutable type-to-stages configuration. It is constructed
// once at process start and passed by reference into the orchestrator.
type PlanTable struct {
	stages       map[Type][]AgentKind
	maxRetries   int
	stageTimeout time.Duration
}

// PlanOverride adjusts the default budgets of a PlanTable. Stage sequences
// themselves are fixed; only budgets are tunable.
type PlanOverride struct {
	MaxRetries   int
	StageTimeout time.Duration
}

// NewPlanTable builds the fixed type-to-stages table.
func NewPlanTable(override PlanOverride) *PlanTable {
	t := &PlanTable{
		stages: map[Type][]AgentKind{
			TypeFeature:       {AgentPlan, AgentCode, AgentSecurityLint, AgentTest, AgentReview, AgentDocument},
			TypeBugfix:        {AgentPlan, AgentCode, AgentSecurityLint, AgentTest, AgentReview},
			TypeRefactor:      {AgentPlan, AgentCode, AgentSecurityLint, AgentTest, AgentReview},
			TypeDocumentation: {AgentDocument},
			TypeReview:        {AgentReview},
		},
		maxRetries:   DefaultMaxRetries,
		stageTimeout: DefaultStageTimeout,
	}
	if override.MaxRetries > 0 {
		t.maxRetries = override.MaxRetries
	}
	if override.StageTimeout > 0 {
		t.stageTimeout = override.StageTimeout
	}
	return t
}

// BuildPlan resolves the execution plan for a workflow. It fails only for an
// unrecognized workflow type, which is a configuration error - the workflow
// cannot proceed.
func (t *PlanTable) BuildPlan(workflowID int64, workflowType Type) (ExecutionPlan, error) {
	stages, ok := t.stages[workflowType]
	if !ok {
		return ExecutionPlan{}, fmt.Errorf("%w: %q", ErrUnknownWorkflowType, workflowType)
	}

	// Copy so callers can never mutate the shared table.
	kinds := make([]AgentKind, len(stages))
	copy(kinds, stages)

	return ExecutionPlan{
		WorkflowID:   workflowID,
		AgentKinds:   kinds,
		MaxRetries:   t.maxRetries,
		StageTimeout: t.stageTimeout,
	}, nil
}
