// Package primary defines the primary ports (driving adapters) for the application.
package primary

import "context"

// OrchestrationService defines the primary port for driving the agent
// pipeline. Both entry points return a structured report; they never panic
// across the boundary, and every stage-level error is persisted before it is
// surfaced to the caller.
type OrchestrationService interface {
	// Execute runs the full pipeline for a previously created workflow:
	// branch assignment, workspace provisioning, then the stage loop with
	// feedback-driven retries.
	Execute(ctx context.Context, workflowID int64) (*RunReport, error)

	// Resume re-enters the stage loop of an interrupted workflow at the
	// position after its last completed stage, or at stageIndex when the
	// caller supplies one. Completed stages are never re-executed and the
	// existing workspace is reused.
	Resume(ctx context.Context, workflowID int64, stageIndex *int) (*RunReport, error)
}

// RunReport is the final outcome of an Execute or Resume call.
type RunReport struct {
	WorkflowID int64
	Status     string
	BranchName string
	Passes     int    // pipeline passes attempted, 1 + retries
	Report     string // stage summaries in execution order
	Artifacts  []*Artifact
	PRURL      string
}
