// Package workflow contains the pure business logic for workflow orchestration.
// This is part of the Functional Core - no I/O, only pure functions.
package workflow

import "fmt"

// GuardResult represents the outcome of a guard evaluation. Cause, when set,
// names the specific precondition that blocked the operation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Cause   error
}

// Error returns the guard result as an error if not allowed, nil otherwise.
// The error always matches ErrNotResumable; when Cause is set it matches that
// sentinel as well.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Cause != nil {
		return fmt.Errorf("%w: %w: %s", ErrNotResumable, r.Cause, r.Reason)
	}
	return fmt.Errorf("%w: %s", ErrNotResumable, r.Reason)
}

// ResumeContext provides the context for resume precondition guards.
// Populated by the caller from the stored workflow record.
type ResumeContext struct {
	WorkflowID int64
	Status     Status
	BranchName string
}

// CanResume evaluates whether an interrupted workflow may be resumed.
// Rules: a completed workflow has nothing to resume, and a workflow that
// failed before a branch was ever assigned must be restarted as a new
// workflow instead.
func CanResume(ctx ResumeContext) GuardResult {
	if ctx.Status == StatusCompleted {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("workflow %d is already completed", ctx.WorkflowID),
		}
	}
	if ctx.BranchName == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("workflow %d has no branch assigned - restart it as a new workflow", ctx.WorkflowID),
			Cause:   ErrMissingBranchName,
		}
	}
	return GuardResult{Allowed: true}
}

// ExecutionSummary is the slice of an AgentExecution record the resume
// computation needs: which stage, which pass, and whether it finished.
type ExecutionSummary struct {
	AgentKind AgentKind
	Status    ExecutionStatus
	Attempt   int
}

// ComputeResumeIndex determines the stage index at which to re-enter the
// orchestrator loop. executions must be in creation order. The default is
// the position immediately after the last completed stage of the most recent
// pass. An explicit override must lie within [0, planLength-1].
//
// The default may equal planLength when the interruption happened after the
// final stage but before finalization; the loop then runs zero stages and
// finalizes.
func ComputeResumeIndex(executions []ExecutionSummary, planLength int, explicit *int) (int, error) {
	if explicit != nil {
		if *explicit < 0 || *explicit >= planLength {
			return 0, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidStageIndex, *explicit, planLength-1)
		}
		return *explicit, nil
	}

	latest := latestPass(executions)
	completed := 0
	for _, e := range executions {
		if e.Attempt != latest {
			continue
		}
		if e.Status != ExecutionCompleted {
			break
		}
		completed++
	}

	if completed > planLength {
		completed = planLength
	}
	return completed, nil
}

// latestPass returns the highest attempt number seen, or 1 when no
// executions exist yet.
func latestPass(executions []ExecutionSummary) int {
	latest := 1
	for _, e := range executions {
		if e.Attempt > latest {
			latest = e.Attempt
		}
	}
	return latest
}
