// Package app contains the application services that orchestrate business logic.
package app

import (
	"context"
	"fmt"

	"github.com/example/forge/internal/core/workflow"
	"github.com/example/forge/internal/ports/primary"
	"github.com/example/forge/internal/ports/secondary"
)

// Resume reconstructs the in-memory state of an interrupted workflow from
// persistence and re-enters the stage loop at the interruption point.
// Completed stages are never re-executed; the existing workspace directory
// is reused without re-provisioning. This is a deliberately distinct
// recovery path from the in-pass feedback retry, which restarts at stage 0.
func (s *OrchestratorService) Resume(ctx context.Context, workflowID int64, stageIndex *int) (*primary.RunReport, error) {
	record, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	guard := workflow.CanResume(workflow.ResumeContext{
		WorkflowID: workflowID,
		Status:     workflow.Status(record.Status),
		BranchName: record.BranchName,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	// The plan is a pure function of the workflow type, so the resumed run
	// sees exactly the plan the original run saw.
	plan, err := s.plans.BuildPlan(workflowID, workflow.Type(record.Type))
	if err != nil {
		return nil, err
	}

	executions, err := s.executionRepo.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load executions: %w", err)
	}

	resumeIndex, err := workflow.ComputeResumeIndex(executionSummaries(executions), plan.Length(), stageIndex)
	if err != nil {
		// Invalid explicit index: reject without mutating workflow state.
		return nil, err
	}

	results, pass, err := s.reconstructResults(ctx, workflowID, executions, resumeIndex)
	if err != nil {
		return nil, err
	}

	// The retry budget is workflow-wide, not per-process: every pass beyond
	// the first consumed one retry, so the counter is reconstructed from the
	// pass number. A resume can never grant additional passes.
	retries := pass - 1
	if retries > plan.MaxRetries {
		retries = plan.MaxRetries
	}

	if err := s.workflowRepo.UpdateStatus(ctx, workflowID, string(workflow.StatusPending), ""); err != nil {
		return nil, fmt.Errorf("failed to reset workflow status: %w", err)
	}

	run := runState{
		workflowID:    workflowID,
		workflowType:  workflow.Type(record.Type),
		description:   record.Description,
		branch:        record.BranchName,
		workspacePath: s.provisioner.ResolveWorkspacePath(workflowID),
		plan:          plan,
		stageIndex:    resumeIndex,
		results:       results,
		pass:          pass,
		retries:       retries,
	}

	s.audit(ctx, &run, "", "resumed", fmt.Sprintf("re-entering at stage %d of %d", resumeIndex, plan.Length()))
	return s.runToCompletion(ctx, &run)
}

// reconstructResults rebuilds the prior-stage result list from the completed
// executions of the most recent pass - summaries and artifacts only, no
// re-execution. Returns the results and the pass number the resumed stages
// continue under.
func (s *OrchestratorService) reconstructResults(ctx context.Context, workflowID int64, executions []*secondary.AgentExecutionRecord, resumeIndex int) ([]secondary.StageResult, int, error) {
	pass := 1
	for _, e := range executions {
		if e.Attempt > pass {
			pass = e.Attempt
		}
	}

	artifacts, err := s.artifactRepo.ListByWorkflow(ctx, workflowID, secondary.ArtifactFilters{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load artifacts: %w", err)
	}

	var results []secondary.StageResult
	for _, e := range executions {
		if e.Attempt != pass || e.Status != string(workflow.ExecutionCompleted) {
			continue
		}
		if len(results) >= resumeIndex {
			break
		}
		var own []secondary.ArtifactRecord
		for _, a := range artifacts {
			if a.ExecutionID == e.ID {
				own = append(own, *a)
			}
		}
		results = append(results, secondary.StageResult{
			AgentKind: workflow.AgentKind(e.AgentKind),
			Summary:   e.Summary,
			Artifacts: own,
		})
	}
	return results, pass, nil
}

// executionSummaries projects persistence records onto the slice the pure
// resume computation needs.
func executionSummaries(executions []*secondary.AgentExecutionRecord) []workflow.ExecutionSummary {
	summaries := make([]workflow.ExecutionSummary, 0, len(executions))
	for _, e := range executions {
		summaries = append(summaries, workflow.ExecutionSummary{
			AgentKind: workflow.AgentKind(e.AgentKind),
			Status:    workflow.ExecutionStatus(e.Status),
			Attempt:   e.Attempt,
		})
	}
	return summaries
}
