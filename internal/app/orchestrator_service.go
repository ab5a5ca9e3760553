// Package app contains the application services that orchestrate business logic.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/forge/internal/core/workflow"
	"github.com/example/forge/internal/ports/primary"
	"github.com/example/forge/internal/ports/secondary"
)

// OrchestratorService implements the OrchestrationService interface.
// It walks a workflow's execution plan in order, invoking one agent per
// stage, and carries feedback-driven retries as explicit loop state.
type OrchestratorService struct {
	workflowRepo  secondary.WorkflowRepository
	executionRepo secondary.AgentExecutionRepository
	artifactRepo  secondary.ArtifactRepository
	stageLogRepo  secondary.StageLogRepository
	runner        secondary.AgentRunner
	provisioner   secondary.WorkspaceProvisioner
	publisher     secondary.PullRequestPublisher
	docSink       secondary.StageDocSink
	plans         *workflow.PlanTable
	baseBranches  map[workflow.Type]string
}

// NewOrchestratorService creates a new OrchestratorService with injected
// dependencies. plans is the immutable type-to-stages table built once at
// process start. baseBranches maps workflow types to the branch a workspace
// is checked out from; missing types fall back to "main".
func NewOrchestratorService(
	workflowRepo secondary.WorkflowRepository,
	executionRepo secondary.AgentExecutionRepository,
	artifactRepo secondary.ArtifactRepository,
	stageLogRepo secondary.StageLogRepository,
	runner secondary.AgentRunner,
	provisioner secondary.WorkspaceProvisioner,
	publisher secondary.PullRequestPublisher,
	docSink secondary.StageDocSink,
	plans *workflow.PlanTable,
	baseBranches map[workflow.Type]string,
) *OrchestratorService {
	return &OrchestratorService{
		workflowRepo:  workflowRepo,
		executionRepo: executionRepo,
		artifactRepo:  artifactRepo,
		stageLogRepo:  stageLogRepo,
		runner:        runner,
		provisioner:   provisioner,
		publisher:     publisher,
		docSink:       docSink,
		plans:         plans,
		baseBranches:  baseBranches,
	}
}

// Execute runs the full pipeline for a previously created workflow.
func (s *OrchestratorService) Execute(ctx context.Context, workflowID int64) (*primary.RunReport, error) {
	record, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}
	if workflow.IsTerminal(workflow.Status(record.Status)) {
		return nil, fmt.Errorf("workflow %d already ended with status %s", workflowID, record.Status)
	}

	plan, err := s.plans.BuildPlan(workflowID, workflow.Type(record.Type))
	if err != nil {
		// Configuration error - fatal, no retry.
		_ = s.workflowRepo.Fail(ctx, workflowID, err.Error())
		return nil, err
	}

	// Branch name is assigned exactly once for the workflow's lifetime.
	branch := record.BranchName
	if branch == "" {
		branch = workflow.BranchName(workflowID, workflow.Type(record.Type), record.Description)
		if err := s.workflowRepo.UpdateStatus(ctx, workflowID, string(workflow.StatusPending), branch); err != nil {
			return nil, fmt.Errorf("failed to assign branch: %w", err)
		}
	}

	workspacePath, err := s.provisioner.Provision(ctx, workflowID, branch, s.baseBranchFor(workflow.Type(record.Type)))
	if err != nil {
		// Cannot proceed without a workspace.
		reason := fmt.Sprintf("workspace provisioning failed: %v", err)
		_ = s.workflowRepo.Fail(ctx, workflowID, reason)
		return nil, fmt.Errorf("%s", reason)
	}

	run := runState{
		workflowID:    workflowID,
		workflowType:  workflow.Type(record.Type),
		description:   record.Description,
		branch:        branch,
		workspacePath: workspacePath,
		plan:          plan,
		pass:          1,
	}
	return s.runToCompletion(ctx, &run)
}

// runState is the in-memory state of one orchestration run. Retry and
// resume both re-enter the loop through this value, so every decision the
// loop makes is inspectable in tests.
type runState struct {
	workflowID    int64
	workflowType  workflow.Type
	description   string
	branch        string
	workspacePath string
	plan          workflow.ExecutionPlan

	stageIndex int                    // next stage to run
	results    []secondary.StageResult // completed stages of the current pass
	pass       int                    // 1-based pipeline pass number
	retries    int                    // workflow-wide retry counter
	retryCtx   *workflow.RetryContext
}

// runToCompletion drives the stage loop until the plan finishes or a
// terminal failure occurs, then finalizes the workflow either way.
func (s *OrchestratorService) runToCompletion(ctx context.Context, run *runState) (*primary.RunReport, error) {
	for {
		restarted, err := s.runPass(ctx, run)
		if err != nil {
			return nil, err
		}
		if !restarted {
			break
		}
	}
	return s.finalize(ctx, run)
}

// runPass walks the plan from run.stageIndex. It returns restarted=true when
// a retryable failure consumed retry budget and the loop must re-enter from
// stage 0 with the new RetryContext. Any other failure is terminal: the
// workflow is marked failed before the error is returned.
func (s *OrchestratorService) runPass(ctx context.Context, run *runState) (bool, error) {
	for ; run.stageIndex < run.plan.Length(); run.stageIndex++ {
		// Cancellation is observed between stages, never mid-stage.
		if err := s.checkCancelled(ctx, run.workflowID); err != nil {
			return false, err
		}

		kind := run.plan.AgentKinds[run.stageIndex]
		if label, ok := workflow.StatusForAgent(kind); ok {
			if err := s.workflowRepo.UpdateStatus(ctx, run.workflowID, string(label), ""); err != nil {
				return false, fmt.Errorf("failed to update workflow status: %w", err)
			}
		}

		input := s.buildInput(run, kind)
		execID, err := s.createExecution(ctx, run, kind, input)
		if err != nil {
			return false, fmt.Errorf("failed to record stage start: %w", err)
		}
		s.audit(ctx, run, kind, "started", "")

		result, runErr := s.runStage(ctx, kind, input, run.plan.StageTimeout)
		if runErr != nil || !result.Success {
			return s.handleStageFailure(ctx, run, kind, execID, result, runErr)
		}

		if err := s.executionRepo.Complete(ctx, execID, result.Summary); err != nil {
			return false, fmt.Errorf("failed to record stage result: %w", err)
		}

		artifacts, err := s.persistArtifacts(ctx, run.workflowID, execID, result.Artifacts)
		if err != nil {
			return false, err
		}

		run.results = append(run.results, secondary.StageResult{
			AgentKind: kind,
			Summary:   result.Summary,
			Artifacts: artifacts,
		})

		// Best-effort documentation trail.
		s.audit(ctx, run, kind, "completed", result.Summary)
		_ = s.docSink.WriteStageDoc(ctx, run.workflowID, run.branch, kind, "completed", result.Summary)
	}
	return false, nil
}

// runStage invokes the agent runner bounded by the stage timeout. A timeout
// is reported distinctly but handled like any other stage failure.
func (s *OrchestratorService) runStage(ctx context.Context, kind workflow.AgentKind, input secondary.AgentInput, timeout time.Duration) (*secondary.AgentResult, error) {
	stageCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := s.runner.Run(stageCtx, kind, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %s", secondary.ErrStageTimeout, kind)
		}
		return result, err
	}
	if result == nil {
		return nil, fmt.Errorf("agent runner returned no result for %s", kind)
	}
	return result, nil
}

// handleStageFailure applies the retry/escalation policy for a failed stage.
func (s *OrchestratorService) handleStageFailure(ctx context.Context, run *runState, kind workflow.AgentKind, execID int64, result *secondary.AgentResult, runErr error) (bool, error) {
	reason := failureReason(kind, result, runErr)
	if err := s.executionRepo.Fail(ctx, execID, reason); err != nil {
		return false, fmt.Errorf("failed to record stage failure: %w", err)
	}
	s.audit(ctx, run, kind, "failed", reason)

	var issues []workflow.Issue
	if result != nil {
		issues = result.Issues
	}

	if workflow.Retryable(kind) && run.retries < run.plan.MaxRetries {
		run.retries++
		rc := workflow.NextRetryContext(kind, issues, run.retryCtx)
		run.retryCtx = &rc
		run.pass++
		run.stageIndex = 0
		run.results = nil
		s.audit(ctx, run, kind, "retry", fmt.Sprintf("attempt %d, %d issues, trend %s", rc.Attempt, rc.CurrentIssues, rc.Trend))
		return true, nil
	}

	if err := s.workflowRepo.Fail(ctx, run.workflowID, reason); err != nil {
		return false, fmt.Errorf("failed to mark workflow failed: %w", err)
	}
	return false, fmt.Errorf("stage %s failed: %s", kind, reason)
}

// finalize marks the workflow completed, pushes the branch, and publishes
// the pull request. Push and publish failures are logged to the audit trail
// but do not revert the otherwise-successful workflow.
func (s *OrchestratorService) finalize(ctx context.Context, run *runState) (*primary.RunReport, error) {
	if err := s.workflowRepo.Complete(ctx, run.workflowID); err != nil {
		return nil, fmt.Errorf("failed to mark workflow completed: %w", err)
	}

	report := composeReport(run.results)

	prURL := ""
	if err := s.provisioner.PushBranch(ctx, run.branch, run.workspacePath); err != nil {
		s.audit(ctx, run, "", "push-failed", err.Error())
	} else if s.publisher != nil {
		pr, err := s.publisher.CreatePullRequest(ctx, secondary.PullRequestRequest{
			WorkflowID:    run.workflowID,
			BranchName:    run.branch,
			WorkflowType:  run.workflowType,
			WorkspacePath: run.workspacePath,
			Summary:       report,
		})
		if err != nil {
			s.audit(ctx, run, "", "pr-failed", err.Error())
		} else if pr != nil && pr.Success {
			prURL = pr.URL
			s.audit(ctx, run, "", "pr-created", pr.URL)
		}
	}

	artifacts, err := s.artifactRepo.ListByWorkflow(ctx, run.workflowID, secondary.ArtifactFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	return &primary.RunReport{
		WorkflowID: run.workflowID,
		Status:     string(workflow.StatusCompleted),
		BranchName: run.branch,
		Passes:     run.pass,
		Report:     report,
		Artifacts:  artifactsToDTO(artifacts),
		PRURL:      prURL,
	}, nil
}

// checkCancelled aborts the loop when an external cancellation has already
// moved the workflow to a terminal status.
func (s *OrchestratorService) checkCancelled(ctx context.Context, workflowID int64) error {
	record, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to reload workflow: %w", err)
	}
	if workflow.IsTerminal(workflow.Status(record.Status)) {
		return fmt.Errorf("%w: workflow %d is %s", workflow.ErrWorkflowCancelled, workflowID, record.Status)
	}
	return nil
}

// buildInput assembles the payload for one stage: identity, accumulated
// prior-stage outputs, and the retry feedback when this is a retry pass.
func (s *OrchestratorService) buildInput(run *runState, kind workflow.AgentKind) secondary.AgentInput {
	input := secondary.AgentInput{
		WorkflowID:    run.workflowID,
		BranchName:    run.branch,
		Description:   run.description,
		WorkspacePath: run.workspacePath,
		PriorResults:  run.results,
	}
	if run.retryCtx != nil {
		// Feedback is threaded into the plan and code stages, which must
		// re-incorporate the fix guidance on a retry pass.
		if kind == workflow.AgentPlan || kind == workflow.AgentCode {
			input.Feedback = run.retryCtx.BlockingFeedback()
		}
		input.RetryAttempt = run.retryCtx.Attempt
		input.RetryTrend = string(run.retryCtx.Trend)
	}
	return input
}

// createExecution records the stage attempt before the runner is invoked so
// the attempt survives a crash mid-stage.
func (s *OrchestratorService) createExecution(ctx context.Context, run *runState, kind workflow.AgentKind, input secondary.AgentInput) (int64, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal agent input: %w", err)
	}
	return s.executionRepo.Create(ctx, &secondary.AgentExecutionRecord{
		WorkflowID: run.workflowID,
		AgentKind:  string(kind),
		Status:     string(workflow.ExecutionRunning),
		Input:      string(payload),
		Attempt:    run.pass,
	})
}

// persistArtifacts stores the drafts a stage produced and returns the
// persisted records for downstream stages.
func (s *OrchestratorService) persistArtifacts(ctx context.Context, workflowID, execID int64, drafts []secondary.ArtifactDraft) ([]secondary.ArtifactRecord, error) {
	var records []secondary.ArtifactRecord
	for _, draft := range drafts {
		metadata := ""
		if len(draft.Metadata) > 0 {
			data, err := json.Marshal(draft.Metadata)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal artifact metadata: %w", err)
			}
			metadata = string(data)
		}
		record := secondary.ArtifactRecord{
			WorkflowID:  workflowID,
			ExecutionID: execID,
			Kind:        string(draft.Kind),
			Content:     draft.Content,
			Metadata:    metadata,
		}
		id, err := s.artifactRepo.Create(ctx, &record)
		if err != nil {
			return nil, fmt.Errorf("failed to persist artifact: %w", err)
		}
		record.ID = id
		records = append(records, record)
	}
	return records, nil
}

// audit appends to the stage-log trail. Best-effort: audit failures never
// abort orchestration.
func (s *OrchestratorService) audit(ctx context.Context, run *runState, kind workflow.AgentKind, phase, details string) {
	_, _ = s.stageLogRepo.Append(ctx, &secondary.StageLogRecord{
		WorkflowID: run.workflowID,
		Branch:     run.branch,
		AgentKind:  string(kind),
		Phase:      phase,
		Details:    details,
	})
}

// baseBranchFor returns the branch workspaces for this workflow type are
// checked out from.
func (s *OrchestratorService) baseBranchFor(t workflow.Type) string {
	if base, ok := s.baseBranches[t]; ok && base != "" {
		return base
	}
	return "main"
}

// failureReason composes the human-readable reason stored on the failed
// execution and, for terminal failures, on the workflow itself.
func failureReason(kind workflow.AgentKind, result *secondary.AgentResult, runErr error) string {
	switch {
	case runErr != nil && errors.Is(runErr, secondary.ErrStageTimeout):
		return fmt.Sprintf("%s stage timed out", kind)
	case runErr != nil && errors.Is(runErr, context.DeadlineExceeded):
		return fmt.Sprintf("%s stage timed out", kind)
	case runErr != nil:
		return runErr.Error()
	case result != nil && result.Summary != "":
		return result.Summary
	default:
		return fmt.Sprintf("%s stage reported failure", kind)
	}
}

// composeReport concatenates every stage's summary in execution order.
func composeReport(results []secondary.StageResult) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "[%s] %s\n", r.AgentKind, r.Summary)
	}
	return b.String()
}

// artifactsToDTO converts persistence records into the primary-port view.
func artifactsToDTO(records []*secondary.ArtifactRecord) []*primary.Artifact {
	var out []*primary.Artifact
	for _, r := range records {
		out = append(out, &primary.Artifact{
			ID:          r.ID,
			WorkflowID:  r.WorkflowID,
			ExecutionID: r.ExecutionID,
			Kind:        r.Kind,
			Content:     r.Content,
			Metadata:    r.Metadata,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out
}
