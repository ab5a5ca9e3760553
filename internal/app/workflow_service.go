// Package app contains the application services that orchestrate business logic.
package app

import (
	"context"
	"fmt"

	"github.com/example/forge/internal/core/workflow"
	"github.com/example/forge/internal/ports/primary"
	"github.com/example/forge/internal/ports/secondary"
)

// WorkflowServiceImpl implements the WorkflowService interface.
type WorkflowServiceImpl struct {
	workflowRepo  secondary.WorkflowRepository
	executionRepo secondary.AgentExecutionRepository
	artifactRepo  secondary.ArtifactRepository
	stageLogRepo  secondary.StageLogRepository
}

// NewWorkflowService creates a new WorkflowService with injected dependencies.
func NewWorkflowService(
	workflowRepo secondary.WorkflowRepository,
	executionRepo secondary.AgentExecutionRepository,
	artifactRepo secondary.ArtifactRepository,
	stageLogRepo secondary.StageLogRepository,
) *WorkflowServiceImpl {
	return &WorkflowServiceImpl{
		workflowRepo:  workflowRepo,
		executionRepo: executionRepo,
		artifactRepo:  artifactRepo,
		stageLogRepo:  stageLogRepo,
	}
}

// CreateWorkflow registers a new change request.
func (s *WorkflowServiceImpl) CreateWorkflow(ctx context.Context, req primary.CreateWorkflowRequest) (*primary.CreateWorkflowResponse, error) {
	if !workflow.IsValidType(workflow.Type(req.Type)) {
		return nil, fmt.Errorf("%w: %q", workflow.ErrUnknownWorkflowType, req.Type)
	}
	if req.Description == "" {
		return nil, fmt.Errorf("workflow description is required")
	}

	record := &secondary.WorkflowRecord{
		Type:        req.Type,
		Status:      string(workflow.InitialStatus()),
		Description: req.Description,
		SourceEvent: req.SourceEvent,
	}

	id, err := s.workflowRepo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	created, err := s.workflowRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created workflow: %w", err)
	}

	return &primary.CreateWorkflowResponse{
		WorkflowID: id,
		Workflow:   recordToWorkflow(created),
	}, nil
}

// GetWorkflow retrieves a workflow by id.
func (s *WorkflowServiceImpl) GetWorkflow(ctx context.Context, workflowID int64) (*primary.Workflow, error) {
	record, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	return recordToWorkflow(record), nil
}

// ListWorkflows lists workflows with optional filters.
func (s *WorkflowServiceImpl) ListWorkflows(ctx context.Context, filters primary.WorkflowFilters) ([]*primary.Workflow, error) {
	records, err := s.workflowRepo.List(ctx, secondary.WorkflowFilters{
		Status: filters.Status,
		Type:   filters.Type,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*primary.Workflow, 0, len(records))
	for _, r := range records {
		workflows = append(workflows, recordToWorkflow(r))
	}
	return workflows, nil
}

// CancelWorkflow marks a workflow failed with a cancellation reason and
// fails its pending/running executions. Cancellation is a terminal status,
// not removal - the historical record stays intact. A running orchestrator
// loop observes the terminal status at the top of its next iteration.
func (s *WorkflowServiceImpl) CancelWorkflow(ctx context.Context, workflowID int64, reason string) error {
	record, err := s.workflowRepo.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}
	if workflow.IsTerminal(workflow.Status(record.Status)) {
		return fmt.Errorf("workflow %d already ended with status %s", workflowID, record.Status)
	}

	if reason == "" {
		reason = "cancelled by operator"
	}

	if err := s.workflowRepo.Fail(ctx, workflowID, reason); err != nil {
		return fmt.Errorf("failed to cancel workflow: %w", err)
	}
	if _, err := s.executionRepo.FailActive(ctx, workflowID, reason); err != nil {
		return fmt.Errorf("failed to cancel active executions: %w", err)
	}

	_, _ = s.stageLogRepo.Append(ctx, &secondary.StageLogRecord{
		WorkflowID: workflowID,
		Branch:     record.BranchName,
		Phase:      "cancelled",
		Details:    reason,
	})
	return nil
}

// ListExecutions lists the stage attempts of a workflow in creation order.
func (s *WorkflowServiceImpl) ListExecutions(ctx context.Context, workflowID int64) ([]*primary.AgentExecution, error) {
	records, err := s.executionRepo.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	executions := make([]*primary.AgentExecution, 0, len(records))
	for _, r := range records {
		executions = append(executions, &primary.AgentExecution{
			ID:         r.ID,
			WorkflowID: r.WorkflowID,
			AgentKind:  r.AgentKind,
			Status:     r.Status,
			Summary:    r.Summary,
			Error:      r.Error,
			Attempt:    r.Attempt,
			StartedAt:  r.StartedAt,
			EndedAt:    r.EndedAt,
		})
	}
	return executions, nil
}

// ListArtifacts lists a workflow's artifacts, optionally filtered by kind.
func (s *WorkflowServiceImpl) ListArtifacts(ctx context.Context, workflowID int64, kind string) ([]*primary.Artifact, error) {
	records, err := s.artifactRepo.ListByWorkflow(ctx, workflowID, secondary.ArtifactFilters{Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return artifactsToDTO(records), nil
}

// ListStageLogs lists a workflow's audit trail in creation order.
func (s *WorkflowServiceImpl) ListStageLogs(ctx context.Context, workflowID int64) ([]*primary.StageLog, error) {
	records, err := s.stageLogRepo.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage logs: %w", err)
	}

	logs := make([]*primary.StageLog, 0, len(records))
	for _, r := range records {
		logs = append(logs, &primary.StageLog{
			ID:        r.ID,
			Branch:    r.Branch,
			AgentKind: r.AgentKind,
			Phase:     r.Phase,
			Details:   r.Details,
			Actor:     r.Actor,
			CreatedAt: r.CreatedAt,
		})
	}
	return logs, nil
}

// recordToWorkflow converts a persistence record into the primary-port view.
func recordToWorkflow(r *secondary.WorkflowRecord) *primary.Workflow {
	return &primary.Workflow{
		ID:            r.ID,
		Type:          r.Type,
		Status:        r.Status,
		Description:   r.Description,
		SourceEvent:   r.SourceEvent,
		BranchName:    r.BranchName,
		FailureReason: r.FailureReason,
		CreatedAt:     r.CreatedAt,
		CompletedAt:   r.CompletedAt,
	}
}
