// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the outside world drives the application.
package primary

import "context"

// WorkflowService defines the primary port for workflow lifecycle operations.
type WorkflowService interface {
	// CreateWorkflow registers a new change request. Orchestration does
	// not start until Execute is called.
	CreateWorkflow(ctx context.Context, req CreateWorkflowRequest) (*CreateWorkflowResponse, error)

	// GetWorkflow retrieves a workflow by id.
	GetWorkflow(ctx context.Context, workflowID int64) (*Workflow, error)

	// ListWorkflows lists workflows with optional filters.
	ListWorkflows(ctx context.Context, filters WorkflowFilters) ([]*Workflow, error)

	// CancelWorkflow requests cancellation: the workflow is marked failed
	// and any pending or running executions are failed with the reason.
	// A running orchestrator loop observes this and aborts.
	CancelWorkflow(ctx context.Context, workflowID int64, reason string) error

	// ListExecutions lists the stage attempts of a workflow in creation order.
	ListExecutions(ctx context.Context, workflowID int64) ([]*AgentExecution, error)

	// ListArtifacts lists a workflow's artifacts, optionally by kind.
	ListArtifacts(ctx context.Context, workflowID int64, kind string) ([]*Artifact, error)

	// ListStageLogs lists a workflow's audit trail in creation order.
	ListStageLogs(ctx context.Context, workflowID int64) ([]*StageLog, error)
}

// CreateWorkflowRequest contains parameters for registering a workflow.
type CreateWorkflowRequest struct {
	Type        string
	Description string
	SourceEvent string // optional source-control event metadata (JSON)
}

// CreateWorkflowResponse contains the result of registering a workflow.
type CreateWorkflowResponse struct {
	WorkflowID int64
	Workflow   *Workflow
}

// WorkflowFilters contains filter options for listing workflows.
type WorkflowFilters struct {
	Status string
	Type   string
	Limit  int
}

// Workflow is the service-layer view of a workflow.
type Workflow struct {
	ID            int64
	Type          string
	Status        string
	Description   string
	SourceEvent   string
	BranchName    string
	FailureReason string
	CreatedAt     string
	CompletedAt   string
}

// AgentExecution is the service-layer view of one stage attempt.
type AgentExecution struct {
	ID         int64
	WorkflowID int64
	AgentKind  string
	Status     string
	Summary    string
	Error      string
	Attempt    int
	StartedAt  string
	EndedAt    string
}

// Artifact is the service-layer view of a piece of stage output.
type Artifact struct {
	ID          int64
	WorkflowID  int64
	ExecutionID int64
	Kind        string
	Content     string
	Metadata    string
	CreatedAt   string
}

// StageLog is the service-layer view of one audit-trail entry.
type StageLog struct {
	ID        int64
	Branch    string
	AgentKind string
	Phase     string
	Details   string
	Actor     string
	CreatedAt string
}
