// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
)

// WorkflowRepository defines the secondary port for workflow persistence.
type WorkflowRepository interface {
	// Create persists a new workflow and returns its assigned id.
	Create(ctx context.Context, workflow *WorkflowRecord) (int64, error)

	// GetByID retrieves a workflow by its id.
	GetByID(ctx context.Context, id int64) (*WorkflowRecord, error)

	// UpdateStatus updates the workflow status. branchName is set on the
	// first non-empty value and ignored afterwards - branch names are
	// immutable once assigned.
	UpdateStatus(ctx context.Context, id int64, status string, branchName string) error

	// Complete marks the workflow completed and stamps completed_at.
	Complete(ctx context.Context, id int64) error

	// Fail marks the workflow failed with a human-readable reason and
	// stamps completed_at.
	Fail(ctx context.Context, id int64, reason string) error

	// List retrieves workflows matching the given filters.
	List(ctx context.Context, filters WorkflowFilters) ([]*WorkflowRecord, error)
}

// WorkflowRecord represents a workflow as stored in persistence.
type WorkflowRecord struct {
	ID            int64
	Type          string
	Status        string
	Description   string
	SourceEvent   string // opaque source-control event metadata (JSON)
	BranchName    string
	FailureReason string
	CreatedAt     string
	CompletedAt   string
}

// WorkflowFilters contains filter options for querying workflows.
type WorkflowFilters struct {
	Status string
	Type   string
	Limit  int
}

// AgentExecutionRepository defines the secondary port for stage-attempt persistence.
// Rows are append-only once terminal: an execution is completed or failed
// exactly once per attempt and never mutated afterwards.
type AgentExecutionRepository interface {
	// Create persists a new execution row and returns its assigned id.
	// Rows are created in strict stage order immediately before the
	// agent runner is invoked.
	Create(ctx context.Context, execution *AgentExecutionRecord) (int64, error)

	// Complete records a successful attempt.
	Complete(ctx context.Context, id int64, summary string) error

	// Fail records a failed attempt.
	Fail(ctx context.Context, id int64, errorMessage string) error

	// ListByWorkflow retrieves all executions for a workflow in creation
	// order. The order reconstructs the exact stage sequence attempted,
	// including repeated attempts across retries.
	ListByWorkflow(ctx context.Context, workflowID int64) ([]*AgentExecutionRecord, error)

	// FailActive fails every pending or running execution of a workflow
	// with the given reason. Used by cancellation.
	FailActive(ctx context.Context, workflowID int64, reason string) (int, error)
}

// AgentExecutionRecord represents one attempt at one stage as stored in persistence.
type AgentExecutionRecord struct {
	ID         int64
	WorkflowID int64
	AgentKind  string
	Status     string
	Input      string // JSON payload given to the agent runner
	Summary    string
	Error      string
	Attempt    int // pipeline pass number, 1-based
	StartedAt  string
	EndedAt    string
}

// ArtifactRepository defines the secondary port for artifact persistence.
// Artifacts are immutable once created.
type ArtifactRepository interface {
	// Create persists a new artifact and returns its assigned id.
	Create(ctx context.Context, artifact *ArtifactRecord) (int64, error)

	// ListByWorkflow retrieves artifacts for a workflow in creation order,
	// optionally filtered by kind.
	ListByWorkflow(ctx context.Context, workflowID int64, filters ArtifactFilters) ([]*ArtifactRecord, error)
}

// ArtifactRecord represents a piece of stage output as stored in persistence.
type ArtifactRecord struct {
	ID          int64
	WorkflowID  int64
	ExecutionID int64
	Kind        string
	Content     string // opaque text/JSON, never interpreted by the core
	Metadata    string // JSON, e.g. file path and action
	CreatedAt   string
}

// ArtifactFilters contains filter options for querying artifacts.
type ArtifactFilters struct {
	Kind  string
	Limit int
}

// StageLogRepository defines the secondary port for the orchestration audit
// trail. Append-only; write failures must never abort orchestration.
type StageLogRepository interface {
	// Append writes one audit entry and returns its assigned id.
	Append(ctx context.Context, entry *StageLogRecord) (int64, error)

	// ListByWorkflow retrieves audit entries for a workflow in creation order.
	ListByWorkflow(ctx context.Context, workflowID int64) ([]*StageLogRecord, error)
}

// StageLogRecord represents one audit-trail entry.
type StageLogRecord struct {
	ID         int64
	WorkflowID int64
	Branch     string
	AgentKind  string
	Phase      string // "started", "completed", "failed", "retry", ...
	Details    string
	Actor      string
	CreatedAt  string
}
