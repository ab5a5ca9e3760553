// Package secondary defines the secondary ports (driven adapters) for the application.
package secondary

import (
	"context"
	"errors"

	"github.com/example/forge/internal/core/workflow"
)

// ErrStageTimeout is returned by an AgentRunner when a stage exceeded its
// timeout. It is distinct from a logical stage failure so callers can report
// it as such, but the orchestrator handles both the same way.
var ErrStageTimeout = errors.New("agent stage timed out")

// AgentRunner defines the secondary port for executing one pipeline stage.
// Implementations may call a language-model backend and mutate the workspace;
// the orchestrator only sees the structured result.
type AgentRunner interface {
	// Run executes one stage. It must honor the deadline on ctx and
	// return an error wrapping ErrStageTimeout when it is exceeded.
	Run(ctx context.Context, kind workflow.AgentKind, input AgentInput) (*AgentResult, error)
}

// AgentInput is the payload handed to a stage.
type AgentInput struct {
	WorkflowID    int64            `json:"workflow_id"`
	BranchName    string           `json:"branch_name"`
	Description   string           `json:"description"`
	WorkspacePath string           `json:"workspace_path"`
	PriorResults  []StageResult    `json:"prior_results,omitempty"`
	Feedback      []workflow.Issue `json:"feedback,omitempty"`
	RetryAttempt  int              `json:"retry_attempt,omitempty"`
	RetryTrend    string           `json:"retry_trend,omitempty"`
}

// StageResult is the distilled output of one completed stage, fed forward
// into later stages.
type StageResult struct {
	AgentKind workflow.AgentKind `json:"agent_kind"`
	Summary   string             `json:"summary"`
	Artifacts []ArtifactRecord   `json:"artifacts,omitempty"`
}

// AgentResult is the structured outcome of one stage attempt.
type AgentResult struct {
	Success   bool             `json:"success"`
	Summary   string           `json:"summary"`
	Artifacts []ArtifactDraft  `json:"artifacts,omitempty"`
	Issues    []workflow.Issue `json:"issues,omitempty"`
}

// ArtifactDraft is an artifact as produced by an agent, before persistence
// assigns it an id.
type ArtifactDraft struct {
	Kind     workflow.ArtifactKind `json:"kind"`
	Content  string                `json:"content"`
	Metadata map[string]string     `json:"metadata,omitempty"`
}
