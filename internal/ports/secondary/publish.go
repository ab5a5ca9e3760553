// Package secondary defines the secondary ports (driven adapters) for the application.
package secondary

import (
	"context"

	"github.com/example/forge/internal/core/workflow"
)

// PullRequestRequest carries everything the publisher needs to open a PR
// for a finished workflow.
type PullRequestRequest struct {
	WorkflowID    int64
	BranchName    string
	WorkflowType  workflow.Type
	WorkspacePath string
	Summary       string
}

// PullRequestResult is the publisher outcome.
type PullRequestResult struct {
	Success bool
	URL     string
}

// PullRequestPublisher defines the secondary port for publishing the final
// branch as a pull request. Invoked only on final success; a failure here is
// logged but does not revert the otherwise-successful workflow.
type PullRequestPublisher interface {
	CreatePullRequest(ctx context.Context, req PullRequestRequest) (*PullRequestResult, error)
}

// StageDocSink defines the secondary port for the on-disk stage
// documentation trail. Append-only; failures must never abort orchestration.
type StageDocSink interface {
	WriteStageDoc(ctx context.Context, workflowID int64, branchName string, kind workflow.AgentKind, phase, details string) error
}
