// Package secondary defines the secondary ports (driven adapters) for the application.
package secondary

import "context"

// WorkspaceProvisioner defines the secondary port for materializing the
// isolated per-workflow checkout that agents read and write. A workspace is
// exclusively owned by its workflow for the workflow's entire lifetime and
// is reused as-is across a resume.
type WorkspaceProvisioner interface {
	// Provision creates the workspace for a workflow: an independent copy
	// of the source repository checked out at branchName from baseBranch,
	// with dependencies installed. Returns the workspace path.
	Provision(ctx context.Context, workflowID int64, branchName, baseBranch string) (string, error)

	// ResolveWorkspacePath returns the deterministic path a workflow's
	// workspace lives at, whether or not it exists yet. Resume uses this
	// to reattach without re-provisioning.
	ResolveWorkspacePath(workflowID int64) string

	// CreateBranch creates branchName in the workspace.
	CreateBranch(ctx context.Context, branchName, workspacePath string) error

	// PushBranch pushes branchName from the workspace to the remote.
	PushBranch(ctx context.Context, branchName, workspacePath string) error
}
