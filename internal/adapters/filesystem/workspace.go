// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WorkspaceProvisioner implements secondary.WorkspaceProvisioner using git
// worktrees. Each workflow gets an isolated checkout under the workspaces
// base path, exclusively owned by that workflow for its lifetime.
type WorkspaceProvisioner struct {
	workspacesBasePath string
	repoPath           string
	installCommand     string
}

// NewWorkspaceProvisioner creates a new git-backed workspace provisioner.
// repoPath is the local clone of the target repository. installCommand is an
// optional shell command run inside a fresh workspace to install
// dependencies. If workspacesBasePath is empty, defaults to
// ~/.forge/workspaces.
func NewWorkspaceProvisioner(workspacesBasePath, repoPath, installCommand string) (*WorkspaceProvisioner, error) {
	if workspacesBasePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		workspacesBasePath = filepath.Join(home, ".forge", "workspaces")
	}

	return &WorkspaceProvisioner{
		workspacesBasePath: workspacesBasePath,
		repoPath:           repoPath,
		installCommand:     installCommand,
	}, nil
}

// ResolveWorkspacePath returns the deterministic workspace path for a
// workflow. Resume relies on this to reattach without re-provisioning.
func (p *WorkspaceProvisioner) ResolveWorkspacePath(workflowID int64) string {
	return filepath.Join(p.workspacesBasePath, fmt.Sprintf("workflow-%d", workflowID))
}

// Provision materializes the workspace: a git worktree at branchName created
// from baseBranch, with dependencies installed. An already-existing
// workspace directory is reused as-is, which makes Provision safe to call on
// a resumed workflow.
func (p *WorkspaceProvisioner) Provision(ctx context.Context, workflowID int64, branchName, baseBranch string) (string, error) {
	targetPath := p.ResolveWorkspacePath(workflowID)

	if _, err := os.Stat(targetPath); err == nil {
		return targetPath, nil
	}

	if _, err := os.Stat(p.repoPath); os.IsNotExist(err) {
		return "", fmt.Errorf("repo not found at %s", p.repoPath)
	}
	if err := os.MkdirAll(p.workspacesBasePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create workspaces directory: %w", err)
	}

	// Refresh the base ref before branching off it.
	_ = p.runGit(ctx, p.repoPath, "fetch", "origin", baseBranch)

	// Create worktree with the new branch from the base.
	if err := p.runGit(ctx, p.repoPath, "worktree", "add", targetPath, "-b", branchName, "origin/"+baseBranch); err != nil {
		// Try without origin prefix (for local base branches).
		if err2 := p.runGit(ctx, p.repoPath, "worktree", "add", targetPath, "-b", branchName, baseBranch); err2 != nil {
			return "", fmt.Errorf("git worktree add failed: %w", err)
		}
	}

	if p.installCommand != "" {
		if err := p.runInstall(ctx, targetPath); err != nil {
			// A workspace without installed deps is unusable for agents.
			_ = p.runGit(ctx, p.repoPath, "worktree", "remove", targetPath, "--force")
			return "", fmt.Errorf("dependency install failed: %w", err)
		}
	}

	return targetPath, nil
}

// CreateBranch creates branchName in the workspace.
func (p *WorkspaceProvisioner) CreateBranch(ctx context.Context, branchName, workspacePath string) error {
	if err := p.runGit(ctx, workspacePath, "checkout", "-b", branchName); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branchName, err)
	}
	return nil
}

// PushBranch pushes branchName from the workspace to the remote.
func (p *WorkspaceProvisioner) PushBranch(ctx context.Context, branchName, workspacePath string) error {
	if err := p.runGit(ctx, workspacePath, "push", "-u", "origin", branchName); err != nil {
		return fmt.Errorf("failed to push branch %s: %w", branchName, err)
	}
	return nil
}

// runGit runs a git command in dir, folding output into the error.
func (p *WorkspaceProvisioner) runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return nil
}

// runInstall runs the configured dependency install command via the shell.
func (p *WorkspaceProvisioner) runInstall(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", p.installCommand)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%q failed: %w: %s", p.installCommand, err, strings.TrimSpace(string(output)))
	}
	return nil
}
