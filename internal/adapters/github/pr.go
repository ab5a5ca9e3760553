// Package github contains the pull-request publisher backed by the gh CLI.
package github

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/example/forge/internal/ports/secondary"
)

// PullRequestPublisher implements secondary.PullRequestPublisher by shelling
// out to the gh CLI inside the workflow's workspace.
type PullRequestPublisher struct {
	baseBranch string
}

// NewPullRequestPublisher creates a publisher targeting baseBranch
// (defaults to "main").
func NewPullRequestPublisher(baseBranch string) *PullRequestPublisher {
	if baseBranch == "" {
		baseBranch = "main"
	}
	return &PullRequestPublisher{baseBranch: baseBranch}
}

// CreatePullRequest opens a PR for the workflow branch. The caller treats a
// failure here as best-effort: the workflow stays successful either way.
func (p *PullRequestPublisher) CreatePullRequest(ctx context.Context, req secondary.PullRequestRequest) (*secondary.PullRequestResult, error) {
	title := fmt.Sprintf("%s: workflow %d", req.WorkflowType, req.WorkflowID)

	cmd := exec.CommandContext(ctx, "gh", "pr", "create",
		"--title", title,
		"--body", req.Summary,
		"--head", req.BranchName,
		"--base", p.baseBranch,
	)
	cmd.Dir = req.WorkspacePath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &secondary.PullRequestResult{Success: false},
			fmt.Errorf("gh pr create failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	// gh prints the PR URL as the last line of stdout.
	url := ""
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) > 0 {
		url = strings.TrimSpace(lines[len(lines)-1])
	}

	return &secondary.PullRequestResult{Success: true, URL: url}, nil
}
