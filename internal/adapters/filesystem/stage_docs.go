// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/forge/internal/core/workflow"
)

// StageDocSink implements secondary.StageDocSink by appending markdown
// entries to one document per workflow. Writes are best-effort by contract;
// callers ignore the returned error for orchestration purposes.
type StageDocSink struct {
	docsBasePath string
}

// NewStageDocSink creates a new markdown stage doc sink. If docsBasePath is
// empty, defaults to ~/.forge/docs.
func NewStageDocSink(docsBasePath string) (*StageDocSink, error) {
	if docsBasePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		docsBasePath = filepath.Join(home, ".forge", "docs")
	}
	return &StageDocSink{docsBasePath: docsBasePath}, nil
}

// DocPath returns the document path for a workflow.
func (s *StageDocSink) DocPath(workflowID int64) string {
	return filepath.Join(s.docsBasePath, fmt.Sprintf("workflow-%d.md", workflowID))
}

// WriteStageDoc appends one stage entry to the workflow's document.
func (s *StageDocSink) WriteStageDoc(ctx context.Context, workflowID int64, branchName string, kind workflow.AgentKind, phase, details string) error {
	if err := os.MkdirAll(s.docsBasePath, 0755); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}

	path := s.DocPath(workflowID)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open stage doc: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("## %s %s (%s)\n\n- branch: %s\n\n%s\n\n",
		kind, phase, time.Now().UTC().Format(time.RFC3339), branchName, details)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("failed to append stage doc: %w", err)
	}
	return nil
}
