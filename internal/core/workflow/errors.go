package workflow

import "errors"

// Configuration and precondition errors surfaced by the core. These are
// fatal: the orchestrator never retries them.
var (
	ErrUnknownWorkflowType = errors.New("unknown workflow type")
	ErrMissingBranchName   = errors.New("workflow has no branch name")
	ErrMissingWorkspace    = errors.New("workflow has no workspace path")
	ErrNotResumable        = errors.New("workflow is not resumable")
	ErrInvalidStageIndex   = errors.New("resume stage index out of range")
	ErrWorkflowCancelled   = errors.New("workflow cancelled")
)
