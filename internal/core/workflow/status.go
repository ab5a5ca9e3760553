// Package workflow contains the pure business logic for workflow orchestration.
// This is part of the Functional Core - no I/O, only pure functions.
package workflow

// Type represents the change category of a workflow.
// Fixed at creation; it determines the execution plan.
type Type string

const (
	TypeFeature       Type = "feature"
	TypeBugfix        Type = "bugfix"
	TypeRefactor      Type = "refactor"
	TypeDocumentation Type = "documentation"
	TypeReview        Type = "review"
)

// ValidTypes lists every recognized workflow type.
var ValidTypes = []Type{TypeFeature, TypeBugfix, TypeRefactor, TypeDocumentation, TypeReview}

// IsValidType reports whether t is a recognized workflow type.
func IsValidType(t Type) bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Status represents the possible states of a workflow.
type Status string

const (
	StatusPending         Status = "pending"
	StatusPlanning        Status = "planning"
	StatusCoding          Status = "coding"
	StatusSecurityLinting Status = "security-linting"
	StatusTesting         Status = "testing"
	StatusReviewing       Status = "reviewing"
	StatusDocumenting     Status = "documenting"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
)

// AgentKind represents one step of the pipeline.
type AgentKind string

const (
	AgentPlan         AgentKind = "plan"
	AgentCode         AgentKind = "code"
	AgentSecurityLint AgentKind = "security-lint"
	AgentTest         AgentKind = "test"
	AgentReview       AgentKind = "review"
	AgentDocument     AgentKind = "document"
)

// stageStatus maps an agent kind to the workflow status label used while
// that stage runs. Kinds without an entry leave the status untouched.
var stageStatus = map[AgentKind]Status{
	AgentPlan:         StatusPlanning,
	AgentCode:         StatusCoding,
	AgentSecurityLint: StatusSecurityLinting,
	AgentTest:         StatusTesting,
	AgentReview:       StatusReviewing,
	AgentDocument:     StatusDocumenting,
}

// StatusForAgent returns the workflow status label for a running stage.
// The second return is false when the kind has no dedicated label.
func StatusForAgent(kind AgentKind) (Status, bool) {
	s, ok := stageStatus[kind]
	return s, ok
}

// IsTerminal reports whether a workflow status is terminal.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusFailed
}

// Retryable reports whether a failure of the given agent kind is considered
// fixable by re-planning. Only security-lint and review failures re-enter
// the pipeline with feedback; every other stage failure is terminal.
func Retryable(kind AgentKind) bool {
	return kind == AgentSecurityLint || kind == AgentReview
}

// InitialStatus returns the status for a newly created workflow.
func InitialStatus() Status {
	return StatusPending
}

// ExecutionStatus represents the state of one attempt at one stage.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// ArtifactKind classifies a piece of stage output.
type ArtifactKind string

const (
	ArtifactPlan             ArtifactKind = "plan"
	ArtifactCode             ArtifactKind = "code"
	ArtifactTest             ArtifactKind = "test"
	ArtifactReviewReport     ArtifactKind = "review-report"
	ArtifactDocumentation    ArtifactKind = "documentation"
	ArtifactSecurityLintScan ArtifactKind = "security-lint-report"
)
