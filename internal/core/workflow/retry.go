// Package workflow contains the pure business logic for workflow orchestration.
// This is part of the Functional Core - no I/O, only pure functions.
package workflow

// Trend qualifies whether feedback-driven retries are converging.
type Trend string

const (
	TrendFirstAttempt Trend = "first-attempt"
	TrendImproving    Trend = "improving"
	TrendWorsening    Trend = "worsening"
)

// Issue is one finding reported by a security-lint or review stage.
type Issue struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
	File        string `json:"file,omitempty"`
	Blocking    bool   `json:"blocking"`
}

// RetryContext is the feedback and trend data threaded into a re-planned
// pass after a retryable stage failure. It is carried as explicit loop state
// in the orchestrator, never as closure state, so the trend computation is
// independently testable.
type RetryContext struct {
	Attempt        int
	PreviousIssues int
	CurrentIssues  int
	Trend          Trend
	FailedStage    AgentKind
	Feedback       []Issue
}

// BlockingFeedback returns only the blocking issues, the subset injected
// into the next pass's plan and code inputs.
func (rc RetryContext) BlockingFeedback() []Issue {
	var blocking []Issue
	for _, issue := range rc.Feedback {
		if issue.Blocking {
			blocking = append(blocking, issue)
		}
	}
	return blocking
}

// NextRetryContext computes the RetryContext for the pass after a retryable
// stage failure. prev is nil on the first failure. A count that did not
// strictly decrease is classified as worsening: an equal count means the
// feedback loop has stalled, and stalls are surfaced rather than masked.
func NextRetryContext(failedStage AgentKind, issues []Issue, prev *RetryContext) RetryContext {
	rc := RetryContext{
		Attempt:       1,
		CurrentIssues: len(issues),
		Trend:         TrendFirstAttempt,
		FailedStage:   failedStage,
		Feedback:      issues,
	}

	if prev != nil {
		rc.Attempt = prev.Attempt + 1
		rc.PreviousIssues = prev.CurrentIssues
		if rc.CurrentIssues < prev.CurrentIssues {
			rc.Trend = TrendImproving
		} else {
			rc.Trend = TrendWorsening
		}
	}

	return rc
}
