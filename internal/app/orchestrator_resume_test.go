package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/forge/internal/core/workflow"
	"github.com/example/forge/internal/ports/secondary"
)

// seedInterrupted stores a workflow that got through the plan and code stages
// of pass 1 before failing at security-lint: the setup for the resume tests.
func seedInterrupted(f *orchestratorFixture) int64 {
	ctx := context.Background()
	id := f.seedWorkflow(workflow.TypeFeature, "Add user login form")
	wf := f.workflows.records[id]
	wf.Status = string(workflow.StatusFailed)
	wf.BranchName = "feature/1-add-user-login"
	wf.FailureReason = "security-lint stage timed out"

	planID, _ := f.executions.Create(ctx, &secondary.AgentExecutionRecord{
		WorkflowID: id, AgentKind: string(workflow.AgentPlan), Status: string(workflow.ExecutionRunning), Attempt: 1,
	})
	_ = f.executions.Complete(ctx, planID, "plan drafted")

	codeID, _ := f.executions.Create(ctx, &secondary.AgentExecutionRecord{
		WorkflowID: id, AgentKind: string(workflow.AgentCode), Status: string(workflow.ExecutionRunning), Attempt: 1,
	})
	_ = f.executions.Complete(ctx, codeID, "implemented login form")
	_, _ = f.artifacts.Create(ctx, &secondary.ArtifactRecord{
		WorkflowID: id, ExecutionID: codeID, Kind: string(workflow.ArtifactCode), Content: "diff --git a/auth.go",
	})

	lintID, _ := f.executions.Create(ctx, &secondary.AgentExecutionRecord{
		WorkflowID: id, AgentKind: string(workflow.AgentSecurityLint), Status: string(workflow.ExecutionRunning), Attempt: 1,
	})
	_ = f.executions.Fail(ctx, lintID, "security-lint stage timed out")

	return id
}

func TestResumeSkipsCompletedStages(t *testing.T) {
	f := newOrchestratorFixture()
	id := seedInterrupted(f)

	report, err := f.svc.Resume(context.Background(), id, nil)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if report.Status != string(workflow.StatusCompleted) {
		t.Errorf("report status = %s, want completed", report.Status)
	}
	if report.Passes != 1 {
		t.Errorf("passes = %d, want 1 (resume continues the interrupted pass)", report.Passes)
	}

	// Re-entry at stage 2: plan and code are never re-executed.
	wantKinds := []workflow.AgentKind{workflow.AgentSecurityLint, workflow.AgentTest, workflow.AgentReview, workflow.AgentDocument}
	got := f.runner.calledKinds()
	if len(got) != len(wantKinds) {
		t.Fatalf("runner ran %v, want %v", got, wantKinds)
	}
	for i := range wantKinds {
		if got[i] != wantKinds[i] {
			t.Errorf("stage %d = %s, want %s", i, got[i], wantKinds[i])
		}
	}

	// 3 seeded + 4 resumed executions, all on the interrupted pass.
	if len(f.executions.records) != 7 {
		t.Fatalf("got %d executions, want 7", len(f.executions.records))
	}
	for _, e := range f.executions.records[3:] {
		if e.Attempt != 1 {
			t.Errorf("resumed execution attempt = %d, want 1", e.Attempt)
		}
	}

	// The first resumed stage sees the reconstructed prior results,
	// artifacts included.
	lintInput := f.runner.calls[0].Input
	if len(lintInput.PriorResults) != 2 {
		t.Fatalf("resumed stage saw %d prior results, want 2", len(lintInput.PriorResults))
	}
	if lintInput.PriorResults[0].Summary != "plan drafted" {
		t.Errorf("prior result 0 summary = %q", lintInput.PriorResults[0].Summary)
	}
	if len(lintInput.PriorResults[1].Artifacts) != 1 {
		t.Error("code artifact missing from reconstructed prior results")
	}
	if lintInput.WorkspacePath != f.provisioner.ResolveWorkspacePath(id) {
		t.Errorf("workspace = %q, want the deterministic path", lintInput.WorkspacePath)
	}

	// Resume reattaches to the existing workspace, never re-provisions.
	if len(f.provisioner.provisioned) != 0 {
		t.Error("resume re-provisioned the workspace")
	}

	// The reconstructed stages still appear in the final report.
	if !strings.Contains(report.Report, "[plan] plan drafted") {
		t.Errorf("report missing reconstructed plan summary:\n%s", report.Report)
	}

	record, _ := f.workflows.GetByID(context.Background(), id)
	if record.Status != string(workflow.StatusCompleted) {
		t.Errorf("workflow status = %s, want completed", record.Status)
	}
}

func TestResumeExplicitStageIndex(t *testing.T) {
	f := newOrchestratorFixture()
	id := seedInterrupted(f)

	explicit := 0
	report, err := f.svc.Resume(context.Background(), id, &explicit)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if report.Status != string(workflow.StatusCompleted) {
		t.Errorf("report status = %s, want completed", report.Status)
	}

	// From stage 0 the whole plan runs again.
	if len(f.runner.calls) != 6 {
		t.Errorf("runner ran %d stages, want 6", len(f.runner.calls))
	}
	if f.runner.calls[0].Kind != workflow.AgentPlan {
		t.Errorf("first stage = %s, want plan", f.runner.calls[0].Kind)
	}
	if len(f.runner.calls[0].Input.PriorResults) != 0 {
		t.Error("stage 0 re-entry carried prior results")
	}
}

func TestResumeInvalidIndexLeavesStateUntouched(t *testing.T) {
	f := newOrchestratorFixture()
	id := seedInterrupted(f)
	executionsBefore := len(f.executions.records)
	logsBefore := len(f.logs.records)

	explicit := 10
	_, err := f.svc.Resume(context.Background(), id, &explicit)
	if err == nil {
		t.Fatal("expected error for out-of-range stage index")
	}
	if !errors.Is(err, workflow.ErrInvalidStageIndex) {
		t.Errorf("expected ErrInvalidStageIndex, got %v", err)
	}

	record, _ := f.workflows.GetByID(context.Background(), id)
	if record.Status != string(workflow.StatusFailed) {
		t.Errorf("workflow status mutated to %s by a rejected resume", record.Status)
	}
	if len(f.executions.records) != executionsBefore {
		t.Error("rejected resume created executions")
	}
	if len(f.logs.records) != logsBefore {
		t.Error("rejected resume wrote audit entries")
	}
	if len(f.runner.calls) != 0 {
		t.Error("rejected resume invoked the runner")
	}
}

func TestResumeCompletedRejected(t *testing.T) {
	f := newOrchestratorFixture()
	id := f.seedWorkflow(workflow.TypeFeature, "Add user login form")
	wf := f.workflows.records[id]
	wf.Status = string(workflow.StatusCompleted)
	wf.BranchName = "feature/1-add-user-login"

	_, err := f.svc.Resume(context.Background(), id, nil)
	if !errors.Is(err, workflow.ErrNotResumable) {
		t.Errorf("expected ErrNotResumable for completed workflow, got %v", err)
	}
}

func TestResumeWithoutBranchRejected(t *testing.T) {
	f := newOrchestratorFixture()
	id := f.seedWorkflow(workflow.TypeFeature, "Add user login form")
	f.workflows.records[id].Status = string(workflow.StatusFailed)

	_, err := f.svc.Resume(context.Background(), id, nil)
	if !errors.Is(err, workflow.ErrNotResumable) {
		t.Errorf("expected ErrNotResumable without a branch, got %v", err)
	}
	if !errors.Is(err, workflow.ErrMissingBranchName) {
		t.Errorf("expected ErrMissingBranchName without a branch, got %v", err)
	}
}

func TestResumeKeepsExhaustedRetryBudget(t *testing.T) {
	// The retry budget is workflow-wide: a workflow that already burned
	// every retry before the interruption gets no fresh passes from resume.
	f := newOrchestratorFixture()
	ctx := context.Background()
	id := f.seedWorkflow(workflow.TypeFeature, "Add user login form")
	wf := f.workflows.records[id]
	wf.Status = string(workflow.StatusFailed)
	wf.BranchName = "feature/1-add-user-login"
	wf.FailureReason = "stage security-lint failed: 5 findings"

	for pass := 1; pass <= workflow.DefaultMaxRetries+1; pass++ {
		planID, _ := f.executions.Create(ctx, &secondary.AgentExecutionRecord{
			WorkflowID: id, AgentKind: string(workflow.AgentPlan), Status: string(workflow.ExecutionRunning), Attempt: pass,
		})
		_ = f.executions.Complete(ctx, planID, "plan drafted")

		codeID, _ := f.executions.Create(ctx, &secondary.AgentExecutionRecord{
			WorkflowID: id, AgentKind: string(workflow.AgentCode), Status: string(workflow.ExecutionRunning), Attempt: pass,
		})
		_ = f.executions.Complete(ctx, codeID, "implemented login form")

		lintID, _ := f.executions.Create(ctx, &secondary.AgentExecutionRecord{
			WorkflowID: id, AgentKind: string(workflow.AgentSecurityLint), Status: string(workflow.ExecutionRunning), Attempt: pass,
		})
		_ = f.executions.Fail(ctx, lintID, "5 findings")
	}
	planAttemptsBefore := len(f.executionsByKind(id, workflow.AgentPlan))

	// The lint failure persists on the resumed pass.
	f.runner.script(workflow.AgentSecurityLint, &secondary.AgentResult{
		Success: false,
		Summary: "5 findings",
		Issues:  blockingIssues(5),
	}, nil)

	_, err := f.svc.Resume(ctx, id, nil)
	if err == nil {
		t.Fatal("expected the resumed run to fail with the budget exhausted")
	}
	if !strings.Contains(err.Error(), "stage security-lint failed") {
		t.Errorf("err = %v, want terminal security-lint failure", err)
	}

	// No new pass was granted: the plan stage was never re-run.
	if got := len(f.executionsByKind(id, workflow.AgentPlan)); got != planAttemptsBefore {
		t.Errorf("plan attempts grew from %d to %d across resume", planAttemptsBefore, got)
	}
	if len(f.runner.calls) != 1 || f.runner.calls[0].Kind != workflow.AgentSecurityLint {
		t.Errorf("runner ran %v, want a single security-lint stage", f.runner.calledKinds())
	}

	record, _ := f.workflows.GetByID(ctx, id)
	if record.Status != string(workflow.StatusFailed) {
		t.Errorf("workflow status = %s, want failed", record.Status)
	}
}

func TestResumeAfterLastStageFinalizesOnly(t *testing.T) {
	// Interrupted between the last stage and finalization: every stage is
	// already completed, so resume runs nothing and finalizes.
	f := newOrchestratorFixture()
	ctx := context.Background()
	id := f.seedWorkflow(workflow.TypeDocumentation, "Update API docs")
	wf := f.workflows.records[id]
	wf.Status = string(workflow.StatusDocumenting)
	wf.BranchName = "documentation/1-update-api-docs"

	docID, _ := f.executions.Create(ctx, &secondary.AgentExecutionRecord{
		WorkflowID: id, AgentKind: string(workflow.AgentDocument), Status: string(workflow.ExecutionRunning), Attempt: 1,
	})
	_ = f.executions.Complete(ctx, docID, "docs updated")

	report, err := f.svc.Resume(ctx, id, nil)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if report.Status != string(workflow.StatusCompleted) {
		t.Errorf("report status = %s, want completed", report.Status)
	}
	if len(f.runner.calls) != 0 {
		t.Errorf("runner ran %d stages, want 0", len(f.runner.calls))
	}
	if len(f.provisioner.pushed) != 1 {
		t.Error("finalize-only resume did not push the branch")
	}
	if !strings.Contains(report.Report, "[document] docs updated") {
		t.Errorf("report missing reconstructed summary:\n%s", report.Report)
	}
}

func TestResumeContinuesRetryBudgetPass(t *testing.T) {
	// A workflow interrupted on pass 2 resumes on pass 2, not pass 1.
	f := newOrchestratorFixture()
	ctx := context.Background()
	id := seedInterrupted(f)

	planID, _ := f.executions.Create(ctx, &secondary.AgentExecutionRecord{
		WorkflowID: id, AgentKind: string(workflow.AgentPlan), Status: string(workflow.ExecutionRunning), Attempt: 2,
	})
	_ = f.executions.Complete(ctx, planID, "plan redrafted")

	report, err := f.svc.Resume(ctx, id, nil)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if report.Passes != 2 {
		t.Errorf("passes = %d, want 2", report.Passes)
	}

	// Pass 2 completed only plan, so resume re-enters at the code stage.
	if f.runner.calls[0].Kind != workflow.AgentCode {
		t.Errorf("first resumed stage = %s, want code", f.runner.calls[0].Kind)
	}
	for _, e := range f.executions.records[4:] {
		if e.Attempt != 2 {
			t.Errorf("resumed execution attempt = %d, want 2", e.Attempt)
		}
	}
}
