package sqlite

import (
	"context"
	"testing"

	"github.com/example/forge/internal/ctxutil"
	"github.com/example/forge/internal/ports/secondary"
)

func TestStageLogAppendAndList(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewStageLogRepository(conn)
	ctx := context.Background()
	workflowID := seedWorkflow(t, conn)

	entries := []*secondary.StageLogRecord{
		{WorkflowID: workflowID, Branch: "feature/1-add-user-login", AgentKind: "plan", Phase: "started"},
		{WorkflowID: workflowID, Branch: "feature/1-add-user-login", AgentKind: "plan", Phase: "completed", Details: "plan drafted"},
		{WorkflowID: workflowID, Phase: "pr-created", Details: "https://github.example/acme/repo/pull/1"},
	}
	for _, e := range entries {
		if _, err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	logs, err := repo.ListByWorkflow(ctx, workflowID)
	if err != nil {
		t.Fatalf("ListByWorkflow failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("got %d entries, want 3", len(logs))
	}
	wantPhases := []string{"started", "completed", "pr-created"}
	for i, l := range logs {
		if l.Phase != wantPhases[i] {
			t.Errorf("entry %d phase = %q, want %q", i, l.Phase, wantPhases[i])
		}
		if l.CreatedAt == "" {
			t.Errorf("entry %d created_at not stamped", i)
		}
	}
	if logs[1].Details != "plan drafted" {
		t.Errorf("details = %q", logs[1].Details)
	}
	if logs[2].AgentKind != "" {
		t.Errorf("agent kind = %q, want empty for finalization entry", logs[2].AgentKind)
	}
}

func TestStageLogActorFromContext(t *testing.T) {
	conn := setupTestDB(t)
	repo := NewStageLogRepository(conn)
	workflowID := seedWorkflow(t, conn)

	ctx := ctxutil.WithActor(context.Background(), "orchestrator")
	if _, err := repo.Append(ctx, &secondary.StageLogRecord{WorkflowID: workflowID, Phase: "started"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// An explicit actor on the entry wins over the context.
	if _, err := repo.Append(ctx, &secondary.StageLogRecord{WorkflowID: workflowID, Phase: "cancelled", Actor: "operator"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	logs, _ := repo.ListByWorkflow(context.Background(), workflowID)
	if logs[0].Actor != "orchestrator" {
		t.Errorf("actor = %q, want orchestrator from context", logs[0].Actor)
	}
	if logs[1].Actor != "operator" {
		t.Errorf("actor = %q, want explicit operator", logs[1].Actor)
	}
}
