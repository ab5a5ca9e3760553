package sqlite

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/forge/internal/db"
	"github.com/example/forge/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
// Loading db.GetSchemaSQL() keeps test databases and repository code from
// drifting apart.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if _, err := conn.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to load schema: %v", err)
	}
	return conn
}

// seedWorkflow inserts a pending feature workflow and returns its id.
func seedWorkflow(t *testing.T, conn *sql.DB) int64 {
	t.Helper()

	repo := NewWorkflowRepository(conn)
	id, err := repo.Create(context.Background(), &secondary.WorkflowRecord{
		Type:        "feature",
		Status:      "pending",
		Description: "Add user login form",
	})
	if err != nil {
		t.Fatalf("failed to seed workflow: %v", err)
	}
	return id
}

// seedExecution inserts a running execution for the workflow and returns its id.
func seedExecution(t *testing.T, conn *sql.DB, workflowID int64, agentKind string, attempt int) int64 {
	t.Helper()

	repo := NewAgentExecutionRepository(conn)
	id, err := repo.Create(context.Background(), &secondary.AgentExecutionRecord{
		WorkflowID: workflowID,
		AgentKind:  agentKind,
		Status:     "running",
		Attempt:    attempt,
	})
	if err != nil {
		t.Fatalf("failed to seed execution: %v", err)
	}
	return id
}
