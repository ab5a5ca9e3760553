// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/forge/internal/ports/secondary"
)

// AgentExecutionRepository implements secondary.AgentExecutionRepository with SQLite.
type AgentExecutionRepository struct {
	db *sql.DB
}

// NewAgentExecutionRepository creates a new SQLite agent execution repository.
func NewAgentExecutionRepository(db *sql.DB) *AgentExecutionRepository {
	return &AgentExecutionRepository{db: db}
}

// Create persists a new execution row and returns its assigned id.
func (r *AgentExecutionRepository) Create(ctx context.Context, execution *secondary.AgentExecutionRecord) (int64, error) {
	if execution.AgentKind == "" {
		return 0, fmt.Errorf("execution AgentKind must be pre-populated by service layer")
	}
	if execution.Status == "" {
		return 0, fmt.Errorf("execution Status must be pre-populated by service layer")
	}
	attempt := execution.Attempt
	if attempt < 1 {
		attempt = 1
	}

	var input sql.NullString
	if execution.Input != "" {
		input = sql.NullString{String: execution.Input, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO agent_executions (workflow_id, agent_kind, status, input, attempt) VALUES (?, ?, ?, ?, ?)",
		execution.WorkflowID, execution.AgentKind, execution.Status, input, attempt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create execution: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read execution id: %w", err)
	}
	return id, nil
}

// Complete records a successful attempt. Rows already in a terminal state
// are never touched.
func (r *AgentExecutionRepository) Complete(ctx context.Context, id int64, summary string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE agent_executions SET status = 'completed', summary = ?, ended_at = CURRENT_TIMESTAMP WHERE id = ? AND status IN ('pending', 'running')",
		summary, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete execution: %w", err)
	}
	return nil
}

// Fail records a failed attempt. Rows already in a terminal state are never
// touched.
func (r *AgentExecutionRepository) Fail(ctx context.Context, id int64, errorMessage string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE agent_executions SET status = 'failed', error = ?, ended_at = CURRENT_TIMESTAMP WHERE id = ? AND status IN ('pending', 'running')",
		errorMessage, id,
	)
	if err != nil {
		return fmt.Errorf("failed to fail execution: %w", err)
	}
	return nil
}

// ListByWorkflow retrieves all executions for a workflow in creation order.
func (r *AgentExecutionRepository) ListByWorkflow(ctx context.Context, workflowID int64) ([]*secondary.AgentExecutionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, workflow_id, agent_kind, status, input, summary, error, attempt, started_at, ended_at FROM agent_executions WHERE workflow_id = ? ORDER BY id ASC",
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var executions []*secondary.AgentExecutionRecord
	for rows.Next() {
		var (
			input     sql.NullString
			summary   sql.NullString
			errMsg    sql.NullString
			startedAt time.Time
			endedAt   sql.NullTime
		)

		record := &secondary.AgentExecutionRecord{}
		err := rows.Scan(&record.ID, &record.WorkflowID, &record.AgentKind, &record.Status,
			&input, &summary, &errMsg, &record.Attempt, &startedAt, &endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		record.Input = input.String
		record.Summary = summary.String
		record.Error = errMsg.String
		record.StartedAt = startedAt.Format(time.RFC3339)
		if endedAt.Valid {
			record.EndedAt = endedAt.Time.Format(time.RFC3339)
		}
		executions = append(executions, record)
	}
	return executions, rows.Err()
}

// FailActive fails every pending or running execution of a workflow.
// Returns the number of rows affected.
func (r *AgentExecutionRepository) FailActive(ctx context.Context, workflowID int64, reason string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE agent_executions SET status = 'failed', error = ?, ended_at = CURRENT_TIMESTAMP WHERE workflow_id = ? AND status IN ('pending', 'running')",
		reason, workflowID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to fail active executions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count failed executions: %w", err)
	}
	return int(affected), nil
}
