// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/forge/internal/ports/secondary"
)

// WorkflowRepository implements secondary.WorkflowRepository with SQLite.
type WorkflowRepository struct {
	db *sql.DB
}

// NewWorkflowRepository creates a new SQLite workflow repository.
func NewWorkflowRepository(db *sql.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

// Create persists a new workflow and returns its assigned id.
func (r *WorkflowRepository) Create(ctx context.Context, workflow *secondary.WorkflowRecord) (int64, error) {
	if workflow.Type == "" {
		return 0, fmt.Errorf("workflow Type must be pre-populated by service layer")
	}
	if workflow.Status == "" {
		return 0, fmt.Errorf("workflow Status must be pre-populated by service layer")
	}

	var sourceEvent sql.NullString
	if workflow.SourceEvent != "" {
		sourceEvent = sql.NullString{String: workflow.SourceEvent, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO workflows (type, status, description, source_event) VALUES (?, ?, ?, ?)",
		workflow.Type, workflow.Status, workflow.Description, sourceEvent,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create workflow: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read workflow id: %w", err)
	}
	return id, nil
}

// GetByID retrieves a workflow by its id.
func (r *WorkflowRepository) GetByID(ctx context.Context, id int64) (*secondary.WorkflowRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, type, status, description, source_event, branch_name, failure_reason, created_at, completed_at FROM workflows WHERE id = ?",
		id,
	)

	record, err := scanWorkflow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("workflow %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}
	return record, nil
}

// UpdateStatus updates the workflow status. The branch name is written only
// while the stored value is still empty - once assigned it never changes.
func (r *WorkflowRepository) UpdateStatus(ctx context.Context, id int64, status string, branchName string) error {
	var err error
	if branchName != "" {
		_, err = r.db.ExecContext(ctx,
			"UPDATE workflows SET status = ?, branch_name = COALESCE(branch_name, ?) WHERE id = ?",
			status, branchName, id,
		)
	} else {
		_, err = r.db.ExecContext(ctx,
			"UPDATE workflows SET status = ? WHERE id = ?",
			status, id,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update workflow status: %w", err)
	}
	return nil
}

// Complete marks the workflow completed and stamps completed_at.
func (r *WorkflowRepository) Complete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE workflows SET status = 'completed', completed_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete workflow: %w", err)
	}
	return nil
}

// Fail marks the workflow failed with a reason and stamps completed_at.
func (r *WorkflowRepository) Fail(ctx context.Context, id int64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE workflows SET status = 'failed', failure_reason = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ?",
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("failed to fail workflow: %w", err)
	}
	return nil
}

// List retrieves workflows matching the given filters.
func (r *WorkflowRepository) List(ctx context.Context, filters secondary.WorkflowFilters) ([]*secondary.WorkflowRecord, error) {
	query := "SELECT id, type, status, description, source_event, branch_name, failure_reason, created_at, completed_at FROM workflows"
	args := []any{}

	where := ""
	if filters.Status != "" {
		where = " WHERE status = ?"
		args = append(args, filters.Status)
	}
	if filters.Type != "" {
		if where == "" {
			where = " WHERE type = ?"
		} else {
			where += " AND type = ?"
		}
		args = append(args, filters.Type)
	}
	query += where + " ORDER BY created_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []*secondary.WorkflowRecord
	for rows.Next() {
		record, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		workflows = append(workflows, record)
	}
	return workflows, rows.Err()
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*secondary.WorkflowRecord, error) {
	var (
		sourceEvent   sql.NullString
		branchName    sql.NullString
		failureReason sql.NullString
		createdAt     time.Time
		completedAt   sql.NullTime
	)

	record := &secondary.WorkflowRecord{}
	err := row.Scan(&record.ID, &record.Type, &record.Status, &record.Description,
		&sourceEvent, &branchName, &failureReason, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}

	record.SourceEvent = sourceEvent.String
	record.BranchName = branchName.String
	record.FailureReason = failureReason.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time.Format(time.RFC3339)
	}
	return record, nil
}
