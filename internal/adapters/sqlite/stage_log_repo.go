// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/forge/internal/ctxutil"
	"github.com/example/forge/internal/ports/secondary"
)

// StageLogRepository implements secondary.StageLogRepository with SQLite.
// The actor is taken from the context when the entry does not carry one.
type StageLogRepository struct {
	db *sql.DB
}

// NewStageLogRepository creates a new SQLite stage log repository.
func NewStageLogRepository(db *sql.DB) *StageLogRepository {
	return &StageLogRepository{db: db}
}

// Append writes one audit entry and returns its assigned id.
func (r *StageLogRepository) Append(ctx context.Context, entry *secondary.StageLogRecord) (int64, error) {
	actor := entry.Actor
	if actor == "" {
		actor = ctxutil.Actor(ctx)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO stage_logs (workflow_id, branch, agent_kind, phase, details, actor) VALUES (?, ?, ?, ?, ?, ?)",
		entry.WorkflowID, entry.Branch, entry.AgentKind, entry.Phase, entry.Details, actor,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append stage log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read stage log id: %w", err)
	}
	return id, nil
}

// ListByWorkflow retrieves audit entries for a workflow in creation order.
func (r *StageLogRepository) ListByWorkflow(ctx context.Context, workflowID int64) ([]*secondary.StageLogRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, workflow_id, branch, agent_kind, phase, details, actor, created_at FROM stage_logs WHERE workflow_id = ? ORDER BY id ASC",
		workflowID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage logs: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.StageLogRecord
	for rows.Next() {
		var (
			branch    sql.NullString
			agentKind sql.NullString
			details   sql.NullString
			actor     sql.NullString
			createdAt time.Time
		)

		record := &secondary.StageLogRecord{}
		err := rows.Scan(&record.ID, &record.WorkflowID, &branch, &agentKind,
			&record.Phase, &details, &actor, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage log: %w", err)
		}

		record.Branch = branch.String
		record.AgentKind = agentKind.String
		record.Details = details.String
		record.Actor = actor.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		entries = append(entries, record)
	}
	return entries, rows.Err()
}
