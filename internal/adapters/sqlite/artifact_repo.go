// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/forge/internal/ports/secondary"
)

// ArtifactRepository implements secondary.ArtifactRepository with SQLite.
// Artifacts are append-only: there are no update or delete operations.
type ArtifactRepository struct {
	db *sql.DB
}

// NewArtifactRepository creates a new SQLite artifact repository.
func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Create persists a new artifact and returns its assigned id.
func (r *ArtifactRepository) Create(ctx context.Context, artifact *secondary.ArtifactRecord) (int64, error) {
	if artifact.Kind == "" {
		return 0, fmt.Errorf("artifact Kind must be pre-populated by service layer")
	}

	var metadata sql.NullString
	if artifact.Metadata != "" {
		metadata = sql.NullString{String: artifact.Metadata, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO artifacts (workflow_id, execution_id, kind, content, metadata) VALUES (?, ?, ?, ?, ?)",
		artifact.WorkflowID, artifact.ExecutionID, artifact.Kind, artifact.Content, metadata,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create artifact: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read artifact id: %w", err)
	}
	return id, nil
}

// ListByWorkflow retrieves artifacts for a workflow in creation order,
// optionally filtered by kind. Creation order means "most recent of kind X"
// is simply the last matching element.
func (r *ArtifactRepository) ListByWorkflow(ctx context.Context, workflowID int64, filters secondary.ArtifactFilters) ([]*secondary.ArtifactRecord, error) {
	query := "SELECT id, workflow_id, execution_id, kind, content, metadata, created_at FROM artifacts WHERE workflow_id = ?"
	args := []any{workflowID}

	if filters.Kind != "" {
		query += " AND kind = ?"
		args = append(args, filters.Kind)
	}
	query += " ORDER BY id ASC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*secondary.ArtifactRecord
	for rows.Next() {
		var (
			metadata  sql.NullString
			createdAt time.Time
		)

		record := &secondary.ArtifactRecord{}
		err := rows.Scan(&record.ID, &record.WorkflowID, &record.ExecutionID,
			&record.Kind, &record.Content, &metadata, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}

		record.Metadata = metadata.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		artifacts = append(artifacts, record)
	}
	return artifacts, rows.Err()
}
