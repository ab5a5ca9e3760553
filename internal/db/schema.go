package db

// SchemaSQL is the complete schema for fresh forge installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests load
// it via GetSchemaSQL() so that repository code and test databases can never
// drift apart: a repository referencing a column that does not exist here
// fails immediately with "no such column" at test time.
//
// When adding columns or tables, add a migration in migrations.go and update
// SchemaSQL here in the same change.
const SchemaSQL = `
-- Workflows (one end-to-end request to produce a code change)
CREATE TABLE IF NOT EXISTS workflows (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT NOT NULL CHECK(type IN ('feature', 'bugfix', 'refactor', 'documentation', 'review')),
	status TEXT NOT NULL CHECK(status IN ('pending', 'planning', 'coding', 'security-linting', 'testing', 'reviewing', 'documenting', 'completed', 'failed')) DEFAULT 'pending',
	description TEXT NOT NULL,
	source_event TEXT,
	branch_name TEXT,
	failure_reason TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

-- Agent executions (one attempt at one pipeline stage, append-only once terminal)
CREATE TABLE IF NOT EXISTS agent_executions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	workflow_id INTEGER NOT NULL,
	agent_kind TEXT NOT NULL CHECK(agent_kind IN ('plan', 'code', 'security-lint', 'test', 'review', 'document')),
	status TEXT NOT NULL CHECK(status IN ('pending', 'running', 'completed', 'failed')) DEFAULT 'pending',
	input TEXT,
	summary TEXT,
	error TEXT,
	attempt INTEGER NOT NULL DEFAULT 1,
	started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	ended_at DATETIME,
	FOREIGN KEY (workflow_id) REFERENCES workflows(id)
);

CREATE INDEX IF NOT EXISTS idx_agent_executions_workflow ON agent_executions(workflow_id);

-- Artifacts (immutable stage output)
CREATE TABLE IF NOT EXISTS artifacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	workflow_id INTEGER NOT NULL,
	execution_id INTEGER NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('plan', 'code', 'test', 'review-report', 'documentation', 'security-lint-report')),
	content TEXT NOT NULL,
	metadata TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (workflow_id) REFERENCES workflows(id),
	FOREIGN KEY (execution_id) REFERENCES agent_executions(id)
);

CREATE INDEX IF NOT EXISTS idx_artifacts_workflow ON artifacts(workflow_id);
CREATE INDEX IF NOT EXISTS idx_artifacts_kind ON artifacts(workflow_id, kind);

-- Stage logs (append-only orchestration audit trail)
CREATE TABLE IF NOT EXISTS stage_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	workflow_id INTEGER NOT NULL,
	branch TEXT,
	agent_kind TEXT,
	phase TEXT NOT NULL,
	details TEXT,
	actor TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (workflow_id) REFERENCES workflows(id)
);

CREATE INDEX IF NOT EXISTS idx_stage_logs_workflow ON stage_logs(workflow_id);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema. Tests must use this instead
// of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}
