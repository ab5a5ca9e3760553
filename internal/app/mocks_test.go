package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/forge/internal/core/workflow"
	"github.com/example/forge/internal/ports/secondary"
)

// In-memory fakes for the secondary ports, shared by the service tests.

type mockWorkflowRepo struct {
	records map[int64]*secondary.WorkflowRecord
	nextID  int64
}

func newMockWorkflowRepo() *mockWorkflowRepo {
	return &mockWorkflowRepo{records: make(map[int64]*secondary.WorkflowRecord)}
}

func (m *mockWorkflowRepo) Create(ctx context.Context, w *secondary.WorkflowRecord) (int64, error) {
	m.nextID++
	stored := *w
	stored.ID = m.nextID
	stored.CreatedAt = "2026-03-01T12:00:00Z"
	m.records[stored.ID] = &stored
	return stored.ID, nil
}

func (m *mockWorkflowRepo) GetByID(ctx context.Context, id int64) (*secondary.WorkflowRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("workflow %d not found", id)
	}
	copied := *r
	return &copied, nil
}

func (m *mockWorkflowRepo) UpdateStatus(ctx context.Context, id int64, status string, branchName string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("workflow %d not found", id)
	}
	r.Status = status
	if branchName != "" && r.BranchName == "" {
		r.BranchName = branchName
	}
	return nil
}

func (m *mockWorkflowRepo) Complete(ctx context.Context, id int64) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("workflow %d not found", id)
	}
	r.Status = string(workflow.StatusCompleted)
	r.CompletedAt = "2026-03-01T13:00:00Z"
	return nil
}

func (m *mockWorkflowRepo) Fail(ctx context.Context, id int64, reason string) error {
	r, ok := m.records[id]
	if !ok {
		return fmt.Errorf("workflow %d not found", id)
	}
	r.Status = string(workflow.StatusFailed)
	r.FailureReason = reason
	r.CompletedAt = "2026-03-01T13:00:00Z"
	return nil
}

func (m *mockWorkflowRepo) List(ctx context.Context, filters secondary.WorkflowFilters) ([]*secondary.WorkflowRecord, error) {
	ids := make([]int64, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*secondary.WorkflowRecord
	for _, id := range ids {
		r := m.records[id]
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.Type != "" && r.Type != filters.Type {
			continue
		}
		copied := *r
		out = append(out, &copied)
		if filters.Limit > 0 && len(out) >= filters.Limit {
			break
		}
	}
	return out, nil
}

type mockExecutionRepo struct {
	records []*secondary.AgentExecutionRecord
	nextID  int64
}

func newMockExecutionRepo() *mockExecutionRepo {
	return &mockExecutionRepo{}
}

func (m *mockExecutionRepo) Create(ctx context.Context, e *secondary.AgentExecutionRecord) (int64, error) {
	m.nextID++
	stored := *e
	stored.ID = m.nextID
	stored.StartedAt = "2026-03-01T12:00:00Z"
	m.records = append(m.records, &stored)
	return stored.ID, nil
}

func (m *mockExecutionRepo) Complete(ctx context.Context, id int64, summary string) error {
	for _, r := range m.records {
		if r.ID == id && active(r.Status) {
			r.Status = string(workflow.ExecutionCompleted)
			r.Summary = summary
			r.EndedAt = "2026-03-01T12:30:00Z"
		}
	}
	return nil
}

func (m *mockExecutionRepo) Fail(ctx context.Context, id int64, errorMessage string) error {
	for _, r := range m.records {
		if r.ID == id && active(r.Status) {
			r.Status = string(workflow.ExecutionFailed)
			r.Error = errorMessage
			r.EndedAt = "2026-03-01T12:30:00Z"
		}
	}
	return nil
}

func (m *mockExecutionRepo) ListByWorkflow(ctx context.Context, workflowID int64) ([]*secondary.AgentExecutionRecord, error) {
	var out []*secondary.AgentExecutionRecord
	for _, r := range m.records {
		if r.WorkflowID == workflowID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockExecutionRepo) FailActive(ctx context.Context, workflowID int64, reason string) (int, error) {
	count := 0
	for _, r := range m.records {
		if r.WorkflowID == workflowID && active(r.Status) {
			r.Status = string(workflow.ExecutionFailed)
			r.Error = reason
			r.EndedAt = "2026-03-01T12:30:00Z"
			count++
		}
	}
	return count, nil
}

func active(status string) bool {
	return status == string(workflow.ExecutionPending) || status == string(workflow.ExecutionRunning)
}

type mockArtifactRepo struct {
	records []*secondary.ArtifactRecord
	nextID  int64
}

func newMockArtifactRepo() *mockArtifactRepo {
	return &mockArtifactRepo{}
}

func (m *mockArtifactRepo) Create(ctx context.Context, a *secondary.ArtifactRecord) (int64, error) {
	m.nextID++
	stored := *a
	stored.ID = m.nextID
	stored.CreatedAt = "2026-03-01T12:00:00Z"
	m.records = append(m.records, &stored)
	return stored.ID, nil
}

func (m *mockArtifactRepo) ListByWorkflow(ctx context.Context, workflowID int64, filters secondary.ArtifactFilters) ([]*secondary.ArtifactRecord, error) {
	var out []*secondary.ArtifactRecord
	for _, r := range m.records {
		if r.WorkflowID != workflowID {
			continue
		}
		if filters.Kind != "" && r.Kind != filters.Kind {
			continue
		}
		out = append(out, r)
		if filters.Limit > 0 && len(out) >= filters.Limit {
			break
		}
	}
	return out, nil
}

type mockStageLogRepo struct {
	records []*secondary.StageLogRecord
	nextID  int64
}

func newMockStageLogRepo() *mockStageLogRepo {
	return &mockStageLogRepo{}
}

func (m *mockStageLogRepo) Append(ctx context.Context, entry *secondary.StageLogRecord) (int64, error) {
	m.nextID++
	stored := *entry
	stored.ID = m.nextID
	stored.CreatedAt = "2026-03-01T12:00:00Z"
	m.records = append(m.records, &stored)
	return stored.ID, nil
}

func (m *mockStageLogRepo) ListByWorkflow(ctx context.Context, workflowID int64) ([]*secondary.StageLogRecord, error) {
	var out []*secondary.StageLogRecord
	for _, r := range m.records {
		if r.WorkflowID == workflowID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockStageLogRepo) phases(workflowID int64) []string {
	var out []string
	for _, r := range m.records {
		if r.WorkflowID == workflowID {
			out = append(out, r.Phase)
		}
	}
	return out
}

// scriptedRunner pops one scripted outcome per kind per call; kinds with no
// remaining script succeed with a canned summary.
type scriptedRunner struct {
	outcomes map[workflow.AgentKind][]runnerOutcome
	calls    []runnerCall
	onRun    func(kind workflow.AgentKind, input secondary.AgentInput)
}

type runnerOutcome struct {
	result *secondary.AgentResult
	err    error
}

type runnerCall struct {
	Kind  workflow.AgentKind
	Input secondary.AgentInput
}

func newScriptedRunner() *scriptedRunner {
	return &scriptedRunner{outcomes: make(map[workflow.AgentKind][]runnerOutcome)}
}

func (r *scriptedRunner) script(kind workflow.AgentKind, result *secondary.AgentResult, err error) {
	r.outcomes[kind] = append(r.outcomes[kind], runnerOutcome{result: result, err: err})
}

func (r *scriptedRunner) Run(ctx context.Context, kind workflow.AgentKind, input secondary.AgentInput) (*secondary.AgentResult, error) {
	r.calls = append(r.calls, runnerCall{Kind: kind, Input: input})
	if r.onRun != nil {
		r.onRun(kind, input)
	}
	if outs := r.outcomes[kind]; len(outs) > 0 {
		out := outs[0]
		r.outcomes[kind] = outs[1:]
		return out.result, out.err
	}
	return &secondary.AgentResult{Success: true, Summary: string(kind) + " ok"}, nil
}

func (r *scriptedRunner) calledKinds() []workflow.AgentKind {
	out := make([]workflow.AgentKind, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c.Kind)
	}
	return out
}

type mockProvisioner struct {
	provisionErr error
	pushErr      error
	provisioned  []int64
	pushed       []string
}

func (m *mockProvisioner) Provision(ctx context.Context, workflowID int64, branchName, baseBranch string) (string, error) {
	if m.provisionErr != nil {
		return "", m.provisionErr
	}
	m.provisioned = append(m.provisioned, workflowID)
	return m.ResolveWorkspacePath(workflowID), nil
}

func (m *mockProvisioner) ResolveWorkspacePath(workflowID int64) string {
	return fmt.Sprintf("/tmp/forge-test/workflow-%d", workflowID)
}

func (m *mockProvisioner) CreateBranch(ctx context.Context, branchName, workspacePath string) error {
	return nil
}

func (m *mockProvisioner) PushBranch(ctx context.Context, branchName, workspacePath string) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	m.pushed = append(m.pushed, branchName)
	return nil
}

type mockPublisher struct {
	requests []secondary.PullRequestRequest
	err      error
}

func (m *mockPublisher) CreatePullRequest(ctx context.Context, req secondary.PullRequestRequest) (*secondary.PullRequestResult, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return &secondary.PullRequestResult{
		Success: true,
		URL:     fmt.Sprintf("https://github.example/acme/repo/pull/%d", req.WorkflowID),
	}, nil
}

type mockDocSink struct {
	entries []string
}

func (m *mockDocSink) WriteStageDoc(ctx context.Context, workflowID int64, branchName string, kind workflow.AgentKind, phase, details string) error {
	m.entries = append(m.entries, fmt.Sprintf("%d %s %s", workflowID, kind, phase))
	return nil
}

// orchestratorFixture bundles an OrchestratorService with all of its fakes.
type orchestratorFixture struct {
	workflows   *mockWorkflowRepo
	executions  *mockExecutionRepo
	artifacts   *mockArtifactRepo
	logs        *mockStageLogRepo
	runner      *scriptedRunner
	provisioner *mockProvisioner
	publisher   *mockPublisher
	docs        *mockDocSink
	svc         *OrchestratorService
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		workflows:   newMockWorkflowRepo(),
		executions:  newMockExecutionRepo(),
		artifacts:   newMockArtifactRepo(),
		logs:        newMockStageLogRepo(),
		runner:      newScriptedRunner(),
		provisioner: &mockProvisioner{},
		publisher:   &mockPublisher{},
		docs:        &mockDocSink{},
	}
	f.svc = NewOrchestratorService(
		f.workflows,
		f.executions,
		f.artifacts,
		f.logs,
		f.runner,
		f.provisioner,
		f.publisher,
		f.docs,
		workflow.NewPlanTable(workflow.PlanOverride{}),
		map[workflow.Type]string{workflow.TypeFeature: "main"},
	)
	return f
}

func (f *orchestratorFixture) seedWorkflow(workflowType workflow.Type, description string) int64 {
	id, err := f.workflows.Create(context.Background(), &secondary.WorkflowRecord{
		Type:        string(workflowType),
		Status:      string(workflow.InitialStatus()),
		Description: description,
	})
	if err != nil {
		panic(err)
	}
	return id
}

func (f *orchestratorFixture) executionsByKind(workflowID int64, kind workflow.AgentKind) []*secondary.AgentExecutionRecord {
	var out []*secondary.AgentExecutionRecord
	for _, r := range f.executions.records {
		if r.WorkflowID == workflowID && r.AgentKind == string(kind) {
			out = append(out, r)
		}
	}
	return out
}
