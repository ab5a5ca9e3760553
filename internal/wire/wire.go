// Package wire provides dependency injection for the forge application.
// It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"sync"

	"github.com/example/forge/internal/adapters/agents"
	"github.com/example/forge/internal/adapters/filesystem"
	"github.com/example/forge/internal/adapters/github"
	"github.com/example/forge/internal/adapters/sqlite"
	"github.com/example/forge/internal/app"
	"github.com/example/forge/internal/config"
	"github.com/example/forge/internal/core/workflow"
	"github.com/example/forge/internal/db"
	"github.com/example/forge/internal/ports/primary"
	"github.com/example/forge/internal/ports/secondary"
)

var (
	workflowService      primary.WorkflowService
	orchestrationService primary.OrchestrationService
	storeOnce            sync.Once
	orchestrationOnce    sync.Once

	workflowRepo  secondary.WorkflowRepository
	executionRepo secondary.AgentExecutionRepository
	artifactRepo  secondary.ArtifactRepository
	stageLogRepo  secondary.StageLogRepository
)

// WorkflowService returns the singleton WorkflowService instance.
// It needs only the database, never the agent configuration.
func WorkflowService() primary.WorkflowService {
	storeOnce.Do(initStore)
	return workflowService
}

// OrchestrationService returns the singleton OrchestrationService instance.
// It requires a full .forge/config.json in the working directory.
func OrchestrationService() primary.OrchestrationService {
	orchestrationOnce.Do(initOrchestration)
	return orchestrationService
}

// initStore initializes the repositories and the store-backed service.
func initStore() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	workflowRepo = sqlite.NewWorkflowRepository(database)
	executionRepo = sqlite.NewAgentExecutionRepository(database)
	artifactRepo = sqlite.NewArtifactRepository(database)
	stageLogRepo = sqlite.NewStageLogRepository(database)

	workflowService = app.NewWorkflowService(workflowRepo, executionRepo, artifactRepo, stageLogRepo)
}

// initOrchestration wires the orchestrator with its driven adapters.
func initOrchestration() {
	storeOnce.Do(initStore)

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}

	cfg, err := config.LoadConfig(cwd)
	if err != nil {
		log.Fatalf("no forge configuration found - run 'forge init' first: %v", err)
	}

	override, err := config.LoadPipelineOverride(cwd)
	if err != nil {
		log.Fatalf("failed to load pipeline overrides: %v", err)
	}

	registry, err := agents.NewRegistryFromCommands(cfg.AgentCommands)
	if err != nil {
		log.Fatalf("invalid agent configuration: %v", err)
	}

	provisioner, err := filesystem.NewWorkspaceProvisioner(cfg.WorkspacesPath, cfg.RepoPath, cfg.InstallCommand)
	if err != nil {
		log.Fatalf("failed to initialize workspace provisioner: %v", err)
	}

	docSink, err := filesystem.NewStageDocSink(cfg.DocsPath)
	if err != nil {
		log.Fatalf("failed to initialize stage doc sink: %v", err)
	}

	plans := workflow.NewPlanTable(workflow.PlanOverride{
		MaxRetries:   override.MaxRetries,
		StageTimeout: override.StageTimeout,
	})

	baseBranches := make(map[workflow.Type]string, len(cfg.BaseBranches))
	for t, branch := range cfg.BaseBranches {
		baseBranches[workflow.Type(t)] = branch
	}

	orchestrationService = app.NewOrchestratorService(
		workflowRepo,
		executionRepo,
		artifactRepo,
		stageLogRepo,
		agents.NewDispatchRunner(registry),
		provisioner,
		github.NewPullRequestPublisher(cfg.PRBaseBranch),
		docSink,
		plans,
		baseBranches,
	)
}
