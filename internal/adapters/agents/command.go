package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/example/forge/internal/core/workflow"
	"github.com/example/forge/internal/ports/secondary"
)

// CommandStage returns a StageFunc that shells out to an external agent
// command. The command receives the AgentInput as JSON on stdin, runs inside
// the workspace, and must print an AgentResult as JSON on stdout. This keeps
// prompt content and model access entirely outside the orchestration core.
func CommandStage(command string) StageFunc {
	return func(ctx context.Context, input secondary.AgentInput) (*secondary.AgentResult, error) {
		// Running with an empty Dir would silently execute in the forge
		// process's own working directory.
		if input.WorkspacePath == "" {
			return nil, fmt.Errorf("%w: workflow %d", workflow.ErrMissingWorkspace, input.WorkflowID)
		}

		payload, err := json.Marshal(input)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal agent input: %w", err)
		}

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Dir = input.WorkspacePath
		cmd.Stdin = bytes.NewReader(payload)

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, context.DeadlineExceeded
			}
			return nil, fmt.Errorf("agent command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}

		var result secondary.AgentResult
		if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
			return nil, fmt.Errorf("agent command produced invalid result: %w", err)
		}
		return &result, nil
	}
}

// NewRegistryFromCommands builds the stage registry from per-kind command
// configuration. Every kind in the pipeline must have a command.
func NewRegistryFromCommands(commands map[string]string) (Registry, error) {
	kinds := []workflow.AgentKind{
		workflow.AgentPlan, workflow.AgentCode, workflow.AgentSecurityLint,
		workflow.AgentTest, workflow.AgentReview, workflow.AgentDocument,
	}

	registry := make(Registry, len(kinds))
	for _, kind := range kinds {
		command, ok := commands[string(kind)]
		if !ok || command == "" {
			return nil, fmt.Errorf("no agent command configured for kind %q", kind)
		}
		registry[kind] = CommandStage(command)
	}
	return registry, nil
}
