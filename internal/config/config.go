// Package config owns the flat forge configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the flat forge configuration stored at
// .forge/config.json.
type Config struct {
	Version        string            `json:"version"`
	RepoPath       string            `json:"repo_path"`                  // local clone of the target repository
	WorkspacesPath string            `json:"workspaces_path,omitempty"`  // per-workflow checkouts live here
	DocsPath       string            `json:"docs_path,omitempty"`        // stage documentation trail
	BaseBranches   map[string]string `json:"base_branches,omitempty"`    // workflow type -> base branch
	PRBaseBranch   string            `json:"pr_base_branch,omitempty"`   // target branch for pull requests
	InstallCommand string            `json:"install_command,omitempty"`  // run in fresh workspaces
	AgentCommands  map[string]string `json:"agent_commands"`             // agent kind -> external command
}

// LoadConfig reads .forge/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".forge", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory.
func SaveConfig(dir string, cfg *Config) error {
	forgeDir := filepath.Join(dir, ".forge")
	if err := os.MkdirAll(forgeDir, 0755); err != nil {
		return fmt.Errorf("failed to create .forge dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(forgeDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns a starter configuration for forge init.
func DefaultConfig(repoPath string) *Config {
	return &Config{
		Version:  "1",
		RepoPath: repoPath,
		BaseBranches: map[string]string{
			"feature": "main",
			"bugfix":  "main",
		},
		PRBaseBranch: "main",
		AgentCommands: map[string]string{
			"plan":          "forge-agent plan",
			"code":          "forge-agent code",
			"security-lint": "forge-agent security-lint",
			"test":          "forge-agent test",
			"review":        "forge-agent review",
			"document":      "forge-agent document",
		},
	}
}
