package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/forge/internal/config"
	"github.com/example/forge/internal/db"
	"github.com/example/forge/internal/version"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the forge environment",
		Long: `Environment health check for forge.

Validates:
- .forge/config.json presence and agent command configuration
- Database reachability
- git and gh binaries on PATH
- Target repository path

Examples:
  forge doctor            # Run full health check
  forge doctor --quiet    # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			cfg, cfgErr := config.LoadConfig(cwd)
			if cfgErr != nil {
				results = append(results, CheckResult{"config", "✗", "no .forge/config.json - run 'forge init'"})
			} else {
				results = append(results, CheckResult{"config", "✓", ""})
				if _, err := os.Stat(cfg.RepoPath); err != nil {
					results = append(results, CheckResult{"repo", "✗", fmt.Sprintf("repo_path %s not found", cfg.RepoPath)})
				} else {
					results = append(results, CheckResult{"repo", "✓", ""})
				}
				missing := 0
				for _, command := range cfg.AgentCommands {
					if command == "" {
						missing++
					}
				}
				if missing > 0 || len(cfg.AgentCommands) < 6 {
					results = append(results, CheckResult{"agents", "⚠", "agent_commands incomplete - workflows cannot run"})
				} else {
					results = append(results, CheckResult{"agents", "✓", ""})
				}
			}

			if _, err := db.GetDB(); err != nil {
				results = append(results, CheckResult{"database", "✗", err.Error()})
			} else {
				results = append(results, CheckResult{"database", "✓", ""})
			}

			for _, binary := range []string{"git", "gh"} {
				if _, err := exec.LookPath(binary); err != nil {
					status := "✗"
					if binary == "gh" {
						// PR publishing is best-effort, so a missing gh only warns.
						status = "⚠"
					}
					results = append(results, CheckResult{binary, status, binary + " not found on PATH"})
				} else {
					results = append(results, CheckResult{binary, "✓", ""})
				}
			}

			healthy := true
			for _, r := range results {
				if r.Status == "✗" {
					healthy = false
				}
			}

			if !quiet {
				fmt.Printf("forge doctor (%s)\n\n", version.String())
				for _, r := range results {
					glyph := r.Status
					switch r.Status {
					case "✓":
						glyph = color.New(color.FgGreen).Sprint(r.Status)
					case "⚠":
						glyph = color.New(color.FgYellow).Sprint(r.Status)
					case "✗":
						glyph = color.New(color.FgRed).Sprint(r.Status)
					}
					line := fmt.Sprintf("%s %s", glyph, r.Name)
					if r.Details != "" {
						line += " - " + r.Details
					}
					fmt.Println(line)
				}
			}

			if !healthy {
				os.Exit(1)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Exit code only")
	return cmd
}
