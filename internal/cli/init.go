package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/forge/internal/config"
	"github.com/example/forge/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var repoPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize forge in the current directory",
		Long: `Create .forge/config.json and the forge database.

The generated config carries placeholder agent commands - point them at your
agent executables before running a workflow.

Examples:
  forge init --repo ~/src/myproject
  forge init`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			if _, err := config.LoadConfig(cwd); err == nil {
				return fmt.Errorf(".forge/config.json already exists")
			}

			if repoPath == "" {
				repoPath = cwd
			}

			cfg := config.DefaultConfig(repoPath)
			if err := config.SaveConfig(cwd, cfg); err != nil {
				return err
			}

			if _, err := db.GetDB(); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			fmt.Printf("%s Initialized forge\n", color.New(color.FgGreen).Sprint("✓"))
			fmt.Println("  Wrote .forge/config.json - edit agent_commands before the first run")
			return nil
		},
	}

	cmd.Flags().StringVarP(&repoPath, "repo", "r", "", "Path to the local clone of the target repository")
	return cmd
}
