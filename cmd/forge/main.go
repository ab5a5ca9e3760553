package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/forge/internal/cli"
	"github.com/example/forge/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "forge",
		Short:   "forge - agent pipeline for automated change delivery",
		Version: version.String(),
		Long: `forge drives a pipeline of specialized agents (plan, code, security-lint,
test, review, document) against a single change request, producing a branch,
commits, and a pull request.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.WorkflowCmd())
	rootCmd.AddCommand(cli.ArtifactCmd())
	rootCmd.AddCommand(cli.LogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
