package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/forge/internal/wire"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the orchestration audit trail",
}

var logListCmd = &cobra.Command{
	Use:   "list [workflow-id]",
	Short: "List audit entries for a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := parseWorkflowID(args[0])
		if err != nil {
			return err
		}

		entries, err := wire.WorkflowService().ListStageLogs(ctx, id)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No audit entries found")
			return nil
		}

		for _, e := range entries {
			line := fmt.Sprintf("%s  %-12s %-10s", e.CreatedAt, e.AgentKind, e.Phase)
			if e.Details != "" {
				line += "  " + e.Details
			}
			fmt.Println(line)
		}
		return nil
	},
}

// LogCmd returns the log command
func LogCmd() *cobra.Command {
	logCmd.AddCommand(logListCmd)
	return logCmd
}
