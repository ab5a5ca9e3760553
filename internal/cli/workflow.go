package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/forge/internal/ctxutil"
	"github.com/example/forge/internal/ports/primary"
	"github.com/example/forge/internal/wire"
)

// operatorContext tags CLI-driven writes in the audit trail.
func operatorContext() context.Context {
	return ctxutil.WithActor(context.Background(), "operator")
}

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Manage change-delivery workflows",
	Long:  "Create, run, resume, and inspect agent-pipeline workflows in the forge ledger",
}

var workflowCreateCmd = &cobra.Command{
	Use:   "create [description]",
	Short: "Register a new workflow",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := operatorContext()
		description := strings.Join(args, " ")
		workflowType, _ := cmd.Flags().GetString("type")
		sourceEvent, _ := cmd.Flags().GetString("source-event")

		resp, err := wire.WorkflowService().CreateWorkflow(ctx, primary.CreateWorkflowRequest{
			Type:        workflowType,
			Description: description,
			SourceEvent: sourceEvent,
		})
		if err != nil {
			return fmt.Errorf("failed to create workflow: %w", err)
		}

		fmt.Printf("%s Created workflow %d (%s): %s\n",
			color.New(color.FgGreen).Sprint("✓"), resp.WorkflowID, resp.Workflow.Type, resp.Workflow.Description)
		fmt.Printf("  Run it with: forge workflow run %d\n", resp.WorkflowID)
		return nil
	},
}

var workflowRunCmd = &cobra.Command{
	Use:   "run [workflow-id]",
	Short: "Run the agent pipeline for a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := operatorContext()
		id, err := parseWorkflowID(args[0])
		if err != nil {
			return err
		}

		report, err := wire.OrchestrationService().Execute(ctx, id)
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}

var workflowResumeCmd = &cobra.Command{
	Use:   "resume [workflow-id]",
	Short: "Resume an interrupted workflow from its last completed stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := operatorContext()
		id, err := parseWorkflowID(args[0])
		if err != nil {
			return err
		}

		var stageIndex *int
		if cmd.Flags().Changed("stage") {
			stage, _ := cmd.Flags().GetInt("stage")
			stageIndex = &stage
		}

		report, err := wire.OrchestrationService().Resume(ctx, id, stageIndex)
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}

var workflowCancelCmd = &cobra.Command{
	Use:   "cancel [workflow-id]",
	Short: "Cancel a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := operatorContext()
		id, err := parseWorkflowID(args[0])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")

		if err := wire.WorkflowService().CancelWorkflow(ctx, id, reason); err != nil {
			return err
		}

		fmt.Printf("%s Cancelled workflow %d\n", color.New(color.FgYellow).Sprint("!"), id)
		return nil
	},
}

var workflowListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := operatorContext()
		status, _ := cmd.Flags().GetString("status")
		workflowType, _ := cmd.Flags().GetString("type")
		limit, _ := cmd.Flags().GetInt("limit")

		workflows, err := wire.WorkflowService().ListWorkflows(ctx, primary.WorkflowFilters{
			Status: status,
			Type:   workflowType,
			Limit:  limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list workflows: %w", err)
		}

		if len(workflows) == 0 {
			fmt.Println("No workflows found")
			return nil
		}

		fmt.Printf("\n%-6s %-14s %-17s %-30s %s\n", "ID", "TYPE", "STATUS", "BRANCH", "DESCRIPTION")
		fmt.Println("────────────────────────────────────────────────────────────────────────────────────")
		for _, w := range workflows {
			fmt.Printf("%-6d %-14s %-17s %-30s %s\n", w.ID, w.Type, statusGlyph(w.Status), w.BranchName, w.Description)
		}
		fmt.Println()
		return nil
	},
}

var workflowShowCmd = &cobra.Command{
	Use:   "show [workflow-id]",
	Short: "Show workflow details and stage history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := operatorContext()
		id, err := parseWorkflowID(args[0])
		if err != nil {
			return err
		}

		w, err := wire.WorkflowService().GetWorkflow(ctx, id)
		if err != nil {
			return err
		}

		fmt.Printf("\nWorkflow: %d\n", w.ID)
		fmt.Printf("Type:     %s\n", w.Type)
		fmt.Printf("Status:   %s\n", statusGlyph(w.Status))
		fmt.Printf("Branch:   %s\n", w.BranchName)
		fmt.Printf("Created:  %s\n", w.CreatedAt)
		if w.CompletedAt != "" {
			fmt.Printf("Ended:    %s\n", w.CompletedAt)
		}
		if w.FailureReason != "" {
			fmt.Printf("Reason:   %s\n", w.FailureReason)
		}
		fmt.Printf("Task:     %s\n", w.Description)

		executions, err := wire.WorkflowService().ListExecutions(ctx, id)
		if err != nil {
			return err
		}
		if len(executions) > 0 {
			fmt.Println("\nStages:")
			for _, e := range executions {
				line := fmt.Sprintf("  pass %d  %-14s %s", e.Attempt, e.AgentKind, statusGlyph(e.Status))
				if e.Error != "" {
					line += " " + color.New(color.FgRed).Sprint(e.Error)
				} else if e.Summary != "" {
					line += " " + e.Summary
				}
				fmt.Println(line)
			}
		}
		fmt.Println()
		return nil
	},
}

// parseWorkflowID parses a numeric workflow id argument.
func parseWorkflowID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid workflow id %q", arg)
	}
	return id, nil
}

// statusGlyph decorates terminal statuses with color.
func statusGlyph(status string) string {
	switch status {
	case "completed":
		return color.New(color.FgGreen).Sprint(status)
	case "failed":
		return color.New(color.FgRed).Sprint(status)
	default:
		return status
	}
}

// printReport prints the final run report.
func printReport(report *primary.RunReport) {
	fmt.Printf("\n%s Workflow %d finished: %s\n",
		color.New(color.FgGreen).Sprint("✓"), report.WorkflowID, statusGlyph(report.Status))
	fmt.Printf("Branch: %s (passes: %d)\n", report.BranchName, report.Passes)
	if report.PRURL != "" {
		fmt.Printf("PR:     %s\n", report.PRURL)
	}
	if report.Report != "" {
		fmt.Println("\nStage summaries:")
		fmt.Print(report.Report)
	}
	fmt.Println()
}

// WorkflowCmd returns the workflow command
func WorkflowCmd() *cobra.Command {
	// Add flags
	workflowCreateCmd.Flags().StringP("type", "t", "feature", "Workflow type (feature, bugfix, refactor, documentation, review)")
	workflowCreateCmd.Flags().String("source-event", "", "Source-control event metadata (JSON)")
	workflowResumeCmd.Flags().Int("stage", 0, "Explicit stage index to resume at")
	workflowCancelCmd.Flags().StringP("reason", "r", "", "Cancellation reason")
	workflowListCmd.Flags().StringP("status", "s", "", "Filter by status")
	workflowListCmd.Flags().StringP("type", "t", "", "Filter by type")
	workflowListCmd.Flags().IntP("limit", "n", 0, "Limit results")

	// Add subcommands
	workflowCmd.AddCommand(workflowCreateCmd)
	workflowCmd.AddCommand(workflowRunCmd)
	workflowCmd.AddCommand(workflowResumeCmd)
	workflowCmd.AddCommand(workflowCancelCmd)
	workflowCmd.AddCommand(workflowListCmd)
	workflowCmd.AddCommand(workflowShowCmd)

	return workflowCmd
}
