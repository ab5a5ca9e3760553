package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/forge/internal/wire"
)

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Inspect workflow artifacts",
}

var artifactListCmd = &cobra.Command{
	Use:   "list [workflow-id]",
	Short: "List artifacts produced by a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := parseWorkflowID(args[0])
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("kind")

		artifacts, err := wire.WorkflowService().ListArtifacts(ctx, id, kind)
		if err != nil {
			return err
		}

		if len(artifacts) == 0 {
			fmt.Println("No artifacts found")
			return nil
		}

		fmt.Printf("\n%-6s %-22s %-10s %s\n", "ID", "KIND", "EXEC", "METADATA")
		fmt.Println("──────────────────────────────────────────────────────────")
		for _, a := range artifacts {
			fmt.Printf("%-6d %-22s %-10d %s\n", a.ID, a.Kind, a.ExecutionID, a.Metadata)
		}
		fmt.Println()
		return nil
	},
}

var artifactShowCmd = &cobra.Command{
	Use:   "show [workflow-id]",
	Short: "Print the most recent artifact of a kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := parseWorkflowID(args[0])
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("kind")
		if kind == "" {
			return fmt.Errorf("--kind is required")
		}

		artifacts, err := wire.WorkflowService().ListArtifacts(ctx, id, kind)
		if err != nil {
			return err
		}
		if len(artifacts) == 0 {
			return fmt.Errorf("no %s artifact found for workflow %d", kind, id)
		}

		// Artifacts come back in creation order; the live lookup always
		// prefers the latest of a kind.
		fmt.Println(artifacts[len(artifacts)-1].Content)
		return nil
	},
}

// ArtifactCmd returns the artifact command
func ArtifactCmd() *cobra.Command {
	artifactListCmd.Flags().StringP("kind", "k", "", "Filter by artifact kind")
	artifactShowCmd.Flags().StringP("kind", "k", "", "Artifact kind to show")

	artifactCmd.AddCommand(artifactListCmd)
	artifactCmd.AddCommand(artifactShowCmd)

	return artifactCmd
}
