package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List cluster nodes",
	Long:  `List the nodes of the selected cluster with their status and resource usage.`,
	RunE:  runNodes,
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}

func runNodes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}

	server, err := selectedServer(a)
	if err != nil {
		return err
	}

	client, err := a.ClientForServer(ctx, *server)
	if err != nil {
		return err
	}

	nodes, err := client.Nodes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list nodes: %w", err)
	}

	if len(nodes) == 0 {
		fmt.Println("No nodes found.")
		return nil
	}

	fmt.Printf("%-20s %-10s %8s %12s\n", "NODE", "STATUS", "CPU", "MEM")
	for _, node := range nodes {
		fmt.Printf("%-20s %-10s %7.1f%% %12s\n",
			node.Node, node.Status, node.CPU*100, formatBytes(node.Mem))
	}

	return nil
}

// formatBytes renders a byte count in a human readable unit.
func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
