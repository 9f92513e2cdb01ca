package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pvectl/internal/pve"
)

var ctCmd = &cobra.Command{
	Use:   "ct",
	Short: "Manage LXC containers",
}

var ctListCmd = &cobra.Command{
	Use:   "list",
	Short: "List containers on a node",
	RunE:  runCtList,
}

var ctStartCmd = &cobra.Command{
	Use:   "start <vmid>",
	Short: "Start a container",
	Args:  cobra.ExactArgs(1),
	RunE:  runCtAction(func(ctx context.Context, c *pve.Client, node string, vmid int) (string, error) {
		return c.LxcStart(ctx, node, vmid, nil)
	}, "started"),
}

var ctShutdownCmd = &cobra.Command{
	Use:   "shutdown <vmid>",
	Short: "Shut down a container gracefully",
	Args:  cobra.ExactArgs(1),
	RunE:  runCtAction(func(ctx context.Context, c *pve.Client, node string, vmid int) (string, error) {
		return c.LxcShutdown(ctx, node, vmid, nil)
	}, "shut down"),
}

var ctStopCmd = &cobra.Command{
	Use:   "stop <vmid>",
	Short: "Stop a container immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runCtAction(func(ctx context.Context, c *pve.Client, node string, vmid int) (string, error) {
		return c.LxcStop(ctx, node, vmid, nil)
	}, "stopped"),
}

var ctNode string

func init() {
	rootCmd.AddCommand(ctCmd)
	ctCmd.AddCommand(ctListCmd)
	ctCmd.AddCommand(ctStartCmd)
	ctCmd.AddCommand(ctShutdownCmd)
	ctCmd.AddCommand(ctStopCmd)

	ctCmd.PersistentFlags().StringVar(&ctNode, "node", "", "Node name (required)")
	_ = ctCmd.MarkPersistentFlagRequired("node")
}

func runCtList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := connect(ctx)
	if err != nil {
		return err
	}

	cts, err := client.LxcList(ctx, ctNode)
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	if len(cts) == 0 {
		fmt.Printf("No containers on node %s.\n", ctNode)
		return nil
	}

	fmt.Printf("%-8s %-24s %-10s %12s\n", "VMID", "NAME", "STATUS", "MEM")
	for _, ct := range cts {
		fmt.Printf("%-8d %-24s %-10s %12s\n", ct.VMID, ct.Name, ct.Status, formatBytes(ct.MaxMem))
	}

	return nil
}

func runCtAction(
	action func(ctx context.Context, c *pve.Client, node string, vmid int) (string, error),
	verb string,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		vmid, err := parseVMID(args[0])
		if err != nil {
			return err
		}

		client, err := connect(ctx)
		if err != nil {
			return err
		}

		upid, err := action(ctx, client, ctNode, vmid)
		if err != nil {
			return err
		}

		fmt.Printf("Container %d %s, task %s\n", vmid, verb, upid)
		return nil
	}
}
