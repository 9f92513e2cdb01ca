package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pvectl/internal/pve"
)

var vmCmd = &cobra.Command{
	Use:   "vm",
	Short: "Manage QEMU virtual machines",
}

var vmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List VMs on a node",
	RunE:  runVMList,
}

var vmStartCmd = &cobra.Command{
	Use:   "start <vmid>",
	Short: "Start a VM",
	Args:  cobra.ExactArgs(1),
	RunE:  runVMAction(func(ctx context.Context, c *pve.Client, node string, vmid int) (string, error) {
		return c.QemuStart(ctx, node, vmid, nil)
	}, "started"),
}

var vmShutdownCmd = &cobra.Command{
	Use:   "shutdown <vmid>",
	Short: "Shut down a VM gracefully",
	Args:  cobra.ExactArgs(1),
	RunE:  runVMAction(func(ctx context.Context, c *pve.Client, node string, vmid int) (string, error) {
		return c.QemuShutdown(ctx, node, vmid, nil)
	}, "shut down"),
}

var vmStopCmd = &cobra.Command{
	Use:   "stop <vmid>",
	Short: "Stop a VM immediately",
	Args:  cobra.ExactArgs(1),
	RunE:  runVMAction(func(ctx context.Context, c *pve.Client, node string, vmid int) (string, error) {
		return c.QemuStop(ctx, node, vmid, nil)
	}, "stopped"),
}

var vmCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a VM",
	RunE:  runVMCreate,
}

var (
	vmNode   string
	vmWait   bool
	vmWaitTO time.Duration

	createVMID   int
	createName   string
	createMemory int
	createCores  int
	createNet0   string
	createSCSI0  string
)

func init() {
	rootCmd.AddCommand(vmCmd)
	vmCmd.AddCommand(vmListCmd)
	vmCmd.AddCommand(vmStartCmd)
	vmCmd.AddCommand(vmShutdownCmd)
	vmCmd.AddCommand(vmStopCmd)
	vmCmd.AddCommand(vmCreateCmd)

	vmCmd.PersistentFlags().StringVar(&vmNode, "node", "", "Node name (required)")
	vmCmd.PersistentFlags().BoolVarP(&vmWait, "wait", "w", false, "Wait for the spawned task to finish")
	vmCmd.PersistentFlags().DurationVar(&vmWaitTO, "wait-timeout", 10*time.Minute, "Give up waiting after this duration")
	_ = vmCmd.MarkPersistentFlagRequired("node")

	vmCreateCmd.Flags().IntVar(&createVMID, "vmid", 0, "VM id (required)")
	vmCreateCmd.Flags().StringVar(&createName, "name", "", "VM name")
	vmCreateCmd.Flags().IntVar(&createMemory, "memory", 2048, "Memory in MiB")
	vmCreateCmd.Flags().IntVar(&createCores, "cores", 1, "CPU cores")
	vmCreateCmd.Flags().StringVar(&createNet0, "net0", "", "First network device spec")
	vmCreateCmd.Flags().StringVar(&createSCSI0, "scsi0", "", "First SCSI disk spec")
	_ = vmCreateCmd.MarkFlagRequired("vmid")
}

func runVMList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := connect(ctx)
	if err != nil {
		return err
	}

	vms, err := client.QemuList(ctx, vmNode, false)
	if err != nil {
		return fmt.Errorf("failed to list VMs: %w", err)
	}

	if len(vms) == 0 {
		fmt.Printf("No VMs on node %s.\n", vmNode)
		return nil
	}

	fmt.Printf("%-8s %-24s %-10s %12s\n", "VMID", "NAME", "STATUS", "MEM")
	for _, vm := range vms {
		fmt.Printf("%-8d %-24s %-10s %12s\n", vm.VMID, vm.Name, vm.Status, formatBytes(vm.MaxMem))
	}

	return nil
}

// runVMAction builds a RunE handler for a lifecycle action that returns a
// task UPID.
func runVMAction(
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

		upid, err := action(ctx, client, vmNode, vmid)
		if err != nil {
			return err
		}

		fmt.Printf("VM %d %s, task %s\n", vmid, verb, upid)
		return maybeWait(ctx, client, vmNode, upid)
	}
}

func runVMCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := connect(ctx)
	if err != nil {
		return err
	}

	upid, err := client.QemuCreate(ctx, vmNode, pve.QemuCreateRequest{
		VMID:   createVMID,
		Name:   createName,
		Memory: createMemory,
		Cores:  createCores,
		Net0:   createNet0,
		SCSI0:  createSCSI0,
	})
	if err != nil {
		return fmt.Errorf("failed to create VM %d: %w", createVMID, err)
	}

	fmt.Printf("VM %d creation started, task %s\n", createVMID, upid)
	return maybeWait(ctx, client, vmNode, upid)
}

// connect resolves the selected profile and builds an authenticated client.
func connect(ctx context.Context) (*pve.Client, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, err
	}
	server, err := selectedServer(a)
	if err != nil {
		return nil, err
	}
	return a.ClientForServer(ctx, *server)
}

// maybeWait follows the task when --wait was given.
func maybeWait(ctx context.Context, client *pve.Client, node, upid string) error {
	if !vmWait {
		return nil
	}

	opts := pve.DefaultWaitOptions()
	opts.Timeout = vmWaitTO
	status, err := client.WaitTask(ctx, node, upid, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Task %s finished: %s\n", status.UPID, status.ExitStatus)
	return nil
}

func parseVMID(arg string) (int, error) {
	vmid, err := strconv.Atoi(arg)
	if err != nil || vmid <= 0 {
		return 0, fmt.Errorf("invalid vmid %q", arg)
	}
	return vmid, nil
}
