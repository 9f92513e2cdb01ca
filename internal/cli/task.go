package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pvectl/internal/pve"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect and follow node tasks",
}

var taskStatusCmd = &cobra.Command{
	Use:   "status <upid>",
	Short: "Show the current status of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskStatus,
}

var taskLogCmd = &cobra.Command{
	Use:   "log <upid>",
	Short: "Print the log of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskLog,
}

var taskWaitCmd = &cobra.Command{
	Use:   "wait <upid>",
	Short: "Block until a task finishes",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskWait,
}

var (
	taskNode     string
	taskLogStart uint64
	taskLogLimit uint64
	taskTimeout  time.Duration
	taskInterval time.Duration
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskStatusCmd)
	taskCmd.AddCommand(taskLogCmd)
	taskCmd.AddCommand(taskWaitCmd)

	taskCmd.PersistentFlags().StringVar(&taskNode, "node", "", "Node name (required)")
	_ = taskCmd.MarkPersistentFlagRequired("node")

	taskLogCmd.Flags().Uint64Var(&taskLogStart, "start", 0, "First log line to fetch")
	taskLogCmd.Flags().Uint64Var(&taskLogLimit, "limit", 0, "Maximum number of lines (0: server default)")

	taskWaitCmd.Flags().DurationVar(&taskTimeout, "timeout", 0, "Give up after this duration (0: wait forever)")
	taskWaitCmd.Flags().DurationVar(&taskInterval, "interval", 2*time.Second, "Poll interval")
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := connect(ctx)
	if err != nil {
		return err
	}

	status, err := client.TaskStatusOf(ctx, taskNode, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch task status: %w", err)
	}

	fmt.Printf("UPID:   %s\n", status.UPID)
	fmt.Printf("Type:   %s\n", status.Type)
	fmt.Printf("User:   %s\n", status.User)
	fmt.Printf("Status: %s\n", status.Status)
	if status.Finished() {
		fmt.Printf("Exit:   %s\n", status.ExitStatus)
	}
	return nil
}

func runTaskLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := connect(ctx)
	if err != nil {
		return err
	}

	lines, err := client.TaskLog(ctx, taskNode, args[0], pve.TaskLogQuery{
		Start: taskLogStart,
		Limit: taskLogLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch task log: %w", err)
	}

	for _, line := range lines {
		fmt.Println(line.T)
	}
	return nil
}

func runTaskWait(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	client, err := connect(ctx)
	if err != nil {
		return err
	}

	status, err := client.WaitTask(ctx, taskNode, args[0], pve.WaitOptions{
		PollInterval: taskInterval,
		Timeout:      taskTimeout,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Task %s finished: %s\n", status.UPID, status.ExitStatus)
	return nil
}
