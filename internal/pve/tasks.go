package pve

import (
	"context"
	"net/http"
	"time"

	"pvectl/internal/errors"
)

const (
	taskStatusStopped = "stopped"
	taskExitOK        = "OK"

	// defaultPollInterval replaces a zero or negative poll interval so a
	// misconfigured wait cannot busy-loop.
	defaultPollInterval = 2 * time.Second

	// taskLogFetchLimit bounds the single diagnostic log fetch after a task
	// failure; taskLogTailLines is how many trailing lines are kept.
	taskLogFetchLimit = 500
	taskLogTailLines  = 25
)

// TaskStatus is the server-reported state of one asynchronous task.
type TaskStatus struct {
	UPID       string `json:"upid"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	ExitStatus string `json:"exitstatus"`
	User       string `json:"user"`
	Node       string `json:"node"`
	StartTime  int64  `json:"starttime"`
	PID        int    `json:"pid"`
}

// Finished reports whether the task reached its terminal state.
func (s TaskStatus) Finished() bool {
	return s.Status == taskStatusStopped
}

// OK reports whether the task finished successfully.
func (s TaskStatus) OK() bool {
	return s.Finished() && s.ExitStatus == taskExitOK
}

// TaskLogLine is one numbered line of a task log.
type TaskLogLine struct {
	N uint64 `json:"n"`
	T string `json:"t"`
}

// TaskLogQuery selects a window of task log lines.
type TaskLogQuery struct {
	Start uint64
	Limit uint64
}

// WaitOptions controls task polling. A zero Timeout waits indefinitely; a
// zero or negative PollInterval is coerced to the default.
type WaitOptions struct {
	PollInterval time.Duration
	Timeout      time.Duration
}

// DefaultWaitOptions polls every two seconds without a deadline.
func DefaultWaitOptions() WaitOptions {
	return WaitOptions{PollInterval: defaultPollInterval}
}

// TaskStatusOf fetches the current status of the task identified by upid on
// the given node.
func (c *Client) TaskStatusOf(ctx context.Context, node, upid string) (TaskStatus, error) {
	path := "/nodes/" + escapePath(node) + "/tasks/" + escapePath(upid) + "/status"
	return call[TaskStatus](ctx, c, http.MethodGet, path, nil, nil)
}

// TaskLog fetches task log lines in the window described by the query.
func (c *Client) TaskLog(ctx context.Context, node, upid string, query TaskLogQuery) ([]TaskLogLine, error) {
	params := NewParams().SetUint("start", query.Start)
	if query.Limit > 0 {
		params.SetUint("limit", query.Limit)
	}
	path := "/nodes/" + escapePath(node) + "/tasks/" + escapePath(upid) + "/log"
	return call[[]TaskLogLine](ctx, c, http.MethodGet, path, params, nil)
}

// WaitTask polls the task until it reaches a terminal state, the configured
// timeout elapses, or polling itself fails. On a non-OK terminal state it
// fetches the trailing task log once and embeds it in the returned error,
// since the log is the primary diagnostic and is otherwise lost. A timeout
// does not cancel the task server-side. A transport error during polling
// fails the wait rather than retrying silently, so outages cannot masquerade
// as slow tasks.
func (c *Client) WaitTask(ctx context.Context, node, upid string, opts WaitOptions) (TaskStatus, error) {
	if upid == "" {
		return TaskStatus{}, errors.NewValidationError("upid", "", "required", "upid must not be empty")
	}

	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	started := time.Now()

	for {
		status, err := c.TaskStatusOf(ctx, node, upid)
		if err != nil {
			return TaskStatus{}, err
		}

		if status.Finished() {
			if status.ExitStatus == taskExitOK {
				return status, nil
			}
			exit := status.ExitStatus
			if exit == "" {
				exit = "UNKNOWN"
			}
			return TaskStatus{}, errors.NewTaskFailedError(upid, exit, c.taskLogTail(ctx, node, upid))
		}

		// The sleep is bounded by the remaining deadline so the wait returns
		// at the timeout instead of overshooting by up to one interval. A
		// timeout shorter than one interval still gets its first poll above.
		sleep := interval
		if opts.Timeout > 0 {
			remaining := opts.Timeout - time.Since(started)
			if remaining <= 0 {
				return TaskStatus{}, errors.NewTaskTimeoutError(upid, opts.Timeout)
			}
			if remaining < sleep {
				sleep = remaining
			}
		}

		select {
		case <-ctx.Done():
			return TaskStatus{}, ctx.Err()
		case <-time.After(sleep):
		}

		// Checked after the sleep so no poll is issued past the deadline.
		if opts.Timeout > 0 && time.Since(started) >= opts.Timeout {
			return TaskStatus{}, errors.NewTaskTimeoutError(upid, opts.Timeout)
		}
	}
}

// taskLogTail fetches the task log once and keeps the trailing lines.
// Best-effort: a failed fetch yields no tail rather than masking the task
// failure itself.
func (c *Client) taskLogTail(ctx context.Context, node, upid string) []string {
	lines, err := c.TaskLog(ctx, node, upid, TaskLogQuery{Limit: taskLogFetchLimit})
	if err != nil {
		return nil
	}
	if len(lines) > taskLogTailLines {
		lines = lines[len(lines)-taskLogTailLines:]
	}
	tail := make([]string, 0, len(lines))
	for _, line := range lines {
		tail = append(tail, line.T)
	}
	return tail
}
