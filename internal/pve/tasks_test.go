package pve

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "pvectl/internal/errors"
)

const testUPID = "UPID:pve1:00051234:00A1B2C3:66D0A1B2:qmstart:100:root@pam:"

// taskServer simulates the task status and log endpoints of one node.
type taskServer struct {
	statusCalls atomic.Int64
	logCalls    atomic.Int64

	// status returns the response for the nth poll (1-based).
	status func(poll int64) TaskStatus

	logLines []string
}

func (s *taskServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/status"):
			n := s.statusCalls.Add(1)
			st := s.status(n)
			writeData(t, w, fmt.Sprintf(
				`{"upid":%q,"type":"qmstart","status":%q,"exitstatus":%q,"node":"pve1"}`,
				testUPID, st.Status, st.ExitStatus))
		case strings.HasSuffix(r.URL.Path, "/log"):
			s.logCalls.Add(1)
			var sb strings.Builder
			sb.WriteString("[")
			for i, line := range s.logLines {
				if i > 0 {
					sb.WriteString(",")
				}
				fmt.Fprintf(&sb, `{"n":%d,"t":%q}`, i+1, line)
			}
			sb.WriteString("]")
			writeData(t, w, sb.String())
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func TestTaskStatusOf(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes/pve1/tasks/"+testUPID+"/status", r.URL.Path)
		writeData(t, w, fmt.Sprintf(`{"upid":%q,"type":"qmstart","status":"running","node":"pve1","pid":1234}`, testUPID))
	}), NoCredential())

	status, err := client.TaskStatusOf(context.Background(), "pve1", testUPID)
	require.NoError(t, err)
	assert.Equal(t, testUPID, status.UPID)
	assert.False(t, status.Finished())
	assert.False(t, status.OK())
}

func TestWaitTask_SucceedsAfterPolling(t *testing.T) {
	srv := &taskServer{
		status: func(poll int64) TaskStatus {
			if poll < 3 {
				return TaskStatus{Status: "running"}
			}
			return TaskStatus{Status: "stopped", ExitStatus: "OK"}
		},
	}
	client := newTestClient(t, srv.handler(t), NoCredential())

	status, err := client.WaitTask(context.Background(), "pve1", testUPID, WaitOptions{
		PollInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.True(t, status.OK())
	assert.Equal(t, int64(3), srv.statusCalls.Load())
	assert.Equal(t, int64(0), srv.logCalls.Load(), "no log fetch on success")
}

func TestWaitTask_FailureFetchesLogTailOnce(t *testing.T) {
	srv := &taskServer{
		status: func(poll int64) TaskStatus {
			return TaskStatus{Status: "stopped", ExitStatus: "unable to start VM"}
		},
		logLines: []string{"starting VM", "no such disk", "TASK ERROR: unable to start VM"},
	}
	client := newTestClient(t, srv.handler(t), NoCredential())

	_, err := client.WaitTask(context.Background(), "pve1", testUPID, DefaultWaitOptions())
	require.Error(t, err)
	assert.True(t, apierrors.IsTaskFailed(err))

	var taskErr *apierrors.TaskFailedError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, testUPID, taskErr.UPID)
	assert.Equal(t, "unable to start VM", taskErr.ExitStatus)
	assert.Equal(t, []string{"starting VM", "no such disk", "TASK ERROR: unable to start VM"}, taskErr.LogTail)

	assert.Equal(t, int64(1), srv.logCalls.Load(), "log must be fetched exactly once")
}

func TestWaitTask_EmptyExitStatusFallsBackToUnknown(t *testing.T) {
	srv := &taskServer{
		status: func(poll int64) TaskStatus {
			return TaskStatus{Status: "stopped"}
		},
	}
	client := newTestClient(t, srv.handler(t), NoCredential())

	_, err := client.WaitTask(context.Background(), "pve1", testUPID, DefaultWaitOptions())
	require.Error(t, err)

	var taskErr *apierrors.TaskFailedError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "UNKNOWN", taskErr.ExitStatus)
}

func TestWaitTask_TimeoutAfterFirstPoll(t *testing.T) {
	srv := &taskServer{
		status: func(poll int64) TaskStatus {
			return TaskStatus{Status: "running"}
		},
	}
	client := newTestClient(t, srv.handler(t), NoCredential())

	// A timeout shorter than one poll interval still gets its first poll,
	// and none after the deadline.
	_, err := client.WaitTask(context.Background(), "pve1", testUPID, WaitOptions{
		PollInterval: 20 * time.Millisecond,
		Timeout:      time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, apierrors.IsTaskTimeout(err))

	var timeoutErr *apierrors.TaskTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, testUPID, timeoutErr.UPID)

	assert.Equal(t, int64(1), srv.statusCalls.Load())
}

func TestWaitTask_TimeoutDoesNotOvershootInterval(t *testing.T) {
	srv := &taskServer{
		status: func(poll int64) TaskStatus {
			return TaskStatus{Status: "running"}
		},
	}
	client := newTestClient(t, srv.handler(t), NoCredential())

	// The sleep between polls is bounded by the remaining deadline, so the
	// wait returns at the timeout rather than a full interval late.
	started := time.Now()
	_, err := client.WaitTask(context.Background(), "pve1", testUPID, WaitOptions{
		PollInterval: time.Minute,
		Timeout:      50 * time.Millisecond,
	})
	elapsed := time.Since(started)

	require.Error(t, err)
	assert.True(t, apierrors.IsTaskTimeout(err))
	assert.Less(t, elapsed, 5*time.Second)
	assert.Equal(t, int64(1), srv.statusCalls.Load())
}

func TestWaitTask_ContextCancellation(t *testing.T) {
	srv := &taskServer{
		status: func(poll int64) TaskStatus {
			return TaskStatus{Status: "running"}
		},
	}
	client := newTestClient(t, srv.handler(t), NoCredential())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.WaitTask(ctx, "pve1", testUPID, WaitOptions{
		PollInterval: time.Hour,
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWaitTask_PollErrorFailsWait(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), NoCredential())

	_, err := client.WaitTask(context.Background(), "pve1", testUPID, DefaultWaitOptions())
	require.Error(t, err)
	assert.True(t, apierrors.IsHTTPStatus(err, http.StatusInternalServerError))
	assert.False(t, apierrors.IsTaskFailed(err))
}

func TestWaitTask_EmptyUPID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued")
	}), NoCredential())

	_, err := client.WaitTask(context.Background(), "pve1", "", DefaultWaitOptions())
	require.Error(t, err)
	assert.True(t, apierrors.IsValidation(err))
}
