// Package testutil provides test utilities shared across packages.
package testutil

import (
	"log/slog"

	"pvectl/internal/logging"
)

// Logger returns a silent logger for use in tests.
func Logger() *slog.Logger {
	return logging.NewTestLogger()
}
