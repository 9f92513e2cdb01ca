// Package errors provides custom error types and utilities for pvectl.
//
// This package provides error handling for various operations including:
// - Configuration and credential errors
// - Authentication errors
// - Transport errors (network, TLS, timeouts)
// - HTTP status errors
// - Response decode errors
// - Task failures and task-tracking timeouts
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error categories for pvectl operations
var (
	ErrNotFound       = errors.New("resource not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNetwork        = errors.New("network error")
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrDecode         = errors.New("decode error")
	ErrTaskFailed     = errors.New("task failed")
	ErrTaskTimeout    = errors.New("task timeout")
)

// TimeoutPhase identifies which timeout elapsed during a request.
type TimeoutPhase string

const (
	// PhaseConnect means connection establishment timed out.
	PhaseConnect TimeoutPhase = "connect"
	// PhaseRequest means the total request duration elapsed.
	PhaseRequest TimeoutPhase = "request"
)

// ConfigurationError represents configuration or credential errors detected
// before any network I/O.
type ConfigurationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func (e *ConfigurationError) Is(target error) bool {
	return errors.Is(target, ErrConfiguration)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(field, value, message string, err error) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}

// IsConfiguration checks if an error is configuration-related
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// AuthenticationError represents a failed login exchange or a credential the
// server rejected.
type AuthenticationError struct {
	Host     string
	Username string
	Err      error
}

func (e *AuthenticationError) Error() string {
	if e.Username != "" {
		return fmt.Sprintf("authentication failed for user '%s' on host '%s'", e.Username, e.Host)
	}
	return fmt.Sprintf("authentication failed on host '%s'", e.Host)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

func (e *AuthenticationError) Is(target error) bool {
	return errors.Is(target, ErrAuthentication)
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(host, username string, err error) *AuthenticationError {
	return &AuthenticationError{
		Host:     host,
		Username: username,
		Err:      err,
	}
}

// IsAuthentication checks if an error is authentication-related
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// TransportError represents a DNS, TLS, connect, or read/write failure,
// including timeout expiry. Phase distinguishes a connect-establishment
// timeout from an elapsed total request duration.
type TransportError struct {
	Method  string
	URL     string
	Phase   TimeoutPhase
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timeout during %s %s", e.Phase, e.Method, e.URL)
	}
	return fmt.Sprintf("transport error during %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return errors.Is(target, ErrNetwork)
}

// NewTransportError creates a new transport error
func NewTransportError(method, url string, phase TimeoutPhase, timeout bool, err error) *TransportError {
	return &TransportError{
		Method:  method,
		URL:     url,
		Phase:   phase,
		Timeout: timeout,
		Err:     err,
	}
}

// IsNetwork checks if an error is network-related
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsConnectTimeout checks if an error is a connection-establishment timeout
func IsConnectTimeout(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Timeout && transportErr.Phase == PhaseConnect
	}
	return false
}

// IsRequestTimeout checks if an error is an elapsed total request duration
func IsRequestTimeout(err error) bool {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Timeout && transportErr.Phase == PhaseRequest
	}
	return false
}

// HTTPError represents a non-2xx API response. It carries the status code and
// the raw body so callers can diagnose without re-querying the server.
type HTTPError struct {
	StatusCode int
	Method     string
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d %s %s: %s", e.StatusCode, e.Method, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d %s %s", e.StatusCode, e.Method, e.URL)
}

func (e *HTTPError) Is(target error) bool {
	switch e.StatusCode {
	case http.StatusNotFound:
		return errors.Is(target, ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Is(target, ErrUnauthorized)
	case http.StatusBadRequest:
		return errors.Is(target, ErrInvalidInput)
	default:
		return false
	}
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, method, url, body string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Body:       body,
	}
}

// IsHTTPStatus checks if an error represents a specific HTTP status
func IsHTTPStatus(err error, statusCode int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == statusCode
	}
	return false
}

// DecodeError represents a 2xx response whose body did not match the expected
// envelope or payload shape. It signals contract drift and is never retried.
type DecodeError struct {
	Method string
	URL    string
	Body   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return errors.Is(target, ErrDecode)
}

// NewDecodeError creates a new decode error
func NewDecodeError(method, url, body string, err error) *DecodeError {
	return &DecodeError{
		Method: method,
		URL:    url,
		Body:   body,
		Err:    err,
	}
}

// IsDecode checks if an error is a response-decode failure
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// TaskFailedError represents a job that reached a terminal state with a
// non-OK exit status. LogTail holds the trailing task log lines fetched as
// the primary diagnostic signal.
type TaskFailedError struct {
	UPID       string
	ExitStatus string
	LogTail    []string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %s failed with exitstatus %s", e.UPID, e.ExitStatus)
}

func (e *TaskFailedError) Is(target error) bool {
	return errors.Is(target, ErrTaskFailed)
}

// NewTaskFailedError creates a new task failure error
func NewTaskFailedError(upid, exitStatus string, logTail []string) *TaskFailedError {
	return &TaskFailedError{
		UPID:       upid,
		ExitStatus: exitStatus,
		LogTail:    logTail,
	}
}

// IsTaskFailed checks if an error is a terminal task failure
func IsTaskFailed(err error) bool {
	return errors.Is(err, ErrTaskFailed)
}

// TaskTimeoutError means the wait deadline elapsed before the task reached a
// terminal state. The job may still be running server-side.
type TaskTimeoutError struct {
	UPID    string
	Timeout time.Duration
}

func (e *TaskTimeoutError) Error() string {
	return fmt.Sprintf("task %s timed out after %s", e.UPID, e.Timeout)
}

func (e *TaskTimeoutError) Is(target error) bool {
	return errors.Is(target, ErrTaskTimeout)
}

// NewTaskTimeoutError creates a new task-tracking timeout error
func NewTaskTimeoutError(upid string, timeout time.Duration) *TaskTimeoutError {
	return &TaskTimeoutError{
		UPID:    upid,
		Timeout: timeout,
	}
}

// IsTaskTimeout checks if an error is a task-tracking timeout
func IsTaskTimeout(err error) bool {
	return errors.Is(err, ErrTaskTimeout)
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Value   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return errors.Is(target, ErrInvalidInput)
}

// NewValidationError creates a new validation error
func NewValidationError(field, value, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// IsValidation checks if an error is validation-related
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound checks if an error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || IsHTTPStatus(err, http.StatusNotFound)
}

// IsUnauthorized checks if an error represents an authorization failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		IsHTTPStatus(err, http.StatusUnauthorized) ||
		IsHTTPStatus(err, http.StatusForbidden)
}
