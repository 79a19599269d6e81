package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tool engine. Use errors.Is to check.
var (
	ErrToolNotFound = errors.New("tool not found")
	ErrTimeout      = errors.New("tool execution timeout")
	ErrValidation   = errors.New("validation failed")
	ErrShutdown     = errors.New("registry is shutting down")
)

// ClientError is an error that should be sent back to the LLM for self-correction
// (e.g. invalid JSON, schema validation failure, bad enum value).
// Do not expose stack traces or internal details to the LLM.
// Err optionally wraps a sentinel (e.g. ErrValidation) for errors.Is/errors.As.
type ClientError struct {
	Reason string
	// Retryable is set by the application (not by the engine). When true, the
	// orchestrator may invoke the same tool again with revised arguments,
	// bounded by its retry budget.
	Retryable bool
	Err       error // wrapped sentinel for errors.Is/errors.As
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("invalid tool input: %s", e.Reason)
}

// Unwrap supports errors.Is/errors.As on wrapped chains (e.g. errors.Is(err, ErrValidation)).
func (e *ClientError) Unwrap() error { return e.Err }

// SystemError represents an internal failure (remote API down, panic, etc.).
// The LLM should not see the underlying error message or stack.
type SystemError struct {
	Err error
}

func (e *SystemError) Error() string {
	return "internal system error during tool execution"
}

func (e *SystemError) Unwrap() error { return e.Err }

// IsClientError returns true if err is or wraps a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// IsSystemError returns true if err is or wraps a SystemError.
func IsSystemError(err error) bool {
	var se *SystemError
	return errors.As(err, &se)
}

// IsRetryable returns true if err is or wraps a ClientError with Retryable set.
func IsRetryable(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Retryable
}

// wrapJSONParseError returns a ClientError for JSON unmarshal failures.
// Used by Extractor.ParseAndValidate so parse errors are consistent.
func wrapJSONParseError(err error) error {
	return &ClientError{Reason: "json parse error: " + err.Error()}
}
