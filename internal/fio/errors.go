package fio

import (
	"errors"
	"fmt"
)

var (
	// ErrToolUnavailable means the fio binary could not be found or executed.
	ErrToolUnavailable = errors.New("fio is not installed or not in PATH")

	// ErrCancelled means the run was interrupted before fio finished.
	// No partial artifacts are produced for a cancelled run.
	ErrCancelled = errors.New("benchmark cancelled")
)

// ExitError means fio started but exited with a non-zero status.
type ExitError struct {
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("fio failed: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("fio failed: %v", e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// MalformedOutputError means fio exited successfully but its stdout did
// not decode as a JSON document.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("fio output is not valid JSON: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }
