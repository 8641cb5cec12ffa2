package interp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoMarker is returned when a probe's stdout lacks the marker line.
var ErrNoMarker = errors.New("probe output missing marker")

// SpawnError describes an external process that failed to start, exited
// with an error or produced output that could not be understood. When the
// process was a Python interpreter that raised, the exception type, message
// and traceback are split out of stderr.
type SpawnError struct {
	Executable string

	// Exception is the exception class name (e.g., "ModuleNotFoundError").
	Exception string

	// Message is the exception message or the process error.
	Message string

	// Traceback is the Python traceback, if one was printed.
	Traceback string

	Err error
}

var exceptionLine = regexp.MustCompile(`^([A-Za-z_][\w.]*(?:Error|Exception|Exit|Interrupt)):\s*(.*)$`)

// NewSpawnError builds a SpawnError from a failed process's stderr.
func NewSpawnError(exe, stderr string, err error) *SpawnError {
	e := &SpawnError{Executable: exe, Err: err}
	stderr = strings.TrimSpace(stderr)
	if i := strings.Index(stderr, "Traceback (most recent call last):"); i >= 0 {
		e.Traceback = stderr[i:]
		lines := strings.Split(e.Traceback, "\n")
		last := strings.TrimSpace(lines[len(lines)-1])
		if m := exceptionLine.FindStringSubmatch(last); m != nil {
			e.Exception, e.Message = m[1], m[2]
			return e
		}
		e.Message = last
		return e
	}
	if stderr != "" {
		e.Message = stderr
	} else if err != nil {
		e.Message = err.Error()
	}
	return e
}

// String formats the failure as a readable string with type, message, and traceback.
func (e *SpawnError) String() string {
	if e.Exception == "" {
		return fmt.Sprintf("%s: %s", e.Executable, e.Message)
	}
	return fmt.Sprintf("%s: %s\n%s", e.Exception, e.Message, e.Traceback)
}

func (e *SpawnError) Error() string {
	if e.Exception != "" {
		return fmt.Sprintf("spawning %s: %s: %s", e.Executable, e.Exception, e.Message)
	}
	return fmt.Sprintf("spawning %s: %s", e.Executable, e.Message)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}
