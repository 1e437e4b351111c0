// Package verrors defines the distinguishable error kinds the plan engine
// can raise. Each kind is a concrete type so callers can type-switch on it
// (as the plan and release commands do) instead of matching on strings.
package verrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports a malformed or self-contradictory configuration
// document. It is always fatal, and always surfaces before any read.
type ConfigError struct {
	Reason string
	Cause  error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Cause }

// NewConfigError wraps reason and an optional cause into a *ConfigError.
func NewConfigError(reason string, cause error) error {
	return errors.WithStack(&ConfigError{Reason: reason, Cause: cause})
}

// LocationError reports a version location that could not be read or
// written: selector miss, malformed file, or unparseable version. When the
// location belongs to a dependency's sub-file write, DependentID names the
// dependent project so the caller can attribute the failure.
type LocationError struct {
	Location    string
	Reason      string
	DependentID uint
	HasDependent bool
	Cause       error
}

func (e *LocationError) Error() string {
	if e.HasDependent {
		return fmt.Sprintf("location error at %s (dependency write for project %d): %s", e.Location, e.DependentID, e.Reason)
	}
	return fmt.Sprintf("location error at %s: %s", e.Location, e.Reason)
}

func (e *LocationError) Unwrap() error { return e.Cause }

// MarkerLostError reports that the prior-release marker is no longer an
// ancestor of HEAD -- the user must move the marker or undo the rebase.
type MarkerLostError struct {
	Marker string
	Head   string
}

func (e *MarkerLostError) Error() string {
	return fmt.Sprintf("marker %q is not an ancestor of %s -- move the marker or rebase undone", e.Marker, e.Head)
}

// PolicyFail reports that a commit matched a fail-sized conventional-commit
// type. Naming the offending commit lets `release` report it before
// refusing to apply any writes.
type PolicyFail struct {
	CommitHash    string
	CommitSummary string
	Type          string
}

func (e *PolicyFail) Error() string {
	return fmt.Sprintf("commit %s (%q) has fail-sized type %q", e.CommitHash, e.CommitSummary, e.Type)
}

// SubdivisionWarning reports a major bump whose expected subdirectory is
// absent. It is non-fatal under `plan`, fatal under `release`; the caller
// decides which by inspecting the command.
type SubdivisionWarning struct {
	ProjectID   uint
	ExpectedDir string
}

func (e *SubdivisionWarning) Error() string {
	return fmt.Sprintf("project %d: expected subdivision directory %q not found for new major version", e.ProjectID, e.ExpectedDir)
}

// HookError reports a non-zero exit from a configured shell hook.
type HookError struct {
	Command  string
	ExitCode int
	Cause    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %q exited %d: %v", e.Command, e.ExitCode, e.Cause)
}

func (e *HookError) Unwrap() error { return e.Cause }

// PushConflict reports that the remote rejected our push. It is always
// fatal for the current run and is never automatically retried.
type PushConflict struct {
	Ref   string
	Cause error
}

func (e *PushConflict) Error() string {
	return fmt.Sprintf("push conflict on %s: %v", e.Ref, e.Cause)
}

func (e *PushConflict) Unwrap() error { return e.Cause }

// RemoteAuthError reports that a remote operation failed to authenticate.
type RemoteAuthError struct {
	Remote string
	Cause  error
}

func (e *RemoteAuthError) Error() string {
	return fmt.Sprintf("authentication to remote %q failed: %v", e.Remote, e.Cause)
}

func (e *RemoteAuthError) Unwrap() error { return e.Cause }

// Chain renders err plus its causal chain as a one-line summary followed by
// indented causes, the shape the CLI prints at the run boundary.
func Chain(err error) string {
	var buf []byte
	buf = append(buf, err.Error()...)
	cause := errors.Unwrap(err)
	for cause != nil {
		buf = append(buf, "\n\tcaused by: "...)
		buf = append(buf, cause.Error()...)
		cause = errors.Unwrap(cause)
	}
	return string(buf)
}
