// Package errors provides centralized error handling for simdriver.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrScriptMalformed indicates that an action script could not be decoded,
	// typically because of an unknown discriminator or a missing required field.
	ErrScriptMalformed = errors.New("script malformed")

	// ErrProcessTimeout indicates that an external process exceeded its timeout
	// and was terminated.
	ErrProcessTimeout = errors.New("process timed out")

	// ErrProcessLaunchFailed indicates that an external process could not be started.
	ErrProcessLaunchFailed = errors.New("process launch failed")

	// ErrManifestInjectionFailed indicates that the runner manifest template has no
	// environment-variables section to inject the script and result paths into.
	ErrManifestInjectionFailed = errors.New("manifest injection failed")

	// ErrMissingRunnerArtifact indicates that a prebuilt runner artifact
	// (manifest template, runner app, host app) does not exist.
	ErrMissingRunnerArtifact = errors.New("missing runner artifact")

	// ErrExternalRunFailed indicates that the external runner exited non-zero
	// without writing a result file.
	ErrExternalRunFailed = errors.New("external run failed")

	// ErrResultMalformed indicates that the runner's result file could not be decoded.
	ErrResultMalformed = errors.New("result malformed")

	// ErrResultTimeout indicates that the result file did not appear before the
	// result-wait deadline.
	ErrResultTimeout = errors.New("result wait timeout")

	// ErrSessionExists indicates that a run's working directory already exists,
	// which means two runs were given the same session token.
	ErrSessionExists = errors.New("session already exists")

	// ErrInvalidSessionToken indicates a session token that is not a single
	// path element, such as one containing a separator or "..".
	ErrInvalidSessionToken = errors.New("invalid session token")

	// ErrRecordingFailed indicates that the screen recorder could not be started
	// or exited before recording began.
	ErrRecordingFailed = errors.New("recording failed")

	// ErrRecordingStopped indicates an attempt to reuse a recording session
	// after it was stopped.
	ErrRecordingStopped = errors.New("recording session already stopped")

	// ErrSimulatorCommand indicates that a simctl command exited non-zero.
	ErrSimulatorCommand = errors.New("simulator command failed")

	// ErrNoBootedSimulator indicates that no booted simulator is available
	// and no device identifier was given.
	ErrNoBootedSimulator = errors.New("no booted simulator")

	// ErrSimulatorNotFound indicates that the requested simulator does not exist.
	ErrSimulatorNotFound = errors.New("simulator not found")

	// ErrLockTimeout indicates a file lock could not be acquired within the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidSimulator indicates an invalid simulator configuration value.
	ErrConfigInvalidSimulator = errors.New("invalid simulator configuration")

	// ErrConfigInvalidDriver indicates an invalid driver configuration value.
	ErrConfigInvalidDriver = errors.New("invalid driver configuration")

	// ErrConfigInvalidRecording indicates an invalid recording configuration value.
	ErrConfigInvalidRecording = errors.New("invalid recording configuration")

	// ErrConfigInvalidProcess indicates an invalid process configuration value.
	ErrConfigInvalidProcess = errors.New("invalid process configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrUnsupportedScriptFormat indicates the script file extension is not recognized.
	ErrUnsupportedScriptFormat = errors.New("unsupported script format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrScriptFailed indicates that the script ran but one of its actions failed.
	// The CLI uses it to produce a non-zero exit code after printing results.
	ErrScriptFailed = errors.New("script failed")

	// ErrMissingRequiredTools indicates xcrun, xcodebuild or simctl is unavailable.
	ErrMissingRequiredTools = errors.New("missing required tools")

	// ErrJSONErrorOutput indicates that an error has already been output as JSON.
	// This ensures a non-zero exit code while preventing duplicate error messages.
	ErrJSONErrorOutput = errors.New("error output as JSON")
)

// ExitCode2Error wraps an error to indicate exit code 2 should be used.
type ExitCode2Error struct {
	Err error
}

// NewExitCode2Error wraps an error to indicate exit code 2.
func NewExitCode2Error(err error) *ExitCode2Error {
	return &ExitCode2Error{Err: err}
}

// Error implements the error interface.
func (e *ExitCode2Error) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitCode2Error) Unwrap() error {
	return e.Err
}

// IsExitCode2Error checks if an error should result in exit code 2.
func IsExitCode2Error(err error) bool {
	var e *ExitCode2Error
	return errors.As(err, &e)
}
