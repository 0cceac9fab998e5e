// Package constants provides centralized constant values used throughout simdriver.
// This package is the single source of truth for all shared constants and MUST NOT
// import any other internal packages.
package constants

import "time"

// Directory names and paths used by simdriver for organizing data.
const (
	// SimdriverHome is the hidden directory name where simdriver stores its data.
	// This directory is created in the user's home directory.
	SimdriverHome = ".simdriver"

	// LogsDir is the directory name where log files are stored.
	LogsDir = "logs"

	// RecordingsDir is the directory name where screen recordings are kept by default.
	RecordingsDir = "recordings"

	// LocksDir is the directory name for per-device lock files.
	LocksDir = "locks"
)

// Process execution timing.
const (
	// DefaultProcessTimeout bounds a single simctl invocation.
	DefaultProcessTimeout = 60 * time.Second

	// GracefulTerminateWait is how long a timed-out process is given to exit
	// after SIGTERM before it is interrupted.
	GracefulTerminateWait = 500 * time.Millisecond

	// InterruptWait is how long a timed-out process is given to exit after
	// SIGINT before it is force-killed.
	InterruptWait = 100 * time.Millisecond

	// DrainGrace bounds the final read of each output pipe after the process exits.
	DrainGrace = 250 * time.Millisecond

	// RecorderStopTimeout bounds how long a recorder is waited for after SIGINT
	// when the caller context carries no deadline.
	RecorderStopTimeout = 10 * time.Second
)

// Driver run timing.
const (
	// DefaultRunnerTimeout bounds the external runner invocation.
	DefaultRunnerTimeout = 300 * time.Second

	// DefaultResultTimeout bounds the wait for the runner's result file once the
	// runner has exited.
	DefaultResultTimeout = 2 * time.Second

	// ResultPollInterval is the interval at which the result file is polled.
	ResultPollInterval = 100 * time.Millisecond

	// RecordingSettleDelay approximates recorder readiness; simctl gives no
	// readiness signal on stdout.
	RecordingSettleDelay = 500 * time.Millisecond

	// RecordingStartTimeout is the default upper bound passed to WaitUntilStarted.
	RecordingStartTimeout = 5 * time.Second

	// LockTimeout is how long a per-device install lock is waited for.
	LockTimeout = 2 * time.Minute

	// LockRetryInterval is the interval between non-blocking lock attempts.
	LockRetryInterval = 50 * time.Millisecond
)
