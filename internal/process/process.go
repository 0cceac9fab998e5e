// Package process runs external programs with concurrent output capture,
// a hard timeout, and escalating termination.
//
// Output pipes are drained from the moment the child starts so a chatty child
// can never block on a full pipe buffer. When the timeout fires, the child's
// process group receives SIGTERM, then SIGINT, then SIGKILL, with short waits
// in between.
package process

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/simdriver/internal/constants"
	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

// Result is the outcome of one completed external command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited with status zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes an external command to completion.
// A non-zero exit is reported through Result.ExitCode, not as an error.
type Runner interface {
	Run(ctx context.Context, executable string, args []string, env map[string]string, timeout time.Duration) (*Result, error)
}

// Starter launches a long-lived command and returns immediately.
type Starter interface {
	Start(ctx context.Context, executable string, args []string, env map[string]string) (*Process, error)
}

// TimeoutError is returned by Run when the command outlived its timeout
// and had to be terminated. It matches ErrProcessTimeout.
type TimeoutError struct {
	Executable string
	Timeout    time.Duration

	// Stdout and Stderr hold whatever was captured before termination.
	Stdout string
	Stderr string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %s after %s", simerrors.ErrProcessTimeout, filepath.Base(e.Executable), e.Timeout)
}

// Is reports whether target is ErrProcessTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == simerrors.ErrProcessTimeout
}

// DefaultRunner is the os/exec backed Runner and Starter.
type DefaultRunner struct {
	logger         zerolog.Logger
	defaultTimeout time.Duration
	gracefulWait   time.Duration
	interruptWait  time.Duration
	drainGrace     time.Duration
}

// Option configures a DefaultRunner.
type Option func(*DefaultRunner)

// WithLogger sets the logger for process lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *DefaultRunner) {
		r.logger = logger
	}
}

// WithGracefulWait sets how long a timed-out process has to exit after SIGTERM.
func WithGracefulWait(d time.Duration) Option {
	return func(r *DefaultRunner) {
		if d > 0 {
			r.gracefulWait = d
		}
	}
}

// WithInterruptWait sets how long a timed-out process has to exit after SIGINT.
func WithInterruptWait(d time.Duration) Option {
	return func(r *DefaultRunner) {
		if d > 0 {
			r.interruptWait = d
		}
	}
}

// WithDrainGrace bounds the final pipe read after the process exits.
func WithDrainGrace(d time.Duration) Option {
	return func(r *DefaultRunner) {
		if d > 0 {
			r.drainGrace = d
		}
	}
}

// WithDefaultTimeout sets the timeout used when Run is given a non-positive one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *DefaultRunner) {
		if d > 0 {
			r.defaultTimeout = d
		}
	}
}

// NewRunner creates a DefaultRunner with the given options.
func NewRunner(opts ...Option) *DefaultRunner {
	r := &DefaultRunner{
		logger:         zerolog.Nop(),
		defaultTimeout: constants.DefaultProcessTimeout,
		gracefulWait:   constants.GracefulTerminateWait,
		interruptWait:  constants.InterruptWait,
		drainGrace:     constants.DrainGrace,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MergeEnv overlays overrides on base, a list of KEY=VALUE entries.
// Overrides win. Existing keys keep their position; new keys are appended
// in sorted order.
func MergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	applied := make(map[string]bool, len(overrides))

	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if v, ok := overrides[key]; ok {
			if !applied[key] {
				out = append(out, key+"="+v)
				applied[key] = true
			}
			continue
		}
		out = append(out, kv)
	}

	extra := make([]string, 0, len(overrides))
	for key := range overrides {
		if !applied[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		out = append(out, key+"="+overrides[key])
	}
	return out
}
