// Package simulator wraps `xcrun simctl` for booting, app management,
// screenshots, and screen recording of iOS simulators.
package simulator

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/simdriver/internal/constants"
	simerrors "github.com/mrz1836/simdriver/internal/errors"
	"github.com/mrz1836/simdriver/internal/process"
)

// State is a simulator's lifecycle state as reported by simctl.
type State string

// Known simulator states. Anything else decodes as StateUnknown.
const (
	StateBooted       State = "Booted"
	StateShutdown     State = "Shutdown"
	StateShuttingDown State = "Shutting Down"
	StateUnknown      State = "Unknown"
)

// UnmarshalJSON maps unrecognized states to StateUnknown.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch State(raw) {
	case StateBooted, StateShutdown, StateShuttingDown:
		*s = State(raw)
	default:
		*s = StateUnknown
	}
	return nil
}

// Simulator describes one simulator device.
type Simulator struct {
	UDID        string `json:"udid"`
	Name        string `json:"name"`
	State       State  `json:"state"`
	IsAvailable bool   `json:"isAvailable"`
	Runtime     string `json:"runtime"`
}

// Booted reports whether the device is booted.
func (s Simulator) Booted() bool {
	return s.State == StateBooted
}

// Runner is what the controller needs to run simctl.
type Runner interface {
	process.Runner
	process.Starter
}

// Controller issues simctl commands through a process Runner.
type Controller struct {
	runner      Runner
	xcrunPath   string
	timeout     time.Duration
	codec       string
	settleDelay time.Duration
	lockDir     string
	lockTimeout time.Duration
	logger      zerolog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithXcrunPath overrides the xcrun executable.
func WithXcrunPath(path string) Option {
	return func(c *Controller) {
		if path != "" {
			c.xcrunPath = path
		}
	}
}

// WithCommandTimeout bounds each simctl invocation.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithVideoCodec sets the codec passed to recordVideo.
func WithVideoCodec(codec string) Option {
	return func(c *Controller) {
		if codec != "" {
			c.codec = codec
		}
	}
}

// WithSettleDelay sets how long WaitUntilStarted waits for the recorder.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.settleDelay = d
		}
	}
}

// WithLockDir sets the directory holding per-device install locks.
func WithLockDir(dir string) Option {
	return func(c *Controller) {
		c.lockDir = dir
	}
}

// WithLockTimeout bounds the wait for a per-device install lock.
func WithLockTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.lockTimeout = d
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller.
func NewController(runner Runner, opts ...Option) *Controller {
	c := &Controller{
		runner:      runner,
		xcrunPath:   constants.DefaultXcrunPath,
		timeout:     constants.DefaultProcessTimeout,
		codec:       constants.DefaultVideoCodec,
		settleDelay: constants.RecordingSettleDelay,
		lockTimeout: constants.LockTimeout,
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// simctl runs `xcrun simctl args...` and fails on a non-zero exit.
func (c *Controller) simctl(ctx context.Context, args ...string) (*process.Result, error) {
	res, err := c.exec(ctx, args...)
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, simerrors.Wrapf(simerrors.ErrSimulatorCommand, "simctl %s (exit %d): %s",
			args[0], res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return res, nil
}

// exec runs simctl and returns the result whatever the exit code.
func (c *Controller) exec(ctx context.Context, args ...string) (*process.Result, error) {
	full := append([]string{"simctl"}, args...)
	c.logger.Debug().Strs("args", full).Msg("running simctl")

	res, err := c.runner.Run(ctx, c.xcrunPath, full, nil, c.timeout)
	if err != nil {
		return nil, simerrors.Wrapf(err, "simctl %s", args[0])
	}
	return res, nil
}

type devicesResponse struct {
	Devices map[string][]Simulator `json:"devices"`
}

// runtimeName turns "com.apple.CoreSimulator.SimRuntime.iOS-17-2" into "iOS 17.2".
func runtimeName(key string) string {
	name := key[strings.LastIndex(key, ".")+1:]
	platform, version, ok := strings.Cut(name, "-")
	if !ok {
		return name
	}
	return platform + " " + strings.ReplaceAll(version, "-", ".")
}

// parseDevices decodes `simctl list devices -j`, keeping available devices
// ordered by runtime then name.
func parseDevices(data []byte) ([]Simulator, error) {
	var resp devicesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, simerrors.Wrapf(simerrors.ErrSimulatorCommand, "decode device list: %v", err)
	}

	var sims []Simulator
	for runtime, devices := range resp.Devices {
		for _, d := range devices {
			if !d.IsAvailable {
				continue
			}
			d.Runtime = runtimeName(runtime)
			sims = append(sims, d)
		}
	}
	sort.Slice(sims, func(i, j int) bool {
		if sims[i].Runtime != sims[j].Runtime {
			return sims[i].Runtime < sims[j].Runtime
		}
		if sims[i].Name != sims[j].Name {
			return sims[i].Name < sims[j].Name
		}
		return sims[i].UDID < sims[j].UDID
	})
	return sims, nil
}
