package cli

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/mrz1836/simdriver/internal/config"
	"github.com/mrz1836/simdriver/internal/constants"
	"github.com/mrz1836/simdriver/internal/driver"
	"github.com/mrz1836/simdriver/internal/process"
	"github.com/mrz1836/simdriver/internal/simulator"
)

// runtimeDeps bundles what the device-facing commands share.
type runtimeDeps struct {
	cfg    *config.Config
	runner *process.DefaultRunner
	ctrl   *simulator.Controller
	logger zerolog.Logger
	home   string
}

// loadDeps loads configuration, applying overrides, and builds the process
// runner and simulator controller from it.
func loadDeps(ctx context.Context, overrides *config.Config) (*runtimeDeps, error) {
	logger := zerolog.Ctx(ctx).With().Logger()

	cfg, err := config.LoadWithOverrides(logger.WithContext(ctx), overrides)
	if err != nil {
		return nil, err
	}

	home, err := config.HomeDir()
	if err != nil {
		return nil, err
	}

	runner := process.NewRunner(
		process.WithLogger(logger.With().Str("component", "process").Logger()),
		process.WithDefaultTimeout(cfg.Process.DefaultTimeout),
		process.WithGracefulWait(cfg.Process.GracefulWait),
		process.WithInterruptWait(cfg.Process.InterruptWait),
		process.WithDrainGrace(cfg.Process.DrainGrace),
	)

	ctrl := simulator.NewController(runner,
		simulator.WithXcrunPath(cfg.Simulator.XcrunPath),
		simulator.WithCommandTimeout(cfg.Simulator.CommandTimeout),
		simulator.WithVideoCodec(cfg.Recording.Codec),
		simulator.WithSettleDelay(cfg.Recording.SettleDelay),
		simulator.WithLockDir(filepath.Join(home, constants.LocksDir)),
		simulator.WithLockTimeout(cfg.Simulator.LockTimeout),
		simulator.WithLogger(logger.With().Str("component", "simulator").Logger()),
	)

	return &runtimeDeps{
		cfg:    cfg,
		runner: runner,
		ctrl:   ctrl,
		logger: logger,
		home:   home,
	}, nil
}

// recordingDir is where videos go: the configured directory, or
// ~/.simdriver/recordings.
func (d *runtimeDeps) recordingDir() string {
	if d.cfg.Recording.Dir != "" {
		return d.cfg.Recording.Dir
	}
	return filepath.Join(d.home, constants.RecordingsDir)
}

// newDriver builds a script driver from the loaded configuration.
func (d *runtimeDeps) newDriver() *driver.Driver {
	return driver.New(driver.Config{
		XcrunPath:             d.cfg.Simulator.XcrunPath,
		ManifestTemplate:      d.cfg.Driver.ManifestTemplate,
		RunnerAppPath:         d.cfg.Driver.RunnerAppPath,
		HostAppPath:           d.cfg.Driver.HostAppPath,
		WorkDir:               d.cfg.Driver.WorkDir,
		RecordingDir:          d.recordingDir(),
		TestSelector:          d.cfg.Driver.TestSelector,
		RunnerTimeout:         d.cfg.Driver.RunnerTimeout,
		ResultTimeout:         d.cfg.Driver.ResultTimeout,
		PollInterval:          d.cfg.Driver.PollInterval,
		RecordingStartTimeout: d.cfg.Recording.StartTimeout,
	}, d.runner,
		driver.WithLogger(d.logger.With().Str("component", "driver").Logger()),
		driver.WithRecorder(driver.ControllerRecorder{Controller: d.ctrl}),
	)
}
