package config

import (
	"time"

	"github.com/mrz1836/simdriver/internal/errors"
)

// maxPollInterval keeps result polling from outliving the result timeout by much.
const maxPollInterval = 5 * time.Second

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - every duration must be positive
//   - xcrun path, test selector, and video codec must not be empty
//   - driver.poll_interval must not exceed 5s
//
// Artifact paths are not required here: commands that never start a run
// work without them.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateSimulatorConfig(&cfg.Simulator); err != nil {
		return err
	}
	if err := validateDriverConfig(&cfg.Driver); err != nil {
		return err
	}
	if err := validateRecordingConfig(&cfg.Recording); err != nil {
		return err
	}
	return validateProcessConfig(&cfg.Process)
}

func validateSimulatorConfig(cfg *SimulatorConfig) error {
	if cfg.XcrunPath == "" {
		return errors.Wrap(errors.ErrConfigInvalidSimulator, "simulator.xcrun_path must not be empty")
	}
	if cfg.CommandTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidSimulator,
			"simulator.command_timeout must be positive, got %s", cfg.CommandTimeout)
	}
	if cfg.LockTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidSimulator,
			"simulator.lock_timeout must be positive, got %s", cfg.LockTimeout)
	}
	return nil
}

func validateDriverConfig(cfg *DriverConfig) error {
	if cfg.TestSelector == "" {
		return errors.Wrap(errors.ErrConfigInvalidDriver, "driver.test_selector must not be empty")
	}
	if cfg.RunnerTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidDriver,
			"driver.runner_timeout must be positive, got %s", cfg.RunnerTimeout)
	}
	if cfg.ResultTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidDriver,
			"driver.result_timeout must be positive, got %s", cfg.ResultTimeout)
	}
	if cfg.PollInterval <= 0 || cfg.PollInterval > maxPollInterval {
		return errors.Wrapf(errors.ErrConfigInvalidDriver,
			"driver.poll_interval must be between 0 and %s, got %s", maxPollInterval, cfg.PollInterval)
	}
	return nil
}

func validateRecordingConfig(cfg *RecordingConfig) error {
	if cfg.Codec == "" {
		return errors.Wrap(errors.ErrConfigInvalidRecording, "recording.codec must not be empty")
	}
	if cfg.SettleDelay <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidRecording,
			"recording.settle_delay must be positive, got %s", cfg.SettleDelay)
	}
	if cfg.StartTimeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidRecording,
			"recording.start_timeout must be positive, got %s", cfg.StartTimeout)
	}
	return nil
}

func validateProcessConfig(cfg *ProcessConfig) error {
	checks := []struct {
		key   string
		value time.Duration
	}{
		{"process.default_timeout", cfg.DefaultTimeout},
		{"process.graceful_wait", cfg.GracefulWait},
		{"process.interrupt_wait", cfg.InterruptWait},
		{"process.drain_grace", cfg.DrainGrace},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return errors.Wrapf(errors.ErrConfigInvalidProcess, "%s must be positive, got %s", c.key, c.value)
		}
	}
	return nil
}
