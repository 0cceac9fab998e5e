package config

import (
	"github.com/mrz1836/simdriver/internal/constants"
)

// DefaultConfig returns a new Config with default values.
// These defaults are the base layer that config files, environment
// variables, and CLI flags override.
func DefaultConfig() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			XcrunPath:      constants.DefaultXcrunPath,
			CommandTimeout: constants.DefaultProcessTimeout,
			HostBundleID:   constants.DefaultHostBundleID,
			LockTimeout:    constants.LockTimeout,
		},
		Driver: DriverConfig{
			// Artifact paths have no sensible default; they come from the
			// runner build and are checked when a run starts.
			TestSelector:  constants.DefaultTestSelector,
			RunnerTimeout: constants.DefaultRunnerTimeout,
			ResultTimeout: constants.DefaultResultTimeout,
			PollInterval:  constants.ResultPollInterval,
		},
		Recording: RecordingConfig{
			Codec:        constants.DefaultVideoCodec,
			SettleDelay:  constants.RecordingSettleDelay,
			StartTimeout: constants.RecordingStartTimeout,
		},
		Process: ProcessConfig{
			DefaultTimeout: constants.DefaultProcessTimeout,
			GracefulWait:   constants.GracefulTerminateWait,
			InterruptWait:  constants.InterruptWait,
			DrainGrace:     constants.DrainGrace,
		},
	}
}
