// Package config provides configuration management for simdriver with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (SIMDRIVER_* prefix)
//  3. Project config (.simdriver/config.yaml)
//  4. Global config (~/.simdriver/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import other internal packages.
package config

import "time"

// Config is the root configuration structure for simdriver.
type Config struct {
	// Simulator contains settings for simctl device control.
	Simulator SimulatorConfig `yaml:"simulator" mapstructure:"simulator"`

	// Driver contains settings for running scripts through the UI test runner.
	Driver DriverConfig `yaml:"driver" mapstructure:"driver"`

	// Recording contains settings for screen recordings.
	Recording RecordingConfig `yaml:"recording" mapstructure:"recording"`

	// Process contains settings for external process supervision.
	Process ProcessConfig `yaml:"process" mapstructure:"process"`
}

// SimulatorConfig contains settings for simctl device control.
type SimulatorConfig struct {
	// XcrunPath is the xcrun executable used for every simctl and xcodebuild call.
	// Default: "/usr/bin/xcrun"
	XcrunPath string `yaml:"xcrun_path" mapstructure:"xcrun_path"`

	// CommandTimeout bounds each short simctl command (list, boot, install...).
	// Default: 60 seconds
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`

	// HostBundleID is the bundle identifier of the host app under test.
	// Default: "com.simdriver.host"
	HostBundleID string `yaml:"host_bundle_id" mapstructure:"host_bundle_id"`

	// LockTimeout bounds how long an install waits for another process
	// installing on the same device.
	// Default: 2 minutes
	LockTimeout time.Duration `yaml:"lock_timeout" mapstructure:"lock_timeout"`
}

// DriverConfig locates the prebuilt runner artifacts and bounds a run.
type DriverConfig struct {
	// ManifestTemplate is the .xctestrun template shipped with the runner.
	ManifestTemplate string `yaml:"manifest_template" mapstructure:"manifest_template"`

	// RunnerAppPath is the prebuilt UI test runner .app bundle.
	RunnerAppPath string `yaml:"runner_app_path" mapstructure:"runner_app_path"`

	// HostAppPath is the prebuilt host .app bundle the runner drives.
	HostAppPath string `yaml:"host_app_path" mapstructure:"host_app_path"`

	// WorkDir is where per-run session directories are created.
	// Default: "" (system temp directory)
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`

	// TestSelector is the single test the runner is asked to execute.
	// Default: "SimDriverUITests/DriverTests/testScript"
	TestSelector string `yaml:"test_selector" mapstructure:"test_selector"`

	// RunnerTimeout bounds the whole xcodebuild invocation.
	// Default: 5 minutes
	RunnerTimeout time.Duration `yaml:"runner_timeout" mapstructure:"runner_timeout"`

	// ResultTimeout is how long to wait for the result file after the runner exits.
	// Default: 2 seconds
	ResultTimeout time.Duration `yaml:"result_timeout" mapstructure:"result_timeout"`

	// PollInterval is how often the result file is checked.
	// Default: 100 milliseconds
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// RecordingConfig contains settings for screen recordings.
type RecordingConfig struct {
	// Dir is where recordings are written. Recordings outlive the run.
	// Default: "" (system temp directory)
	Dir string `yaml:"dir" mapstructure:"dir"`

	// Codec is passed to simctl recordVideo.
	// Default: "h264"
	Codec string `yaml:"codec" mapstructure:"codec"`

	// SettleDelay is how long the recorder must survive before it counts as started.
	// Default: 500 milliseconds
	SettleDelay time.Duration `yaml:"settle_delay" mapstructure:"settle_delay"`

	// StartTimeout caps the wait for the recorder to start.
	// Default: 5 seconds
	StartTimeout time.Duration `yaml:"start_timeout" mapstructure:"start_timeout"`
}

// ProcessConfig contains settings for external process supervision.
type ProcessConfig struct {
	// DefaultTimeout applies when a caller passes no timeout.
	// Default: 60 seconds
	DefaultTimeout time.Duration `yaml:"default_timeout" mapstructure:"default_timeout"`

	// GracefulWait is how long a timed-out process gets after SIGTERM.
	// Default: 500 milliseconds
	GracefulWait time.Duration `yaml:"graceful_wait" mapstructure:"graceful_wait"`

	// InterruptWait is how long a timed-out process gets after SIGINT.
	// Default: 100 milliseconds
	InterruptWait time.Duration `yaml:"interrupt_wait" mapstructure:"interrupt_wait"`

	// DrainGrace bounds reading leftover output once the process exits.
	// Default: 250 milliseconds
	DrainGrace time.Duration `yaml:"drain_grace" mapstructure:"drain_grace"`
}
