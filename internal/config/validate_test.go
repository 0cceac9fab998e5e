package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	simerrors "github.com/mrz1836/simdriver/internal/errors"
)

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, Validate(nil), simerrors.ErrConfigNil)
}

func TestValidate_DefaultConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(DefaultConfig()))
}

func TestValidate_Rules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		wantMsg string
	}{
		{
			name:    "empty xcrun path",
			mutate:  func(c *Config) { c.Simulator.XcrunPath = "" },
			wantErr: simerrors.ErrConfigInvalidSimulator,
			wantMsg: "simulator.xcrun_path",
		},
		{
			name:    "zero command timeout",
			mutate:  func(c *Config) { c.Simulator.CommandTimeout = 0 },
			wantErr: simerrors.ErrConfigInvalidSimulator,
			wantMsg: "simulator.command_timeout",
		},
		{
			name:    "negative lock timeout",
			mutate:  func(c *Config) { c.Simulator.LockTimeout = -time.Second },
			wantErr: simerrors.ErrConfigInvalidSimulator,
			wantMsg: "simulator.lock_timeout",
		},
		{
			name:    "empty test selector",
			mutate:  func(c *Config) { c.Driver.TestSelector = "" },
			wantErr: simerrors.ErrConfigInvalidDriver,
			wantMsg: "driver.test_selector",
		},
		{
			name:    "zero runner timeout",
			mutate:  func(c *Config) { c.Driver.RunnerTimeout = 0 },
			wantErr: simerrors.ErrConfigInvalidDriver,
			wantMsg: "driver.runner_timeout",
		},
		{
			name:    "zero result timeout",
			mutate:  func(c *Config) { c.Driver.ResultTimeout = 0 },
			wantErr: simerrors.ErrConfigInvalidDriver,
			wantMsg: "driver.result_timeout",
		},
		{
			name:    "poll interval too long",
			mutate:  func(c *Config) { c.Driver.PollInterval = time.Minute },
			wantErr: simerrors.ErrConfigInvalidDriver,
			wantMsg: "driver.poll_interval",
		},
		{
			name:    "empty codec",
			mutate:  func(c *Config) { c.Recording.Codec = "" },
			wantErr: simerrors.ErrConfigInvalidRecording,
			wantMsg: "recording.codec",
		},
		{
			name:    "zero settle delay",
			mutate:  func(c *Config) { c.Recording.SettleDelay = 0 },
			wantErr: simerrors.ErrConfigInvalidRecording,
			wantMsg: "recording.settle_delay",
		},
		{
			name:    "zero start timeout",
			mutate:  func(c *Config) { c.Recording.StartTimeout = 0 },
			wantErr: simerrors.ErrConfigInvalidRecording,
			wantMsg: "recording.start_timeout",
		},
		{
			name:    "zero drain grace",
			mutate:  func(c *Config) { c.Process.DrainGrace = 0 },
			wantErr: simerrors.ErrConfigInvalidProcess,
			wantMsg: "process.drain_grace",
		},
		{
			name:    "negative default timeout",
			mutate:  func(c *Config) { c.Process.DefaultTimeout = -1 },
			wantErr: simerrors.ErrConfigInvalidProcess,
			wantMsg: "process.default_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_ArtifactPathsOptional(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Driver.ManifestTemplate = ""
	cfg.Driver.RunnerAppPath = ""
	require.NoError(t, Validate(cfg))
}
